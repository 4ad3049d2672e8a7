package credentials

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

// Word lists for kid-friendly usernames
var adjectives = []string{
	"happy", "sunny", "brave", "bright", "cool", "swift", "clever", "jolly",
	"mighty", "super", "star", "wild", "funny", "lucky", "magic", "bouncy",
	"cheerful", "daring", "eager", "flying", "gentle", "hyper", "jazzy", "kindly",
	"lively", "merry", "noble", "perky", "quick", "royal", "snappy", "turbo",
	"zippy", "awesome", "bold", "cosmic", "dynamic", "epic", "fantastic", "groovy",
}

var nouns = []string{
	"dragon", "tiger", "eagle", "dolphin", "panda", "lion", "wolf", "bear",
	"fox", "hawk", "shark", "phoenix", "unicorn", "rocket", "ninja", "wizard",
	"knight", "pirate", "robot", "astronaut", "hero", "champion", "explorer", "ranger",
	"owl", "captain", "genius", "comet", "thunder", "scientist", "tornado", "inventor",
	"otter", "storm", "koala", "falcon", "penguin", "whale", "beetle", "racer",
}

const passwordChars = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// PasswordLength matches the minimum child password length
const PasswordLength = 6

// GenerateKidUsername returns "adjective_noun"
func GenerateKidUsername() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}
	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}
	return adjective + "_" + noun, nil
}

// GenerateKidPassword returns a random password without look-alike characters
func GenerateKidPassword() (string, error) {
	password := make([]byte, PasswordLength)
	for i := range password {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordChars))))
		if err != nil {
			return "", err
		}
		password[i] = passwordChars[num.Int64()]
	}
	return string(password), nil
}

// SuggestUsernames proposes n alternatives for a taken username. Suggestions
// keep the sanitized base and add a number; a generated name is used when the
// base is too short to be useful.
func SuggestUsernames(base string, n int) ([]string, error) {
	clean := sanitize(base)
	seen := map[string]bool{strings.ToLower(base): true}
	var out []string

	for attempts := 0; len(out) < n && attempts < n*10; attempts++ {
		var candidate string
		if len(clean) >= 3 {
			num, err := rand.Int(rand.Reader, big.NewInt(900))
			if err != nil {
				return nil, err
			}
			candidate = clean + strconv.FormatInt(num.Int64()+100, 10)
		} else {
			generated, err := GenerateKidUsername()
			if err != nil {
				return nil, err
			}
			candidate = generated
		}
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		out = append(out, candidate)
	}
	return out, nil
}

// sanitize lowercases and keeps only characters valid in a username
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if len(out) > 26 {
		out = out[:26]
	}
	return out
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}
	return slice[num.Int64()], nil
}
