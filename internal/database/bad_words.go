package database

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"
)

const badWordsURL = "https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/en"

// SeedBadWords downloads the offensive word list used to screen child
// usernames. It is a no-op once the table has rows.
func (db *DB) SeedBadWords() error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM bad_words").Scan(&count); err != nil {
		return fmt.Errorf("failed to check bad words count: %w", err)
	}
	if count > 0 {
		log.Printf("Username filter already populated with %d words", count)
		return nil
	}

	log.Println("Downloading username filter word list...")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(badWordsURL)
	if err != nil {
		return fmt.Errorf("failed to download bad words list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status code from bad words URL: %d", resp.StatusCode)
	}

	added, err := db.loadBadWords(resp.Body)
	if err != nil {
		return err
	}

	log.Printf("Username filter populated with %d words", added)
	return nil
}

// AddBadWords inserts words into the filter, ignoring duplicates
func (db *DB) AddBadWords(words ...string) (int, error) {
	return db.loadBadWords(strings.NewReader(strings.Join(words, "\n")))
}

func (db *DB) loadBadWords(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	seen := make(map[string]bool)
	added := 0

	err := db.WithTx(func(tx *Tx) error {
		for scanner.Scan() {
			word := strings.TrimSpace(strings.ToLower(scanner.Text()))
			// Multi-word phrases can never match a username token
			if word == "" || strings.ContainsRune(word, ' ') || seen[word] {
				continue
			}
			seen[word] = true

			var exists int
			if err := tx.QueryRow("SELECT COUNT(*) FROM bad_words WHERE word = ?", word).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check bad word: %w", err)
			}
			if exists > 0 {
				continue
			}
			if _, err := tx.Exec("INSERT INTO bad_words (word) VALUES (?)", word); err != nil {
				return fmt.Errorf("failed to insert bad word: %w", err)
			}
			added++
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("error reading bad words: %w", err)
		}
		return nil
	})
	return added, err
}

// IsBadWord checks if a single word is in the filter
func (db *DB) IsBadWord(word string) (bool, error) {
	cleanWord := strings.TrimSpace(strings.ToLower(word))

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM bad_words WHERE word = ?", cleanWord).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check bad word: %w", err)
	}
	return count > 0, nil
}

// ContainsBadWord checks a username as a whole and token by token, where
// tokens are the letter runs between underscores and digits.
func (db *DB) ContainsBadWord(username string) (bool, error) {
	candidates := []string{username}
	candidates = append(candidates, strings.FieldsFunc(username, func(r rune) bool {
		return !unicode.IsLetter(r)
	})...)

	for _, candidate := range candidates {
		bad, err := db.IsBadWord(candidate)
		if err != nil {
			return false, err
		}
		if bad {
			log.Printf("Rejected username containing filtered word: %q", username)
			return true, nil
		}
	}
	return false, nil
}
