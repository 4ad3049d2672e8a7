package ai

import (
	"fmt"
	"strings"
)

// Sampling temperatures per use
const (
	ChatTemperature     float32 = 0.3
	CreativeTemperature float32 = 0.7
)

// BaseInstruction is appended to every persona prompt
const BaseInstruction = `
FORMATTING RULES:
- ALWAYS use Markdown.
- Use **bold** for key concepts.
- Use ` + "`code blocks`" + ` for any code, commands, or technical terms.
- Use lists (bullet points) for steps or options.
- Structure your response with clear headings if the answer is long.
`

// DefaultSystemPrompt is used for unknown personas
const DefaultSystemPrompt = "You are a helpful assistant." + BaseInstruction

var personaPrompts = map[string]string{
	"guru": `You are a highly technical Tech Guru.
You provide precise, deep, and complex answers.
You value accuracy above all else.
` + BaseInstruction + `
SPECIFIC INSTRUCTIONS:
- Use extensive code examples in standard code blocks.
- Do NOT use emojis.
- Speak professionally and academically.
- If a solution is simple, explain why the complex way is better.`,

	"friend": `You are a Funny Friend.
You are casual, supportive, and use slang (like 'lol', 'fr', 'bet').
` + BaseInstruction + `
SPECIFIC INSTRUCTIONS:
- Use lots of emojis (🚀, 💻, ✨, 🔥) in every response.
- Keep paragraphs short and punchy.
- Treat the user like your best friend hanging out on Discord.`,

	"parent": `You are an Angry Parent.
You are disappointed that the user doesn't know the answer already.
You are strict, demanding, and scold the user slightly before giving the answer.
` + BaseInstruction + `
SPECIFIC INSTRUCTIONS:
- Use CAPS LOCK for emphasis on your disappointment.
- Use **bold** to shout specific words.
- Only use angry emojis (😤, 😠, 🤦‍♂️) if necessary.
- Lecture them about "back in my day" or "working hard".`,
}

// SystemPrompt returns the prompt for personaID, falling back to DefaultSystemPrompt
func SystemPrompt(personaID string) string {
	if p, ok := personaPrompts[personaID]; ok {
		return p
	}
	return DefaultSystemPrompt
}

// KnownPersona reports whether personaID has a dedicated prompt
func KnownPersona(personaID string) bool {
	_, ok := personaPrompts[personaID]
	return ok
}

func orGeneral(s string) string {
	if strings.TrimSpace(s) == "" {
		return "General"
	}
	return s
}

// DescriptionMessages asks for a short project description
func DescriptionMessages(projectName, category, gradeLevel string) []Message {
	return []Message{
		{Role: RoleSystem, Content: "You are an enthusiastic teacher's assistant. Write a short, engaging (2-3 sentences) description for a student project. Keep the tone encouraging and age-appropriate."},
		{Role: RoleUser, Content: fmt.Sprintf("Create a description for a project named %q.\nCategory: %s.\nGrade Level: %s.",
			projectName, orGeneral(category), orGeneral(gradeLevel))},
	}
}

const imagePromptSystem = `You are an expert at writing prompts for an image model that illustrates student project covers.

STRUCTURE (in this order):
1. Primary Subject - the main focus, specific rather than generic
2. Subject Behavior - what the subject is doing
3. Visual Style - artistic medium or aesthetic
4. Environmental Context - setting, lighting, mood

RULES:
- Use descriptive, direct language, not commands like "create" or "generate"
- Focus on positive descriptions and avoid negations
- Include quality terms such as "detailed" and "high quality"
- Age-appropriate and educational
- 20-50 words
- ALWAYS use an illustration style (digital illustration, cartoon style, vector art)
- NEVER include real people or photorealistic humans

RETURN ONLY THE PROMPT, with no explanations or markdown.`

// ImagePromptMessages asks the completion endpoint to write an image prompt
func ImagePromptMessages(projectName, description, category string) []Message {
	user := fmt.Sprintf("Create an image prompt for:\nProject: %q\nCategory: %s\n", projectName, orGeneral(category))
	if description != "" {
		user += fmt.Sprintf("Description: %s\n", description)
	}
	user += "\nThe image should work as an engaging educational project cover for students."
	return []Message{
		{Role: RoleSystem, Content: imagePromptSystem},
		{Role: RoleUser, Content: user},
	}
}

// Source is a research link offered to the summarizer
type Source struct {
	ID      string
	Kind    string
	Title   string
	URL     string
	Summary string
}

// SummaryMessages asks for a markdown research summary citing sources as
// [label](source:<id>)
func SummaryMessages(title, criteria string, sources []Source) []Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Research topic: %s\n", title)
	if criteria != "" {
		fmt.Fprintf(&b, "What the student wants to find out: %s\n", criteria)
	}
	b.WriteString("\nSources:\n")
	for _, s := range sources {
		fmt.Fprintf(&b, "[source:%s] %s %s %s", s.ID, s.Kind, s.Title, s.URL)
		if s.Summary != "" {
			fmt.Fprintf(&b, " %s", s.Summary)
		}
		b.WriteString("\n")
	}

	return []Message{
		{Role: RoleSystem, Content: `You summarize a student's research for them in friendly Markdown.
Cite every fact with a link of the form [short label](source:<id>) using only the ids listed.
Never invent sources or URLs.` + BaseInstruction},
		{Role: RoleUser, Content: b.String()},
	}
}
