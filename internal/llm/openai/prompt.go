package openai

import (
	"fmt"
	"strings"

	"skillgap-backend/internal/llm"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

const (
	systemPromptExtract = "You are a CV skill extraction engine. Respond with JSON only. No markdown. Output must match the schema exactly."
	systemPromptFixJSON = "You are a JSON repair tool. Return only valid JSON that matches the schema exactly."

	extractSchema = `Return a JSON object with exactly these keys:
{
  "skills": [
    {"name": string, "level": integer 1-5, "yearsExperience": number or null, "evidence": string}
  ],
  "summary": string,
  "fitAssessment": string
}
Level scale: 1=Beginner, 2=Advanced Beginner, 3=Intermediate, 4=Advanced, 5=Expert.
Only include skills with explicit evidence in the CV. Never invent skills.
Grade every required skill that appears in the CV; skills absent from the CV are simply omitted.`
)

// BuildPrompt creates the chat messages for one skill extraction request.
func BuildPrompt(in llm.ExtractInput) []Message {
	return []Message{
		{Role: "system", Content: systemPromptExtract},
		{Role: "system", Content: extractSchema},
		{Role: "user", Content: buildUserPrompt(in)},
	}
}

func buildUserPrompt(in llm.ExtractInput) string {
	var b strings.Builder

	title := strings.TrimSpace(in.PositionTitle)
	if title == "" {
		title = "N/A"
	}
	fmt.Fprintf(&b, "Target position: %s\n\n", title)

	if len(in.RequiredSkills) > 0 {
		b.WriteString("Required skills (grade these against the CV):\n")
		for _, s := range in.RequiredSkills {
			fmt.Fprintf(&b, "- %s (required level %d)\n", s.Name, s.RequiredLevel)
		}
		b.WriteString("\n")
	}
	if len(in.NiceToHaveSkills) > 0 {
		b.WriteString("Nice-to-have skills:\n")
		for _, s := range in.NiceToHaveSkills {
			fmt.Fprintf(&b, "- %s\n", s.Name)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "CV Text:\n%s", in.CVText)
	return b.String()
}

func buildFixPrompt(raw []byte) []Message {
	return []Message{
		{Role: "system", Content: systemPromptFixJSON},
		{Role: "system", Content: extractSchema},
		{Role: "user", Content: fmt.Sprintf("Fix this JSON to match the schema exactly. Output JSON only:\n%s", string(raw))},
	}
}
