package promptstyle

import "strings"

const marker = "INTAKE_PROMPT_STYLE_V1"

type Mode string

const (
	ModeJSON Mode = "json"
	ModeText Mode = "text"
)

// ApplySystem prepends the shared output-discipline block to a system prompt.
// Prompts that already carry the block are returned unchanged.
func ApplySystem(system string, mode Mode) string {
	base := strings.TrimSpace(system)
	if base == "" || strings.Contains(base, marker) {
		return base
	}

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString("\nYou support an executive search firm during client intake.")
	if task := firstLine(base); task != "" {
		b.WriteString("\nTask summary: " + task)
	}
	b.WriteString("\nFollow the system and user instructions precisely.")
	b.WriteString("\nDo not invent facts about the company or the role.")
	b.WriteString("\nIf information is missing, leave it empty or use conservative defaults.")
	switch mode {
	case ModeJSON:
		b.WriteString("\nReturn a single JSON object that conforms to the schema and contains no extra keys.")
	default:
		b.WriteString("\nAnswer with the requested text only.")
	}
	b.WriteString("\n---\n")
	b.WriteString(base)
	return b.String()
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
