package advisor

import "strings"

// ExtractJSON pulls the JSON document out of an advisor reply.
//
// Advisors frequently wrap their structured output in a fenced code
// block with surrounding prose. The fenced block wins when present;
// otherwise the text between the first '{' and last '}' is taken.
// Returns "" when no JSON object can be located.
func ExtractJSON(text string) string {
	if block := fencedBlock(text); block != "" {
		return block
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

// fencedBlock returns the contents of the first ```json (or bare ```)
// fence, or "" when the text has no complete fence.
func fencedBlock(text string) string {
	for _, marker := range []string{"```json", "```"} {
		open := strings.Index(text, marker)
		if open < 0 {
			continue
		}
		rest := text[open+len(marker):]
		closing := strings.Index(rest, "```")
		if closing < 0 {
			continue
		}
		return strings.TrimSpace(rest[:closing])
	}
	return ""
}
