package drive

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/m-mizutani/goerr/v2"
)

// decodeJSON reads the first JSON value of an LLM answer. Markdown fences
// and surrounding prose are dropped, and broken JSON gets one repair attempt.
func decodeJSON(raw string, v any) error {
	cleaned := cleanJSONResponse(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return goerr.Wrap(err, "failed to repair JSON", goerr.V("raw", raw))
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return goerr.Wrap(err, "failed to decode JSON", goerr.V("raw", raw))
	}
	return nil
}

func cleanJSONResponse(response string) string {
	response = removeMarkdownCodeBlocks(response)

	if start := strings.IndexAny(response, "{["); start >= 0 {
		response = response[start:]
		if end := findJSONEnd(response); end >= 0 {
			response = response[:end+1]
		}
	}
	return strings.TrimSpace(response)
}

func removeMarkdownCodeBlocks(s string) string {
	start := 0
	for {
		idx := strings.Index(s[start:], "```")
		if idx < 0 {
			return s
		}
		idx += start

		end := strings.Index(s[idx+3:], "```")
		if end < 0 {
			return s
		}
		end += idx + 3

		// drop the language tag on the fence line
		content := s[idx+3 : end]
		if nl := strings.Index(content, "\n"); nl >= 0 {
			content = content[nl+1:]
		}

		s = s[:idx] + content + s[end+3:]
		start = idx + len(content)
	}
}

func findJSONEnd(s string) int {
	depth := 0
	inString := false
	escape := false

	for i, c := range s {
		switch {
		case escape:
			escape = false
		case c == '\\':
			escape = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
