package chat

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"strings"

	"github.com/alfred-assistant/alfred/pkg/adapter"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

const (
	compressionRatio = 0.7 // share of history bytes folded into the summary
)

// summaryHeader opens the turn that replaces compressed history. Saved
// memories are not part of it: they are looked up again on every answer.
const summaryHeader = "=== Earlier in this session (memories and Drive actions included) ===\n\n"

//go:embed prompt/summarize.md
var summarizePromptRaw string

// isTokenLimitError checks if the error is due to token limit exceeded
func isTokenLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	// e.g. "The input token count (2500030) exceeds the maximum number of tokens allowed (1048576)."
	return apiErr.Code == 400 &&
		apiErr.Status == "INVALID_ARGUMENT" &&
		strings.HasPrefix(apiErr.Message, "The input token count (") &&
		strings.Contains(apiErr.Message, ") exceeds the maximum number of tokens allowed (")
}

func contentSize(content *genai.Content) int {
	data, err := json.Marshal(content)
	if err != nil {
		return 0
	}
	return len(data)
}

// compressHistory replaces the oldest turns, up to compressionRatio of the
// history size, with one summary turn
func compressHistory(ctx context.Context, gemini adapter.Gemini, contents []*genai.Content) ([]*genai.Content, error) {
	if len(contents) == 0 {
		return nil, goerr.New("history is empty")
	}

	total := 0
	sizes := make([]int, len(contents))
	for i, content := range contents {
		sizes[i] = contentSize(content)
		total += sizes[i]
	}

	threshold := int(float64(total) * compressionRatio)
	cut, cumulative := 0, 0
	for i, size := range sizes {
		cumulative += size
		if cumulative >= threshold {
			cut = i + 1
			break
		}
	}

	if cut == 0 || cut >= len(contents) {
		return nil, goerr.New("insufficient content to compress", goerr.V("turns", len(contents)))
	}

	summary, err := summarizeContents(ctx, gemini, contents[:cut])
	if err != nil {
		return nil, goerr.Wrap(err, "failed to summarize history")
	}

	head := &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: summaryHeader + summary},
		},
	}
	return append([]*genai.Content{head}, contents[cut:]...), nil
}

func summarizeContents(ctx context.Context, gemini adapter.Gemini, contents []*genai.Content) (string, error) {
	request := make([]*genai.Content, 0, len(contents)+1)
	request = append(request, contents...)
	request = append(request, genai.NewContentFromText(summarizePromptRaw, genai.RoleUser))

	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPromptRaw, ""),
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}

	resp, err := gemini.GenerateContent(ctx, request, config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate summary")
	}

	summary := strings.TrimSpace(adapter.ResponseText(resp))
	if summary == "" {
		return "", goerr.New("empty summary generated")
	}
	return summary, nil
}

// CompressHistoryForTest exposes compressHistory to tests
func CompressHistoryForTest(ctx context.Context, gemini adapter.Gemini, contents []*genai.Content) ([]*genai.Content, error) {
	return compressHistory(ctx, gemini, contents)
}

// IsTokenLimitErrorForTest exposes isTokenLimitError to tests
func IsTokenLimitErrorForTest(err error) bool {
	return isTokenLimitError(err)
}
