package chat

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/alfred-assistant/alfred/pkg/adapter"
	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/usecase/memory"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

//go:embed prompt/system.md
var systemPromptRaw string

//go:embed prompt/answer.md
var answerPromptRaw string

var answerPromptTmpl = template.Must(template.New("answer").Parse(answerPromptRaw))

type answerMemory struct {
	Text  string
	Group string
}

// Answer replies to prompt with the language model. The best ranked
// memories are placed in a [Relevant memories] block in front of it; with
// no memory the prompt goes out unchanged.
func (s *Session) Answer(ctx context.Context, prompt string) (*model.Result, error) {
	if s.gemini == nil {
		return model.NewResult(model.SubtypeWarning, "I can only handle memory and Drive commands: no language model is configured."), nil
	}

	enriched, err := s.EnrichPrompt(ctx, prompt)
	if err != nil {
		return nil, err
	}

	s.history = append(s.history, genai.NewContentFromText(enriched, genai.RoleUser))

	resp, err := s.generate(ctx)
	if err != nil {
		// the failed question stays out of the history
		s.history = s.history[:len(s.history)-1]
		return nil, err
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		s.history = append(s.history, resp.Candidates[0].Content)
	}

	return &model.Result{Content: strings.TrimSpace(adapter.ResponseText(resp)), Subtype: model.SubtypeNone}, nil
}

// EnrichPrompt builds the text sent to the language model for prompt
func (s *Session) EnrichPrompt(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)

	hits, err := s.memory.Search(ctx, prompt, memory.SearchOptions{DynamicLimit: true})
	if err != nil {
		return "", goerr.Wrap(err, "failed to search memories")
	}
	if len(hits) == 0 {
		return prompt, nil
	}
	if len(hits) > s.answerMemories {
		hits = hits[:s.answerMemories]
	}

	memories := make([]answerMemory, len(hits))
	for i, h := range hits {
		memories[i] = answerMemory{Text: h.Text, Group: h.Group}
	}

	var buf bytes.Buffer
	if err := answerPromptTmpl.Execute(&buf, map[string]any{
		"Memories": memories,
		"Question": prompt,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to execute answer prompt template")
	}

	logging.From(ctx).Debug("prompt enriched with memories", "count", len(memories))
	return strings.TrimSpace(buf.String()), nil
}

// generate calls the model with the history and compresses the history
// once when it exceeds the token limit
func (s *Session) generate(ctx context.Context) (*genai.GenerateContentResponse, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPromptRaw, ""),
	}

	resp, err := s.gemini.GenerateContent(ctx, s.history, config)
	if err == nil {
		return resp, nil
	}
	if !isTokenLimitError(err) {
		return nil, goerr.Wrap(err, "failed to generate answer")
	}

	logging.From(ctx).Warn("token limit exceeded, compressing history", "turns", len(s.history))
	compressed, cerr := compressHistory(ctx, s.gemini, s.history)
	if cerr != nil {
		return nil, goerr.Wrap(cerr, "failed to compress history")
	}
	s.history = compressed

	resp, err = s.gemini.GenerateContent(ctx, s.history, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate answer after compression")
	}
	return resp, nil
}
