package chat

import (
	"context"

	"github.com/alfred-assistant/alfred/pkg/adapter"
	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/usecase/drive"
	"github.com/alfred-assistant/alfred/pkg/usecase/memory"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
	"google.golang.org/genai"
)

// DefaultAnswerMemories is the most memories placed in front of a question
const DefaultAnswerMemories = 7

// Session is one interactive conversation. It routes each utterance to the
// memory commands, then to the Drive commands, and answers everything else
// with the language model.
type Session struct {
	memory *memory.UseCase
	drive  *drive.UseCase
	gemini adapter.Gemini

	answerMemories int

	state   State
	pending *pendingAction
	history []*genai.Content
}

// NewInput contains parameters for creating a new chat session. Drive and
// Gemini are optional.
type NewInput struct {
	Memory *memory.UseCase
	Drive  *drive.UseCase
	Gemini adapter.Gemini

	// AnswerMemories overrides DefaultAnswerMemories when positive
	AnswerMemories int
}

func New(input NewInput) *Session {
	s := &Session{
		memory:         input.Memory,
		drive:          input.Drive,
		gemini:         input.Gemini,
		answerMemories: DefaultAnswerMemories,
	}
	if input.AnswerMemories > 0 {
		s.answerMemories = input.AnswerMemories
	}
	return s
}

// Send handles one utterance to completion: autosave heartbeat, routing,
// then the memory-enriched answer when nothing recognized it.
func (s *Session) Send(ctx context.Context, message string) (*model.Result, error) {
	if _, err := s.memory.AutosaveHeartbeat(ctx); err != nil {
		logging.From(ctx).Warn("autosave failed", "error", err)
	}

	if result := s.Route(ctx, message); result != nil {
		return result, nil
	}

	return s.Answer(ctx, message)
}
