package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alfred-assistant/alfred/pkg/usecase/chat"
	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

func TestIsTokenLimitError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name: "token limit error",
			err: genai.APIError{
				Code:    400,
				Status:  "INVALID_ARGUMENT",
				Message: "The input token count (2500030) exceeds the maximum number of tokens allowed (1048576).",
			},
			expected: true,
		},
		{
			name: "400 INVALID_ARGUMENT but unrelated",
			err: genai.APIError{
				Code:    400,
				Status:  "INVALID_ARGUMENT",
				Message: "invalid parameter format",
			},
			expected: false,
		},
		{
			name: "500 error",
			err: genai.APIError{
				Code:    500,
				Status:  "INTERNAL_ERROR",
				Message: "internal server error",
			},
			expected: false,
		},
		{
			name:     "other error type",
			err:      errors.New("network timeout"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, chat.IsTokenLimitErrorForTest(tt.err)).Equal(tt.expected)
		})
	}
}

func TestCompressHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("empty history", func(t *testing.T) {
		_, err := chat.CompressHistoryForTest(ctx, &mockGemini{}, []*genai.Content{})
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("history is empty")
	})

	t.Run("oldest turns become a summary", func(t *testing.T) {
		contents := []*genai.Content{
			genai.NewContentFromText("I am moving to Lyon next month", genai.RoleUser),
			genai.NewContentFromText("Good luck with the move!", genai.RoleModel),
			genai.NewContentFromText("Which papers do I need?", genai.RoleUser),
			genai.NewContentFromText("A lease and an ID card.", genai.RoleModel),
			genai.NewContentFromText("And for the bank?", genai.RoleUser),
			genai.NewContentFromText("Just a proof of address.", genai.RoleModel),
		}
		initial := len(contents)

		var requested []*genai.Content
		mock := &mockGemini{
			generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				requested = contents
				return textResponse("- user moves to Lyon next month"), nil
			},
		}

		compressed, err := chat.CompressHistoryForTest(ctx, mock, contents)
		gt.NoError(t, err)
		gt.True(t, len(compressed) < initial)
		gt.V(t, compressed[0].Role).Equal(genai.RoleUser)
		gt.A(t, compressed[0].Parts).Length(1)
		gt.S(t, compressed[0].Parts[0].Text).Contains("Earlier in this session")
		gt.S(t, compressed[0].Parts[0].Text).Contains("moves to Lyon")

		// the summary request ends with the instruction and leaves the history alone
		instruction := requested[len(requested)-1].Parts[0].Text
		gt.S(t, instruction).Contains("Summarize the conversation")
		gt.S(t, instruction).Contains("saved to memory")
		gt.S(t, instruction).Contains("Drive actions")
		gt.V(t, len(contents)).Equal(initial)
	})

	t.Run("summary error", func(t *testing.T) {
		contents := []*genai.Content{
			genai.NewContentFromText("First message with enough content to make the byte size significant", genai.RoleUser),
			genai.NewContentFromText("Second message with enough content to make the byte size significant", genai.RoleModel),
			genai.NewContentFromText("Third message with enough content to make the byte size significant", genai.RoleUser),
			genai.NewContentFromText("Fourth message with enough content to make the byte size significant", genai.RoleModel),
			genai.NewContentFromText("Fifth message with enough content to make the byte size significant", genai.RoleUser),
		}
		mock := &mockGemini{
			generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return nil, errors.New("API error")
			},
		}

		_, err := chat.CompressHistoryForTest(ctx, mock, contents)
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("failed to summarize")
	})

	t.Run("empty summary", func(t *testing.T) {
		contents := []*genai.Content{
			genai.NewContentFromText("First message with enough content", genai.RoleUser),
			genai.NewContentFromText("Second message with enough content", genai.RoleModel),
			genai.NewContentFromText("Third message with enough content", genai.RoleUser),
			genai.NewContentFromText("Fourth message with enough content", genai.RoleModel),
			genai.NewContentFromText("Fifth message with enough content", genai.RoleUser),
		}
		mock := &mockGemini{
			generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return &genai.GenerateContentResponse{}, nil
			},
		}

		_, err := chat.CompressHistoryForTest(ctx, mock, contents)
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("empty summary")
	})

	t.Run("insufficient content to compress", func(t *testing.T) {
		contents := []*genai.Content{
			genai.NewContentFromText("x", genai.RoleUser),
		}

		_, err := chat.CompressHistoryForTest(ctx, &mockGemini{}, contents)
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("insufficient content")
	})
}
