package chat_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// mockGemini is a mock implementation of adapter.Gemini for testing
type mockGemini struct {
	generateFunc func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	requests     [][]*genai.Content
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.requests = append(m.requests, contents)
	if m.generateFunc != nil {
		return m.generateFunc(ctx, contents, config)
	}
	return nil, errors.New("not implemented")
}

// lastPrompt returns the text of the final turn of the latest request
func (m *mockGemini) lastPrompt() string {
	if len(m.requests) == 0 {
		return ""
	}
	req := m.requests[len(m.requests)-1]
	return req[len(req)-1].Parts[0].Text
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role:  genai.RoleModel,
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}

func replyWith(text string) *mockGemini {
	return &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse(text), nil
		},
	}
}

// mockDocument keeps the memory document in memory
type mockDocument struct {
	data     []byte
	writes   int
	readErr  error
	writeErr error
}

func (m *mockDocument) Read(ctx context.Context) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.data == nil {
		return nil, goerr.Wrap(repository.ErrDocumentNotFound, "empty mock")
	}
	return m.data, nil
}

func (m *mockDocument) Write(ctx context.Context, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *mockDocument) Name() string {
	return "mock"
}

// mockDrive is a flat Drive folder
type mockDrive struct {
	seq     int
	entries []*model.DriveEntry
	trashed []string
}

func (m *mockDrive) add(name, mimeType string) *model.DriveEntry {
	m.seq++
	entry := &model.DriveEntry{ID: fmt.Sprintf("id-%d", m.seq), Name: name, MimeType: mimeType}
	m.entries = append(m.entries, entry)
	return entry
}

func (m *mockDrive) RootID() string { return "root" }

func (m *mockDrive) List(ctx context.Context, folderID string) ([]*model.DriveEntry, error) {
	if folderID != "root" {
		return nil, nil
	}
	return m.entries, nil
}

func (m *mockDrive) FindByName(ctx context.Context, parentID, name string) ([]*model.DriveEntry, error) {
	return nil, nil
}

func (m *mockDrive) CreateFolder(ctx context.Context, parentID, name string) (*model.DriveEntry, error) {
	return m.add(name, model.MimeTypeFolder), nil
}

func (m *mockDrive) Trash(ctx context.Context, id string) error {
	m.trashed = append(m.trashed, id)
	return nil
}

func (m *mockDrive) Download(ctx context.Context, entry *model.DriveEntry) ([]byte, string, error) {
	return nil, "", errors.New("not implemented")
}

func (m *mockDrive) Upload(ctx context.Context, parentID, fileID, name, mimeType string, data []byte) (*model.DriveEntry, error) {
	return nil, errors.New("not implemented")
}
