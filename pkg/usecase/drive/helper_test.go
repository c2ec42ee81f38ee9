package drive_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/alfred-assistant/alfred/pkg/model"
	"google.golang.org/genai"
)

// mockGemini is a mock implementation of adapter.Gemini for testing
type mockGemini struct {
	generateFunc func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	calls        int
}

func (m *mockGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, contents, config)
	}
	return nil, errors.New("not implemented")
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: text}},
				},
			},
		},
	}
}

// replyWith returns a mockGemini always answering text
func replyWith(text string) *mockGemini {
	return &mockGemini{
		generateFunc: func(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse(text), nil
		},
	}
}

// mockDrive is an in-memory tree of entries keyed by parent ID
type mockDrive struct {
	seq      int
	children map[string][]*model.DriveEntry
	content  map[string][]byte
	trashed  []string
	listErr  error
}

func newMockDrive() *mockDrive {
	return &mockDrive{
		children: map[string][]*model.DriveEntry{},
		content:  map[string][]byte{},
	}
}

func (m *mockDrive) add(parentID, name, mimeType string, data []byte) *model.DriveEntry {
	m.seq++
	entry := &model.DriveEntry{ID: fmt.Sprintf("id-%d", m.seq), Name: name, MimeType: mimeType, Size: int64(len(data))}
	m.children[parentID] = append(m.children[parentID], entry)
	if data != nil {
		m.content[entry.ID] = data
	}
	return entry
}

func (m *mockDrive) folder(parentID, name string) *model.DriveEntry {
	return m.add(parentID, name, model.MimeTypeFolder, nil)
}

func (m *mockDrive) RootID() string { return "root" }

func (m *mockDrive) List(ctx context.Context, folderID string) ([]*model.DriveEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.children[folderID], nil
}

func (m *mockDrive) FindByName(ctx context.Context, parentID, name string) ([]*model.DriveEntry, error) {
	var out []*model.DriveEntry
	for _, e := range m.children[parentID] {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockDrive) CreateFolder(ctx context.Context, parentID, name string) (*model.DriveEntry, error) {
	return m.folder(parentID, name), nil
}

func (m *mockDrive) Trash(ctx context.Context, id string) error {
	m.trashed = append(m.trashed, id)
	return nil
}

func (m *mockDrive) Download(ctx context.Context, entry *model.DriveEntry) ([]byte, string, error) {
	return m.content[entry.ID], entry.MimeType, nil
}

func (m *mockDrive) Upload(ctx context.Context, parentID, fileID, name, mimeType string, data []byte) (*model.DriveEntry, error) {
	return nil, errors.New("not implemented")
}
