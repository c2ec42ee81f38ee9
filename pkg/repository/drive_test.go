package repository_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/repository"
	"github.com/m-mizutani/gt"
)

// mockDrive is an in-memory tree of entries keyed by parent ID
type mockDrive struct {
	seq      int
	children map[string][]*model.DriveEntry
	content  map[string][]byte
	uploads  int
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

func (m *mockDrive) RootID() string { return "root" }

func (m *mockDrive) List(ctx context.Context, folderID string) ([]*model.DriveEntry, error) {
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
	return m.add(parentID, name, model.MimeTypeFolder, nil), nil
}

func (m *mockDrive) Trash(ctx context.Context, id string) error { return nil }

func (m *mockDrive) Download(ctx context.Context, entry *model.DriveEntry) ([]byte, string, error) {
	return m.content[entry.ID], entry.MimeType, nil
}

func (m *mockDrive) Upload(ctx context.Context, parentID, fileID, name, mimeType string, data []byte) (*model.DriveEntry, error) {
	m.uploads++
	if fileID != "" {
		m.content[fileID] = data
		return &model.DriveEntry{ID: fileID, Name: name, MimeType: mimeType}, nil
	}
	return m.add(parentID, name, mimeType, data), nil
}

func memoryJSON(n int) []byte {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"timestamp":"2025-01-01 00:00:00","text":"item %d"}`, i)
	}
	return []byte(`{"schema_version":2,"free_memories":[` + strings.Join(items, ",") + `]}`)
}

func TestDrivePicksLargestCandidate(t *testing.T) {
	drv := newMockDrive()
	drv.add("root", "memory.json", "application/json", memoryJSON(1))
	hint := drv.add("root", repository.DefaultHintFolder, model.MimeTypeFolder, nil)
	drv.add(hint.ID, "memory.json", "application/json", memoryJSON(3))

	doc := repository.NewDrive(drv, "memory.json", repository.DefaultHintFolder)
	ctx := context.Background()

	got, err := doc.Read(ctx)
	gt.NoError(t, err)
	gt.Equal(t, string(got), string(memoryJSON(3)))

	// later writes update the selected file in place
	gt.NoError(t, doc.Write(ctx, []byte(`{}`)))
	files, err := drv.FindByName(ctx, hint.ID, "memory.json")
	gt.NoError(t, err)
	gt.A(t, files).Length(1)
	gt.Equal(t, string(drv.content[files[0].ID]), `{}`)
}

func TestDriveTieGoesToHintFolder(t *testing.T) {
	drv := newMockDrive()
	drv.add("root", "memory.json", "application/json", []byte(`{"free_memories":[{"text":"root"}]}`))
	hint := drv.add("root", repository.DefaultHintFolder, model.MimeTypeFolder, nil)
	drv.add(hint.ID, "memory.json", "application/json", []byte(`{"free_memories":[{"text":"hint"}]}`))

	doc := repository.NewDrive(drv, "memory.json", repository.DefaultHintFolder)
	got, err := doc.Read(context.Background())
	gt.NoError(t, err)
	gt.S(t, string(got)).Contains("hint")
}

func TestDriveCreatesFileInRoot(t *testing.T) {
	drv := newMockDrive()
	doc := repository.NewDrive(drv, "memory.json", repository.DefaultHintFolder)
	ctx := context.Background()

	_, err := doc.Read(ctx)
	gt.True(t, repository.IsNotFound(err))

	gt.NoError(t, doc.Write(ctx, []byte(`{"schema_version":2}`)))
	gt.NoError(t, doc.Write(ctx, []byte(`{"schema_version":3}`)))

	files, err := drv.FindByName(ctx, "root", "memory.json")
	gt.NoError(t, err)
	gt.A(t, files).Length(1)
	gt.Equal(t, string(drv.content[files[0].ID]), `{"schema_version":3}`)
	gt.Equal(t, drv.uploads, 2)
}
