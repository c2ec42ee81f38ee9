package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Google Workspace documents have no binary content and must be exported
var exportMimeTypes = map[string]string{
	"application/vnd.google-apps.document":     "text/plain",
	"application/vnd.google-apps.spreadsheet":  "text/csv",
	"application/vnd.google-apps.presentation": "application/pdf",
}

const driveEntryFields = "id,name,mimeType,size"

// Drive is the remote file and folder service
type Drive interface {
	// RootID returns the shared folder everything lives under
	RootID() string
	// List returns direct children of folderID that are not trashed
	List(ctx context.Context, folderID string) ([]*model.DriveEntry, error)
	// FindByName returns direct children of parentID named exactly name
	FindByName(ctx context.Context, parentID, name string) ([]*model.DriveEntry, error)
	// CreateFolder creates a folder under parentID
	CreateFolder(ctx context.Context, parentID, name string) (*model.DriveEntry, error)
	// Trash moves an entry to the trash
	Trash(ctx context.Context, id string) error
	// Download returns the content of a file and its effective mime type
	Download(ctx context.Context, entry *model.DriveEntry) ([]byte, string, error)
	// Upload writes data to fileID, or creates a new file under parentID if fileID is empty
	Upload(ctx context.Context, parentID, fileID, name, mimeType string, data []byte) (*model.DriveEntry, error)
}

type driveClient struct {
	rootID  string
	service *drive.Service
}

// NewDrive creates a Drive client authenticated with a service account key file
func NewDrive(ctx context.Context, credentialsPath, rootID string) (Drive, error) {
	opts := []option.ClientOption{option.WithScopes(drive.DriveScope)}
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create drive service")
	}

	return &driveClient{
		rootID:  rootID,
		service: service,
	}, nil
}

func (d *driveClient) RootID() string {
	return d.rootID
}

func (d *driveClient) List(ctx context.Context, folderID string) ([]*model.DriveEntry, error) {
	q := fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))
	return d.query(ctx, q)
}

func (d *driveClient) FindByName(ctx context.Context, parentID, name string) ([]*model.DriveEntry, error) {
	q := fmt.Sprintf("'%s' in parents and name='%s' and trashed=false", escapeQuery(parentID), escapeQuery(name))
	return d.query(ctx, q)
}

func (d *driveClient) query(ctx context.Context, q string) ([]*model.DriveEntry, error) {
	var entries []*model.DriveEntry
	call := d.service.Files.List().Q(q).Fields("nextPageToken", "files("+driveEntryFields+")").PageSize(100)
	err := call.Pages(ctx, func(list *drive.FileList) error {
		for _, f := range list.Files {
			entries = append(entries, toEntry(f))
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list drive files", goerr.V("query", q))
	}
	return entries, nil
}

func (d *driveClient) CreateFolder(ctx context.Context, parentID, name string) (*model.DriveEntry, error) {
	f, err := d.service.Files.Create(&drive.File{
		Name:     name,
		MimeType: model.MimeTypeFolder,
		Parents:  []string{parentID},
	}).Fields(driveEntryFields).Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create folder", goerr.V("name", name), goerr.V("parent", parentID))
	}
	return toEntry(f), nil
}

func (d *driveClient) Trash(ctx context.Context, id string) error {
	if _, err := d.service.Files.Update(id, &drive.File{Trashed: true}).Context(ctx).Do(); err != nil {
		return goerr.Wrap(err, "failed to trash drive entry", goerr.V("id", id))
	}
	return nil
}

func (d *driveClient) Download(ctx context.Context, entry *model.DriveEntry) ([]byte, string, error) {
	var (
		body     io.ReadCloser
		mimeType = entry.MimeType
	)

	if exportType, ok := exportMimeTypes[entry.MimeType]; ok {
		resp, err := d.service.Files.Export(entry.ID, exportType).Context(ctx).Download()
		if err != nil {
			return nil, "", goerr.Wrap(err, "failed to export drive file", goerr.V("id", entry.ID), goerr.V("mime_type", exportType))
		}
		body, mimeType = resp.Body, exportType
	} else {
		resp, err := d.service.Files.Get(entry.ID).Context(ctx).Download()
		if err != nil {
			return nil, "", goerr.Wrap(err, "failed to download drive file", goerr.V("id", entry.ID))
		}
		body = resp.Body
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to read drive file", goerr.V("id", entry.ID))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return data, mimeType, nil
}

func (d *driveClient) Upload(ctx context.Context, parentID, fileID, name, mimeType string, data []byte) (*model.DriveEntry, error) {
	media := bytes.NewReader(data)

	if fileID != "" {
		f, err := d.service.Files.Update(fileID, &drive.File{}).Media(media).Fields(driveEntryFields).Context(ctx).Do()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to update drive file", goerr.V("id", fileID))
		}
		return toEntry(f), nil
	}

	f, err := d.service.Files.Create(&drive.File{
		Name:     name,
		MimeType: mimeType,
		Parents:  []string{parentID},
	}).Media(media).Fields(driveEntryFields).Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create drive file", goerr.V("name", name), goerr.V("parent", parentID))
	}
	return toEntry(f), nil
}

func toEntry(f *drive.File) *model.DriveEntry {
	return &model.DriveEntry{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		Size:     f.Size,
	}
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
