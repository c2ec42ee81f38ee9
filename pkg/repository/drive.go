package repository

import (
	"context"

	"github.com/alfred-assistant/alfred/pkg/adapter"
	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultHintFolder is the subfolder of the shared root where the memory file is usually kept
const DefaultHintFolder = "Mémoire Alfred"

type driveDocument struct {
	drive      adapter.Drive
	fileName   string
	hintFolder string

	// resolved location, kept after the first lookup
	resolved bool
	parentID string
	fileID   string
}

// NewDrive keeps the document as a JSON file in the shared Drive folder.
// Both the root and the hint subfolder are searched; the candidate holding
// the most memories is used, and the hint folder wins ties.
func NewDrive(drive adapter.Drive, fileName, hintFolder string) Document {
	return &driveDocument{
		drive:      drive,
		fileName:   fileName,
		hintFolder: hintFolder,
	}
}

type driveCandidate struct {
	parentID string
	entry    *model.DriveEntry
	data     []byte
	count    int
}

func (d *driveDocument) Read(ctx context.Context) ([]byte, error) {
	candidates, err := d.candidates(ctx)
	if err != nil {
		return nil, err
	}

	d.resolved = true
	d.parentID = d.drive.RootID()
	d.fileID = ""

	if len(candidates) == 0 {
		return nil, goerr.Wrap(ErrDocumentNotFound, "no memory file in drive", goerr.V("name", d.fileName))
	}

	// candidates are ordered root first, so >= lets the hint folder win a tie
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.count >= best.count {
			best = c
		}
	}

	d.parentID = best.parentID
	d.fileID = best.entry.ID
	logging.From(ctx).Debug("memory file selected in drive",
		"file_id", d.fileID,
		"parent_id", d.parentID,
		"count", best.count,
		"candidates", len(candidates),
	)
	return best.data, nil
}

func (d *driveDocument) candidates(ctx context.Context) ([]*driveCandidate, error) {
	folders := []string{d.drive.RootID()}

	if d.hintFolder != "" {
		hints, err := d.drive.FindByName(ctx, d.drive.RootID(), d.hintFolder)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to look up memory folder", goerr.V("folder", d.hintFolder))
		}
		for _, h := range hints {
			if h.IsFolder() {
				folders = append(folders, h.ID)
			}
		}
	}

	var candidates []*driveCandidate
	for _, folderID := range folders {
		entries, err := d.drive.FindByName(ctx, folderID, d.fileName)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to look up memory file", goerr.V("parent_id", folderID))
		}

		for _, entry := range entries {
			if entry.IsFolder() {
				continue
			}
			data, _, err := d.drive.Download(ctx, entry)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to download memory file", goerr.V("file_id", entry.ID))
			}

			count := 0
			if store, _, err := model.DecodeStore(data); err == nil {
				count = store.Count()
			} else {
				logging.From(ctx).Warn("unreadable memory file candidate", "file_id", entry.ID, "error", err)
			}

			candidates = append(candidates, &driveCandidate{
				parentID: folderID,
				entry:    entry,
				data:     data,
				count:    count,
			})
		}
	}

	return candidates, nil
}

func (d *driveDocument) Write(ctx context.Context, data []byte) error {
	if !d.resolved {
		if _, err := d.Read(ctx); err != nil && !IsNotFound(err) {
			return err
		}
	}

	entry, err := d.drive.Upload(ctx, d.parentID, d.fileID, d.fileName, "application/json", data)
	if err != nil {
		return goerr.Wrap(err, "failed to upload memory file", goerr.V("name", d.fileName))
	}
	d.fileID = entry.ID
	return nil
}

func (d *driveDocument) Name() string {
	return "drive://" + d.fileName
}
