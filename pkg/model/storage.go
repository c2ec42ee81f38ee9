package model

import (
	"regexp"
	"strings"
)

var (
	storageNounRe = regexp.MustCompile(`(?i)\b(?:google\s+drive|drive|sous[\s-]?dossiers?|dossiers?|fichiers?|sub-?folders?|folders?|files?|documents?|docs?|pdfs?)\b`)
	fileNameRe    = regexp.MustCompile(`(?i)[\p{L}0-9_\-]\.(?:pdf|docx?|txt|md|csv|xlsx?|pptx?|odt|ods|rtf|json|jpe?g|png|gif|zip)\b`)
)

// MentionsStorage reports whether text names a file storage object: the
// Drive, a file or folder noun, or a file name with a known extension.
// Memory commands never capture such utterances.
func MentionsStorage(text string) bool {
	return storageNounRe.MatchString(text) || fileNameRe.MatchString(text)
}

// StorageAction is the verb of a storage intent
type StorageAction string

const (
	StorageActionList      StorageAction = "list"
	StorageActionRead      StorageAction = "read"
	StorageActionCreate    StorageAction = "create"
	StorageActionDelete    StorageAction = "delete"
	StorageActionReadMatch StorageAction = "read_match"
	StorageActionSummarize StorageAction = "summarize"
	StorageActionClarify   StorageAction = "clarify"
	StorageActionConfirm   StorageAction = "confirm"
	StorageActionCancel    StorageAction = "cancel"
	StorageActionFallback  StorageAction = "fallback"
)

// EntryType is the kind of object a storage intent targets
type EntryType string

const (
	EntryTypeFile      EntryType = "file"
	EntryTypeFolder    EntryType = "folder"
	EntryTypeSubfolder EntryType = "subfolder"
)

// IsFolder reports whether the type targets a folder
func (t EntryType) IsFolder() bool {
	return t == EntryTypeFolder || t == EntryTypeSubfolder
}

// StorageIntent is the structured command produced from an utterance
type StorageIntent struct {
	Action    StorageAction `json:"action"`
	Type      EntryType     `json:"type,omitempty"`
	Name      string        `json:"name,omitempty"`
	Extension string        `json:"extension,omitempty"`
	Parent    string        `json:"parent,omitempty"`
	Missing   []string      `json:"missing,omitempty"`
	Index     int           `json:"index,omitempty"`
}

// MimeTypeFolder is the Drive mime type of folders
const MimeTypeFolder = "application/vnd.google-apps.folder"

// DriveEntry is a file or folder in the remote file storage
type DriveEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// IsFolder reports whether the entry is a folder
func (e *DriveEntry) IsFolder() bool {
	return e.MimeType == MimeTypeFolder
}

// HasExtension reports whether the entry name ends with .ext (case-insensitive)
func (e *DriveEntry) HasExtension(ext string) bool {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(e.Name), "."+ext)
}

// PendingTrash is a proposed move to trash waiting for confirmation
type PendingTrash struct {
	Entry  DriveEntry `json:"entry"`
	Parent string     `json:"parent,omitempty"`
}
