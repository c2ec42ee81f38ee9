package drive

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/alfred-assistant/alfred/pkg/adapter"
	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

//go:embed prompt/summarize.md
var summarizePromptRaw string

var summarizePromptTmpl = template.Must(template.New("summarize").Parse(summarizePromptRaw))

// Handle interprets utterance and executes the storage action. An error means
// a recognized action failed against the remote service.
func (u *UseCase) Handle(ctx context.Context, utterance string) (*Response, error) {
	intent := u.interpreter.Interpret(ctx, utterance)
	return u.Execute(ctx, intent)
}

// Execute runs an already interpreted intent
func (u *UseCase) Execute(ctx context.Context, intent *model.StorageIntent) (*Response, error) {
	resp := &Response{Intent: intent}

	var err error
	switch intent.Action {
	case model.StorageActionFallback, model.StorageActionConfirm, model.StorageActionCancel:
		return resp, nil

	case model.StorageActionClarify:
		resp.Result = clarify(intent.Missing)

	case model.StorageActionList:
		resp.Result, err = u.list(ctx, intent)

	case model.StorageActionCreate:
		resp.Result, err = u.create(ctx, intent)

	case model.StorageActionDelete:
		resp.Result, resp.Pending, err = u.proposeTrash(ctx, intent)

	case model.StorageActionRead:
		resp.Result, err = u.read(ctx, intent)

	case model.StorageActionReadMatch:
		resp.Result, err = u.readMatch(ctx, intent.Index)

	case model.StorageActionSummarize:
		resp.Result, err = u.summarize(ctx)

	default:
		return nil, goerr.New("unknown storage action", goerr.V("action", intent.Action))
	}
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("storage action executed",
		"action", intent.Action,
		"type", intent.Type,
		"name", intent.Name,
		"parent", intent.Parent,
	)
	return resp, nil
}

// ConfirmTrash moves a confirmed entry to the trash
func (u *UseCase) ConfirmTrash(ctx context.Context, pending *model.PendingTrash) (*model.Result, error) {
	if pending == nil || pending.Entry.ID == "" {
		return model.NewResult(model.SubtypeInfo, "Nothing to delete."), nil
	}
	if err := u.drive.Trash(ctx, pending.Entry.ID); err != nil {
		return nil, goerr.Wrap(err, "failed to move entry to trash", goerr.V("name", pending.Entry.Name))
	}

	logging.From(ctx).Info("drive entry trashed", "id", pending.Entry.ID, "name", pending.Entry.Name)
	return model.NewResult(model.SubtypeSuccess, "🗑️ **%s** moved to trash.", pending.Entry.Name), nil
}

func clarify(missing []string) *model.Result {
	if len(missing) == 0 {
		return model.NewResult(model.SubtypeWarning, "Can you be more specific about the file or folder?")
	}
	return model.NewResult(model.SubtypeWarning, "Please specify: %s.", strings.Join(missing, ", "))
}

func (u *UseCase) list(ctx context.Context, intent *model.StorageIntent) (*model.Result, error) {
	folder := &model.DriveEntry{ID: u.drive.RootID(), Name: "Drive", MimeType: model.MimeTypeFolder}
	if intent.Name != "" {
		found, err := u.findFolder(ctx, u.drive.RootID(), intent.Name, 0)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return model.NewResult(model.SubtypeWarning, "Folder **%s** not found.", intent.Name), nil
		}
		folder = found
	}

	var lines []string
	if err := u.walk(ctx, folder.ID, 0, func(entry *model.DriveEntry, depth int) {
		icon := "📄"
		if entry.IsFolder() {
			icon = "📁"
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", strings.Repeat("  ", depth), icon, entry.Name))
	}); err != nil {
		return nil, err
	}

	if len(lines) == 0 {
		return model.NewResult(model.SubtypeInfo, "This folder is empty."), nil
	}
	return model.NewResult(model.SubtypeInfo, "**%s**\n%s", folder.Name, strings.Join(lines, "\n")), nil
}

func (u *UseCase) create(ctx context.Context, intent *model.StorageIntent) (*model.Result, error) {
	if intent.Name == "" {
		return clarify([]string{"name"}), nil
	}
	if intent.Type != "" && !intent.Type.IsFolder() {
		return model.NewResult(model.SubtypeWarning, "I can only create folders."), nil
	}

	parentID := u.drive.RootID()
	if intent.Parent != "" {
		parent, err := u.findFolder(ctx, u.drive.RootID(), intent.Parent, 0)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return model.NewResult(model.SubtypeWarning, "Parent folder **%s** not found.", intent.Parent), nil
		}
		parentID = parent.ID
	}

	existing, err := u.drive.FindByName(ctx, parentID, intent.Name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up folder", goerr.V("name", intent.Name))
	}
	for _, e := range existing {
		if e.IsFolder() {
			return model.NewResult(model.SubtypeWarning, "Folder **%s** already exists.", intent.Name), nil
		}
	}

	created, err := u.drive.CreateFolder(ctx, parentID, intent.Name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create folder", goerr.V("name", intent.Name))
	}
	if intent.Parent != "" {
		return model.NewResult(model.SubtypeSuccess, "📁 Folder **%s** created in **%s**.", created.Name, intent.Parent), nil
	}
	return model.NewResult(model.SubtypeSuccess, "📁 Folder **%s** created.", created.Name), nil
}

func (u *UseCase) proposeTrash(ctx context.Context, intent *model.StorageIntent) (*model.Result, *model.PendingTrash, error) {
	parentID := u.drive.RootID()
	if intent.Parent != "" {
		parent, err := u.findFolder(ctx, u.drive.RootID(), intent.Parent, 0)
		if err != nil {
			return nil, nil, err
		}
		if parent == nil {
			return model.NewResult(model.SubtypeWarning, "Parent folder **%s** not found.", intent.Parent), nil, nil
		}
		parentID = parent.ID
	}

	target := strings.ToLower(intent.Name)
	var found *model.DriveEntry
	err := u.walk(ctx, parentID, 0, func(entry *model.DriveEntry, _ int) {
		if found != nil || strings.ToLower(entry.Name) != target {
			return
		}
		if entry.IsFolder() != intent.Type.IsFolder() {
			return
		}
		if !entry.IsFolder() && !entry.HasExtension(intent.Extension) {
			return
		}
		found = entry
	})
	if err != nil {
		return nil, nil, err
	}
	if found == nil {
		return model.NewResult(model.SubtypeWarning, "**%s** not found.", intent.Name), nil, nil
	}

	pending := &model.PendingTrash{Entry: *found, Parent: intent.Parent}
	return model.NewResult(model.SubtypeWarning, "Move **%s** to trash? Answer « confirm » or « cancel ».", found.Name), pending, nil
}

func (u *UseCase) read(ctx context.Context, intent *model.StorageIntent) (*model.Result, error) {
	if intent.Name == "" {
		return clarify([]string{"name"}), nil
	}

	needle := strings.ToLower(intent.Name)
	if intent.Extension != "" {
		needle = strings.TrimSuffix(needle, "."+intent.Extension)
	}

	var matches []*model.DriveEntry
	if err := u.walk(ctx, u.drive.RootID(), 0, func(entry *model.DriveEntry, _ int) {
		if entry.IsFolder() || !entry.HasExtension(intent.Extension) {
			return
		}
		if strings.Contains(strings.ToLower(entry.Name), needle) {
			matches = append(matches, entry)
		}
	}); err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return model.NewResult(model.SubtypeWarning, "No file matching **%s**.", intent.Name), nil
	}

	u.lastMatches = matches
	result, err := u.readEntry(ctx, matches[0])
	if err != nil {
		return nil, err
	}
	if len(matches) > 1 {
		var choices []string
		for i, m := range matches {
			choices = append(choices, fmt.Sprintf("%d. %s", i+1, m.Name))
		}
		result.Content = fmt.Sprintf("%d files match, showing the first one. Say « choose N » to read another:\n%s\n\n%s",
			len(matches), strings.Join(choices, "\n"), result.Content)
	}
	return result, nil
}

func (u *UseCase) readMatch(ctx context.Context, index int) (*model.Result, error) {
	if len(u.lastMatches) == 0 {
		return model.NewResult(model.SubtypeWarning, "There is no list of files to choose from."), nil
	}
	if index < 1 || index > len(u.lastMatches) {
		return model.NewResult(model.SubtypeWarning, "Choose a number between 1 and %d.", len(u.lastMatches)), nil
	}
	return u.readEntry(ctx, u.lastMatches[index-1])
}

func (u *UseCase) readEntry(ctx context.Context, entry *model.DriveEntry) (*model.Result, error) {
	if entry.Size > MaxReadSize {
		return model.NewResult(model.SubtypeWarning, "**%s** is too large to read (%d bytes).", entry.Name, entry.Size), nil
	}

	data, mimeType, err := u.drive.Download(ctx, entry)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("name", entry.Name))
	}
	if len(data) > MaxReadSize {
		return model.NewResult(model.SubtypeWarning, "**%s** is too large to read (%d bytes).", entry.Name, len(data)), nil
	}
	if !isTextLike(mimeType) {
		return model.NewResult(model.SubtypeWarning, "I cannot read **%s** (%s).", entry.Name, mimeType), nil
	}

	text := string(data)
	u.lastRead = &document{name: entry.Name, text: text}

	shown, cut := truncateRunes(text, maxDisplay)
	if cut {
		shown += "\n…"
	}
	return model.NewResult(model.SubtypeInfo, "📄 **%s**\n\n%s", entry.Name, shown), nil
}

func (u *UseCase) summarize(ctx context.Context) (*model.Result, error) {
	if u.lastRead == nil {
		return model.NewResult(model.SubtypeWarning, "Read a document first, then ask me to summarize it."), nil
	}
	if u.gemini == nil {
		return model.NewResult(model.SubtypeWarning, "No language model is configured for summaries."), nil
	}

	text, cut := truncateRunes(u.lastRead.text, maxSummaryInput)
	var buf bytes.Buffer
	if err := summarizePromptTmpl.Execute(&buf, map[string]any{
		"Name":      u.lastRead.name,
		"Truncated": cut,
		"Text":      text,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to execute summarize prompt template")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buf.String(), genai.RoleUser),
	}
	resp, err := u.gemini.GenerateContent(ctx, contents, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to summarize document", goerr.V("name", u.lastRead.name))
	}

	summary := strings.TrimSpace(adapter.ResponseText(resp))
	if summary == "" {
		return model.NewResult(model.SubtypeWarning, "The summary came back empty."), nil
	}
	return model.NewResult(model.SubtypeInfo, "📝 Summary of **%s**\n\n%s", u.lastRead.name, summary), nil
}

// findFolder searches folders named name (case-insensitive) breadth first
func (u *UseCase) findFolder(ctx context.Context, parentID, name string, depth int) (*model.DriveEntry, error) {
	if depth > maxDepth {
		return nil, nil
	}
	entries, err := u.drive.List(ctx, parentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list folder", goerr.V("parent", parentID))
	}

	var folders []*model.DriveEntry
	for _, e := range entries {
		if !e.IsFolder() {
			continue
		}
		if strings.EqualFold(e.Name, name) {
			return e, nil
		}
		folders = append(folders, e)
	}
	for _, f := range folders {
		found, err := u.findFolder(ctx, f.ID, name, depth+1)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return found, nil
		}
	}
	return nil, nil
}

// walk visits entries under folderID depth first, parents before children
func (u *UseCase) walk(ctx context.Context, folderID string, depth int, visit func(entry *model.DriveEntry, depth int)) error {
	if depth > maxDepth {
		return nil
	}
	entries, err := u.drive.List(ctx, folderID)
	if err != nil {
		return goerr.Wrap(err, "failed to list folder", goerr.V("folder", folderID))
	}
	for _, e := range entries {
		visit(e, depth)
		if e.IsFolder() {
			if err := u.walk(ctx, e.ID, depth+1, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

func isTextLike(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/json", "application/xml", "application/x-yaml", "application/yaml", "application/csv", "application/markdown":
		return true
	}
	return false
}

func truncateRunes(s string, n int) (string, bool) {
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]), true
}
