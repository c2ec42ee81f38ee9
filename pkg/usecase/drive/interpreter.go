package drive

import (
	"bytes"
	"context"
	_ "embed"
	"regexp"
	"strings"
	"text/template"

	"github.com/alfred-assistant/alfred/pkg/adapter"
	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

//go:embed prompt/interpret.md
var interpretPromptRaw string

var interpretPromptTmpl = template.Must(template.New("interpret").Parse(interpretPromptRaw))

var (
	confirmPhrases = map[string]bool{
		"confirme": true, "je confirme": true, "oui confirme": true, "valide": true, "ok confirme": true,
		"confirm": true, "i confirm": true, "yes confirm": true, "ok confirm": true, "yes, delete it": true,
	}
	cancelPhrases = map[string]bool{
		"annule": true, "j'annule": true, "non annule": true, "annuler": true,
		"cancel": true, "i cancel": true, "no cancel": true, "no, cancel": true,
	}

	driveMention   = regexp.MustCompile(`(?i)\b(?:my\s+|mon\s+)?(?:google\s+)?drive\b`)
	rootListWords  = []string{"contenu", "dossier", "affiche", "montre", "voir", "liste", "content", "show", "list", "display", "see"}
	parentPattern  = regexp.MustCompile(`(?i)\b(?:dans|in|into|under)\s+(?:(?:le|la|the)\s+)?(?:(?:dossier|folder)\s+)?([\p{L}0-9 _\-]+)$`)
	// verbs that only make sense after a storage action, e.g. "summarize it"
	storageVerbRe = regexp.MustCompile(`(?i)\b(?:lis|lire|read|ouvre|open|résume|resume|summari[sz]e|choisis|choose|pick)\b`)

	actionAliases = map[string]model.StorageAction{
		"lister": model.StorageActionList, "lire": model.StorageActionRead, "creer": model.StorageActionCreate,
		"créer": model.StorageActionCreate, "supprimer": model.StorageActionDelete, "lire_match": model.StorageActionReadMatch,
		"resumer": model.StorageActionSummarize, "résumer": model.StorageActionSummarize, "clarifier": model.StorageActionClarify,
		"confirmer": model.StorageActionConfirm, "annuler": model.StorageActionCancel,
	}
	typeAliases = map[string]model.EntryType{
		"fichier": model.EntryTypeFile, "dossier": model.EntryTypeFolder,
		"sous-dossier": model.EntryTypeSubfolder, "sous dossier": model.EntryTypeSubfolder, "sub-folder": model.EntryTypeSubfolder,
	}
	knownActions = map[model.StorageAction]bool{
		model.StorageActionList: true, model.StorageActionRead: true, model.StorageActionCreate: true,
		model.StorageActionDelete: true, model.StorageActionReadMatch: true, model.StorageActionSummarize: true,
		model.StorageActionClarify: true, model.StorageActionConfirm: true, model.StorageActionCancel: true,
		model.StorageActionFallback: true,
	}
)

// Interpreter turns an utterance into a StorageIntent. Confirmations and
// root listings are detected locally; everything else goes to the LLM.
type Interpreter struct {
	gemini adapter.Gemini
}

func NewInterpreter(gemini adapter.Gemini) *Interpreter {
	return &Interpreter{gemini: gemini}
}

func fallback() *model.StorageIntent {
	return &model.StorageIntent{Action: model.StorageActionFallback}
}

// Interpret never fails: anything unusable becomes a fallback intent
func (x *Interpreter) Interpret(ctx context.Context, utterance string) *model.StorageIntent {
	u := strings.ToLower(strings.TrimSpace(utterance))
	if u == "" {
		return fallback()
	}

	if action := Confirmation(u); action != "" {
		return &model.StorageIntent{Action: action}
	}

	if driveMention.MatchString(u) && containsAny(u, rootListWords) {
		return &model.StorageIntent{Action: model.StorageActionList, Type: model.EntryTypeFolder}
	}

	if x.gemini == nil || !(model.MentionsStorage(u) || storageVerbRe.MatchString(u)) {
		return fallback()
	}

	parent := ""
	if m := parentPattern.FindStringSubmatch(strings.TrimSpace(utterance)); m != nil {
		parent = strings.TrimSpace(m[1])
	}

	intent, err := x.ask(ctx, utterance, parent)
	if err != nil {
		logging.From(ctx).Warn("storage interpreter failed", "error", err)
		return fallback()
	}

	return normalizeIntent(intent, parent)
}

// Confirmation returns StorageActionConfirm or StorageActionCancel when the
// whole utterance is a confirm or cancel phrase, and "" otherwise
func Confirmation(utterance string) model.StorageAction {
	u := strings.ToLower(strings.TrimSpace(strings.TrimRight(strings.TrimSpace(utterance), ".!")))
	switch {
	case confirmPhrases[u]:
		return model.StorageActionConfirm
	case cancelPhrases[u]:
		return model.StorageActionCancel
	}
	return ""
}

func (x *Interpreter) ask(ctx context.Context, utterance, parent string) (*model.StorageIntent, error) {
	var buf bytes.Buffer
	if err := interpretPromptTmpl.Execute(&buf, map[string]any{
		"Utterance": strings.TrimSpace(utterance),
		"Parent":    parent,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to execute interpret prompt template")
	}

	actions := make([]string, 0, len(knownActions))
	for _, a := range []model.StorageAction{
		model.StorageActionList, model.StorageActionRead, model.StorageActionCreate, model.StorageActionDelete,
		model.StorageActionReadMatch, model.StorageActionSummarize, model.StorageActionClarify,
		model.StorageActionConfirm, model.StorageActionCancel, model.StorageActionFallback,
	} {
		actions = append(actions, string(a))
	}

	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"action": {
					Type:        genai.TypeString,
					Description: "Drive action",
					Enum:        actions,
				},
				"type": {
					Type:        genai.TypeString,
					Description: "Kind of targeted entry",
					Enum:        []string{string(model.EntryTypeFile), string(model.EntryTypeFolder), string(model.EntryTypeSubfolder)},
				},
				"name": {
					Type:        genai.TypeString,
					Description: "Targeted file or folder name",
				},
				"extension": {
					Type:        genai.TypeString,
					Description: "File extension without dot",
				},
				"parent": {
					Type:        genai.TypeString,
					Description: "Parent folder name",
				},
				"missing": {
					Type:        genai.TypeArray,
					Description: "Missing fields for clarify",
					Items:       &genai.Schema{Type: genai.TypeString},
				},
				"index": {
					Type:        genai.TypeInteger,
					Description: "1-based choice for read_match",
				},
			},
			Required: []string{"action"},
		},
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buf.String(), genai.RoleUser),
	}

	resp, err := x.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate storage intent")
	}

	var intent model.StorageIntent
	if err := decodeJSON(adapter.ResponseText(resp), &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// normalizeIntent maps aliases, injects the parent extracted from the
// sentence and downgrades an underspecified delete to clarify
func normalizeIntent(intent *model.StorageIntent, parent string) *model.StorageIntent {
	action := model.StorageAction(strings.ToLower(strings.TrimSpace(string(intent.Action))))
	if alias, ok := actionAliases[string(action)]; ok {
		action = alias
	}
	if !knownActions[action] {
		return fallback()
	}
	intent.Action = action

	typ := model.EntryType(strings.ToLower(strings.TrimSpace(string(intent.Type))))
	if alias, ok := typeAliases[string(typ)]; ok {
		typ = alias
	}
	intent.Type = typ
	intent.Name = strings.TrimSpace(intent.Name)
	intent.Extension = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(intent.Extension)), ".")
	intent.Parent = strings.TrimSpace(intent.Parent)

	if parent != "" && (action == model.StorageActionCreate || action == model.StorageActionDelete) && typ.IsFolder() {
		intent.Parent = parent
	}

	if action == model.StorageActionDelete {
		var missing []string
		if typ == "" {
			missing = append(missing, "type")
		}
		if intent.Name == "" {
			missing = append(missing, "name")
		}
		if len(missing) > 0 {
			return &model.StorageIntent{Action: model.StorageActionClarify, Missing: missing}
		}
	}

	return intent
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
