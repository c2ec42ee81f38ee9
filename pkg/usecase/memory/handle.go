package memory

import (
	"context"
	"strings"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Handle parses utterance and executes it. Non-memory input yields
// model.NotHandled; an error means a recognized command failed.
func (u *UseCase) Handle(ctx context.Context, utterance string) (model.Outcome, error) {
	return u.Execute(ctx, ParseCommand(utterance))
}

// Execute runs a parsed command
func (u *UseCase) Execute(ctx context.Context, cmd *Command) (model.Outcome, error) {
	if cmd == nil {
		return model.NotHandled{}, nil
	}

	switch cmd.Kind {
	case CommandNone:
		return model.NotHandled{}, nil

	case CommandClarify:
		return &model.Message{Text: cmd.Prompt, Subtype: model.SubtypeWarning}, nil

	case CommandAddRule:
		return outcome(u.AddRule(ctx, cmd.Keyword, cmd.Domain, cmd.Category))

	case CommandListRules:
		rules, err := u.ListRules(ctx)
		if err != nil {
			return nil, err
		}
		return &model.Message{Text: FormatRules(rules), Subtype: model.SubtypeInfo}, nil

	case CommandDeleteRule:
		return outcome(u.DeleteRule(ctx, cmd.Keyword))

	case CommandSetImportance:
		return outcome(u.SetImportance(ctx, cmd.Text, cmd.Value))

	case CommandVote:
		return outcome(u.Vote(ctx, cmd.Text, cmd.Up))

	case CommandSetActiveProject:
		return outcome(u.SetActiveProject(ctx, cmd.Domain))

	case CommandImportBulk:
		return outcome(u.ImportBulk(ctx, cmd.Text, cmd.Category))

	case CommandRememberInDomain:
		return outcome(u.RememberInDomain(ctx, cmd.Domain, cmd.Text))

	case CommandRememberCategorized:
		return outcome(u.RememberCategorized(ctx, cmd.Category, cmd.Text))

	case CommandRememberFreeform:
		return outcome(u.RememberFreeform(ctx, cmd.Text))

	case CommandRecall:
		items, err := u.ListMemories(ctx, DefaultRecallLimit)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return &model.Message{Text: "I have no memories yet.", Subtype: model.SubtypeInfo}, nil
		}
		return &model.MemoryList{Title: "Memories", Items: items}, nil

	case CommandRecallCategory:
		category := normalizeGroup(cmd.Category)
		items, err := u.ListByCategory(ctx, category, DefaultRecallLimit)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return model.NewMessage(model.SubtypeInfo, "No memories in category **%s**.", category), nil
		}
		return &model.MemoryList{Title: "Category " + category, Items: items}, nil

	case CommandRecallDomain:
		domain := normalizeGroup(cmd.Domain)
		items, err := u.ListByDomain(ctx, domain, DefaultRecallLimit)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return model.NewMessage(model.SubtypeInfo, "No memories in domain **%s**.", domain), nil
		}
		return &model.MemoryList{Title: "Domain " + domain, Items: items}, nil

	case CommandListCategories:
		names, err := u.Categories(ctx)
		if err != nil {
			return nil, err
		}
		return namesMessage("categories", names), nil

	case CommandListDomains:
		names, err := u.Domains(ctx)
		if err != nil {
			return nil, err
		}
		return namesMessage("domains", names), nil

	case CommandForget:
		for _, s := range cmd.Search {
			pending, err := u.FindMemoryMatch(ctx, s)
			if err != nil {
				return nil, err
			}
			if pending != nil {
				return &model.ConfirmationRequest{Pending: pending}, nil
			}
		}
		return &model.Message{Text: "I found no matching memory.", Subtype: model.SubtypeInfo}, nil
	}

	return nil, goerr.New("unknown memory command", goerr.V("kind", cmd.Kind))
}

func outcome(msg *model.Message, err error) (model.Outcome, error) {
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func namesMessage(what string, names []string) *model.Message {
	if len(names) == 0 {
		return model.NewMessage(model.SubtypeInfo, "No %s yet.", what)
	}
	return model.NewMessage(model.SubtypeInfo, "Known %s: %s", what, strings.Join(names, ", "))
}
