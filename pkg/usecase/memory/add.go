package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// RememberFreeform stores text as a free memory unless a classification rule
// or the placement policy redirects it to a domain or a category. The
// redirect is silent: only the final placement shows in the message.
func (u *UseCase) RememberFreeform(ctx context.Context, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return emptyTextMessage(), nil
	}

	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}

	if rule, ok := applyRules(store, text); ok {
		if rule.Domain != "" {
			return u.RememberInDomain(ctx, rule.Domain, text)
		}
		return u.RememberCategorized(ctx, rule.Category, text)
	}

	placement, err := u.placement.Evaluate(ctx, text)
	if err != nil {
		// a broken policy must not lose the memory
		logging.From(ctx).Warn("placement policy failed, keeping memory freeform", "error", err)
	} else if placement.Domain != "" {
		return u.RememberInDomain(ctx, placement.Domain, text)
	} else if placement.Category != "" {
		return u.RememberCategorized(ctx, placement.Category, text)
	}

	item, err := model.NewMemoryItem(text, u.now())
	if err != nil {
		return nil, err
	}
	store.FreeMemories = append(store.FreeMemories, item)
	if err := u.write(ctx); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("memory added", "tier", model.LocationFree)
	return &model.Message{Text: "🧠 Noted, I will remember that.", Subtype: model.SubtypeSuccess}, nil
}

// RememberCategorized appends text to category. An empty category falls back
// to the default one.
func (u *UseCase) RememberCategorized(ctx context.Context, category, text string) (*model.Message, error) {
	category = normalizeGroup(category)
	if category == "" {
		category = defaultCategory
	}

	if err := u.appendToGroup(ctx, model.LocationCategory, category, text); err != nil {
		if errors.Is(err, model.ErrEmptyText) {
			return emptyTextMessage(), nil
		}
		return nil, err
	}
	return &model.Message{Text: "🧠 Noted in category **" + category + "**.", Subtype: model.SubtypeSuccess}, nil
}

// RememberInDomain appends text to domain
func (u *UseCase) RememberInDomain(ctx context.Context, domain, text string) (*model.Message, error) {
	domain = normalizeGroup(domain)
	if domain == "" {
		return &model.Message{Text: "Which domain should this go to?", Subtype: model.SubtypeWarning}, nil
	}

	if err := u.appendToGroup(ctx, model.LocationDomain, domain, text); err != nil {
		if errors.Is(err, model.ErrEmptyText) {
			return emptyTextMessage(), nil
		}
		return nil, err
	}
	return &model.Message{Text: "🧠 Noted in domain **" + domain + "**.", Subtype: model.SubtypeSuccess}, nil
}

// ImportBulk adds every non-empty line of text, as free memories or into
// category when it is set. Free lines go through RememberFreeform, so rules apply.
func (u *UseCase) ImportBulk(ctx context.Context, text, category string) (*model.Message, error) {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return &model.Message{Text: "The text to integrate is empty.", Subtype: model.SubtypeWarning}, nil
	}

	category = normalizeGroup(category)
	for _, l := range lines {
		var err error
		if category != "" {
			_, err = u.RememberCategorized(ctx, category, l)
		} else {
			_, err = u.RememberFreeform(ctx, l)
		}
		if err != nil {
			return nil, goerr.Wrap(err, "bulk import interrupted", goerr.V("line", l))
		}
	}

	if category != "" {
		return model.NewMessage(model.SubtypeSuccess, "🧠 %d memories added to **%s**.", len(lines), category), nil
	}
	return model.NewMessage(model.SubtypeSuccess, "🧠 %d memories added.", len(lines)), nil
}

func (u *UseCase) appendToGroup(ctx context.Context, loc model.Location, group, text string) error {
	item, err := model.NewMemoryItem(text, u.now())
	if err != nil {
		return err
	}

	store, err := u.Get(ctx)
	if err != nil {
		return err
	}

	groups := store.Groups(loc)
	items, _ := groups.Get(group)
	groups.Set(group, append(items, item))
	if err := u.write(ctx); err != nil {
		return err
	}

	logging.From(ctx).Info("memory added", "tier", loc, "group", group)
	return nil
}

// applyRules returns the first rule, in rule order, whose keyword occurs in text
func applyRules(store *model.MemoryStore, text string) (model.Rule, bool) {
	lower := strings.ToLower(text)
	var (
		found model.Rule
		ok    bool
	)
	store.Settings.ClassificationRules.Each(func(kw string, r model.Rule) bool {
		if kw != "" && strings.Contains(lower, kw) && (r.Domain != "" || r.Category != "") {
			found, ok = r, true
			return false
		}
		return true
	})
	return found, ok
}

func normalizeGroup(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func emptyTextMessage() *model.Message {
	return &model.Message{Text: "What exactly should I remember?", Subtype: model.SubtypeWarning}
}
