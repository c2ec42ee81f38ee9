package memory

import (
	"context"
	"strings"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/utils/logging"
)

// RuleEntry is a classification rule with its keyword
type RuleEntry struct {
	Keyword string
	model.Rule
}

// AddRule registers or replaces the rule for keyword. Keyword, domain and
// category are lowercased.
func (u *UseCase) AddRule(ctx context.Context, keyword, domain, category string) (*model.Message, error) {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return &model.Message{Text: "Empty keyword.", Subtype: model.SubtypeWarning}, nil
	}

	rule := model.Rule{
		Domain:   normalizeGroup(domain),
		Category: normalizeGroup(category),
	}
	if rule.Domain == "" && rule.Category == "" {
		return &model.Message{Text: "A rule needs a domain or a category.", Subtype: model.SubtypeWarning}, nil
	}

	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}
	store.Settings.ClassificationRules.Set(kw, rule)
	if err := u.write(ctx); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("rule added", "keyword", kw, "domain", rule.Domain, "category", rule.Category)
	return model.NewMessage(model.SubtypeSuccess, "Rule added: « %s » -> %s", kw, describeRule(rule)), nil
}

// ListRules returns the rules in application order
func (u *UseCase) ListRules(ctx context.Context) ([]*RuleEntry, error) {
	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}

	var rules []*RuleEntry
	store.Settings.ClassificationRules.Each(func(kw string, r model.Rule) bool {
		rules = append(rules, &RuleEntry{Keyword: kw, Rule: r})
		return true
	})
	return rules, nil
}

// DeleteRule removes the rule for keyword
func (u *UseCase) DeleteRule(ctx context.Context, keyword string) (*model.Message, error) {
	kw := strings.ToLower(strings.TrimSpace(keyword))

	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !store.Settings.ClassificationRules.Delete(kw) {
		return model.NewMessage(model.SubtypeInfo, "No rule for « %s ».", kw), nil
	}
	if err := u.write(ctx); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("rule deleted", "keyword", kw)
	return model.NewMessage(model.SubtypeSuccess, "Rule deleted: « %s ».", kw), nil
}

// SetActiveProject sets the project that biases domain ranking. An empty
// name clears it.
func (u *UseCase) SetActiveProject(ctx context.Context, name string) (*model.Message, error) {
	name = normalizeGroup(name)

	store, err := u.Get(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		store.Settings.ActiveProject = nil
	} else {
		store.Settings.ActiveProject = &name
	}
	if err := u.write(ctx); err != nil {
		return nil, err
	}

	if name == "" {
		return &model.Message{Text: "Active project cleared.", Subtype: model.SubtypeSuccess}, nil
	}
	return model.NewMessage(model.SubtypeSuccess, "Active project: **%s**.", name), nil
}

func describeRule(r model.Rule) string {
	var parts []string
	if r.Domain != "" {
		parts = append(parts, "domain="+r.Domain)
	}
	if r.Category != "" {
		parts = append(parts, "category="+r.Category)
	}
	return strings.Join(parts, " ")
}

// FormatRules renders rules one per line
func FormatRules(rules []*RuleEntry) string {
	if len(rules) == 0 {
		return "No classification rule."
	}
	lines := make([]string, 0, len(rules))
	for _, r := range rules {
		lines = append(lines, "- « "+r.Keyword+" » -> "+describeRule(r.Rule))
	}
	return strings.Join(lines, "\n")
}
