package memory_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/policy"
	"github.com/alfred-assistant/alfred/pkg/usecase/memory"
	"github.com/m-mizutani/gt"
)

func TestRememberAndForgetScenario(t *testing.T) {
	doc := &mockDocument{}
	uc, _ := newUseCase(t, doc)
	ctx := context.Background()

	msg := mustMessage(t)(uc.RememberFreeform(ctx, "I live in Paris"))
	gt.Equal(t, msg.Subtype, model.SubtypeSuccess)

	items, err := uc.ListMemories(ctx, 10)
	gt.NoError(t, err)
	gt.A(t, items).Length(1)
	gt.Equal(t, items[0].Text, "I live in Paris")
	gt.Equal(t, items[0].Timestamp, "2025-06-01 12:00:00")

	mustMessage(t)(uc.RememberCategorized(ctx, "contact", "Guillaume's number is 555-1234"))
	contacts, err := uc.ListByCategory(ctx, "contact", 10)
	gt.NoError(t, err)
	gt.A(t, contacts).Length(1)
	gt.Equal(t, contacts[0].Text, "Guillaume's number is 555-1234")

	pending, err := uc.FindMemoryMatch(ctx, "Paris")
	gt.NoError(t, err)
	gt.V(t, pending).NotNil()
	gt.Equal(t, pending.Location, model.LocationFree)
	gt.Equal(t, pending.Index, 0)

	msg = mustMessage(t)(uc.ConfirmDelete(ctx, pending))
	gt.Equal(t, msg.Subtype, model.SubtypeSuccess)

	pending, err = uc.FindMemoryMatch(ctx, "Paris")
	gt.NoError(t, err)
	gt.True(t, pending == nil)

	// the categorized memory is untouched
	contacts, err = uc.ListByCategory(ctx, "contact", 10)
	gt.NoError(t, err)
	gt.A(t, contacts).Length(1)
}

func TestRememberRejectsEmptyText(t *testing.T) {
	doc := &mockDocument{}
	uc, _ := newUseCase(t, doc)
	ctx := context.Background()

	msg := mustMessage(t)(uc.RememberFreeform(ctx, "   "))
	gt.Equal(t, msg.Subtype, model.SubtypeWarning)
	msg = mustMessage(t)(uc.RememberCategorized(ctx, "contact", ""))
	gt.Equal(t, msg.Subtype, model.SubtypeWarning)
	gt.Equal(t, doc.writes, 0)
}

func TestRememberCategorizedDefaultsCategory(t *testing.T) {
	uc, _ := newUseCase(t, &mockDocument{})
	ctx := context.Background()

	mustMessage(t)(uc.RememberCategorized(ctx, "  ", "something"))
	categories, err := uc.Categories(ctx)
	gt.NoError(t, err)
	gt.Equal(t, categories, []string{"général"})
}

func TestRulesRedirectFreeformMemories(t *testing.T) {
	uc, _ := newUseCase(t, &mockDocument{})
	ctx := context.Background()

	mustMessage(t)(uc.AddRule(ctx, "Réunion", "Travail", ""))
	mustMessage(t)(uc.AddRule(ctx, "vélo", "", "sport"))
	mustMessage(t)(uc.AddRule(ctx, "réunion vélo", "", "ignored"))

	msg := mustMessage(t)(uc.RememberFreeform(ctx, "Réunion vélo mardi"))
	gt.S(t, msg.Text).Contains("travail")

	msg = mustMessage(t)(uc.RememberFreeform(ctx, "Nouveau vélo acheté"))
	gt.S(t, msg.Text).Contains("sport")

	mustMessage(t)(uc.RememberFreeform(ctx, "I live in Paris"))

	work, err := uc.ListByDomain(ctx, "travail", 10)
	gt.NoError(t, err)
	gt.A(t, work).Length(1)
	sport, err := uc.ListByCategory(ctx, "sport", 10)
	gt.NoError(t, err)
	gt.A(t, sport).Length(1)
	free, err := uc.ListMemories(ctx, 10)
	gt.NoError(t, err)
	gt.A(t, free).Length(1)

	rules, err := uc.ListRules(ctx)
	gt.NoError(t, err)
	gt.A(t, rules).Length(3)
	gt.Equal(t, rules[0].Keyword, "réunion")
	gt.Equal(t, rules[0].Domain, "travail")

	msg = mustMessage(t)(uc.DeleteRule(ctx, "VÉLO"))
	gt.Equal(t, msg.Subtype, model.SubtypeSuccess)
	msg = mustMessage(t)(uc.DeleteRule(ctx, "vélo"))
	gt.Equal(t, msg.Subtype, model.SubtypeInfo)
}

func TestPlacementPolicyRedirect(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "placement.rego"), []byte(`package placement

category := "contact" if {
	regex.match("[0-9]{3}-[0-9]{4}", input.text)
}
`), 0644))

	engine, err := policy.New(ctx, dir)
	gt.NoError(t, err)

	uc, _ := newUseCase(t, &mockDocument{}, memory.WithPlacementPolicy(engine))
	mustMessage(t)(uc.RememberFreeform(ctx, "Guillaume's number is 555-1234"))
	mustMessage(t)(uc.RememberFreeform(ctx, "I live in Paris"))

	contacts, err := uc.ListByCategory(ctx, "contact", 10)
	gt.NoError(t, err)
	gt.A(t, contacts).Length(1)
	free, err := uc.ListMemories(ctx, 10)
	gt.NoError(t, err)
	gt.A(t, free).Length(1)
}

func TestImportBulk(t *testing.T) {
	uc, _ := newUseCase(t, &mockDocument{})
	ctx := context.Background()

	msg := mustMessage(t)(uc.ImportBulk(ctx, "first\n\n  second  \nthird\n", ""))
	gt.S(t, msg.Text).Contains("3")
	free, err := uc.ListMemories(ctx, 10)
	gt.NoError(t, err)
	gt.A(t, free).Length(3)
	gt.Equal(t, free[1].Text, "second")

	mustMessage(t)(uc.ImportBulk(ctx, "a\nb", "Courses"))
	groceries, err := uc.ListByCategory(ctx, "courses", 10)
	gt.NoError(t, err)
	gt.A(t, groceries).Length(2)

	msg = mustMessage(t)(uc.ImportBulk(ctx, " \n ", ""))
	gt.Equal(t, msg.Subtype, model.SubtypeWarning)
}

func TestListMemoriesKeepsInsertionOrder(t *testing.T) {
	uc, c := newUseCase(t, &mockDocument{})
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three", "four"} {
		mustMessage(t)(uc.RememberFreeform(ctx, text))
		c.Advance(1)
	}

	items, err := uc.ListMemories(ctx, 2)
	gt.NoError(t, err)
	gt.A(t, items).Length(2)
	gt.Equal(t, items[0].Text, "three")
	gt.Equal(t, items[1].Text, "four")
}
