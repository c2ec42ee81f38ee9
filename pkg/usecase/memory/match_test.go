package memory_test

import (
	"context"
	"testing"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/usecase/memory"
	"github.com/m-mizutani/gt"
)

func seedTiers(t *testing.T, uc *memory.UseCase) {
	t.Helper()
	ctx := context.Background()
	mustMessage(t)(uc.RememberInDomain(ctx, "travail", "Paris office opens at 9"))
	mustMessage(t)(uc.RememberCategorized(ctx, "voyage", "Trip to Paris in May"))
	mustMessage(t)(uc.RememberCategorized(ctx, "amis", "Paris friends dinner"))
	mustMessage(t)(uc.RememberFreeform(ctx, "My bike is blue"))
}

func TestFindFirstMatchOrder(t *testing.T) {
	uc, _ := newUseCase(t, &mockDocument{})
	ctx := context.Background()
	seedTiers(t, uc)

	store, err := uc.Get(ctx)
	gt.NoError(t, err)

	// categories come before domains, in document order
	m := memory.FindFirstMatch(store, memory.ContainsText("paris"))
	gt.V(t, m).NotNil()
	gt.Equal(t, m.Location, model.LocationCategory)
	gt.Equal(t, m.Group, "voyage")

	// free memories come first
	mustMessage(t)(uc.RememberFreeform(ctx, "I live in Paris"))
	m = memory.FindFirstMatch(store, memory.ContainsText("PARIS"))
	gt.Equal(t, m.Location, model.LocationFree)
	gt.Equal(t, m.Index, 1)

	m = memory.FindFirstMatch(store, memory.ContainsText("office"))
	gt.Equal(t, m.Location, model.LocationDomain)
	gt.Equal(t, m.Group, "travail")

	gt.True(t, memory.FindFirstMatch(store, memory.ContainsText("berlin")) == nil)
	gt.True(t, memory.FindFirstMatch(store, memory.ContainsText("  ")) == nil)
}

func TestConfirmDeleteRemovesExactlyOne(t *testing.T) {
	doc := &mockDocument{}
	uc, c := newUseCase(t, doc)
	ctx := context.Background()

	mustMessage(t)(uc.RememberCategorized(ctx, "voyage", "Trip to Paris"))
	c.Advance(1e9)
	mustMessage(t)(uc.RememberCategorized(ctx, "voyage", "Trip to Paris"))
	mustMessage(t)(uc.RememberCategorized(ctx, "voyage", "Trip to Rome"))

	pending, err := uc.FindMemoryMatch(ctx, "paris")
	gt.NoError(t, err)
	gt.Equal(t, pending.Category, "voyage")
	gt.Equal(t, pending.Index, 0)

	mustMessage(t)(uc.ConfirmDelete(ctx, pending))
	items, err := uc.ListByCategory(ctx, "voyage", 10)
	gt.NoError(t, err)
	gt.A(t, items).Length(2)
	gt.Equal(t, items[0].Text, "Trip to Paris")
	gt.Equal(t, items[0].Timestamp, "2025-06-01 12:00:01")
	gt.Equal(t, items[1].Text, "Trip to Rome")
}

func TestProposalWithoutConfirmLeavesStoreUntouched(t *testing.T) {
	doc := &mockDocument{}
	uc, _ := newUseCase(t, doc)
	ctx := context.Background()
	seedTiers(t, uc)

	before := string(doc.data)
	writes := doc.writes

	pending, err := uc.FindMemoryMatch(ctx, "bike")
	gt.NoError(t, err)
	gt.V(t, pending).NotNil()

	gt.Equal(t, string(doc.data), before)
	gt.Equal(t, doc.writes, writes)
}

func TestConfirmDeleteStaleReference(t *testing.T) {
	uc, _ := newUseCase(t, &mockDocument{})
	ctx := context.Background()
	mustMessage(t)(uc.RememberFreeform(ctx, "first"))
	mustMessage(t)(uc.RememberFreeform(ctx, "second"))

	pending, err := uc.FindMemoryMatch(ctx, "second")
	gt.NoError(t, err)
	gt.Equal(t, pending.Index, 1)

	// another deletion shifts the item between proposal and confirmation
	first, err := uc.FindMemoryMatch(ctx, "first")
	gt.NoError(t, err)
	mustMessage(t)(uc.ConfirmDelete(ctx, first))

	msg := mustMessage(t)(uc.ConfirmDelete(ctx, pending))
	gt.Equal(t, msg.Subtype, model.SubtypeInfo)
	gt.S(t, msg.Text).Contains("no longer exists")

	items, err := uc.ListMemories(ctx, 10)
	gt.NoError(t, err)
	gt.A(t, items).Length(1)
	gt.Equal(t, items[0].Text, "second")

	// index still in range but a different item
	mustMessage(t)(uc.RememberFreeform(ctx, "third"))
	stale := &model.PendingDeletion{Location: model.LocationFree, Index: 1, Item: model.MemoryItem{Text: "gone"}}
	msg = mustMessage(t)(uc.ConfirmDelete(ctx, stale))
	gt.Equal(t, msg.Subtype, model.SubtypeInfo)
	items, err = uc.ListMemories(ctx, 10)
	gt.NoError(t, err)
	gt.A(t, items).Length(2)
}

func TestSetImportanceClamps(t *testing.T) {
	uc, _ := newUseCase(t, &mockDocument{})
	ctx := context.Background()
	seedTiers(t, uc)

	mustMessage(t)(uc.SetImportance(ctx, "bike", 3))
	items, err := uc.ListMemories(ctx, 10)
	gt.NoError(t, err)
	gt.Equal(t, items[0].Importance, 1.0)

	mustMessage(t)(uc.SetImportance(ctx, "bike", -2))
	items, err = uc.ListMemories(ctx, 10)
	gt.NoError(t, err)
	gt.Equal(t, items[0].Importance, 0.0)

	msg := mustMessage(t)(uc.SetImportance(ctx, "nothing like this", 0.5))
	gt.Equal(t, msg.Subtype, model.SubtypeInfo)
}

func TestVoteClamps(t *testing.T) {
	uc, _ := newUseCase(t, &mockDocument{})
	ctx := context.Background()
	seedTiers(t, uc)

	for range 15 {
		mustMessage(t)(uc.Vote(ctx, "bike", true))
	}
	items, err := uc.ListMemories(ctx, 10)
	gt.NoError(t, err)
	gt.Equal(t, items[0].Feedback, 1.0)

	mustMessage(t)(uc.Vote(ctx, "bike", false))
	items, err = uc.ListMemories(ctx, 10)
	gt.NoError(t, err)
	gt.Equal(t, items[0].Feedback, 0.9)

	for range 30 {
		mustMessage(t)(uc.Vote(ctx, "bike", false))
	}
	items, err = uc.ListMemories(ctx, 10)
	gt.NoError(t, err)
	gt.Equal(t, items[0].Feedback, -1.0)
}

func TestItemKeysFeedSearchOverrides(t *testing.T) {
	uc, _ := newUseCase(t, &mockDocument{})
	ctx := context.Background()
	mustMessage(t)(uc.RememberFreeform(ctx, "I live in Paris"))
	mustMessage(t)(uc.RememberFreeform(ctx, "zzz qqq xxx"))

	keys, err := uc.ItemKeys(ctx, []string{"QQQ", "nowhere"})
	gt.NoError(t, err)
	gt.A(t, keys).Length(1)

	hits, err := uc.Search(ctx, "where do I live", memory.SearchOptions{TopK: 3, Pins: keys})
	gt.NoError(t, err)
	gt.Equal(t, hits[0].Text, "zzz qqq xxx")

	masks, err := uc.ItemKeys(ctx, []string{"paris"})
	gt.NoError(t, err)
	hits, err = uc.Search(ctx, "where do I live", memory.SearchOptions{TopK: 3, Masks: masks})
	gt.NoError(t, err)
	gt.A(t, hits).Length(0)

	keys, err = uc.ItemKeys(ctx, nil)
	gt.NoError(t, err)
	gt.A(t, keys).Length(0)
}
