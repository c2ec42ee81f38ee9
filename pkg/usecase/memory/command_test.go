package memory_test

import (
	"context"
	"testing"

	"github.com/alfred-assistant/alfred/pkg/model"
	"github.com/alfred-assistant/alfred/pkg/usecase/memory"
	"github.com/m-mizutani/gt"
)

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  memory.Command
	}{
		{"rule with domain", `règle : "réunion" -> domaine=travail`, memory.Command{Kind: memory.CommandAddRule, Keyword: "réunion", Domain: "travail"}},
		{"rule with domain and category", `rule: "gym" -> domain=health category=sport`, memory.Command{Kind: memory.CommandAddRule, Keyword: "gym", Domain: "health", Category: "sport"}},
		{"rule with category", `rule: "gym" -> category=sport`, memory.Command{Kind: memory.CommandAddRule, Keyword: "gym", Category: "sport"}},
		{"list rules fr", "liste règles", memory.Command{Kind: memory.CommandListRules}},
		{"list rules en", "List rules", memory.Command{Kind: memory.CommandListRules}},
		{"delete rule", `supprime règle "gym"`, memory.Command{Kind: memory.CommandDeleteRule, Keyword: "gym"}},
		{"importance", `importance: "paris" = 0.7`, memory.Command{Kind: memory.CommandSetImportance, Text: "paris", Value: 0.7}},
		{"upvote", `upvote: "paris"`, memory.Command{Kind: memory.CommandVote, Text: "paris", Up: true}},
		{"downvote", `downvote: "paris"`, memory.Command{Kind: memory.CommandVote, Text: "paris"}},
		{"active project", "projet actif : Alfred", memory.Command{Kind: memory.CommandSetActiveProject, Domain: "Alfred"}},
		{"no active project", "no active project", memory.Command{Kind: memory.CommandSetActiveProject}},
		{"bulk", "intègre ceci : a\nb", memory.Command{Kind: memory.CommandImportBulk, Text: "a\nb"}},
		{"bulk into category", "integrate this into courses: milk\neggs", memory.Command{Kind: memory.CommandImportBulk, Category: "courses", Text: "milk\neggs"}},
		{"bulk without text", "intègre ceci", memory.Command{Kind: memory.CommandClarify, Prompt: "Add the text after « integrate this: »."}},
		{"domain add", "remember in domain travail: standup at 9", memory.Command{Kind: memory.CommandRememberInDomain, Domain: "travail", Text: "standup at 9"}},
		{"categorized fr", "souviens-toi de contact : Guillaume 555-1234", memory.Command{Kind: memory.CommandRememberCategorized, Category: "contact", Text: "Guillaume 555-1234"}},
		{"categorized en", "remember contact: Guillaume 555-1234", memory.Command{Kind: memory.CommandRememberCategorized, Category: "contact", Text: "Guillaume 555-1234"}},
		{"freeform fr", "Souviens-toi que j'habite à Paris", memory.Command{Kind: memory.CommandRememberFreeform, Text: "j'habite à Paris"}},
		{"freeform en", "remember that I live in Paris", memory.Command{Kind: memory.CommandRememberFreeform, Text: "I live in Paris"}},
		{"freeform with colon after that", "remember that: the code is 42", memory.Command{Kind: memory.CommandRememberFreeform, Text: "the code is 42"}},
		{"note trigger", "note ça : acheter du pain", memory.Command{Kind: memory.CommandRememberFreeform, Text: "acheter du pain"}},
		{"determiner is not a category", "remember this: my PIN is 1234", memory.Command{Kind: memory.CommandRememberFreeform, Text: "my PIN is 1234"}},
		{"article is not a category", "remember the code: 1234", memory.Command{Kind: memory.CommandRememberFreeform, Text: "the code: 1234"}},
		{"two word category", "remember under work notes: standup at 9", memory.Command{Kind: memory.CommandRememberCategorized, Category: "work notes", Text: "standup at 9"}},
		{"verb in memory text", "remember that I read Dune", memory.Command{Kind: memory.CommandRememberFreeform, Text: "I read Dune"}},
		{"keep in memory", "keep in memory my size is 42", memory.Command{Kind: memory.CommandRememberFreeform, Text: "my size is 42"}},
		{"empty freeform", "souviens-toi", memory.Command{Kind: memory.CommandClarify, Prompt: "What exactly should I remember?"}},
		{"recall fr", "rappelle-toi", memory.Command{Kind: memory.CommandRecall}},
		{"recall list", "liste mes souvenirs", memory.Command{Kind: memory.CommandRecall}},
		{"recall en", "recall", memory.Command{Kind: memory.CommandRecall}},
		{"recall category", "rappelle contact", memory.Command{Kind: memory.CommandRecallCategory, Category: "contact"}},
		{"recall domain", "recall domain travail", memory.Command{Kind: memory.CommandRecallDomain, Domain: "travail"}},
		{"list categories", "liste catégories", memory.Command{Kind: memory.CommandListCategories}},
		{"list domains", "list domains", memory.Command{Kind: memory.CommandListDomains}},
		{"forget cleaned", "oublie le souvenir de Paris", memory.Command{Kind: memory.CommandForget, Search: []string{"Paris", "le souvenir de Paris"}}},
		{"forget en", "forget the memory about my bike", memory.Command{Kind: memory.CommandForget, Search: []string{"my bike", "the memory about my bike"}}},
		{"forget with bare noun", "erase memory Paris", memory.Command{Kind: memory.CommandForget, Search: []string{"Paris", "memory Paris"}}},
		{"forget without text", "forget the memory", memory.Command{Kind: memory.CommandClarify, Prompt: "Tell me what to forget (text to look for)."}},
		{"delete without memory noun", "erase Paris", memory.Command{Kind: memory.CommandNone}},
		{"bare forget", "forget", memory.Command{Kind: memory.CommandNone}},
		{"storage firewall delete", "delete the file budget.pdf", memory.Command{Kind: memory.CommandNone}},
		{"storage firewall file name", "delete report.pdf", memory.Command{Kind: memory.CommandNone}},
		{"storage firewall document", "supprime le document rapport", memory.Command{Kind: memory.CommandNone}},
		{"storage firewall doc", "forget the memory doc budget", memory.Command{Kind: memory.CommandNone}},
		{"storage firewall fr", "supprime le dossier Factures", memory.Command{Kind: memory.CommandNone}},
		{"storage firewall remember", "remember the drive folder", memory.Command{Kind: memory.CommandNone}},
		{"chit chat", "what is the weather like?", memory.Command{Kind: memory.CommandNone}},
		{"empty", "   ", memory.Command{Kind: memory.CommandNone}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := memory.ParseCommand(tc.input)
			gt.V(t, got).NotNil()
			gt.Equal(t, got.Kind, tc.want.Kind)
			gt.Equal(t, got.Text, tc.want.Text)
			gt.Equal(t, got.Category, tc.want.Category)
			gt.Equal(t, got.Domain, tc.want.Domain)
			gt.Equal(t, got.Keyword, tc.want.Keyword)
			gt.Equal(t, got.Value, tc.want.Value)
			gt.Equal(t, got.Up, tc.want.Up)
			gt.Equal(t, got.Prompt, tc.want.Prompt)
			gt.Equal(t, len(got.Search), len(tc.want.Search))
			for i := range tc.want.Search {
				gt.Equal(t, got.Search[i], tc.want.Search[i])
			}
		})
	}
}

func TestHandle(t *testing.T) {
	doc := &mockDocument{}
	uc, _ := newUseCase(t, doc)
	ctx := context.Background()

	out, err := uc.Handle(ctx, "what time is it?")
	gt.NoError(t, err)
	_, ok := out.(model.NotHandled)
	gt.True(t, ok)

	out, err = uc.Handle(ctx, "souviens-toi que j'habite à Paris")
	gt.NoError(t, err)
	msg, ok := out.(*model.Message)
	gt.True(t, ok)
	gt.Equal(t, msg.Subtype, model.SubtypeSuccess)

	out, err = uc.Handle(ctx, "rappelle-toi")
	gt.NoError(t, err)
	list, ok := out.(*model.MemoryList)
	gt.True(t, ok)
	gt.A(t, list.Items).Length(1)

	out, err = uc.Handle(ctx, "rappelle contact")
	gt.NoError(t, err)
	msg, ok = out.(*model.Message)
	gt.True(t, ok)
	gt.Equal(t, msg.Subtype, model.SubtypeInfo)

	out, err = uc.Handle(ctx, "oublie le souvenir Paris")
	gt.NoError(t, err)
	req, ok := out.(*model.ConfirmationRequest)
	gt.True(t, ok)
	gt.Equal(t, req.Pending.Item.Text, "j'habite à Paris")

	out, err = uc.Handle(ctx, "forget the memory about Berlin")
	gt.NoError(t, err)
	msg, ok = out.(*model.Message)
	gt.True(t, ok)
	gt.Equal(t, msg.Subtype, model.SubtypeInfo)

	out, err = uc.Handle(ctx, "liste règles")
	gt.NoError(t, err)
	msg, ok = out.(*model.Message)
	gt.True(t, ok)
	gt.S(t, msg.Text).Contains("No classification rule")
}
