package memory

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/alfred-assistant/alfred/pkg/model"
)

// CommandKind identifies a memory command
type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandAddRule
	CommandListRules
	CommandDeleteRule
	CommandSetImportance
	CommandVote
	CommandSetActiveProject
	CommandImportBulk
	CommandRememberInDomain
	CommandRememberCategorized
	CommandRememberFreeform
	CommandRecall
	CommandRecallCategory
	CommandRecallDomain
	CommandListCategories
	CommandListDomains
	CommandForget

	// CommandClarify is a recognized command missing its argument. Prompt
	// says what to add.
	CommandClarify
)

// Command is a parsed memory command. Only the fields of its Kind are set.
type Command struct {
	Kind CommandKind

	Text     string
	Category string
	Domain   string
	Keyword  string
	Value    float64
	Up       bool

	// Search holds delete lookups in the order they are tried
	Search []string

	Prompt string
}

var (
	ruleDomainPattern   = regexp.MustCompile(`(?i)^(?:règle|regle|rule)\s*:\s*"(.*?)"\s*->\s*(?:domaine|domain)\s*=\s*([a-z0-9_\-]+)(?:\s+(?:catégorie|categorie|category)\s*=\s*([a-z0-9_\- ]+))?$`)
	ruleCategoryPattern = regexp.MustCompile(`(?i)^(?:règle|regle|rule)\s*:\s*"(.*?)"\s*->\s*(?:catégorie|categorie|category)\s*=\s*([a-z0-9_\- ]+)$`)
	listRulesPattern    = regexp.MustCompile(`(?i)^(?:liste(?:\s+des)?\s+règles|list\s+rules)\b`)
	deleteRulePattern   = regexp.MustCompile(`(?i)^(?:supprime\s+règle|delete\s+rule)\s*"(.*?)"\s*$`)

	importancePattern = regexp.MustCompile(`(?i)^importance\s*:\s*"(.*?)"\s*=\s*([0-9]*\.?[0-9]+)\s*$`)
	votePattern       = regexp.MustCompile(`(?i)^(upvote|downvote)\s*:\s*"(.*?)"\s*$`)

	activeProjectPattern = regexp.MustCompile(`(?i)^(?:active\s+project|projet\s+actif)\s*:\s*(.+)$`)
	noProjectPattern     = regexp.MustCompile(`(?i)^(?:no\s+active\s+project|aucun\s+projet\s+actif)\s*$`)

	bulkTriggerPattern = regexp.MustCompile(`(?i)^(?:intègre\s+ceci|integrate\s+this)\b`)
	bulkPattern        = regexp.MustCompile(`(?is)^(?:intègre\s+ceci|integrate\s+this)(?:\s+(?:dans|into)\s+([^:\n]+?))?\s*[:\-]\s*(.*)$`)

	domainAddPattern      = regexp.MustCompile(`(?is)^(?:souviens(?:-toi)?\s+dans\s+(?:le\s+)?domaine|remember\s+in\s+domain)\s+([\p{L}0-9_\-]+)\s*:\s*(.+)$`)
	categorizedFrPattern  = regexp.MustCompile(`(?is)^souviens(?:-toi)?\s+de\s+([\p{L}0-9_ \-]+?)\s*:\s*(.+)$`)
	categorizedEnPattern  = regexp.MustCompile(`(?is)^remember\s+(?:under\s+|in\s+)?([\p{L}0-9_\-]+(?:\s[\p{L}0-9_\-]+)?)\s*:\s*(.+)$`)
	freeformFrPattern     = regexp.MustCompile(`(?is)^souviens(?:-|\s)?toi\s*(?:que\s*|qu['’]\s*)?(.*)$`)
	freeformEnPattern     = regexp.MustCompile(`(?is)^remember(?:\s+(?:that|this))?\b\s*(.*)$`)
	freeformTriggers      = []string{"garde cela en mémoire", "garde en mémoire", "keep in memory", "note ça", "note ca", "note this", "note that", "souviens"}
	leadingPunctuation    = regexp.MustCompile(`^[\s:,\-]+`)
	recallPattern         = regexp.MustCompile(`(?i)^\s*(?:rappelle(?:\s|-)?toi|liste(?:\s+mes)?\s+souvenirs|recall|list(?:\s+my)?\s+memories)\s*$`)
	recallDomainPattern   = regexp.MustCompile(`(?i)^\s*(?:rappelle|recall)\s+(?:le\s+)?(?:domaine|domain)\s+([\p{L}0-9_ \-]+?)\s*$`)
	recallCategoryPattern = regexp.MustCompile(`(?i)^\s*(?:rappelle|recall)\s+([\p{L}0-9_ \-]+?)\s*$`)
	listCategoriesPattern = regexp.MustCompile(`(?i)^\s*(?:liste(?:\s+des)?\s+catégories|list\s+categories)\s*$`)
	listDomainsPattern    = regexp.MustCompile(`(?i)^\s*(?:liste(?:\s+des)?\s+domaines|list\s+domains)\s*$`)

	memoryNounRegex     = regexp.MustCompile(`(?i)\b(?:souvenirs?|mémoire|memoire|memory|memories)\b`)
	forgetPattern       = regexp.MustCompile(`(?is)^(?:oublies?|efface|supprime|forget|erase|delete)\b\s*(.*)$`)
	determinerNounRegex = regexp.MustCompile(`(?i)\b(?:le|la|les|un|une|the|a|an|that|this)\s+(souvenirs?|mémoire|memoire|memory|memories)\b`)
	leadingNounRegex    = regexp.MustCompile(`(?i)^(?:souvenirs?|mémoire|memoire|memory|memories)\s*[:,\-]?\s*(?:about\s+|of\s+|de\s+|du\s+|d['’]\s*|que\s+)?`)
	spacesRegex         = regexp.MustCompile(`\s{2,}`)

	// "remember this: ..." is freeform, not a category named "this"
	determiners = map[string]bool{"that": true, "this": true, "the": true, "a": true, "an": true, "my": true}
)

// ParseCommand maps an utterance to a memory command. Patterns are tried in a
// fixed priority order and the first match wins. Utterances that mention
// file storage are never memory commands.
func ParseCommand(utterance string) *Command {
	txt := strings.TrimSpace(utterance)
	if txt == "" || model.MentionsStorage(txt) {
		return &Command{Kind: CommandNone}
	}
	lower := strings.ToLower(txt)

	// rules
	if m := ruleDomainPattern.FindStringSubmatch(txt); m != nil {
		return &Command{Kind: CommandAddRule, Keyword: m[1], Domain: m[2], Category: strings.TrimSpace(m[3])}
	}
	if m := ruleCategoryPattern.FindStringSubmatch(txt); m != nil {
		return &Command{Kind: CommandAddRule, Keyword: m[1], Category: strings.TrimSpace(m[2])}
	}
	if listRulesPattern.MatchString(txt) {
		return &Command{Kind: CommandListRules}
	}
	if m := deleteRulePattern.FindStringSubmatch(txt); m != nil {
		return &Command{Kind: CommandDeleteRule, Keyword: m[1]}
	}

	// importance and feedback
	if m := importancePattern.FindStringSubmatch(txt); m != nil {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return &Command{Kind: CommandClarify, Prompt: "Invalid importance value."}
		}
		return &Command{Kind: CommandSetImportance, Text: m[1], Value: v}
	}
	if m := votePattern.FindStringSubmatch(txt); m != nil {
		return &Command{Kind: CommandVote, Text: m[2], Up: strings.EqualFold(m[1], "upvote")}
	}

	// settings
	if noProjectPattern.MatchString(txt) {
		return &Command{Kind: CommandSetActiveProject}
	}
	if m := activeProjectPattern.FindStringSubmatch(txt); m != nil {
		return &Command{Kind: CommandSetActiveProject, Domain: strings.TrimSpace(m[1])}
	}

	// bulk import
	if bulkTriggerPattern.MatchString(txt) {
		if m := bulkPattern.FindStringSubmatch(txt); m != nil {
			return &Command{Kind: CommandImportBulk, Category: strings.TrimSpace(m[1]), Text: m[2]}
		}
		return &Command{Kind: CommandClarify, Prompt: "Add the text after « integrate this: »."}
	}

	// additions
	if m := domainAddPattern.FindStringSubmatch(txt); m != nil {
		return &Command{Kind: CommandRememberInDomain, Domain: m[1], Text: strings.TrimSpace(m[2])}
	}
	if m := categorizedFrPattern.FindStringSubmatch(txt); m != nil {
		return &Command{Kind: CommandRememberCategorized, Category: m[1], Text: strings.TrimSpace(m[2])}
	}
	if m := categorizedEnPattern.FindStringSubmatch(txt); m != nil && !determiners[strings.ToLower(strings.Fields(m[1])[0])] {
		return &Command{Kind: CommandRememberCategorized, Category: m[1], Text: strings.TrimSpace(m[2])}
	}
	if m := freeformFrPattern.FindStringSubmatch(txt); m != nil {
		return freeform(m[1])
	}
	if m := freeformEnPattern.FindStringSubmatch(txt); m != nil {
		return freeform(m[1])
	}
	for _, trig := range freeformTriggers {
		if strings.HasPrefix(lower, trig) {
			return freeform(string([]rune(txt)[len([]rune(trig)):]))
		}
	}

	// recall
	if recallPattern.MatchString(txt) {
		return &Command{Kind: CommandRecall}
	}
	if listCategoriesPattern.MatchString(txt) {
		return &Command{Kind: CommandListCategories}
	}
	if listDomainsPattern.MatchString(txt) {
		return &Command{Kind: CommandListDomains}
	}
	if m := recallDomainPattern.FindStringSubmatch(txt); m != nil {
		return &Command{Kind: CommandRecallDomain, Domain: m[1]}
	}
	if m := recallCategoryPattern.FindStringSubmatch(txt); m != nil && strings.ToLower(m[1]) != "toi" {
		return &Command{Kind: CommandRecallCategory, Category: m[1]}
	}

	// deletion, only when a memory noun is present: "delete the report"
	// belongs to someone else
	if m := forgetPattern.FindStringSubmatch(txt); m != nil && memoryNounRegex.MatchString(txt) {
		payload := strings.TrimSpace(m[1])
		cleaned := cleanDeletePayload(payload)
		if cleaned == "" {
			return &Command{Kind: CommandClarify, Prompt: "Tell me what to forget (text to look for)."}
		}
		search := []string{cleaned}
		if cleaned != payload {
			search = append(search, payload)
		}
		return &Command{Kind: CommandForget, Search: search}
	}

	return &Command{Kind: CommandNone}
}

func freeform(payload string) *Command {
	payload = strings.TrimSpace(leadingPunctuation.ReplaceAllString(payload, ""))
	if payload == "" {
		return &Command{Kind: CommandClarify, Prompt: "What exactly should I remember?"}
	}
	return &Command{Kind: CommandRememberFreeform, Text: payload}
}

// cleanDeletePayload drops determiners and memory nouns in front of the text
// to look for: "the memory about my bike" becomes "my bike"
func cleanDeletePayload(payload string) string {
	cleaned := determinerNounRegex.ReplaceAllString(payload, "$1")
	cleaned = leadingNounRegex.ReplaceAllString(cleaned, "")
	cleaned = spacesRegex.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
