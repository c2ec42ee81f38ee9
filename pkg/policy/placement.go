package policy

import (
	"context"
	"strings"

	"github.com/alfred-assistant/alfred/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/topdown/print"
)

const placementQuery = "data.placement"

// Placement decides where a freeform memory goes. An empty Placement keeps
// it freeform.
type Placement struct {
	Domain   string
	Category string
}

// IsEmpty reports whether the policy made no decision
func (p Placement) IsEmpty() bool {
	return p.Domain == "" && p.Category == ""
}

// Engine evaluates the placement policy. A nil *Engine is valid and never
// places anything.
type Engine struct {
	query *rego.PreparedEvalQuery
}

type printHook struct {
	ctx context.Context
}

func (h *printHook) Print(_ print.Context, message string) error {
	logging.From(h.ctx).Debug("rego print", "message", message)
	return nil
}

// New loads the placement policy from policyDir. It returns nil when the
// directory is empty or holds no Rego file.
func New(ctx context.Context, policyDir string) (*Engine, error) {
	if policyDir == "" {
		return nil, nil
	}

	modules, err := loadModules(policyDir)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return nil, nil
	}

	query, err := prepareQuery(ctx, modules, placementQuery)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare placement policy", goerr.V("dir", policyDir))
	}

	logging.From(ctx).Debug("placement policy loaded", "dir", policyDir, "modules", len(modules))
	return &Engine{query: query}, nil
}

// Evaluate runs data.placement with input {"text": text, "lower": lowercased text}.
// Domain wins over category when the policy returns both.
func (e *Engine) Evaluate(ctx context.Context, text string) (Placement, error) {
	if e == nil || e.query == nil {
		return Placement{}, nil
	}

	input := map[string]any{
		"text":  text,
		"lower": strings.ToLower(text),
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(input), rego.EvalPrintHook(&printHook{ctx: ctx}))
	if err != nil {
		return Placement{}, goerr.Wrap(err, "failed to evaluate placement policy")
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Placement{}, nil
	}

	data, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return Placement{}, goerr.New("invalid placement result", goerr.V("value", rs[0].Expressions[0].Value))
	}

	p := Placement{
		Domain:   normalize(getString(data, "domain")),
		Category: normalize(getString(data, "category")),
	}
	if p.Domain != "" {
		p.Category = ""
	}
	return p, nil
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
