package delegation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// casbinModel evaluates flattened evidence rules. A single matching Deny
// overrides any Permit.
const casbinModel = `
[request_definition]
r = sub, typ, id, act, attr, now

[policy_definition]
p = sub, typ, id, act, attr, nbf, exp, eft

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = (p.sub == "*" || r.sub == p.sub) && r.typ == p.typ && (p.id == "*" || r.id == p.id) && (p.act == "*" || r.act == p.act) && (p.attr == "*" || r.attr == p.attr) && within(r.now, p.nbf, p.exp)
`

// AccessRequest asks whether Subject may perform Action on the listed
// Attributes of an entity.
type AccessRequest struct {
	Subject    string    `json:"subject"`
	EntityType string    `json:"entity_type"`
	Identifier string    `json:"identifier,omitempty"`
	Action     string    `json:"action"`
	Attributes []string  `json:"attributes,omitempty"`
	At         time.Time `json:"at,omitempty"`
}

// Decision is the outcome of an evaluation. Denied lists the requested
// attributes no rule permits.
type Decision struct {
	Allowed bool     `json:"allowed"`
	Denied  []string `json:"denied,omitempty"`
}

// Engine answers access requests against a set of evidence documents using
// a casbin enforcer. Load swaps the rule set atomically.
type Engine struct {
	mu       sync.RWMutex
	enforcer *casbin.Enforcer
	rules    int
	clock    func() time.Time
	logger   *PolicyLogger
}

// NewEngine creates an engine loaded with evidences.
func NewEngine(evidences ...*Evidence) (*Engine, error) {
	e := &Engine{clock: time.Now, logger: NewPolicyLogger()}
	if err := e.Load(evidences); err != nil {
		return nil, err
	}
	return e, nil
}

// WithClock overrides the time used for requests that carry none.
func (e *Engine) WithClock(clock func() time.Time) *Engine {
	e.clock = clock
	return e
}

// Load replaces the engine's rules with those derived from evidences.
func (e *Engine) Load(evidences []*Evidence) error {
	m, err := model.NewModelFromString(casbinModel)
	if err != nil {
		return fmt.Errorf("failed to parse casbin model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return fmt.Errorf("failed to create enforcer: %w", err)
	}
	enforcer.AddFunction("within", withinFunc)

	count := 0
	for i, ev := range evidences {
		if result := Validate(ev); !result.IsValid() {
			return fmt.Errorf("evidence %d: %w", i, result.Err())
		}
		for _, rule := range Rules(ev) {
			if _, err := enforcer.AddPolicy(rule); err != nil {
				return fmt.Errorf("failed to add rule %v: %w", rule, err)
			}
			count++
		}
	}

	e.mu.Lock()
	e.enforcer = enforcer
	e.rules = count
	e.mu.Unlock()
	return nil
}

// RuleCount returns the number of flattened rules currently loaded.
func (e *Engine) RuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules
}

// Evaluate decides req. Every requested attribute must be permitted; a
// request without attributes needs a rule covering all attributes.
func (e *Engine) Evaluate(ctx context.Context, req AccessRequest) (*Decision, error) {
	start := time.Now()
	if req.EntityType == "" || req.Action == "" {
		return nil, fmt.Errorf("entity_type and action are required")
	}

	sub := req.Subject
	if sub == "" {
		sub = Wildcard
	}
	id := req.Identifier
	if id == "" {
		id = Wildcard
	}
	at := req.At
	if at.IsZero() {
		at = e.clock()
	}
	now := strconv.FormatInt(at.Unix(), 10)

	attrs := req.Attributes
	if len(attrs) == 0 {
		attrs = []string{Wildcard}
	}

	e.mu.RLock()
	enforcer := e.enforcer
	e.mu.RUnlock()

	decision := &Decision{Allowed: true}
	for _, attr := range attrs {
		ok, err := enforcer.Enforce(sub, req.EntityType, id, req.Action, attr, now)
		if err != nil {
			e.logger.LogDecision(ctx, req, nil, time.Since(start), err)
			return nil, fmt.Errorf("failed to evaluate %s on %s: %w", req.Action, req.EntityType, err)
		}
		if !ok {
			decision.Allowed = false
			decision.Denied = append(decision.Denied, attr)
		}
	}

	e.logger.LogDecision(ctx, req, decision, time.Since(start), nil)
	return decision, nil
}

// Rules flattens evidence into casbin policy rows
// (sub, typ, id, act, attr, nbf, exp, eft).
func Rules(ev *Evidence) [][]string {
	de := ev.DelegationEvidence
	sub := ev.Subject()
	nbf := strconv.FormatInt(de.NotBefore, 10)
	exp := strconv.FormatInt(de.NotOnOrAfter, 10)

	var rows [][]string
	seen := make(map[string]bool)
	for _, set := range de.PolicySets {
		for _, p := range set.Policies {
			eft := "allow"
			for _, r := range p.Rules {
				if r.Effect == EffectDeny {
					eft = "deny"
				}
			}
			res := p.Target.Resource
			attrs := res.Attributes
			if len(attrs) == 0 {
				attrs = []string{Wildcard}
			}
			for _, act := range p.Target.Actions {
				for _, id := range res.Identifiers {
					for _, attr := range attrs {
						row := []string{sub, res.Type, id, act, attr, nbf, exp, eft}
						key := strings.Join(row, "\x00")
						if seen[key] {
							continue
						}
						seen[key] = true
						rows = append(rows, row)
					}
				}
			}
		}
	}
	return rows
}

// withinFunc implements within(now, notBefore, notOnOrAfter) for the matcher.
func withinFunc(args ...interface{}) (interface{}, error) {
	if len(args) != 3 {
		return false, fmt.Errorf("within expects 3 arguments, got %d", len(args))
	}
	var v [3]int64
	for i, a := range args {
		s, ok := a.(string)
		if !ok {
			return false, fmt.Errorf("within argument %d is %T", i, a)
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return false, err
		}
		v[i] = n
	}
	return v[0] >= v[1] && v[0] < v[2], nil
}
