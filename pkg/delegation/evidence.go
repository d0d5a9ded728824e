// Package delegation builds, validates, stores and evaluates iSHARE
// delegation evidence: the access policies an authorization registry holds
// for Agrisync entity types.
package delegation

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MaxNotOnOrAfter is the open-ended expiry written by default.
	MaxNotOnOrAfter int64 = 2147483647

	EffectPermit = "Permit"
	EffectDeny   = "Deny"

	// Wildcard matches any subject, identifier or attribute.
	Wildcard = "*"
)

// Evidence is the document exchanged with the authorization registry.
type Evidence struct {
	DelegationEvidence DelegationEvidence `json:"delegationEvidence"`
}

type DelegationEvidence struct {
	NotBefore    int64       `json:"notBefore"`
	NotOnOrAfter int64       `json:"notOnOrAfter"`
	PolicyIssuer string      `json:"policyIssuer"`
	Target       *Target     `json:"target,omitempty"`
	PolicySets   []PolicySet `json:"policySets"`
}

// Target names the party the evidence is issued to. Evidence without a
// target applies to every user.
type Target struct {
	AccessSubject string `json:"accessSubject"`
}

type PolicySet struct {
	Policies []Policy `json:"policies"`
}

type Policy struct {
	Target PolicyTarget `json:"target"`
	Rules  []Rule       `json:"rules"`
}

type PolicyTarget struct {
	Resource Resource `json:"resource"`
	Actions  []string `json:"actions"`
}

type Resource struct {
	Type        string   `json:"type"`
	Identifiers []string `json:"identifiers"`
	Attributes  []string `json:"attributes"`
}

type Rule struct {
	Effect string `json:"effect"`
}

// Request describes a single-policy evidence to build.
type Request struct {
	Issuer        string
	AccessSubject string
	EntityType    string
	Action        string
	Attributes    []string
	Identifiers   []string
	Effect        string
	NotBefore     time.Time
	NotOnOrAfter  time.Time
}

// NewEvidence builds evidence granting (or denying) Action on EntityType.
// An empty AccessSubject yields evidence for all users. NotBefore defaults to
// now, NotOnOrAfter to MaxNotOnOrAfter, Identifiers to the wildcard and
// Effect to Permit.
func NewEvidence(req Request, now time.Time) (*Evidence, error) {
	var missing []string
	if req.Issuer == "" {
		missing = append(missing, "issuer")
	}
	if req.EntityType == "" {
		missing = append(missing, "entity_type")
	}
	if req.Action == "" {
		missing = append(missing, "action")
	}
	if len(req.Attributes) == 0 {
		missing = append(missing, "allowed_attributes")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	notBefore := now.Unix()
	if !req.NotBefore.IsZero() {
		notBefore = req.NotBefore.Unix()
	}
	notOnOrAfter := MaxNotOnOrAfter
	if !req.NotOnOrAfter.IsZero() {
		notOnOrAfter = req.NotOnOrAfter.Unix()
	}
	identifiers := req.Identifiers
	if len(identifiers) == 0 {
		identifiers = []string{Wildcard}
	}
	effect := req.Effect
	if effect == "" {
		effect = EffectPermit
	}

	ev := &Evidence{DelegationEvidence: DelegationEvidence{
		NotBefore:    notBefore,
		NotOnOrAfter: notOnOrAfter,
		PolicyIssuer: req.Issuer,
		PolicySets: []PolicySet{{
			Policies: []Policy{{
				Target: PolicyTarget{
					Resource: Resource{
						Type:        req.EntityType,
						Identifiers: append([]string(nil), identifiers...),
						Attributes:  append([]string(nil), req.Attributes...),
					},
					Actions: []string{req.Action},
				},
				Rules: []Rule{{Effect: effect}},
			}},
		}},
	}}
	if req.AccessSubject != "" {
		ev.DelegationEvidence.Target = &Target{AccessSubject: req.AccessSubject}
	}
	return ev, nil
}

// ParseAttributes splits a comma-separated attribute list.
func ParseAttributes(csv string) []string {
	var out []string
	for _, a := range strings.Split(csv, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// Subject returns the access subject, or Wildcard for all-user evidence.
func (e *Evidence) Subject() string {
	if t := e.DelegationEvidence.Target; t != nil && t.AccessSubject != "" {
		return t.AccessSubject
	}
	return Wildcard
}

// ActiveAt reports whether t falls within [notBefore, notOnOrAfter).
func (e *Evidence) ActiveAt(t time.Time) bool {
	ts := t.Unix()
	return ts >= e.DelegationEvidence.NotBefore && ts < e.DelegationEvidence.NotOnOrAfter
}

// EntityTypes lists the resource types the evidence covers.
func (e *Evidence) EntityTypes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range e.DelegationEvidence.PolicySets {
		for _, p := range set.Policies {
			if t := p.Target.Resource.Type; t != "" && !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}
