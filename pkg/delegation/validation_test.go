package delegation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validEvidence() *Evidence {
	return &Evidence{DelegationEvidence: DelegationEvidence{
		NotBefore:    0,
		NotOnOrAfter: MaxNotOnOrAfter,
		PolicyIssuer: "issuer",
		Target:       &Target{AccessSubject: "subject"},
		PolicySets: []PolicySet{{Policies: []Policy{{
			Target: PolicyTarget{
				Resource: Resource{Type: "AgriFarm", Identifiers: []string{"*"}, Attributes: []string{"name"}},
				Actions:  []string{"GET"},
			},
			Rules: []Rule{{Effect: EffectPermit}},
		}}}},
	}}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(ev *Evidence)
		wantField string
		warnings  int
	}{
		{name: "valid", mutate: func(ev *Evidence) {}},
		{
			name:     "no target warns",
			mutate:   func(ev *Evidence) { ev.DelegationEvidence.Target = nil },
			warnings: 1,
		},
		{
			name:      "missing issuer",
			mutate:    func(ev *Evidence) { ev.DelegationEvidence.PolicyIssuer = " " },
			wantField: "policyIssuer",
		},
		{
			name:      "window reversed",
			mutate:    func(ev *Evidence) { ev.DelegationEvidence.NotBefore = MaxNotOnOrAfter },
			wantField: "notOnOrAfter",
		},
		{
			name:      "empty subject",
			mutate:    func(ev *Evidence) { ev.DelegationEvidence.Target.AccessSubject = "" },
			wantField: "target.accessSubject",
		},
		{
			name:      "no policies",
			mutate:    func(ev *Evidence) { ev.DelegationEvidence.PolicySets = nil },
			wantField: "policySets",
		},
		{
			name: "bad effect",
			mutate: func(ev *Evidence) {
				ev.DelegationEvidence.PolicySets[0].Policies[0].Rules[0].Effect = "Maybe"
			},
			wantField: "policySets[0].policies[0].rules[0].effect",
		},
		{
			name: "no actions",
			mutate: func(ev *Evidence) {
				ev.DelegationEvidence.PolicySets[0].Policies[0].Target.Actions = nil
			},
			wantField: "policySets[0].policies[0].target.actions",
		},
		{
			name: "no identifiers",
			mutate: func(ev *Evidence) {
				ev.DelegationEvidence.PolicySets[0].Policies[0].Target.Resource.Identifiers = nil
			},
			wantField: "policySets[0].policies[0].target.resource.identifiers",
		},
		{
			name: "no attributes warns",
			mutate: func(ev *Evidence) {
				ev.DelegationEvidence.PolicySets[0].Policies[0].Target.Resource.Attributes = nil
			},
			warnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvidence()
			tt.mutate(ev)
			result := Validate(ev)
			if tt.wantField == "" {
				assert.True(t, result.IsValid(), "unexpected errors: %v", result.Errors)
				assert.NoError(t, result.Err())
			} else {
				assert.False(t, result.IsValid())
				assert.Equal(t, tt.wantField, result.Errors[0].Field)
				assert.Error(t, result.Err())
			}
			assert.Len(t, result.Warnings, tt.warnings)
		})
	}
}

func TestValidateNil(t *testing.T) {
	result := Validate(nil)
	assert.False(t, result.IsValid())
}
