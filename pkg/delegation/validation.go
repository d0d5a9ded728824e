package delegation

import (
	"fmt"
	"strings"
)

// ValidationError describes one problem found in an evidence document.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", ve.Field, ve.Message, ve.Value)
}

// ValidationResult collects errors and warnings from Validate.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []string
}

// IsValid returns true when no errors were recorded
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// AddError adds a validation error
func (vr *ValidationResult) AddError(field, message string, value interface{}) {
	vr.Errors = append(vr.Errors, &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	})
}

// AddWarning adds a validation warning
func (vr *ValidationResult) AddWarning(message string) {
	vr.Warnings = append(vr.Warnings, message)
}

// Err returns the first error, or nil.
func (vr *ValidationResult) Err() error {
	if len(vr.Errors) == 0 {
		return nil
	}
	return vr.Errors[0]
}

// Validate checks an evidence document for the fields the registry and the
// local engine rely on.
func Validate(ev *Evidence) *ValidationResult {
	result := &ValidationResult{}
	if ev == nil {
		result.AddError("delegationEvidence", "evidence cannot be nil", nil)
		return result
	}
	de := ev.DelegationEvidence

	if strings.TrimSpace(de.PolicyIssuer) == "" {
		result.AddError("policyIssuer", "policy issuer must be set", de.PolicyIssuer)
	}
	if de.NotOnOrAfter <= de.NotBefore {
		result.AddError("notOnOrAfter", "must be after notBefore", de.NotOnOrAfter)
	}
	if de.Target != nil && strings.TrimSpace(de.Target.AccessSubject) == "" {
		result.AddError("target.accessSubject", "access subject cannot be empty when a target is given", "")
	}
	if de.Target == nil {
		result.AddWarning("evidence has no target and applies to all users")
	}

	count := 0
	for i, set := range de.PolicySets {
		for j, p := range set.Policies {
			count++
			validatePolicy(result, fmt.Sprintf("policySets[%d].policies[%d]", i, j), p)
		}
	}
	if count == 0 {
		result.AddError("policySets", "at least one policy must be specified", de.PolicySets)
	}

	return result
}

func validatePolicy(result *ValidationResult, path string, p Policy) {
	res := p.Target.Resource
	if strings.TrimSpace(res.Type) == "" {
		result.AddError(path+".target.resource.type", "resource type must be set", res.Type)
	}
	if len(res.Identifiers) == 0 {
		result.AddError(path+".target.resource.identifiers", "at least one identifier (or \"*\") must be specified", res.Identifiers)
	}
	if len(res.Attributes) == 0 {
		result.AddWarning(path + ": no attributes listed, every attribute is covered")
	}
	if len(p.Target.Actions) == 0 {
		result.AddError(path+".target.actions", "at least one action must be specified", p.Target.Actions)
	}
	for i, a := range p.Target.Actions {
		if strings.TrimSpace(a) == "" {
			result.AddError(fmt.Sprintf("%s.target.actions[%d]", path, i), "action cannot be empty", a)
		}
	}
	if len(p.Rules) == 0 {
		result.AddError(path+".rules", "at least one rule must be specified", p.Rules)
	}
	for i, r := range p.Rules {
		if r.Effect != EffectPermit && r.Effect != EffectDeny {
			result.AddError(fmt.Sprintf("%s.rules[%d].effect", path, i), "effect must be Permit or Deny", r.Effect)
		}
	}
}
