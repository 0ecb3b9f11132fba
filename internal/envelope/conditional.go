package envelope

// conditional.go evaluates conditional-field rules: whether a field is
// visible/enabled given the current values of the fields it depends on.
//
// Dangling references fail open (the field stays active) but produce a
// diagnostic so the editor can surface the broken rule. Cycles terminate
// the walk with the field treated as inactive.

import (
	"strings"
)

// DiagnosticKind classifies evaluator warnings.
type DiagnosticKind string

const (
	// DiagnosticDanglingReference: the rule's dependsOn id matches no field.
	DiagnosticDanglingReference DiagnosticKind = "dangling_reference"

	// DiagnosticCycle: the dependency chain revisits a field already on the
	// evaluation path.
	DiagnosticCycle DiagnosticKind = "cycle"

	// DiagnosticTypeMismatch: checked/unchecked used against a
	// non-checkbox dependency.
	DiagnosticTypeMismatch DiagnosticKind = "type_mismatch"
)

// Diagnostic is a lint-style warning produced during evaluation. Evaluation
// never fails hard; diagnostics let the editor surface broken rules.
type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind"`
	FieldID   string         `json:"fieldId"`
	DependsOn string         `json:"dependsOn,omitempty"`
	Message   string         `json:"message"`
}

// FieldValues holds the current resolved value of each field, keyed by field
// id. Checkbox values are "true"/"false".
type FieldValues map[string]string

// checkbox value representation shared with the signing page
const checkboxTrue = "true"

// FieldActive reports whether the field is currently active (visible and
// enabled) given the full field set and the resolved values, together with
// any diagnostics produced while evaluating its dependency chain.
func FieldActive(f SignatureField, all []SignatureField, values FieldValues) (bool, []Diagnostic) {
	return fieldActive(f, all, values, map[string]bool{})
}

func fieldActive(f SignatureField, all []SignatureField, values FieldValues, path map[string]bool) (bool, []Diagnostic) {
	if f.Conditional == nil || !f.Conditional.Enabled {
		return true, nil
	}

	if path[f.ID] {
		return false, []Diagnostic{{
			Kind:    DiagnosticCycle,
			FieldID: f.ID,
			Message: "conditional rules form a cycle",
		}}
	}
	path[f.ID] = true
	defer delete(path, f.ID)

	dep, ok := FindField(all, f.Conditional.DependsOn)
	if !ok {
		// fail open so a deleted dependency never hides a field silently
		return true, []Diagnostic{{
			Kind:      DiagnosticDanglingReference,
			FieldID:   f.ID,
			DependsOn: f.Conditional.DependsOn,
			Message:   "conditional rule references a field that no longer exists",
		}}
	}

	// A hidden dependency cannot satisfy anything: the dependency's own
	// conditional chain is evaluated first.
	depActive, diags := fieldActive(dep, all, values, path)
	if !depActive {
		return false, diags
	}

	ok, condDiags := evaluateCondition(f, dep, values[dep.ID])
	return ok, append(diags, condDiags...)
}

func evaluateCondition(f SignatureField, dep SignatureField, depValue string) (bool, []Diagnostic) {
	c := f.Conditional

	switch c.Condition {
	case ConditionChecked, ConditionUnchecked:
		if dep.Type != FieldTypeCheckbox {
			return true, []Diagnostic{{
				Kind:      DiagnosticTypeMismatch,
				FieldID:   f.ID,
				DependsOn: dep.ID,
				Message:   string(c.Condition) + " condition requires a checkbox dependency",
			}}
		}
		checked := depValue == checkboxTrue
		if c.Condition == ConditionChecked {
			return checked, nil
		}
		return !checked, nil

	case ConditionEquals:
		return depValue == c.Value, nil
	case ConditionNotEquals:
		return depValue != c.Value, nil
	case ConditionContains:
		// an empty operand never matches: "contains nothing" is a rule the
		// author has not finished, not a rule satisfied by every input
		return c.Value != "" && strings.Contains(depValue, c.Value), nil

	default:
		// unknown operator fails open, same as a dangling reference
		return true, []Diagnostic{{
			Kind:      DiagnosticDanglingReference,
			FieldID:   f.ID,
			DependsOn: dep.ID,
			Message:   "unknown condition operator: " + string(c.Condition),
		}}
	}
}

// LintConditionals evaluates every field once and collects the diagnostics,
// for surfacing broken rules in the editor without changing any state.
func LintConditionals(fields []SignatureField, values FieldValues) []Diagnostic {
	var out []Diagnostic
	for _, f := range fields {
		_, diags := FieldActive(f, fields, values)
		out = append(out, diags...)
	}
	return out
}
