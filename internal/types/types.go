// Package types provides the shared data model for the instruction marker.
// This package exists to break import cycles between store, reconcile, and
// session. Types in this package are foundational data structures with no
// dependencies beyond the uuid generator.
package types

import "github.com/google/uuid"

// =============================================================================
// VERDICTS
// =============================================================================

// Verdict is the result recorded for a single rubric. The zero value means
// the rubric has not been scored yet and is omitted from serialized output.
type Verdict string

const (
	VerdictUnset         Verdict = ""
	VerdictYes           Verdict = "Yes"
	VerdictNo            Verdict = "No"
	VerdictNotApplicable Verdict = "Not Applicable"
)

// Valid reports whether v is one of the three scoreable verdicts.
// The unset verdict is not a scoreable value.
func (v Verdict) Valid() bool {
	return v == VerdictYes || v == VerdictNo || v == VerdictNotApplicable
}

// IsSet reports whether the rubric has been scored at all.
func (v Verdict) IsSet() bool { return v != VerdictUnset }

// =============================================================================
// INSTRUCTION TYPES
// =============================================================================

// InstructionType classifies an instruction. The wire values are fixed by
// the upstream instruction format.
type InstructionType string

const (
	TypeBusinessLogic   InstructionType = "BUSINESS_LOGIC_DEVELOPER_INSTRUCTIONS"
	TypeExpertDeveloper InstructionType = "EXPERT_DEVELOPER_INSTRUCTIONS"
)

// Valid reports whether t is a recognized instruction type.
func (t InstructionType) Valid() bool {
	return t == TypeBusinessLogic || t == TypeExpertDeveloper
}

// Rubric verifier values observed in the instruction format. The verifier is
// carried as a free-form string on the wire and compared by exact equality;
// these constants cover the known vocabulary.
const (
	VerifierHuman = "Human"
	VerifierModel = "Model"
	VerifierBoth  = "Both"
)

// =============================================================================
// MODEL IDENTITIES
// =============================================================================

// ModelID identifies one of the three model transcripts under evaluation.
type ModelID string

const (
	ModelGemini ModelID = "Gemini"
	ModelClaude ModelID = "Claude"
	ModelOpenAI ModelID = "OpenAI"
)

// ModelOrder returns the model identities in display order. Adding a fourth
// model is a change to this slice, not to any control flow.
func ModelOrder() []ModelID {
	return []ModelID{ModelGemini, ModelClaude, ModelOpenAI}
}

// Valid reports whether m is a known model identity.
func (m ModelID) Valid() bool {
	for _, id := range ModelOrder() {
		if m == id {
			return true
		}
	}
	return false
}

// =============================================================================
// CORE RECORDS
// =============================================================================

// Rubric is a single yes/no/not-applicable scoring question attached to an
// instruction. Field order matches the authored JSON key order.
type Rubric struct {
	Text     string  `json:"rubric"`
	Verifier string  `json:"rubric_verifier"`
	Verdict  Verdict `json:"evaluation_result,omitempty"`
}

// Instruction is a natural-language directive with its scoring rubrics.
//
// Key is a synthetic identity assigned at ingestion. The upstream format has
// no stable identifier, so instruction text equality remains the validation
// contract for imports; the key only gives in-process lookups something
// better to join on than raw text.
//
// Applicable is a pointer because the operator has not decided yet when an
// instruction is first parsed: nil means undetermined, and the store refuses
// to commit until every instruction has been marked.
type Instruction struct {
	Key        string          `json:"-"`
	Text       string          `json:"instruction"`
	Rubrics    []Rubric        `json:"rubrics"`
	Labels     []string        `json:"labels"`
	Applicable *bool           `json:"applicable,omitempty"`
	Type       InstructionType `json:"type"`
}

// NewKey returns a fresh synthetic instruction key.
func NewKey() string { return uuid.NewString() }

// IsApplicable reports whether the instruction has been marked applicable.
// An undetermined instruction is not applicable.
func (in *Instruction) IsApplicable() bool {
	return in.Applicable != nil && *in.Applicable
}

// Determined reports whether the operator has marked applicability at all.
func (in *Instruction) Determined() bool { return in.Applicable != nil }

// HasLabel reports whether the given label is present.
func (in *Instruction) HasLabel(label string) bool {
	for _, l := range in.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// SetLabel adds or removes a label, keeping the remaining order stable.
func (in *Instruction) SetLabel(label string, present bool) {
	if present {
		if !in.HasLabel(label) {
			in.Labels = append(in.Labels, label)
		}
		return
	}
	kept := in.Labels[:0]
	for _, l := range in.Labels {
		if l != label {
			kept = append(kept, l)
		}
	}
	in.Labels = kept
}

// Clone returns a deep copy of the instruction.
func (in Instruction) Clone() Instruction {
	out := in
	out.Rubrics = make([]Rubric, len(in.Rubrics))
	copy(out.Rubrics, in.Rubrics)
	if in.Labels != nil {
		out.Labels = make([]string, len(in.Labels))
		copy(out.Labels, in.Labels)
	}
	if in.Applicable != nil {
		v := *in.Applicable
		out.Applicable = &v
	}
	return out
}

// CloneAll deep-copies a slice of instructions.
func CloneAll(insts []Instruction) []Instruction {
	if insts == nil {
		return nil
	}
	out := make([]Instruction, len(insts))
	for i, in := range insts {
		out[i] = in.Clone()
	}
	return out
}

// Bool returns a pointer to b, for building instruction literals.
func Bool(b bool) *bool { return &b }
