// Package reconcile validates an externally edited evaluation JSON against
// the canonical instruction store and merges it into a model working copy.
//
// Validation runs in a fixed order and any failure aborts the whole import
// with a specific error: parse, top-level count, per-position instruction
// text, field types, rubric count/text/verifier/verdict. Position is the
// join key once the count matches; text equality per position is the only
// ordering check, so a reordered-but-matching-by-content import is rejected
// by the text pass. Nothing is applied until every pass succeeds.
//
// After validation, applicability mismatches are auto-corrected (the store
// is authoritative) and type mismatches are collected as conflicts for the
// operator to resolve; neither is an error.
package reconcile

import (
	"encoding/json"
	"fmt"

	"marker/internal/store"
	"marker/internal/types"
)

// Correction records one applicability auto-correction applied during an
// import. From is the imported value, To the store value that replaced it.
type Correction struct {
	Index       int    // 1-based instruction position
	Instruction string // truncated instruction text
	From        bool
	To          bool
}

// Conflict records one unresolved type divergence between the store and an
// imported working copy. Conflicts are recomputed from current state, never
// cached, so resolving one instruction removes exactly one entry.
type Conflict struct {
	Index        int    // 0-based store position
	Instruction  string // full instruction text, the resolution identity
	StoreType    types.InstructionType
	ImportedType types.InstructionType
}

// Result is a successfully reconciled import: the merged working copy plus
// the report material for the success message.
type Result struct {
	Working     []types.Instruction
	Corrections []Correction
	Conflicts   []Conflict
}

// Summary renders the operator-facing success message.
func (r *Result) Summary(model types.ModelID) string {
	msg := fmt.Sprintf("Imported evaluation for %s", model)
	if n := len(r.Corrections); n > 0 {
		msg += fmt.Sprintf(". Auto-corrected %d applicability mismatch(es)", n)
	}
	if n := len(r.Conflicts); n > 0 {
		msg += fmt.Sprintf(" with %d type mismatch(es) to resolve", n)
	}
	return msg + ". Review in Evaluation tab."
}

// importedRubric mirrors the wire rubric with the verdict kept raw so an
// invalid value can be reported precisely instead of failing decode.
type importedRubric struct {
	Text     string  `json:"rubric"`
	Verifier string  `json:"rubric_verifier"`
	Verdict  *string `json:"evaluation_result"`
}

// importedInstruction mirrors the wire instruction. Applicable is kept as a
// raw message so a non-boolean value is a shape error with an index, not a
// bare decode failure.
type importedInstruction struct {
	Text       string           `json:"instruction"`
	Rubrics    []importedRubric `json:"rubrics"`
	Labels     []string         `json:"labels"`
	Applicable json.RawMessage  `json:"applicable"`
	Type       *string          `json:"type"`
}

// Reconcile validates payload against the store and, if every pass succeeds,
// produces the merged working copy. The store itself is never mutated here;
// type conflicts are resolved later by the operator.
func Reconcile(st *store.Store, payload []byte) (*Result, error) {
	imported, err := decode(payload)
	if err != nil {
		return nil, err
	}

	// Pass 1: top-level count. Position is the join key from here on.
	if len(imported) != st.Len() {
		return nil, &types.CountMismatchError{Expected: st.Len(), Actual: len(imported)}
	}

	canonical := st.Instructions()
	for i := range imported {
		if err := validateInstruction(i, &imported[i], &canonical[i]); err != nil {
			return nil, err
		}
	}

	// Structural validation passed; build the merged copy from a store seed
	// so keys, labels, and applicability are canonical, then lay the
	// imported verdicts and types over it.
	res := &Result{Working: st.Seed()}
	for i := range res.Working {
		w := &res.Working[i]
		imp := &imported[i]

		w.Type = types.InstructionType(*imp.Type)

		var importedApplicable bool
		_ = json.Unmarshal(imp.Applicable, &importedApplicable) // validated above

		if importedApplicable != w.IsApplicable() {
			res.Corrections = append(res.Corrections, Correction{
				Index:       i + 1,
				Instruction: truncate(w.Text, 50),
				From:        importedApplicable,
				To:          w.IsApplicable(),
			})
		}

		// The store's applicability is final. When it is false every rubric
		// verdict is forced to Not Applicable; when it is true the imported
		// verdicts stand as given.
		for j := range w.Rubrics {
			if !w.IsApplicable() {
				w.Rubrics[j].Verdict = types.VerdictNotApplicable
				continue
			}
			if v := imp.Rubrics[j].Verdict; v != nil {
				w.Rubrics[j].Verdict = types.Verdict(*v)
			} else {
				w.Rubrics[j].Verdict = types.VerdictUnset
			}
		}
	}

	res.Conflicts = Conflicts(canonical, res.Working)
	return res, nil
}

func decode(payload []byte) ([]importedInstruction, error) {
	if !json.Valid(payload) {
		return nil, &types.ParseError{Err: fmt.Errorf("reconcile: payload is not valid JSON")}
	}
	var probe any
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, &types.ParseError{Err: err}
	}
	if _, ok := probe.([]any); !ok {
		return nil, &types.ShapeError{Detail: "imported evaluation must be an array"}
	}
	var imported []importedInstruction
	if err := json.Unmarshal(payload, &imported); err != nil {
		return nil, &types.ShapeError{Detail: fmt.Sprintf("imported evaluation has the wrong shape: %v", err)}
	}
	return imported, nil
}

// validateInstruction runs passes 2-4 for one position: text identity,
// field types, and the rubric checks.
func validateInstruction(i int, imp *importedInstruction, canon *types.Instruction) error {
	if imp.Text != canon.Text {
		return &types.IdentityMismatchError{Instruction: i + 1, Field: "instruction text"}
	}

	var applicable bool
	if imp.Applicable == nil || json.Unmarshal(imp.Applicable, &applicable) != nil {
		return &types.ShapeError{Detail: fmt.Sprintf("instruction %d: applicable must be a boolean", i+1)}
	}
	if imp.Type == nil || !types.InstructionType(*imp.Type).Valid() {
		got := "<missing>"
		if imp.Type != nil {
			got = *imp.Type
		}
		return &types.ShapeError{Detail: fmt.Sprintf("instruction %d: unrecognized type %q", i+1, got)}
	}

	if len(imp.Rubrics) != len(canon.Rubrics) {
		return &types.CountMismatchError{
			Instruction: i + 1,
			Expected:    len(canon.Rubrics),
			Actual:      len(imp.Rubrics),
		}
	}
	for j := range imp.Rubrics {
		if imp.Rubrics[j].Text != canon.Rubrics[j].Text {
			return &types.IdentityMismatchError{Instruction: i + 1, Rubric: j + 1, Field: "rubric text"}
		}
		if imp.Rubrics[j].Verifier != canon.Rubrics[j].Verifier {
			return &types.IdentityMismatchError{Instruction: i + 1, Rubric: j + 1, Field: "verifier"}
		}
		if v := imp.Rubrics[j].Verdict; v != nil && !types.Verdict(*v).Valid() {
			return &types.ShapeError{
				Detail: fmt.Sprintf("instruction %d, rubric %d: invalid evaluation_result %q", i+1, j+1, *v),
			}
		}
	}
	return nil
}

// Conflicts returns every position where the canonical type differs from the
// working copy's type, in store order. Both lists are positionally aligned
// by construction.
func Conflicts(canonical, working []types.Instruction) []Conflict {
	var out []Conflict
	for i := range canonical {
		if i >= len(working) {
			break
		}
		if canonical[i].Type != working[i].Type {
			out = append(out, Conflict{
				Index:        i,
				Instruction:  canonical[i].Text,
				StoreType:    canonical[i].Type,
				ImportedType: working[i].Type,
			})
		}
	}
	return out
}

// DisplayOrder builds the walk-through list for one model: instructions with
// open type conflicts first, in store order, then the remaining applicable
// instructions not already shown, in store order. The returned entries are
// the working-copy records, which carry the model's verdicts.
func DisplayOrder(canonical, working []types.Instruction) []types.Instruction {
	conflicted := make(map[int]bool)
	for _, c := range Conflicts(canonical, working) {
		conflicted[c.Index] = true
	}

	var out []types.Instruction
	for i := range working {
		if conflicted[i] {
			out = append(out, working[i])
		}
	}
	for i := range working {
		if !conflicted[i] && canonical[i].IsApplicable() {
			out = append(out, working[i])
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
