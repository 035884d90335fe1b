// Package store owns the canonical ordered instruction list for a session.
// The store is the single source of truth: model evaluation states are
// seeded from it and the reconciliation engine validates imports against it.
package store

import (
	"encoding/json"
	"fmt"

	"marker/internal/types"
)

// Store holds the committed instruction list. It is created empty and
// populated atomically by Commit once the operator finishes the
// applicability pass. After that the only permitted mutations are the
// CorrectApplicability / CorrectType patches used to resolve import
// mismatches.
type Store struct {
	instructions []types.Instruction
}

// New returns an empty, uncommitted store.
func New() *Store { return &Store{} }

// Parse decodes a raw instructions payload into instructions ready for the
// applicability pass. Missing types default to business logic; applicability
// stays as authored, which is usually undetermined. Each instruction gets a
// fresh synthetic key.
func Parse(raw []byte) ([]types.Instruction, error) {
	if !json.Valid(raw) {
		return nil, &types.ParseError{Err: fmt.Errorf("store: payload is not valid JSON")}
	}

	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &types.ParseError{Err: err}
	}
	if _, ok := probe.([]any); !ok {
		return nil, &types.ShapeError{Detail: "instructions must be an array"}
	}

	var insts []types.Instruction
	if err := json.Unmarshal(raw, &insts); err != nil {
		return nil, &types.ShapeError{Detail: fmt.Sprintf("instructions have the wrong shape: %v", err)}
	}

	for i := range insts {
		if insts[i].Type == "" {
			insts[i].Type = types.TypeBusinessLogic
		}
		if !insts[i].Type.Valid() {
			return nil, &types.ShapeError{
				Detail: fmt.Sprintf("instruction %d: unrecognized type %q", i+1, insts[i].Type),
			}
		}
		insts[i].Key = types.NewKey()
	}
	return insts, nil
}

// Commit atomically installs the instruction list after the applicability
// pass. Every instruction must have a determined applicability. Baseline
// rubric verdicts are derived here: a non-applicable instruction has every
// rubric forced to Not Applicable, an applicable one starts unscored.
func (s *Store) Commit(insts []types.Instruction) error {
	if len(insts) == 0 {
		return &types.ValidationError{Detail: "cannot commit an empty instruction list"}
	}
	for i := range insts {
		if !insts[i].Determined() {
			return &types.ValidationError{
				Detail: fmt.Sprintf("instruction %d has no applicability decision", i+1),
			}
		}
	}

	committed := types.CloneAll(insts)
	for i := range committed {
		applyBaseline(&committed[i])
	}
	s.instructions = committed
	return nil
}

// applyBaseline derives the committed verdict baseline for one instruction.
func applyBaseline(in *types.Instruction) {
	for j := range in.Rubrics {
		if in.IsApplicable() {
			in.Rubrics[j].Verdict = types.VerdictUnset
		} else {
			in.Rubrics[j].Verdict = types.VerdictNotApplicable
		}
	}
}

// Committed reports whether the applicability pass has completed.
func (s *Store) Committed() bool { return len(s.instructions) > 0 }

// Len returns the number of committed instructions.
func (s *Store) Len() int { return len(s.instructions) }

// At returns a deep copy of the instruction at position i.
func (s *Store) At(i int) types.Instruction { return s.instructions[i].Clone() }

// Instructions returns a deep copy of the committed list.
func (s *Store) Instructions() []types.Instruction {
	return types.CloneAll(s.instructions)
}

// Seed returns a fresh working copy for one model evaluation state: same
// order, same keys, baseline verdicts.
func (s *Store) Seed() []types.Instruction {
	return types.CloneAll(s.instructions)
}

// find locates an instruction by its text identity. Text is the only
// identity the upstream format has; two instructions with identical text are
// indistinguishable here, which is a known limit of the format.
func (s *Store) find(instructionText string) (*types.Instruction, error) {
	for i := range s.instructions {
		if s.instructions[i].Text == instructionText {
			return &s.instructions[i], nil
		}
	}
	return nil, &types.ValidationError{
		Detail: fmt.Sprintf("no instruction with text %.50q", instructionText),
	}
}

// CorrectApplicability patches one instruction's applicability in place.
// Setting it to false cascades Not Applicable over that instruction's
// rubrics in the store copy only; model working copies are corrected
// independently through reconciliation or manual edits.
func (s *Store) CorrectApplicability(instructionText string, applicable bool) error {
	in, err := s.find(instructionText)
	if err != nil {
		return err
	}
	in.Applicable = types.Bool(applicable)
	if !applicable {
		for j := range in.Rubrics {
			in.Rubrics[j].Verdict = types.VerdictNotApplicable
		}
	}
	return nil
}

// CorrectType patches one instruction's type in place. Used when the
// operator resolves a type conflict surfaced by an import.
func (s *Store) CorrectType(instructionText string, t types.InstructionType) error {
	if !t.Valid() {
		return &types.ValidationError{Detail: fmt.Sprintf("unrecognized type %q", t)}
	}
	in, err := s.find(instructionText)
	if err != nil {
		return err
	}
	in.Type = t
	return nil
}
