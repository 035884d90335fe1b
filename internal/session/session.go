// Package session owns the mutable state of one annotation session: the
// canonical instruction store, the pasted model transcripts, and the three
// independent per-model evaluation states. The session object is passed
// explicitly to every handler; there is no ambient global state. All
// mutation is serialized through the UI event loop, so none of this is
// guarded by locks.
package session

import (
	"fmt"

	"go.uber.org/zap"

	"marker/internal/nav"
	"marker/internal/reconcile"
	"marker/internal/store"
	"marker/internal/types"
)

// State is one model's private evaluation state: a cursor over its display
// list and a working copy of the instructions carrying its verdicts.
type State struct {
	Cursor  nav.Cursor
	Working []types.Instruction
}

// Session is the whole in-memory state for a single annotation run. It lives
// only for the process lifetime; nothing is persisted.
type Session struct {
	Query           string
	CaseDescription string

	store     *store.Store
	responses map[types.ModelID]string
	states    map[types.ModelID]*State

	log *zap.Logger
}

// New creates an empty session. A nil logger is replaced with a no-op one.
func New(log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		store:     store.New(),
		responses: make(map[types.ModelID]string),
		states:    make(map[types.ModelID]*State),
		log:       log,
	}
	return s
}

// Store exposes the canonical instruction store.
func (s *Session) Store() *store.Store { return s.store }

// SetResponse records a pasted transcript for one model.
func (s *Session) SetResponse(m types.ModelID, transcript string) {
	s.responses[m] = transcript
}

// Response returns the pasted transcript for one model.
func (s *Session) Response(m types.ModelID) string { return s.responses[m] }

// CommitApplicability atomically installs the instruction list and seeds
// identical working copies into each model state with cursors at (0,0).
// Re-committing after a change to the applicable set fully resets every
// model to the unscored/Not-Applicable baseline.
func (s *Session) CommitApplicability(insts []types.Instruction) error {
	if err := s.store.Commit(insts); err != nil {
		return err
	}
	for _, m := range types.ModelOrder() {
		s.states[m] = &State{Working: s.store.Seed()}
	}
	s.log.Info("applicability committed",
		zap.Int("instructions", s.store.Len()),
		zap.Int("applicable", s.ApplicableCount()),
	)
	return nil
}

// state returns the model's evaluation state, or an error if the model is
// unknown or the applicability step has not completed.
func (s *Session) state(m types.ModelID) (*State, error) {
	if !m.Valid() {
		return nil, &types.ValidationError{Detail: fmt.Sprintf("unknown model %q", m)}
	}
	st, ok := s.states[m]
	if !ok {
		return nil, &types.EmptyListError{}
	}
	return st, nil
}

// Working returns a deep copy of the model's working instructions, or nil if
// the model was never seeded.
func (s *Session) Working(m types.ModelID) []types.Instruction {
	st, err := s.state(m)
	if err != nil {
		return nil
	}
	return types.CloneAll(st.Working)
}

// EvaluatedInstructions is the export view of one model: its working copy,
// or the store baseline when the model was never seeded.
func (s *Session) EvaluatedInstructions(m types.ModelID) []types.Instruction {
	if st, err := s.state(m); err == nil {
		return types.CloneAll(st.Working)
	}
	return s.store.Seed()
}

// DisplayList returns the model's walk-through list: instructions with open
// type conflicts first, then the remaining applicable instructions, all in
// store order.
func (s *Session) DisplayList(m types.ModelID) ([]types.Instruction, error) {
	st, err := s.state(m)
	if err != nil {
		return nil, err
	}
	list := reconcile.DisplayOrder(s.store.Instructions(), st.Working)
	if len(list) == 0 {
		return nil, &types.EmptyListError{}
	}
	return list, nil
}

// Cursor returns the model's current cursor.
func (s *Session) Cursor(m types.ModelID) (nav.Cursor, error) {
	st, err := s.state(m)
	if err != nil {
		return nav.Cursor{}, err
	}
	return st.Cursor, nil
}

// Advance moves the model's cursor one rubric forward.
func (s *Session) Advance(m types.ModelID) error {
	return s.move(m, nav.Advance)
}

// Retreat moves the model's cursor one rubric backward.
func (s *Session) Retreat(m types.ModelID) error {
	return s.move(m, nav.Retreat)
}

func (s *Session) move(m types.ModelID, step func(nav.Cursor, []types.Instruction) (nav.Cursor, error)) error {
	st, err := s.state(m)
	if err != nil {
		return err
	}
	list, err := s.DisplayList(m)
	if err != nil {
		return err
	}
	c, err := step(nav.Clamp(st.Cursor, list), list)
	if err != nil {
		return err
	}
	st.Cursor = c
	return nil
}

// SetVerdict scores one rubric in the model's working copy. The instruction
// is located by its synthetic key. A non-applicable instruction accepts only
// Not Applicable; anything else is a hard error rather than a silent
// invariant break.
func (s *Session) SetVerdict(m types.ModelID, instructionKey string, rubricIndex int, v types.Verdict) error {
	st, err := s.state(m)
	if err != nil {
		return err
	}
	if !v.Valid() {
		return &types.ValidationError{Detail: fmt.Sprintf("invalid verdict %q", v)}
	}

	for i := range st.Working {
		in := &st.Working[i]
		if in.Key != instructionKey {
			continue
		}
		if rubricIndex < 0 || rubricIndex >= len(in.Rubrics) {
			return &types.ValidationError{
				Detail: fmt.Sprintf("rubric index %d out of range for instruction %.50q", rubricIndex, in.Text),
			}
		}
		if !in.IsApplicable() && v != types.VerdictNotApplicable {
			return &types.ValidationError{
				Detail: fmt.Sprintf("instruction %.50q is not applicable; only Not Applicable is allowed", in.Text),
			}
		}
		in.Rubrics[rubricIndex].Verdict = v
		return nil
	}
	return &types.ValidationError{Detail: fmt.Sprintf("no instruction with key %q", instructionKey)}
}

// ImportEvaluation reconciles an externally edited evaluation payload into
// one model's state. On success the working copy is fully replaced and the
// cursor resets to (0,0); other models are untouched. On any validation
// failure the model's state is unchanged.
func (s *Session) ImportEvaluation(m types.ModelID, payload []byte) (*reconcile.Result, error) {
	if !m.Valid() {
		return nil, &types.ValidationError{Detail: fmt.Sprintf("unknown model %q", m)}
	}
	if !s.store.Committed() {
		return nil, &types.EmptyListError{}
	}

	res, err := reconcile.Reconcile(s.store, payload)
	if err != nil {
		s.log.Warn("import rejected", zap.String("model", string(m)), zap.Error(err))
		return nil, err
	}

	s.states[m] = &State{Working: res.Working}
	s.log.Info("import accepted",
		zap.String("model", string(m)),
		zap.Int("auto_corrections", len(res.Corrections)),
		zap.Int("open_conflicts", len(res.Conflicts)),
	)
	return res, nil
}

// Conflicts returns the model's open type conflicts, recomputed against the
// current store state.
func (s *Session) Conflicts(m types.ModelID) []reconcile.Conflict {
	st, err := s.state(m)
	if err != nil {
		return nil
	}
	return reconcile.Conflicts(s.store.Instructions(), st.Working)
}

// ResolveTypeConflict finalizes one instruction's type. The store is patched
// and the model's working copy is synced to the final value, so re-detection
// against current state drops exactly this conflict. Other models' working
// copies are left alone; their conflicts resolve through their own imports
// or resolutions.
func (s *Session) ResolveTypeConflict(m types.ModelID, instructionText string, final types.InstructionType) error {
	st, err := s.state(m)
	if err != nil {
		return err
	}
	if err := s.store.CorrectType(instructionText, final); err != nil {
		return err
	}
	for i := range st.Working {
		if st.Working[i].Text == instructionText {
			st.Working[i].Type = final
			break
		}
	}
	if list, err := s.DisplayList(m); err == nil {
		st.Cursor = nav.Clamp(st.Cursor, list)
	} else {
		st.Cursor = nav.Cursor{}
	}
	return nil
}

// =============================================================================
// PROGRESS COUNTERS
// =============================================================================

// ApplicableCount returns how many committed instructions are applicable.
func (s *Session) ApplicableCount() int {
	n := 0
	for _, in := range s.store.Instructions() {
		if in.IsApplicable() {
			n++
		}
	}
	return n
}

// TotalRubrics counts rubrics across the applicable instructions.
func (s *Session) TotalRubrics() int {
	n := 0
	for _, in := range s.store.Instructions() {
		if in.IsApplicable() {
			n += len(in.Rubrics)
		}
	}
	return n
}

// CompletedRubrics counts scored rubrics in one model's working copy.
func (s *Session) CompletedRubrics(m types.ModelID) int {
	st, err := s.state(m)
	if err != nil {
		return 0
	}
	n := 0
	for _, in := range st.Working {
		for _, r := range in.Rubrics {
			if r.Verdict.IsSet() {
				n++
			}
		}
	}
	return n
}
