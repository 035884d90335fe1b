package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marker/internal/store"
	"marker/internal/types"
)

// committedStore builds a two-instruction store: the first applicable with
// one rubric, the second not applicable with two rubrics.
func committedStore(t *testing.T) *store.Store {
	t.Helper()
	insts := []types.Instruction{
		{
			Text: "Act as the ticket manager persona.",
			Rubrics: []types.Rubric{
				{Text: "Did the agent hold the persona?", Verifier: types.VerifierBoth},
			},
			Labels:     []string{"Role and Persona"},
			Applicable: types.Bool(true),
			Type:       types.TypeBusinessLogic,
		},
		{
			Text: "Never decide product strategy.",
			Rubrics: []types.Rubric{
				{Text: "Did the agent defer strategy?", Verifier: types.VerifierHuman},
				{Text: "Did the agent avoid prioritizing?", Verifier: types.VerifierModel},
			},
			Labels:     []string{"Safety / Ethical constraints"},
			Applicable: types.Bool(false),
			Type:       types.TypeExpertDeveloper,
		},
	}
	for i := range insts {
		insts[i].Key = types.NewKey()
	}
	s := store.New()
	require.NoError(t, s.Commit(insts))
	return s
}

// exportPayload renders instructions the way the tool exports them, so the
// round-trip import path is exercised with the real wire shape.
func exportPayload(t *testing.T, insts []types.Instruction) []byte {
	t.Helper()
	data, err := json.MarshalIndent(insts, "", "  ")
	require.NoError(t, err)
	return data
}

func TestReconcileRoundTrip(t *testing.T) {
	s := committedStore(t)

	// Export the baseline, score the applicable rubric, re-import.
	working := s.Seed()
	working[0].Rubrics[0].Verdict = types.VerdictYes

	res, err := Reconcile(s, exportPayload(t, working))
	require.NoError(t, err)

	assert.Empty(t, res.Corrections)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, types.VerdictYes, res.Working[0].Rubrics[0].Verdict)
	assert.Equal(t, types.VerdictNotApplicable, res.Working[1].Rubrics[0].Verdict)

	// Merged copies carry the store's synthetic keys.
	assert.Equal(t, s.At(0).Key, res.Working[0].Key)
}

func TestReconcileRejections(t *testing.T) {
	s := committedStore(t)

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := Reconcile(s, []byte("{oops"))
		var perr *types.ParseError
		require.ErrorAs(t, err, &perr)
	})

	t.Run("not an array", func(t *testing.T) {
		_, err := Reconcile(s, []byte(`{"a":1}`))
		var serr *types.ShapeError
		require.ErrorAs(t, err, &serr)
	})

	// Three imported instructions against a store of two.
	t.Run("count mismatch names expected and actual", func(t *testing.T) {
		working := s.Seed()
		working = append(working, working[0].Clone())
		_, err := Reconcile(s, exportPayload(t, working))

		var cerr *types.CountMismatchError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "instruction count mismatch: expected 2, got 3", cerr.Error())
	})

	t.Run("instruction text mismatch is positional", func(t *testing.T) {
		// Same content, swapped order: strict positional matching rejects it.
		working := s.Seed()
		working[0], working[1] = working[1], working[0]
		_, err := Reconcile(s, exportPayload(t, working))

		var ierr *types.IdentityMismatchError
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, 1, ierr.Instruction)
	})

	t.Run("applicable must be boolean", func(t *testing.T) {
		payload := []byte(`[
		  {"instruction":"Act as the ticket manager persona.","rubrics":[{"rubric":"Did the agent hold the persona?","rubric_verifier":"Both"}],"labels":[],"applicable":"yes","type":"BUSINESS_LOGIC_DEVELOPER_INSTRUCTIONS"},
		  {"instruction":"Never decide product strategy.","rubrics":[{"rubric":"Did the agent defer strategy?","rubric_verifier":"Human"},{"rubric":"Did the agent avoid prioritizing?","rubric_verifier":"Model"}],"labels":[],"applicable":false,"type":"EXPERT_DEVELOPER_INSTRUCTIONS"}
		]`)
		_, err := Reconcile(s, payload)

		var serr *types.ShapeError
		require.ErrorAs(t, err, &serr)
		assert.Contains(t, serr.Error(), "instruction 1: applicable must be a boolean")
	})

	t.Run("unknown type", func(t *testing.T) {
		working := s.Seed()
		working[1].Type = "SOMETHING_ELSE"
		_, err := Reconcile(s, exportPayload(t, working))

		var serr *types.ShapeError
		require.ErrorAs(t, err, &serr)
		assert.Contains(t, serr.Error(), "instruction 2: unrecognized type")
	})

	t.Run("rubric count mismatch", func(t *testing.T) {
		working := s.Seed()
		working[1].Rubrics = working[1].Rubrics[:1]
		_, err := Reconcile(s, exportPayload(t, working))

		var cerr *types.CountMismatchError
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "instruction 2: rubric count mismatch: expected 2, got 1", cerr.Error())
	})

	t.Run("rubric text mismatch", func(t *testing.T) {
		working := s.Seed()
		working[1].Rubrics[1].Text = "edited"
		_, err := Reconcile(s, exportPayload(t, working))

		var ierr *types.IdentityMismatchError
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, "instruction 2, rubric 2: rubric text mismatch", ierr.Error())
	})

	t.Run("verifier mismatch", func(t *testing.T) {
		working := s.Seed()
		working[0].Rubrics[0].Verifier = types.VerifierModel
		_, err := Reconcile(s, exportPayload(t, working))

		var ierr *types.IdentityMismatchError
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, "instruction 1, rubric 1: verifier mismatch", ierr.Error())
	})

	t.Run("invalid verdict value", func(t *testing.T) {
		working := s.Seed()
		working[0].Rubrics[0].Verdict = "Perhaps"
		_, err := Reconcile(s, exportPayload(t, working))

		var serr *types.ShapeError
		require.ErrorAs(t, err, &serr)
		assert.Contains(t, serr.Error(), "instruction 1, rubric 1: invalid evaluation_result")
	})
}

// Imported applicable=false against store applicable=true is
// accepted with one auto-correction, and because the corrected final value
// is true the imported verdicts are left as given.
func TestReconcileAutoCorrection(t *testing.T) {
	s := committedStore(t)

	working := s.Seed()
	working[0].Applicable = types.Bool(false)
	working[0].Rubrics[0].Verdict = types.VerdictNo

	res, err := Reconcile(s, exportPayload(t, working))
	require.NoError(t, err)

	require.Len(t, res.Corrections, 1)
	assert.Equal(t, 1, res.Corrections[0].Index)
	assert.False(t, res.Corrections[0].From)
	assert.True(t, res.Corrections[0].To)

	// Store wins: applicable is true again and the verdict stands.
	assert.True(t, res.Working[0].IsApplicable())
	assert.Equal(t, types.VerdictNo, res.Working[0].Rubrics[0].Verdict)

	t.Run("correction toward false forces verdicts", func(t *testing.T) {
		working := s.Seed()
		working[1].Applicable = types.Bool(true)
		working[1].Rubrics[0].Verdict = types.VerdictYes
		working[1].Rubrics[1].Verdict = types.VerdictNo

		res, err := Reconcile(s, exportPayload(t, working))
		require.NoError(t, err)
		require.Len(t, res.Corrections, 1)

		assert.False(t, res.Working[1].IsApplicable())
		assert.Equal(t, types.VerdictNotApplicable, res.Working[1].Rubrics[0].Verdict)
		assert.Equal(t, types.VerdictNotApplicable, res.Working[1].Rubrics[1].Verdict)
	})
}

// Re-importing the corrected payload produces zero further corrections.
func TestAutoCorrectionIdempotence(t *testing.T) {
	s := committedStore(t)

	working := s.Seed()
	working[0].Applicable = types.Bool(false)

	first, err := Reconcile(s, exportPayload(t, working))
	require.NoError(t, err)
	require.Len(t, first.Corrections, 1)

	second, err := Reconcile(s, exportPayload(t, first.Working))
	require.NoError(t, err)
	assert.Empty(t, second.Corrections)
	if diff := cmp.Diff(first.Working, second.Working); diff != "" {
		t.Errorf("working copy changed on re-import (-first +second):\n%s", diff)
	}
}

// The conflict set is exactly the diverging positions, and
// resolving one instruction removes exactly that entry.
func TestTypeConflicts(t *testing.T) {
	s := committedStore(t)

	working := s.Seed()
	working[0].Type = types.TypeExpertDeveloper
	working[1].Type = types.TypeBusinessLogic

	res, err := Reconcile(s, exportPayload(t, working))
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 2)
	assert.Equal(t, 0, res.Conflicts[0].Index)
	assert.Equal(t, types.TypeBusinessLogic, res.Conflicts[0].StoreType)
	assert.Equal(t, types.TypeExpertDeveloper, res.Conflicts[0].ImportedType)
	assert.Equal(t, 1, res.Conflicts[1].Index)

	// Resolve instruction 1 toward the store value by syncing the working
	// copy; re-detection against current state drops exactly that entry.
	res.Working[0].Type = s.At(0).Type
	remaining := Conflicts(s.Instructions(), res.Working)
	require.Len(t, remaining, 1)
	assert.Equal(t, 1, remaining[0].Index)
}

func TestDisplayOrder(t *testing.T) {
	s := committedStore(t)

	t.Run("plain applicable subset", func(t *testing.T) {
		working := s.Seed()
		list := DisplayOrder(s.Instructions(), working)
		require.Len(t, list, 1)
		assert.Equal(t, "Act as the ticket manager persona.", list[0].Text)
	})

	t.Run("conflicts come first, even non-applicable ones", func(t *testing.T) {
		working := s.Seed()
		working[1].Type = types.TypeBusinessLogic // conflicted, not applicable

		list := DisplayOrder(s.Instructions(), working)
		require.Len(t, list, 2)
		assert.Equal(t, "Never decide product strategy.", list[0].Text)
		assert.Equal(t, "Act as the ticket manager persona.", list[1].Text)
	})

	t.Run("conflicted applicable instruction is not shown twice", func(t *testing.T) {
		working := s.Seed()
		working[0].Type = types.TypeExpertDeveloper

		list := DisplayOrder(s.Instructions(), working)
		require.Len(t, list, 1)
		assert.Equal(t, "Act as the ticket manager persona.", list[0].Text)
	})
}

func TestSummary(t *testing.T) {
	res := &Result{}
	assert.Equal(t, "Imported evaluation for Gemini. Review in Evaluation tab.", res.Summary(types.ModelGemini))

	res.Corrections = []Correction{{Index: 1}}
	res.Conflicts = []Conflict{{Index: 0}, {Index: 1}}
	assert.Equal(t,
		"Imported evaluation for Claude. Auto-corrected 1 applicability mismatch(es) with 2 type mismatch(es) to resolve. Review in Evaluation tab.",
		res.Summary(types.ModelClaude))
}
