package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdictValid(t *testing.T) {
	assert.True(t, VerdictYes.Valid())
	assert.True(t, VerdictNo.Valid())
	assert.True(t, VerdictNotApplicable.Valid())
	assert.False(t, VerdictUnset.Valid())
	assert.False(t, Verdict("Maybe").Valid())
}

func TestInstructionTypeValid(t *testing.T) {
	assert.True(t, TypeBusinessLogic.Valid())
	assert.True(t, TypeExpertDeveloper.Valid())
	assert.False(t, InstructionType("").Valid())
	assert.False(t, InstructionType("OTHER").Valid())
}

func TestModelOrder(t *testing.T) {
	// Display order is Gemini, Claude, OpenAI.
	assert.Equal(t, []ModelID{ModelGemini, ModelClaude, ModelOpenAI}, ModelOrder())
	for _, m := range ModelOrder() {
		assert.True(t, m.Valid())
	}
	assert.False(t, ModelID("Mistral").Valid())
}

func TestRubricSerialization(t *testing.T) {
	t.Run("unset verdict is omitted", func(t *testing.T) {
		data, err := json.Marshal(Rubric{Text: "q", Verifier: VerifierBoth})
		require.NoError(t, err)
		assert.JSONEq(t, `{"rubric":"q","rubric_verifier":"Both"}`, string(data))
	})

	t.Run("set verdict uses wire spelling", func(t *testing.T) {
		data, err := json.Marshal(Rubric{Text: "q", Verifier: VerifierHuman, Verdict: VerdictNotApplicable})
		require.NoError(t, err)
		assert.JSONEq(t, `{"rubric":"q","rubric_verifier":"Human","evaluation_result":"Not Applicable"}`, string(data))
	})
}

func TestInstructionSerialization(t *testing.T) {
	in := Instruction{
		Key:        NewKey(),
		Text:       "do the thing",
		Rubrics:    []Rubric{{Text: "did it?", Verifier: VerifierBoth}},
		Labels:     []string{"Role and Persona"},
		Applicable: Bool(true),
		Type:       TypeBusinessLogic,
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	// The synthetic key must never leak onto the wire.
	assert.NotContains(t, string(data), in.Key)
	assert.Contains(t, string(data), `"applicable":true`)

	t.Run("undetermined applicability is omitted", func(t *testing.T) {
		in := Instruction{Text: "t", Type: TypeBusinessLogic}
		data, err := json.Marshal(in)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "applicable")
	})
}

func TestInstructionLabels(t *testing.T) {
	in := Instruction{Labels: []string{"a", "b"}}

	in.SetLabel("User Confirmation", true)
	assert.Equal(t, []string{"a", "b", "User Confirmation"}, in.Labels)

	// Adding twice is a no-op.
	in.SetLabel("User Confirmation", true)
	assert.Equal(t, []string{"a", "b", "User Confirmation"}, in.Labels)

	in.SetLabel("b", false)
	assert.Equal(t, []string{"a", "User Confirmation"}, in.Labels)
	assert.False(t, in.HasLabel("b"))
}

func TestInstructionClone(t *testing.T) {
	orig := Instruction{
		Key:        NewKey(),
		Text:       "t",
		Rubrics:    []Rubric{{Text: "r", Verifier: VerifierBoth}},
		Labels:     []string{"l"},
		Applicable: Bool(false),
		Type:       TypeExpertDeveloper,
	}

	clone := orig.Clone()
	clone.Rubrics[0].Verdict = VerdictYes
	clone.Labels[0] = "changed"
	*clone.Applicable = true

	assert.Equal(t, VerdictUnset, orig.Rubrics[0].Verdict)
	assert.Equal(t, "l", orig.Labels[0])
	assert.False(t, *orig.Applicable)
}
