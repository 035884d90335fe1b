package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marker/internal/session"
	"marker/internal/types"
)

func TestLoad(t *testing.T) {
	s := session.New(nil)
	require.NoError(t, Load(s))

	assert.Equal(t, Query, s.Query)
	assert.Equal(t, CaseDescription, s.CaseDescription)
	assert.Equal(t, 3, s.Store().Len())
	assert.Equal(t, 2, s.ApplicableCount())

	for _, m := range types.ModelOrder() {
		assert.NotEmpty(t, s.Response(m), "transcript for %s", m)

		// The third sample instruction is not applicable; its rubric is
		// already Not Applicable in every seeded state.
		working := s.Working(m)
		require.Len(t, working, 3)
		assert.Equal(t, types.VerdictNotApplicable, working[2].Rubrics[0].Verdict)
	}

	// Demo data is ready to walk through immediately.
	list, err := s.DisplayList(types.ModelGemini)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
