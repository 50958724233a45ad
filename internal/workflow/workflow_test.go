package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionsOnlyFromPredecessors(t *testing.T) {
	tests := []struct {
		action  Action
		allowed []Status
	}{
		{ActionApprove, []Status{Submitted}},
		{ActionReject, []Status{Submitted, Approved}},
		{ActionPrint, []Status{Approved}},
		{ActionDispatch, []Status{ReadyForDispatch}},
		{ActionCardArrived, []Status{Dispatched}},
		{ActionCardCollected, []Status{ReadyForCollection}},
		{ActionResubmit, []Status{Submitted, Rejected}},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			tr, err := Lookup(tt.action)
			require.NoError(t, err)

			for _, s := range Statuses {
				want := false
				for _, a := range tt.allowed {
					if a == s {
						want = true
					}
				}
				assert.Equal(t, want, tr.Allows(s, false), "status %s", s)
			}
		})
	}
}

func TestCardCollectedLegacyPredecessors(t *testing.T) {
	tr := MustLookup(ActionCardCollected)

	assert.True(t, tr.Allows(Dispatched, true))
	assert.True(t, tr.Allows(blank, true))
	assert.False(t, tr.Allows(Dispatched, false))
	assert.False(t, tr.Allows(blank, false))
	assert.False(t, tr.Allows(Approved, true))
}

func TestDispatchRequiresReadyForDispatch(t *testing.T) {
	tr := MustLookup(ActionDispatch)

	assert.False(t, tr.Allows(Approved, true))
	assert.False(t, tr.Allows(Submitted, true))
	assert.True(t, tr.Allows(ReadyForDispatch, false))
}

func TestPredicate(t *testing.T) {
	clause, args := MustLookup(ActionDispatch).Predicate(3)
	assert.Equal(t, "status = ANY($3)", clause)
	assert.Equal(t, []any{[]string{"ready_for_dispatch"}}, args)

	clause, args = MustLookup(ActionCardCollected).Predicate(2)
	assert.Equal(t, "(status = ANY($2) OR (status = ANY($3) AND generated_id_number IS NOT NULL))", clause)
	assert.Equal(t, []any{[]string{"ready_for_collection"}, []string{"", "dispatched"}}, args)
}

func TestLookupUnknownAction(t *testing.T) {
	_, err := Lookup("teleport")
	require.Error(t, err)
	assert.Panics(t, func() { MustLookup("teleport") })
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("ready_for_collection"))
	assert.False(t, Valid("lost"))
	assert.False(t, Valid(""))
}
