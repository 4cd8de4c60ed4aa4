package workflow_test

import (
	"errors"
	"testing"
	"time"

	"go-hrflow/internal/workflow"
	workflowerrors "go-hrflow/internal/workflow/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sealedTrail(t *testing.T) []workflow.Event {
	t.Helper()
	raw := []workflow.Event{
		{RequestID: "req-1", ActorID: "emp-1", ActorRole: workflow.RoleRequester, Action: workflow.ActionSubmit},
		{RequestID: "req-1", ActorID: "mgr-1", ActorRole: workflow.RoleLineManager, Action: workflow.ActionApprove, Comment: "fine"},
		{RequestID: "req-1", StageIndex: 1, ActorID: "hr-1", ActorRole: workflow.RoleHR, Action: workflow.ActionApprove},
	}
	var out []workflow.Event
	prev := ""
	for i, ev := range raw {
		ev.Timestamp = fixedNow.Add(time.Duration(i) * time.Hour)
		sealed, err := workflow.Seal(prev, i+1, ev)
		require.NoError(t, err)
		out = append(out, sealed)
		prev = sealed.Hash
	}
	return out
}

func TestSealAndVerifyChain(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		trail := sealedTrail(t)
		assert.NoError(t, workflow.VerifyChain(trail))
		assert.Equal(t, trail[1].Hash, trail[2].PrevHash)
		assert.Len(t, trail[0].Hash, 64)
		assert.Equal(t, trail[2].Hash, workflow.LastHash(trail))
	})

	t.Run("hash is independent of timestamp zone and sub-microsecond noise", func(t *testing.T) {
		ev := workflow.Event{RequestID: "r", Action: workflow.ActionSubmit, Timestamp: fixedNow.Add(700 * time.Nanosecond)}
		a, err := workflow.Seal("", 1, ev)
		require.NoError(t, err)

		ev.Timestamp = fixedNow.In(time.FixedZone("WIB", 7*3600))
		b, err := workflow.Seal("", 1, ev)
		require.NoError(t, err)
		assert.Equal(t, a.Hash, b.Hash)
	})

	t.Run("negative edited comment", func(t *testing.T) {
		trail := sealedTrail(t)
		trail[1].Comment = "rubber stamped"
		err := workflow.VerifyChain(trail)
		assert.True(t, errors.Is(err, workflowerrors.ErrCorruptTrail))
	})

	t.Run("negative removed event", func(t *testing.T) {
		trail := sealedTrail(t)
		trail = append(trail[:1], trail[2:]...)
		assert.True(t, errors.Is(workflow.VerifyChain(trail), workflowerrors.ErrCorruptTrail))
	})
}

func TestReplay(t *testing.T) {
	t.Run("negative sequence gap", func(t *testing.T) {
		res, err := workflow.ResolveChain(workflow.KindLeaveRequest, "US", 1)
		require.NoError(t, err)
		trail := sealedTrail(t)
		trail[1].Seq = 5
		_, err = workflow.Replay(res, trail)
		assert.True(t, errors.Is(err, workflowerrors.ErrCorruptTrail))
	})

	t.Run("empty log is a draft", func(t *testing.T) {
		st, err := workflow.Replay(workflow.StageResolution{}, nil)
		require.NoError(t, err)
		assert.Equal(t, workflow.InitialState(), st)
	})
}
