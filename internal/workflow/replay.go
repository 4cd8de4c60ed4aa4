package workflow

import workflowerrors "go-hrflow/internal/workflow/errors"

// Replay rebuilds state from an ordered event log, starting from DRAFT.
// Sequence numbers must run 1..n without gaps.
func Replay(res StageResolution, events []Event) (State, error) {
	st := InitialState()
	for i, ev := range events {
		if ev.Seq != i+1 {
			return st, workflowerrors.CorruptTrail("event %d has sequence %d", i+1, ev.Seq)
		}
		next, err := Apply(st, res, ev)
		if err != nil {
			return st, err
		}
		st = next
	}
	return st, nil
}

// VerifyReplay checks that the log reproduces the stored state exactly.
func VerifyReplay(req Request, events []Event) error {
	st, err := Replay(req.Resolution, events)
	if err != nil {
		return err
	}
	if st != req.State {
		return workflowerrors.CorruptTrail(
			"replayed state %s/%d does not match stored %s/%d",
			st.Status, st.CurrentStage, req.State.Status, req.State.CurrentStage,
		)
	}
	return nil
}
