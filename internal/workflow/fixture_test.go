package workflow_test

import (
	"time"

	"go-hrflow/internal/workflow"
)

const tenant = "company-1"

var (
	fixedNow = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

	employee   = workflow.Actor{ID: "emp-1"}
	manager    = workflow.Actor{ID: "mgr-1"}
	additional = workflow.Actor{ID: "add-1", AdditionalApproverFor: []string{"UK"}}
	hr         = workflow.Actor{ID: "hr-1", IsHR: true}
	admin      = workflow.Actor{ID: "admin-1", IsAdmin: true}
	stranger   = workflow.Actor{ID: "other-9"}
)

func actors() workflow.StaticDirectory {
	return workflow.StaticDirectory{
		employee.ID:   employee,
		manager.ID:    manager,
		additional.ID: additional,
		hr.ID:         hr,
		admin.ID:      admin,
		stranger.ID:   stranger,
	}
}

func draft(id string, kind workflow.Kind, jurisdiction string, magnitude int) workflow.Request {
	return workflow.Request{
		ID:                 id,
		Tenant:             tenant,
		Kind:               kind,
		SubjectID:          employee.ID,
		RequesterID:        employee.ID,
		LineManagerID:      manager.ID,
		OriginJurisdiction: jurisdiction,
		Magnitude:          magnitude,
		MaxAllowedEdits:    2,
		CreatedAt:          fixedNow,
		State:              workflow.InitialState(),
	}
}

// step runs Decide and returns the updated request, failing on refusal.
func step(req workflow.Request, actor workflow.Actor, action workflow.Action, comment string) (workflow.Request, error) {
	d, err := workflow.Decide(req, actor, action, comment, fixedNow)
	if err != nil {
		return req, err
	}
	return d.Request, nil
}

func newEngine(reqs ...workflow.Request) (*workflow.Engine, *workflow.MemoryStore) {
	store := workflow.NewMemoryStore()
	for _, r := range reqs {
		store.Put(r)
	}
	eng := workflow.NewEngine(store, actors(), workflow.WithClock(func() time.Time { return fixedNow }))
	return eng, store
}

func cmd(id string, actor workflow.Actor, comment string) workflow.Command {
	return workflow.Command{Tenant: tenant, RequestID: id, ActorID: actor.ID, Comment: comment}
}
