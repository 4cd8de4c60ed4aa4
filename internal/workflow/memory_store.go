package workflow

import (
	"context"
	"sync"

	workflowerrors "go-hrflow/internal/workflow/errors"
)

// MemoryStore keeps requests and their trails in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]Request
	events   map[string][]Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[string]Request),
		events:   make(map[string][]Event),
	}
}

func memKey(tenant, id string) string { return tenant + "/" + id }

// Put stores a new request as-is, replacing any previous value and trail.
func (s *MemoryStore) Put(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memKey(req.Tenant, req.ID)
	s.requests[k] = req
	delete(s.events, k)
}

func (s *MemoryStore) Load(_ context.Context, tenant, id string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k := memKey(tenant, id)
	req, ok := s.requests[k]
	if !ok {
		return Snapshot{}, workflowerrors.ErrRequestNotFound
	}
	evs := s.events[k]
	return Snapshot{Request: req, LastHash: LastHash(evs), NextSeq: len(evs) + 1}, nil
}

func (s *MemoryStore) Commit(_ context.Context, c Commit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memKey(c.Tenant, c.After.ID)
	cur, ok := s.requests[k]
	if !ok {
		return workflowerrors.ErrRequestNotFound
	}
	if cur.Version != c.Before.Version {
		return workflowerrors.ConcurrentModification(c.Before.Version, cur.Version)
	}
	if c.Event.Seq != len(s.events[k])+1 {
		return workflowerrors.ConcurrentModification(c.Before.Version, cur.Version)
	}
	s.requests[k] = c.After
	s.events[k] = append(s.events[k], c.Event)
	return nil
}

// Events returns a copy of the trail.
func (s *MemoryStore) Events(tenant, id string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	evs := s.events[memKey(tenant, id)]
	out := make([]Event, len(evs))
	copy(out, evs)
	return out
}

// StaticDirectory resolves actors from a fixed map; unknown ids are refused.
type StaticDirectory map[string]Actor

func (d StaticDirectory) ResolveActor(_ context.Context, _ string, actorID string) (Actor, error) {
	a, ok := d[actorID]
	if !ok {
		return Actor{}, workflowerrors.ErrActorNotFound
	}
	return a, nil
}
