package workflow

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	workflowerrors "go-hrflow/internal/workflow/errors"

	"github.com/gowebpki/jcs"
)

// Seal numbers ev, links it to prevHash and computes its hash. Timestamps
// are truncated to microseconds so the hash survives a postgres round trip.
func Seal(prevHash string, seq int, ev Event) (Event, error) {
	ev.Seq = seq
	ev.PrevHash = prevHash
	ev.Timestamp = ev.Timestamp.UTC().Truncate(time.Microsecond)
	h, err := hashEvent(ev)
	if err != nil {
		return Event{}, err
	}
	ev.Hash = h
	return ev, nil
}

// VerifyChain checks hashes and links of an ordered trail.
func VerifyChain(events []Event) error {
	prev := ""
	for i, ev := range events {
		if ev.PrevHash != prev {
			return workflowerrors.CorruptTrail("chain broken at event %d: previous hash mismatch", i+1)
		}
		h, err := hashEvent(ev)
		if err != nil {
			return err
		}
		if h != ev.Hash {
			return workflowerrors.CorruptTrail("integrity failure at event %d", i+1)
		}
		prev = ev.Hash
	}
	return nil
}

// LastHash is the head of the chain, empty for an empty trail.
func LastHash(events []Event) string {
	if len(events) == 0 {
		return ""
	}
	return events[len(events)-1].Hash
}

func hashEvent(ev Event) (string, error) {
	raw, err := json.Marshal(map[string]any{
		"request_id":  ev.RequestID,
		"seq":         ev.Seq,
		"stage_index": ev.StageIndex,
		"actor_id":    ev.ActorID,
		"actor_role":  ev.ActorRole,
		"action":      ev.Action,
		"comment":     ev.Comment,
		"timestamp":   ev.Timestamp.UTC().Format(time.RFC3339Nano),
		"prev_hash":   ev.PrevHash,
	})
	if err != nil {
		return "", err
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
