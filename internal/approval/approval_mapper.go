package approval

import (
	"encoding/json"
	"errors"
	"time"

	approvalerrors "go-hrflow/internal/approval/errors"
	"go-hrflow/internal/workflow"
	workflowerrors "go-hrflow/internal/workflow/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func toDomain(row ApprovalRequest) (workflow.Request, error) {
	req := workflow.Request{
		ID:                 row.ID.String(),
		Tenant:             row.CompanyID.String(),
		Reference:          row.Reference,
		Kind:               workflow.Kind(row.Kind),
		SubjectID:          row.SubjectID.String(),
		RequesterID:        row.RequesterID.String(),
		OriginJurisdiction: row.OriginJurisdiction,
		Magnitude:          row.Magnitude,
		MaxAllowedEdits:    row.MaxAllowedEdits,
		StartDate:          row.StartDate,
		EndDate:            row.EndDate,
		EffectiveDate:      row.EffectiveDate,
		CreatedAt:          row.CreatedAt,
		State: workflow.State{
			Status:       workflow.Status(row.Status),
			CurrentStage: row.CurrentStage,
			Completed:    uint64(row.CompletedStages),
			EditCount:    row.EditCount,
		},
		Version: row.Version,
	}
	if row.LineManagerID != nil {
		req.LineManagerID = row.LineManagerID.String()
	}
	if len(row.Resolution) > 0 && string(row.Resolution) != "null" {
		if err := json.Unmarshal(row.Resolution, &req.Resolution); err != nil {
			return workflow.Request{}, workflowerrors.CorruptTrail("decode stage resolution of %s: %v", row.ID, err)
		}
	}
	return req, nil
}

// stateColumns are the columns a transition may change.
func stateColumns(req workflow.Request, now time.Time) (map[string]any, error) {
	var resolution datatypes.JSON
	if len(req.Resolution.Stages) > 0 {
		b, err := json.Marshal(req.Resolution)
		if err != nil {
			return nil, err
		}
		resolution = b
	}
	return map[string]any{
		"status":           string(req.State.Status),
		"current_stage":    req.State.CurrentStage,
		"completed_stages": int64(req.State.Completed),
		"edit_count":       req.State.EditCount,
		"resolution":       resolution,
		"magnitude":        req.Magnitude,
		"start_date":       req.StartDate,
		"end_date":         req.EndDate,
		"effective_date":   req.EffectiveDate,
		"version":          req.Version,
		"updated_at":       now,
	}, nil
}

func toEventRow(companyID, requestID uuid.UUID, ev workflow.Event) ApprovalEvent {
	return ApprovalEvent{
		ID:         uuid.New(),
		RequestID:  requestID,
		CompanyID:  companyID,
		Seq:        ev.Seq,
		StageIndex: ev.StageIndex,
		ActorID:    ev.ActorID,
		ActorRole:  string(ev.ActorRole),
		Action:     string(ev.Action),
		Comment:    ev.Comment,
		OccurredAt: ev.Timestamp,
		PrevHash:   ev.PrevHash,
		Hash:       ev.Hash,
	}
}

func toDomainEvent(row ApprovalEvent) workflow.Event {
	return workflow.Event{
		RequestID:  row.RequestID.String(),
		Seq:        row.Seq,
		StageIndex: row.StageIndex,
		ActorID:    row.ActorID,
		ActorRole:  workflow.Role(row.ActorRole),
		Action:     workflow.Action(row.Action),
		Comment:    row.Comment,
		Timestamp:  row.OccurredAt.UTC(),
		PrevHash:   row.PrevHash,
		Hash:       row.Hash,
	}
}

func stagesOf(res workflow.StageResolution, st *workflow.State) []StageResponse {
	out := make([]StageResponse, len(res.Stages))
	for i, s := range res.Stages {
		out[i] = StageResponse{Index: i, Role: string(s.Role), Required: s.Required}
		if st != nil {
			out[i].Completed = st.StageDone(i)
		}
	}
	return out
}

func mapToResponse(row ApprovalRequest) (ApprovalResponse, error) {
	req, err := toDomain(row)
	if err != nil {
		return ApprovalResponse{}, err
	}
	resp := ApprovalResponse{
		ID:                 req.ID,
		CompanyID:          req.Tenant,
		Reference:          row.Reference,
		Kind:               row.Kind,
		SubjectID:          req.SubjectID,
		RequesterID:        req.RequesterID,
		OriginJurisdiction: row.OriginJurisdiction,
		Category:           row.Category,
		Reason:             row.Reason,
		Magnitude:          row.Magnitude,
		StartDate:          formatDate(row.StartDate),
		EndDate:            formatDate(row.EndDate),
		EffectiveDate:      formatDate(row.EffectiveDate),
		Status:             row.Status,
		StatusLabel:        workflow.Label(req),
		CurrentStage:       row.CurrentStage,
		Semantics:          string(req.Resolution.Semantics),
		Stages:             stagesOf(req.Resolution, &req.State),
		EditCount:          row.EditCount,
		MaxAllowedEdits:    row.MaxAllowedEdits,
		Version:            row.Version,
		CreatedAt:          row.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          row.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if req.LineManagerID != "" {
		v := req.LineManagerID
		resp.LineManagerID = &v
	}
	return resp, nil
}

func mapToListResponse(rows []ApprovalRequest) ([]ApprovalResponse, error) {
	out := make([]ApprovalResponse, len(rows))
	for i, row := range rows {
		resp, err := mapToResponse(row)
		if err != nil {
			return nil, err
		}
		out[i] = resp
	}
	return out, nil
}

func mapToEventResponse(ev workflow.Event) EventResponse {
	return EventResponse{
		Seq:        ev.Seq,
		StageIndex: ev.StageIndex,
		ActorID:    ev.ActorID,
		ActorRole:  string(ev.ActorRole),
		Action:     string(ev.Action),
		Comment:    ev.Comment,
		Timestamp:  ev.Timestamp.Format(time.RFC3339Nano),
		PrevHash:   ev.PrevHash,
		Hash:       ev.Hash,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(dateLayout)
	return &v
}

func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, approvalerrors.ErrInvalidDateFormat
	}
	return &t, nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return approvalerrors.ErrApprovalNotFound
	}
	// 22P02: malformed uuid, indistinguishable from a missing row
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
		return approvalerrors.ErrApprovalNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
