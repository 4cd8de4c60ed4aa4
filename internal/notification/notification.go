// Package notification turns published workflow events into messages for
// the people who have to act on them. Delivery itself is pluggable.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-hrflow/internal/events"
	"go-hrflow/internal/workflow"

	"go.uber.org/zap"
)

type Notification struct {
	Type      string `json:"type"`
	CompanyID string `json:"company_id"`
	Reference string `json:"reference,omitempty"`
	// RecipientIDs are employee ids; RecipientRoles are role mailboxes
	// such as HR that resolve outside this service.
	RecipientIDs   []string  `json:"recipient_ids,omitempty"`
	RecipientRoles []string  `json:"recipient_roles,omitempty"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func (n Notification) HasRecipients() bool {
	return len(n.RecipientIDs) > 0 || len(n.RecipientRoles) > 0
}

type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// LogDispatcher writes notifications to the log.
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger ...*zap.Logger) *LogDispatcher {
	l := zap.L().Named("notification.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &LogDispatcher{logger: l}
}

func (d *LogDispatcher) Dispatch(ctx context.Context, n Notification) error {
	d.logger.Info("notification dispatched",
		zap.String("type", n.Type),
		zap.String("company_id", n.CompanyID),
		zap.String("reference", n.Reference),
		zap.Strings("recipient_ids", n.RecipientIDs),
		zap.Strings("recipient_roles", n.RecipientRoles),
		zap.String("subject", n.Subject),
	)
	return nil
}

// FromApprovalTransition builds the notification for a committed
// transition. The second result is false when nobody needs to be told.
func FromApprovalTransition(ev events.ApprovalTransitionedEvent) (Notification, bool) {
	n := Notification{
		Type:       ev.EventType,
		CompanyID:  ev.CompanyID,
		Reference:  ev.Reference,
		OccurredAt: ev.OccurredAt,
	}
	kind := humanize(ev.Kind)

	switch workflow.Status(ev.Status) {
	case workflow.StatusPending:
		if workflow.Action(ev.Action) == workflow.ActionEdit {
			return Notification{}, false
		}
		for _, role := range ev.PendingRoles {
			switch workflow.Role(role) {
			case workflow.RoleLineManager, workflow.RoleManager:
				n.RecipientIDs = appendUnique(n.RecipientIDs, ev.LineManagerID)
			case workflow.RoleSelf:
				n.RecipientIDs = appendUnique(n.RecipientIDs, ev.SubjectID)
			default:
				n.RecipientRoles = appendUnique(n.RecipientRoles, role)
			}
		}
		n.Subject = fmt.Sprintf("%s %s awaits your approval", kind, ev.Reference)
		n.Body = fmt.Sprintf("%s is now %s.", ev.Reference, ev.StatusLabel)

	case workflow.StatusClarificationRequested:
		n.RecipientIDs = appendUnique(n.RecipientIDs, ev.RequesterID)
		n.Subject = fmt.Sprintf("Clarification requested on %s %s", kind, ev.Reference)
		n.Body = ev.Comment

	case workflow.StatusApproved, workflow.StatusRejected, workflow.StatusCancelled:
		n.RecipientIDs = appendUnique(n.RecipientIDs, ev.RequesterID)
		n.RecipientIDs = appendUnique(n.RecipientIDs, ev.SubjectID)
		n.Subject = fmt.Sprintf("%s %s was %s", kind, ev.Reference, strings.ToLower(ev.Status))
		n.Body = ev.Comment

	default:
		return Notification{}, false
	}

	return n, n.HasRecipients()
}

func FromProbationUrgency(ev events.ProbationUrgencyEvent) (Notification, bool) {
	n := Notification{
		Type:           ev.EventType,
		CompanyID:      ev.CompanyID,
		Reference:      ev.EmployeeID,
		RecipientRoles: []string{string(workflow.RoleHR)},
		Subject: fmt.Sprintf("Probation of %s ends in %d days (%s)",
			ev.EmployeeName, ev.DaysRemaining, ev.UrgencyLevel),
		Body:       fmt.Sprintf("Probation end date: %s. A probation review should be started.", ev.EndDate),
		OccurredAt: ev.OccurredAt,
	}
	n.RecipientIDs = appendUnique(n.RecipientIDs, ev.ManagerID)
	return n, true
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// humanize turns LEAVE_REQUEST into "Leave request".
func humanize(kind string) string {
	s := strings.ToLower(strings.ReplaceAll(kind, "_", " "))
	if s == "" {
		return "Request"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
