package approval

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ApprovalRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_approval_requests_company_status;uniqueIndex:uq_approval_requests_company_reference,priority:1"`
	Reference string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_approval_requests_company_reference,priority:2"`

	Kind               string     `gorm:"type:varchar(30);not null"`
	SubjectID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_approval_requests_subject"`
	RequesterID        uuid.UUID  `gorm:"type:uuid;not null"`
	LineManagerID      *uuid.UUID `gorm:"type:uuid"`
	OriginJurisdiction string     `gorm:"type:varchar(10)"`
	Category           string     `gorm:"type:varchar(30)"`
	Reason             string     `gorm:"type:text"`
	Magnitude          int        `gorm:"type:int;not null;default:0"`

	StartDate     *time.Time `gorm:"type:date"`
	EndDate       *time.Time `gorm:"type:date"`
	EffectiveDate *time.Time `gorm:"type:date"`

	Status          string         `gorm:"type:varchar(30);not null;default:'DRAFT';index:idx_approval_requests_company_status"`
	CurrentStage    int            `gorm:"type:int;not null;default:0"`
	CompletedStages int64          `gorm:"type:bigint;not null;default:0"`
	EditCount       int            `gorm:"type:int;not null;default:0"`
	MaxAllowedEdits int            `gorm:"type:int;not null;default:0"`
	Resolution      datatypes.JSON `gorm:"type:jsonb"`
	Version         int64          `gorm:"type:bigint;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApprovalEvent is one row of the append-only trail.
type ApprovalEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_approval_events_request_seq"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null"`
	Seq        int       `gorm:"type:int;not null;uniqueIndex:uq_approval_events_request_seq"`
	StageIndex int       `gorm:"type:int;not null"`
	ActorID    string    `gorm:"type:uuid;not null"`
	ActorRole  string    `gorm:"type:varchar(30);not null"`
	Action     string    `gorm:"type:varchar(30);not null"`
	Comment    string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"type:timestamptz;not null"`
	PrevHash   string    `gorm:"type:char(64)"`
	Hash       string    `gorm:"type:char(64);not null"`
}
