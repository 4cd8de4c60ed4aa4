package approval

type ChainPreviewQuery struct {
	Kind         string `form:"kind" binding:"required"`
	Jurisdiction string `form:"jurisdiction"`
	Magnitude    int    `form:"magnitude" binding:"min=0"`
}

type StageResponse struct {
	Index     int    `json:"index"`
	Role      string `json:"role"`
	Required  bool   `json:"required"`
	Completed bool   `json:"completed"`
}

type ChainPreviewResponse struct {
	Kind      string          `json:"kind"`
	Semantics string          `json:"semantics"`
	Stages    []StageResponse `json:"stages"`
}

type CreateApprovalRequest struct {
	Kind string `json:"kind" binding:"required,oneof=LEAVE_REQUEST LEAVE_SCHEDULE RESIGNATION BUSINESS_TRIP HANDOVER PERFORMANCE_REVIEW PROBATION_REVIEW"`
	// EmployeeID is the subject; defaults to the caller.
	EmployeeID   string `json:"employee_id" binding:"omitempty,uuid"`
	Category     string `json:"category" binding:"max=30"`
	Reason       string `json:"reason"`
	Jurisdiction string `json:"jurisdiction" binding:"max=10"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Magnitude    *int   `json:"magnitude"`
}

type TransitionRequest struct {
	Comment         string `json:"comment"`
	ExpectedVersion *int64 `json:"expected_version"`
}

type EditRequest struct {
	StartDate       string `json:"start_date" binding:"required"`
	EndDate         string `json:"end_date" binding:"required"`
	Comment         string `json:"comment"`
	ExpectedVersion *int64 `json:"expected_version"`
}

type ListFilter struct {
	Kind      string `form:"kind"`
	Status    string `form:"status"`
	SubjectID string `form:"employee_id"`
}

type RecordsQuery struct {
	Sort   string `form:"sort"`
	Order  string `form:"order"`
	Type   string `form:"type"`
	Status string `form:"status"`
}

type ApprovalResponse struct {
	ID                 string          `json:"id"`
	CompanyID          string          `json:"company_id"`
	Reference          string          `json:"reference"`
	Kind               string          `json:"kind"`
	SubjectID          string          `json:"employee_id"`
	RequesterID        string          `json:"requester_id"`
	LineManagerID      *string         `json:"line_manager_id,omitempty"`
	OriginJurisdiction string          `json:"jurisdiction,omitempty"`
	Category           string          `json:"category,omitempty"`
	Reason             string          `json:"reason,omitempty"`
	Magnitude          int             `json:"magnitude"`
	StartDate          *string         `json:"start_date,omitempty"`
	EndDate            *string         `json:"end_date,omitempty"`
	EffectiveDate      *string         `json:"effective_date,omitempty"`
	Status             string          `json:"status"`
	StatusLabel        string          `json:"status_label"`
	CurrentStage       int             `json:"current_stage"`
	Semantics          string          `json:"semantics,omitempty"`
	Stages             []StageResponse `json:"stages,omitempty"`
	EditCount          int             `json:"edit_count"`
	MaxAllowedEdits    int             `json:"max_allowed_edits"`
	Version            int64           `json:"version"`
	CreatedAt          string          `json:"created_at"`
	UpdatedAt          string          `json:"updated_at"`
}

type EventResponse struct {
	Seq        int    `json:"seq"`
	StageIndex int    `json:"stage_index"`
	ActorID    string `json:"actor_id"`
	ActorRole  string `json:"actor_role"`
	Action     string `json:"action"`
	Comment    string `json:"comment,omitempty"`
	Timestamp  string `json:"timestamp"`
	PrevHash   string `json:"prev_hash"`
	Hash       string `json:"hash"`
}

type TrailResponse struct {
	RequestID   string          `json:"request_id"`
	Events      []EventResponse `json:"events"`
	ChainValid  bool            `json:"chain_valid"`
	ReplayValid bool            `json:"replay_valid"`
	Problem     string          `json:"problem,omitempty"`
}
