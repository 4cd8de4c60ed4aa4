package probation

type WindowQuery struct {
	StartDate string `form:"start_date" json:"start_date" binding:"required"`
	TotalDays *int   `form:"total_days" json:"total_days" binding:"required"`
}

type WindowResponse struct {
	StartDate          string `json:"start_date"`
	EndDate            string `json:"end_date"`
	TotalProbationDays int    `json:"total_probation_days"`
	DaysCompleted      int    `json:"days_completed"`
	DaysRemaining      int    `json:"days_remaining"`
	ProgressPercent    int    `json:"progress_percent"`
	UrgencyLevel       string `json:"urgency_level"`
}

type EmployeeWindowResponse struct {
	EmployeeID   string `json:"employee_id"`
	CompanyID    string `json:"company_id"`
	EmployeeName string `json:"employee_name"`
	ManagerID    string `json:"manager_id,omitempty"`
	ContractType string `json:"contract_type"`
	WindowResponse
}
