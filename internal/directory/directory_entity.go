package directory

import (
	"time"

	"github.com/google/uuid"
)

const (
	EmploymentStatusProbation  = "PROBATION"
	EmploymentStatusActive     = "ACTIVE"
	EmploymentStatusTerminated = "TERMINATED"
)

type Employee struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID  `gorm:"type:uuid;index"`
	ManagerID *uuid.UUID `gorm:"type:uuid;index"`

	FullName string
	Email    string `gorm:"uniqueIndex"`

	// ISO country code the employee is employed under, e.g. UK.
	Jurisdiction     string    `gorm:"type:varchar(8)"`
	ContractType     string    `gorm:"type:varchar(20)"`
	HireDate         time.Time `gorm:"type:date"`
	EmploymentStatus string    `gorm:"type:varchar(20);index"`
	NoticePeriodDays int       `gorm:"not null;default:30"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Employee) TableName() string { return "employees" }

func (e Employee) ManagerIDString() string {
	if e.ManagerID == nil {
		return ""
	}
	return e.ManagerID.String()
}
