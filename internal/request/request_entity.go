package request

import (
	"time"

	"go-leave/internal/leavetype"
	"go-leave/internal/workflow"

	"gorm.io/gorm"
)

type LeaveRequest struct {
	ID         uint `gorm:"primaryKey"`
	EmployeeID uint `gorm:"not null;index:idx_leave_requests_employee_dates"`

	// Department is captured from the owner's token at submission time so
	// later transfers do not reshuffle who may review the request.
	Department string `gorm:"type:varchar(100);not null"`

	LeaveType leavetype.LeaveType `gorm:"type:varchar(30);not null"`

	StartDate time.Time  `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate   *time.Time `gorm:"type:date;index:idx_leave_requests_employee_dates"` // nil means single-day
	StartTime *string    `gorm:"type:varchar(5)"`                                   // HH:MM, time-bound types only
	EndTime   *string    `gorm:"type:varchar(5)"`

	NumberOfDays int    `gorm:"not null;default:1"`
	Reason       string `gorm:"type:text"`

	ManagerStatus  workflow.Status `gorm:"type:varchar(20);not null;default:'PENDING'"`
	HRStatus       workflow.Status `gorm:"column:hr_status;type:varchar(20);not null;default:'PENDING'"`
	ManagerRemarks *string         `gorm:"type:text"`
	HRRemarks      *string         `gorm:"column:hr_remarks;type:text"`

	// Version backs optimistic concurrency: a save only lands if the row
	// still carries the version the caller read.
	Version int `gorm:"not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_leave_requests_deleted_at"`
}

// Snapshot projects the entity into the view the authorization resolver and
// stage machine operate on.
func (l *LeaveRequest) Snapshot() workflow.Snapshot {
	return workflow.Snapshot{
		OwnerID:       l.EmployeeID,
		Department:    l.Department,
		ManagerStatus: l.ManagerStatus,
		HRStatus:      l.HRStatus,
	}
}

// EffectiveEndDate resolves the optional end date: absent means the request
// covers the start date only.
func (l *LeaveRequest) EffectiveEndDate() time.Time {
	if l.EndDate != nil {
		return *l.EndDate
	}
	return l.StartDate
}
