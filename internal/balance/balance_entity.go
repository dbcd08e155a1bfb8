package balance

import "time"

// LeaveBalance is the per (employee, kind) allocation record. Only
// balance-bearing leave types carry one; kind is the bucket name from
// leavetype.BalanceKind.
type LeaveBalance struct {
	ID         uint   `gorm:"primaryKey"`
	EmployeeID uint   `gorm:"not null;uniqueIndex:uq_leave_balances_employee_kind"`
	Kind       string `gorm:"type:varchar(20);not null;uniqueIndex:uq_leave_balances_employee_kind"`

	Allocated int `gorm:"not null;default:0"`
	Used      int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
