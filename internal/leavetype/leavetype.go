package leavetype

import "fmt"

// LeaveType is the closed set of request categories. Policy lookups below
// switch exhaustively over it so a new type fails loudly until every policy
// site is revisited.
type LeaveType string

const (
	Annual             LeaveType = "ANNUAL"
	Casual             LeaveType = "CASUAL"
	Permission         LeaveType = "PERMISSION"
	Unpaid             LeaveType = "UNPAID"
	ExternalAssignment LeaveType = "EXTERNAL_ASSIGNMENT"
	WorkFromHome       LeaveType = "WORK_FROM_HOME"
)

func All() []LeaveType {
	return []LeaveType{Annual, Casual, Permission, Unpaid, ExternalAssignment, WorkFromHome}
}

func Parse(v string) (LeaveType, error) {
	switch LeaveType(v) {
	case Annual, Casual, Permission, Unpaid, ExternalAssignment, WorkFromHome:
		return LeaveType(v), nil
	default:
		return "", fmt.Errorf("unknown leave type: %s", v)
	}
}

// TimeBound reports whether the type carries a start/end time-of-day and is
// restricted to a single calendar day.
func (t LeaveType) TimeBound() bool {
	switch t {
	case Permission, ExternalAssignment:
		return true
	case Annual, Casual, Unpaid, WorkFromHome:
		return false
	}
	return false
}

// RequiresBalance reports whether approvals of this type consume a finite
// per-user allocation.
func (t LeaveType) RequiresBalance() bool {
	switch t {
	case Annual, Casual, Permission:
		return true
	case Unpaid, ExternalAssignment, WorkFromHome:
		return false
	}
	return false
}

// BalanceKind maps the type to its balance bucket. ok is false for types that
// do not carry a balance record.
func (t LeaveType) BalanceKind() (string, bool) {
	switch t {
	case Annual:
		return "annual", true
	case Casual:
		return "casual", true
	case Permission:
		return "permission", true
	case Unpaid, ExternalAssignment, WorkFromHome:
		return "", false
	}
	return "", false
}
