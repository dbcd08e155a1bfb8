package authz

import (
	"go-leave/internal/department"
	"go-leave/internal/workflow"
)

// Actor is the already-resolved caller identity: role flags plus the
// department string from the token. The resolver never fetches anything,
// every decision is a pure function of (snapshot, actor).
type Actor struct {
	ID         uint
	IsAdmin    bool
	IsManager  bool
	IsHR       bool
	Department string
}

// CanView allows admins and HR everywhere, owners on their own requests, and
// managers on requests filed under a matching department.
func CanView(s workflow.Snapshot, a Actor) bool {
	if a.IsAdmin || a.IsHR {
		return true
	}
	if s.OwnerID == a.ID {
		return true
	}
	return a.IsManager && department.CanAccess(a.Department, s.Department)
}

// CanApproveOrReject decides whether the actor may record a decision on the
// stage it represents. Owners never approve their own requests, regardless of
// role flags.
func CanApproveOrReject(s workflow.Snapshot, a Actor) bool {
	if s.OwnerID == a.ID {
		return false
	}

	stage, ok := workflow.ResolveStage(s, a.IsHR)
	if !ok || !workflow.StageActionable(s, stage) {
		return false
	}

	if a.IsAdmin || a.IsHR {
		return true
	}
	return a.IsManager && department.CanAccess(a.Department, s.Department)
}

// CanEdit allows admins unconditionally, and owners only while neither stage
// has acted.
func CanEdit(s workflow.Snapshot, a Actor) bool {
	if a.IsAdmin {
		return true
	}
	return s.OwnerID == a.ID && s.Untouched()
}

// CanDelete mirrors CanEdit.
func CanDelete(s workflow.Snapshot, a Actor) bool {
	return CanEdit(s, a)
}

// CanManageRequests is the coarse capability gate for listing and filtering
// other users' requests.
func CanManageRequests(a Actor) bool {
	return a.IsAdmin || a.IsManager || a.IsHR
}
