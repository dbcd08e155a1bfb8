package workflow

// Status is the per-stage state of a leave request. Manager and HR tracks
// carry one each, independently.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Stage identifies which approval track an actor operates on.
type Stage string

const (
	StageManager Stage = "MANAGER"
	StageHR      Stage = "HR"
)

// Snapshot is the minimal request view the authorization and stage logic
// needs. The request module projects its entity into this before asking for a
// decision, which keeps both sides free of persistence concerns.
type Snapshot struct {
	OwnerID       uint
	Department    string
	ManagerStatus Status
	HRStatus      Status
}

// FullyApproved reports whether both tracks have approved.
func (s Snapshot) FullyApproved() bool {
	return s.ManagerStatus == StatusApproved && s.HRStatus == StatusApproved
}

// Terminal reports whether the workflow has ended. Rejection at either stage
// ends it; so does full approval.
func (s Snapshot) Terminal() bool {
	return s.ManagerStatus == StatusRejected || s.HRStatus == StatusRejected || s.FullyApproved()
}

// Untouched reports whether neither track has acted yet. Owners may edit or
// delete only in this state.
func (s Snapshot) Untouched() bool {
	return s.ManagerStatus == StatusPending && s.HRStatus == StatusPending
}

// StatusAt returns the status recorded on the given stage.
func (s Snapshot) StatusAt(stage Stage) Status {
	if stage == StageHR {
		return s.HRStatus
	}
	return s.ManagerStatus
}

// ResolveStage determines which track an actor's decision lands on. HR users
// always act on the HR track. Everyone else acts on the manager track, except
// once the manager track is approved only HR may still act.
func ResolveStage(s Snapshot, actorIsHR bool) (Stage, bool) {
	if actorIsHR {
		return StageHR, true
	}
	if s.ManagerStatus == StatusApproved {
		return "", false
	}
	return StageManager, true
}

// StageActionable reports whether a decision may land on the given stage:
// the stage itself must still be pending, the workflow must not already be
// terminal, and the HR track only opens after the manager track approved.
func StageActionable(s Snapshot, stage Stage) bool {
	if s.ManagerStatus == StatusRejected || s.HRStatus == StatusRejected {
		return false
	}
	if s.StatusAt(stage) != StatusPending {
		return false
	}
	if stage == StageHR && s.ManagerStatus != StatusApproved {
		return false
	}
	return true
}
