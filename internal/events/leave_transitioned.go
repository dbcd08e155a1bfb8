package events

import "time"

const LeaveWorkflowTopic = "hr.leave.workflow.v1"

const (
	LeaveRequested = "leave.requested"
	LeaveApproved  = "leave.approved"
	LeaveRejected  = "leave.rejected"
)

// LeaveTransitionedEvent is the fire-and-forget notification emitted whenever
// a request changes workflow state. States are rendered as
// "<manager>/<hr>" pairs, e.g. "APPROVED/PENDING".
type LeaveTransitionedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  uint      `json:"request_id"`
	EmployeeID uint      `json:"employee_id"`
	ActorID    uint      `json:"actor_id"`
	OldState   string    `json:"old_state"`
	NewState   string    `json:"new_state"`
	OccurredAt time.Time `json:"occurred_at"`
}
