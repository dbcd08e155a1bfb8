package request

type CreateLeaveRequest struct {
	LeaveType string  `json:"leave_type" binding:"required,oneof=ANNUAL CASUAL PERMISSION UNPAID EXTERNAL_ASSIGNMENT WORK_FROM_HOME"`
	StartDate string  `json:"start_date" binding:"required"`
	EndDate   *string `json:"end_date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Reason    string  `json:"reason"`
}

type UpdateLeaveRequest struct {
	LeaveType string  `json:"leave_type" binding:"required,oneof=ANNUAL CASUAL PERMISSION UNPAID EXTERNAL_ASSIGNMENT WORK_FROM_HOME"`
	StartDate string  `json:"start_date" binding:"required"`
	EndDate   *string `json:"end_date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Reason    string  `json:"reason"`
}

type ApproveLeaveRequest struct {
	Remarks string `json:"remarks"`
}

type RejectLeaveRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
}

type LeaveRequestResponse struct {
	ID             uint    `json:"id"`
	EmployeeID     uint    `json:"employee_id"`
	Department     string  `json:"department"`
	LeaveType      string  `json:"leave_type"`
	StartDate      string  `json:"start_date"`
	EndDate        *string `json:"end_date,omitempty"`
	StartTime      *string `json:"start_time,omitempty"`
	EndTime        *string `json:"end_time,omitempty"`
	NumberOfDays   int     `json:"number_of_days"`
	Reason         string  `json:"reason"`
	ManagerStatus  string  `json:"manager_status"`
	HRStatus       string  `json:"hr_status"`
	ManagerRemarks *string `json:"manager_remarks,omitempty"`
	HRRemarks      *string `json:"hr_remarks,omitempty"`
}
