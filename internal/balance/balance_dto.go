package balance

type AllocateBalanceRequest struct {
	EmployeeID uint   `json:"employee_id" binding:"required"`
	Kind       string `json:"kind" binding:"required,oneof=annual casual permission"`
	Allocated  int    `json:"allocated" binding:"required,gt=0"`
}

type BalanceResponse struct {
	EmployeeID uint   `json:"employee_id"`
	Kind       string `json:"kind"`
	Allocated  int    `json:"allocated"`
	Used       int    `json:"used"`
	Remaining  int    `json:"remaining"`
}
