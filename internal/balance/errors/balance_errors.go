package balanceerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"no leave balance allocated for this leave type",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance to approve this request",
		http.StatusUnprocessableEntity,
	)
	ErrBalanceAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"a balance for this employee and leave type already exists",
		http.StatusConflict,
	)
	ErrInvalidAllocation = apperror.New(
		apperror.CodeInvalidInput,
		"allocated days must not be below the amount already used",
		http.StatusBadRequest,
	)
)
