package requesterrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrInvalidLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave type",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrFieldValidation = apperror.New(
		apperror.CodeValidation,
		"leave request fields are invalid",
		http.StatusBadRequest,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrRequestConflict = apperror.New(
		apperror.CodeConflict,
		"an active leave request already covers an overlapping period",
		http.StatusConflict,
	)
	ErrRequestLocked = apperror.New(
		apperror.CodeInvalidState,
		"leave request can no longer be changed once a reviewer has acted",
		http.StatusBadRequest,
	)
	ErrStageAlreadyDecided = apperror.New(
		apperror.CodeInvalidState,
		"this approval stage has already been decided",
		http.StatusBadRequest,
	)
	ErrWorkflowTerminated = apperror.New(
		apperror.CodeInvalidState,
		"leave request workflow has already ended",
		http.StatusBadRequest,
	)
	ErrManagerApprovalRequired = apperror.New(
		apperror.CodeInvalidState,
		"HR can only act after the line manager has approved",
		http.StatusBadRequest,
	)
	ErrStaleRequest = apperror.New(
		apperror.CodeConflict,
		"leave request was modified concurrently, reload and retry",
		http.StatusConflict,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection_reason is required when rejecting",
		http.StatusBadRequest,
	)
)
