package authz

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrSelfApproval = apperror.New(
		apperror.CodeForbidden,
		"you cannot review your own leave request",
		http.StatusForbidden,
	)
	ErrNotReviewer = apperror.New(
		apperror.CodeForbidden,
		"you are not a reviewer for this request's department",
		http.StatusForbidden,
	)
	ErrNotVisible = apperror.New(
		apperror.CodeForbidden,
		"you do not have access to this leave request",
		http.StatusForbidden,
	)
)
