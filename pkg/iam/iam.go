package iam

import (
	"net/http"

	"github.com/mlinyun/Peekpa/pkg/errx"
)

// ============================================================================
// Error Registry - errores transversales de identidad y acceso
// ============================================================================

var ErrRegistry = errx.NewRegistry("IAM")

var (
	CodeUnauthorized   = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthentication, http.StatusUnauthorized, "Authentication required")
	CodeStaffOnly      = ErrRegistry.Register("STAFF_ONLY", errx.TypeAuthorization, http.StatusForbidden, "Only company staff can perform this action")
	CodeManagerOnly    = ErrRegistry.Register("MANAGER_ONLY", errx.TypeAuthorization, http.StatusForbidden, "Only company managers can perform this action")
	CodeSuperuserOnly  = ErrRegistry.Register("SUPERUSER_ONLY", errx.TypeAuthorization, http.StatusForbidden, "Only superusers can perform this action")
	CodeNotImplemented = ErrRegistry.Register("NOT_IMPLEMENTED", errx.TypeUnsupported, http.StatusNotImplemented, "Full replacement is not supported, use PATCH")
	CodeInvalidID      = ErrRegistry.Register("INVALID_ID", errx.TypeValidation, http.StatusBadRequest, "Invalid identifier")
	CodeInvalidBody    = ErrRegistry.Register("INVALID_BODY", errx.TypeValidation, http.StatusBadRequest, "Invalid request body")
)

func ErrUnauthorized() *errx.Error {
	return ErrRegistry.New(CodeUnauthorized)
}

func ErrStaffOnly() *errx.Error {
	return ErrRegistry.New(CodeStaffOnly)
}

func ErrManagerOnly() *errx.Error {
	return ErrRegistry.New(CodeManagerOnly)
}

func ErrSuperuserOnly() *errx.Error {
	return ErrRegistry.New(CodeSuperuserOnly)
}

func ErrNotImplemented() *errx.Error {
	return ErrRegistry.New(CodeNotImplemented)
}

func ErrInvalidID(param string) *errx.Error {
	return ErrRegistry.New(CodeInvalidID).WithDetail("param", param)
}

func ErrInvalidBody() *errx.Error {
	return ErrRegistry.New(CodeInvalidBody)
}
