package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")

	ErrActivityNotFound      = errors.New("activity not found")
	ErrFormNotFound          = errors.New("form not found")
	ErrFormDraftNotFound     = errors.New("form draft not found")
	ErrWorkflowDraftNotFound = errors.New("workflow draft not found")

	ErrInvalidSubMastermind = errors.New("invalid sub mastermind id")
	ErrInvalidUserRef       = errors.New("invalid user id")
	ErrInvalidWorkflow      = errors.New("invalid workflow")

	ErrInvalidTenant = errors.New("invalid tenant")

	ErrStateInvalid         = errors.New("state invalid")
	ErrUnknownStepType      = errors.New("unknown step type")
	ErrUnknownStep          = errors.New("unknown step")
	ErrDraftPublished       = errors.New("draft is already published")
	ErrSlugOccupied         = errors.New("slug is occupied")
	ErrInvalidPassword      = errors.New("invalid password")
	ErrActivityNotCommittable = errors.New("activity is not committable")
	ErrStepNotAdvanceable   = errors.New("step is not advanceable")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
