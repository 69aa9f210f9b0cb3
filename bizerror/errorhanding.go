package bizerror

import (
	"activityflow/misc"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &misc.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body).
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	// bad request: json syntax error
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	// validation failed
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	if errors.Is(genericErr, ErrUnauthenticated) {
		c.JSON(http.StatusUnauthorized, &misc.ErrorBody{Code: "common.unauthenticated", Message: "unauthenticated"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrForbidden) {
		c.JSON(http.StatusForbidden, &misc.ErrorBody{Code: "security.forbidden", Message: "access forbidden"})
		c.Abort()
		return
	}

	if errors.Is(genericErr, ErrActivityNotFound) {
		c.JSON(http.StatusNotFound, &misc.ErrorBody{Code: "activity.not_found", Message: "Activity not found"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrFormNotFound) {
		c.JSON(http.StatusNotFound, &misc.ErrorBody{Code: "form.not_found", Message: "Form not found"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrFormDraftNotFound) {
		c.JSON(http.StatusNotFound, &misc.ErrorBody{Code: "form_draft.not_found", Message: "FormDraft not found"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrWorkflowDraftNotFound) {
		c.JSON(http.StatusNotFound, &misc.ErrorBody{Code: "workflow_draft.not_found", Message: "WorkflowDraft not found"})
		c.Abort()
		return
	}

	if errors.Is(genericErr, ErrInvalidSubMastermind) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "activity.invalid_sub_mastermind", Message: "Invalid sub mastermind id"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrInvalidUserRef) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "activity.invalid_user", Message: "Invalid user id"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrInvalidWorkflow) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "activity.invalid_workflow", Message: "Invalid workflow"})
		c.Abort()
		return
	}

	if errors.Is(genericErr, ErrInvalidTenant) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.invalid_tenant", Message: "invalid tenant"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrStateInvalid) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "activity.state_invalid", Message: "state transition is not allowed"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrActivityNotCommittable) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "activity.not_committable", Message: "activity is not committable"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrStepNotAdvanceable) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "activity.step_not_advanceable", Message: "step is not advanceable"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrUnknownStepType) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "workflow_draft.unknown_step_type", Message: "unknown step type"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrUnknownStep) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "workflow_draft.unknown_step", Message: "unknown step"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrDraftPublished) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "draft.already_published", Message: "draft is already published"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrSlugOccupied) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "form.slug_occupied", Message: "slug is occupied"})
		c.Abort()
		return
	}

	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, ErrNotFound) {
		c.JSON(http.StatusNotFound, &misc.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(http.StatusInternalServerError, &misc.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
