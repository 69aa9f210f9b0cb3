package servehttp

import (
	"net/http"

	"activityflow/bizerror"
	"activityflow/domain"
	"activityflow/domain/activity"
	"activityflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterActivitiesHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	handler := &activityHandler{validator: validator.New()}

	g := r.Group("/v1/activities", middleWares...)
	g.POST("", handler.handleCreateActivity)
	g.GET(":id", handler.handleDetailActivity)
	g.PUT(":id/mastermind-response", handler.handleRespondMastermind)
	g.PUT(":id/step-advanced", handler.handleAdvanceStep)

	// committing is a state transition, modeled as its own resource
	committed := r.Group("/v1/activity-committed", middleWares...)
	committed.PUT(":id", handler.handleCommitActivity)

	dashboards := r.Group("/v1", middleWares...)
	dashboards.GET("my-activities", handler.handleQueryMyActivities)
	dashboards.GET("my-pending-activities", handler.handleQueryMyPendingActivities)
}

type activityHandler struct {
	validator *validator.Validate
}

func (h *activityHandler) handleCreateActivity(c *gin.Context) {
	creation := activity.ActivityCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := activity.CreateActivityFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *activityHandler) handleDetailActivity(c *gin.Context) {
	id, ok := bindPathID(c)
	if !ok {
		return
	}

	detail, err := activity.DetailActivityFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *activityHandler) handleCommitActivity(c *gin.Context) {
	id, ok := bindPathID(c)
	if !ok {
		return
	}

	commit := activity.ActivityCommit{}
	if err := c.ShouldBindBodyWith(&commit, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(commit); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := activity.CommitActivityFunc(id, &commit, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *activityHandler) handleRespondMastermind(c *gin.Context) {
	id, ok := bindPathID(c)
	if !ok {
		return
	}

	response := activity.MastermindResponse{}
	if err := c.ShouldBindBodyWith(&response, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(response); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := activity.RespondMastermindFunc(id, &response, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *activityHandler) handleAdvanceStep(c *gin.Context) {
	id, ok := bindPathID(c)
	if !ok {
		return
	}

	advance := activity.StepAdvance{}
	if err := c.ShouldBindBodyWith(&advance, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(advance); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := activity.AdvanceActivityStepFunc(id, &advance, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *activityHandler) handleQueryMyActivities(c *gin.Context) {
	query := domain.ActivityQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	list, err := activity.QueryMyActivitiesFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *activityHandler) handleQueryMyPendingActivities(c *gin.Context) {
	query := domain.ActivityQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	list, err := activity.QueryMyPendingActivitiesFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, list)
}
