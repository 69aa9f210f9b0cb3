package servehttp

import (
	"net/http"

	"activityflow/bizerror"
	"activityflow/domain/flowdraft"
	"activityflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterWorkflowDraftsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	handler := &workflowDraftHandler{validator: validator.New()}

	workflows := r.Group("/v1/workflows", middleWares...)
	workflows.GET(":id/drafts", handler.handleQueryWorkflowDrafts)
	workflows.POST(":id/drafts", handler.handleCreateWorkflowDraft)

	drafts := r.Group("/v1/workflow-drafts", middleWares...)
	drafts.GET(":id", handler.handleDetailWorkflowDraft)
	drafts.PUT(":id/published", handler.handlePublishWorkflowDraft)
}

type workflowDraftHandler struct {
	validator *validator.Validate
}

func (h *workflowDraftHandler) handleQueryWorkflowDrafts(c *gin.Context) {
	id, ok := bindPathID(c)
	if !ok {
		return
	}

	drafts, err := flowdraft.QueryWorkflowDraftsFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, drafts)
}

func (h *workflowDraftHandler) handleCreateWorkflowDraft(c *gin.Context) {
	id, ok := bindPathID(c)
	if !ok {
		return
	}

	creation := flowdraft.WorkflowDraftCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	draft, err := flowdraft.CreateWorkflowDraftFunc(id, &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, draft)
}

func (h *workflowDraftHandler) handleDetailWorkflowDraft(c *gin.Context) {
	id, ok := bindPathID(c)
	if !ok {
		return
	}

	draft, err := flowdraft.DetailWorkflowDraftFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *workflowDraftHandler) handlePublishWorkflowDraft(c *gin.Context) {
	id, ok := bindPathID(c)
	if !ok {
		return
	}

	draft, err := flowdraft.PublishWorkflowDraftFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, draft)
}
