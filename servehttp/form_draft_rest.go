package servehttp

import (
	"net/http"

	"activityflow/bizerror"
	"activityflow/domain/formdraft"
	"activityflow/misc"
	"activityflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterFormDraftsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	handler := &formDraftHandler{validator: validator.New()}

	forms := r.Group("/v1/forms", middleWares...)
	forms.GET(":id/drafts", handler.handleQueryFormDrafts)
	forms.POST(":id/drafts", handler.handleCreateFormDraft)

	drafts := r.Group("/v1/form-drafts", middleWares...)
	drafts.GET(":id", handler.handleDetailFormDraft)
	drafts.PUT(":id/published", handler.handlePublishFormDraft)
}

type formDraftHandler struct {
	validator *validator.Validate
}

func bindPathID(c *gin.Context) (types.ID, bool) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return 0, false
	}
	return id, true
}

func (h *formDraftHandler) handleQueryFormDrafts(c *gin.Context) {
	id, ok := bindPathID(c)
	if !ok {
		return
	}

	drafts, err := formdraft.QueryFormDraftsFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, drafts)
}

func (h *formDraftHandler) handleCreateFormDraft(c *gin.Context) {
	id, ok := bindPathID(c)
	if !ok {
		return
	}

	creation := formdraft.FormDraftCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	draft, err := formdraft.CreateFormDraftFunc(id, &creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, draft)
}

func (h *formDraftHandler) handleDetailFormDraft(c *gin.Context) {
	id, ok := bindPathID(c)
	if !ok {
		return
	}

	draft, err := formdraft.DetailFormDraftFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *formDraftHandler) handlePublishFormDraft(c *gin.Context) {
	id, ok := bindPathID(c)
	if !ok {
		return
	}

	draft, err := formdraft.PublishFormDraftFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, draft)
}
