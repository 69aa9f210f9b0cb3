package servehttp

import (
	"net/http"

	"activityflow/bizerror"
	"activityflow/domain"
	"activityflow/domain/form"
	"activityflow/misc"
	"activityflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterFormsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/forms", middleWares...)

	handler := &formHandler{validator: validator.New()}

	g.GET("", handler.handleQueryForms)
	g.POST("", handler.handleCreateForm)
	g.GET(":id", handler.handleDetailForm)
	g.PUT(":id", handler.handleUpdateForm)
}

// RegisterFormSlugHandler serves the public entry of a form, reachable
// without a session.
func RegisterFormSlugHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/form-by-slug", middleWares...)
	g.GET(":slug", handleResolveFormBySlug)
}

type formHandler struct {
	validator *validator.Validate
}

func (h *formHandler) handleQueryForms(c *gin.Context) {
	query := domain.FormQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	forms, err := form.QueryFormsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, forms)
}

func (h *formHandler) handleCreateForm(c *gin.Context) {
	creation := form.FormMutation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := form.CreateFormFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *formHandler) handleDetailForm(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	detail, err := form.DetailFormFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *formHandler) handleUpdateForm(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: "invalid id '" + c.Param("id") + "'"})
		return
	}

	updating := form.FormMutation{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(updating); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := form.UpdateFormFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, record)
}

func handleResolveFormBySlug(c *gin.Context) {
	detail, err := form.ResolveFormBySlugFunc(c.Param("slug"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, detail)
}
