package institute

import (
	"net/http"

	"activityflow/bizerror"
	"activityflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterInstitutesHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/institutes", middleWares...)

	handler := &institutesHandler{validator: validator.New()}

	g.GET("", handler.handleQueryInstitutes)
	g.POST("", handler.handleCreateInstitute)
}

type institutesHandler struct {
	validator *validator.Validate
}

func (h *institutesHandler) handleQueryInstitutes(c *gin.Context) {
	query := InstituteQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	result, err := QueryInstitutesFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *institutesHandler) handleCreateInstitute(c *gin.Context) {
	creation := InstituteCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := CreateInstituteFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, record)
}
