package account

import (
	"net/http"

	"activityflow/bizerror"
	"activityflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterUsersHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/users", middleWares...)

	handler := &usersHandler{validator: validator.New()}

	g.GET("", handler.handleQueryUsers)
	g.POST("", handler.handleCreateUser)
}

type usersHandler struct {
	validator *validator.Validate
}

func (h *usersHandler) handleQueryUsers(c *gin.Context) {
	query := UserQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	result, err := QueryUsersFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *usersHandler) handleCreateUser(c *gin.Context) {
	creation := UserCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	user, err := CreateUserFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, user)
}
