package sessions

import (
	"net/http"
	"time"

	"activityflow/account"
	"activityflow/bizerror"
	"activityflow/misc"
	"activityflow/persistence"
	"activityflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
)

func RegisterSessionsHandler(r *gin.Engine) {
	g := r.Group("/v1/sessions")
	g.POST("", SimpleLoginHandler)
	g.DELETE("", SimpleLogoutHandler)
}

func SimpleLogoutHandler(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.AbortWithStatus(http.StatusNoContent)
}

func SimpleLoginHandler(c *gin.Context) {
	login := session.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "common.bad_param", Message: err.Error()})
		return
	}

	tenant := session.TenantOfRequest(c)
	db, err := persistence.ActiveDataSourceManager.GormDB(c.Request.Context(), tenant)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	user := account.User{}
	if err := db.Where(&account.User{Email: login.Email, Secret: account.HashSha256(login.Password)}).
		First(&user).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			panic(bizerror.ErrUnauthenticated)
		}
		c.JSON(http.StatusInternalServerError, &misc.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
		return
	}
	if !user.Active {
		panic(bizerror.ErrUnauthenticated)
	}

	token := uuid.New().String()
	securityContext := session.Session{
		Token:       token,
		Identity:    session.Identity{ID: user.ID, Name: user.Name, Email: user.Email},
		Perms:       account.PermsOfRole(user.Role),
		Tenant:      tenant,
		SigningTime: time.Now(),
	}
	session.TokenCache.Set(token, &securityContext, cache.DefaultExpiration)

	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusOK, &securityContext)
}
