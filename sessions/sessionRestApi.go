package sessions

import (
	"net/http"
	"time"

	"activityflow/bizerror"
	"activityflow/session"

	"github.com/gin-gonic/gin"
)

func RegisterSessionHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/session", middleWares...)
	g.GET("", DetailSessionSecurityContext)
}

// DetailSessionSecurityContext returns the caller's session and slides
// its expiration window.
func DetailSessionSecurityContext(c *gin.Context) {
	sec := session.ExtractSessionFromGinContext(c)
	if sec.Token == "" {
		panic(bizerror.ErrUnauthenticated)
	}

	now := time.Now()
	ttl := session.TokenExpiration - now.Sub(sec.SigningTime)
	if ttl <= 0 {
		panic(bizerror.ErrUnauthenticated)
	}

	refreshed := sec.Clone()
	refreshed.SigningTime = now
	session.TokenCache.Set(sec.Token, &refreshed, ttl)
	c.JSON(http.StatusOK, &refreshed)
}
