package servehttp

import (
	"net/http"

	"activityflow/indices/search"
	"activityflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func RegisterSearchHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group("/v1/activity-searches", middleWares...)
	g.GET("", handleSearchActivities)
}

func handleSearchActivities(c *gin.Context) {
	query := search.ActivitySearch{}
	_ = c.MustBindWith(&query, binding.Query)

	docs, err := search.SearchActivitiesFunc(query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, docs)
}
