package testinfra

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"activityflow/authority"
	"activityflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx builds a test session of the default tenant.
func BuildSecCtx(uid types.ID, perms ...string) *session.Session {
	return &session.Session{
		Token:    "test-token",
		Identity: session.Identity{ID: uid, Name: "user-" + uid.String()},
		Perms:    authority.Permissions(perms),
		Tenant:   session.DefaultTenant,
		Context:  context.Background(),
	}
}

func ExecuteRequest(req *http.Request, engine *gin.Engine) (int, string, *httptest.ResponseRecorder) {
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	body, _ := ioutil.ReadAll(resp.Body)
	return resp.Code, string(body), resp
}
