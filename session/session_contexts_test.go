package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"activityflow/authority"
	"activityflow/bizerror"
	"activityflow/session"
	"activityflow/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/patrickmn/go-cache"
)

func TestTenantOfRequest(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	var gotTenant string
	router.GET("/probe", func(c *gin.Context) {
		gotTenant = session.TenantOfRequest(c)
		c.Status(http.StatusOK)
	})

	t.Run("should read the tenant header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(session.TenantHeader, "fmfi")
		testinfra.ExecuteRequest(req, router)
		Expect(gotTenant).To(Equal("fmfi"))
	})

	t.Run("should fall back to the default tenant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		testinfra.ExecuteRequest(req, router)
		Expect(gotTenant).To(Equal(session.DefaultTenant))
	})
}

func TestExtractSessionFromGinContext(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should build an anonymous session of the request tenant", func(t *testing.T) {
		router := gin.Default()
		var got *session.Session
		router.GET("/probe", func(c *gin.Context) {
			got = session.ExtractSessionFromGinContext(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(session.TenantHeader, "fmfi")
		testinfra.ExecuteRequest(req, router)
		Expect(got.Token).To(BeEmpty())
		Expect(got.Tenant).To(Equal("fmfi"))
		Expect(got.Context).ToNot(BeNil())
	})

	t.Run("should clone the saved session and attach the request context", func(t *testing.T) {
		router := gin.Default()
		var got *session.Session
		router.GET("/probe", func(c *gin.Context) {
			session.SaveSecurityContext(c, &session.Session{Token: "t1",
				Identity: session.Identity{ID: 1, Name: "ann"},
				Perms:    authority.Permissions{"system.admin"}, Tenant: "fmfi"})
			got = session.ExtractSessionFromGinContext(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		testinfra.ExecuteRequest(req, router)
		Expect(got.Token).To(Equal("t1"))
		Expect(got.Identity.Name).To(Equal("ann"))
		Expect(got.Tenant).To(Equal("fmfi"))
		Expect(got.Context).ToNot(BeNil())
	})
}

func TestSimpleAuthFilter(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	router.GET("/secured", session.SimpleAuthFilter(), func(c *gin.Context) {
		c.JSON(http.StatusOK, session.ExtractSessionFromGinContext(c))
	})

	t.Run("should pass requests carrying a cached token", func(t *testing.T) {
		session.TokenCache.Set("good-token", &session.Session{Token: "good-token",
			Identity: session.Identity{ID: 2, Name: "bob"}, Tenant: "global"}, cache.DefaultExpiration)

		req := httptest.NewRequest(http.MethodGet, "/secured", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "good-token"})
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
	})

	t.Run("should reject requests without a cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/secured", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code":"common.unauthenticated","message":"unauthenticated","data":null}`))
	})

	t.Run("should reject unknown tokens", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/secured", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "stale-token"})
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})
}
