package servehttp_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"activityflow/bizerror"
	"activityflow/domain"
	"activityflow/domain/activity"
	"activityflow/servehttp"
	"activityflow/session"
	"activityflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func buildActivityRouter() *gin.Engine {
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	servehttp.RegisterActivitiesHandler(router)
	return router
}

func TestHandleCommitActivity(t *testing.T) {
	RegisterTestingT(t)
	router := buildActivityRouter()

	t.Run("should commit an activity", func(t *testing.T) {
		var gotId types.ID
		var gotCommit *activity.ActivityCommit
		activity.CommitActivityFunc = func(id types.ID, c *activity.ActivityCommit, s *session.Session) (*domain.ActivityDetail, error) {
			gotId, gotCommit = id, c
			return &domain.ActivityDetail{
				Activity: domain.Activity{ID: id, Name: "field trip", Protocol: "2026/000001",
					State: domain.ActivityStateProcessing, Status: "under review"},
				Users:          []domain.UserBrief{{ID: 30, Name: "carl", Email: "carl@test.edu"}},
				Masterminds:    []domain.MastermindBrief{},
				SubMasterminds: []domain.MastermindBrief{},
				Form:           domain.FormBrief{ID: 7, Name: "Field Trips", Slug: "field-trips"},
				Workflows:      []domain.ActivityWorkflowDetail{},
			}, nil
		}

		payload := bytes.NewBufferString(`{
			"users": ["30"],
			"subMasterminds": [{"name":"dora","email":"dora@other.edu"}]
		}`)
		req := httptest.NewRequest(http.MethodPut, "/v1/activity-committed/123", payload)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(gotId).To(Equal(types.ID(123)))
		Expect(gotCommit.Users).To(Equal([]types.ID{30}))
		Expect(gotCommit.SubMasterminds).To(Equal([]activity.SubMastermindRef{{Name: "dora", Email: "dora@other.edu"}}))
		Expect(body).To(MatchJSON(`{
			"id":"123","name":"field trip","description":"","protocol":"2026/000001",
			"formId":"0","formDraftId":"0","state":"processing","status":"under review","createTime":null,
			"users":[{"id":"30","name":"carl","email":"carl@test.edu","matriculation":""}],
			"masterminds":[],"subMasterminds":[],
			"form":{"id":"7","name":"Field Trips","slug":"field-trips"},
			"workflows":[]
		}`))
	})

	t.Run("should reject committing an activity twice", func(t *testing.T) {
		activity.CommitActivityFunc = func(id types.ID, c *activity.ActivityCommit, s *session.Session) (*domain.ActivityDetail, error) {
			return nil, bizerror.ErrActivityNotCommittable
		}

		req := httptest.NewRequest(http.MethodPut, "/v1/activity-committed/123",
			bytes.NewBufferString(`{"users":[]}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"activity.not_committable","message":"activity is not committable","data":null}`))
	})

	t.Run("should return 400 on an invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/v1/activity-committed/abc",
			bytes.NewBufferString(`{"users":[]}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("should return 404 when the activity is missing", func(t *testing.T) {
		activity.CommitActivityFunc = func(id types.ID, c *activity.ActivityCommit, s *session.Session) (*domain.ActivityDetail, error) {
			return nil, bizerror.ErrActivityNotFound
		}

		req := httptest.NewRequest(http.MethodPut, "/v1/activity-committed/999",
			bytes.NewBufferString(`{"users":[]}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"code":"activity.not_found","message":"Activity not found","data":null}`))
	})
}

func TestHandleAdvanceStep(t *testing.T) {
	RegisterTestingT(t)
	router := buildActivityRouter()

	t.Run("should pass the branch decision through", func(t *testing.T) {
		var gotAdvance *activity.StepAdvance
		activity.AdvanceActivityStepFunc = func(id types.ID, c *activity.StepAdvance, s *session.Session) (*domain.ActivityDetail, error) {
			gotAdvance = c
			return &domain.ActivityDetail{Activity: domain.Activity{ID: id, State: domain.ActivityStateProcessing},
				Users: []domain.UserBrief{}, Masterminds: []domain.MastermindBrief{},
				SubMasterminds: []domain.MastermindBrief{}, Workflows: []domain.ActivityWorkflowDetail{}}, nil
		}

		req := httptest.NewRequest(http.MethodPut, "/v1/activities/55/step-advanced",
			bytes.NewBufferString(`{"decision":"alternate"}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(gotAdvance.Decision).To(Equal("alternate"))
	})

	t.Run("should reject an unknown decision", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/v1/activities/55/step-advanced",
			bytes.NewBufferString(`{"decision":"sideways"}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})
}

func TestHandleQueryMyPendingActivities(t *testing.T) {
	RegisterTestingT(t)
	router := buildActivityRouter()

	t.Run("should return the pending page", func(t *testing.T) {
		activity.QueryMyPendingActivitiesFunc = func(q *domain.ActivityQuery, s *session.Session) (*activity.ActivityList, error) {
			Expect(q.Page).To(Equal(2))
			return &activity.ActivityList{
				Activities: []domain.ActivityDetail{},
				Pagination: domain.Pagination{Page: 2, Total: 0, TotalPages: 0, Count: 0},
			}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/v1/my-pending-activities?page=2", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"activities":[],"pagination":{"page":2,"total":0,"totalPages":0,"count":0}}`))
	})
}

func TestHandleRespondMastermind(t *testing.T) {
	RegisterTestingT(t)
	router := buildActivityRouter()

	t.Run("should record the response", func(t *testing.T) {
		var gotResponse *activity.MastermindResponse
		activity.RespondMastermindFunc = func(id types.ID, c *activity.MastermindResponse, s *session.Session) (*domain.ActivityDetail, error) {
			gotResponse = c
			return &domain.ActivityDetail{Activity: domain.Activity{ID: id},
				Users: []domain.UserBrief{}, Masterminds: []domain.MastermindBrief{},
				SubMasterminds: []domain.MastermindBrief{}, Workflows: []domain.ActivityWorkflowDetail{}}, nil
		}

		req := httptest.NewRequest(http.MethodPut, "/v1/activities/77/mastermind-response",
			bytes.NewBufferString(`{"accepted":"rejected"}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(gotResponse.Accepted).To(Equal("rejected"))
	})

	t.Run("should reject responses other than accepted or rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/v1/activities/77/mastermind-response",
			bytes.NewBufferString(`{"accepted":"maybe"}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})
}
