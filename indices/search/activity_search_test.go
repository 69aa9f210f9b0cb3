package search_test

import (
	"encoding/json"
	"errors"
	"testing"

	"activityflow/client/es"
	"activityflow/domain"
	"activityflow/indices"
	"activityflow/indices/search"
	"activityflow/session"
	"activityflow/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestSearchActivities(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should scope queries to the caller's tenant", func(t *testing.T) {
		var gotIndex string
		var gotQuery interface{}
		es.SearchFunc = func(index string, query interface{}, s *session.Session) (*es.ESSearchResult, error) {
			gotIndex, gotQuery = index, query

			doc := indices.ActivityDocument{
				ActivityDetail: domain.ActivityDetail{
					Activity: domain.Activity{ID: 123, Name: "field trip", State: domain.ActivityStateProcessing},
				},
				Tenant: "fmfi",
			}
			raw, err := json.Marshal(doc)
			Expect(err).To(BeNil())
			return &es.ESSearchResult{Hits: es.ESSearchHits{
				Total: es.ESSearchHitsTotal{Value: 1},
				Hits:  []es.ESSearchHit{{Id: "123", Source: es.Source(raw)}},
			}}, nil
		}

		s := testinfra.BuildSecCtx(444)
		s.Tenant = "fmfi"
		docs, err := search.SearchActivities(search.ActivitySearch{Name: "trip", States: []string{"processing"}, Mine: true}, s)
		Expect(err).To(BeNil())
		Expect(gotIndex).To(Equal(indices.ActivityIndexName))
		Expect(docs).To(HaveLen(1))
		Expect(docs[0].ID).To(Equal(types.ID(123)))
		Expect(docs[0].Tenant).To(Equal("fmfi"))

		queryJSON, err := json.Marshal(gotQuery)
		Expect(err).To(BeNil())
		Expect(string(queryJSON)).To(ContainSubstring(`"tenant":"fmfi"`))
		Expect(string(queryJSON)).To(ContainSubstring(`"state":["processing"]`))
		Expect(string(queryJSON)).To(ContainSubstring(`"users.id":"444"`))
	})

	t.Run("should propagate search errors", func(t *testing.T) {
		es.SearchFunc = func(index string, query interface{}, s *session.Session) (*es.ESSearchResult, error) {
			return nil, errors.New("search unavailable")
		}

		_, err := search.SearchActivities(search.ActivitySearch{}, testinfra.BuildSecCtx(444))
		Expect(err).ToNot(BeNil())
	})
}
