package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"activityflow/client/es"
	"activityflow/indices"
	"activityflow/session"
)

var (
	SearchActivitiesFunc = SearchActivities
)

type ActivitySearch struct {
	Name   string   `form:"name"`
	States []string `form:"state"`

	// Mine restricts hits to activities the caller takes part in.
	Mine bool `form:"mine"`
}

// SearchActivities queries the activity index, scoped to the caller's
// tenant.
func SearchActivities(q ActivitySearch, s *session.Session) ([]indices.ActivityDocument, error) {
	filters := make([]es.H, 0, 4)
	filters = append(filters, es.H{"term": es.H{"tenant": s.Tenant}})
	if q.Name != "" {
		filters = append(filters, es.H{"match": es.H{"name": es.H{"query": q.Name, "operator": "AND"}}})
	}
	if len(q.States) > 0 {
		filters = append(filters, es.H{"terms": es.H{"state": q.States}})
	}
	if q.Mine {
		// types.ID only marshals as a string through its pointer receiver,
		// map values bypass it.
		filters = append(filters, es.H{"term": es.H{"users.id": s.Identity.ID.String()}})
	}

	sorts := make([]es.H, 0, 1)
	sorts = append(sorts, es.H{"createTime": es.H{"order": "desc"}})

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.ActivityIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	docs := make([]indices.ActivityDocument, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := indices.ActivityDocument{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&doc); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
