package indices

import (
	"fmt"

	"activityflow/client/es"
	"activityflow/domain"
	"activityflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	ActivityIndexName = "activities"
)

// ActivityDocument carries the tenant alongside the detail so one index
// serves all tenants.
type ActivityDocument struct {
	domain.ActivityDetail

	Tenant string `json:"tenant"`
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexActivities(details []domain.ActivityDetail, s *session.Session) error {
	docs := make([]ActivityDocument, 0, len(details))
	for _, detail := range details {
		docs = append(docs, ActivityDocument{ActivityDetail: detail, Tenant: s.Tenant})
	}

	if err := saveActivityDocuments(docs, s); err != nil {
		return err
	}
	return nil
}

func saveActivityDocuments(docs []ActivityDocument, s *session.Session) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(ActivityIndexName, doc.ID, doc, s); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index activity %d %s %s\n", doc.ID, doc.Protocol, err)
		} else {
			logrus.Infof("index activity %d %s successfully\n", doc.ID, doc.Protocol)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
