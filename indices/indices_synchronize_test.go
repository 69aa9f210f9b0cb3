package indices_test

import (
	"sync"
	"testing"
	"time"

	"activityflow/account"
	"activityflow/bizerror"
	"activityflow/indices"
	"activityflow/testinfra"

	. "github.com/onsi/gomega"
)

func TestScheduleNewSyncRun(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should reject callers without system admin permission", func(t *testing.T) {
		s := testinfra.BuildSecCtx(10, account.SystemViewPermission.ID)
		ok, err := indices.ScheduleNewSyncRun(s)
		Expect(ok).To(BeFalse())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should run full sync once for concurrent schedules", func(t *testing.T) {
		origin := indices.IndicesFullSyncFunc
		defer func() { indices.IndicesFullSyncFunc = origin }()

		runs := 0
		var mutex sync.Mutex
		release := make(chan struct{})
		indices.IndicesFullSyncFunc = func() error {
			mutex.Lock()
			runs++
			mutex.Unlock()
			<-release
			return nil
		}

		s := testinfra.BuildSecCtx(10, account.SystemAdminPermission.ID)
		ok, err := indices.ScheduleNewSyncRun(s)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())

		// second schedule is a no-op while the first run is in flight
		ok, err = indices.ScheduleNewSyncRun(s)
		Expect(err).To(BeNil())
		Expect(ok).To(BeFalse())

		close(release)
		Eventually(func() bool {
			ok, err := indices.ScheduleNewSyncRun(s)
			return ok && err == nil
		}, time.Second, 10*time.Millisecond).Should(BeTrue())

		mutex.Lock()
		defer mutex.Unlock()
		Expect(runs >= 2).To(BeTrue())
	})
}
