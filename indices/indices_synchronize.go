package indices

import (
	"context"
	"fmt"
	"sync"

	"activityflow/account"
	"activityflow/authority"
	"activityflow/bizerror"
	"activityflow/client/es"
	"activityflow/domain"
	"activityflow/domain/activity"
	"activityflow/event"
	"activityflow/persistence"
	"activityflow/session"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var (
	ActivityIndexEventHandlerName = "activityIndexer"

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
	EventsRecoveryFunc     = EventsRecovery

	SyncBatchSize = 500

	// syncLimiter paces full sync batches so a resync does not saturate
	// the search service.
	syncLimiter = rate.NewLimiter(rate.Limit(5), 1)
)

func indexRobot(tenant string) *session.Session {
	return &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    authority.Permissions{account.SystemViewPermission.ID},
		Tenant:   tenant,
		Context:  context.Background(),
	}
}

func ScheduleNewSyncRun(s *session.Session) (bool, error) {
	if !s.Perms.HasPerm(account.SystemAdminPermission.ID) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

// IndicesFullSync reindexes every activity of every tenant schema.
func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	tenants, err := persistence.ActiveDataSourceManager.ListTenants()
	if err != nil {
		return err
	}

	for _, tenant := range tenants {
		robot := indexRobot(tenant)
		page := 1
		for {
			if err := syncLimiter.Wait(robot.Context); err != nil {
				return err
			}

			details, err := activity.LoadActivitiesPageFunc(page, SyncBatchSize, tenant, robot)
			if err != nil {
				logrus.Warnf("indices full sync: error on retrieve activities(tenant = %s, page = %d): %v", tenant, page, err)
				break
			}
			if len(details) == 0 {
				logrus.Infof("indices full sync: no more activity to index for tenant %s", tenant)
				break
			}

			if err := IndexActivities(details, robot); err != nil {
				logrus.Warnf("indices full sync: error on index activities(tenant = %s, page = %d): %v", tenant, page, err)
			}
			page++
		}
	}
	return nil
}

// EventsRecovery replays unsynced events of every tenant so indexing
// misses are retried until they land.
func EventsRecovery() error {
	tenants, err := persistence.ActiveDataSourceManager.ListTenants()
	if err != nil {
		return err
	}

	for _, tenant := range tenants {
		robot := indexRobot(tenant)
		if err := syncLimiter.Wait(robot.Context); err != nil {
			return err
		}

		db, err := persistence.ActiveDataSourceManager.GormDB(robot.Context, tenant)
		if err != nil {
			logrus.Warnf("events recovery: data source of tenant %s: %v", tenant, err)
			continue
		}
		synced, err := event.ReplayUnsynced(SyncBatchSize, db)
		if err != nil {
			logrus.Warnf("events recovery: replay for tenant %s: %v", tenant, err)
			continue
		}
		if synced > 0 {
			logrus.Infof("events recovery: %d events synced for tenant %s", synced, tenant)
		}
	}
	return nil
}

func IndexActivityEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != activity.SourceTypeActivity {
		return nil
	}

	robot := indexRobot(e.Tenant)
	if e.EventCategory == event.EventCategoryDeleted {
		err := es.DeleteDocumentByIdFunc(ActivityIndexName, e.Event.SourceId, robot)
		if err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete activity index %d, %v", e.Event.SourceId, err),
				HandlerIdentifier: ActivityIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: ActivityIndexEventHandlerName}
	}

	detail, err := activity.DetailActivityFunc(e.Event.SourceId, robot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail activity when index activity %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: ActivityIndexEventHandlerName,
		}
	}
	if err := IndexActivities([]domain.ActivityDetail{*detail}, robot); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index activity %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: ActivityIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: ActivityIndexEventHandlerName}
}
