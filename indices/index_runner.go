package indices

import (
	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCron schedules the nightly full reindex and the periodic replay
// of unsynced events.
func StartCron() {
	crontab := cron.New(cron.WithSeconds())
	crontab.AddFunc("0 0 23 * * ?", func() {
		if err := IndicesFullSyncFunc(); err != nil {
			logrus.Errorf("scheduled indices full sync failed: %v", err)
		}
	})
	crontab.AddFunc("0 */5 * * * ?", func() {
		if err := EventsRecoveryFunc(); err != nil {
			logrus.Errorf("scheduled events recovery failed: %v", err)
		}
	})
	crontab.Start()
}
