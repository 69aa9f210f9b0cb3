package persistence

import (
	"sort"
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func TestTenantSourceRenewal(t *testing.T) {
	RegisterTestingT(t)

	originExpiration := SourceExpiration
	SourceExpiration = 50 * time.Millisecond
	defer func() { SourceExpiration = originExpiration }()

	ds := &DataSourceManager{DatabaseConfig: &DatabaseConfig{
		DriverType: "mysql", ServiceArgs: "root:root@(127.0.0.1:1)", DatabasePrefix: "activityflow",
	}}
	Expect(ds.Start()).To(BeNil())
	defer ds.Stop()

	ds.sources.SetDefault("fmfi", (*gorm.DB)(nil))

	t.Run("should keep a continuously used source alive beyond its expiration", func(t *testing.T) {
		deadline := time.Now().Add(200 * time.Millisecond)
		for time.Now().Before(deadline) {
			db, err := ds.source("fmfi")
			Expect(err).To(BeNil())
			Expect(db).To(BeNil())
			time.Sleep(10 * time.Millisecond)
		}
	})

	t.Run("should drop an idle source after its expiration", func(t *testing.T) {
		time.Sleep(100 * time.Millisecond)
		_, found := ds.sources.Get("fmfi")
		Expect(found).To(BeFalse())
	})
}

func TestStopEvictsSources(t *testing.T) {
	RegisterTestingT(t)

	ds := &DataSourceManager{DatabaseConfig: &DatabaseConfig{DriverType: "mysql"}}
	Expect(ds.Start()).To(BeNil())

	evicted := []string{}
	ds.sources.OnEvicted(func(tenant string, value interface{}) {
		evicted = append(evicted, tenant)
	})
	ds.sources.SetDefault("fmfi", (*gorm.DB)(nil))
	ds.sources.SetDefault("fmup", (*gorm.DB)(nil))

	ds.Stop()
	sort.Strings(evicted)
	Expect(evicted).To(Equal([]string{"fmfi", "fmup"}))
	Expect(ds.sources).To(BeNil())

	ds.Stop()
}
