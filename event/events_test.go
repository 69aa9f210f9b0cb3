package event_test

import (
	"errors"
	"testing"
	"time"

	"activityflow/event"
	"activityflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func TestCreateEvent(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should build record from session and source", func(t *testing.T) {
		origin := event.EventPersistCreateFunc
		defer func() { event.EventPersistCreateFunc = origin }()

		var persisted *event.EventRecord
		event.EventPersistCreateFunc = func(record *event.EventRecord, db *gorm.DB) error {
			persisted = record
			return nil
		}

		s := testinfra.BuildSecCtx(100)
		s.Identity.Name = "ann"
		s.Tenant = "fmfi"

		record, err := event.CreateEvent("ACTIVITY", types.ID(200), "PRJ-1 field trip", event.EventCategoryCommitted,
			[]event.UpdatedProperty{{PropertyName: "state", OldValue: "created", NewValue: "processing"}}, s, nil)
		Expect(err).To(BeNil())
		Expect(record).To(Equal(persisted))

		Expect(record.SourceType).To(Equal("ACTIVITY"))
		Expect(record.SourceId).To(Equal(types.ID(200)))
		Expect(record.SourceDesc).To(Equal("PRJ-1 field trip"))
		Expect(record.EventCategory).To(Equal(event.EventCategory("COMMITTED")))
		Expect(record.UpdatedProperties).To(Equal(event.UpdatedProperties{
			{PropertyName: "state", OldValue: "created", NewValue: "processing"}}))
		Expect(record.CreatorId).To(Equal(types.ID(100)))
		Expect(record.CreatorName).To(Equal("ann"))
		Expect(record.Tenant).To(Equal("fmfi"))
		Expect(record.Synced).To(BeFalse())
		Expect(time.Since(record.Timestamp.Time()) < time.Second).To(BeTrue())
	})

	t.Run("should propagate persistence failures", func(t *testing.T) {
		origin := event.EventPersistCreateFunc
		defer func() { event.EventPersistCreateFunc = origin }()

		event.EventPersistCreateFunc = func(record *event.EventRecord, db *gorm.DB) error {
			return errors.New("insert failed")
		}

		record, err := event.CreateEvent("ACTIVITY", types.ID(200), "PRJ-1", event.EventCategoryCreated, nil,
			testinfra.BuildSecCtx(100), nil)
		Expect(record).To(BeNil())
		Expect(err).To(MatchError("insert failed"))
	})
}

func TestUpdatedPropertiesScan(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should work with string and []byte values", func(t *testing.T) {
		props := event.UpdatedProperties{}
		Expect(props.Scan(`[{"propertyName":"state","oldValue":"a","newValue":"b"}]`)).To(BeNil())
		Expect(props).To(Equal(event.UpdatedProperties{{PropertyName: "state", OldValue: "a", NewValue: "b"}}))

		props = event.UpdatedProperties{}
		Expect(props.Scan([]byte(`[]`))).To(BeNil())
		Expect(props).To(Equal(event.UpdatedProperties{}))
	})

	t.Run("should reject unsupported values", func(t *testing.T) {
		props := event.UpdatedProperties{}
		Expect(props.Scan(12345)).ToNot(BeNil())
	})

	t.Run("should serialize to json string", func(t *testing.T) {
		v, err := event.UpdatedProperties{{PropertyName: "name", OldValue: "x", NewValue: "y"}}.Value()
		Expect(err).To(BeNil())
		Expect(v).To(Equal(`[{"propertyName":"name","oldValue":"x","newValue":"y"}]`))
	})
}
