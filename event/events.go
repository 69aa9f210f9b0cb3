package event

import (
	"activityflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var EventPersistCreateFunc = eventPersistCreate

func CreateEvent(sourceType string, sourceId types.ID, sourceDesc string, category EventCategory,
	updatedProperties []UpdatedProperty, s *session.Session, db *gorm.DB) (*EventRecord, error) {

	record := EventRecord{
		Event: Event{
			SourceType: sourceType,
			SourceId:   sourceId,
			SourceDesc: sourceDesc,

			EventCategory:     category,
			UpdatedProperties: updatedProperties,

			CreatorId:   s.Identity.ID,
			CreatorName: s.Identity.Name,
		},
		Tenant:    s.Tenant,
		Synced:    false,
		Timestamp: types.CurrentTimestamp(),
	}
	if err := EventPersistCreateFunc(&record, db); err != nil {
		return nil, err
	}
	return &record, nil
}

func eventPersistCreate(record *EventRecord, db *gorm.DB) error {
	return db.Create(record).Error
}

func MarkSynced(sourceType string, sourceId types.ID, db *gorm.DB) error {
	return db.Model(&EventRecord{}).
		Where("source_type = ? AND source_id = ? AND synced = ?", sourceType, sourceId, false).
		Update("synced", true).Error
}

func LoadUnsynced(limit int, db *gorm.DB) ([]EventRecord, error) {
	records := []EventRecord{}
	if err := db.Where("synced = ?", false).Order("timestamp ASC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ReplayUnsynced pushes unsynced events back through the handlers and
// marks the fully handled ones. Handlers must be idempotent on replay.
func ReplayUnsynced(limit int, db *gorm.DB) (int, error) {
	records, err := LoadUnsynced(limit, db)
	if err != nil {
		return 0, err
	}

	synced := 0
	for i := range records {
		record := &records[i]
		failed := false
		for _, r := range InvokeHandlersFunc(record) {
			if !r.Success {
				failed = true
				break
			}
		}
		if failed {
			continue
		}
		if err := MarkSynced(record.SourceType, record.SourceId, db); err != nil {
			return synced, err
		}
		synced++
	}
	return synced, nil
}
