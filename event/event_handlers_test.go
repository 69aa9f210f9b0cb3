package event_test

import (
	"testing"
	"time"

	"activityflow/event"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestInvokeHandlers(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should invoke all registered event handlers", func(t *testing.T) {
		originHandlers := event.EventHandlers
		defer func() { event.EventHandlers = originHandlers }()

		event.EventHandlers = append(event.EventHandlers, func(e *event.EventRecord) *event.EventHandleResult {
			return nil
		})
		event.EventHandlers = append(event.EventHandlers, func(e *event.EventRecord) *event.EventHandleResult {
			return &event.EventHandleResult{Success: true, Message: "success", HandlerIdentifier: "all-success-handler"}
		})
		event.EventHandlers = append(event.EventHandlers, func(e *event.EventRecord) *event.EventHandleResult {
			return &event.EventHandleResult{Success: false, Message: "failure", HandlerIdentifier: "all-failure-handler"}
		})

		ev := event.EventRecord{
			Event: event.Event{
				SourceType: "ACTIVITY",
				SourceId:   1234,
				SourceDesc: "PRJ-1 field trip",

				EventCategory: event.EventCategoryCreated,
				UpdatedProperties: event.UpdatedProperties{{PropertyName: "state",
					OldValue: "created", NewValue: "processing"}},

				CreatorId:   333,
				CreatorName: "user333",
			},
			Tenant:    "fmfi",
			Timestamp: types.TimestampOfDate(2021, 1, 1, 12, 12, 12, 0, time.Local),
			Synced:    true,
		}

		ret := event.InvokeHandlersFunc(&ev)
		Expect(ret).To(Equal([]event.EventHandleResult{
			{Success: true, Message: "success", HandlerIdentifier: "all-success-handler"},
			{Success: false, Message: "failure", HandlerIdentifier: "all-failure-handler"},
		}))
	})
}
