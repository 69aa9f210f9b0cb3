package event

import (
	"github.com/sirupsen/logrus"
)

// EventHandler reacts to a persisted event. A handler returns nil when
// the event is none of its business.
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var EventHandlers []EventHandler

var InvokeHandlersFunc = invokeHandlers

func invokeHandlers(record *EventRecord) []EventHandleResult {
	results := []EventHandleResult{}
	for _, handler := range EventHandlers {
		r := handler(record)
		if r == nil {
			continue
		}
		results = append(results, *r)

		logger := logrus.WithFields(logrus.Fields{
			"handler":  r.HandlerIdentifier,
			"source":   record.SourceType + "/" + record.SourceId.String(),
			"category": record.EventCategory,
		})
		if r.Success {
			logger.Debug("event handled")
		} else {
			logger.Error("event handling failed: " + r.Message)
		}
	}
	return results
}
