package worker

import (
	"github.com/spec-kit/repair-service/internal/events"
	"github.com/spec-kit/repair-service/internal/service"
)

// StartNotificationWorker registers notification handlers and cache
// invalidation on the dispatcher.
func StartNotificationWorker(notifications *service.NotificationService, tracking *service.TrackingService, dispatcher events.Dispatcher) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if tracking != nil {
		tracking.RegisterInvalidation(dispatcher)
	}
}
