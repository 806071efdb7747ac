package worker

import (
	"github.com/spec-kit/it-helpdesk/internal/service"
)

// StartNotificationWorker registers the outbound notification stubs.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
