package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/vendor-signup-service/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to workflow
// events and starts the goroutine that delivers vendor hand-off emails. The
// returned channel closes once the queue is drained after ctx is cancelled.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if notificationService == nil {
		logger.Warn("notification worker disabled")
		close(done)
		return done
	}
	notificationService.RegisterHandlers()
	go func() {
		defer close(done)
		notificationService.Run(ctx)
	}()
	logger.Info("notification worker started")
	return done
}
