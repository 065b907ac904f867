package services

import (
	"context"
	"sync"
	"time"

	"godeliver/internal/utils"
	"godeliver/pkg/logger"
	"godeliver/pkg/push"
)

// NotificationService decouples dispatch correctness from push delivery: the
// dispatch and assignment paths enqueue and move on, a worker pool drains the
// queue with bounded retries. A provider outage only delays delivery, it
// never fails an order transaction.
type NotificationService interface {
	// Enqueue hands a notification to the background queue. Never blocks;
	// when the queue is full the notification is dropped and logged.
	Enqueue(request *push.NotificationRequest)
	Start()
	Stop()
}

type notificationService struct {
	provider push.PushProvider
	logger   *logger.Logger

	queue    chan *push.NotificationRequest
	workers  int
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewNotificationService(provider push.PushProvider, log *logger.Logger) NotificationService {
	return &notificationService{
		provider: provider,
		logger:   log,
		queue:    make(chan *push.NotificationRequest, utils.NotificationQueueSize),
		workers:  utils.NotificationWorkers,
	}
}

func (s *notificationService) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
}

func (s *notificationService) Stop() {
	s.stopOnce.Do(func() {
		close(s.queue)
	})
	s.wg.Wait()
}

func (s *notificationService) Enqueue(request *push.NotificationRequest) {
	if request == nil || request.Token == "" {
		return
	}

	select {
	case s.queue <- request:
	default:
		s.logger.WithField("title", request.Title).Warn("Notification queue full, dropping push")
	}
}

func (s *notificationService) worker() {
	defer s.wg.Done()

	for request := range s.queue {
		s.deliver(request)
	}
}

func (s *notificationService) deliver(request *push.NotificationRequest) {
	backoff := utils.NotificationRetryBackoff

	for attempt := 1; attempt <= utils.NotificationRetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), utils.NotificationTimeout)
		_, err := s.provider.SendNotification(ctx, request)
		cancel()

		if err == nil {
			return
		}

		if attempt == utils.NotificationRetryAttempts {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"title":    request.Title,
				"attempts": attempt,
			}).Error("Push notification failed, giving up")
			return
		}

		time.Sleep(backoff)
		backoff *= 2
	}
}
