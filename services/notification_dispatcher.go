package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// NotificationDispatcher delivers achievement pushes off the request path.
type NotificationDispatcher struct {
	devices      DeviceRepository
	pushProvider PushNotificationProvider
	workers      int
	jobQueue     chan *notification.Push
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	queueTimeout time.Duration
}

func NewNotificationDispatcher(devices DeviceRepository, workers int) *NotificationDispatcher {
	if workers <= 0 {
		workers = 3
	}
	dispatcher := &NotificationDispatcher{
		devices:      devices,
		workers:      workers,
		jobQueue:     make(chan *notification.Push, 100),
		stopChan:     make(chan struct{}),
		queueTimeout: 5 * time.Second,
	}

	dispatcher.startWorkers()
	return dispatcher
}

// Allow injecting the real FCM provider from main.go
func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.pushProvider = provider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
}

func (d *NotificationDispatcher) worker(id int) {
	defer d.wg.Done()
	for {
		select {
		case push := <-d.jobQueue:
			d.processJob(push)
		case <-d.stopChan:
			return
		}
	}
}

func (d *NotificationDispatcher) processJob(push *notification.Push) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if d.pushProvider == nil {
		log.Printf("Skipping push for user %s: no provider set", push.UserID)
		return
	}

	tokens, err := d.devices.DeviceTokens(ctx, push.UserID)
	if err != nil {
		log.Printf("Failed to load device tokens for user %s: %v", push.UserID, err)
		return
	}
	if len(tokens) == 0 {
		log.Printf("Skipping push for user %s: no registered devices", push.UserID)
		return
	}

	if err := d.pushProvider.SendPush(ctx, tokens, push.Title, push.Body, push.Data); err != nil {
		log.Printf("Push failed for user %s: %v", push.UserID, err)
	}
}

// Dispatch queues a push. A full queue drops the push after a short wait;
// achievements are already recorded by then.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, push *notification.Push) {
	select {
	case d.jobQueue <- push:
	case <-ctx.Done():
		log.Printf("Failed to queue push for user %s: %v", push.UserID, ctx.Err())
	case <-time.After(d.queueTimeout):
		log.Printf("Failed to queue push for user %s: queue full", push.UserID)
	}
}

func (d *NotificationDispatcher) RegisterDevice(ctx context.Context, userID string, req *notification.RegisterDeviceRequest) error {
	if userID == "" {
		return errs.ErrNotAuthenticated
	}
	if msg := req.Validate(); msg != "" {
		return fmt.Errorf("%w: %s", errs.ErrValidation, msg)
	}
	token := notification.DeviceToken{Token: req.Token, Platform: req.Platform, CreatedAt: time.Now()}
	if err := d.devices.AddDeviceToken(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// Stop the dispatcher gracefully
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		log.Println("Stopping notification dispatcher...")
		close(d.stopChan)
		d.wg.Wait()
		log.Println("Notification dispatcher stopped")
	})
}

// MockPushProvider logs instead of sending; used when Firebase messaging is
// not configured.
type MockPushProvider struct{}

func (m *MockPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	log.Printf("MOCK PUSH: Sending to %d devices: %s - %s", len(tokens), title, body)
	return nil
}
