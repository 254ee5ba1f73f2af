package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"congregationAPI/internal/errs"
	"congregationAPI/internal/notification"
	"congregationAPI/services"
)

type capturePushProvider struct {
	mu    sync.Mutex
	sends []capturedSend
}

type capturedSend struct {
	tokens []notification.DeviceToken
	title  string
}

func (c *capturePushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends = append(c.sends, capturedSend{tokens: tokens, title: title})
	return nil
}

func (c *capturePushProvider) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sends)
}

func TestDispatcher_SendsToRegisteredDevices(t *testing.T) {
	store := newMemStore()
	provider := &capturePushProvider{}

	d := services.NewNotificationDispatcher(store, 2)
	d.SetPushProvider(provider)
	defer d.Stop()

	ctx := context.Background()
	require.NoError(t, d.RegisterDevice(ctx, "user-1", &notification.RegisterDeviceRequest{Token: "tok-1", Platform: "iOS"}))
	require.NoError(t, d.RegisterDevice(ctx, "user-1", &notification.RegisterDeviceRequest{Token: "tok-1", Platform: "ios"}))

	d.Dispatch(ctx, &notification.Push{UserID: "user-1", Title: "Goal reached!"})

	require.Eventually(t, func() bool { return provider.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.Equal(t, "Goal reached!", provider.sends[0].title)
	require.Len(t, provider.sends[0].tokens, 1)
	assert.Equal(t, "ios", provider.sends[0].tokens[0].Platform)
}

func TestDispatcher_SkipsUsersWithoutDevices(t *testing.T) {
	store := newMemStore()
	provider := &capturePushProvider{}

	d := services.NewNotificationDispatcher(store, 1)
	d.SetPushProvider(provider)

	d.Dispatch(context.Background(), &notification.Push{UserID: "user-1", Title: "x"})
	d.Dispatch(context.Background(), &notification.Push{UserID: "user-1", Title: "y"})
	time.Sleep(50 * time.Millisecond)
	d.Stop()
	d.Stop()

	assert.Zero(t, provider.count())
}

func TestRegisterDevice_Validation(t *testing.T) {
	d := services.NewNotificationDispatcher(newMemStore(), 1)
	defer d.Stop()
	ctx := context.Background()

	err := d.RegisterDevice(ctx, "", &notification.RegisterDeviceRequest{Token: "t", Platform: "ios"})
	assert.ErrorIs(t, err, errs.ErrNotAuthenticated)

	err = d.RegisterDevice(ctx, "user-1", &notification.RegisterDeviceRequest{Platform: "ios"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	err = d.RegisterDevice(ctx, "user-1", &notification.RegisterDeviceRequest{Token: "t", Platform: "blackberry"})
	assert.ErrorIs(t, err, errs.ErrValidation)
}
