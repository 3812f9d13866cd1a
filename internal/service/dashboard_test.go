package service

import (
	"context"
	"testing"
	"time"

	"github.com/Thiago-Nunes-Gen/project-saas-app-sara-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActivity struct {
	since time.Time
	count int64
}

func (f *fakeActivity) CountSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	f.since = since
	return f.count, nil
}

func TestDashboardService_Summary(t *testing.T) {
	subs := newFakeSubStore()
	_ = subs.Create(context.Background(), &models.Subscription{UserID: "u1", Status: models.SubscriptionActive})
	activity := &fakeActivity{count: 12}

	s := NewDashboardService(subs, activity)
	now := time.Date(2026, 3, 31, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	d, err := s.Summary(context.Background(), testPrincipal)
	require.NoError(t, err)
	require.NotNil(t, d.Subscription)
	assert.Equal(t, models.SubscriptionActive, d.Subscription.Status)
	assert.Equal(t, int64(12), d.ChatMessages30d)
	assert.Equal(t, now.Add(-30*24*time.Hour), activity.since)
	assert.Equal(t, "u1", d.User.UserID)
}

func TestDashboardService_NoSubscription(t *testing.T) {
	s := NewDashboardService(newFakeSubStore(), &fakeActivity{})

	d, err := s.Summary(context.Background(), testPrincipal)
	require.NoError(t, err)
	assert.Nil(t, d.Subscription)
}

func TestDashboardService_NoStorage(t *testing.T) {
	s := NewDashboardService(nil, nil)

	_, err := s.Summary(context.Background(), testPrincipal)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
