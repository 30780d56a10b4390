package settings

import (
	"context"
	"errors"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shipkia/connector/internal/domain/connection"
)

type MockSyncer struct {
	mock.Mock
}

func (m *MockSyncer) IsConnected(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockSyncer) SyncSettings(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mapOptions struct {
	values map[string]string
	writes int
}

func (o *mapOptions) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := o.values[key]
	return v, ok, nil
}

func (o *mapOptions) GetMany(_ context.Context, keys ...string) (map[string]string, error) {
	out := map[string]string{}
	for _, k := range keys {
		if v, ok := o.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (o *mapOptions) Set(_ context.Context, key, value string) error {
	o.values[key] = value
	o.writes++
	return nil
}

func (o *mapOptions) SetMany(_ context.Context, values map[string]string) error {
	maps.Copy(o.values, values)
	o.writes++
	return nil
}

func (o *mapOptions) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(o.values, k)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
func strPtr(s string) *string { return &s }

func TestService_Get(t *testing.T) {
	svc := NewService(&mapOptions{values: map[string]string{
		connection.OptionTrackingEnabled:    "no",
		connection.OptionTrackingButtonText: "  ",
	}}, new(MockSyncer), zaptest.NewLogger(t))

	s, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, s.Enabled)
	assert.Equal(t, "Track", s.ButtonText)
	assert.True(t, s.NewTab)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("writes changes and syncs when connected", func(t *testing.T) {
		opts := &mapOptions{values: map[string]string{}}
		syncer := new(MockSyncer)
		syncer.On("IsConnected", mock.Anything).Return(true, nil)
		syncer.On("SyncSettings", mock.Anything).Return(nil).Once()
		svc := NewService(opts, syncer, zaptest.NewLogger(t))

		res, err := svc.Update(ctx, UpdateInput{ButtonText: strPtr(" Follow parcel "), NewTab: boolPtr(false)})
		require.NoError(t, err)

		assert.True(t, res.Changed)
		assert.True(t, res.Synced)
		assert.Equal(t, "Follow parcel", res.Settings.ButtonText)
		assert.False(t, res.Settings.NewTab)
		assert.Equal(t, "no", opts.values[connection.OptionTrackingNewTab])
		_, wroteEnabled := opts.values[connection.OptionTrackingEnabled]
		assert.False(t, wroteEnabled, "unchanged settings are not written")
		syncer.AssertExpectations(t)
	})

	t.Run("skips the sync when disconnected", func(t *testing.T) {
		syncer := new(MockSyncer)
		syncer.On("IsConnected", mock.Anything).Return(false, nil)
		svc := NewService(&mapOptions{values: map[string]string{}}, syncer, zaptest.NewLogger(t))

		res, err := svc.Update(ctx, UpdateInput{TrackingEnabled: boolPtr(false)})
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.False(t, res.Synced)
		syncer.AssertNotCalled(t, "SyncSettings", mock.Anything)
	})

	t.Run("does nothing without changes", func(t *testing.T) {
		opts := &mapOptions{values: map[string]string{}}
		syncer := new(MockSyncer)
		svc := NewService(opts, syncer, zaptest.NewLogger(t))

		res, err := svc.Update(ctx, UpdateInput{TrackingEnabled: boolPtr(true), ButtonText: strPtr("Track")})
		require.NoError(t, err)
		assert.False(t, res.Changed)
		assert.Zero(t, opts.writes)
		syncer.AssertNotCalled(t, "IsConnected", mock.Anything)
	})

	t.Run("reports a failed sync without failing", func(t *testing.T) {
		syncer := new(MockSyncer)
		syncer.On("IsConnected", mock.Anything).Return(true, nil)
		syncer.On("SyncSettings", mock.Anything).Return(errors.New("timeout"))
		svc := NewService(&mapOptions{values: map[string]string{}}, syncer, zaptest.NewLogger(t))

		res, err := svc.Update(ctx, UpdateInput{NewTab: boolPtr(false)})
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.False(t, res.Synced)
	})
}
