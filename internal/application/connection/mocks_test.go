package connection

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/shipkia/connector/internal/domain/connection"
)

// MockPlatform is a mock implementation of connection.Platform
type MockPlatform struct {
	mock.Mock
}

var _ connection.Platform = (*MockPlatform)(nil)

func (m *MockPlatform) VerifyConnection(ctx context.Context, baseURL string, req connection.VerifyRequest) (*connection.VerifyResponse, error) {
	args := m.Called(ctx, baseURL, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connection.VerifyResponse), args.Error(1)
}

func (m *MockPlatform) ExchangeToken(ctx context.Context, baseURL string, req connection.ExchangeRequest) (*connection.TokenResponse, error) {
	args := m.Called(ctx, baseURL, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connection.TokenResponse), args.Error(1)
}

func (m *MockPlatform) RefreshToken(ctx context.Context, baseURL string, req connection.RefreshRequest) (*connection.TokenResponse, error) {
	args := m.Called(ctx, baseURL, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connection.TokenResponse), args.Error(1)
}

func (m *MockPlatform) AutoSync(ctx context.Context, baseURL string, req connection.AutoSyncRequest) (*connection.AutoSyncResponse, error) {
	args := m.Called(ctx, baseURL, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connection.AutoSyncResponse), args.Error(1)
}

func (m *MockPlatform) SyncSettings(ctx context.Context, baseURL string, req connection.SyncSettingsRequest) error {
	args := m.Called(ctx, baseURL, req)
	return args.Error(0)
}

func (m *MockPlatform) Disconnect(ctx context.Context, baseURL string, req connection.DisconnectRequest) error {
	args := m.Called(ctx, baseURL, req)
	return args.Error(0)
}

// fakeOptionStore keeps options in a map
type fakeOptionStore struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newFakeOptionStore(values map[string]string) *fakeOptionStore {
	s := &fakeOptionStore{values: map[string]string{}}
	maps.Copy(s.values, values)
	return s
}

func (s *fakeOptionStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *fakeOptionStore) GetMany(_ context.Context, keys ...string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *fakeOptionStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.values[key] = value
	return nil
}

func (s *fakeOptionStore) SetMany(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	maps.Copy(s.values, values)
	return nil
}

func (s *fakeOptionStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *fakeOptionStore) value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func (s *fakeOptionStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

type transientEntry struct {
	value string
	ttl   time.Duration
}

// fakeTransientStore keeps transients without expiring them and remembers their TTL
type fakeTransientStore struct {
	mu      sync.Mutex
	entries map[string]transientEntry
}

func newFakeTransientStore() *fakeTransientStore {
	return &fakeTransientStore{entries: map[string]transientEntry{}}
}

func (s *fakeTransientStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e.value, ok, nil
}

func (s *fakeTransientStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl <= 0 {
		delete(s.entries, key)
		return nil
	}
	s.entries[key] = transientEntry{value: value, ttl: ttl}
	return nil
}

func (s *fakeTransientStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

func (s *fakeTransientStore) put(key string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = transientEntry{value: connection.FlagValue, ttl: ttl}
}

func (s *fakeTransientStore) entry(key string) (transientEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

// fakeConsumerSecrets returns a fixed consumer secret
type fakeConsumerSecrets struct {
	secret string
	err    error
}

func (f fakeConsumerSecrets) LatestReadWriteSecret(context.Context) (string, bool, error) {
	if f.err != nil {
		return "", false, f.err
	}
	return f.secret, f.secret != "", nil
}

// recordingMetrics counts connection events
type recordingMetrics struct {
	mu         sync.Mutex
	calls      map[string]int
	refreshes  []bool
	connects   map[string][]bool
	disconnect int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{calls: map[string]int{}, connects: map[string][]bool{}}
}

func (m *recordingMetrics) RecordRemoteCall(_ context.Context, operation string, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[operation]++
}

func (m *recordingMetrics) RecordTokenRefresh(_ context.Context, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes = append(m.refreshes, success)
}

func (m *recordingMetrics) RecordConnect(_ context.Context, operation string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connects[operation] = append(m.connects[operation], success)
}

func (m *recordingMetrics) RecordDisconnect(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnect++
}
