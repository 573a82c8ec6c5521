package payments

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodsource-dev/foodsource/internal/apperr"
)

type fakeIntentStore struct {
	mu      sync.Mutex
	intents map[string]Intent
}

func newFakeIntentStore() *fakeIntentStore {
	return &fakeIntentStore{intents: make(map[string]Intent)}
}

func (s *fakeIntentStore) SaveIntent(_ context.Context, intent Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[intent.ID] = intent
	return nil
}

func (s *fakeIntentStore) IntentByID(_ context.Context, intentID string) (*Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[intentID]
	if !ok {
		return nil, apperr.E(apperr.NotFound, "test.IntentByID", fmt.Errorf("intent %s", intentID))
	}
	return &in, nil
}

func (s *fakeIntentStore) MarkCompleted(_ context.Context, intentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intents[intentID]
	if !ok {
		return fmt.Errorf("intent %s not found", intentID)
	}
	in.Status = IntentCompleted
	s.intents[intentID] = in
	return nil
}

func (s *fakeIntentStore) ExpireOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, in := range s.intents {
		if in.Status == IntentPending && in.CreatedAt.Before(cutoff) {
			in.Status = IntentExpired
			s.intents[id] = in
			n++
		}
	}
	return n, nil
}

func onboardedDirectory(accounts map[string]string) SellerDirectory {
	return func(_ context.Context, sellerID string) (string, error) {
		acct, ok := accounts[sellerID]
		if !ok || acct == "" {
			return "", apperr.E(apperr.NotFound, "test.directory", fmt.Errorf("seller %s not onboarded", sellerID))
		}
		return acct, nil
	}
}

func secretServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"result":{"client_secret":"pi_secret_xyz"}}}`))
	}))
}

func TestBrokerCreateIntent(t *testing.T) {
	srv := secretServer(t)
	defer srv.Close()

	store := newFakeIntentStore()
	flows := NewFlows()
	b := NewBroker(onboardedDirectory(map[string]string{"s1": "acct_s1"}),
		NewGateway(srv.URL, ""), store, flows)

	res, err := b.CreateIntent(context.Background(), 1098, "s1", "1 Farm Rd")
	require.NoError(t, err)
	assert.Equal(t, "pi_secret_xyz", res.ClientSecret)
	require.NotEmpty(t, res.IntentID)

	// Intent is recorded as pending and its flow is at the sheet.
	in, ok := store.intents[res.IntentID]
	require.True(t, ok)
	assert.Equal(t, IntentPending, in.Status)
	assert.Equal(t, "s1", in.SellerID)
	assert.Equal(t, int64(1098), in.AmountCents)

	flow, ok := flows.Get(res.IntentID)
	require.True(t, ok)
	assert.Equal(t, SheetPresented, flow.State())

	got, err := b.Intent(context.Background(), res.IntentID)
	require.NoError(t, err)
	assert.Equal(t, in, *got)
}

func TestBrokerSellerNotOnboarded(t *testing.T) {
	srv := secretServer(t)
	defer srv.Close()

	b := NewBroker(onboardedDirectory(nil), NewGateway(srv.URL, ""), newFakeIntentStore(), NewFlows())

	_, err := b.CreateIntent(context.Background(), 1098, "s1", "1 Farm Rd")
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestBrokerValidatesInput(t *testing.T) {
	b := NewBroker(onboardedDirectory(map[string]string{"s1": "acct"}),
		NewGateway("http://unused", ""), newFakeIntentStore(), NewFlows())

	_, err := b.CreateIntent(context.Background(), 0, "s1", "addr")
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = b.CreateIntent(context.Background(), 100, "", "addr")
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = b.CreateIntent(context.Background(), 100, "s1", "")
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestExpireOlderThanOnlyTouchesPending(t *testing.T) {
	store := newFakeIntentStore()
	old := time.Now().Add(-2 * time.Hour)
	_ = store.SaveIntent(context.Background(), Intent{ID: "a", Status: IntentPending, CreatedAt: old})
	_ = store.SaveIntent(context.Background(), Intent{ID: "b", Status: IntentCompleted, CreatedAt: old})
	_ = store.SaveIntent(context.Background(), Intent{ID: "c", Status: IntentPending, CreatedAt: time.Now()})

	n, err := store.ExpireOlderThan(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, IntentExpired, store.intents["a"].Status)
	assert.Equal(t, IntentCompleted, store.intents["b"].Status)
	assert.Equal(t, IntentPending, store.intents["c"].Status)
}
