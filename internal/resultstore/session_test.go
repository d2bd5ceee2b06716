package resultstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLastResultRoundTrip(t *testing.T) {
	ctx := context.Background()
	sess := NewSession(NewMemoryStore(), "visitor-1")

	_, _, err := sess.LastResult(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, sess.SetLastResult(ctx, "a-1", []byte(`{"analysis_id":"a-1","score":25}`)))
	id, raw, err := sess.LastResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a-1", id)
	assert.JSONEq(t, `{"analysis_id":"a-1","score":25}`, string(raw))

	require.NoError(t, sess.SetLastResult(ctx, "a-2", []byte(`{"analysis_id":"a-2","score":70}`)))
	id, raw, err = sess.LastResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a-2", id)
	assert.Contains(t, string(raw), "a-2")
}

func TestSessionRejectsInvalidJSON(t *testing.T) {
	sess := NewSession(NewMemoryStore(), "visitor-1")
	assert.Error(t, sess.SetLastResult(context.Background(), "a-1", []byte("not json")))
}

func TestSessionsAreIsolatedPerVisitor(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	one := NewSession(store, "visitor-1")
	two := NewSession(store, "visitor-2")

	require.NoError(t, one.SetLastResult(ctx, "a-1", []byte(`{}`)))
	_, _, err := two.LastResult(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionWithoutVisitor(t *testing.T) {
	ctx := context.Background()
	sess := NewSession(NewMemoryStore(), "  ")

	_, _, err := sess.LastResult(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, sess.SetLastResult(ctx, "a-1", []byte(`{}`)))
	assert.Error(t, sess.SetPaymentSuccess(ctx, PaymentSuccess{OrderID: "o"}))
}

func TestSessionPaymentSuccessAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := NewSession(store, "visitor-1")

	rec := PaymentSuccess{OrderID: "ORDER-1", AnalysisID: "a-1", DownloadURL: "/api/download-report/a-1", CustomerEmail: "kunde@example.de"}
	require.NoError(t, sess.SetPaymentSuccess(ctx, rec))
	require.NoError(t, sess.SetCheckout(ctx, Checkout{AnalysisID: "a-1", Step: "payment"}))
	require.NoError(t, sess.SetLastResult(ctx, "a-1", []byte(`{}`)))

	got, err := sess.PaymentSuccess(ctx)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	require.NoError(t, sess.Clear(ctx))
	assert.Equal(t, 0, store.Len())
}

type countingStore struct {
	*MemoryStore
	gets     int
	getManys int
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.gets++
	return s.MemoryStore.Get(ctx, key)
}

func (s *countingStore) GetMany(ctx context.Context, keys ...string) ([][]byte, error) {
	s.getManys++
	return s.MemoryStore.GetMany(ctx, keys...)
}

func TestSessionLastResultReadsBothSlotsAtOnce(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: NewMemoryStore()}
	sess := NewSession(store, "visitor-1")
	require.NoError(t, sess.SetLastResult(ctx, "a-1", []byte(`{"score":25}`)))

	id, _, err := sess.LastResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a-1", id)
	assert.Equal(t, 0, store.gets)
	assert.Equal(t, 1, store.getManys)
}

func TestSessionLastResultWithoutID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := NewSession(store, "visitor-1")
	require.NoError(t, store.Set(ctx, Entry{Key: sess.key(SlotAnalysisResult), Value: []byte(`{"score":40}`)}))

	id, raw, err := sess.LastResult(ctx)
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.JSONEq(t, `{"score":40}`, string(raw))
}
