package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/mailbox/pkg/mailbox/store"
)

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	st := newSQLiteStore(t)
	ctx := context.Background()

	sentAt := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, st.Save(ctx, "box", store.Record{Key: "b", Payload: []byte("2"), SentAt: sentAt}))
	require.NoError(t, st.Save(ctx, "box", store.Record{Key: "a", Payload: []byte("1"), SentAt: sentAt}))

	records, err := st.LoadAll(ctx, "box")
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Ordered by key regardless of insert order.
	assert.Equal(t, "a", records[0].Key)
	assert.Equal(t, []byte("1"), records[0].Payload)
	assert.True(t, records[0].SentAt.Equal(sentAt))
	assert.Equal(t, "b", records[1].Key)
}

func TestSQLiteStore_SaveUpserts(t *testing.T) {
	st := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, "box", store.Record{Key: "k", Payload: []byte("old"), SentAt: time.Now()}))
	require.NoError(t, st.Save(ctx, "box", store.Record{Key: "k", Payload: []byte("new"), SentAt: time.Now()}))

	records, err := st.LoadAll(ctx, "box")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []byte("new"), records[0].Payload)
}

func TestSQLiteStore_BoxesAreIsolated(t *testing.T) {
	st := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, "one", store.Record{Key: "k", Payload: []byte("1"), SentAt: time.Now()}))
	require.NoError(t, st.Save(ctx, "two", store.Record{Key: "k", Payload: []byte("2"), SentAt: time.Now()}))

	records, err := st.LoadAll(ctx, "one")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []byte("1"), records[0].Payload)
}

func TestSQLiteStore_DeleteAndClear(t *testing.T) {
	st := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, "box", store.Record{Key: "a", Payload: []byte("1"), SentAt: time.Now()}))
	require.NoError(t, st.Save(ctx, "box", store.Record{Key: "b", Payload: []byte("2"), SentAt: time.Now()}))

	require.NoError(t, st.Delete(ctx, "box", "a"))
	records, err := st.LoadAll(ctx, "box")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0].Key)

	// Absent keys delete cleanly.
	assert.NoError(t, st.Delete(ctx, "box", "missing"))

	require.NoError(t, st.Clear(ctx, "box"))
	records, err = st.LoadAll(ctx, "box")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStore_EmptyBoxName(t *testing.T) {
	st := newSQLiteStore(t)
	err := st.Save(context.Background(), "", store.Record{Key: "k"})
	assert.ErrorIs(t, err, store.ErrEmptyBox)
}

func TestSQLiteStore_Closed(t *testing.T) {
	st := newSQLiteStore(t)
	require.NoError(t, st.Close())

	ctx := context.Background()
	assert.ErrorIs(t, st.Save(ctx, "box", store.Record{Key: "k"}), store.ErrClosed)
	assert.ErrorIs(t, st.Delete(ctx, "box", "k"), store.ErrClosed)
	assert.ErrorIs(t, st.Clear(ctx, "box"), store.ErrClosed)

	_, err := st.LoadAll(ctx, "box")
	assert.ErrorIs(t, err, store.ErrClosed)

	// Double close is a no-op.
	assert.NoError(t, st.Close())
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailbox.db")
	ctx := context.Background()

	first, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "box", store.Record{Key: "k", Payload: []byte("kept"), SentAt: time.Now()}))
	require.NoError(t, first.Close())

	second, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	records, err := second.LoadAll(ctx, "box")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []byte("kept"), records[0].Payload)
}
