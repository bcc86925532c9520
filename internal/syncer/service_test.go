package syncer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compazz/posbridge/internal/domain"
	"github.com/compazz/posbridge/internal/store"
)

type fakePusher struct {
	pushed []domain.SyncQueueItem
	// failTypes makes Push fail for matching item types
	failTypes map[string]bool
}

func (f *fakePusher) Name() string { return "fake" }

func (f *fakePusher) Push(_ context.Context, item domain.SyncQueueItem) error {
	if f.failTypes[item.Type] {
		return errors.New("backend rejected")
	}
	f.pushed = append(f.pushed, item)
	return nil
}

func newTestStore(t *testing.T) *store.LocalStore {
	t.Helper()
	s, err := store.NewLocalStore(filepath.Join(t.TempDir(), "posbridge.db"), 1)
	require.NoError(t, err)
	require.NoError(t, s.Init())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestDrainOncePushesInOrder(t *testing.T) {
	st := newTestStore(t)
	pusher := &fakePusher{}
	svc := NewService(st, pusher, nil)

	for _, name := range []string{"first", "second", "third"} {
		_, err := st.AddToSyncQueue(domain.SyncTypeStockAdjust, map[string]string{"name": name})
		require.NoError(t, err)
	}

	pushed := svc.DrainOnce(context.Background())
	assert.Equal(t, 3, pushed)

	require.Len(t, pusher.pushed, 3)
	assert.Contains(t, string(pusher.pushed[0].Payload), "first")
	assert.Contains(t, string(pusher.pushed[2].Payload), "third")

	items, err := st.GetSyncQueue()
	require.NoError(t, err)
	assert.Empty(t, items, "delivered items must leave the queue")
}

func TestDrainOnceKeepsFailedItems(t *testing.T) {
	st := newTestStore(t)
	pusher := &fakePusher{failTypes: map[string]bool{domain.SyncTypeSetting: true}}
	svc := NewService(st, pusher, nil)

	_, err := st.AddToSyncQueue(domain.SyncTypeSetting, map[string]string{"k": "v"})
	require.NoError(t, err)
	_, err = st.AddToSyncQueue(domain.SyncTypeStockAdjust, map[string]string{"sku": "X"})
	require.NoError(t, err)

	pushed := svc.DrainOnce(context.Background())
	assert.Equal(t, 1, pushed, "a failed item must not block later items")

	items, err := st.GetSyncQueue()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.SyncStatusFailed, items[0].Status)
	assert.Equal(t, 1, items[0].Attempts)
	assert.Equal(t, "backend rejected", items[0].LastError)

	// next pass retries and bumps the counter again
	svc.DrainOnce(context.Background())
	items, err = st.GetSyncQueue()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Attempts)
}

func TestDrainOnceMarksTransactionSynced(t *testing.T) {
	st := newTestStore(t)
	pusher := &fakePusher{}
	svc := NewService(st, pusher, nil)

	offlineID, err := st.StoreOfflineTransaction(domain.OfflineTransaction{OutletID: "o1", Total: 25})
	require.NoError(t, err)

	txns, err := st.GetOfflineTransactions()
	require.NoError(t, err)
	_, err = st.AddToSyncQueue(domain.SyncTypeTransaction, txns[0])
	require.NoError(t, err)

	pushed := svc.DrainOnce(context.Background())
	require.Equal(t, 1, pushed)

	txns, err = st.GetOfflineTransactions()
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, offlineID, txns[0].OfflineID)
	assert.Equal(t, domain.TransactionStatusSynced, txns[0].Status)
}

func TestDrainOnceEmptyQueue(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, &fakePusher{}, nil)
	assert.Zero(t, svc.DrainOnce(context.Background()))
}
