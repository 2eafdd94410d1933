package journal

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvolt/chatvolt-mcp/internal/tool"
	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	first, err := s.Record(ctx, protocol.CallEntry{Operation: "get_agent", Status: tool.StatusOK, StartedAt: base, DurationMS: 12})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = s.Record(ctx, protocol.CallEntry{
		Operation: "create_datasource", Status: tool.StatusError, Kind: tool.KindMissingArgument,
		Error: "'datastoreId', 'name' and 'text' are required arguments.", StartedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)

	entries, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "create_datasource", entries[0].Operation)
	assert.Equal(t, tool.KindMissingArgument, entries[0].Kind)
	assert.Equal(t, first.ID, entries[1].ID)
	assert.Equal(t, int64(12), entries[1].DurationMS)
	assert.True(t, base.Equal(entries[1].StartedAt))
}

func TestListFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for i, op := range []string{"get_agent", "get_agent", "list_agents", "get_agent"} {
		status := tool.StatusOK
		if i == 3 {
			status = tool.StatusError
		}
		_, err := s.Record(ctx, protocol.CallEntry{Operation: op, Status: status, StartedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	got, err := s.List(ctx, Filter{Operation: "get_agent"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = s.List(ctx, Filter{Status: tool.StatusError})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.List(ctx, Filter{Since: base.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, base.Add(3*time.Hour).Equal(got[0].StartedAt))

	n, err := s.Count(ctx, Filter{Operation: "get_agent", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, _ = s.Record(ctx, protocol.CallEntry{Operation: "old", Status: tool.StatusOK, StartedAt: now.Add(-48 * time.Hour)})
	_, _ = s.Record(ctx, protocol.CallEntry{Operation: "new", Status: tool.StatusOK, StartedAt: now})

	n, err := s.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Operation)
}

func TestObserve(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Observe(context.Background(), tool.CallRecord{
				Operation: "get_agent",
				Status:    tool.StatusOK,
				StartedAt: time.Now(),
				Duration:  5 * time.Millisecond,
			})
		}()
	}
	wg.Wait()
	s.Flush()

	n, err := s.Count(context.Background(), Filter{Operation: "get_agent"})
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestObserve_CanceledContextStillRecords(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.Observe(ctx, tool.CallRecord{Operation: "get_agent", Status: tool.StatusOK, StartedAt: time.Now()})
	s.Flush()

	n, err := s.Count(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClose_WritesQueuedCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path, nil)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		s.Observe(context.Background(), tool.CallRecord{Operation: "list_agents", Status: tool.StatusOK, StartedAt: time.Now()})
	}
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	// Observing after Close drops the call instead of panicking.
	s.Observe(context.Background(), tool.CallRecord{Operation: "list_agents", Status: tool.StatusOK})

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count(context.Background(), Filter{Operation: "list_agents"})
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestObserve_DoesNotWaitForWriter(t *testing.T) {
	s := newTestStore(t)

	// Hold the only connection so the writer cannot make progress.
	conn, err := s.db.Conn(context.Background())
	require.NoError(t, err)

	returned := make(chan struct{})
	go func() {
		for i := 0; i < queueSize+10; i++ {
			s.Observe(context.Background(), tool.CallRecord{Operation: "get_agent", Status: tool.StatusOK, StartedAt: time.Now()})
		}
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(5 * time.Second):
		t.Fatal("Observe blocked while the writer was stalled")
	}
	require.NoError(t, conn.Close())
	s.Flush()
}
