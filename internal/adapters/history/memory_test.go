package history

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mikey/interview-scheduler/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryArchiveRecordsPerSession(t *testing.T) {
	archive := NewMemoryArchive(zap.NewNop())
	defer archive.Stop()

	ctx := context.Background()
	require.NoError(t, archive.Record(ctx, "s1", core.Event{Kind: core.EventEmailReceived, From: "a@x.com"}))
	require.NoError(t, archive.Record(ctx, "s1", core.Event{Kind: core.EventEmailSent, To: "a@x.com"}))
	require.NoError(t, archive.Record(ctx, "s2", core.Event{Kind: core.EventCreated, EventID: "ev-1"}))

	s1 := archive.Events("s1")
	require.Len(t, s1, 2)
	assert.Equal(t, core.EventEmailReceived, s1[0].Kind)
	assert.Equal(t, core.EventEmailSent, s1[1].Kind)

	s2 := archive.Events("s2")
	require.Len(t, s2, 1)
	assert.Equal(t, "ev-1", s2[0].EventID)

	assert.Empty(t, archive.Events("unknown"))
}

func TestMemoryArchiveEventsReturnsCopy(t *testing.T) {
	archive := NewMemoryArchive(zap.NewNop())

	ctx := context.Background()
	require.NoError(t, archive.Record(ctx, "s1", core.Event{Kind: core.EventEmailSent, Subject: "original"}))

	events := archive.Events("s1")
	events[0].Subject = "mutated"

	assert.Equal(t, "original", archive.Events("s1")[0].Subject)
}

func TestMemoryArchiveConcurrentRecords(t *testing.T) {
	archive := NewMemoryArchive(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = archive.Record(context.Background(), "s1", core.Event{
					Kind: core.EventEmailReceived,
					At:   time.Now().UTC(),
				})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, archive.Events("s1"), 8*50)
}
