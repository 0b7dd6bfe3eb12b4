package journal

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prolock/prolock-controller/internal/domain/access"
)

// openTestJournal opens a journal in a temp directory and closes it on cleanup.
func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, j.Close())
	})

	return j
}

// TestJournal_RecordAndRecent round-trips entries and orders them newest first.
func TestJournal_RecordAndRecent(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	first := Entry{
		At:          time.UnixMilli(1000).UTC(),
		Station:     "lab-204-door",
		Channel:     access.ChannelFingerprint,
		RawKey:      "7",
		SubjectName: "Maria Santos",
		Decision:    DecisionCheckedIn,
		Message:     "Welcome, Maria Santos! Door unlocked.",
	}
	require.NoError(t, j.Record(ctx, first))

	second := Entry{
		At:       time.UnixMilli(2000).UTC(),
		Station:  "lab-204-door",
		Channel:  access.ChannelRFID,
		RawKey:   "04a3b2c1",
		Decision: DecisionUnknown,
		Message:  "Card is not registered.",
	}
	require.NoError(t, j.Record(ctx, second))

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	require.Equal(t, DecisionUnknown, entries[0].Decision)
	require.Equal(t, DecisionCheckedIn, entries[1].Decision)
	require.NotEmpty(t, entries[0].ID)
	require.Equal(t, access.ChannelFingerprint, entries[1].Channel)
	require.Equal(t, first.At, entries[1].At)
}

// TestJournal_FillsDefaults generates an ID and timestamp when missing.
func TestJournal_FillsDefaults(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, Entry{
		Station:  "lab-204-door",
		Channel:  access.ChannelFingerprint,
		RawKey:   "7",
		Decision: DecisionDenied,
		Message:  "Access denied: outside of allowed schedule.",
	}))

	entries, err := j.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotEmpty(t, entries[0].ID)
	require.False(t, entries[0].At.IsZero())
}

// TestJournal_ConcurrentWriters exercises the single-writer queue from
// multiple goroutines, mirroring the two scan pipelines.
func TestJournal_ConcurrentWriters(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	const writers = 8

	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			entry := Entry{
				Station:  "lab-204-door",
				Channel:  access.ChannelRFID,
				RawKey:   "card",
				Decision: DecisionDenied,
				Message:  "denied",
			}
			require.NoError(t, j.Record(ctx, entry))
		}(i)
	}

	wg.Wait()

	entries, err := j.Recent(ctx, writers*2)
	require.NoError(t, err)
	require.Len(t, entries, writers)
}
