package report

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/santorini/internal/game/core"
	"github.com/mitchelldurbincs/santorini/internal/testutil"
)

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	id := uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	assert.Equal(t, "game-240309140507-1b4e28ba.log", FileName(at, id))
}

func TestNew(t *testing.T) {
	m := testutil.OpeningMatch(t)
	require.NoError(t, m.ApplyMove(core.NewMoveCommand(testutil.Blue, 1, testutil.C(1, 1), testutil.C(2, 2))))

	r := New(testutil.White, m.Snapshot())
	assert.Equal(t, "test-match", r.GameID)
	assert.Equal(t, testutil.White, r.Player)
	assert.Empty(t, r.Winner)
	assert.Equal(t, 1, r.Turns)
	assert.False(t, r.ReportedAt.IsZero())
}

func TestFileWriter_WriteAndRead(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	fw, err := NewFileWriter(dir, testutil.NopLogger())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`game-\d{12}-[0-9a-f]{8}\.log$`), fw.Path())
	assert.Equal(t, dir, filepath.Dir(fw.Path()))

	snap := testutil.OpeningMatch(t).Snapshot()
	other := snap
	other.GameID = "other-game"

	ctx := context.Background()
	require.NoError(t, fw.Write(ctx, New(testutil.Blue, snap)))
	require.NoError(t, fw.Write(ctx, New(testutil.White, snap)))
	require.NoError(t, fw.Write(ctx, New(testutil.Blue, other)))

	stats := fw.Stats()
	assert.Equal(t, int64(3), stats.TotalWritten)
	assert.Positive(t, stats.BytesWritten)
	require.NoError(t, fw.Close())

	all, err := Read(fw.Path(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := Read(fw.Path(), "test-match")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, testutil.Blue, mine[0].Player)
	assert.Equal(t, testutil.White, mine[1].Player)
	assert.Equal(t, snap, mine[0].Snapshot)
}

func TestFileWriter_Closed(t *testing.T) {
	fw, err := NewFileWriter(t.TempDir(), testutil.NopLogger())
	require.NoError(t, err)
	require.NoError(t, fw.Close())
	require.NoError(t, fw.Close(), "closing twice is allowed")

	err = fw.Write(context.Background(), Report{GameID: "g"})
	assert.ErrorIs(t, err, ErrWriterClosed)
}

func TestFileWriter_CancelledContext(t *testing.T) {
	fw, err := NewFileWriter(t.TempDir(), testutil.NopLogger())
	require.NoError(t, err)
	defer fw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, fw.Write(ctx, Report{GameID: "g"}), context.Canceled)
	assert.Zero(t, fw.Stats().TotalWritten)
}

func TestFileWriter_ConcurrentWrites(t *testing.T) {
	fw, err := NewFileWriter(t.TempDir(), testutil.NopLogger())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, fw.Write(context.Background(), Report{GameID: "g", Turns: i}))
		}()
	}
	wg.Wait()
	require.NoError(t, fw.Close())

	reports, err := Read(fw.Path(), "g")
	require.NoError(t, err)
	assert.Len(t, reports, 20)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.log"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "broken.log")
	require.NoError(t, os.WriteFile(path, []byte("{\"gameId\":\"g\"}\n\nnot json\n"), 0644))
	_, err = Read(path, "")
	assert.ErrorContains(t, err, "failed to unmarshal report")
}

func TestMemory(t *testing.T) {
	var mem Memory
	require.NoError(t, mem.Write(context.Background(), Report{Player: "a"}))
	require.NoError(t, mem.Write(context.Background(), Report{Player: "b"}))

	got := mem.Reports()
	require.Len(t, got, 2)
	got[0].Player = "changed"
	assert.Equal(t, "a", mem.Reports()[0].Player)

	require.NoError(t, mem.Close())
	assert.ErrorIs(t, mem.Write(context.Background(), Report{}), ErrWriterClosed)
	assert.NoError(t, Nop{}.Write(context.Background(), Report{}))
}
