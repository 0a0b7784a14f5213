package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAllocateFirstCode(t *testing.T) {
	s := newTestStore(t)

	code, err := s.AllocateChecklistCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00000001", code)

	code, err = s.AllocateChecklistCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00000002", code)
}

func TestAllocateConcurrentContiguous(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const n = 64
	codes := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code, err := s.AllocateChecklistCode(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			codes[i] = code
		}(i)
	}
	wg.Wait()

	// N callers receive N distinct contiguous values: no duplicates, no gaps.
	sort.Strings(codes)
	for i, code := range codes {
		assert.Equal(t, fmt.Sprintf("%08d", i+1), code)
		assert.Len(t, code, 8)
	}
}

func TestAllocateSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/pmtrack.db"

	s, err := Open(path)
	require.NoError(t, err)
	code, err := s.AllocateChecklistCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00000001", code)
	require.NoError(t, s.Close())

	// The counter is storage-backed, not process state.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	code, err = s2.AllocateChecklistCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "00000002", code)
}

func TestPeekDoesNotConsume(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	code, err := s.PeekChecklistCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "00000001", code)

	// Peek before any allocation must not create the counter row.
	code, err = s.AllocateChecklistCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "00000001", code)

	code, err = s.PeekChecklistCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "00000002", code)
}
