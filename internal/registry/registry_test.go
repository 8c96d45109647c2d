package registry

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rBrown1405/zentry-pos-sub001/internal/identifier"
	"github.com/rBrown1405/zentry-pos-sub001/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAllocateFreeIdentifier(t *testing.T) {
	kv := store.NewMemoryKV()
	reg := New(kv, testLogger())

	code, err := reg.BusinessCode(context.Background(), "Demo Restaurant Group")
	require.NoError(t, err)
	assert.True(t, identifier.ValidBusinessCode(code))
	assert.Equal(t, "DEM", code[:3])
}

func TestAllocateRetriesOnCollision(t *testing.T) {
	kv := &occupyFirstKV{MemoryKV: store.NewMemoryKV(), occupied: 3}
	reg := New(kv, testLogger())

	code, err := reg.ConnectionCode(context.Background())
	require.NoError(t, err)
	assert.True(t, identifier.ValidConnectionCode(code))
	assert.Equal(t, 4, kv.checks)
}

// occupyFirstKV reports the first n existence checks as taken.
type occupyFirstKV struct {
	*store.MemoryKV
	occupied int
	checks   int
}

func (kv *occupyFirstKV) Exists(ctx context.Context, key string) (bool, error) {
	kv.checks++
	return kv.checks <= kv.occupied, nil
}

// alwaysTakenKV reports every identifier as taken.
type alwaysTakenKV struct {
	*store.MemoryKV
}

func (kv *alwaysTakenKV) Exists(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func TestAllocateExhaustsAfterBoundedRetries(t *testing.T) {
	kv := &alwaysTakenKV{MemoryKV: store.NewMemoryKV()}
	reg := New(kv, testLogger())

	_, err := reg.StaffID(context.Background(), "Alice Manager", "manager")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestMutateSuffixRewritesLastTwoCharacters(t *testing.T) {
	mutated := mutateSuffix("DEM1234")
	assert.Len(t, mutated, 7)
	assert.Equal(t, "DEM12", mutated[:5])
	assert.Regexp(t, `^[0-9]{2}$`, mutated[5:])

	assert.Regexp(t, `^[0-9]{2}$`, mutateSuffix("A"))
}
