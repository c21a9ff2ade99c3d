package ledger

import (
	stderrors "errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/ffi-omnibus/errors"
)

func violation(t *testing.T, fn func()) *errors.Error {
	t.Helper()
	var got *errors.Error
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a contract violation")
			err, ok := r.(*errors.Error)
			require.True(t, ok, "recovered %T", r)
			got = err
		}()
		fn()
	}()
	return got
}

func TestLedger_AcquireRelease(t *testing.T) {
	l := New[uintptr]("c", nil)
	assert.Equal(t, "c", l.Boundary())

	l.Acquire(0x1000, KindText, 31)
	l.Acquire(0x2000, KindStore, 0)
	assert.Equal(t, 2, l.Live())
	assert.Equal(t, 1, l.LiveKind(KindText))
	assert.Equal(t, 1, l.LiveKind(KindStore))

	alloc := l.Release("release_owned_text", 0x1000)
	assert.Equal(t, Allocation{Kind: KindText, Size: 31}, alloc)
	assert.Equal(t, 1, l.Live())

	l.Release("store_free", 0x2000)
	assert.Equal(t, 0, l.Live())
	assert.Equal(t, Stats{Acquired: 2, Released: 2}, l.Stats())
}

func TestLedger_DoubleRelease(t *testing.T) {
	l := New[uintptr]("c", nil)
	l.Acquire(0x1000, KindText, 8)
	l.Release("release_owned_text", 0x1000)

	err := violation(t, func() { l.Release("release_owned_text", 0x1000) })
	assert.Equal(t, errors.KindDoubleRelease, err.Kind)
	assert.Equal(t, "release_owned_text", err.Op)
	assert.Equal(t, uint64(1), l.Stats().Released, "failed release is not counted")
}

func TestLedger_UnknownRelease(t *testing.T) {
	l := New[uintptr]("c", nil)
	err := violation(t, func() { l.Release("release_owned_text", 0xdead) })
	assert.Equal(t, errors.KindUnknownAllocation, err.Kind)
}

func TestLedger_AddressReuse(t *testing.T) {
	l := New[uintptr]("c", nil)
	l.Acquire(0x1000, KindText, 8)
	l.Release("release_owned_text", 0x1000)

	// An allocator may hand the same address out again after a release.
	l.Acquire(0x1000, KindText, 8)
	l.Release("release_owned_text", 0x1000)
	assert.Equal(t, 0, l.Live())

	l.Acquire(0x3000, KindText, 8)
	err := violation(t, func() { l.Acquire(0x3000, KindText, 8) })
	assert.Equal(t, errors.KindAllocation, err.Kind)
}

func TestLedger_Check(t *testing.T) {
	l := New[uint32]("wasm", nil)
	l.Acquire(7, KindStore, 0)
	assert.Equal(t, KindStore, l.Check("store_query", 7).Kind)

	l.Release("store_free", 7)
	err := violation(t, func() { l.Check("store_query", 7) })
	assert.Equal(t, errors.KindInvalidHandle, err.Kind)
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseHandle, Kind: errors.KindInvalidHandle}))
}

func TestLedger_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "c")
	require.NoError(t, err)

	l := New[uintptr]("c", m)
	l.Acquire(1, KindText, 4)
	l.Acquire(2, KindText, 4)
	l.Acquire(3, KindStore, 0)
	l.Release("release_owned_text", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AcquiredTotal(KindText)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReleasedTotal(KindText)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveGauge(KindText)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveGauge(KindStore)))

	count, err := testutil.GatherAndCount(reg, "omnibus_allocations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per kind")
}

func TestNewMetrics_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg, "wasm")
	require.NoError(t, err)
	second, err := NewMetrics(reg, "wasm")
	require.NoError(t, err)

	first.Acquired(KindText)
	second.Acquired(KindText)
	assert.Equal(t, 2.0, testutil.ToFloat64(first.AcquiredTotal(KindText)))

	other, err := NewMetrics(reg, "c")
	require.NoError(t, err)
	other.Acquired(KindText)
	assert.Equal(t, 1.0, testutil.ToFloat64(other.AcquiredTotal(KindText)))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Acquired(KindText)
		m.Released(KindText)
	})

	unregistered, err := NewMetrics(nil, "c")
	require.NoError(t, err)
	unregistered.Acquired(KindStore)
	assert.Equal(t, 1.0, testutil.ToFloat64(unregistered.LiveGauge(KindStore)))
}

func TestLedger_ReleasedWindowBounded(t *testing.T) {
	l := New[uintptr]("c", nil)

	const cycles = 100_000
	for i := uintptr(1); i <= cycles; i++ {
		l.Acquire(i, KindText, 1)
		l.Release("release", i)
	}
	assert.Equal(t, ReleasedWindow, l.Remembered())
	assert.Equal(t, uint64(cycles), l.Stats().Released)

	err := violation(t, func() { l.Release("release", cycles) })
	assert.Equal(t, errors.KindDoubleRelease, err.Kind)

	err = violation(t, func() { l.Release("release", 1) })
	assert.Equal(t, errors.KindUnknownAllocation, err.Kind)
}

func TestLedger_ReleasedWindowReacquired(t *testing.T) {
	l := New[uintptr]("c", nil)

	// 0x10 keeps getting reused while other keys push its old slots out.
	for i := uintptr(0); i < 3*ReleasedWindow; i++ {
		l.Acquire(0x10, KindText, 1)
		l.Release("release", 0x10)
		l.Acquire(0x1000+i, KindText, 1)
		l.Release("release", 0x1000+i)
	}
	assert.LessOrEqual(t, l.Remembered(), ReleasedWindow)

	err := violation(t, func() { l.Release("release", 0x10) })
	assert.Equal(t, errors.KindDoubleRelease, err.Kind)
}

func TestLedger_SetMetricsSeedsLive(t *testing.T) {
	l := New[uintptr]("c", nil)
	l.Acquire(0x1000, KindText, 4)
	l.Acquire(0x2000, KindText, 4)

	m, err := NewMetrics(prometheus.NewRegistry(), "c")
	require.NoError(t, err)
	l.SetMetrics(m)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LiveGauge(KindText)))

	l.Release("release", 0x1000)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LiveGauge(KindText)))

	l.Release("release", 0x2000)
	fresh, err := NewMetrics(prometheus.NewRegistry(), "c")
	require.NoError(t, err)
	fresh.LiveGauge(KindText).Set(7)
	l.SetMetrics(fresh)
	assert.Equal(t, 0.0, testutil.ToFloat64(fresh.LiveGauge(KindText)))
}
