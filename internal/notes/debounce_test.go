package notes_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/notes"
)

// recorder captures flushes with their order preserved.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) flush(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, content)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func TestDebouncer_CoalescesBurstIntoOneFlush(t *testing.T) {
	rec := &recorder{}
	d := notes.NewDebouncer(30*time.Millisecond, rec.flush)

	d.Edit("h")
	d.Edit("he")
	d.Edit("hello")

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"hello"}, rec.snapshot(), "only the latest value is written")

	// nothing else is pending
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestDebouncer_EditRestartsQuietWindow(t *testing.T) {
	rec := &recorder{}
	d := notes.NewDebouncer(50*time.Millisecond, rec.flush)

	d.Edit("one")
	time.Sleep(25 * time.Millisecond)
	d.Edit("two")
	time.Sleep(25 * time.Millisecond)
	// 50ms of wall time have passed but never 50ms of quiet
	assert.Empty(t, rec.snapshot())

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "two", rec.snapshot()[0])
}

func TestDebouncer_FlushForcesPendingWrite(t *testing.T) {
	rec := &recorder{}
	d := notes.NewDebouncer(time.Hour, rec.flush)

	d.Edit("pending")
	d.Flush()
	assert.Equal(t, []string{"pending"}, rec.snapshot())

	// flushing with nothing pending does not fire again
	d.Flush()
	assert.Len(t, rec.snapshot(), 1)
}

func TestDebouncer_StopDropsPendingWrite(t *testing.T) {
	rec := &recorder{}
	d := notes.NewDebouncer(20*time.Millisecond, rec.flush)

	d.Edit("discarded")
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot())

	// the debouncer is still usable afterwards
	d.Edit("kept")
	require.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "kept", rec.snapshot()[0])
}

func TestDebouncer_ZeroQuietFallsBackToDefault(t *testing.T) {
	d := notes.NewDebouncer(0, func(string) {})
	assert.NotNil(t, d)
}
