package console

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatchLog struct {
	mu    sync.Mutex
	terms []string
	seqs  []uint64
}

func (d *dispatchLog) record(term string, seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.terms = append(d.terms, term)
	d.seqs = append(d.seqs, seq)
}

func (d *dispatchLog) snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.terms))
	copy(out, d.terms)
	return out
}

func TestDebounceCoalescesKeystrokes(t *testing.T) {
	var log dispatchLog
	s := NewSearcherWithDelay(20*time.Millisecond, log.record)

	s.Input("k")
	s.Input("ko")
	s.Input("kow")

	require.Eventually(t, func() bool {
		return len(log.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	// Only the final term fires; intermediate keystrokes cancel the timer.
	assert.Equal(t, []string{"kow"}, log.snapshot())

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, log.snapshot(), 1)
}

func TestFlushBypassesQuietPeriod(t *testing.T) {
	var log dispatchLog
	s := NewSearcherWithDelay(time.Hour, log.record)

	s.Input("pending")
	s.Flush("now")

	assert.Equal(t, []string{"now"}, log.snapshot())
}

func TestCancelDropsPendingDispatch(t *testing.T) {
	var log dispatchLog
	s := NewSearcherWithDelay(20*time.Millisecond, log.record)

	s.Input("abc")
	s.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, log.snapshot())
}

func TestStaleSequenceDiscarded(t *testing.T) {
	var log dispatchLog
	s := NewSearcherWithDelay(time.Millisecond, log.record)

	s.Flush("first")
	firstSeq := func() uint64 {
		log.mu.Lock()
		defer log.mu.Unlock()
		return log.seqs[0]
	}()
	assert.True(t, s.Current(firstSeq))

	s.Flush("second")
	// The first dispatch is now stale; its completion must be dropped.
	assert.False(t, s.Current(firstSeq))

	secondSeq := func() uint64 {
		log.mu.Lock()
		defer log.mu.Unlock()
		return log.seqs[1]
	}()
	assert.True(t, s.Current(secondSeq))
}

func TestCancelInvalidatesInFlight(t *testing.T) {
	var log dispatchLog
	s := NewSearcherWithDelay(time.Millisecond, log.record)

	s.Flush("only")
	seq := func() uint64 {
		log.mu.Lock()
		defer log.mu.Unlock()
		return log.seqs[0]
	}()
	require.True(t, s.Current(seq))

	s.Cancel()
	assert.False(t, s.Current(seq))
}
