package ring

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := New(1024)
	var want [][]byte
	for i := 0; i < 20; i++ {
		rec := []byte(fmt.Sprintf("record-%02d", i))
		want = append(want, rec)
		require.True(t, q.Write(1, rec))
	}

	var got [][]byte
	n := q.Read(func(msgType uint8, payload []byte) HandlerResult {
		assert.Equal(t, uint8(1), msgType)
		cp := append([]byte(nil), payload...)
		got = append(got, cp)
		return Continue
	})

	assert.Equal(t, len(want), n)
	assert.Equal(t, want, got)
}

func TestQueue_CapacityBound(t *testing.T) {
	q := New(128)
	written := 0
	for i := 0; i < 100; i++ {
		if q.Write(1, []byte("x")) {
			written++
		} else {
			break
		}
	}
	require.Greater(t, written, 0)
	assert.LessOrEqual(t, q.Size(), q.Capacity())

	consumed := q.Read(func(uint8, []byte) HandlerResult { return Continue })
	assert.Equal(t, written, consumed)
	assert.Equal(t, 0, q.Size())
}

func TestQueue_HandlerStop(t *testing.T) {
	q := New(1024)
	for i := 0; i < 5; i++ {
		require.True(t, q.Write(1, []byte{byte(i)}))
	}
	seen := 0
	n := q.Read(func(uint8, []byte) HandlerResult {
		seen++
		if seen == 2 {
			return Stop
		}
		return Continue
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, q.Size()/align8(recordHeaderLen+1))
}

func TestQueue_WrapAroundInsertsPadding(t *testing.T) {
	// Small ring forces a wraparound quickly: two records of ~24 bytes each
	// fill most of a 64-byte ring, so the third write must wrap.
	q := New(64)
	rec := make([]byte, 16)
	for i := range rec {
		rec[i] = 'a'
	}
	require.True(t, q.Write(1, rec)) // consumes 24 bytes (8 hdr + 16 payload)
	require.True(t, q.Write(1, rec)) // consumes another 24, tail at 48

	// Drain the first record only, freeing 24 bytes at the head but leaving
	// the second in place, so the next write must skip past it and wrap.
	first := 0
	q.Read(func(msgType uint8, payload []byte) HandlerResult {
		first++
		return Stop
	})
	require.Equal(t, 1, first)

	rec2 := []byte("wraps!!!!") // 9 bytes: needs a 24-byte slot, more than the
	// 16 bytes left before the buffer end, forcing a wraparound
	ok := q.Write(2, rec2)
	require.True(t, ok)

	var payloads [][]byte
	var types []uint8
	q.Read(func(msgType uint8, payload []byte) HandlerResult {
		types = append(types, msgType)
		payloads = append(payloads, append([]byte(nil), payload...))
		return Continue
	})
	require.Len(t, payloads, 2)
	assert.Equal(t, rec, payloads[0])
	assert.Equal(t, rec2, payloads[1])
	assert.NotContains(t, types, uint8(paddingMsgType))
}

func TestQueue_ConcurrentSPSC_NoTear(t *testing.T) {
	q := New(1 << 16)
	const total = 5000
	sizes := []int{1, 7, 8, 9, 63, 64, 65, 127, 200}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			size := sizes[i%len(sizes)]
			rec := make([]byte, size)
			for j := range rec {
				rec[j] = byte(i)
			}
			for !q.Write(1, rec) {
				time.Sleep(time.Microsecond)
			}
		}
	}()

	received := 0
	go func() {
		defer wg.Done()
		for received < total {
			q.Read(func(msgType uint8, payload []byte) HandlerResult {
				size := sizes[received%len(sizes)]
				if len(payload) != size {
					t.Errorf("torn read: want len %d got %d", size, len(payload))
				}
				want := byte(received)
				for _, b := range payload {
					if b != want {
						t.Errorf("torn read: payload content mismatch at record %d", received)
						break
					}
				}
				received++
				return Continue
			})
			if received < total {
				time.Sleep(time.Microsecond)
			}
		}
	}()

	wg.Wait()
	assert.Equal(t, total, received)
}

func TestQueue_WriteWithBackoff_DropsOnTimeout(t *testing.T) {
	q := New(64) // tiny, fills after one record
	require.True(t, q.Write(1, make([]byte, 32)))

	ok := q.WriteWithBackoff(1, make([]byte, 32), 2, 2, 5*time.Millisecond)
	assert.False(t, ok)
	assert.Equal(t, uint64(1), q.Dropped())
}

func TestNew_PanicsOnNonPowerOfTwo(t *testing.T) {
	assert.Panics(t, func() { New(100) })
}
