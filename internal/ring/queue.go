// Package ring implements the per-shard bounded SPSC ring buffer used
// between the Ingestor (producer) and exactly one Worker (consumer). It is
// lock-free: the writer publishes a record only after storing its length
// with a release, and the reader observes readiness with an acquire load
// on that same length; neither side blocks the other.
package ring

import (
	"sync/atomic"
	"time"
	"unsafe"
)

const (
	// recordHeaderLen is msgType (1 byte, padded) + reserved (3 bytes) +
	// length (4 bytes), so the length word starts 8-byte aligned.
	recordHeaderLen = 8
	alignment       = 8
	paddingMsgType  = 0xFF
)

// HandlerResult tells Read whether to keep draining the ring or stop after
// the current record.
type HandlerResult int

const (
	// Continue tells Read to keep consuming ready records.
	Continue HandlerResult = iota
	// Stop tells Read to return after the current record.
	Stop
)

// Handler is invoked once per ready record in FIFO order.
type Handler func(msgType uint8, payload []byte) HandlerResult

// Queue is a bounded single-producer/single-consumer ring of opaque byte
// records. capacityBytes must be a power of two. Write must only ever be
// called from one goroutine at a time, and Read from (a different) one
// goroutine at a time; the two may run concurrently with each other.
type Queue struct {
	buf  []byte
	mask uint64

	tail atomic.Uint64 // next free byte offset; advanced only by the writer
	head atomic.Uint64 // next byte offset to consume; advanced only by the reader

	// dropped counts records WriteWithBackoff discarded after a timeout.
	dropped atomic.Uint64
}

// New allocates a ring buffer of capacityBytes bytes, which must be a
// power of two, and panics otherwise.
func New(capacityBytes int) *Queue {
	if capacityBytes <= 0 || capacityBytes&(capacityBytes-1) != 0 {
		panic("ring: capacity must be a power of two")
	}
	return &Queue{
		buf:  make([]byte, capacityBytes),
		mask: uint64(capacityBytes - 1),
	}
}

func align8(n int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

func (q *Queue) lengthPtr(idx int) *uint32 {
	off := (idx + 4) & int(q.mask)
	return (*uint32)(unsafe.Pointer(&q.buf[off]))
}

// Write attempts a single, non-blocking publish of one record. It returns
// false if there is not enough free space right now; callers implement
// their own retry/backoff policy, see WriteWithBackoff.
func (q *Queue) Write(msgType uint8, src []byte) bool {
	need := align8(recordHeaderLen + len(src))
	capacity := len(q.buf)

	tail := q.tail.Load()
	head := q.head.Load()
	free := uint64(capacity) - (tail - head)

	tailIdx := int(tail & q.mask)
	toEnd := capacity - tailIdx

	crossesWrap := need > toEnd
	totalNeed := uint64(need)
	if crossesWrap {
		totalNeed = uint64(toEnd) + uint64(need)
	}
	if totalNeed > free {
		return false
	}

	if crossesWrap {
		// Padding entry spans the tail to the end of the buffer; the
		// reader skips it without invoking the handler.
		q.buf[tailIdx] = paddingMsgType
		atomic.StoreUint32(q.lengthPtr(tailIdx), uint32(toEnd-recordHeaderLen))
		tail += uint64(toEnd)
		tailIdx = 0
	}

	q.buf[tailIdx] = msgType
	payloadStart := (tailIdx + recordHeaderLen) & int(q.mask)
	q.copyIn(payloadStart, src)
	// Release: the length store is the publish point. Everything written
	// above must be visible to the reader once it observes this length via
	// an acquire load.
	atomic.StoreUint32(q.lengthPtr(tailIdx), uint32(len(src)))

	q.tail.Store(tail + uint64(need))
	return true
}

// WriteWithBackoff retries Write under a spin/yield/sleep backoff strategy
// for up to timeout before giving up. On timeout it increments the
// dropped counter and returns false.
func (q *Queue) WriteWithBackoff(msgType uint8, src []byte, spins, yields int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if q.Write(msgType, src) {
			return true
		}
		for i := 0; i < spins; i++ {
			if q.Write(msgType, src) {
				return true
			}
		}
		for i := 0; i < yields; i++ {
			gosched()
			if q.Write(msgType, src) {
				return true
			}
		}
		if time.Now().After(deadline) {
			q.dropped.Add(1)
			return false
		}
		time.Sleep(time.Microsecond)
	}
}

// copyIn writes src into the ring starting at byte offset start, wrapping
// around the end of the backing buffer as needed.
func (q *Queue) copyIn(start int, src []byte) {
	n := copy(q.buf[start:], src)
	if n < len(src) {
		copy(q.buf[0:], src[n:])
	}
}

func (q *Queue) copyOut(start, length int) []byte {
	out := make([]byte, length)
	n := copy(out, q.buf[start:])
	if n < length {
		copy(out[n:], q.buf[0:])
	}
	return out
}

// Read drains ready records in FIFO order, invoking handler for each, until
// the ring is empty or handler returns Stop. It returns the number of
// records consumed.
func (q *Queue) Read(handler Handler) int {
	count := 0
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		if head == tail {
			return count
		}

		idx := int(head & q.mask)
		length := atomic.LoadUint32(q.lengthPtr(idx))
		msgType := q.buf[idx]
		recLen := align8(recordHeaderLen + int(length))

		if msgType == paddingMsgType {
			q.head.Store(head + uint64(recLen))
			continue
		}

		payloadStart := (idx + recordHeaderLen) & int(q.mask)
		payload := q.copyOut(payloadStart, int(length))

		result := handler(msgType, payload)
		q.head.Store(head + uint64(recLen))
		count++
		if result == Stop {
			return count
		}
	}
}

// Size returns a best-effort occupancy in bytes, for observability only.
func (q *Queue) Size() int {
	return int(q.tail.Load() - q.head.Load())
}

// Dropped returns the count of records WriteWithBackoff has discarded
// after a timeout.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Capacity returns the ring's fixed backing size in bytes.
func (q *Queue) Capacity() int {
	return len(q.buf)
}
