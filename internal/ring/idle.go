package ring

import "runtime"

// gosched yields the current goroutine to the scheduler. Split into its own
// function so the busy-spin/yield/sleep backoff in WriteWithBackoff reads
// as three named phases rather than inline runtime calls.
func gosched() {
	runtime.Gosched()
}
