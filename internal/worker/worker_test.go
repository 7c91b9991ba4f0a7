package worker_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekyc-engine/internal/ring"
	"ekyc-engine/internal/store"
	"ekyc-engine/internal/transport"
	"ekyc-engine/internal/transport/memory"
	"ekyc-engine/internal/wire"
	"ekyc-engine/internal/worker"
)

type fakeStore struct {
	users     map[string]bool
	existsErr error
}

func newFakeStore() *fakeStore { return &fakeStore{users: map[string]bool{}} }

func (f *fakeStore) ExistsUser(ctx context.Context, id, name string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.users[id+"|"+name], nil
}

func (f *fakeStore) InsertUser(ctx context.Context, fields store.UserFields) (bool, error) {
	k := fields.IdentityNumber + "|" + fields.Name
	if f.users[k] {
		return false, nil
	}
	f.users[k] = true
	return true, nil
}

func (f *fakeStore) Close() error { return nil }

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFrame(t *testing.T, q *ring.Queue, fields wire.Fields) {
	t.Helper()
	buf := make([]byte, wire.FrameLength)
	n, err := wire.Encode(buf, fields)
	require.NoError(t, err)
	require.True(t, q.Write(1, buf[:n]))
}

func TestWorker_VerificationRequest_PublishesReply(t *testing.T) {
	q := ring.New(4096)
	s := newFakeStore()
	s.users["ID1|Alice"] = true
	recorder := memory.NewRecorder()

	writeFrame(t, q, wire.Fields{Msg: wire.MsgVerificationRequest, ID: "ID1", Name: "Alice", Verified: "false"})

	w := worker.New(0, q, s, recorder, silentLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	payloads := recorder.Payloads()
	require.Len(t, payloads, 1)
	frame, err := wire.Decode(payloads[0])
	require.NoError(t, err)
	assert.Equal(t, wire.MsgVerificationResponse, frame.Msg())
	verified, err := frame.Verified()
	require.NoError(t, err)
	assert.True(t, verified)

	counters := w.Snapshot()
	assert.EqualValues(t, 0, counters.Errors)
	assert.EqualValues(t, 1, counters.RepliesSent)
}

func TestWorker_MalformedRecord_CountsErrorNoReply(t *testing.T) {
	q := ring.New(4096)
	s := newFakeStore()
	recorder := memory.NewRecorder()

	require.True(t, q.Write(1, []byte("short")))

	w := worker.New(0, q, s, recorder, silentLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	assert.Empty(t, recorder.Payloads())
	counters := w.Snapshot()
	assert.EqualValues(t, 1, counters.Errors)
}

func TestWorker_PublishFailure_CountsRepliesFailed(t *testing.T) {
	q := ring.New(4096)
	s := newFakeStore()
	recorder := memory.NewRecorder()
	recorder.Result = transport.PublishNotConnected

	writeFrame(t, q, wire.Fields{Msg: wire.MsgVerificationRequest, ID: "ID2", Name: "Bob", Verified: "false"})

	w := worker.New(0, q, s, recorder, silentLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	counters := w.Snapshot()
	assert.EqualValues(t, 1, counters.RepliesFailed)
	assert.EqualValues(t, 0, counters.RepliesSent)
}

func TestWorker_ConsecutiveErrors_TripsBreakerAndCooldown(t *testing.T) {
	q := ring.New(65536)
	s := newFakeStore()
	recorder := memory.NewRecorder()

	for i := 0; i < 11; i++ {
		require.True(t, q.Write(1, []byte("short")))
	}

	cooldown := 20 * time.Millisecond
	w := worker.New(0, q, s, recorder, silentLogger(), worker.WithCooldown(cooldown))

	start := time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)
	elapsed := time.Since(start)

	// The 11th consecutive failure trips the breaker and sleeps for the
	// configured cooldown before resuming to drain any remaining records.
	assert.GreaterOrEqual(t, elapsed, cooldown)
	counters := w.Snapshot()
	assert.EqualValues(t, 11, counters.Errors)
}
