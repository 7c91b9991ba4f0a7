package engine_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ekyc-engine/internal/engine"
	"ekyc-engine/internal/ingest"
	"ekyc-engine/internal/store"
	"ekyc-engine/internal/transport/memory"
	"ekyc-engine/internal/wire"
)

type fakeStore struct {
	users map[string]bool
}

func newFakeStore() *fakeStore { return &fakeStore{users: map[string]bool{}} }

func (f *fakeStore) ExistsUser(ctx context.Context, id, name string) (bool, error) {
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

func TestEngine_StartProcessStop_RoundTrip(t *testing.T) {
	inbound := memory.NewBus(16)
	outbound := memory.NewBus(16)
	sub := memory.NewSubscriber(inbound)
	pub := memory.NewPublisher(outbound)
	s := newFakeStore()

	cfg := engine.Config{
		NumShards:       2,
		QueueCapacity:   4096,
		ShardPolicy:     engine.PolicyRoundRobin,
		IngestBackoff:   ingest.DefaultBackoff,
		StopGracePeriod: 100 * time.Millisecond,
	}
	e := engine.New(cfg, sub, pub, s, silentLogger())
	assert.Equal(t, engine.StateConstructed, e.State())

	e.Start()
	assert.Equal(t, engine.StateRunning, e.State())

	buf := make([]byte, wire.FrameLength)
	n, err := wire.Encode(buf, wire.Fields{Msg: wire.MsgVerificationRequest, ID: "ID1", Name: "Alice", Verified: "false"})
	require.NoError(t, err)
	inbound.Send(buf[:n])

	var reply []byte
	require.Eventually(t, func() bool {
		select {
		case reply = <-outbound.Chan():
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	frame, err := wire.Decode(reply)
	require.NoError(t, err)
	assert.Equal(t, wire.MsgVerificationResponse, frame.Msg())

	e.Stop()
	assert.Equal(t, engine.StateStopped, e.State())

	counters := e.Counters()
	assert.EqualValues(t, 1, counters.Received)
	assert.EqualValues(t, 1, counters.RepliesSent)
}
