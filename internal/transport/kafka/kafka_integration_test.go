//go:build integration

package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"ekyc-engine/internal/transport"
	"ekyc-engine/internal/transport/kafka"
	"ekyc-engine/pkg/testutil/containers"
)

func createTopic(t *testing.T, brokers []string, topic string) {
	t.Helper()
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	require.NoError(t, err)
	defer client.Close()

	admin := kadm.NewClient(client)
	defer admin.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = admin.CreateTopics(ctx, 1, 1, nil, topic)
	require.NoError(t, err)
}

func TestKafkaTransport_PublishThenSubscribe_RoundTrip(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	topic := "ekyc-" + uuid.NewString()
	createTopic(t, rp.SeedBrokers, topic)

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers: rp.SeedBrokers,
		Topic:   topic,
	})
	require.NoError(t, err)
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subscriber, err := kafka.NewSubscriber(ctx, kafka.SubscriberConfig{
		Brokers: rp.SeedBrokers,
		Topic:   topic,
		GroupID: "ekyc-test-" + uuid.NewString(),
	})
	require.NoError(t, err)
	defer subscriber.Close()

	received := make(chan []byte, 1)
	go func() {
		_ = subscriber.Subscribe(ctx, func(fragment []byte) {
			select {
			case received <- fragment:
			default:
			}
		})
	}()

	payload := []byte("identity-frame-payload")
	result, err := publisher.Offer(ctx, payload)
	require.NoError(t, err)
	require.Equal(t, transport.PublishSuccess, result)

	select {
	case got := <-received:
		require.Equal(t, payload, got)
	case <-time.After(20 * time.Second):
		t.Fatal("timed out waiting for published record to be consumed")
	}
}

func TestKafkaTransport_NewSubscriber_MissingTopicFails(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := kafka.NewSubscriber(ctx, kafka.SubscriberConfig{
		Brokers: rp.SeedBrokers,
		Topic:   "does-not-exist-" + uuid.NewString(),
		GroupID: "ekyc-test-" + uuid.NewString(),
	})
	require.Error(t, err)
}
