//go:build integration

package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"go.uber.org/zap"

	"cinema-server/shared/models"
)

func TestRabbitMQPublisher_PublishGenerationEvent(t *testing.T) {
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.13-management-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	amqpURL, err := container.AmqpURL(ctx)
	require.NoError(t, err)
	conn, err := amqp091.Dial(amqpURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	pub, err := NewRabbitMQPublisher(conn, "test_generation_events", zap.NewNop())
	require.NoError(t, err)
	defer pub.Close()

	event := GenerationEvent{
		JobID:       uuid.New(),
		UserID:      uuid.New(),
		Kind:        "video",
		Provider:    "kling",
		State:       models.JobStateSucceeded,
		ArtifactURL: "https://cdn.test/v.mp4",
		OccurredAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, pub.PublishGenerationEvent(ctx, event))

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	var msg amqp091.Delivery
	require.Eventually(t, func() bool {
		var ok bool
		msg, ok, err = ch.Get("test_generation_events", true)
		return err == nil && ok
	}, 10*time.Second, 100*time.Millisecond)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, event.JobID.String(), msg.CorrelationId)
	var got GenerationEvent
	require.NoError(t, json.Unmarshal(msg.Body, &got))
	assert.Equal(t, event, got)

	require.NoError(t, pub.Close())
	assert.Error(t, pub.PublishGenerationEvent(ctx, event), "после Close публикация невозможна")
}

type countingConfig struct {
	mu      sync.Mutex
	reloads int
}

func (c *countingConfig) Update(models.SystemAIConfig) {}

func (c *countingConfig) Reload(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reloads++
	return nil
}

func (c *countingConfig) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reloads
}

func TestConfigSync_BroadcastReloadsOtherInstances(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.13-management-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	amqpURL, err := container.AmqpURL(ctx)
	require.NoError(t, err)
	conn, err := amqp091.Dial(amqpURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	first, second := &countingConfig{}, &countingConfig{}
	syncA, err := NewConfigSync(conn, first, zap.NewNop())
	require.NoError(t, err)
	defer syncA.Close()
	syncB, err := NewConfigSync(conn, second, zap.NewNop())
	require.NoError(t, err)
	defer syncB.Close()

	require.NoError(t, syncA.Start(ctx))
	require.NoError(t, syncB.Start(ctx))

	syncA.Update(models.SystemAIConfig{Key: "openai_api_key", Value: "sk"})

	require.Eventually(t, func() bool { return second.count() == 1 }, 10*time.Second, 100*time.Millisecond)
	// Свое сообщение экземпляр пропускает
	assert.Equal(t, 0, first.count())
}
