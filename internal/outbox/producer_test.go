package outbox

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestProducerReusesWriterPerTopic(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"})

	w1 := p.writerForTopic("activity_events")
	w2 := p.writerForTopic("activity_events")
	require.Same(t, w1, w2)

	w3 := p.writerForTopic("credit_events")
	require.NotSame(t, w1, w3)

	require.NoError(t, p.Close())
}

func TestProducerWriterConfiguration(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"})
	t.Cleanup(func() { _ = p.Close() })

	w := p.writerForTopic("activity_events")
	require.Equal(t, kafka.RequireAll, w.RequiredAcks)
	require.Equal(t, kafka.Snappy, w.Compression)
	require.IsType(t, &kafka.Hash{}, w.Balancer, "user-keyed messages must stay partition-sticky")
	require.False(t, w.Async)
}
