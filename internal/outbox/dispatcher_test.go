package outbox

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	batches map[string][]kafka.Message
	err     error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	if w.batches == nil {
		w.batches = make(map[string][]kafka.Message)
	}
	w.batches[topic] = append(w.batches[topic], msgs...)
	return nil
}

func TestDeliverGroupsByTopicAndSetsHeaders(t *testing.T) {
	writer := &recordingWriter{}
	d := &Dispatcher{producer: writer}

	messages := []Message{
		{EventID: 1, AggregateType: "activity", AggregateID: "act-1", EventType: "activity.created",
			Topic: "activity_events", PartitionKey: "user-1", Payload: []byte(`{"activity_id":"act-1"}`)},
		{EventID: 2, AggregateType: "user", AggregateID: "user-1", EventType: "credits.granted",
			Topic: "credit_events", PartitionKey: "user-1", Payload: []byte(`{"credits":10}`)},
		{EventID: 3, AggregateType: "activity", AggregateID: "act-2", EventType: "activity.created",
			Topic: "activity_events", PartitionKey: "user-2", Payload: []byte(`{"activity_id":"act-2"}`)},
	}
	require.NoError(t, d.deliver(context.Background(), messages))

	require.Len(t, writer.batches["activity_events"], 2)
	require.Len(t, writer.batches["credit_events"], 1)

	first := writer.batches["activity_events"][0]
	require.Equal(t, []byte("user-1"), first.Key)
	headers := make(map[string]string)
	for _, h := range first.Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, "activity.created", headers["event_type"])
	require.Equal(t, "activity", headers["aggregate_type"])
	require.Equal(t, "act-1", headers["aggregate_id"])
}

func TestDeliverPropagatesWriterError(t *testing.T) {
	writer := &recordingWriter{err: context.DeadlineExceeded}
	d := &Dispatcher{producer: writer}

	err := d.deliver(context.Background(), []Message{
		{EventID: 1, Topic: "activity_events", Payload: []byte(`{}`)},
	})
	require.Error(t, err)
}
