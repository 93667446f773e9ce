package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []string // subjects
	fail error
}

func (m *recordingMailer) Send(_ context.Context, _, subject, _ string) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, subject)
	return nil
}

// recordingAcker captures the ack/nack decision for one delivery.
type recordingAcker struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *recordingAcker) Ack(_ uint64, _ bool) error { a.acked = true; return nil }
func (a *recordingAcker) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}
func (a *recordingAcker) Reject(_ uint64, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func contactDelivery(t *testing.T, acker amqp.Acknowledger) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(ContactReceivedEvent{
		ContactID: 1, Name: "V", Email: "v@example.com", Subject: "Hi", Message: "m",
	})
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: acker, RoutingKey: ContactQueue, Body: body}
}

func TestMergeDeliveriesClosesWhenSourcesClose(t *testing.T) {
	a := make(chan amqp.Delivery, 1)
	b := make(chan amqp.Delivery, 1)
	a <- amqp.Delivery{RoutingKey: ContactQueue}
	b <- amqp.Delivery{RoutingKey: BookingQueue}
	close(a)
	close(b)

	merged := mergeDeliveries(a, b)

	// Both deliveries arrive and, critically, the merged channel closes
	// once the sources do: a broker disconnect must end the range loop in
	// consumeLoop so the reconnect loop can run.
	seen := map[string]int{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range merged {
			seen[d.RoutingKey]++
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("merged channel never closed after all sources closed")
	}
	assert.Equal(t, 1, seen[ContactQueue])
	assert.Equal(t, 1, seen[BookingQueue])
}

func TestSettleAcksOnSuccess(t *testing.T) {
	m := &recordingMailer{}
	acker := &recordingAcker{}

	settle(contactDelivery(t, acker), m, "org@example.com")

	assert.True(t, acker.acked)
	assert.False(t, acker.nacked)
	require.Len(t, m.sent, 1)
	assert.Equal(t, "New Contact Message: Hi", m.sent[0])
}

func TestSettleRequeuesOnMailFailure(t *testing.T) {
	m := &recordingMailer{fail: errors.New("smtp down")}
	acker := &recordingAcker{}

	settle(contactDelivery(t, acker), m, "org@example.com")

	// A mail outage is transient: the message must come back.
	assert.False(t, acker.acked)
	assert.True(t, acker.nacked)
	assert.True(t, acker.requeue)
}

func TestSettleDropsPoisonMessages(t *testing.T) {
	m := &recordingMailer{}

	// Unparsable payload and unknown routing key can never succeed; both
	// must be nacked without requeue or they redeliver forever.
	cases := []amqp.Delivery{
		{RoutingKey: ContactQueue, Body: []byte("{not json")},
		{RoutingKey: BookingQueue, Body: []byte("[]")},
		{RoutingKey: "unrelated.queue", Body: []byte("{}")},
	}
	for _, d := range cases {
		acker := &recordingAcker{}
		d.Acknowledger = acker
		settle(d, m, "org@example.com")
		assert.False(t, acker.acked, "routing key %s", d.RoutingKey)
		assert.True(t, acker.nacked, "routing key %s", d.RoutingKey)
		assert.False(t, acker.requeue, "routing key %s", d.RoutingKey)
	}
	assert.Empty(t, m.sent)
}

func TestFormatNotificationBooking(t *testing.T) {
	body, err := json.Marshal(BookingReceivedEvent{
		BookingID: 3, Name: "Host", Email: "h@example.com", Phone: "555",
		EventType: "wedding", EventDate: "2026-10-20", GuestCount: 120,
	})
	require.NoError(t, err)

	subject, text, err := formatNotification(BookingQueue, body)
	require.NoError(t, err)
	assert.Equal(t, "New Event Booking: wedding", subject)
	assert.Contains(t, text, "Guest Count: 120")
	assert.Contains(t, text, "Event Date: 2026-10-20")
}
