package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/gnm-events/backend/internal/mailer"
)

// errMalformed marks a message that can never be processed.  Such messages
// are dropped instead of requeued so one bad payload cannot redeliver in a
// tight loop.
var errMalformed = errors.New("malformed event")

// StartNotificationConsumer connects to the broker, declares both
// notification queues (durable), and emails the organization inbox for
// every consumed event.  It runs a reconnect loop with capped backoff and
// never returns; run it in its own goroutine.  Messages whose mail
// delivery fails are nacked with requeue so a transient SMTP outage does
// not drop notifications.
func StartNotificationConsumer(url string, m mailer.Mailer, orgEmail string) {
    if orgEmail == "" {
        log.Printf("notification-consumer: ORG_EMAIL not set, consumer disabled")
        return
    }

    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("notification-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn, m, orgEmail); err != nil {
            log.Printf("notification-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
        }
    }
}

func consumeLoop(conn *amqp.Connection, m mailer.Mailer, orgEmail string) error {
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(10, 0, false); err != nil {
        log.Printf("notification-consumer: set QoS failed: %v", err)
    }

    // Declare and subscribe to every queue before starting any forwarder,
    // so a failure here leaves no goroutine behind.
    sources := make([]<-chan amqp.Delivery, 0, 2)
    for _, name := range []string{ContactQueue, BookingQueue} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
        msgs, err := ch.Consume(name, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", name, err)
        }
        sources = append(sources, msgs)
    }

    // On a broker disconnect amqp091 closes every source channel, the
    // merged channel closes in turn, and this loop ends so the caller can
    // reconnect.
    for d := range mergeDeliveries(sources...) {
        settle(d, m, orgEmail)
    }
    return fmt.Errorf("all consumer channels closed")
}

// mergeDeliveries fans several consumer channels into one.  The returned
// channel closes once every source has closed.
func mergeDeliveries(sources ...<-chan amqp.Delivery) <-chan amqp.Delivery {
    out := make(chan amqp.Delivery)
    var wg sync.WaitGroup
    wg.Add(len(sources))
    for _, src := range sources {
        go func(src <-chan amqp.Delivery) {
            defer wg.Done()
            for d := range src {
                out <- d
            }
        }(src)
    }
    go func() {
        wg.Wait()
        close(out)
    }()
    return out
}

// settle processes one delivery and acknowledges it.  Transient failures
// (mail outage) requeue for a later attempt; malformed payloads are
// dropped, since redelivery can never succeed.
func settle(d amqp.Delivery, m mailer.Mailer, orgEmail string) {
    if err := handleDelivery(d, m, orgEmail); err != nil {
        log.Printf("notification-consumer: handle message failed: %v", err)
        _ = d.Nack(false, !errors.Is(err, errMalformed))
        return
    }
    _ = d.Ack(false)
}

func handleDelivery(d amqp.Delivery, m mailer.Mailer, orgEmail string) error {
    subject, body, err := formatNotification(d.RoutingKey, d.Body)
    if err != nil {
        return err
    }
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()
    return m.Send(ctx, orgEmail, subject, body)
}

func formatNotification(queueName string, payload []byte) (subject, body string, err error) {
    switch queueName {
    case ContactQueue:
        var ev ContactReceivedEvent
        if err := json.Unmarshal(payload, &ev); err != nil {
            return "", "", fmt.Errorf("%w: unmarshal contact event: %v", errMalformed, err)
        }
        subject = "New Contact Message: " + ev.Subject
        body = fmt.Sprintf(`New Contact Message:

Name: %s
Email: %s
Subject: %s
Message: %s
`, ev.Name, ev.Email, ev.Subject, ev.Message)
        return subject, body, nil
    case BookingQueue:
        var ev BookingReceivedEvent
        if err := json.Unmarshal(payload, &ev); err != nil {
            return "", "", fmt.Errorf("%w: unmarshal booking event: %v", errMalformed, err)
        }
        subject = "New Event Booking: " + ev.EventType
        body = fmt.Sprintf(`New Booking Details:

Name: %s
Email: %s
Phone: %s
Event Type: %s
Event Date: %s
Venue: %s
Guest Count: %d
Budget: %s
Special Requests: %s
`, ev.Name, ev.Email, ev.Phone, ev.EventType, ev.EventDate,
            ev.Venue, ev.GuestCount, ev.Budget, ev.SpecialRequests)
        return subject, body, nil
    }
    return "", "", fmt.Errorf("%w: unknown queue: %s", errMalformed, queueName)
}
