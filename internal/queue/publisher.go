package queue

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/cinema-storefront/internal/model"
)

// Publisher sends booking.confirmed events to RabbitMQ.  The connection is
// opened on first use and reopened after the broker drops it.
type Publisher struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
}

// NewPublisher returns a publisher for the broker at url.  No connection
// is made until the first event.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, err
		}
		p.conn = conn
	}
	return p.conn.Channel()
}

// BookingConfirmed publishes b as a persistent JSON message.  Errors are
// logged and returned; callers treat them as non-fatal.
func (p *Publisher) BookingConfirmed(ctx context.Context, b model.Booking) error {
	body, err := json.Marshal(EventFromBooking(b))
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}
	ch, err := p.channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(BookingQueue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}
	err = ch.PublishWithContext(ctx, "", BookingQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    b.ID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Printf("rabbitmq: publish %s failed: %v", b.ID, err)
	}
	return err
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// NoopPublisher drops events.  It is used when EVENTS_ENABLED is off.
type NoopPublisher struct{}

func (NoopPublisher) BookingConfirmed(context.Context, model.Booking) error { return nil }
