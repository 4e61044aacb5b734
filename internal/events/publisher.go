// Package events forwards habit store changes to a RabbitMQ exchange.
package events

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/julianstephens/habitgrid/internal/logger"
	"github.com/julianstephens/habitgrid/internal/models"
)

const (
	publishTimeout = 5 * time.Second
	queueSize      = 64
)

// publishChannel is the part of *amqp091.Channel the publisher uses
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Lister is the read side of the habit store
type Lister interface {
	List() []models.Habit
}

// Publisher sends HabitsChangedMessage to a durable direct exchange.
// Messages queued by the store subscriber are published from a background
// goroutine so a slow broker never holds up a mutation.
type Publisher struct {
	channel    publishChannel
	conn       io.Closer
	exchange   string
	routingKey string
	now        func() time.Time

	// mu guards closed and sends on queue
	mu        sync.Mutex
	closed    bool
	queue     chan *HabitsChangedMessage
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewPublisher dials url and declares the exchange and queue
func NewPublisher(url, exchange, queue string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(channel, exchange, queue); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	logger.Info("Connected to AMQP broker", "exchange", exchange, "queue", queue)
	return newPublisher(channel, conn, exchange, queue), nil
}

func newPublisher(channel publishChannel, conn io.Closer, exchange, routingKey string) *Publisher {
	p := &Publisher{
		channel:    channel,
		conn:       conn,
		exchange:   exchange,
		routingKey: routingKey,
		now:        time.Now,
		queue:      make(chan *HabitsChangedMessage, queueSize),
	}
	p.wg.Add(1)
	go p.drain()
	return p
}

func declare(channel *amqp091.Channel, exchange, queue string) error {
	if err := channel.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// routing key is the queue name
	if err := channel.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends one message, waiting at most five seconds for the broker
func (p *Publisher) Publish(ctx context.Context, msg *HabitsChangedMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	logger.Debug("Published habits changed message",
		"habits", msg.HabitCount,
		"exchange", p.exchange,
		"routing_key", p.routingKey)
	return nil
}

// Subscriber returns a store callback that queues a message describing the
// collection after every change. When the queue is full, or the publisher
// is already closed, the change is dropped with a warning.
func (p *Publisher) Subscriber(store Lister) func() {
	return func() {
		msg := NewHabitsChangedMessage(store.List(), p.now())

		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			logger.Warn("Publisher closed, dropping habits changed message", "habits", msg.HabitCount)
			return
		}
		select {
		case p.queue <- msg:
		default:
			logger.Warn("Change queue full, dropping habits changed message", "habits", msg.HabitCount)
		}
	}
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for msg := range p.queue {
		if err := p.Publish(context.Background(), msg); err != nil {
			logger.Error("Failed to publish habits changed message", "error", err)
		}
	}
}

// Close publishes whatever is still queued and closes the connection.
// Changes reported after Close are dropped.
func (p *Publisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()
		p.wg.Wait()

		if p.channel != nil {
			p.channel.Close()
		}
		if p.conn != nil {
			err = p.conn.Close()
		}
	})
	return err
}
