package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"finai/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	maxBackoff     = 30 * time.Second
	publishTimeout = 5 * time.Second
)

var (
	ErrConnectionDown = errors.New("AMQP connection is down")
	errChannelClosed  = errors.New("message channel closed")
)

// Client publishes and consumes KYC screening messages. Publishing goes
// through a circuit breaker so a broker outage does not stall uploads; the
// consumer reconnects with exponential backoff.
type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *log.Logger

	mu          sync.Mutex
	conn        *amqp091.Connection
	channel     *amqp091.Channel
	lastFailure time.Time

	state        int32
	failureCount int64
}

func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger,
	}

	if _, err := client.ensureChannel(); err != nil {
		return nil, err
	}

	return client, nil
}

func (c *Client) log() *log.Logger {
	if c.logger == nil {
		return log.New(log.DefaultConfig()).WithComponent(log.ComponentAMQP)
	}
	return c.logger.WithComponent(log.ComponentAMQP)
}

// ensureChannel returns the open channel, dialing and declaring the topology
// when there is none.
func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()

	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := setup(channel, c.exchangeName, c.queueName); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	c.conn = conn
	c.channel = channel
	return channel, nil
}

func setup(ch *amqp091.Channel, exchangeName, queueName string) error {
	// Declare exchange
	err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// Declare queue
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Bind queue to exchange, routing key is the queue name
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishKYCScreening enqueues a screening request for a stored document.
func (c *Client) PublishKYCScreening(ctx context.Context, documentID int64, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open: publishing suspended after %d failures", atomic.LoadInt64(&c.failureCount))
	}

	body, err := NewKYCScreeningMessage(documentID, filename).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := c.ensureChannel()
	if err != nil {
		c.recordFailure()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.reset()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.log().InfoContext(ctx, "Published KYC screening message",
		log.FieldDocumentID, documentID,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// ConsumeKYCScreening delivers screening messages to handler until ctx is
// done. Messages that fail to decode are dropped. A failed message is
// requeued once and dropped on its second failure; the document stays
// pending and the worker's sweep screens it later. A lost connection is
// re-established with exponential backoff, restarting from one second
// after every successful reconnect.
func (c *Client) ConsumeKYCScreening(ctx context.Context, handler func(context.Context, *KYCScreeningMessage) error) error {
	logger := c.log()
	var bo backoff
	for {
		err := c.consume(ctx, handler, bo.reset)
		if ctx.Err() != nil {
			logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		}
		if err != nil && !isConnectionError(err) && !errors.Is(err, errChannelClosed) {
			return err
		}

		wait := bo.next()
		logger.WarnContext(ctx, "AMQP consumer disconnected, reconnecting",
			log.FieldError, err,
			"attempt", bo.attempt,
			"backoff", wait.String())
		c.reset()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// consume calls connected once the broker has accepted the consumer.
func (c *Client) consume(ctx context.Context, handler func(context.Context, *KYCScreeningMessage) error, connected func()) error {
	ch, err := c.ensureChannel()
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	connected()

	logger := c.log()
	logger.InfoContext(ctx, "Started consuming KYC screening messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return errChannelClosed
			}
			handleDelivery(ctx, logger, delivery, handler)
		}
	}
}

// handleDelivery acknowledges a delivery according to the handler outcome.
func handleDelivery(ctx context.Context, logger *log.Logger, delivery amqp091.Delivery, handler func(context.Context, *KYCScreeningMessage) error) {
	msg, err := KYCScreeningMessageFromJSON(delivery.Body)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to unmarshal message", log.FieldError, err)
		delivery.Nack(false, false)
		return
	}

	if err := handler(ctx, msg); err != nil {
		requeue := !delivery.Redelivered
		logger.ErrorContext(ctx, "Failed to handle message",
			log.FieldError, err,
			log.FieldDocumentID, msg.DocumentID,
			"requeue", requeue)
		delivery.Nack(false, requeue)
		return
	}

	delivery.Ack(false)
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}

	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()

	if time.Since(last) > openTimeout {
		// Let the next publish probe the broker.
		atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	failures := atomic.AddInt64(&c.failureCount, 1)

	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()

	if failures >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// Healthy reports whether the broker connection is open.
func (c *Client) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && !c.conn.IsClosed()
}

// Check is a readiness check that fails while the connection is down.
func (c *Client) Check(context.Context) error {
	if !c.Healthy() {
		return ErrConnectionDown
	}
	return nil
}

func (c *Client) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// backoff counts consecutive reconnect attempts.
type backoff struct {
	attempt int
}

func (b *backoff) next() time.Duration {
	d := exponentialBackoff(b.attempt)
	b.attempt++
	return d
}

func (b *backoff) reset() {
	b.attempt = 0
}

// exponentialBackoff doubles from one second, capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << uint(attempt)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"connection", "EOF", "broken pipe", "closed network"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
