package eventsamqp

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mlinyun/Peekpa/pkg/config"
	"github.com/mlinyun/Peekpa/pkg/errx"
	"github.com/mlinyun/Peekpa/pkg/events"
	"github.com/mlinyun/Peekpa/pkg/logx"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends events to a durable topic exchange, routed by event type
type Publisher struct {
	conn     *amqp.Connection
	exchange string

	mu sync.Mutex
	ch *amqp.Channel
}

var _ events.Publisher = (*Publisher)(nil)

func NewPublisher(cfg config.EventsConfig) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, errx.Wrap(err, "failed to connect to broker", errx.TypeInternal)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errx.Wrap(err, "failed to open broker channel", errx.TypeInternal)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, errx.Wrap(err, "failed to declare exchange", errx.TypeInternal).
			WithDetail("exchange", cfg.Exchange)
	}

	logx.Infof("Connected to broker, publishing to exchange %s", cfg.Exchange)
	return &Publisher{conn: conn, exchange: cfg.Exchange, ch: ch}, nil
}

// channel reopens the channel after a broker side close
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

func (p *Publisher) Publish(ctx context.Context, ev events.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errx.Wrap(err, "failed to encode event", errx.TypeInternal)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return errx.Wrap(err, "failed to open broker channel", errx.TypeInternal)
	}

	err = ch.PublishWithContext(ctx, p.exchange, ev.Type, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    ev.OccurredAt,
		Type:         ev.Type,
		Body:         body,
	})
	if err != nil {
		return errx.Wrap(err, "failed to publish event", errx.TypeInternal).WithDetail("event", ev.Type)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	return p.conn.Close()
}
