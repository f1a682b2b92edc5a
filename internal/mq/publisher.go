package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/ifs/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// MessageTypeFlightClaimed — рейс захвачен планировщиком.
const MessageTypeFlightClaimed MessageType = "flight.claimed"

// Message — конверт сообщения.
type Message struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// FlightClaimedPayload — payload события flight.claimed.
type FlightClaimedPayload struct {
	FlightID     int64      `json:"flight_id"`
	Carrier      string     `json:"carrier"`
	FlightNumber string     `json:"flight_number"`
	Origin       string     `json:"origin,omitempty"`
	Destination  string     `json:"destination,omitempty"`
	DepartureAt  time.Time  `json:"departure_at"`
	ArrivalAt    *time.Time `json:"arrival_at,omitempty"`
	ClaimedAt    *time.Time `json:"claimed_at,omitempty"`
	ClaimedBy    string     `json:"claimed_by,omitempty"`
}

// NewFlightClaimedPayload собирает payload из рейса.
func NewFlightClaimedPayload(f *domain.Flight) FlightClaimedPayload {
	return FlightClaimedPayload{
		FlightID:     f.ID,
		Carrier:      f.Carrier,
		FlightNumber: f.FlightNumber,
		Origin:       f.Origin,
		Destination:  f.Destination,
		DepartureAt:  f.DepartureAt,
		ArrivalAt:    f.ArrivalAt,
		ClaimedAt:    f.ClaimedAt,
		ClaimedBy:    f.ClaimedBy,
	}
}

// Flight восстанавливает рейс из payload.
func (p FlightClaimedPayload) Flight() *domain.Flight {
	return &domain.Flight{
		ID:           p.FlightID,
		Claimed:      true,
		ClaimedAt:    p.ClaimedAt,
		ClaimedBy:    p.ClaimedBy,
		Carrier:      p.Carrier,
		FlightNumber: p.FlightNumber,
		Origin:       p.Origin,
		Destination:  p.Destination,
		DepartureAt:  p.DepartureAt,
		ArrivalAt:    p.ArrivalAt,
	}
}

// NewMessage упаковывает payload в конверт с новым ID.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishFlightClaimed публикует событие о захваченном рейсе.
// Потребитель: ifs-dispatcher.
func (p *Publisher) PublishFlightClaimed(ctx context.Context, flight *domain.Flight) error {
	msg, err := NewMessage(MessageTypeFlightClaimed, NewFlightClaimedPayload(flight))
	if err != nil {
		return err
	}
	return p.Publish(ctx, ExchangeFlights, RoutingKeyClaimed, msg)
}
