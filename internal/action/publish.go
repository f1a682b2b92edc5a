package action

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/ifs/internal/domain"
)

// FlightPublisher публикует событие о захваченном рейсе.
// Реализуется mq.Publisher.
type FlightPublisher interface {
	PublishFlightClaimed(ctx context.Context, flight *domain.Flight) error
}

// Publish — действие, отправляющее flight.claimed в брокер.
// Обработку выполняет ifs-dispatcher.
type Publish struct {
	publisher FlightPublisher
	timeout   time.Duration
}

// NewPublish создаёт Publish. timeout ограничивает одну публикацию
// (default: 5s).
func NewPublish(publisher FlightPublisher, timeout time.Duration) *Publish {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publish{publisher: publisher, timeout: timeout}
}

// Process публикует событие.
func (p *Publish) Process(ctx context.Context, flight *domain.Flight) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.publisher.PublishFlightClaimed(ctx, flight); err != nil {
		return fmt.Errorf("publish flight.claimed for %d: %w", flight.ID, err)
	}
	return nil
}
