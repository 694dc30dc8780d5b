package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/flightinventory/internal/kafka"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers booking notices. Delivery is a structured log line; no
// mail transport is wired yet.
type Sender struct {
	log *slog.Logger
}

func NewSender(log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}
	return &Sender{log: log.With(slog.String("component", "email"))}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	msg, ok := Compose(event)
	if !ok {
		s.log.DebugContext(ctx, "notification skipped", slog.String("type", event.Type), slog.Int64("booking_id", event.BookingID))
		return nil
	}
	s.log.InfoContext(ctx, "email sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("event_id", event.EventID),
	)
	return nil
}

// Compose renders the notice for event. It reports false for events that do
// not warrant an email or carry no recipient.
func Compose(event kafka.BookingEvent) (Message, bool) {
	if event.Email == "" {
		return Message{}, false
	}
	flight := event.FlightNumber
	if flight == "" {
		flight = fmt.Sprintf("#%d", event.FlightID)
	}

	switch event.Type {
	case kafka.EventBookingCreated:
		return Message{
			To:      event.Email,
			Subject: fmt.Sprintf("Booking confirmed: flight %s", flight),
			Body: fmt.Sprintf("Your %s seat %s on flight %s is confirmed. Fare: %s.",
				event.Class, event.SeatNumber, flight, FormatFare(event.FareCents)),
		}, true
	case kafka.EventBookingCancelled:
		return Message{
			To:      event.Email,
			Subject: fmt.Sprintf("Booking cancelled: flight %s", flight),
			Body:    fmt.Sprintf("Your booking %d for seat %s on flight %s has been cancelled.", event.BookingID, event.SeatNumber, flight),
		}, true
	default:
		return Message{}, false
	}
}

func FormatFare(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
