package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartBookingLogConsumer consumes the booking events queue and appends
// one line per event to logs/booking.log.  It reconnects with exponential
// backoff and never returns; run it in its own goroutine.
func StartBookingLogConsumer(url, queue string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, queue); err != nil {
			log.Printf("booking-consumer: consume loop ended: %v; reconnecting", err)
		}
		_ = conn.Close()
		time.Sleep(2 * time.Second)
	}
}

func consumeLoop(conn *amqp.Connection, queue string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("booking-consumer: set QoS failed: %v", err)
	}
	if err := declare(ch, queue); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := appendToLog(d.Body); err != nil {
			log.Printf("booking-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func appendToLog(body []byte) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	return writeLine(f, body)
}

// writeLine decodes one event and writes its log line to w.
func writeLine(w io.Writer, body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.BookingID == "" {
		return errors.New("event missing type or booking_id")
	}
	_, err := fmt.Fprintln(w, FormatLine(ev))
	return err
}

// FormatLine renders an event as a single human-friendly log line.
func FormatLine(ev BookingEvent) string {
	vendor := ev.VendorID
	if vendor == "" {
		vendor = "-"
	}
	line := fmt.Sprintf("[%s] %s | booking_id=%s | user_id=%s | vendor_id=%s | slot=\"%s %s\" | status=%s | by=%s/%s",
		ev.OccurredAt, ev.Type, ev.BookingID, ev.UserID, vendor, ev.Date, ev.TimeSlot, ev.Status, ev.ActorRole, ev.ActorID)
	if ev.Reason != "" {
		line += fmt.Sprintf(" | reason=%q", ev.Reason)
	}
	return line
}
