// Command workhours-sim publishes a sample admin.workhours.updated.v1 event
// so agenda-service can be exercised locally without the admin console.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paaulosilvaassis/loveodonto-sub003/libs/kafkax"
	"github.com/segmentio/kafka-go"
)

func main() {
	var (
		brokers      = flag.String("brokers", getenv("KAFKA_BROKERS", "localhost:9092"), "comma-separated kafka brokers")
		topic        = flag.String("topic", getenv("TOPIC", "admin.workhours.updated.v1"), "topic to publish to")
		professional = flag.String("professional-id", getenv("PROFESSIONAL_ID", ""), "professional id")
		weekday      = flag.Int("weekday", 1, "weekday (0=Sunday .. 6=Saturday)")
		start        = flag.String("start", "08:00", "window start (HH:MM)")
		end          = flag.String("end", "18:00", "window end (HH:MM)")
		breakStart   = flag.String("break-start", "", "break start (HH:MM, optional)")
		breakEnd     = flag.String("break-end", "", "break end (HH:MM, optional)")
		slotMinutes  = flag.Int("slot-minutes", 30, "agenda grid step in minutes")
		active       = flag.Bool("active", true, "whether the entry is active")
	)
	flag.Parse()

	if strings.TrimSpace(*professional) == "" {
		fatal("PROFESSIONAL_ID is required")
	}

	payload, err := json.Marshal(map[string]any{
		"professional_id": *professional,
		"weekday":         *weekday,
		"active":          *active,
		"start":           *start,
		"end":             *end,
		"break_start":     *breakStart,
		"break_end":       *breakEnd,
		"slot_minutes":    *slotMinutes,
	})
	if err != nil {
		fatal(err.Error())
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  kafkax.SplitBrokers(*brokers),
		Topic:    *topic,
		Balancer: &kafka.Hash{},
	})
	defer writer.Close()

	eventID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(*professional),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(eventID)},
			{Key: "event_type", Value: []byte(*topic)},
		},
	})
	if err != nil {
		fatal(err.Error())
	}
	fmt.Printf("published event_id=%s topic=%s\n", eventID, *topic)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
