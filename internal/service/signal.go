package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	punchline "github.com/jokehub/punchline"
)

// EventChannel is the redis pub/sub channel carrying content events.
const EventChannel = "punchline:events"

// SignalService fans content and vote events out to realtime
// subscribers through redis pub/sub. Delivery is best-effort: a failed
// publish never fails the write that caused it.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event punchline.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, EventChannel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime bridges the pub/sub stream to a websocket session. Values
// on input replace the session's event-type filter (empty filter
// means everything); matching events go to output until ctx ends.
func (s *SignalService) Realtime(ctx context.Context, input <-chan []string, output chan<- punchline.Event) {
	pubsub := s.rdb.Subscribe(ctx, EventChannel)
	defer pubsub.Close()

	var filter []string
	messages := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case types, ok := <-input:
			if !ok {
				return
			}
			filter = types
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event punchline.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "failed to decode event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			if !matches(filter, event.Type) {
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

// matches accepts exact event types or prefixes like "joke.".
func matches(filter []string, eventType string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == eventType || strings.HasPrefix(eventType, f) {
			return true
		}
	}
	return false
}
