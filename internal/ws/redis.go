package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/playmatatu/tablesim/internal/session"
	"github.com/redis/go-redis/v9"
)

// StartEventSubscriber subscribes to the table_events channel and relays
// each event to the matching table room.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, session.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", session.EventsChannel)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopping", session.EventsChannel)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				event, err := decodeEvent(msg.Payload)
				if err != nil {
					log.Printf("[WS] invalid event payload: %v", err)
					continue
				}
				log.Printf("[WS] event received: type=%s table=%s room_size=%d", event.Type, event.Table, hub.RoomSize(event.Table))
				hub.PublishEvent(ctx, event)
			}
		}
	}()
}

var errMissingEventFields = errors.New("event missing type or table")

func decodeEvent(payload string) (session.TableEvent, error) {
	var event session.TableEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return event, err
	}
	if event.Type == "" || event.Table == "" {
		return event, errMissingEventFields
	}
	return event, nil
}
