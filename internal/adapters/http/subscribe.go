package http

import (
	"context"
	"encoding/json"

	"github.com/gofiber/websocket/v2"

	"github.com/lerianstudio/eventledger/internal/platform/log"
	"github.com/lerianstudio/eventledger/internal/subscription"
)

// handleSubscribe drives one websocket connection against the
// Subscription Hub: replay from the client's "fromSequence" query
// parameter, then live events, until the socket closes or the hub
// disconnects it for lagging (spec.md §4.7). The fiber.Ctx this
// connection was upgraded from is gone by the time this handler runs,
// so it carries its own context, canceled on return.
func handleSubscribe(hub *subscription.Hub, logger log.Logger) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		defer conn.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		fromSequence := parseSequenceQueryString(conn.Query("fromSequence"))

		sub, err := hub.Subscribe(ctx, fromSequence)
		if err != nil {
			logger.Errorf("subscribe failed: %v", err)

			return
		}

		defer sub.Close()

		for {
			select {
			case e, ok := <-sub.Events:
				if !ok {
					return
				}

				body, err := json.Marshal(e)
				if err != nil {
					logger.Errorf("subscribe: marshal event: %v", err)

					continue
				}

				if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
					return
				}
			case <-sub.Lagged:
				_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"lagged"}`))

				return
			}
		}
	}
}

func parseSequenceQueryString(raw string) int64 {
	var n int64

	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0
		}

		n = n*10 + int64(r-'0')
	}

	return n
}
