// internal/domain/entity/signal.go
package entity

import (
	"time"
)

// Signal types recorded for abuse monitoring
const (
	SignalSearchExecuted = "flight_search_executed"
	SignalSearchReplayed = "search_replayed"
	SignalCancelled      = "flight_cancelled"
	SignalRateLimited    = "rate_limited"
)

// Signal is a log-only observation about user behaviour
type Signal struct {
	ID        string                 `bson:"_id,omitempty"`
	Type      string                 `bson:"type"`
	User      string                 `bson:"user"`
	RequestID string                 `bson:"requestId,omitempty"`
	Payload   map[string]interface{} `bson:"payload,omitempty"`
	CreatedAt time.Time              `bson:"createdAt"`
}
