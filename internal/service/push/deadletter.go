package push

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const deadLetterKey = "push:dead-letter"

// Failure is one undelivered push message, kept for operator inspection.
// There is no automatic retry; an operator decides what to do with these.
type Failure struct {
	PublicationID int64     `json:"publication_id"`
	MemberID      int64     `json:"member_id"`
	Token         string    `json:"token"`
	Reason        string    `json:"reason"`
	FailedAt      time.Time `json:"failed_at"`
}

type DeadLetterRecorder interface {
	Record(ctx context.Context, failure Failure)
}

type redisDeadLetter struct {
	client *redis.Client
}

func NewRedisDeadLetter(client *redis.Client) DeadLetterRecorder {
	return &redisDeadLetter{client: client}
}

func (d *redisDeadLetter) Record(ctx context.Context, failure Failure) {
	payload, err := json.Marshal(failure)
	if err != nil {
		log.Printf("push: failed to marshal dead-letter entry: %v", err)
		return
	}
	if err := d.client.RPush(ctx, deadLetterKey, payload).Err(); err != nil {
		log.Printf("push: failed to record dead-letter entry: %v", err)
	}
}
