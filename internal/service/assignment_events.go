package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AssignmentPublishedEventType names the event emitted once an assignment reaches its students.
const AssignmentPublishedEventType = "assignment.published"

// AssignmentEvent is the broker payload describing an assignment fan-out.
type AssignmentEvent struct {
	Type         string    `json:"type"`
	Source       string    `json:"source"`
	AssignmentID uint      `json:"assignment_id"`
	ClassID      uint      `json:"class_id"`
	TestID       uint      `json:"test_id"`
	Created      int       `json:"created"`
	PublishedAt  time.Time `json:"published_at"`
}

// AssignmentEventPublisher broadcasts assignment events to other services.
type AssignmentEventPublisher interface {
	Publish(ctx context.Context, event AssignmentEvent) error
}

type assignmentEventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	nodeID       string
	logger       zerolog.Logger
	now          func() time.Time
}

// NewAssignmentEventPublisher publishes to redis pub/sub and NATS when the respective clients are configured.
func NewAssignmentEventPublisher(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) AssignmentEventPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":assignments"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".assignments"
	}

	return &assignmentEventPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		nodeID:       uuid.NewString(),
		logger:       logger.With().Str("component", "assignment_events").Logger(),
		now:          time.Now,
	}
}

func (p *assignmentEventPublisher) Publish(ctx context.Context, event AssignmentEvent) error {
	if event.Type == "" {
		event.Type = AssignmentPublishedEventType
	}
	if event.Source == "" {
		event.Source = p.nodeID
	}
	if event.PublishedAt.IsZero() {
		event.PublishedAt = p.now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			return err
		}
	}

	p.logger.Debug().
		Uint("assignment_id", event.AssignmentID).
		Str("type", event.Type).
		Msg("assignment event published")

	return nil
}
