package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Job types carried on the snapshot-change feed.
const (
	JobSnapshotChanged = "snapshot_changed"
	JobHealthCheck     = "health_check"
)

// ErrUnknownJob is returned for messages with an unrecognized job type.
var ErrUnknownJob = errors.New("unknown job type")

// JobMessage is the payload of a worker Pub/Sub message.
type JobMessage struct {
	JobType string `json:"job_type"`

	// Source names the roster table that changed, for logging.
	Source string `json:"source,omitempty"`
}

// Dispatcher runs the job a message asks for.
type Dispatcher struct {
	job    *StatusJob
	logger zerolog.Logger
}

// NewDispatcher creates a Dispatcher running jobs on job.
func NewDispatcher(job *StatusJob, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{job: job, logger: logger}
}

// Handle parses data and runs the job. Malformed payloads and unknown job
// types are reported as errors wrapping ErrUnknownJob or the JSON error.
func (d *Dispatcher) Handle(ctx context.Context, data []byte) (JobMessage, error) {
	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("parse job message: %w", err)
	}

	switch msg.JobType {
	case JobSnapshotChanged:
		d.logger.Info().Str("source", msg.Source).Msg("roster changed, recomputing")
		_, err := d.job.Trigger(ctx)
		return msg, err
	case JobHealthCheck:
		return msg, d.healthCheck()
	default:
		return msg, fmt.Errorf("%w: %q", ErrUnknownJob, msg.JobType)
	}
}

func (d *Dispatcher) healthCheck() error {
	health := d.job.engine.LoadHealth()
	if health.IsUnhealthy() {
		return fmt.Errorf("snapshot loader circuit open: %s", health.LastError)
	}
	d.logger.Debug().Str("loader", health.Status()).Msg("health check passed")
	return nil
}

// PubSubHandler receives job messages from a Pub/Sub subscription.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Dispatcher       *Dispatcher
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Recomputes are idempotent; one at a time is enough.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 1
	subscriber.ReceiveSettings.MaxExtension = 2 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       cfg.Dispatcher,
		logger:           cfg.Logger,
	}, nil
}

// Start receives messages until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	job, err := h.dispatcher.Handle(ctx, msg.Data)
	switch {
	case errors.Is(err, ErrUnknownJob):
		logger.Warn().Str("job_type", job.JobType).Msg("unknown job type")
		msg.Ack() // redelivery would not help
		return
	case err != nil:
		logger.Error().Err(err).Str("job_type", job.JobType).Msg("job failed")
		msg.Nack()
		return
	}

	logger.Info().
		Str("job_type", job.JobType).
		Dur("duration", time.Since(startTime)).
		Msg("job completed")
	msg.Ack()
}
