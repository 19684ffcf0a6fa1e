// Package redis publishes board task events over Redis pub/sub, JSON
// encoded, for lightweight subscribers such as the celebration banner.
package redis

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/courseflow/board/internal"
)

const otelName = "github.com/courseflow/board/internal/redis"

// Task publishes task lifecycle events.
type Task struct {
	client *redis.Client
}

type event struct {
	Type  string        `json:"type"`
	Value internal.Task `json:"value"`
}

// NewTask instantiates the Task publisher.
func NewTask(client *redis.Client) *Task {
	return &Task{
		client: client,
	}
}

// Created publishes a message indicating a task was created.
func (t *Task) Created(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Created", "tasks.event.created", task)
}

// Deleted publishes a message indicating a task was deleted.
func (t *Task) Deleted(ctx context.Context, id string) error {
	return t.publish(ctx, "Task.Deleted", "tasks.event.deleted", internal.Task{ID: id})
}

// Updated publishes a message indicating a task was updated.
func (t *Task) Updated(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Updated", "tasks.event.updated", task)
}

// Completed publishes a message indicating a task was moved to done.
func (t *Task) Completed(ctx context.Context, task internal.Task) error {
	return t.publish(ctx, "Task.Completed", "tasks.event.completed", task)
}

func (t *Task) publish(ctx context.Context, spanName, channel string, task internal.Task) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, spanName)
	defer span.End()

	span.SetAttributes(
		attribute.KeyValue{
			Key:   semconv.MessagingSystemKey,
			Value: attribute.StringValue("redis"),
		},
	)

	raw, err := json.Marshal(event{Type: channel, Value: task})
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.Marshal")
	}

	if err := t.client.Publish(ctx, channel, raw).Err(); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Publish")
	}

	return nil
}
