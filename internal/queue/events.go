package queue

import (
	"context"
	"time"
)

const (
	// EventsExchange carries branch and shift lifecycle events.
	EventsExchange = "restaurant.events"

	// ShiftLogQueue retains shift events for the back-office audit log.
	ShiftLogQueue = "restaurant.shift-log"
)

type ShiftEvent struct {
	Event     string    `json:"event"`
	ShiftID   int64     `json:"shiftId"`
	BranchID  int64     `json:"branchId"`
	ShiftName string    `json:"shiftName"`
	ActorID   int64     `json:"actorId"`
	At        time.Time `json:"at"`
}

// EnsureEventTopology declares the exchange and the shift audit queue.
// Routing key shift.# covers shift.started and shift.ended.
func EnsureEventTopology(c *Client) error {
	if err := c.EnsureExchange(EventsExchange); err != nil {
		return err
	}
	if _, err := c.EnsureQueue(ShiftLogQueue); err != nil {
		return err
	}
	return c.BindQueue(ShiftLogQueue, EventsExchange, "shift.#")
}

// PublishShiftEvent emits a shift lifecycle event. A nil client is a
// no-op so handlers never need to branch on messaging availability.
func PublishShiftEvent(ctx context.Context, c *Client, routingKey string, event ShiftEvent) error {
	if c == nil {
		return nil
	}
	return c.PublishJSON(ctx, EventsExchange, routingKey, event)
}
