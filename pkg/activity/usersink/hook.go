// Package usersink forwards client activity events to a go-users
// ActivitySink so sign-ins, scheme changes and profile edits land in the same
// audit trail as server-side user activity.
package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-fitspire/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook writes each complete event to Sink as an ActivityRecord.
type Hook struct {
	Sink usertypes.ActivitySink
	// TenantID is stamped on every record; zero leaves it unset.
	TenantID uuid.UUID
}

func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	record, ok := Record(event)
	if !ok {
		return nil
	}
	record.TenantID = h.TenantID
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, record)
}

// Record converts event. Backend user ids are not always UUIDs; those that
// are not land in Data as "user_ref" / "actor_ref". The event domain is kept
// as "domain" so sink queries can group client activity.
func Record(event activity.Event) (usertypes.ActivityRecord, bool) {
	if !event.Complete() {
		return usertypes.ActivityRecord{}, false
	}
	event = activity.NormalizeEvent(event)

	data := map[string]any{"domain": event.Domain()}
	for k, v := range event.Metadata {
		data[k] = v
	}
	userID := asUUID(event.UserID, "user_ref", data)
	actorID := asUUID(event.ActorID, "actor_ref", data)
	if event.ActorID == event.UserID {
		delete(data, "actor_ref")
	}

	return usertypes.ActivityRecord{
		UserID:     userID,
		ActorID:    actorID,
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	}, true
}

func asUUID(raw, refKey string, data map[string]any) uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		data[refKey] = raw
		return uuid.Nil
	}
	return id
}
