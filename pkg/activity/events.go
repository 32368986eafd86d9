package activity

import (
	"strings"
	"time"
)

const (
	VerbSchemeChanged      = "appearance.scheme.changed"
	VerbSessionStarted     = "auth.session.started"
	VerbSessionEnded       = "auth.session.ended"
	VerbPreferencesUpdated = "profile.preferences.updated"
	VerbProfileUpdated     = "profile.updated"
)

// SchemeChange describes one applied scheme transition.
type SchemeChange struct {
	UserID     string
	From       string
	To         string
	Preference string
	Source     string
	Version    uint64
	OccurredAt time.Time
}

// BuildSchemeChangedEvent constructs the event emitted when the rendered
// scheme changes.
func BuildSchemeChangedEvent(change SchemeChange) Event {
	metadata := map[string]any{
		"to":     change.To,
		"source": change.Source,
	}
	if change.From != "" {
		metadata["from"] = change.From
	}
	if change.Preference != "" {
		metadata["preference"] = change.Preference
	}
	if change.Version > 0 {
		metadata["version"] = change.Version
	}
	return Event{
		Verb:       VerbSchemeChanged,
		ActorID:    strings.TrimSpace(change.UserID),
		UserID:     strings.TrimSpace(change.UserID),
		ObjectType: "appearance",
		ObjectID:   "scheme",
		Metadata:   metadata,
		OccurredAt: change.OccurredAt,
	}
}

// SessionInput describes a sign-in or sign-out.
type SessionInput struct {
	UserID     string
	UserName   string
	Method     string
	OccurredAt time.Time
}

// BuildSessionStartedEvent constructs the event for a successful sign-in.
func BuildSessionStartedEvent(input SessionInput) Event {
	return buildSessionEvent(VerbSessionStarted, input)
}

// BuildSessionEndedEvent constructs the event for a sign-out.
func BuildSessionEndedEvent(input SessionInput) Event {
	return buildSessionEvent(VerbSessionEnded, input)
}

func buildSessionEvent(verb string, input SessionInput) Event {
	var metadata map[string]any
	if input.Method != "" {
		metadata = map[string]any{"method": input.Method}
	}
	if input.UserName != "" {
		metadata = ensureMetadata(metadata)
		metadata["user_name"] = input.UserName
	}
	objectID := strings.TrimSpace(input.UserID)
	if objectID == "" {
		objectID = "anonymous"
	}
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.UserID),
		UserID:     strings.TrimSpace(input.UserID),
		ObjectType: "session",
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// ProfileInput describes an edit to the profile or its preferences. Changed
// maps field names to their new values.
type ProfileInput struct {
	UserID     string
	Changed    map[string]any
	OccurredAt time.Time
}

// BuildPreferencesUpdatedEvent constructs the event for a preferences PATCH.
func BuildPreferencesUpdatedEvent(input ProfileInput) Event {
	return buildProfileEvent(VerbPreferencesUpdated, "preferences", input)
}

// BuildProfileUpdatedEvent constructs the event for a profile PATCH.
func BuildProfileUpdatedEvent(input ProfileInput) Event {
	return buildProfileEvent(VerbProfileUpdated, "profile", input)
}

func buildProfileEvent(verb, objectType string, input ProfileInput) Event {
	var metadata map[string]any
	if len(input.Changed) > 0 {
		metadata = map[string]any{"changed": cloneMap(input.Changed)}
	}
	objectID := strings.TrimSpace(input.UserID)
	if objectID == "" {
		objectID = objectType
	}
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.UserID),
		UserID:     strings.TrimSpace(input.UserID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
