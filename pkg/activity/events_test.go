package activity

import (
	"context"
	"testing"
)

func TestBuildSchemeChangedEvent(t *testing.T) {
	event := BuildSchemeChangedEvent(SchemeChange{
		UserID:     " u42 ",
		From:       "light",
		To:         "dark",
		Preference: "dark",
		Source:     "explicit",
		Version:    3,
	})
	if event.Verb != VerbSchemeChanged || event.ObjectType != "appearance" || event.ObjectID != "scheme" {
		t.Fatalf("unexpected object fields: %+v", event)
	}
	if event.UserID != "u42" || event.ActorID != "u42" {
		t.Fatalf("expected trimmed identity, got %+v", event)
	}
	if event.Metadata["from"] != "light" || event.Metadata["to"] != "dark" || event.Metadata["source"] != "explicit" {
		t.Fatalf("unexpected metadata: %+v", event.Metadata)
	}
	if event.Metadata["version"] != uint64(3) {
		t.Fatalf("expected version metadata, got %v", event.Metadata["version"])
	}
}

func TestBuildSchemeChangedEventOmitsEmptyFrom(t *testing.T) {
	event := BuildSchemeChangedEvent(SchemeChange{To: "light", Source: "default"})
	if _, ok := event.Metadata["from"]; ok {
		t.Fatalf("expected no from key on first resolution: %+v", event.Metadata)
	}
}

func TestBuildSessionEvents(t *testing.T) {
	started := BuildSessionStartedEvent(SessionInput{UserID: "u1", UserName: "runner", Method: "password"})
	if started.Verb != VerbSessionStarted || started.ObjectType != "session" || started.ObjectID != "u1" {
		t.Fatalf("unexpected started event: %+v", started)
	}
	if started.Metadata["method"] != "password" || started.Metadata["user_name"] != "runner" {
		t.Fatalf("unexpected metadata: %+v", started.Metadata)
	}

	ended := BuildSessionEndedEvent(SessionInput{})
	if ended.Verb != VerbSessionEnded || ended.ObjectID != "anonymous" {
		t.Fatalf("expected anonymous fallback, got %+v", ended)
	}
}

func TestBuildPreferencesUpdatedEventClonesChanges(t *testing.T) {
	changed := map[string]any{"unitSystem": "imperial"}
	event := BuildPreferencesUpdatedEvent(ProfileInput{UserID: "u9", Changed: changed})
	inner, ok := event.Metadata["changed"].(map[string]any)
	if !ok || inner["unitSystem"] != "imperial" {
		t.Fatalf("unexpected metadata: %+v", event.Metadata)
	}
	inner["unitSystem"] = "metric"
	if changed["unitSystem"] != "imperial" {
		t.Fatalf("expected input map untouched")
	}

	capture := &CaptureHook{}
	if err := (Hooks{capture}).Notify(context.Background(), BuildProfileUpdatedEvent(ProfileInput{})); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if verbs := capture.Verbs(); len(verbs) != 1 || verbs[0] != VerbProfileUpdated {
		t.Fatalf("unexpected verbs: %v", verbs)
	}
}
