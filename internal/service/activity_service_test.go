package service

import (
	"testing"

	"github.com/google/uuid"
)

func TestRenderActivityMessageFillsPlaceholders(t *testing.T) {
	msg := renderActivityMessage(`added scene "{title}"`, map[string]interface{}{
		"title":    "The Long Night",
		"scene_id": "ignored",
	})
	if msg != `added scene "The Long Night"` {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestRenderActivityMessageCountsRenderPlain(t *testing.T) {
	// JSON numbers arrive from the bus as float64.
	msg := renderActivityMessage("split a chapter into {count} scenes", map[string]interface{}{
		"count": float64(4),
	})
	if msg != "split a chapter into 4 scenes" {
		t.Fatalf("unexpected message: %s", msg)
	}
}

func TestPayloadUUIDParsesStringIds(t *testing.T) {
	id := uuid.New()
	got, ok := payloadUUID(map[string]interface{}{"project_id": id.String()}, "project_id")
	if !ok {
		t.Fatal("expected ok")
	}
	if got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
}

func TestPayloadUUIDRejectsGarbage(t *testing.T) {
	if _, ok := payloadUUID(map[string]interface{}{"project_id": "not-a-uuid"}, "project_id"); ok {
		t.Fatal("expected parse failure")
	}
	if _, ok := payloadUUID(map[string]interface{}{"project_id": 42}, "project_id"); ok {
		t.Fatal("expected non-string value to fail")
	}
	if _, ok := payloadUUID(map[string]interface{}{}, "project_id"); ok {
		t.Fatal("expected missing key to fail")
	}
}

func TestActivityTemplatesCoverPublishedEvents(t *testing.T) {
	published := []string{
		"PROJECT_CREATED", "PROJECT_DELETED",
		"CHAPTER_CREATED", "CHAPTER_DELETED",
		"SCENE_CREATED", "SCENE_DELETED", "SCENES_SPLIT_APPLIED",
		"NOTE_CREATED", "NOTE_DELETED",
		"CHARACTER_CREATED", "CHARACTER_DELETED",
	}
	for _, kind := range published {
		if _, ok := activityTemplates[kind]; !ok {
			t.Errorf("no feed template for %s", kind)
		}
	}
}
