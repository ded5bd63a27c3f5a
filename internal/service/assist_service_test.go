package service

import (
	"strings"
	"testing"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/pkg/rag"
	"ai-storywriting-be/pkg/rag/executor"
)

func TestSessionTitleFromFirstLine(t *testing.T) {
	title := sessionTitleFrom("Where was Mara born?\nAnd who raised her?")
	if title != "Where was Mara born?" {
		t.Errorf("expected first line only, got %q", title)
	}
}

func TestSessionTitleFromTruncatesLongQuestions(t *testing.T) {
	question := strings.Repeat("a", 200)
	title := sessionTitleFrom(question)
	if len([]rune(title)) != 80 {
		t.Errorf("expected 80 runes, got %d", len([]rune(title)))
	}
}

func TestSessionTitleFromBlankFallsBack(t *testing.T) {
	if got := sessionTitleFrom("   \n  "); got != defaultAssistSessionTitle {
		t.Errorf("expected default title, got %q", got)
	}
}

func TestSessionTitleFromKeepsShortQuestions(t *testing.T) {
	if got := sessionTitleFrom("  Who is Mara?  "); got != "Who is Mara?" {
		t.Errorf("expected trimmed question, got %q", got)
	}
}

func TestNoteDocType(t *testing.T) {
	if got := noteDocType(entity.NoteKindWorld); got != rag.DocTypeWorld {
		t.Errorf("world note mapped to %q", got)
	}
	if got := noteDocType(entity.NoteKindFree); got != rag.DocTypeNote {
		t.Errorf("free note mapped to %q", got)
	}
}

func TestNodeSourceUsesCarryProvenance(t *testing.T) {
	nodes := []rag.Node{
		{
			ID:    "n1",
			Text:  "Mara grew up in the harbor district.",
			Score: 0.91,
			Meta: rag.NodeMeta{
				SourcePath: "/ws/p1/characters/mara.md",
				DocType:    rag.DocTypeCharacter,
				DocTitle:   "Mara Venn",
			},
		},
	}

	uses := nodeSourceUses(nodes)
	if len(uses) != 1 {
		t.Fatalf("expected 1 use, got %d", len(uses))
	}
	u := uses[0]
	if u.Path != "/ws/p1/characters/mara.md" {
		t.Errorf("path = %q", u.Path)
	}
	if u.DocType != "Character Sheet" {
		t.Errorf("doc type = %q", u.DocType)
	}
	if u.DocTitle != "Mara Venn" {
		t.Errorf("doc title = %q", u.DocTitle)
	}
	if u.Score != 0.91 {
		t.Errorf("score = %v", u.Score)
	}
	if u.Direct {
		t.Error("retrieved node marked direct")
	}
}

func TestDirectSourceUsesMarkedDirect(t *testing.T) {
	uses := directSourceUses([]executor.DirectRef{
		{Type: "Scene", Name: "The Storm"},
	})
	if len(uses) != 1 {
		t.Fatalf("expected 1 use, got %d", len(uses))
	}
	if !uses[0].Direct {
		t.Error("direct source not marked direct")
	}
	if uses[0].DocType != "Scene" || uses[0].DocTitle != "The Storm" {
		t.Errorf("unexpected mapping: %+v", uses[0])
	}
	if uses[0].Score != 0 {
		t.Errorf("direct source carries score %v", uses[0].Score)
	}
}

func TestSourceUseDTOsEmptyStaysNil(t *testing.T) {
	if got := sourceUseDTOs(nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := sourceUseDTOs([]entity.SourceUse{}); got != nil {
		t.Errorf("expected nil for empty slice, got %v", got)
	}
}

func TestSourceUseDTOsRoundTripFields(t *testing.T) {
	uses := []entity.SourceUse{
		{Path: "/ws/p1/plan.md", DocType: "Plan", DocTitle: "Salt and Iron", Score: 0.8},
		{DocType: "Note", DocTitle: "Tides", Direct: true},
	}
	dtos := sourceUseDTOs(uses)
	if len(dtos) != 2 {
		t.Fatalf("expected 2 dtos, got %d", len(dtos))
	}
	if dtos[0].Path != "/ws/p1/plan.md" || dtos[0].Score != 0.8 || dtos[0].Direct {
		t.Errorf("retrieved use mapped wrong: %+v", dtos[0])
	}
	if !dtos[1].Direct || dtos[1].DocTitle != "Tides" {
		t.Errorf("direct use mapped wrong: %+v", dtos[1])
	}
}
