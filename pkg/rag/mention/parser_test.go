package mention

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantCount     int
		wantCleanText string
		wantMentions  bool
	}{
		{
			name:          "no mentions",
			text:          "How should the duel end?",
			wantCount:     0,
			wantCleanText: "How should the duel end?",
			wantMentions:  false,
		},
		{
			name:          "single UUID mention",
			text:          "@scene:abc12345-1234-1234-1234-123456789abc What changes here?",
			wantCount:     1,
			wantCleanText: "What changes here?",
			wantMentions:  true,
		},
		{
			name:          "quoted character mention",
			text:          "@character:\"Mara Venn\" Would she forgive him?",
			wantCount:     1,
			wantCleanText: "Would she forgive him?",
			wantMentions:  true,
		},
		{
			name:          "wiki-link mention",
			text:          "[[The Siege]] Summarize the stakes",
			wantCount:     1,
			wantCleanText: "Summarize the stakes",
			wantMentions:  true,
		},
		{
			name:          "mixed mentions",
			text:          "@note:magic @chapter:\"Act One\" [[Mara]] Compare",
			wantCount:     3,
			wantCleanText: "Compare",
			wantMentions:  true,
		},
		{
			name:          "partial mention",
			text:          "@character:regent Explain his motive",
			wantCount:     1,
			wantCleanText: "Explain his motive",
			wantMentions:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse(tt.text)

			if len(result.Mentions) != tt.wantCount {
				t.Errorf("mention count = %d, want %d", len(result.Mentions), tt.wantCount)
			}

			if result.CleanText != tt.wantCleanText {
				t.Errorf("CleanText = %q, want %q", result.CleanText, tt.wantCleanText)
			}

			if result.HasMentions != tt.wantMentions {
				t.Errorf("HasMentions = %v, want %v", result.HasMentions, tt.wantMentions)
			}
		})
	}
}

func TestParseKinds(t *testing.T) {
	result := Parse("@character:\"Mara\" @scene:abc12345-1234-1234-1234-123456789abc [[World Map]]")

	if len(result.Mentions) != 3 {
		t.Fatalf("got %d mentions, want 3", len(result.Mentions))
	}

	byKind := make(map[Kind]Mention)
	for _, m := range result.Mentions {
		byKind[m.Kind] = m
	}

	if m, ok := byKind[KindCharacter]; !ok || m.Value != "Mara" || m.IsID {
		t.Errorf("character mention = %+v, want quoted title Mara", m)
	}
	if m, ok := byKind[KindScene]; !ok || !m.IsID {
		t.Errorf("scene mention = %+v, want UUID reference", m)
	}
	if m, ok := byKind[KindAny]; !ok || m.Value != "World Map" {
		t.Errorf("wiki mention = %+v, want World Map", m)
	}
}

func TestParseUppercaseUUID(t *testing.T) {
	result := Parse("@note:ABC12345-1234-1234-1234-123456789ABC check")
	if len(result.Mentions) != 1 {
		t.Fatalf("got %d mentions, want 1", len(result.Mentions))
	}
	if !result.Mentions[0].IsID {
		t.Error("uppercase UUID should be recognized as an ID")
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(make([]Mention, 3)); err != nil {
		t.Errorf("3 mentions should be fine, got: %v", err)
	}
	if err := Validate(make([]Mention, MaxMentions)); err != nil {
		t.Errorf("%d mentions should be fine, got: %v", MaxMentions, err)
	}
	if err := Validate(make([]Mention, MaxMentions+1)); err == nil {
		t.Error("expected error above the mention limit")
	}
}
