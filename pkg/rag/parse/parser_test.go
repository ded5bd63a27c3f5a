package parse

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func captureLog() (*log.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return log.New(buf, "", 0), buf
}

func TestAnswer(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain text", "The crown was forged in Dunhollow.", "The crown was forged in Dunhollow."},
		{"surrounding whitespace trimmed", "  answer \n", "answer"},
		{"empty", "", NoAnswerPlaceholder},
		{"whitespace only", " \n\t ", NoAnswerPlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Answer(tt.raw); got != tt.want {
				t.Errorf("Answer = %q, want %q", got, tt.want)
			}
		})
	}
}

const wellFormedSplit = `<<<SCENE>>>
TITLE: The Ford
CONTENT:
Mara waded into the black water.
<<<END SCENE>>>
<<<SCENE>>>
TITLE: The Smithy
CONTENT:
The forge glowed against the night.
<<<END SCENE>>>`

func TestSceneBlocksWellFormed(t *testing.T) {
	logger, _ := captureLog()
	got := SceneBlocks(wellFormedSplit, logger)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "The Ford" || got[1].Title != "The Smithy" {
		t.Errorf("titles = %q, %q", got[0].Title, got[1].Title)
	}
	if got[0].Content != "Mara waded into the black water." {
		t.Errorf("content[0] = %q", got[0].Content)
	}
}

func TestSceneBlocksSkipsMalformedBlock(t *testing.T) {
	raw := `<<<SCENE>>>
TITLE: Good One
CONTENT:
First scene text.
<<<END SCENE>>>
<<<SCENE>>>
no markers in here at all
<<<END SCENE>>>
<<<SCENE>>>
TITLE: Also Good
CONTENT:
Third scene text.
<<<END SCENE>>>`

	logger, buf := captureLog()
	got := SceneBlocks(raw, logger)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (malformed middle block skipped)", len(got))
	}
	if got[0].Title != "Good One" || got[1].Title != "Also Good" {
		t.Errorf("titles = %q, %q", got[0].Title, got[1].Title)
	}
	if !strings.Contains(buf.String(), "malformed") {
		t.Error("skip was not logged")
	}
}

func TestSceneBlocksMissingEndMarker(t *testing.T) {
	raw := `<<<SCENE>>>
TITLE: Unfinished
CONTENT:
This block never closes.`

	logger, _ := captureLog()
	if got := SceneBlocks(raw, logger); len(got) != 0 {
		t.Errorf("unterminated block was accepted: %v", got)
	}
}

func TestSceneBlocksNoMarkersAtAll(t *testing.T) {
	logger, buf := captureLog()
	got := SceneBlocks("The model just wrote an essay instead.", logger)

	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
	if buf.Len() == 0 {
		t.Error("format miss was not logged")
	}
}

func TestSceneBlocksEmptyInput(t *testing.T) {
	logger, buf := captureLog()
	if got := SceneBlocks("  \n ", logger); len(got) != 0 {
		t.Errorf("whitespace input produced blocks: %v", got)
	}
	if buf.Len() != 0 {
		t.Error("empty input should not log a format miss")
	}
}

func TestSceneBlocksRequireTitleAndContent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"blank title", "<<<SCENE>>>\nTITLE:\nCONTENT:\nSome text.\n<<<END SCENE>>>"},
		{"blank content", "<<<SCENE>>>\nTITLE: A Name\nCONTENT:\n\n<<<END SCENE>>>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := captureLog()
			if got := SceneBlocks(tt.raw, logger); len(got) != 0 {
				t.Errorf("incomplete block was accepted: %v", got)
			}
			if !strings.Contains(buf.String(), "malformed") {
				t.Error("skip was not logged")
			}
		})
	}
}

func TestSceneBlocksRoundTripCoverage(t *testing.T) {
	// Well-formed output with substantial scenes keeps at least 80% of the
	// original text, so no loss warning fires.
	first := strings.Repeat("The river ran high. ", 20)
	second := strings.Repeat("The forge glowed red. ", 20)
	raw := "<<<SCENE>>>\nTITLE: One\nCONTENT:\n" + first + "\n<<<END SCENE>>>\n" +
		"<<<SCENE>>>\nTITLE: Two\nCONTENT:\n" + second + "\n<<<END SCENE>>>"

	logger, buf := captureLog()
	got := SceneBlocks(raw, logger)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	joined := len(got[0].Content) + len(got[1].Content)
	if joined*5 < len(strings.TrimSpace(raw))*4 {
		t.Errorf("parsed contents cover %d of %d chars, want >= 80%%", joined, len(raw))
	}
	if strings.Contains(buf.String(), "kept") {
		t.Errorf("loss warning fired on well-formed input: %s", buf.String())
	}
}

func TestSceneBlocksLogsContentLoss(t *testing.T) {
	// One tiny valid block drowned in junk the parser cannot keep.
	raw := "<<<SCENE>>>\nTITLE: T\nCONTENT:\nok\n<<<END SCENE>>>\n" + strings.Repeat("garbage ", 100)

	logger, buf := captureLog()
	SceneBlocks(raw, logger)

	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("content-loss warning missing, log = %q", buf.String())
	}
}

func TestHeadingBody(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantTitle string
		wantBody  string
	}{
		{
			name:      "heading and body",
			raw:       "## The Ford\nMara waded in.",
			wantTitle: "The Ford",
			wantBody:  "Mara waded in.",
		},
		{
			name:      "preamble before heading dropped",
			raw:       "Here is your scene:\n## The Ford\nMara waded in.",
			wantTitle: "The Ford",
			wantBody:  "Mara waded in.",
		},
		{
			name:      "no heading keeps full text",
			raw:       "Mara waded in without a title.",
			wantTitle: UntitledScene,
			wantBody:  "Mara waded in without a title.",
		},
		{
			name:      "empty heading text",
			raw:       "## \nBody only.",
			wantTitle: UntitledScene,
			wantBody:  "Body only.",
		},
		{
			name:      "empty input",
			raw:       "  ",
			wantTitle: UntitledScene,
			wantBody:  "",
		},
		{
			name:      "indented heading accepted",
			raw:       "  ## The Smithy\nThe forge glowed.",
			wantTitle: "The Smithy",
			wantBody:  "The forge glowed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, body := HeadingBody(tt.raw)
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestNumberedList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "dot form",
			raw:  "1. First option\n2. Second option\n3. Third option",
			want: []string{"First option", "Second option", "Third option"},
		},
		{
			name: "double digit numbering",
			raw:  "9. Ninth\n10. Tenth\n11. Eleventh",
			want: []string{"Ninth", "Tenth", "Eleventh"},
		},
		{
			name: "interleaved prose ignored",
			raw:  "Here are some ideas:\n1. Keep it\nMaybe also:\n2. And this",
			want: []string{"Keep it", "And this"},
		},
		{
			name: "indented items",
			raw:  "  1. Padded",
			want: []string{"Padded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NumberedList(tt.raw, nil)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("item %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestNumberedListFallback(t *testing.T) {
	logger, buf := captureLog()
	raw := "I would phrase it as: the sky mourned."

	got := NumberedList(raw, logger)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0] != raw {
		t.Errorf("fallback item = %q, want the raw text", got[0])
	}
	if !strings.Contains(buf.String(), "falling back") {
		t.Error("fallback was not logged")
	}
}

func TestNumberedListEmpty(t *testing.T) {
	if got := NumberedList("  \n ", nil); got != nil {
		t.Errorf("whitespace input should yield nil, got %v", got)
	}
}
