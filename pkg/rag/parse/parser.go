package parse

import (
	"log"
	"regexp"
	"strings"
)

// Markers of the delimited scene-block format. The prompt layer instructs
// the model to emit exactly these strings.
const (
	SceneBlockStart = "<<<SCENE>>>"
	SceneBlockEnd   = "<<<END SCENE>>>"
	SceneTitleKey   = "TITLE:"
	SceneContentKey = "CONTENT:"
)

// Placeholders used when a completion arrives without the piece it should
// have carried.
const (
	NoAnswerPlaceholder = "No answer was generated. Please try rephrasing your question."
	UntitledScene       = "Untitled Scene"
)

// Answer normalizes a free-form completion. Whitespace-only output maps to
// the placeholder so callers always get something presentable.
func Answer(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return NoAnswerPlaceholder
	}
	return text
}

// SceneBlock is one parsed scene from a delimited multi-block response.
type SceneBlock struct {
	Title   string
	Content string
}

// SceneBlocks extracts the delimited blocks from a split-chapter completion.
// Each block is parsed independently; a block without a non-empty title and
// a non-empty content is skipped without affecting its neighbors. Output
// with no start marker at all yields an empty slice, never an error, the
// model simply failed the contract.
//
// When the surviving contents cover less than 80% of the raw output a loss
// warning is logged so format drift shows up in the audit log.
func SceneBlocks(raw string, logger *log.Logger) []SceneBlock {
	scenes := make([]SceneBlock, 0)
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return scenes
	}

	segments := strings.Split(raw, SceneBlockStart)
	if len(segments) < 2 {
		if logger != nil {
			logger.Printf("[PARSE] No %s markers in %d chars of output", SceneBlockStart, len(trimmed))
		}
		return scenes
	}

	kept := 0
	for i, segment := range segments[1:] {
		block, ok := parseSceneBlock(segment)
		if !ok {
			if logger != nil {
				logger.Printf("[PARSE] Skipping malformed scene block %d", i+1)
			}
			continue
		}
		kept += len(block.Content)
		scenes = append(scenes, block)
	}

	if len(scenes) == 0 {
		if logger != nil {
			logger.Printf("[PARSE] No scene blocks survived parsing (%d segments)", len(segments)-1)
		}
		return scenes
	}
	if total := len(trimmed); kept*5 < total*4 && logger != nil {
		logger.Printf("[PARSE] Scene blocks kept %d of %d chars, check the model output format", kept, total)
	}
	return scenes
}

func parseSceneBlock(segment string) (SceneBlock, bool) {
	end := strings.Index(segment, SceneBlockEnd)
	if end < 0 {
		return SceneBlock{}, false
	}
	body := segment[:end]

	titleAt := strings.Index(body, SceneTitleKey)
	contentAt := strings.Index(body, SceneContentKey)
	if titleAt < 0 || contentAt < 0 || contentAt < titleAt {
		return SceneBlock{}, false
	}

	title := strings.TrimSpace(body[titleAt+len(SceneTitleKey) : contentAt])
	content := strings.TrimSpace(body[contentAt+len(SceneContentKey):])
	if title == "" || content == "" {
		return SceneBlock{}, false
	}
	return SceneBlock{Title: title, Content: content}, true
}

// HeadingBody splits a drafted scene into its title and text. The title
// comes from the first markdown h2 line; anything the model wrote before it
// is discarded as preamble. Without a heading the whole text becomes the
// body under a placeholder title.
func HeadingBody(raw string) (string, string) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return UntitledScene, ""
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmedLine := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmedLine, "## ") {
			continue
		}
		title := strings.TrimSpace(strings.TrimPrefix(trimmedLine, "## "))
		if title == "" {
			title = UntitledScene
		}
		body := strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		return title, body
	}
	return UntitledScene, text
}

var numberedItem = regexp.MustCompile(`^\s*\d+\.\s+(.+)$`)

// NumberedList collects the "N. text" lines of a rephrase completion in
// order of appearance. When a non-empty completion contains no numbered
// line at all, the raw text itself becomes the single suggestion; the miss
// is logged so it can be told apart from a genuine one-item list.
func NumberedList(raw string, logger *log.Logger) []string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	items := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if m := numberedItem.FindStringSubmatch(line); m != nil {
			if item := strings.TrimSpace(m[1]); item != "" {
				items = append(items, item)
			}
		}
	}

	if len(items) == 0 {
		if logger != nil {
			logger.Printf("[PARSE] No numbered items found, falling back to the raw text as one suggestion")
		}
		return []string{text}
	}
	return items
}
