package mention

import (
	"regexp"
	"strings"
)

// Kind is the document kind a mention points at.
type Kind string

const (
	KindCharacter Kind = "character"
	KindScene     Kind = "scene"
	KindChapter   Kind = "chapter"
	KindNote      Kind = "note"
	// KindAny is used for wiki-links, which carry a title but no kind. The
	// resolver decides what they point at.
	KindAny Kind = "any"
)

// Mention is a single document reference extracted from a request.
type Mention struct {
	Kind  Kind
	Value string // UUID string or title text
	IsID  bool   // true when Value is a UUID
	Raw   string // the original matched text
}

// ParseResult contains all parsed mentions and the cleaned request text.
type ParseResult struct {
	Mentions    []Mention
	CleanText   string
	HasMentions bool
}

// UUID regex pattern (standard UUID format)
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Mention patterns:
//
//	@character:"Mara Venn"  - quoted title reference
//	@scene:uuid             - direct UUID reference
//	@note:partial           - partial title match
//	[[Title]]               - wiki-style reference, kind resolved later
var (
	quotedPattern   = regexp.MustCompile(`@(character|scene|chapter|note):"([^"]+)"`)
	plainPattern    = regexp.MustCompile(`@(character|scene|chapter|note):(\S+)`)
	wikiLinkPattern = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// Parse extracts all document mentions from request text.
// Supports:
//   - @<kind>:uuid      → direct UUID lookup
//   - @<kind>:"Title"   → quoted title lookup
//   - @<kind>:partial   → partial title match
//   - [[Title]]         → wiki-link, kind decided by the resolver
//
// Returns the list of mentions and the text with all of them removed.
func Parse(text string) *ParseResult {
	result := &ParseResult{
		Mentions:  make([]Mention, 0),
		CleanText: text,
	}

	var allMatches []string

	// 1. Quoted mentions first, so their bodies never match the plain pattern
	quotedMatches := quotedPattern.FindAllStringSubmatch(text, -1)
	for _, match := range quotedMatches {
		if len(match) >= 3 {
			result.Mentions = append(result.Mentions, Mention{
				Kind:  Kind(match[1]),
				Value: match[2],
				Raw:   match[0],
			})
			allMatches = append(allMatches, match[0])
		}
	}

	tempText := text
	for _, match := range allMatches {
		tempText = strings.Replace(tempText, match, "", 1)
	}

	// 2. Plain mentions
	plainMatches := plainPattern.FindAllStringSubmatch(tempText, -1)
	for _, match := range plainMatches {
		if len(match) >= 3 {
			value := match[2]
			result.Mentions = append(result.Mentions, Mention{
				Kind:  Kind(match[1]),
				Value: value,
				IsID:  uuidPattern.MatchString(value),
				Raw:   match[0],
			})
			allMatches = append(allMatches, match[0])
		}
	}

	// 3. Wiki-links
	wikiMatches := wikiLinkPattern.FindAllStringSubmatch(text, -1)
	for _, match := range wikiMatches {
		if len(match) >= 2 {
			result.Mentions = append(result.Mentions, Mention{
				Kind:  KindAny,
				Value: match[1],
				Raw:   match[0],
			})
			allMatches = append(allMatches, match[0])
		}
	}

	// 4. Build clean text by removing every match
	cleanText := text
	for _, match := range allMatches {
		cleanText = strings.Replace(cleanText, match, "", 1)
	}
	cleanText = strings.TrimSpace(cleanText)
	cleanText = spacePattern.ReplaceAllString(cleanText, " ")

	result.CleanText = cleanText
	result.HasMentions = len(result.Mentions) > 0

	return result
}

// MaxMentions is the hard limit for mentions in a single request
const MaxMentions = 5

// Validate checks if mentions are within limits
func Validate(mentions []Mention) error {
	if len(mentions) > MaxMentions {
		return ErrTooManyMentions{}
	}
	return nil
}

// ErrTooManyMentions is returned when more than MaxMentions are provided
type ErrTooManyMentions struct{}

func (e ErrTooManyMentions) Error() string {
	return "too many document mentions: maximum 5 allowed"
}
