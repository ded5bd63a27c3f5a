package executor

import "ai-storywriting-be/pkg/rag/prompt"

// Config carries every generation knob in one place. The assist service
// reads the same values when it prepares requests, so pipeline and caller
// never disagree about budgets.
type Config struct {
	QueryTopK    int
	DraftTopK    int
	SplitTopK    int
	RephraseTopK int

	// PrevSceneCount is how many preceding scenes the caller should load
	// into a draft request's chapter context.
	PrevSceneCount  int
	SuggestionCount int

	Temperature      float64
	DraftTemperature float64

	Limits prompt.Limits
}

func DefaultConfig() Config {
	return Config{
		QueryTopK:        8,
		DraftTopK:        6,
		SplitTopK:        4,
		RephraseTopK:     4,
		PrevSceneCount:   2,
		SuggestionCount:  3,
		Temperature:      0.7,
		DraftTemperature: 0.85,
		Limits:           prompt.DefaultLimits(),
	}
}
