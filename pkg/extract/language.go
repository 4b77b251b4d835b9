package extract

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// Language detection is informational only: the detected language is
// recorded as a "lang:xx" tag on the candidate and never gates ingestion.

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English,
				lingua.Spanish,
				lingua.French,
				lingua.German,
				lingua.Italian,
				lingua.Portuguese,
			).
			Build()
	})
	return detector
}

// languageTag returns a "lang:xx" tag for the text, or "" when detection is
// inconclusive. Only a bounded sample is examined; recipe pages repeat their
// language signal early and often.
func languageTag(text string) string {
	sample := strings.TrimSpace(text)
	if len(sample) < 40 {
		return ""
	}
	if len(sample) > 2000 {
		sample = sample[:2000]
	}
	lang, ok := languageDetector().DetectLanguageOf(sample)
	if !ok {
		return ""
	}
	return "lang:" + strings.ToLower(lang.IsoCode639_1().String())
}
