package prompt

import "strings"

// stopwordMarkers lists a handful of very common, largely unambiguous
// function words per language. No statistical language-ID library exists
// anywhere in the pack (see DESIGN.md), so detection is a small
// stdlib-only scoring heuristic: count marker-word hits per language and
// take the best match, defaulting to English.
var stopwordMarkers = map[string][]string{
	"en": {"the", "and", "room", "building", "house", "floor", "wall"},
	"tr": {"ve", "oda", "bina", "ev", "kat", "duvar", "için"},
	"de": {"und", "der", "die", "das", "zimmer", "haus", "wand"},
	"fr": {"et", "le", "la", "chambre", "maison", "mur", "pour"},
	"es": {"y", "el", "la", "habitación", "casa", "pared", "para"},
}

// DetectLanguage scores text against each language's marker words and
// returns the best-scoring language code, defaulting to "en" when no
// marker is found at all.
func DetectLanguage(text string) string {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[strings.Trim(w, ".,!?;:()")] = struct{}{}
	}

	best := "en"
	bestScore := 0
	for lang, markers := range stopwordMarkers {
		score := 0
		for _, marker := range markers {
			if _, ok := wordSet[marker]; ok {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = lang
		}
	}
	return best
}
