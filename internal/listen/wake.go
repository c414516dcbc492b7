package listen

import (
	"sort"
	"strings"
)

// Spellings the speech model tends to produce for "whisper". Kept as a
// fixed table; a custom wake word gets only its own folded form unless
// extra variants are configured.
var whisperVariants = []string{
	"visper", "wisper", "whispar", "vısper",
	"fısper", "fisper", "whisperr", "whısper",
	"wispır", "vispır", "vıspar", "wispar", "hvisper",
}

// wakeMatcher detects and strips the wake word and its phonetic variants.
// Matching is a case-insensitive substring check over dotless-ı-folded
// text; this is the only place Turkish letters get simplified.
type wakeMatcher struct {
	variants []string // folded, longest first
}

func newWakeMatcher(wakeWord string, extra []string) *wakeMatcher {
	seen := make(map[string]bool)
	var variants []string

	add := func(v string) {
		v = foldWake(strings.TrimSpace(v))
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	add(wakeWord)
	if foldWake(wakeWord) == "whisper" {
		for _, v := range whisperVariants {
			add(v)
		}
	}
	for _, v := range extra {
		add(v)
	}

	// Longest first so "whisperr" is stripped before "whisper" eats it.
	sort.Slice(variants, func(i, j int) bool {
		if len(variants[i]) != len(variants[j]) {
			return len(variants[i]) > len(variants[j])
		}
		return variants[i] < variants[j]
	})

	return &wakeMatcher{variants: variants}
}

// Match reports whether the transcript contains the wake word or any variant.
func (m *wakeMatcher) Match(text string) bool {
	folded := foldWake(text)
	for _, v := range m.variants {
		if strings.Contains(folded, v) {
			return true
		}
	}
	return false
}

// Strip removes every wake word occurrence and returns the folded
// remainder, trimmed. Empty result means the utterance was wake word only.
func (m *wakeMatcher) Strip(text string) string {
	s := foldWake(text)
	for _, v := range m.variants {
		for {
			idx := strings.Index(s, v)
			if idx < 0 {
				break
			}
			s = s[:idx] + s[idx+len(v):]
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

func foldWake(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "ı", "i")
}
