package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// FilterOptions holds the tunable thresholds of the content-safety filter.
// Fields are ordered to minimize memory padding.
type FilterOptions struct {
	Denylist               []string // Literal phrases, matched case-insensitively
	PromoEmoji             []string // Promotional emoji counted by rule 5
	SpecialChars           string   // Characters counted by the density rule
	MaxUppercaseRatio      float64  // Reject above this uppercase fraction
	MaxSpecialCharRatio    float64  // Reject above this special-char density
	MinLettersForCaseCheck int      // Uppercase rule only applies at or above this many letters
	MaxPromoEmoji          int      // Reject above this many promotional emoji
	MinContentLength       int      // Reject trimmed text shorter than this
	MaxCharRun             int      // Reject runs of one character at or above this length
}

// DefaultFilterOptions returns the filter thresholds used in production.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		Denylist:               defaultDenylist(),
		PromoEmoji:             []string{"🔥", "💰", "💵", "🚀"},
		SpecialChars:           "!?$#@*",
		MaxUppercaseRatio:      0.6,
		MaxSpecialCharRatio:    0.25,
		MinLettersForCaseCheck: 15,
		MaxPromoEmoji:          5,
		MinContentLength:       5,
		MaxCharRun:             6,
	}
}

// defaultDenylist lists phrases likely to trip AutoMod or get a comment
// removed. Grouped by category.
func defaultDenylist() []string {
	return []string{
		// Spam-like patterns
		"click here", "free money", "make money fast", "get rich", "earn money",
		"work from home", "passive income", "easy money", "quick cash",

		// Promotional / commercial
		"buy now", "limited time", "act now", "don't miss", "special offer",
		"discount code", "promo code", "affiliate", "referral link",

		// Link shorteners
		"bit.ly", "tinyurl", "shortened link", "goo.gl",

		// Solicitation
		"dm me", "pm me for", "message me", "whatsapp", "telegram",
		"crypto", "bitcoin", "forex", "trading signals", "investment opportunity",

		// Self-promotion
		"check out my", "subscribe to my", "follow me", "my channel",
		"my youtube", "my instagram", "my tiktok", "my website",

		// Karma begging
		"upvote if", "upvote this", "give me karma", "need karma",

		// Offensive
		"retard", "stupid ass", "dumb fuck", "kill yourself",

		// Rule-breaking
		"vote manipulation", "brigade", "spam", "bot account",
	}
}

// SafetyFilter evaluates task content against heuristic spam rules.
// Evaluate is pure: identical input always yields identical output.
type SafetyFilter struct {
	opts FilterOptions
}

// NewSafetyFilter creates a SafetyFilter with the given options.
func NewSafetyFilter(opts FilterOptions) *SafetyFilter {
	return &SafetyFilter{opts: opts}
}

// Evaluate checks text against the rules in order; the first failing rule
// wins. It returns whether the text is acceptable and a human-readable
// reason.
func (f *SafetyFilter) Evaluate(text string) (bool, string) {
	if strings.TrimSpace(text) == "" {
		return true, "no content to check"
	}

	lower := strings.ToLower(text)
	for _, phrase := range f.opts.Denylist {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return false, fmt.Sprintf("contains suspicious phrase: %q", phrase)
		}
	}

	if reason, ok := f.checkUppercase(text); !ok {
		return false, reason
	}
	if reason, ok := f.checkSpecialChars(text); !ok {
		return false, reason
	}
	if reason, ok := f.checkPromoEmoji(text); !ok {
		return false, reason
	}
	if len(strings.TrimSpace(text)) < f.opts.MinContentLength {
		return false, "content too short (likely low-effort)"
	}
	if reason, ok := f.checkRepetition(text); !ok {
		return false, reason
	}

	return true, "content appears safe"
}

func (f *SafetyFilter) checkUppercase(text string) (string, bool) {
	letters, upper := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters < f.opts.MinLettersForCaseCheck {
		return "", true
	}
	if float64(upper)/float64(letters) > f.opts.MaxUppercaseRatio {
		return "excessive uppercase (possible spam)", false
	}
	return "", true
}

func (f *SafetyFilter) checkSpecialChars(text string) (string, bool) {
	runes := []rune(text)
	special := 0
	for _, r := range runes {
		if strings.ContainsRune(f.opts.SpecialChars, r) {
			special++
		}
	}
	if float64(special)/float64(len(runes)) > f.opts.MaxSpecialCharRatio {
		return "excessive special characters", false
	}
	return "", true
}

func (f *SafetyFilter) checkPromoEmoji(text string) (string, bool) {
	count := 0
	for _, e := range f.opts.PromoEmoji {
		count += strings.Count(text, e)
	}
	if count > f.opts.MaxPromoEmoji {
		return "excessive promotional emojis", false
	}
	return "", true
}

func (f *SafetyFilter) checkRepetition(text string) (string, bool) {
	run := 0
	var prev rune
	for i, r := range text {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= f.opts.MaxCharRun {
			return fmt.Sprintf("repetitive characters detected: %q", strings.Repeat(string(r), f.opts.MaxCharRun)), false
		}
		prev = r
	}
	return "", true
}
