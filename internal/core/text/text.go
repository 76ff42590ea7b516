// Package text holds the pure text helpers of the comprehension pipeline:
// normalisation, word and sentence splitting, and length trimming.
//
// Everything here is deterministic and side-effect free, so it lives beside
// the domain rather than behind a port.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// keptPunctuation is the punctuation that survives normalisation.
const keptPunctuation = `.,;:!?'"-`

// Normalise removes every character that is not a letter, digit, underscore,
// whitespace or basic punctuation, then collapses whitespace runs to a single
// space and trims the ends. Normalise(Normalise(s)) == Normalise(s).
func Normalise(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if keep(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func keep(r rune) bool {
	if r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) ||
		unicode.IsNumber(r) ||
		r == '_' ||
		unicode.IsSpace(r) ||
		strings.ContainsRune(keptPunctuation, r)
}

// Words splits s on whitespace.
func Words(s string) []string {
	return strings.Fields(s)
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// TruncateWords returns the first n words of s joined by single spaces.
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if n < 0 {
		n = 0
	}
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ")
}

// Prefix returns the first n characters (runes) of s.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Sentences splits s after '.', '!' or '?' when followed by whitespace or the
// end of the text. Empty sentences are dropped.
func Sentences(s string) []string {
	var out []string
	runes := []rune(s)
	start := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if sentence := strings.TrimSpace(string(runes[start : i+1])); sentence != "" {
			out = append(out, sentence)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		out = append(out, tail)
	}
	return out
}

// TrimToSentence shortens s to at most maxWords words, cutting at the last
// complete sentence that fits. When not even the first sentence fits, it
// falls back to a hard word cut.
func TrimToSentence(s string, maxWords int) string {
	if WordCount(s) <= maxWords {
		return s
	}
	var kept []string
	total := 0
	for _, sentence := range Sentences(s) {
		n := WordCount(sentence)
		if total+n > maxWords {
			break
		}
		kept = append(kept, sentence)
		total += n
	}
	if len(kept) == 0 {
		return TruncateWords(s, maxWords)
	}
	return strings.Join(kept, " ")
}

// Highlight wraps the first case-insensitive occurrence of needle in haystack
// with mark. The haystack is returned unchanged when needle is absent.
func Highlight(haystack, needle string, mark func(string) string) string {
	needle = strings.TrimSpace(needle)
	if needle == "" || mark == nil {
		return haystack
	}
	lower := strings.ToLower(haystack)
	lowerNeedle := strings.ToLower(needle)
	if len(lower) != len(haystack) {
		return haystack
	}
	idx := strings.Index(lower, lowerNeedle)
	if idx < 0 {
		return haystack
	}
	end := idx + len(lowerNeedle)
	return haystack[:idx] + mark(haystack[idx:end]) + haystack[end:]
}

// Passages groups the sentences of s into consecutive passages of at most
// maxWords words. A sentence longer than maxWords becomes its own passage,
// cut to maxWords words.
func Passages(s string, maxWords int) []string {
	if maxWords <= 0 {
		return nil
	}
	var (
		out     []string
		current []string
		count   int
	)
	flush := func() {
		if len(current) > 0 {
			out = append(out, strings.Join(current, " "))
			current, count = nil, 0
		}
	}
	for _, sentence := range Sentences(s) {
		n := WordCount(sentence)
		if n > maxWords {
			flush()
			out = append(out, TruncateWords(sentence, maxWords))
			continue
		}
		if count+n > maxWords {
			flush()
		}
		current = append(current, sentence)
		count += n
	}
	flush()
	return out
}
