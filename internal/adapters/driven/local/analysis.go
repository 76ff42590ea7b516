package local

import (
	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/lang/en"
)

// english is bleve's English analyser: unicode tokens, possessives and
// stop words removed, lower-cased, porter-stemmed.
var english = bleve.NewIndexMapping().AnalyzerNamed(en.AnalyzerName)

// terms returns the analysed terms of s in order, repeats included.
func terms(s string) []string {
	if english == nil || s == "" {
		return nil
	}
	stream := english.Analyze([]byte(s))
	out := make([]string, 0, len(stream))
	for _, tok := range stream {
		out = append(out, string(tok.Term))
	}
	return out
}

// termSet returns the distinct analysed terms of s.
func termSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range terms(s) {
		set[t] = struct{}{}
	}
	return set
}

// stem returns the analysed form of a single word, or "" for a stop word.
func stem(word string) string {
	ts := terms(word)
	if len(ts) != 1 {
		return ""
	}
	return ts[0]
}
