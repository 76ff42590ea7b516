package local

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/lang/en"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/text"
)

const passageField = "text"

// passageDoc is the indexed form of a passage.
type passageDoc struct {
	Text string `json:"text"`
}

// Hit is one ranked passage.
type Hit struct {
	Position int
	Text     string
	Score    float64
}

// PassageIndex ranks the passages of one document against questions.
// Passages are consecutive sentences of up to passageWords words.
type PassageIndex struct {
	index    bleve.Index
	passages []string
}

// NewPassageIndex splits content into passages and indexes them in memory
// with the English analyser.
func NewPassageIndex(content string, passageWords int) (*PassageIndex, error) {
	if passageWords <= 0 {
		passageWords = domain.DefaultPassageWords
	}

	m := bleve.NewIndexMapping()
	m.DefaultAnalyzer = en.AnalyzerName
	if english == nil {
		return nil, fmt.Errorf("passage index: analyser %q not registered", en.AnalyzerName)
	}

	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("passage index: %w", err)
	}

	passages := text.Passages(content, passageWords)
	batch := idx.NewBatch()
	for i, p := range passages {
		if err := batch.Index(strconv.Itoa(i), passageDoc{Text: p}); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("passage index: %w", err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("passage index: %w", err)
	}

	return &PassageIndex{index: idx, passages: passages}, nil
}

// Len returns the number of passages.
func (p *PassageIndex) Len() int {
	return len(p.passages)
}

// Passage returns passage i.
func (p *PassageIndex) Passage(i int) string {
	return p.passages[i]
}

// Search returns up to k passages matching question, best first.
func (p *PassageIndex) Search(ctx context.Context, question string, k int) ([]Hit, error) {
	if k <= 0 || len(p.passages) == 0 {
		return nil, nil
	}

	q := bleve.NewMatchQuery(question)
	q.SetField(passageField)
	req := bleve.NewSearchRequestOptions(q, k, 0, false)

	res, err := p.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search passages: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		pos, err := strconv.Atoi(h.ID)
		if err != nil || pos < 0 || pos >= len(p.passages) {
			continue
		}
		hits = append(hits, Hit{Position: pos, Text: p.passages[pos], Score: h.Score})
	}
	return hits, nil
}

// Terms returns the distinct analysed terms of s: lower-cased, stop words
// removed, stemmed.
func (p *PassageIndex) Terms(s string) map[string]struct{} {
	return termSet(s)
}

// Confidence scores how well hits answer question, in [0,100].
// Coverage is the share of question terms found in the top passage;
// dominance is how far the top passage is ahead of the runner-up.
func (p *PassageIndex) Confidence(question string, hits []Hit) int {
	if len(hits) == 0 {
		return 0
	}
	qTerms := p.Terms(question)
	if len(qTerms) == 0 {
		return 0
	}

	top := p.Terms(hits[0].Text)
	found := 0
	for t := range qTerms {
		if _, ok := top[t]; ok {
			found++
		}
	}
	coverage := float64(found) / float64(len(qTerms))

	dominance := 1.0
	if len(hits) > 1 && hits[0].Score+hits[1].Score > 0 {
		dominance = hits[0].Score / (hits[0].Score + hits[1].Score)
	}

	return domain.ClampConfidence(int(math.Round(100 * coverage * (0.5 + 0.5*dominance))))
}

// BestSentence returns the sentence of passage sharing the most analysed
// terms with query, preferring the earliest on ties.
func (p *PassageIndex) BestSentence(passage, query string) string {
	return bestSentence(passage, p.Terms(query), p.Terms)
}

// Close releases the index.
func (p *PassageIndex) Close() error {
	return p.index.Close()
}

// bestSentence picks the sentence of s whose terms overlap want the most.
func bestSentence(s string, want map[string]struct{}, terms func(string) map[string]struct{}) string {
	sentences := text.Sentences(s)
	if len(sentences) == 0 {
		return ""
	}

	best, bestScore := sentences[0], -1
	for _, sentence := range sentences {
		score := 0
		for t := range terms(sentence) {
			if _, ok := want[t]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = sentence, score
		}
	}
	return best
}
