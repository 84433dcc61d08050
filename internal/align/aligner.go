package align

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/ppiankov/juridoc/internal/model"
)

const (
	DefaultThreshold   = 0.6
	DefaultWindowSlack = 2

	epsilon = 1e-9
)

// Aligner maps free-text spans onto contiguous runs of document words
type Aligner struct {
	threshold float64
	slack     int
	logger    *slog.Logger
}

// Option configures an Aligner
type Option func(*Aligner)

// WithThreshold sets the minimum LCS/span-length ratio for a match
func WithThreshold(t float64) Option {
	return func(a *Aligner) {
		if t > 0 && t <= 1 {
			a.threshold = t
		}
	}
}

// WithWindowSlack sets how many tokens a window may differ from the span length
func WithWindowSlack(n int) Option {
	return func(a *Aligner) {
		if n >= 0 {
			a.slack = n
		}
	}
}

// WithLogger sets the logger used for per-span debug output
func WithLogger(l *slog.Logger) Option {
	return func(a *Aligner) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an aligner with the default threshold and window slack
func New(opts ...Option) *Aligner {
	a := &Aligner{
		threshold: DefaultThreshold,
		slack:     DefaultWindowSlack,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Result reports what one Align call changed
type Result struct {
	Toggled  []string // ids of words whose flag went from false to true
	Accepted int      // spans matched at or above the threshold
	Missed   int      // non-empty spans dropped below the threshold
}

// Align sets the flag for entity type e on the best-matching run of words
// for every span. Spans below the threshold are counted as misses.
// Only the flag for e is ever written.
func (a *Aligner) Align(words iter.Seq2[int, *model.Word], e model.EntityType, spans []string) (*Result, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownEntityType, string(e))
	}

	result := &Result{}
	if len(spans) == 0 {
		return result, nil
	}

	idx := newIndex(words)
	if len(idx.words) == 0 {
		return result, nil
	}

	for _, span := range spans {
		spanTokens := Tokens(span)
		if len(spanTokens) == 0 {
			continue
		}

		m, ok := a.bestMatch(idx, idx.lookup(spanTokens))
		if !ok {
			result.Missed++
			a.logger.Debug("span dropped", "entity_type", e, "tokens", len(spanTokens), "score", m.score)
			continue
		}
		result.Accepted++

		first, last := idx.tokenWord[m.first], idx.tokenWord[m.last]
		for pos := first; pos <= last; pos++ {
			w := idx.words[pos]
			on, _ := w.Flag(e)
			if on {
				continue
			}
			_ = w.SetFlag(e, true)
			result.Toggled = append(result.Toggled, w.ID)
		}

		a.logger.Debug("span aligned",
			"entity_type", e,
			"score", m.score,
			"first_word", first,
			"last_word", last)
	}

	return result, nil
}

// index is the token view of a word stream. Tokens are interned to small
// integers so windows can be compared with slice lookups.
type index struct {
	words     []*model.Word
	tokens    []int // token ids in reading order
	tokenWord []int // token position -> absolute word position
	vocab     map[string]int
}

func newIndex(words iter.Seq2[int, *model.Word]) *index {
	idx := &index{vocab: make(map[string]int)}
	for pos, w := range words {
		for len(idx.words) <= pos {
			idx.words = append(idx.words, nil)
		}
		idx.words[pos] = w
		for _, tok := range Tokens(w.Text) {
			idx.tokens = append(idx.tokens, idx.intern(tok))
			idx.tokenWord = append(idx.tokenWord, pos)
		}
	}
	return idx
}

func (idx *index) intern(tok string) int {
	id, ok := idx.vocab[tok]
	if !ok {
		id = len(idx.vocab)
		idx.vocab[tok] = id
	}
	return id
}

// lookup maps span tokens to ids. Tokens absent from the document get
// fresh ids so they can never match.
func (idx *index) lookup(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		ids[i] = idx.intern(tok)
	}
	return ids
}

type match struct {
	first, last int // token positions, inclusive
	score       float64
}

// bestMatch slides windows of len(span)±slack tokens over the document and
// scores each by LCS(window, span)/len(span). The highest score wins; ties go
// to the earliest window, then the shortest. The winner is trimmed to its
// first and last matched token.
func (a *Aligner) bestMatch(idx *index, span []int) (match, bool) {
	n, m := len(idx.tokens), len(span)
	lo, hi := max(1, m-a.slack), m+a.slack

	need := make([]int, len(idx.vocab))
	for _, id := range span {
		need[id]++
	}
	seen := make([]int, len(idx.vocab))

	prev := make([]int, m+1)
	cur := make([]int, m+1)

	bestLCS, bestStart, bestLen := 0, -1, 0
	for s := 0; s < n; s++ {
		kmax := min(hi, n-s)
		kmin := min(lo, kmax)

		// Multiset overlap bounds the LCS of every window starting at s
		bound := 0
		for _, id := range idx.tokens[s : s+kmax] {
			if seen[id] < need[id] {
				bound++
			}
			seen[id]++
		}
		for _, id := range idx.tokens[s : s+kmax] {
			seen[id] = 0
		}
		if float64(bound)/float64(m)+epsilon < a.threshold || (bestStart >= 0 && bound <= bestLCS) {
			continue
		}

		clear(prev)
		for k := 1; k <= kmax; k++ {
			tok := idx.tokens[s+k-1]
			cur[0] = 0
			for j := 1; j <= m; j++ {
				switch {
				case tok == span[j-1]:
					cur[j] = prev[j-1] + 1
				case prev[j] >= cur[j-1]:
					cur[j] = prev[j]
				default:
					cur[j] = cur[j-1]
				}
			}
			prev, cur = cur, prev

			if k >= kmin && prev[m] > bestLCS {
				bestLCS, bestStart, bestLen = prev[m], s, k
			}
		}

		if bestLCS == m {
			break
		}
	}

	score := float64(bestLCS) / float64(m)
	if bestStart < 0 || score+epsilon < a.threshold {
		return match{score: score}, false
	}

	first, last := trim(idx.tokens[bestStart:bestStart+bestLen], span)
	return match{first: bestStart + first, last: bestStart + last, score: score}, true
}

// trim returns the window offsets of the first and last token taking part
// in one longest common subsequence of window and span.
func trim(window, span []int) (int, int) {
	k, m := len(window), len(span)
	dp := make([][]int, k+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := 1; i <= k; i++ {
		for j := 1; j <= m; j++ {
			if window[i-1] == span[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	first, last := -1, -1
	for i, j := k, m; i > 0 && j > 0; {
		switch {
		case window[i-1] == span[j-1] && dp[i][j] == dp[i-1][j-1]+1:
			if last < 0 {
				last = i - 1
			}
			first = i - 1
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	return first, last
}
