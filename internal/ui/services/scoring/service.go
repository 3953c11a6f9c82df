package scoring

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
	"github.com/sahilm/fuzzy"

	"cmdpal/internal/domain"
)

// Adapter applies the palette's scoring function to item values
type Adapter struct {
	fn domain.ScoreFunc
}

// NewAdapter wraps fn; a nil fn falls back to Fuzzy
func NewAdapter(fn domain.ScoreFunc) *Adapter {
	if fn == nil {
		fn = Fuzzy
	}
	return &Adapter{fn: fn}
}

// Rank scores an item value against the query. Empty values never match.
func (a *Adapter) Rank(value, query string, keywords []string) float64 {
	v := domain.Normalize(value)
	if v == "" {
		return 0
	}
	score := a.fn(v, query, keywords)
	if score < 0 || math.IsNaN(score) {
		return 0
	}
	return score
}

// candidate joins the value with its keywords so aliases can match
func candidate(value string, keywords []string) string {
	if len(keywords) == 0 {
		return value
	}
	return value + " " + strings.Join(keywords, " ")
}

// Fuzzy scores with sahilm/fuzzy. Raw scores are unbounded in both
// directions, so they are squashed into (0, 1) preserving order.
func Fuzzy(value, query string, keywords []string) float64 {
	matches := fuzzy.Find(query, []string{candidate(value, keywords)})
	if len(matches) == 0 {
		return 0
	}
	return squash(float64(matches[0].Score), 10)
}

func squash(score, scale float64) float64 {
	return 1 / (1 + math.Exp(-score/scale))
}

// FZF scores with the fzf v2 algorithm
type FZF struct {
	mu   sync.Mutex
	slab *util.Slab
}

// NewFZF creates an fzf-backed scorer with its own scratch slab
func NewFZF() *FZF {
	return &FZF{slab: util.MakeSlab(64, 4096)}
}

// Score implements domain.ScoreFunc
func (f *FZF) Score(value, query string, keywords []string) float64 {
	pattern := []rune(domain.Normalize(query))
	if len(pattern) == 0 {
		return 0
	}
	chars := util.ToChars([]byte(strings.ToLower(candidate(value, keywords))))

	f.mu.Lock()
	result, _ := algo.FuzzyMatchV2(true, true, true, &chars, pattern, false, f.slab)
	f.mu.Unlock()

	if result.Score <= 0 {
		return 0
	}
	s := float64(result.Score)
	return s / (s + 64)
}

// Typo tolerates misspellings. Substring hits score highest, earlier
// hits higher still; otherwise the best per-word edit similarity counts
// when it clears minSimilarity.
func Typo(value, query string, keywords []string) float64 {
	q := domain.Normalize(query)
	if q == "" {
		return 0
	}
	text := strings.ToLower(candidate(value, keywords))
	if i := strings.Index(text, q); i >= 0 {
		return 0.75 + 0.25/float64(1+i)
	}

	const minSimilarity = 0.6
	best := 0.0
	for _, word := range strings.Fields(text) {
		longest := len(word)
		if len(q) > longest {
			longest = len(q)
		}
		sim := 1 - float64(levenshtein.ComputeDistance(word, q))/float64(longest)
		if sim > best {
			best = sim
		}
	}
	if best < minSimilarity {
		return 0
	}
	return best * 0.5
}

// Cached memoizes fn in an LRU of the given size
func Cached(fn domain.ScoreFunc, size int) (domain.ScoreFunc, error) {
	cache, err := lru.New[string, float64](size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create score cache of size %d", size)
	}
	return func(value, query string, keywords []string) float64 {
		key := value + "\x00" + query + "\x00" + strings.Join(keywords, "\x01")
		if s, ok := cache.Get(key); ok {
			return s
		}
		s := fn(value, query, keywords)
		cache.Add(key, s)
		return s
	}, nil
}

var builtin = map[string]func() domain.ScoreFunc{
	"fuzzy": func() domain.ScoreFunc { return Fuzzy },
	"fzf":   func() domain.ScoreFunc { return NewFZF().Score },
	"typo":  func() domain.ScoreFunc { return Typo },
}

// Names lists the built-in scorers
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ByName returns a built-in scorer; "" selects fuzzy
func ByName(name string) (domain.ScoreFunc, error) {
	if name == "" {
		name = "fuzzy"
	}
	mk, ok := builtin[strings.ToLower(name)]
	if !ok {
		return nil, errors.WithHintf(
			errors.Newf("unknown scorer %q", name),
			"valid scorers are: %s", strings.Join(Names(), ", "))
	}
	return mk(), nil
}

// Positions returns the byte offsets of text that match query, for highlighting
func Positions(text, query string) []int {
	if query == "" {
		return nil
	}
	matches := fuzzy.Find(query, []string{text})
	if len(matches) == 0 {
		return nil
	}
	return matches[0].MatchedIndexes
}
