package gateway

import (
	"math/rand/v2"
	"sort"
	"sync"
)

const (
	defaultScoreWindow = 20
	defaultJitter      = 0.05
)

// Scorer orders gateway candidates and learns from probe outcomes
//
//go:generate mockgen -source=scorer.go -destination=../mocks/scorer.go -package=mocks -mock_names=Scorer=MockScorer
type Scorer interface {
	RecordOutcome(gateway string, success bool)
	OrderedCandidates(cidPath string) []Candidate
}

// PriorityScorer always returns the registry order and ignores outcomes
type PriorityScorer struct {
	registry *Registry
}

// NewPriorityScorer creates a scorer with fixed registry order
func NewPriorityScorer(registry *Registry) *PriorityScorer {
	return &PriorityScorer{registry: registry}
}

func (s *PriorityScorer) RecordOutcome(string, bool) {}

func (s *PriorityScorer) OrderedCandidates(string) []Candidate {
	return s.registry.Candidates()
}

// PerformanceScorer ranks gateways by the success ratio of their most recent probes
//
// Each score is Laplace smoothed, so a gateway without history starts at 0.5 and a
// failing gateway is deprioritized but never excluded.
type PerformanceScorer struct {
	registry *Registry
	window   int
	jitter   float64
	random   func() float64

	mu       sync.Mutex
	outcomes map[string]*outcomeWindow
}

// PerformanceScorerOption configures a PerformanceScorer
type PerformanceScorerOption func(*PerformanceScorer)

// WithWindow sets how many recent outcomes are kept per gateway
func WithWindow(n int) PerformanceScorerOption {
	return func(s *PerformanceScorer) {
		if n > 0 {
			s.window = n
		}
	}
}

// WithJitter sets the maximum random amount added to each score and its source
// A nil source disables jitter
func WithJitter(amount float64, source func() float64) PerformanceScorerOption {
	return func(s *PerformanceScorer) {
		s.jitter = amount
		s.random = source
	}
}

// NewPerformanceScorer creates a scorer backed by a rolling outcome window
func NewPerformanceScorer(registry *Registry, opts ...PerformanceScorerOption) *PerformanceScorer {
	s := &PerformanceScorer{
		registry: registry,
		window:   defaultScoreWindow,
		jitter:   defaultJitter,
		random:   rand.Float64,
		outcomes: make(map[string]*outcomeWindow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PerformanceScorer) RecordOutcome(gateway string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.outcomes[gateway]
	if !ok {
		w = &outcomeWindow{results: make([]bool, 0, s.window), size: s.window}
		s.outcomes[gateway] = w
	}
	w.add(success)
}

// Score returns the smoothed success ratio of a gateway without jitter
func (s *PerformanceScorer) Score(gateway string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked(gateway)
}

func (s *PerformanceScorer) OrderedCandidates(string) []Candidate {
	candidates := s.registry.Candidates()

	s.mu.Lock()
	scores := make(map[string]float64, len(candidates))
	for _, c := range candidates {
		score := s.scoreLocked(c.Name)
		if s.random != nil && s.jitter > 0 {
			score += s.random() * s.jitter
		}
		scores[c.Name] = score
	}
	s.mu.Unlock()

	// Stable sort keeps registry order between equal scores
	sort.SliceStable(candidates, func(i, j int) bool {
		return scores[candidates[i].Name] > scores[candidates[j].Name]
	})
	return candidates
}

func (s *PerformanceScorer) scoreLocked(gateway string) float64 {
	w, ok := s.outcomes[gateway]
	if !ok {
		return 0.5
	}
	successes := 0
	for _, r := range w.results {
		if r {
			successes++
		}
	}
	return float64(successes+1) / float64(len(w.results)+2)
}

// outcomeWindow is a fixed-size ring of recent outcomes
type outcomeWindow struct {
	results []bool
	size    int
	next    int
}

func (w *outcomeWindow) add(success bool) {
	if len(w.results) < w.size {
		w.results = append(w.results, success)
		return
	}
	w.results[w.next] = success
	w.next = (w.next + 1) % w.size
}
