// Package reconcile compares publication collections by shared identifiers.
//
// A pairwise comparison annotates every record of a source collection with
// whether any of its identifiers appears anywhere in a target collection.
// A batch comparison runs every unordered pair of a list of collections and
// summarizes the overlap of each pair.
package reconcile

import (
	"fmt"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/collection"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/extract"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/logger"
)

// ProgressFunc is called after each pair of a batch completes.
type ProgressFunc func(done, total int)

// Reconciler runs pairwise and batch comparisons.
// A Reconciler holds no per-run state; it is safe to reuse sequentially.
type Reconciler struct {
	extractor *extract.Extractor
	logger    *logger.Logger
	progress  ProgressFunc
	mode      CoverageMode
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClassifier sets the identifier column rules.
func WithClassifier(c *extract.Classifier) Option {
	return func(r *Reconciler) { r.extractor = extract.New(c, r.logger) }
}

// WithLogger sets the logger used for warnings and batch progress.
func WithLogger(l *logger.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger.OrNop(l)
		r.extractor = extract.New(r.extractor.Classifier(), r.logger)
	}
}

// WithProgress registers a callback invoked after each batch pair.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Reconciler) { r.progress = fn }
}

// WithCoverageMode selects the headline coverage metric of batch recaps.
func WithCoverageMode(m CoverageMode) Option {
	return func(r *Reconciler) { r.mode = m }
}

// New creates a Reconciler with the default identifier rules.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{logger: logger.Nop(), mode: CoverageSymmetric}
	r.extractor = extract.New(nil, r.logger)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stats summarizes one pairwise comparison.
type Stats struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	SourceTotal int     `json:"source_total"`
	TargetTotal int     `json:"target_total"`
	Matched     int     `json:"matched"`
	Coverage    float64 `json:"coverage"` // matched / source total, in percent
	Warnings    []error `json:"-"`
}

// Pair annotates every record of source with its presence in target.
//
// A source record matches when any of its identifiers belongs to the union of
// all target identifiers. The matching identifier reported is the first one in
// extraction order. Records without identifiers never match. An empty target
// is not an error: every record is unmatched and an EmptyTargetWarning is
// attached to the stats. The inputs are not modified.
func (r *Reconciler) Pair(source, target *collection.Collection) (*Augmented, *Stats, error) {
	if source == nil {
		return nil, nil, &ConfigurationError{Side: "source", Reason: "collection is nil"}
	}
	if target == nil {
		return nil, nil, &ConfigurationError{Side: "target", Reason: "collection is nil"}
	}

	src := r.extractor.Extract(source)
	aug := newAugmented(src, target.Name)
	stats := &Stats{
		Source:      source.Name,
		Target:      target.Name,
		SourceTotal: source.Len(),
		TargetTotal: target.Len(),
		Warnings:    src.Warnings,
	}

	if target.Empty() {
		w := &EmptyTargetWarning{Source: source.Name, Target: target.Name}
		stats.Warnings = append(stats.Warnings, w)
		r.logger.Warn("target collection is empty", "source", source.Name, "target", target.Name)
		return aug, stats, nil
	}

	tgt := r.extractor.Extract(target)
	stats.Warnings = append(stats.Warnings, tgt.Warnings...)
	index := tgt.Index()

	for i, ids := range src.IDs {
		for _, id := range ids {
			if _, ok := index[id]; ok {
				aug.Matched[i] = true
				aug.MatchingID[i] = id
				break
			}
		}
	}

	stats.Matched = aug.MatchedCount()
	stats.Coverage = percent(stats.Matched, stats.SourceTotal)
	return aug, stats, nil
}

// PairKey names the result of comparing source against target.
func PairKey(source, target string) string {
	return source + "_" + target
}

// PairResult is one entry of a batch.
type PairResult struct {
	Key       string
	Augmented *Augmented
	Stats     *Stats
}

// Batch holds the results of an all-pairs comparison.
type Batch struct {
	Mode     CoverageMode
	Pairs    []PairResult // enumeration order
	Recap    []RecapEntry // one per successful pair, same order
	Failures []*PairComparisonError
}

// Result looks up a pair by key.
func (b *Batch) Result(key string) (*PairResult, bool) {
	for i := range b.Pairs {
		if b.Pairs[i].Key == key {
			return &b.Pairs[i], true
		}
	}
	return nil, false
}

// PairCount returns the number of unordered pairs among n collections.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// All compares every unordered pair (A, B) of collections, with A before B
// in input order, and returns the augmented source of each pair plus a recap.
//
// At least two collections are required and names must be unique and
// non-empty. A pair that fails is recorded in Batch.Failures and the batch
// continues.
func (r *Reconciler) All(collections []*collection.Collection) (*Batch, error) {
	if err := validateBatch(collections); err != nil {
		return nil, err
	}

	total := PairCount(len(collections))
	batch := &Batch{Mode: r.mode}
	r.logger.Info("starting batch comparison", "collections", len(collections), "pairs", total)

	done := 0
	for i := 0; i < len(collections); i++ {
		for j := i + 1; j < len(collections); j++ {
			a, b := collections[i], collections[j]
			res, err := r.safePair(a, b)
			done++
			if err != nil {
				batch.Failures = append(batch.Failures, err)
				r.logger.Error("pair comparison failed", "source", a.Name, "target", b.Name, "error", err.Err)
			} else {
				batch.Pairs = append(batch.Pairs, *res)
				batch.Recap = append(batch.Recap, newRecapEntry(res.Stats, r.mode))
			}
			if r.progress != nil {
				r.progress(done, total)
			}
		}
	}

	r.logger.Info("batch comparison finished", "pairs", len(batch.Pairs), "failures", len(batch.Failures))
	return batch, nil
}

func (r *Reconciler) safePair(a, b *collection.Collection) (res *PairResult, perr *PairComparisonError) {
	defer func() {
		if rec := recover(); rec != nil {
			res = nil
			perr = &PairComparisonError{Source: a.Name, Target: b.Name, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	aug, stats, err := r.Pair(a, b)
	if err != nil {
		return nil, &PairComparisonError{Source: a.Name, Target: b.Name, Err: err}
	}
	return &PairResult{Key: PairKey(a.Name, b.Name), Augmented: aug, Stats: stats}, nil
}

func validateBatch(collections []*collection.Collection) error {
	if len(collections) < 2 {
		return &ConfigurationError{Reason: fmt.Sprintf("at least 2 collections are required, got %d", len(collections))}
	}

	var bad []string
	seen := make(map[string]bool, len(collections))
	for i, c := range collections {
		switch {
		case c == nil:
			bad = append(bad, fmt.Sprintf("#%d (nil)", i+1))
		case c.Name == "":
			bad = append(bad, fmt.Sprintf("#%d (unnamed)", i+1))
		case seen[c.Name]:
			bad = append(bad, fmt.Sprintf("%s (duplicate)", c.Name))
		default:
			seen[c.Name] = true
		}
	}
	if len(bad) > 0 {
		return &ConfigurationError{Names: bad, Reason: "collections must be non-nil with unique names"}
	}
	return nil
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
