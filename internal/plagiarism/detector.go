package plagiarism

import (
	"context"
	"runtime"
	"sort"
	"sync"

	appErr "examjudge/pkg/errors"
)

// CodeSubmission is the detector's view of one submission.
type CodeSubmission struct {
	SubmissionID string `json:"submissionId"`
	UserID       string `json:"userId"`
	Code         string `json:"code"`
}

// SimilarityPair is one flagged (or measured) unordered pair. Threshold
// records the cutoff the sweep ran with so a stored pair stays
// interpretable after the configured threshold changes.
type SimilarityPair struct {
	SubmissionID1 string  `json:"submissionId1"`
	SubmissionID2 string  `json:"submissionId2"`
	UserID1       string  `json:"userId1"`
	UserID2       string  `json:"userId2"`
	Similarity    float64 `json:"similarity"`
	Threshold     float64 `json:"threshold"`
	Flagged       bool    `json:"flagged"`
}

// Stats summarizes a full pairwise sweep.
type Stats struct {
	TotalSubmissions  int              `json:"totalSubmissions"`
	TotalComparisons  int              `json:"totalComparisons"`
	SuspiciousPairs   int              `json:"suspiciousPairs"`
	Threshold         float64          `json:"threshold"`
	FlaggedPercentage float64          `json:"flaggedPercentage"`
	AverageSimilarity float64          `json:"averageSimilarity"`
	HighestSimilarity float64          `json:"highestSimilarity"`
	Pairs             []SimilarityPair `json:"pairs"`
}

// ComparisonResult is the outcome of a direct two-way comparison.
type ComparisonResult struct {
	RawSimilarity        float64 `json:"rawSimilarity"`
	NormalizedSimilarity float64 `json:"normalizedSimilarity"`
	IsSuspicious         bool    `json:"isSuspicious"`
}

// Detector fans the O(N²) pairwise comparison out over a worker pool.
// Scaling is O(N² · L²) in submissions and code length; callers run it
// per question, not per exam.
type Detector struct {
	workers int
}

// NewDetector creates a detector. workers <= 0 means GOMAXPROCS.
func NewDetector(workers int) *Detector {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Detector{workers: workers}
}

// Detect compares every unordered pair on normalized code and returns
// the pairs scoring at or above the threshold, highest first.
func (d *Detector) Detect(ctx context.Context, submissions []CodeSubmission, threshold float64) ([]SimilarityPair, error) {
	if threshold < 0 || threshold > 100 {
		return nil, appErr.New(appErr.InvalidThreshold).WithDetail("threshold", threshold)
	}
	pairs, err := d.allPairs(ctx, submissions)
	if err != nil {
		return nil, err
	}
	flagged := make([]SimilarityPair, 0)
	for _, p := range pairs {
		if p.Similarity >= threshold {
			p.Threshold = threshold
			p.Flagged = true
			flagged = append(flagged, p)
		}
	}
	sortPairs(flagged)
	return flagged, nil
}

// Analyze runs a full sweep and aggregates statistics. Average and
// highest similarity cover every pair, flagged or not. Fewer than two
// submissions yields zero stats, not an error.
func (d *Detector) Analyze(ctx context.Context, submissions []CodeSubmission, threshold float64) (*Stats, error) {
	if threshold < 0 || threshold > 100 {
		return nil, appErr.New(appErr.InvalidThreshold).WithDetail("threshold", threshold)
	}
	stats := &Stats{
		TotalSubmissions: len(submissions),
		Threshold:        threshold,
		Pairs:            []SimilarityPair{},
	}
	if len(submissions) < 2 {
		return stats, nil
	}

	pairs, err := d.allPairs(ctx, submissions)
	if err != nil {
		return nil, err
	}

	stats.TotalComparisons = len(pairs)
	var sum float64
	for _, p := range pairs {
		sum += p.Similarity
		if p.Similarity > stats.HighestSimilarity {
			stats.HighestSimilarity = p.Similarity
		}
		if p.Similarity >= threshold {
			p.Threshold = threshold
			p.Flagged = true
			stats.Pairs = append(stats.Pairs, p)
		}
	}
	stats.SuspiciousPairs = len(stats.Pairs)
	stats.AverageSimilarity = round2(sum / float64(len(pairs)))
	stats.FlaggedPercentage = round2(float64(stats.SuspiciousPairs) / float64(len(pairs)) * 100)
	sortPairs(stats.Pairs)
	return stats, nil
}

// CompareTwo scores a single pair of code blobs directly.
func (d *Detector) CompareTwo(code1, code2 string, threshold float64) ComparisonResult {
	normalized := Compare(code1, code2, true)
	return ComparisonResult{
		RawSimilarity:        Compare(code1, code2, false),
		NormalizedSimilarity: normalized,
		IsSuspicious:         normalized >= threshold,
	}
}

// allPairs computes the similarity of every unordered pair in parallel.
// Pair indices are fanned out over the worker pool; each worker writes
// only to its own results, so no iteration state is shared.
func (d *Detector) allPairs(ctx context.Context, submissions []CodeSubmission) ([]SimilarityPair, error) {
	n := len(submissions)
	if n < 2 {
		return nil, nil
	}

	normalized := make([]string, n)
	for i, s := range submissions {
		normalized[i] = Normalize(s.Code)
	}

	type pairIndex struct{ i, j int }
	jobs := make(chan pairIndex)
	results := make(chan SimilarityPair, d.workers)

	var wg sync.WaitGroup
	for w := 0; w < d.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results <- SimilarityPair{
					SubmissionID1: submissions[idx.i].SubmissionID,
					SubmissionID2: submissions[idx.j].SubmissionID,
					UserID1:       submissions[idx.i].UserID,
					UserID2:       submissions[idx.j].UserID,
					Similarity:    Similarity(normalized[idx.i], normalized[idx.j]),
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				select {
				case jobs <- pairIndex{i: i, j: j}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	pairs := make([]SimilarityPair, 0, n*(n-1)/2)
	for pair := range results {
		pairs = append(pairs, pair)
	}
	if err := ctx.Err(); err != nil {
		return nil, appErr.Wrapf(err, appErr.PlagiarismScanFailed, "scan cancelled")
	}
	return pairs, nil
}

func sortPairs(pairs []SimilarityPair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Similarity > pairs[j].Similarity
	})
}
