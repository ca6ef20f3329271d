package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/veritas/internal/model"
	"go.uber.org/zap"
)

// Analyzer produces a result for one submission
type Analyzer interface {
	Analyze(ctx context.Context, sub model.Submission) (model.Result, error)
}

// Recorder stores a successful analysis in history
type Recorder interface {
	Record(sub model.Submission, res model.Result) (model.HistoryEntry, error)
}

// CheckJob analyzes one claim
type CheckJob struct {
	Index      int
	Submission model.Submission
	Analyzer   Analyzer
	Recorder   Recorder
}

// Execute runs the analysis and records it on success
func (j *CheckJob) Execute(ctx context.Context) Result {
	out := &CheckResult{Index: j.Index, Claim: j.Submission.Query}

	res, err := j.Analyzer.Analyze(ctx, j.Submission)
	if err != nil {
		out.Error = err
		return out
	}
	out.Result = &res

	if j.Recorder != nil {
		entry, err := j.Recorder.Record(j.Submission, res)
		if err != nil {
			zap.L().Warn("batch history append failed", zap.Int("index", j.Index), zap.Error(err))
		} else {
			out.EntryID = entry.ID
		}
	}
	return out
}

// CheckResult is the outcome of one claim in a batch
type CheckResult struct {
	Index   int
	Claim   string
	Result  *model.Result
	EntryID string
	Error   error
}

// GetError returns the analysis error, if any
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks many claims concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	recorder    Recorder
	concurrency int
}

// NewBatchProcessor creates a batch processor. recorder may be nil.
func NewBatchProcessor(analyzer Analyzer, recorder Recorder, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		recorder:    recorder,
		concurrency: concurrency,
	}
}

// ProcessClaims analyzes every claim in mode and returns results in input order
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []string, mode model.Mode) []*CheckResult {
	out := make([]*CheckResult, len(claims))
	if len(claims) == 0 {
		return out
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	go func() {
		defer pool.Close()
		for i, claim := range claims {
			job := &CheckJob{
				Index:      i,
				Submission: model.Submission{Query: claim, Mode: mode},
				Analyzer:   b.analyzer,
				Recorder:   b.recorder,
			}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	for r := range pool.Results() {
		cr := r.(*CheckResult)
		out[cr.Index] = cr
	}

	// claims never executed because ctx was cancelled
	for i, r := range out {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &CheckResult{Index: i, Claim: claims[i], Error: err}
		}
	}
	return out
}

// ProcessFile reads claims from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, mode model.Mode) ([]*CheckResult, error) {
	claims, err := ReadClaimsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	return b.ProcessClaims(ctx, claims, mode), nil
}

// ReadClaimsFromFile reads one claim per line, skipping blank lines, # comments and duplicates
func ReadClaimsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			claims = append(claims, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return claims, nil
}
