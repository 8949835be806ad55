package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/naysayer/internal/model"
)

// Analyzer produces a risk report for one request
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisReport, error)
}

// AnalysisJob analyzes one product
type AnalysisJob struct {
	Index    int
	Request  model.AnalysisRequest
	Analyzer Analyzer
}

// Execute executes the analysis job
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.Analyze(ctx, j.Request)
	return &AnalysisResult{
		Index:   j.Index,
		Request: j.Request,
		Report:  report,
		Error:   err,
	}
}

// AnalysisResult is the outcome of one batch entry
type AnalysisResult struct {
	Index   int
	Request model.AnalysisRequest
	Report  *model.AnalysisReport
	Error   error
}

// GetError returns the error from the analysis result
func (r *AnalysisResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many products concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessRequests analyzes every request and returns results in input order
func (b *BatchProcessor) ProcessRequests(ctx context.Context, reqs []model.AnalysisRequest) []*AnalysisResult {
	if len(reqs) == 0 {
		return []*AnalysisResult{}
	}

	// Create worker pool
	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Submit jobs
	for i, req := range reqs {
		job := &AnalysisJob{
			Index:    i,
			Request:  req,
			Analyzer: b.analyzer,
		}
		if err := pool.Submit(job); err != nil {
			break
		}
	}

	// Wait for all jobs to complete
	results := pool.Wait()

	// Restore input order; entries never run keep the context error
	ordered := make([]*AnalysisResult, len(reqs))
	for _, result := range results {
		r := result.(*AnalysisResult)
		ordered[r.Index] = r
	}
	for i, r := range ordered {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			ordered[i] = &AnalysisResult{Index: i, Request: reqs[i], Error: err}
		}
	}

	return ordered
}

// ProcessFile reads requests from a file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalysisResult, error) {
	reqs, err := ReadRequestsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}

	return b.ProcessRequests(ctx, reqs), nil
}

// ReadRequestsFromFile reads one request per line:
//
//	product name | usage scenario | brand
//
// Scenario and brand are optional. Blank lines and # comments are skipped
// and duplicate lines are analyzed once.
func ReadRequestsFromFile(filePath string) ([]model.AnalysisRequest, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var reqs []model.AnalysisRequest
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		req := ParseRequestLine(line)
		if req.ProductName == "" {
			continue
		}

		key := req.ProductName + "\x00" + req.UserScenario + "\x00" + req.Brand
		if !seen[key] {
			seen[key] = true
			reqs = append(reqs, req)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return reqs, nil
}

// ParseRequestLine splits "product | scenario | brand" into a request
func ParseRequestLine(line string) model.AnalysisRequest {
	parts := strings.SplitN(line, "|", 3)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	req := model.AnalysisRequest{ProductName: parts[0]}
	if len(parts) > 1 {
		req.UserScenario = parts[1]
	}
	if len(parts) > 2 {
		req.Brand = parts[2]
	}
	return req
}
