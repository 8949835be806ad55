package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/naysayer/internal/model"
)

// MockAnalyzer implements Analyzer
type MockAnalyzer struct {
	ShouldError bool
}

func (m *MockAnalyzer) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisReport, error) {
	time.Sleep(10 * time.Millisecond) // Simulate work
	if m.ShouldError {
		return nil, errors.New("analysis error")
	}
	return &model.AnalysisReport{
		ProductName: req.ProductName,
		Mode:        model.ModeDemo,
	}, nil
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessRequests(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{}, 2)

	reqs := []model.AnalysisRequest{
		{ProductName: "robot vacuum"},
		{ProductName: "projector"},
		{ProductName: "air fryer"},
		{ProductName: "kettle"},
	}

	results := processor.ProcessRequests(context.Background(), reqs)

	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Request.ProductName, res.Error)
			continue
		}
		if res.Index != i || res.Report.ProductName != reqs[i].ProductName {
			t.Errorf("result %d out of order: %s", i, res.Report.ProductName)
		}
	}
}

func TestBatchProcessor_ProcessRequests_Error(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{ShouldError: true}, 2)

	results := processor.ProcessRequests(context.Background(), []model.AnalysisRequest{{ProductName: "kettle"}})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].GetError() == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Report != nil {
		t.Error("expected nil report on error")
	}
}

func TestBatchProcessor_ProcessRequests_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{}, 2)

	results := processor.ProcessRequests(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessRequests_Cancelled(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reqs := []model.AnalysisRequest{{ProductName: "a"}, {ProductName: "b"}, {ProductName: "c"}}
	results := processor.ProcessRequests(ctx, reqs)

	if len(results) != 3 {
		t.Fatalf("expected a result per request, got %d", len(results))
	}
	for i, res := range results {
		if res == nil || res.Request.ProductName != reqs[i].ProductName {
			t.Fatalf("missing result %d", i)
		}
	}
}

func TestReadRequestsFromFile(t *testing.T) {
	content := `robot vacuum X10 | two cats and a carpet
# comment
projector|bedroom|Acme


robot vacuum X10 | two cats and a carpet
air fryer   `

	reqs, err := ReadRequestsFromFile(writeTempFile(t, content))
	if err != nil {
		t.Fatalf("ReadRequestsFromFile failed: %v", err)
	}

	want := []model.AnalysisRequest{
		{ProductName: "robot vacuum X10", UserScenario: "two cats and a carpet"},
		{ProductName: "projector", UserScenario: "bedroom", Brand: "Acme"},
		{ProductName: "air fryer"},
	}
	if diff := cmp.Diff(want, reqs); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestReadRequestsFromFile_NonExistent(t *testing.T) {
	_, err := ReadRequestsFromFile("non_existent_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestParseRequestLine(t *testing.T) {
	tests := []struct {
		line string
		want model.AnalysisRequest
	}{
		{"kettle", model.AnalysisRequest{ProductName: "kettle"}},
		{"kettle | daily tea", model.AnalysisRequest{ProductName: "kettle", UserScenario: "daily tea"}},
		{" | no product", model.AnalysisRequest{UserScenario: "no product"}},
		{"a | b | c | d", model.AnalysisRequest{ProductName: "a", UserScenario: "b", Brand: "c | d"}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseRequestLine(tt.line)); diff != "" {
			t.Errorf("ParseRequestLine(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestAnalysisResult_GetError(t *testing.T) {
	r1 := &AnalysisResult{Error: nil}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("analysis failed")
	r2 := &AnalysisResult{Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeTempFile(t, "robot vacuum\nprojector | bedroom\n# comment\n\nair fryer\n")

	processor := NewBatchProcessor(&MockAnalyzer{}, 2)

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{}, 2)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{}, 2)

	results, err := processor.ProcessFile(context.Background(), writeTempFile(t, ""))
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}
