package filter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

func strPtr(s string) *string {
	return &s
}

func TestCompileFilter(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `requestStatus("pending")`,
			wantErr:    false,
		},
		{
			name:        "empty expression",
			expression:  "   ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `requestedBy("unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown identifier",
			expression: `Watched == true`,
			wantErr:    true,
		},
		{
			name:       "non boolean result",
			expression: `TmdbID + 1`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `isTV() and hasSeason(2) and CreatedAt > daysAgo(30) and not Is4K`,
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := CompileFilter(tt.expression)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
					return
				}
				var compErr *CompilationError
				if !errors.As(err, &compErr) {
					t.Errorf("expected CompilationError, got %T", err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if filter == nil {
					t.Errorf("expected filter but got nil")
				}
			}
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	approver := &overseerr.User{ID: 1, Email: "admin@example.com", DisplayName: strPtr("Admin")}
	req := overseerr.Request{
		ID:     42,
		Status: overseerr.RequestStatusApproved,
		Type:   overseerr.MediaTypeTV,
		Media: overseerr.MediaInfo{
			ID:        9,
			TmdbID:    1399,
			Status:    overseerr.MediaStatusProcessing,
			MediaType: overseerr.MediaTypeTV,
		},
		CreatedAt: time.Now().AddDate(0, -3, 0),
		UpdatedAt: time.Now().AddDate(0, 0, -1),
		RequestedBy: overseerr.User{
			ID:       7,
			Email:    "john@example.com",
			Username: strPtr("john"),
		},
		ModifiedBy: approver,
		Seasons: []overseerr.SeasonRequest{
			{SeasonNumber: 1, Status: overseerr.RequestStatusApproved},
			{SeasonNumber: 2, Status: overseerr.RequestStatusApproved},
		},
	}

	tests := []struct {
		name       string
		expression string
		expected   bool
	}{
		{
			name:       "requested by username",
			expression: `requestedBy("JOHN")`,
			expected:   true,
		},
		{
			name:       "requested by email",
			expression: `requestedBy("john@example.com")`,
			expected:   true,
		},
		{
			name:       "approved by",
			expression: `approvedBy("admin")`,
			expected:   true,
		},
		{
			name:       "status helper",
			expression: `requestStatus("approved")`,
			expected:   true,
		},
		{
			name:       "status variable",
			expression: `Status == "PENDING"`,
			expected:   false,
		},
		{
			name:       "media status",
			expression: `MediaStatus == "PROCESSING"`,
			expected:   true,
		},
		{
			name:       "tv request",
			expression: `isTV() and not isMovie() and Type == "tv"`,
			expected:   true,
		},
		{
			name:       "season membership",
			expression: `hasSeason(2) and not hasSeason(3) and len(Seasons) == 2`,
			expected:   true,
		},
		{
			name:       "date comparison",
			expression: `CreatedAt < daysAgo(30) and requestedAfter(yearsAgo(1))`,
			expected:   true,
		},
		{
			name:       "requested before",
			expression: `requestedBefore(monthsAgo(6))`,
			expected:   false,
		},
		{
			name:       "days since",
			expression: `daysSince(UpdatedAt) < 7`,
			expected:   true,
		},
		{
			name:       "text helper",
			expression: `containsText(RequestedByEmail, "EXAMPLE")`,
			expected:   true,
		},
		{
			name:       "ids",
			expression: `ID == 42 and TmdbID == 1399 and RequestedByID == 7`,
			expected:   true,
		},
		{
			name:       "parse date",
			expression: `CreatedAt > parseDate("2001-01-01")`,
			expected:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := CompileFilter(tt.expression)
			if err != nil {
				t.Fatalf("failed to compile filter: %v", err)
			}

			result := filter.Evaluate(req)
			if result != tt.expected {
				t.Errorf("expected %v but got %v for expression %q", tt.expected, result, tt.expression)
			}
		})
	}
}

func TestApproverRequiresApproval(t *testing.T) {
	req := overseerr.Request{
		ID:          1,
		Status:      overseerr.RequestStatusDeclined,
		RequestedBy: overseerr.User{ID: 2, Email: "jane@example.com"},
		ModifiedBy:  &overseerr.User{ID: 1, Email: "admin@example.com", DisplayName: strPtr("Admin")},
	}

	filter, err := CompileFilter(`approvedBy("Admin") or ApprovedBy != ""`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}
	if filter.Evaluate(req) {
		t.Error("declined request should not have an approver")
	}

	filter, err = CompileFilter(`ModifiedBy == "Admin"`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}
	if !filter.Evaluate(req) {
		t.Error("expected modifier to be exposed")
	}
}

func TestEvaluationError(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"explode": func() (bool, error) {
			return false, errors.New("boom")
		},
	}))

	filter, err := compiler.Compile(`explode()`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	req := overseerr.Request{ID: 5}
	if filter.Evaluate(req) {
		t.Error("failed evaluation should not match")
	}

	ef, ok := filter.(*exprFilter)
	if !ok {
		t.Fatalf("unexpected filter type %T", filter)
	}
	_, err = ef.Match(req)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.RequestID != 5 {
		t.Errorf("expected request id 5, got %d", evalErr.RequestID)
	}
}

func TestConcurrentEvaluation(t *testing.T) {
	requests := generateTestRequests(1000)

	filter, err := CompileFilter(`requestStatus("pending") and isMovie()`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	ctx := context.Background()
	evaluator := NewConcurrentEvaluator(WithWorkers(4), WithBatchSize(50))

	matches, err := evaluator.Evaluate(ctx, filter, requests)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	// Verify results by sequential evaluation
	var expectedMatches []overseerr.Request
	for _, req := range requests {
		if filter.Evaluate(req) {
			expectedMatches = append(expectedMatches, req)
		}
	}

	if len(matches) != len(expectedMatches) {
		t.Fatalf("expected %d matches but got %d", len(expectedMatches), len(matches))
	}
	for i := range matches {
		if matches[i].ID != expectedMatches[i].ID {
			t.Fatalf("match %d out of order: got request %d, want %d", i, matches[i].ID, expectedMatches[i].ID)
		}
	}
}

func TestEvaluateCanceled(t *testing.T) {
	filter, err := CompileFilter(`isMovie()`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	evaluator := NewConcurrentEvaluator(WithWorkers(2), WithBatchSize(10))
	if _, err := evaluator.Evaluate(ctx, filter, generateTestRequests(100)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	matches, err := evaluator.Evaluate(ctx, filter, nil)
	if err != nil || len(matches) != 0 {
		t.Errorf("expected empty result for no requests, got %v, %v", matches, err)
	}
}

func TestBatchEvaluation(t *testing.T) {
	requests := generateTestRequests(500)
	manager := NewManager(WithEvaluator(NewConcurrentEvaluator(WithWorkers(3))))

	filters := map[string]string{
		"pending": `requestStatus("pending")`,
		"movies":  `isMovie()`,
		"fourK":   `Is4K`,
	}
	if err := manager.RegisterFilters(filters); err != nil {
		t.Fatalf("failed to register filters: %v", err)
	}

	results, err := manager.EvaluateAll(context.Background(), requests)
	if err != nil {
		t.Fatalf("batch evaluation failed: %v", err)
	}

	if len(results) != len(filters) {
		t.Errorf("expected %d filter results but got %d", len(filters), len(results))
	}

	// generateTestRequests cycles status over five values and type over two
	if got := len(results["pending"]); got != 100 {
		t.Errorf("expected 100 pending requests, got %d", got)
	}
	if got := len(results["movies"]); got != 250 {
		t.Errorf("expected 250 movie requests, got %d", got)
	}
	if got := len(results["fourK"]); got != 167 {
		t.Errorf("expected 167 4K requests, got %d", got)
	}

	selected, err := manager.EvaluateSelected(context.Background(), []string{"movies"}, requests)
	if err != nil {
		t.Fatalf("selected evaluation failed: %v", err)
	}
	if len(selected) != 1 {
		t.Errorf("expected 1 filter result but got %d", len(selected))
	}
}

func TestFilterManager(t *testing.T) {
	manager := NewManager()
	ctx := context.Background()

	filters := map[string]string{
		"pending": `requestStatus("pending")`,
		"recent":  `CreatedAt > daysAgo(7)`,
		"shows":   `isTV()`,
	}

	if err := manager.RegisterFilters(filters); err != nil {
		t.Fatalf("failed to register filters: %v", err)
	}

	names := manager.ListFilters()
	want := []string{"pending", "recent", "shows"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("expected filters %v but got %v", want, names)
	}

	filter, exists := manager.GetFilter("pending")
	if !exists {
		t.Error("expected filter 'pending' to exist")
	}
	if filter == nil {
		t.Error("expected non-nil filter")
	}

	requests := generateTestRequests(100)
	matches, err := manager.EvaluateFilter(ctx, "pending", requests)
	if err != nil {
		t.Fatalf("failed to evaluate filter: %v", err)
	}
	if len(matches) != 20 {
		t.Errorf("expected 20 matches, got %d", len(matches))
	}

	if _, err := manager.EvaluateFilter(ctx, "missing", requests); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("expected ErrUnknownFilter, got %v", err)
	}
	if _, err := manager.EvaluateSelected(ctx, []string{"pending", "missing"}, requests); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("expected ErrUnknownFilter, got %v", err)
	}

	// A bad expression registers nothing
	err = manager.RegisterFilters(map[string]string{"ok": `isMovie()`, "bad": `nope(`})
	if err == nil {
		t.Fatal("expected compile error")
	}
	if _, exists := manager.GetFilter("ok"); exists {
		t.Error("expected no filters registered after a failed batch")
	}

	adhoc, err := manager.Compile(`isMovie() and requestStatus("pending")`)
	if err != nil {
		t.Fatalf("failed to compile ad-hoc filter: %v", err)
	}
	matches, err = manager.Evaluate(ctx, adhoc, requests)
	if err != nil {
		t.Fatalf("failed to evaluate ad-hoc filter: %v", err)
	}
	if len(matches) != 10 {
		t.Errorf("expected 10 pending movies, got %d", len(matches))
	}
	if _, exists := manager.GetFilter(adhoc.Expression()); exists {
		t.Error("ad-hoc filters must not be registered")
	}
}

func TestCacheEffectiveness(t *testing.T) {
	compiler := NewExprCompiler(WithCache(2))
	expression := `requestStatus("approved") and isMovie()`

	first, err := compiler.Compile(expression)
	if err != nil {
		t.Fatalf("first compilation failed: %v", err)
	}

	second, err := compiler.Compile(expression)
	if err != nil {
		t.Fatalf("second compilation failed: %v", err)
	}
	if first != second {
		t.Error("expected cached filter on second compile")
	}

	if compiler.Size() != 1 {
		t.Errorf("expected cache size 1 but got %d", compiler.Size())
	}

	// Fill past capacity; the oldest entry is evicted
	for _, e := range []string{`isTV()`, `Is4K`} {
		if _, err := compiler.Compile(e); err != nil {
			t.Fatalf("compile %q: %v", e, err)
		}
	}
	if compiler.Size() != 2 {
		t.Errorf("expected cache size 2 but got %d", compiler.Size())
	}

	compiler.Clear()
	if compiler.Size() != 0 {
		t.Errorf("expected cache size 0 after clear but got %d", compiler.Size())
	}
}

func TestUncachedCompiler(t *testing.T) {
	compiler := NewExprCompiler()
	if _, err := compiler.Compile(`isMovie()`); err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if compiler.Size() != 0 {
		t.Errorf("expected no caching, got size %d", compiler.Size())
	}
}
