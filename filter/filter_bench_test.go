package filter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

// generateTestRequests creates test request data
func generateTestRequests(count int) []overseerr.Request {
	requests := make([]overseerr.Request, count)

	for i := range count {
		mediaType := overseerr.MediaTypeMovie
		var seasons []overseerr.SeasonRequest
		if i%2 == 1 {
			mediaType = overseerr.MediaTypeTV
			seasons = []overseerr.SeasonRequest{{SeasonNumber: 1 + i%3}}
		}

		requests[i] = overseerr.Request{
			ID:     i,
			Status: overseerr.RequestStatus(i%5 + 1),
			Type:   mediaType,
			Media: overseerr.MediaInfo{
				ID:        i,
				TmdbID:    1000 + i,
				Status:    overseerr.MediaStatus(i%5 + 1),
				MediaType: mediaType,
			},
			Is4K:      i%3 == 0,
			CreatedAt: time.Now().AddDate(0, 0, -i%60),
			UpdatedAt: time.Now().AddDate(0, 0, -i%30),
			RequestedBy: overseerr.User{
				ID:       i % 7,
				Email:    fmt.Sprintf("user%d@example.com", i%7),
				Username: strPtr(fmt.Sprintf("user%d", i%7)),
			},
			Seasons: seasons,
		}
	}

	return requests
}

// Benchmark filter compilation
func BenchmarkCompileFilter(b *testing.B) {
	expressions := []struct {
		name string
		expr string
	}{
		{"simple", `requestStatus("pending")`},
		{"complex", `requestStatus("pending") and isTV() and hasSeason(2) and CreatedAt > daysAgo(14)`},
	}

	for _, tc := range expressions {
		b.Run(tc.name, func(b *testing.B) {
			compiler := NewExprCompiler()
			b.ReportAllocs()
			for b.Loop() {
				if _, err := compiler.Compile(tc.expr); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark filter compilation with caching
func BenchmarkCompileFilterWithCache(b *testing.B) {
	compiler := NewExprCompiler(WithCache(100))
	expression := `requestStatus("pending") and isMovie()`

	b.ReportAllocs()
	for b.Loop() {
		if _, err := compiler.Compile(expression); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark single filter evaluation
func BenchmarkEvaluateFilter(b *testing.B) {
	requests := generateTestRequests(1000)
	filter, err := CompileFilter(`requestedBy("user3") and isMovie()`)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		matches := 0
		for _, req := range requests {
			if filter.Evaluate(req) {
				matches++
			}
		}
		_ = matches
	}
}

// Benchmark concurrent evaluation
func BenchmarkEvaluateConcurrent(b *testing.B) {
	requests := generateTestRequests(10000)
	filter, err := CompileFilter(`requestStatus("approved") and not Is4K`)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	evaluators := []struct {
		name      string
		evaluator *ConcurrentEvaluator
	}{
		{"workers-1", NewConcurrentEvaluator(WithWorkers(1))},
		{"workers-4", NewConcurrentEvaluator(WithWorkers(4))},
		{"workers-8", NewConcurrentEvaluator(WithWorkers(8))},
		{"workers-default", NewConcurrentEvaluator()},
	}

	for _, tc := range evaluators {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := tc.evaluator.Evaluate(ctx, filter, requests); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// Benchmark batch evaluation
func BenchmarkEvaluateBatch(b *testing.B) {
	requests := generateTestRequests(5000)
	filters := map[string]string{
		"pending": `requestStatus("pending")`,
		"recent":  `CreatedAt > daysAgo(7)`,
		"shows":   `isTV() and hasSeason(1)`,
		"user":    `requestedBy("user1")`,
		"complex": `isMovie() and Is4K and MediaStatus == "AVAILABLE"`,
	}

	compiled := make(map[string]CompiledFilter)
	for name, expr := range filters {
		filter, err := CompileFilter(expr)
		if err != nil {
			b.Fatal(err)
		}
		compiled[name] = filter
	}

	ctx := context.Background()
	evaluator := NewConcurrentEvaluator()

	b.ReportAllocs()
	for b.Loop() {
		if _, err := evaluator.EvaluateBatch(ctx, compiled, requests); err != nil {
			b.Fatal(err)
		}
	}
}
