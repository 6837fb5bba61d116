package filter

import (
	"context"

	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

// Filter defines the basic interface for request filters
type Filter interface {
	// Evaluate checks if a request matches the filter criteria
	Evaluate(req overseerr.Request) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// Evaluator evaluates filters against requests
type Evaluator interface {
	// Evaluate returns the requests matching filter, in input order
	Evaluate(ctx context.Context, filter CompiledFilter, requests []overseerr.Request) ([]overseerr.Request, error)
}

// BatchEvaluator evaluates multiple filters concurrently
type BatchEvaluator interface {
	// EvaluateBatch evaluates every filter against requests
	EvaluateBatch(ctx context.Context, filters map[string]CompiledFilter, requests []overseerr.Request) (map[string][]overseerr.Request, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}
