package filter

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: createHelperFunctions(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements Compiler for expr-based filters
type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache
}

// Compile compiles an expression into an executable filter. Identifiers are
// checked against the request environment, so unknown fields fail here.
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	env := createRuntimeEnvironment(overseerr.Request{}, c.helperFuncs)
	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AsBool(), // Ensure boolean result
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against a request. Requests that fail to
// evaluate do not match.
func (f *exprFilter) Evaluate(req overseerr.Request) bool {
	ok, err := f.Match(req)
	return err == nil && ok
}

// Match evaluates the filter and reports evaluation failures
func (f *exprFilter) Match(req overseerr.Request) (bool, error) {
	result, err := expr.Run(f.program, createRuntimeEnvironment(req, f.helpers))
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, RequestID: req.ID, Err: err}
	}
	// Result is guaranteed to be bool due to AsBool() option during compilation
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// createHelperFunctions creates the static helper functions
func createHelperFunctions() map[string]any {
	return map[string]any{
		"daysSince": func(t time.Time) int {
			return int(time.Since(t).Hours() / 24)
		},
		"daysAgo": func(days int) time.Time {
			return time.Now().AddDate(0, 0, -days)
		},
		"monthsAgo": func(months int) time.Time {
			return time.Now().AddDate(0, -months, 0)
		},
		"yearsAgo": func(years int) time.Time {
			return time.Now().AddDate(-years, 0, 0)
		},
		"parseDate": func(dateStr string) time.Time {
			t, _ := time.Parse("2006-01-02", dateStr)
			return t
		},
		"containsText": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
	}
}

// createRuntimeEnvironment creates the environment a filter sees for one request
func createRuntimeEnvironment(req overseerr.Request, helpers map[string]any) map[string]any {
	env := make(map[string]any, len(helpers)+32)
	maps.Copy(env, helpers)

	requester := req.RequestedBy.GetDisplayName()
	approver := ""
	if u := req.GetApprover(); u != nil {
		approver = u.GetDisplayName()
	}
	modifier := ""
	if req.ModifiedBy != nil {
		modifier = req.ModifiedBy.GetDisplayName()
	}
	seasons := req.SeasonNumbers()
	status := req.Status.String()

	env["Request"] = req

	// Request-specific helper functions using closures
	env["requestedBy"] = func(name string) bool {
		return strings.EqualFold(requester, name) || strings.EqualFold(req.RequestedBy.Email, name)
	}
	env["approvedBy"] = func(name string) bool {
		return approver != "" && strings.EqualFold(approver, name)
	}
	env["requestStatus"] = func(s string) bool {
		return strings.EqualFold(status, s)
	}
	env["requestedAfter"] = func(t time.Time) bool {
		return req.CreatedAt.After(t)
	}
	env["requestedBefore"] = func(t time.Time) bool {
		return req.CreatedAt.Before(t)
	}
	env["hasSeason"] = func(n int) bool {
		return slices.Contains(seasons, n)
	}
	env["isMovie"] = func() bool {
		return req.IsMovieRequest()
	}
	env["isTV"] = func() bool {
		return !req.IsMovieRequest()
	}

	// Direct request properties for convenience
	env["ID"] = req.ID
	env["Status"] = status
	env["MediaStatus"] = req.Media.Status.String()
	env["Type"] = string(req.Type)
	env["TmdbID"] = req.Media.TmdbID
	env["Is4K"] = req.Is4K
	env["IsAutoRequest"] = req.IsAutoRequest
	env["RequestedBy"] = requester
	env["RequestedByID"] = req.RequestedBy.ID
	env["RequestedByEmail"] = req.RequestedBy.Email
	env["ModifiedBy"] = modifier
	env["ApprovedBy"] = approver
	env["CreatedAt"] = req.CreatedAt
	env["UpdatedAt"] = req.UpdatedAt
	env["Seasons"] = seasons

	return env
}

var defaultCompiler = NewExprCompiler(WithCache(100))

// CompileFilter compiles an expression with the shared cached compiler
func CompileFilter(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}
