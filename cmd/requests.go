package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshrmcdaniel/overseerr-requests-bot/filter"
	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

var (
	// list flags
	statusFilter string
	sortOrder    string
	take         int
	skip         int
	requestedBy  int
	fetchAll     bool
	whereExpr    string
	preset       string

	// create flags
	seasonsArg string
	request4K  bool
	onBehalfOf int
)

var requestsCmd = &cobra.Command{
	Use:     "requests",
	Aliases: []string{"request", "req"},
	Short:   "List, create and moderate Overseerr requests",
}

var requestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List requests, optionally narrowed by a filter expression",
	Long: `List requests from Overseerr. --status and --sort are applied by Overseerr;
--where and --preset are evaluated locally against each request, for example:

  --where 'requestStatus("pending") and CreatedAt < daysAgo(14)'
  --where 'isTV() and hasSeason(1) and requestedBy("alice")'`,
	RunE: runRequestsList,
}

var requestsGetCmd = &cobra.Command{
	Use:   "get <request-id>",
	Short: "Show a single request",
	Args:  cobra.ExactArgs(1),
	RunE:  runRequestsGet,
}

var requestsCreateCmd = &cobra.Command{
	Use:   "create <movie|tv> <tmdb-id>",
	Short: "Request a movie or TV show",
	Args:  cobra.ExactArgs(2),
	RunE:  runRequestsCreate,
}

var requestsApproveCmd = &cobra.Command{
	Use:   "approve <request-id>...",
	Short: "Approve one or more pending requests",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModerate(cmd.Context(), args, true)
	},
}

var requestsDenyCmd = &cobra.Command{
	Use:     "deny <request-id>...",
	Aliases: []string{"decline"},
	Short:   "Decline one or more pending requests",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModerate(cmd.Context(), args, false)
	},
}

var requestsPresetsCmd = &cobra.Command{
	Use:   "presets [name...]",
	Short: "Count the requests matching each filter preset",
	Long: `Fetch every request and evaluate the filter presets from config against them.
Without arguments all presets are evaluated.`,
	RunE: runRequestsPresets,
}

var requestsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show request totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCounts(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(requestsCmd)
	requestsCmd.AddCommand(requestsListCmd, requestsGetCmd, requestsCreateCmd, requestsApproveCmd, requestsDenyCmd, requestsPresetsCmd, requestsCountCmd)

	requestsListCmd.Flags().StringVar(&statusFilter, "status", string(overseerr.FilterAll), "server-side filter ("+strings.Join(filterNames(), ", ")+")")
	requestsListCmd.Flags().StringVar(&sortOrder, "sort", string(overseerr.SortAdded), "sort order (added, modified)")
	requestsListCmd.Flags().IntVar(&take, "take", 0, "requests per page (default from config)")
	requestsListCmd.Flags().IntVar(&skip, "skip", 0, "requests to skip")
	requestsListCmd.Flags().IntVar(&requestedBy, "requested-by", 0, "only requests from this Overseerr user id")
	requestsListCmd.Flags().BoolVarP(&fetchAll, "all", "a", false, "fetch every page")
	requestsListCmd.Flags().StringVarP(&whereExpr, "where", "w", "", "filter expression evaluated locally")
	requestsListCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a filter preset from config")

	requestsCreateCmd.Flags().StringVar(&seasonsArg, "seasons", "all", "seasons to request for TV (all or 1,2,3)")
	requestsCreateCmd.Flags().BoolVar(&request4K, "4k", false, "request the 4K version")
	requestsCreateCmd.Flags().IntVar(&onBehalfOf, "user", 0, "request on behalf of this Overseerr user id")
}

func filterNames() []string {
	names := make([]string, len(overseerr.RequestFilters))
	for i, f := range overseerr.RequestFilters {
		names[i] = string(f)
	}
	return names
}

// localFilter is the --where or --preset filter applied to fetched requests
type localFilter struct {
	preset   string
	compiled filter.CompiledFilter
}

// getLocalFilter resolves the filter flags before any request is fetched
func getLocalFilter() (*localFilter, error) {
	// Priority: command line expression > preset
	if whereExpr != "" {
		f, err := filters.Compile(whereExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return &localFilter{compiled: f}, nil
	}

	if preset != "" {
		// Preset names are lowercased when loaded from config
		name := strings.ToLower(preset)
		if f, ok := filters.GetFilter(name); ok {
			return &localFilter{preset: name, compiled: f}, nil
		}
		return nil, fmt.Errorf("preset '%s' not found in config", preset)
	}

	return nil, nil
}

// apply narrows requests to the ones matching the filter. A nil filter keeps everything.
func (lf *localFilter) apply(ctx context.Context, requests []overseerr.Request) ([]overseerr.Request, error) {
	if lf == nil {
		return requests, nil
	}

	logger.Info().
		Str("preset", lf.preset).
		Str("filter", lf.compiled.Expression()).
		Int("requests", len(requests)).
		Msg("Applying filter")

	var (
		matched []overseerr.Request
		err     error
	)
	if lf.preset != "" {
		matched, err = filters.EvaluateFilter(ctx, lf.preset, requests)
	} else {
		matched, err = filters.Evaluate(ctx, lf.compiled, requests)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate filter: %w", err)
	}
	return matched, nil
}

// fetchRequests pages through requests according to the list flags
func fetchRequests(ctx context.Context, q overseerr.RequestsQuery, all bool) ([]overseerr.Request, overseerr.PageInfo, error) {
	var requests []overseerr.Request
	for {
		res, err := client.GetAllRequests(ctx, q)
		if err != nil {
			return nil, overseerr.PageInfo{}, fmt.Errorf("failed to get requests: %w", err)
		}
		page := res.Value
		requests = append(requests, page.Results...)

		if !all || !page.HasMorePages() || len(page.Results) == 0 {
			return requests, page.PageInfo, nil
		}
		q.Skip += len(page.Results)
	}
}

func runRequestsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := overseerr.ParseRequestFilter(statusFilter)
	if err != nil {
		return err
	}
	s, err := overseerr.ParseRequestSort(sortOrder)
	if err != nil {
		return err
	}
	local, err := getLocalFilter()
	if err != nil {
		return err
	}

	q := overseerr.RequestsQuery{Take: take, Skip: skip, Filter: f, Sort: s, RequestedBy: requestedBy}
	requests, pageInfo, err := fetchRequests(ctx, q, fetchAll)
	if err != nil {
		return err
	}

	requests, err = local.apply(ctx, requests)
	if err != nil {
		return err
	}

	if len(requests) == 0 {
		fmt.Println("No requests found matching the filter criteria.")
		return nil
	}

	fmt.Printf("\nFound %s:\n", plural(len(requests), "request"))
	printRequests(requests)

	if !fetchAll && pageInfo.HasMore() {
		fmt.Printf("\nPage %d of %d. Use --skip %d or --all for more.\n", pageInfo.Page, pageInfo.Pages, q.Skip+pageInfo.PageSize)
	}
	return nil
}

func runRequestsPresets(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(filters.ListFilters()) == 0 {
		fmt.Println("No filter presets configured.")
		return nil
	}

	names := make([]string, len(args))
	for i, arg := range args {
		names[i] = strings.ToLower(arg)
		if _, ok := filters.GetFilter(names[i]); !ok {
			return fmt.Errorf("preset '%s' not found in config", arg)
		}
	}

	q := overseerr.RequestsQuery{Filter: overseerr.FilterAll, Sort: overseerr.SortAdded}
	requests, _, err := fetchRequests(ctx, q, true)
	if err != nil {
		return err
	}

	var matches map[string][]overseerr.Request
	if len(names) > 0 {
		matches, err = filters.EvaluateSelected(ctx, names, requests)
	} else {
		matches, err = filters.EvaluateAll(ctx, requests)
	}
	if err != nil {
		return fmt.Errorf("failed to evaluate presets: %w", err)
	}

	fmt.Printf("Evaluated %s against %s:\n", plural(len(matches), "preset"), plural(len(requests), "request"))
	for _, name := range slices.Sorted(maps.Keys(matches)) {
		fmt.Printf("  • %-24s %d\n", name, len(matches[name]))
	}
	return nil
}

func printRequests(requests []overseerr.Request) {
	fmt.Println(strings.Repeat("━", 85))
	fmt.Printf("%-6s %-6s %-9s %-10s %-22s %-12s %s\n", "ID", "TYPE", "TMDB ID", "STATUS", "REQUESTED BY", "CREATED", "MEDIA")
	fmt.Println(strings.Repeat("━", 85))
	for _, r := range requests {
		fmt.Printf("%-6d %-6s %-9d %-10s %-22s %-12s %s\n",
			r.ID,
			r.Type,
			r.Media.TmdbID,
			r.Status,
			truncate(r.RequestedBy.GetDisplayName(), 22),
			r.CreatedAt.Format("2006-01-02"),
			r.Media.Status,
		)
	}
	fmt.Println(strings.Repeat("━", 85))
}

func printRequest(r overseerr.Request) {
	fmt.Printf("Request #%d\n", r.ID)
	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("Type: %s (TMDB %d)\n", r.Type, r.Media.TmdbID)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Media status: %s\n", r.Media.Status)
	fmt.Printf("Requested by: %s\n", r.RequestedBy.GetDisplayName())
	if approver := r.GetApprover(); approver != nil {
		fmt.Printf("Approved by: %s\n", approver.GetDisplayName())
	} else if r.ModifiedBy != nil {
		fmt.Printf("Modified by: %s\n", r.ModifiedBy.GetDisplayName())
	}
	if seasons := r.SeasonNumbers(); len(seasons) > 0 {
		fmt.Printf("Seasons: %v\n", seasons)
	}
	if r.Is4K {
		fmt.Println("4K: yes")
	}
	fmt.Printf("Created: %s\n", r.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("Updated: %s\n", r.UpdatedAt.Format("2006-01-02 15:04"))
}

func runRequestsGet(cmd *cobra.Command, args []string) error {
	id, err := parseID("request id", args[0])
	if err != nil {
		return err
	}

	res, err := client.GetRequest(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get request: %w", err)
	}

	printRequest(res.Value)
	return nil
}

func runRequestsCreate(cmd *cobra.Command, args []string) error {
	mediaType, err := parseRequestableType(args[0])
	if err != nil {
		return err
	}
	id, err := parseID("tmdb id", args[1])
	if err != nil {
		return err
	}

	body := overseerr.RequestBody{MediaID: id, MediaType: mediaType}
	if mediaType == overseerr.MediaTypeTV {
		seasons, err := overseerr.ParseSeasons(seasonsArg)
		if err != nil {
			return err
		}
		body.Seasons = &seasons
	}
	if request4K {
		body.Is4K = &request4K
	}
	if onBehalfOf > 0 {
		body.UserID = &onBehalfOf
	}

	if dryRun {
		fmt.Printf("[DRY RUN] Would request %s %d", mediaType, id)
		if body.Seasons != nil {
			fmt.Printf(" (seasons: %s)", body.Seasons)
		}
		fmt.Println()
		return nil
	}

	res, err := client.PostRequest(cmd.Context(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	fmt.Printf("✓ Request #%d created (%s)\n", res.Value.ID, res.Value.Status)
	return nil
}

func runModerate(ctx context.Context, args []string, approve bool) error {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := parseID("request id", arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if err := requireManager(ctx); err != nil {
		return err
	}

	action, verb, past := "decline", "Declining", "Declined"
	if approve {
		action, verb, past = "approve", "Approving", "Approved"
	}

	var failures int
	for _, id := range ids {
		if dryRun {
			fmt.Printf("[DRY RUN] Would %s request #%d\n", action, id)
			continue
		}

		fmt.Printf("→ %s request #%d... ", verb, id)
		var err error
		if approve {
			_, err = client.ApproveRequest(ctx, id)
		} else {
			_, err = client.DenyRequest(ctx, id)
		}
		if err != nil {
			logger.Error().Err(err).Int("request_id", id).Msgf("Failed to %s request", action)
			fmt.Printf("✗ Failed: %v\n", err)
			failures++
			continue
		}
		fmt.Printf("✓ %s\n", past)
	}

	if failures > 0 {
		return fmt.Errorf("failed to %s %s", action, plural(failures, "request"))
	}
	return nil
}
