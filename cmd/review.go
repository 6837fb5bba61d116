package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

var (
	unattendedCount int
	declineSelected bool
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively approve or decline pending requests",
	Long: `List pending requests and choose which ones to approve (or decline with --decline).

This command helps keep the request queue moving by:
- Listing every pending request, optionally narrowed with --where or --preset
- Allowing interactive selection of several requests at once
- Processing the oldest N requests unattended with --unattended`,
	RunE: runReview,
}

func init() {
	requestsCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().IntVar(&unattendedCount, "unattended", 0, "run in unattended mode, processing the N oldest requests")
	reviewCmd.Flags().BoolVar(&declineSelected, "decline", false, "decline the selected requests instead of approving them")
	reviewCmd.Flags().StringVarP(&whereExpr, "where", "w", "", "filter expression evaluated locally")
	reviewCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a filter preset from config")
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := requireManager(ctx); err != nil {
		return err
	}

	local, err := getLocalFilter()
	if err != nil {
		return err
	}

	logger.Info().Msg("Fetching pending requests...")
	q := overseerr.RequestsQuery{Filter: overseerr.FilterPending, Sort: overseerr.SortAdded}
	pending, _, err := fetchRequests(ctx, q, true)
	if err != nil {
		return err
	}

	// The pending filter also matches partially approved shows
	pending = onlyPending(pending)

	pending, err = local.apply(ctx, pending)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		fmt.Println("✓ No pending requests!")
		return nil
	}

	fmt.Printf("Found %s awaiting review:\n\n", plural(len(pending), "pending request"))
	printNumberedRequests(pending)

	var selected []overseerr.Request
	if unattendedCount > 0 {
		// Oldest first; Overseerr returns newest first
		count := min(unattendedCount, len(pending))
		for i := len(pending) - 1; i >= len(pending)-count; i-- {
			selected = append(selected, pending[i])
		}
		fmt.Printf("\n[UNATTENDED MODE] Processing %s\n", plural(count, "request"))
	} else {
		action := "approve"
		if declineSelected {
			action = "decline"
		}
		fmt.Printf("\nEnter request numbers to %s (comma-separated, e.g. 1,3,5) or 'all' for all [Enter to cancel]: ", action)

		selected, err = readSelection(os.Stdin, pending)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			fmt.Println("No requests selected.")
			return nil
		}
	}

	return processSelection(ctx, selected)
}

func onlyPending(requests []overseerr.Request) []overseerr.Request {
	out := requests[:0]
	for _, r := range requests {
		if r.Status == overseerr.RequestStatusPending {
			out = append(out, r)
		}
	}
	return out
}

func printNumberedRequests(requests []overseerr.Request) {
	fmt.Println(strings.Repeat("━", 85))
	fmt.Printf("%-4s %-6s %-6s %-9s %-24s %-12s %s\n", "#", "ID", "TYPE", "TMDB ID", "REQUESTED BY", "CREATED", "SEASONS")
	fmt.Println(strings.Repeat("━", 85))

	for i, r := range requests {
		seasons := "-"
		if numbers := r.SeasonNumbers(); len(numbers) > 0 {
			parts := make([]string, len(numbers))
			for j, n := range numbers {
				parts[j] = strconv.Itoa(n)
			}
			seasons = strings.Join(parts, ",")
		}
		fmt.Printf("%-4d %-6d %-6s %-9d %-24s %-12s %s\n",
			i+1,
			r.ID,
			r.Type,
			r.Media.TmdbID,
			truncate(r.RequestedBy.GetDisplayName(), 24),
			r.CreatedAt.Format("2006-01-02"),
			seasons,
		)
	}
	fmt.Println(strings.Repeat("━", 85))
}

// readSelection reads a line of 1-based request numbers or "all"
func readSelection(in io.Reader, requests []overseerr.Request) ([]overseerr.Request, error) {
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		// No input (Ctrl+D or similar)
		return nil, nil
	}
	return parseSelection(scanner.Text(), requests)
}

func parseSelection(input string, requests []overseerr.Request) ([]overseerr.Request, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	if strings.EqualFold(input, "all") {
		return requests, nil
	}

	var selected []overseerr.Request
	seen := make(map[int]bool)
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		num, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid number '%s': must be a positive integer", part)
		}

		if num < 1 || num > len(requests) {
			return nil, fmt.Errorf("invalid request number %d: must be between 1 and %d", num, len(requests))
		}

		// Convert to 0-based index and skip duplicates
		idx := num - 1
		if !seen[idx] {
			selected = append(selected, requests[idx])
			seen[idx] = true
		}
	}
	return selected, nil
}

func processSelection(ctx context.Context, selected []overseerr.Request) error {
	action, verb, past := "approve", "Approving", "Approved"
	if declineSelected {
		action, verb, past = "decline", "Declining", "Declined"
	}

	if dryRun {
		fmt.Printf("[DRY RUN] Would %s:\n", action)
		for _, r := range selected {
			fmt.Printf("  - #%d %s %d requested by %s\n", r.ID, r.Type, r.Media.TmdbID, r.RequestedBy.GetDisplayName())
		}
		return nil
	}

	var successCount, failures int
	for i, r := range selected {
		fmt.Printf("→ %s request #%d... ", verb, r.ID)

		var err error
		if declineSelected {
			_, err = client.DenyRequest(ctx, r.ID)
		} else {
			_, err = client.ApproveRequest(ctx, r.ID)
		}
		if err != nil {
			logger.Error().Err(err).Int("request_id", r.ID).Msg("Failed to update request")
			fmt.Printf("✗ Failed: %v\n", err)
			failures++
		} else {
			fmt.Printf("✓ %s\n", past)
			successCount++
		}

		// Give Radarr/Sonarr a moment between approvals
		if !declineSelected && i < len(selected)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
	}

	fmt.Printf("\n✓ %s %s\n", past, plural(successCount, "request"))
	if failures > 0 {
		fmt.Printf("✗ Failed to process %s\n", plural(failures, "request"))
	}
	return nil
}
