package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

var searchPage int

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search Overseerr for movies, shows and people",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchPage, "page", 1, "result page")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	logger.Debug().Str("query", query).Int("page", searchPage).Msg("Searching Overseerr")

	res, err := client.Search(cmd.Context(), query, searchPage)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	results := res.Value
	if len(results.Results) == 0 {
		fmt.Printf("No results for %q.\n", query)
		return nil
	}

	fmt.Printf("Found %s (page %d of %d):\n\n", plural(results.TotalResults, "result"), results.Page, results.TotalPages)
	printSearchResults(results.Results)

	if results.HasMorePages() {
		fmt.Printf("\nMore results available with --page %d\n", results.Page+1)
	}
	return nil
}

func printSearchResults(results overseerr.SearchResults) {
	fmt.Println(strings.Repeat("━", 85))
	fmt.Printf("%-7s %-9s %-48s %-6s %s\n", "TYPE", "TMDB ID", "TITLE", "YEAR", "STATUS")
	fmt.Println(strings.Repeat("━", 85))

	for _, r := range results {
		switch v := r.(type) {
		case *overseerr.MovieResult:
			fmt.Printf("%-7s %-9d %-48s %-6s %s\n", "movie", v.ID, truncate(v.Title, 48), v.ReleaseDate.YearString(), v.Status())
		case *overseerr.TVResult:
			fmt.Printf("%-7s %-9d %-48s %-6s %s\n", "tv", v.ID, truncate(v.Name, 48), v.FirstAirDate.YearString(), v.Status())
		case *overseerr.PersonResult:
			known := make([]string, 0, len(v.KnownFor))
			for _, k := range v.KnownFor {
				switch kv := k.(type) {
				case *overseerr.MovieResult:
					known = append(known, kv.Title)
				case *overseerr.TVResult:
					known = append(known, kv.Name)
				}
			}
			fmt.Printf("%-7s %-9d %-48s\n", "person", v.ID, truncate(v.Name, 48))
			if len(known) > 0 {
				fmt.Printf("        known for: %s\n", truncate(strings.Join(known, ", "), 70))
			}
		}
	}
	fmt.Println(strings.Repeat("━", 85))
}
