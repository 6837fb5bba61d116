package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

var recommendationsPage int

var movieCmd = &cobra.Command{
	Use:   "movie <tmdb-id>",
	Short: "Show details for a movie",
	Args:  cobra.ExactArgs(1),
	RunE:  runMovie,
}

var tvCmd = &cobra.Command{
	Use:   "tv <tmdb-id>",
	Short: "Show details for a TV show",
	Args:  cobra.ExactArgs(1),
	RunE:  runTV,
}

var seasonCmd = &cobra.Command{
	Use:   "season <tmdb-id> <season>",
	Short: "List the episodes of a TV season",
	Args:  cobra.ExactArgs(2),
	RunE:  runSeason,
}

var recommendationsCmd = &cobra.Command{
	Use:   "recommendations <movie|tv> <tmdb-id>",
	Short: "List titles recommended for a movie or show",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecommendations,
}

var genresCmd = &cobra.Command{
	Use:   "genres <movie|tv>",
	Short: "List the genres for movies or TV",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenres,
}

func init() {
	rootCmd.AddCommand(movieCmd, tvCmd, seasonCmd, recommendationsCmd, genresCmd)

	recommendationsCmd.Flags().IntVar(&recommendationsPage, "page", 1, "result page")
}

func parseID(name, arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': must be a positive integer", name, arg)
	}
	return id, nil
}

func parseRequestableType(arg string) (overseerr.MediaType, error) {
	mt, err := overseerr.ParseMediaType(arg)
	if err != nil {
		return "", err
	}
	if !mt.IsRequestable() {
		return "", fmt.Errorf("media type must be movie or tv, got %s", mt)
	}
	return mt, nil
}

func runMovie(cmd *cobra.Command, args []string) error {
	id, err := parseID("tmdb id", args[0])
	if err != nil {
		return err
	}

	res, err := client.GetMovie(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get movie: %w", err)
	}
	m := res.Value

	fmt.Printf("%s (%s)\n", m.Title, m.ReleaseDate.YearString())
	fmt.Println(strings.Repeat("-", 80))
	if m.Tagline != nil && *m.Tagline != "" {
		fmt.Printf("%s\n\n", *m.Tagline)
	}
	if m.Overview != nil {
		fmt.Printf("%s\n\n", *m.Overview)
	}
	if len(m.Genres) > 0 {
		fmt.Printf("Genres: %s\n", strings.Join(genreNames(m.Genres), ", "))
	}
	if m.Runtime != nil {
		fmt.Printf("Runtime: %d min\n", *m.Runtime)
	}
	if m.Releases != nil {
		if cert, ok := m.Releases.Certification("US"); ok {
			fmt.Printf("Rated: %s\n", cert)
		}
	}
	if directors := m.Credits.Directors(); len(directors) > 0 {
		names := make([]string, 0, len(directors))
		for _, d := range directors {
			names = append(names, d.Name)
		}
		fmt.Printf("Directed by: %s\n", strings.Join(names, ", "))
	}
	fmt.Printf("Rating: %.1f (%d votes)\n", m.VoteAverage, m.VoteCount)
	fmt.Printf("Status: %s\n", mediaStatus(m.MediaInfo))
	if poster, ok := m.PosterURL(); ok {
		fmt.Printf("Poster: %s\n", poster)
	}
	if trailer, ok := m.Trailer(); ok && trailer.URL != nil {
		fmt.Printf("Trailer: %s\n", *trailer.URL)
	}
	return nil
}

func runTV(cmd *cobra.Command, args []string) error {
	id, err := parseID("tmdb id", args[0])
	if err != nil {
		return err
	}

	res, err := client.GetTV(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get show: %w", err)
	}
	t := res.Value

	fmt.Printf("%s (%s)\n", t.Name, t.FirstAirDate.YearString())
	fmt.Println(strings.Repeat("-", 80))
	if t.Overview != nil {
		fmt.Printf("%s\n\n", *t.Overview)
	}
	if len(t.Genres) > 0 {
		fmt.Printf("Genres: %s\n", strings.Join(genreNames(t.Genres), ", "))
	}
	fmt.Printf("Seasons: %d (%d episodes)\n", t.NumberOfSeasons, t.NumberOfEpisodes)
	if seasons := t.SeasonNumbers(); len(seasons) > 0 {
		parts := make([]string, len(seasons))
		for i, n := range seasons {
			parts[i] = strconv.Itoa(n)
		}
		fmt.Printf("Requestable seasons: %s\n", strings.Join(parts, ", "))
	}
	if t.InProduction {
		fmt.Println("In production: yes")
	}
	fmt.Printf("Rating: %.1f (%d votes)\n", t.VoteAverage, t.VoteCount)
	fmt.Printf("Status: %s\n", mediaStatus(t.MediaInfo))
	if poster, ok := t.PosterURL(); ok {
		fmt.Printf("Poster: %s\n", poster)
	}
	if trailer, ok := t.Trailer(); ok && trailer.URL != nil {
		fmt.Printf("Trailer: %s\n", *trailer.URL)
	}
	return nil
}

func runSeason(cmd *cobra.Command, args []string) error {
	id, err := parseID("tmdb id", args[0])
	if err != nil {
		return err
	}
	number, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid season '%s': must be an integer", args[1])
	}

	res, err := client.GetTVSeason(cmd.Context(), id, number)
	if err != nil {
		return fmt.Errorf("failed to get season: %w", err)
	}
	s := res.Value

	fmt.Printf("%s (%d episodes)\n", s.Name, len(s.Episodes))
	fmt.Println(strings.Repeat("━", 85))
	fmt.Printf("%-4s %-60s %s\n", "#", "EPISODE", "AIR DATE")
	fmt.Println(strings.Repeat("━", 85))
	for _, ep := range s.Episodes {
		airDate := "TBA"
		if ep.AirDate != nil {
			airDate = ep.AirDate.String()
		}
		fmt.Printf("%-4d %-60s %s\n", ep.EpisodeNumber, truncate(ep.Name, 60), airDate)
	}
	fmt.Println(strings.Repeat("━", 85))
	return nil
}

func runRecommendations(cmd *cobra.Command, args []string) error {
	mediaType, err := parseRequestableType(args[0])
	if err != nil {
		return err
	}
	id, err := parseID("tmdb id", args[1])
	if err != nil {
		return err
	}

	var results overseerr.SearchResults
	var page, pages int
	if mediaType.IsMovie() {
		res, err := client.GetMovieRecommendations(cmd.Context(), id, recommendationsPage)
		if err != nil {
			return fmt.Errorf("failed to get recommendations: %w", err)
		}
		for i := range res.Value.Results {
			results = append(results, &res.Value.Results[i])
		}
		page, pages = res.Value.Page, res.Value.TotalPages
	} else {
		res, err := client.GetTVRecommendations(cmd.Context(), id, recommendationsPage)
		if err != nil {
			return fmt.Errorf("failed to get recommendations: %w", err)
		}
		for i := range res.Value.Results {
			results = append(results, &res.Value.Results[i])
		}
		page, pages = res.Value.Page, res.Value.TotalPages
	}

	if len(results) == 0 {
		fmt.Println("No recommendations found.")
		return nil
	}

	fmt.Printf("Recommendations (page %d of %d):\n\n", page, pages)
	printSearchResults(results)
	return nil
}

func runGenres(cmd *cobra.Command, args []string) error {
	mediaType, err := parseRequestableType(args[0])
	if err != nil {
		return err
	}

	var res overseerr.Result[overseerr.Genres]
	if mediaType.IsMovie() {
		res, err = client.GetMovieGenres(cmd.Context())
	} else {
		res, err = client.GetTVGenres(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("failed to get genres: %w", err)
	}

	fmt.Printf("%s genres:\n", mediaType)
	for _, g := range res.Value {
		fmt.Printf("  • %s (ID: %d)\n", g.Name, g.ID)
	}
	return nil
}

func genreNames(genres overseerr.Genres) []string {
	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}
	return names
}

func mediaStatus(info *overseerr.MediaInfo) overseerr.MediaStatus {
	if info == nil {
		return overseerr.MediaStatusUnknown
	}
	return info.Status
}
