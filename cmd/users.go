package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshrmcdaniel/overseerr-requests-bot/directory"
	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

var (
	userSort      string
	userTake      int
	userSkip      int
	watch         bool
	watchInterval time.Duration
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List Overseerr users",
	RunE:  runUsers,
}

var userCmd = &cobra.Command{
	Use:   "user <user-id>",
	Short: "Show a single Overseerr user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUser,
}

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "Show which Discord accounts are linked to Overseerr users",
	Long: `Build the Discord id to Overseerr user map the bot uses to attribute requests,
along with the movie and TV genre indexes. With --watch the directory is
refreshed on an interval until interrupted.`,
	RunE: runDirectory,
}

func init() {
	rootCmd.AddCommand(usersCmd, userCmd, directoryCmd)

	usersCmd.Flags().StringVar(&userSort, "sort", "", "sort order (created, updated, requests, displayname)")
	usersCmd.Flags().IntVar(&userTake, "take", 0, "users per page (default from config)")
	usersCmd.Flags().IntVar(&userSkip, "skip", 0, "users to skip")

	directoryCmd.Flags().BoolVar(&watch, "watch", false, "keep refreshing until interrupted")
	directoryCmd.Flags().DurationVar(&watchInterval, "interval", 0, "refresh interval (default directory.refresh_interval)")
}

func runUsers(cmd *cobra.Command, args []string) error {
	q := overseerr.UsersQuery{Take: userTake, Skip: userSkip, Sort: overseerr.UserSort(strings.ToLower(userSort))}
	res, err := client.ListUsers(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	users := res.Value
	fmt.Printf("Found %s:\n", plural(users.PageInfo.Results, "user"))
	fmt.Println(strings.Repeat("━", 85))
	fmt.Printf("%-6s %-28s %-34s %s\n", "ID", "NAME", "EMAIL", "REQUESTS")
	fmt.Println(strings.Repeat("━", 85))
	for _, u := range users.Results {
		count := "-"
		if u.RequestCount != nil {
			count = fmt.Sprint(*u.RequestCount)
		}
		fmt.Printf("%-6d %-28s %-34s %s\n", u.ID, truncate(u.GetDisplayName(), 28), truncate(u.Email, 34), count)
	}
	fmt.Println(strings.Repeat("━", 85))

	if users.HasMorePages() {
		fmt.Printf("\nPage %d of %d. Use --skip for more.\n", users.PageInfo.Page, users.PageInfo.Pages)
	}
	return nil
}

func runUser(cmd *cobra.Command, args []string) error {
	id, err := parseID("user id", args[0])
	if err != nil {
		return err
	}

	res, err := client.User(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	u := res.Value

	fmt.Printf("%s (ID: %d)\n", u.GetDisplayName(), u.ID)
	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("Email: %s\n", u.Email)
	if u.PlexUsername != nil {
		fmt.Printf("Plex username: %s\n", *u.PlexUsername)
	}
	if discordID, ok := u.DiscordID(); ok {
		fmt.Printf("Discord ID: %s\n", discordID)
	}
	if u.RequestCount != nil {
		fmt.Printf("Requests: %d\n", *u.RequestCount)
	}
	fmt.Printf("Can request movies: %s\n", boolToStatus(u.Permissions.CanRequest(overseerr.MediaTypeMovie)))
	fmt.Printf("Can request TV: %s\n", boolToStatus(u.Permissions.CanRequest(overseerr.MediaTypeTV)))
	fmt.Printf("Can manage requests: %s\n", boolToStatus(canManageRequests(u)))
	if u.CreatedAt != nil {
		fmt.Printf("Joined: %s\n", u.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func runDirectory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dir := directory.New(client, client, logger, directory.WithConcurrency(cfg.Directory.Concurrency))

	if err := dir.Refresh(ctx); err != nil {
		return err
	}

	linked := dir.DiscordUsers()
	fmt.Printf("Linked Discord accounts: %d\n", len(linked))
	for _, discordID := range slices.Sorted(maps.Keys(linked)) {
		fmt.Printf("  • %s → user %d\n", discordID, linked[discordID])
	}

	if !watch {
		return nil
	}

	interval := watchInterval
	if interval <= 0 {
		interval = cfg.Directory.RefreshInterval
	}
	logger.Info().Dur("interval", interval).Msg("Watching directory")
	if err := dir.Run(ctx, interval); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
