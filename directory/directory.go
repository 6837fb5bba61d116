// Package directory caches the Overseerr lookups a chat front-end needs on
// every message: which Overseerr user a Discord account belongs to, and the
// display names of TMDB genre ids. The cache is populated by Refresh and kept
// current by Run; nothing is fetched lazily.
package directory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/joshrmcdaniel/overseerr-requests-bot/overseerr"
)

// DefaultConcurrency bounds the number of user detail lookups in flight
const DefaultConcurrency = 5

// Directory maps Discord ids to Overseerr users and genre ids to names
type Directory struct {
	users       overseerr.UserLister
	genres      overseerr.GenreSource
	logger      zerolog.Logger
	concurrency int

	mu          sync.RWMutex
	discord     map[string]int
	movieGenres map[int]string
	tvGenres    map[int]string
	refreshed   time.Time
}

// Option configures a Directory
type Option func(*Directory)

// WithConcurrency sets how many user lookups run at once
func WithConcurrency(n int) Option {
	return func(d *Directory) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// New creates an empty directory. Call Refresh before using the lookups.
func New(users overseerr.UserLister, genres overseerr.GenreSource, logger zerolog.Logger, opts ...Option) *Directory {
	d := &Directory{
		users:       users,
		genres:      genres,
		logger:      logger,
		concurrency: DefaultConcurrency,
		discord:     make(map[string]int),
		movieGenres: make(map[int]string),
		tvGenres:    make(map[int]string),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Refresh rebuilds both maps. The previous contents stay visible until the
// new ones are complete; on error they are left untouched.
func (d *Directory) Refresh(ctx context.Context) error {
	discord, err := d.loadDiscordIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	movieGenres, tvGenres, err := d.loadGenres(ctx)
	if err != nil {
		return fmt.Errorf("failed to load genres: %w", err)
	}

	d.mu.Lock()
	d.discord = discord
	d.movieGenres = movieGenres
	d.tvGenres = tvGenres
	d.refreshed = time.Now()
	d.mu.Unlock()

	d.logger.Info().
		Int("discord_users", len(discord)).
		Int("movie_genres", len(movieGenres)).
		Int("tv_genres", len(tvGenres)).
		Msg("Directory refreshed")

	return nil
}

// Run refreshes the directory every interval until ctx is done. Failed
// refreshes are logged and the previous contents are kept.
func (d *Directory) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", interval)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				d.logger.Warn().Err(err).Msg("Directory refresh failed")
			}
		}
	}
}

// UserID returns the Overseerr user id linked to a Discord id
func (d *Directory) UserID(discordID string) (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.discord[discordID]
	return id, ok
}

// DiscordUsers returns a copy of the Discord id to user id map
func (d *Directory) DiscordUsers() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return maps.Clone(d.discord)
}

// GenreName returns the name of a genre for the given media type
func (d *Directory) GenreName(mediaType overseerr.MediaType, id int) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var names map[int]string
	switch mediaType {
	case overseerr.MediaTypeMovie:
		names = d.movieGenres
	case overseerr.MediaTypeTV:
		names = d.tvGenres
	default:
		return "", false
	}

	name, ok := names[id]
	return name, ok
}

// GenreNames resolves a list of genre ids, skipping unknown ones
func (d *Directory) GenreNames(mediaType overseerr.MediaType, ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := d.GenreName(mediaType, id); ok {
			names = append(names, name)
		}
	}
	return names
}

// LastRefresh returns when the directory was last successfully refreshed
func (d *Directory) LastRefresh() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.refreshed
}

// loadDiscordIDs pages through every user, then fetches each user's settings
// concurrently to read the linked Discord id
func (d *Directory) loadDiscordIDs(ctx context.Context) (map[string]int, error) {
	var ids []int
	query := overseerr.UsersQuery{}
	for {
		page, err := d.users.ListUsers(ctx, query, overseerr.RaiseForError())
		if err != nil {
			return nil, err
		}
		for _, u := range page.Value.Results {
			ids = append(ids, u.ID)
		}
		if !page.Value.HasMorePages() || len(page.Value.Results) == 0 {
			break
		}
		query.Skip += len(page.Value.Results)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	var mu sync.Mutex
	discord := make(map[string]int, len(ids))

	for _, id := range ids {
		g.Go(func() error {
			res, err := d.users.User(gctx, id, overseerr.RaiseForError())
			if err != nil {
				return fmt.Errorf("user %d: %w", id, err)
			}

			discordID, ok := res.Value.DiscordID()
			if !ok {
				d.logger.Debug().Int("user_id", id).Msg("User has no linked Discord account")
				return nil
			}

			mu.Lock()
			discord[discordID] = id
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return discord, nil
}

func (d *Directory) loadGenres(ctx context.Context) (map[int]string, map[int]string, error) {
	var movie, tv overseerr.Genres

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := d.genres.GetMovieGenres(gctx, overseerr.RaiseForError())
		movie = res.Value
		return err
	})
	g.Go(func() error {
		res, err := d.genres.GetTVGenres(gctx, overseerr.RaiseForError())
		tv = res.Value
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return movie.Names(), tv.Names(), nil
}
