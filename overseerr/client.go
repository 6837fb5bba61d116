package overseerr

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Client represents an Overseerr API client
type Client struct {
	baseURL       string
	apiKey        string
	email         string
	password      string
	httpClient    *http.Client
	logger        zerolog.Logger
	pageSize      int
	limiter       *rate.Limiter
	raiseForError bool
	userAgent     string
}

var _ API = (*Client)(nil)

// NewClient creates a new Overseerr client. Either apiKey or
// WithCredentials must be supplied. No request is made until the first call;
// use Connect to log in and verify the connection up front.
func NewClient(baseURL, apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: overseerr URL is required", ErrInvalidConfig)
	}

	// Ensure baseURL doesn't have trailing slash
	baseURL = strings.TrimRight(baseURL, "/")

	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: overseerr URL %q must be an absolute http(s) URL", ErrInvalidConfig, baseURL)
	}

	client := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:   logger,
		pageSize: PageSize,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" && !client.hasCredentials() {
		return nil, fmt.Errorf("%w: overseerr API key is required (or email and password)", ErrInvalidConfig)
	}

	if client.hasCredentials() && client.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		client.httpClient.Jar = jar
	}

	return client, nil
}

func (c *Client) hasCredentials() bool {
	return c.email != "" && c.password != ""
}

// Connect logs in when credentials are configured and then verifies the
// connection with TestConnection
func (c *Client) Connect(ctx context.Context) error {
	if c.hasCredentials() && c.apiKey == "" {
		if _, err := c.Login(ctx, RaiseForError()); err != nil {
			return fmt.Errorf("failed to log in to Overseerr: %w", err)
		}
	}
	if err := c.TestConnection(ctx); err != nil {
		return fmt.Errorf("failed to connect to Overseerr: %w", err)
	}
	return nil
}

// TestConnection tests the connection to Overseerr
func (c *Client) TestConnection(ctx context.Context) error {
	// Use the /auth/me endpoint to test connection and credentials
	me, err := c.Me(ctx, RaiseForError())
	if err != nil {
		return err
	}

	c.logger.Debug().
		Int("user_id", me.Value.ID).
		Str("user", me.Value.GetDisplayName()).
		Msg("Successfully connected to Overseerr")
	return nil
}

// Login exchanges the configured email and password for a session cookie
func (c *Client) Login(ctx context.Context, opts ...CallOption) (Result[User], error) {
	if !c.hasCredentials() {
		return Result[User]{}, fmt.Errorf("%w: email and password are required to log in", ErrInvalidConfig)
	}
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: c.email, Password: c.password}

	res, err := fetch[User](ctx, c, post("/auth/local", body), opts)
	if err == nil && res.OK() {
		c.logger.Info().Str("user", res.Value.GetDisplayName()).Msg("Logged in to Overseerr")
	}
	return res, err
}

// Me returns the user the client is authenticated as
func (c *Client) Me(ctx context.Context, opts ...CallOption) (Result[User], error) {
	return fetch[User](ctx, c, get("/auth/me", nil), opts)
}

// Search runs a multi-search over movies, shows and people
func (c *Client) Search(ctx context.Context, query string, page int, opts ...CallOption) (Result[MediaSearchResult], error) {
	if strings.TrimSpace(query) == "" {
		return Result[MediaSearchResult]{}, &ValidationError{Param: "query", Value: query, Reason: "must not be empty"}
	}
	page, err := normalizePage(page)
	if err != nil {
		return Result[MediaSearchResult]{}, err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	return fetch[MediaSearchResult](ctx, c, get("/search", params), opts)
}

// User retrieves a single user including settings
func (c *Client) User(ctx context.Context, id int, opts ...CallOption) (Result[User], error) {
	if err := validateID("id", id); err != nil {
		return Result[User]{}, err
	}
	return fetch[User](ctx, c, get("/user/"+strconv.Itoa(id), nil), opts)
}

// Users retrieves the first page of users with the Service's default paging
func (c *Client) Users(ctx context.Context, opts ...CallOption) (Result[UserSearchResult], error) {
	return fetch[UserSearchResult](ctx, c, get("/user", nil), opts)
}

// ListUsers retrieves a page of users
func (c *Client) ListUsers(ctx context.Context, q UsersQuery, opts ...CallOption) (Result[UserSearchResult], error) {
	params, err := q.params(c.pageSize)
	if err != nil {
		return Result[UserSearchResult]{}, err
	}
	return fetch[UserSearchResult](ctx, c, get("/user", params), opts)
}

// GetRequest retrieves a single request
func (c *Client) GetRequest(ctx context.Context, id int, opts ...CallOption) (Result[Request], error) {
	if err := validateID("id", id); err != nil {
		return Result[Request]{}, err
	}
	return fetch[Request](ctx, c, get("/request/"+strconv.Itoa(id), nil), opts)
}

// GetAllRequests retrieves a page of requests
func (c *Client) GetAllRequests(ctx context.Context, q RequestsQuery, opts ...CallOption) (Result[Requests], error) {
	params, err := q.params(c.pageSize)
	if err != nil {
		return Result[Requests]{}, err
	}
	return fetch[Requests](ctx, c, get("/request", params), opts)
}

// RequestCount retrieves request totals by type and status
func (c *Client) RequestCount(ctx context.Context, opts ...CallOption) (Result[RequestCount], error) {
	return fetch[RequestCount](ctx, c, get("/request/count", nil), opts)
}

// GetMovie retrieves movie details by TMDB id
func (c *Client) GetMovie(ctx context.Context, id int, opts ...CallOption) (Result[MovieDetails], error) {
	if err := validateID("id", id); err != nil {
		return Result[MovieDetails]{}, err
	}
	return fetch[MovieDetails](ctx, c, get("/movie/"+strconv.Itoa(id), nil), opts)
}

// GetTV retrieves TV show details by TMDB id
func (c *Client) GetTV(ctx context.Context, id int, opts ...CallOption) (Result[TVDetails], error) {
	if err := validateID("id", id); err != nil {
		return Result[TVDetails]{}, err
	}
	return fetch[TVDetails](ctx, c, get("/tv/"+strconv.Itoa(id), nil), opts)
}

// GetTVSeason retrieves a season with its episodes
func (c *Client) GetTVSeason(ctx context.Context, id, season int, opts ...CallOption) (Result[TVSeason], error) {
	if err := validateID("id", id); err != nil {
		return Result[TVSeason]{}, err
	}
	if season < 0 {
		return Result[TVSeason]{}, &ValidationError{Param: "season", Value: season, Reason: "must not be negative"}
	}
	endpoint := fmt.Sprintf("/tv/%d/season/%d", id, season)
	return fetch[TVSeason](ctx, c, get(endpoint, nil), opts)
}

// GetMovieRecommendations retrieves a page of movies similar to id
func (c *Client) GetMovieRecommendations(ctx context.Context, id, page int, opts ...CallOption) (Result[MovieSearchResult], error) {
	params, err := recommendationParams(id, page)
	if err != nil {
		return Result[MovieSearchResult]{}, err
	}
	endpoint := fmt.Sprintf("/movie/%d/recommendations", id)
	return fetch[MovieSearchResult](ctx, c, get(endpoint, params), opts)
}

// GetTVRecommendations retrieves a page of shows similar to id
func (c *Client) GetTVRecommendations(ctx context.Context, id, page int, opts ...CallOption) (Result[TVSearchResponse], error) {
	params, err := recommendationParams(id, page)
	if err != nil {
		return Result[TVSearchResponse]{}, err
	}
	endpoint := fmt.Sprintf("/tv/%d/recommendations", id)
	return fetch[TVSearchResponse](ctx, c, get(endpoint, params), opts)
}

func recommendationParams(id, page int) (url.Values, error) {
	if err := validateID("id", id); err != nil {
		return nil, err
	}
	page, err := normalizePage(page)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	return params, nil
}

// GetMovieGenres retrieves the movie genre list
func (c *Client) GetMovieGenres(ctx context.Context, opts ...CallOption) (Result[Genres], error) {
	return c.getGenres(ctx, MediaTypeMovie, opts)
}

// GetTVGenres retrieves the TV genre list
func (c *Client) GetTVGenres(ctx context.Context, opts ...CallOption) (Result[Genres], error) {
	return c.getGenres(ctx, MediaTypeTV, opts)
}

func (c *Client) getGenres(ctx context.Context, mediaType MediaType, opts []CallOption) (Result[Genres], error) {
	if err := validateGenreType(mediaType); err != nil {
		return Result[Genres]{}, err
	}
	return fetch[Genres](ctx, c, get("/genres/"+string(mediaType), nil), opts)
}

// PostRequest submits a new movie or TV request. Seasons are only sent for TV.
func (c *Client) PostRequest(ctx context.Context, body RequestBody, opts ...CallOption) (Result[Request], error) {
	body, err := prepareRequestBody(body)
	if err != nil {
		return Result[Request]{}, err
	}

	c.logger.Debug().
		Int("media_id", body.MediaID).
		Str("media_type", string(body.MediaType)).
		Msg("Submitting Overseerr request")

	return fetch[Request](ctx, c, post("/request", body), opts)
}

// UpdateRequest edits an existing request, for example to change its seasons
func (c *Client) UpdateRequest(ctx context.Context, id int, body RequestBody, opts ...CallOption) (Result[Request], error) {
	if err := validateID("id", id); err != nil {
		return Result[Request]{}, err
	}
	body, err := prepareUpdateBody(body)
	if err != nil {
		return Result[Request]{}, err
	}
	return fetch[Request](ctx, c, put("/request/"+strconv.Itoa(id), body), opts)
}

// ApproveRequest approves a pending request
func (c *Client) ApproveRequest(ctx context.Context, id int, opts ...CallOption) (Result[Request], error) {
	return c.setRequestStatus(ctx, id, "approve", opts)
}

// DenyRequest declines a pending request
func (c *Client) DenyRequest(ctx context.Context, id int, opts ...CallOption) (Result[Request], error) {
	return c.setRequestStatus(ctx, id, "decline", opts)
}

func (c *Client) setRequestStatus(ctx context.Context, id int, action string, opts []CallOption) (Result[Request], error) {
	if err := validateID("id", id); err != nil {
		return Result[Request]{}, err
	}
	endpoint := fmt.Sprintf("/request/%d/%s", id, action)
	return fetch[Request](ctx, c, post(endpoint, nil), opts)
}
