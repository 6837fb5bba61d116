package overseerr

import (
	"context"
)

// API defines the interface for Overseerr operations
type API interface {
	// TestConnection verifies the client can connect to Overseerr
	TestConnection(ctx context.Context) error
	Me(ctx context.Context, opts ...CallOption) (Result[User], error)

	Search(ctx context.Context, query string, page int, opts ...CallOption) (Result[MediaSearchResult], error)

	User(ctx context.Context, id int, opts ...CallOption) (Result[User], error)
	Users(ctx context.Context, opts ...CallOption) (Result[UserSearchResult], error)
	ListUsers(ctx context.Context, q UsersQuery, opts ...CallOption) (Result[UserSearchResult], error)

	GetRequest(ctx context.Context, id int, opts ...CallOption) (Result[Request], error)
	GetAllRequests(ctx context.Context, q RequestsQuery, opts ...CallOption) (Result[Requests], error)
	RequestCount(ctx context.Context, opts ...CallOption) (Result[RequestCount], error)
	PostRequest(ctx context.Context, body RequestBody, opts ...CallOption) (Result[Request], error)
	UpdateRequest(ctx context.Context, id int, body RequestBody, opts ...CallOption) (Result[Request], error)
	ApproveRequest(ctx context.Context, id int, opts ...CallOption) (Result[Request], error)
	DenyRequest(ctx context.Context, id int, opts ...CallOption) (Result[Request], error)

	GetMovie(ctx context.Context, id int, opts ...CallOption) (Result[MovieDetails], error)
	GetTV(ctx context.Context, id int, opts ...CallOption) (Result[TVDetails], error)
	GetTVSeason(ctx context.Context, id, season int, opts ...CallOption) (Result[TVSeason], error)
	GetMovieRecommendations(ctx context.Context, id, page int, opts ...CallOption) (Result[MovieSearchResult], error)
	GetTVRecommendations(ctx context.Context, id, page int, opts ...CallOption) (Result[TVSearchResponse], error)
	GetMovieGenres(ctx context.Context, opts ...CallOption) (Result[Genres], error)
	GetTVGenres(ctx context.Context, opts ...CallOption) (Result[Genres], error)
}

// UserLister provides the user queries the directory cache needs
type UserLister interface {
	ListUsers(ctx context.Context, q UsersQuery, opts ...CallOption) (Result[UserSearchResult], error)
	User(ctx context.Context, id int, opts ...CallOption) (Result[User], error)
}

// GenreSource provides the genre lists
type GenreSource interface {
	GetMovieGenres(ctx context.Context, opts ...CallOption) (Result[Genres], error)
	GetTVGenres(ctx context.Context, opts ...CallOption) (Result[Genres], error)
}
