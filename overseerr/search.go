package overseerr

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	posterBaseURL   = "https://image.tmdb.org/t/p/w342"
	backdropBaseURL = "https://image.tmdb.org/t/p/w300"
)

// SearchResult is one entry of a mixed search response. The concrete type is
// *MovieResult, *TVResult or *PersonResult.
type SearchResult interface {
	MediaType() MediaType
	GetID() int
}

// ResultBase holds the fields common to every search result
type ResultBase struct {
	ID               int        `json:"id"`
	Popularity       float64    `json:"popularity"`
	BackdropPath     *string    `json:"backdropPath"`
	PosterPath       *string    `json:"posterPath"`
	VoteCount        int        `json:"voteCount"`
	VoteAverage      float64    `json:"voteAverage"`
	GenreIDs         []int      `json:"genreIds"`
	Overview         *string    `json:"overview"`
	OriginalLanguage *string    `json:"originalLanguage"`
	MediaInfo        *MediaInfo `json:"mediaInfo"`
}

// GetID returns the TMDB id of the result
func (b *ResultBase) GetID() int {
	return b.ID
}

// PosterURL returns the full poster image URL, if the result has a poster
func (b *ResultBase) PosterURL() (string, bool) {
	return imageURL(posterBaseURL, b.PosterPath)
}

// BackdropURL returns the full backdrop image URL, if the result has one
func (b *ResultBase) BackdropURL() (string, bool) {
	return imageURL(backdropBaseURL, b.BackdropPath)
}

// Status returns the Overseerr availability of the title
func (b *ResultBase) Status() MediaStatus {
	if b.MediaInfo == nil {
		return MediaStatusUnknown
	}
	return b.MediaInfo.Status
}

func imageURL(base string, path *string) (string, bool) {
	if path == nil {
		return "", false
	}
	return base + *path, true
}

// MovieResult is a movie entry in search or recommendation results
type MovieResult struct {
	ResultBase
	Title         string    `json:"title"`
	OriginalTitle string    `json:"originalTitle"`
	ReleaseDate   *Date     `json:"releaseDate"`
	Adult         bool      `json:"adult"`
	Video         bool      `json:"video"`
	OriginCountry []*string `json:"originCountry"`
}

func (*MovieResult) MediaType() MediaType { return MediaTypeMovie }

// UnmarshalJSON decodes a movie result, rejecting a conflicting mediaType
func (m *MovieResult) UnmarshalJSON(data []byte) error {
	type plain MovieResult
	return decodeResult(data, MediaTypeMovie, (*plain)(m))
}

// TVResult is a TV show entry in search or recommendation results
type TVResult struct {
	ResultBase
	Name          string    `json:"name"`
	OriginalName  string    `json:"originalName"`
	FirstAirDate  *Date     `json:"firstAirDate"`
	OriginCountry []*string `json:"originCountry"`
}

func (*TVResult) MediaType() MediaType { return MediaTypeTV }

// UnmarshalJSON decodes a TV result, rejecting a conflicting mediaType
func (t *TVResult) UnmarshalJSON(data []byte) error {
	type plain TVResult
	return decodeResult(data, MediaTypeTV, (*plain)(t))
}

// PersonResult is a cast or crew member in search results
type PersonResult struct {
	ResultBase
	Name        string        `json:"name"`
	Adult       bool          `json:"adult"`
	ProfilePath *string       `json:"profilePath"`
	KnownFor    SearchResults `json:"knownFor"`
}

func (*PersonResult) MediaType() MediaType { return MediaTypePerson }

// UnmarshalJSON decodes a person result and the titles they are known for
func (p *PersonResult) UnmarshalJSON(data []byte) error {
	type plain PersonResult
	return decodeResult(data, MediaTypePerson, (*plain)(p))
}

// decodeResult requires an id and checks that a present mediaType matches want
func decodeResult(data []byte, want MediaType, into any) error {
	if isNull(data) {
		return nil
	}
	object := string(want) + " result"
	if err := requireFields(object, data, "id"); err != nil {
		return err
	}

	var tag struct {
		MediaType *string `json:"mediaType"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("%s: %w", object, err)
	}
	if tag.MediaType != nil && MediaType(*tag.MediaType) != want {
		return &EnumError{Field: "mediaType", Value: strconv.Quote(*tag.MediaType), Allowed: []string{string(want)}}
	}

	return json.Unmarshal(data, into)
}

// SearchResults is a heterogeneous list discriminated by each element's mediaType
type SearchResults []SearchResult

// UnmarshalJSON selects the concrete result type from the mediaType tag
func (sr *SearchResults) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*sr = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	results := make(SearchResults, 0, len(raw))
	for i, elem := range raw {
		r, err := decodeSearchResult(elem)
		if err != nil {
			return fmt.Errorf("result %d: %w", i, err)
		}
		results = append(results, r)
	}
	*sr = results
	return nil
}

func decodeSearchResult(data []byte) (SearchResult, error) {
	if err := requireFields("search result", data, "mediaType"); err != nil {
		return nil, err
	}
	var tag struct {
		MediaType string `json:"mediaType"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}

	var r SearchResult
	switch MediaType(tag.MediaType) {
	case MediaTypeMovie:
		r = &MovieResult{}
	case MediaTypeTV:
		r = &TVResult{}
	case MediaTypePerson:
		r = &PersonResult{}
	default:
		return nil, &EnumError{Field: "mediaType", Value: strconv.Quote(tag.MediaType), Allowed: mediaTypes}
	}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Movies returns only the movie entries
func (sr SearchResults) Movies() []*MovieResult {
	var movies []*MovieResult
	for _, r := range sr {
		if m, ok := r.(*MovieResult); ok {
			movies = append(movies, m)
		}
	}
	return movies
}

// Shows returns only the TV entries
func (sr SearchResults) Shows() []*TVResult {
	var shows []*TVResult
	for _, r := range sr {
		if t, ok := r.(*TVResult); ok {
			shows = append(shows, t)
		}
	}
	return shows
}

// People returns only the person entries
func (sr SearchResults) People() []*PersonResult {
	var people []*PersonResult
	for _, r := range sr {
		if p, ok := r.(*PersonResult); ok {
			people = append(people, p)
		}
	}
	return people
}

// MediaSearchResult is a page of mixed search results
type MediaSearchResult struct {
	Page         int           `json:"page"`
	TotalResults int           `json:"totalResults"`
	TotalPages   int           `json:"totalPages"`
	Results      SearchResults `json:"results"`
}

// UnmarshalJSON requires the paging fields and results
func (ms *MediaSearchResult) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if err := requireFields("search", data, "page", "totalResults", "totalPages", "results"); err != nil {
		return err
	}
	type plain MediaSearchResult
	return json.Unmarshal(data, (*plain)(ms))
}

// HasMorePages checks if there are more pages to fetch
func (ms *MediaSearchResult) HasMorePages() bool {
	return ms.Page < ms.TotalPages
}

// MovieSearchResult is a page of movie recommendations
type MovieSearchResult struct {
	Page         int           `json:"page"`
	TotalResults int           `json:"totalResults"`
	TotalPages   int           `json:"totalPages"`
	Results      []MovieResult `json:"results"`
}

// UnmarshalJSON requires the paging fields and results
func (ms *MovieSearchResult) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if err := requireFields("movie recommendations", data, "page", "totalResults", "totalPages", "results"); err != nil {
		return err
	}
	type plain MovieSearchResult
	return json.Unmarshal(data, (*plain)(ms))
}

// TVSearchResponse is a page of TV recommendations
type TVSearchResponse struct {
	Page         int        `json:"page"`
	TotalResults int        `json:"totalResults"`
	TotalPages   int        `json:"totalPages"`
	Results      []TVResult `json:"results"`
}

// UnmarshalJSON requires the paging fields and results
func (ts *TVSearchResponse) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if err := requireFields("tv recommendations", data, "page", "totalResults", "totalPages", "results"); err != nil {
		return err
	}
	type plain TVSearchResponse
	return json.Unmarshal(data, (*plain)(ts))
}
