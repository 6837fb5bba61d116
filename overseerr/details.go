package overseerr

import (
	"encoding/json"
	"strconv"
	"time"
)

// VideoType is the kind of a related video
type VideoType string

const (
	VideoTypeClip            VideoType = "Clip"
	VideoTypeTeaser          VideoType = "Teaser"
	VideoTypeTrailer         VideoType = "Trailer"
	VideoTypeFeaturette      VideoType = "Featurette"
	VideoTypeOpeningCredits  VideoType = "Opening Credits"
	VideoTypeBehindTheScenes VideoType = "Behind the Scenes"
	VideoTypeBloopers        VideoType = "Bloopers"
)

var videoTypes = []string{
	string(VideoTypeClip),
	string(VideoTypeTeaser),
	string(VideoTypeTrailer),
	string(VideoTypeFeaturette),
	string(VideoTypeOpeningCredits),
	string(VideoTypeBehindTheScenes),
	string(VideoTypeBloopers),
}

// UnmarshalJSON rejects unknown video types
func (vt *VideoType) UnmarshalJSON(data []byte) error {
	s, err := decodeEnumString(data, "video type", videoTypes)
	if err != nil || s == nil {
		return err
	}
	*vt = VideoType(*s)
	return nil
}

// VideoSite is the host of a related video
type VideoSite string

const (
	VideoSiteYouTube VideoSite = "YouTube"
	VideoSiteVimeo   VideoSite = "Vimeo"
)

var videoSites = []string{string(VideoSiteYouTube), string(VideoSiteVimeo)}

// UnmarshalJSON rejects unknown video sites
func (vs *VideoSite) UnmarshalJSON(data []byte) error {
	s, err := decodeEnumString(data, "video site", videoSites)
	if err != nil || s == nil {
		return err
	}
	*vs = VideoSite(*s)
	return nil
}

func decodeEnumString(data []byte, field string, allowed []string) (*string, error) {
	if isNull(data) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	for _, a := range allowed {
		if s == a {
			return &s, nil
		}
	}
	return nil, &EnumError{Field: field, Value: strconv.Quote(s), Allowed: allowed}
}

// RelatedVideo is a trailer, teaser or similar clip attached to a title
type RelatedVideo struct {
	URL  *string    `json:"url"`
	Key  *string    `json:"key"`
	Name *string    `json:"name"`
	Size *int       `json:"size"`
	Type *VideoType `json:"type"`
	Site *VideoSite `json:"site"`
}

// ProductionCompany is a studio or, for TV, a network
type ProductionCompany struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	LogoPath      *string `json:"logoPath"`
	OriginCountry *string `json:"originCountry"`
}

// ProductionCountry is an ISO 3166-1 country
type ProductionCountry struct {
	ISO3166 string `json:"iso_3166_1"`
	Name    string `json:"name"`
}

// SpokenLanguage is an ISO 639-1 language
type SpokenLanguage struct {
	ISO639      string  `json:"iso_639_1"`
	Name        string  `json:"name"`
	EnglishName *string `json:"english_name"`
}

// CastMember is an actor credit
type CastMember struct {
	ID          int     `json:"id"`
	CastID      *int    `json:"castId"`
	Character   *string `json:"character"`
	CreditID    string  `json:"creditId"`
	Gender      *int    `json:"gender"`
	Name        string  `json:"name"`
	Order       int     `json:"order"`
	ProfilePath *string `json:"profilePath"`
}

// CrewMember is a crew credit
type CrewMember struct {
	ID          int     `json:"id"`
	CreditID    string  `json:"creditId"`
	Gender      *int    `json:"gender"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	Department  string  `json:"department"`
	ProfilePath *string `json:"profilePath"`
}

// Credits lists cast and crew of a title
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Directors returns the crew members credited with the Director job
func (c *Credits) Directors() []CrewMember {
	var directors []CrewMember
	for _, member := range c.Crew {
		if member.Job == "Director" {
			directors = append(directors, member)
		}
	}
	return directors
}

// Collection is the franchise a movie belongs to
type Collection struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	PosterPath   *string `json:"posterPath"`
	BackdropPath *string `json:"backdropPath"`
}

// CreatedBy is a show creator
type CreatedBy struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Gender      *int    `json:"gender"`
	ProfilePath *string `json:"profilePath"`
}

// ReleaseDate is one certified release of a movie in a country
type ReleaseDate struct {
	Certification *string    `json:"certification"`
	Descriptors   []*string  `json:"descriptors"`
	ISO639        *string    `json:"iso_639_1"`
	Note          *string    `json:"note"`
	ReleaseDate   *time.Time `json:"release_date"`
	Type          int        `json:"type"`
}

// Release groups the release dates of a country
type Release struct {
	ISO3166      string        `json:"iso_3166_1"`
	Rating       *string       `json:"rating"`
	ReleaseDates []ReleaseDate `json:"release_dates"`
}

// Releases wraps the per-country release list
type Releases struct {
	Results []Release `json:"results"`
}

// Certification returns the first non-empty certification for country
func (r *Releases) Certification(country string) (string, bool) {
	for _, release := range r.Results {
		if release.ISO3166 != country {
			continue
		}
		for _, date := range release.ReleaseDates {
			if date.Certification != nil {
				return *date.Certification, true
			}
		}
	}
	return "", false
}

// Rating is a TV content rating for a country
type Rating struct {
	ISO3166 string `json:"iso_3166_1"`
	Rating  string `json:"rating"`
}

// ContentRatings wraps the per-country TV ratings
type ContentRatings struct {
	Results []Rating `json:"results"`
}

// ExternalIDs links a title to other catalogs
type ExternalIDs struct {
	FacebookID  *string `json:"facebookId,omitempty"`
	FreebaseID  *string `json:"freebaseId,omitempty"`
	FreebaseMID *string `json:"freebaseMid,omitempty"`
	ImdbID      *string `json:"imdbId,omitempty"`
	InstagramID *string `json:"instagramId,omitempty"`
	TvdbID      *int    `json:"tvdbId,omitempty"`
	TvrageID    *int    `json:"tvrageId,omitempty"`
	TwitterID   *string `json:"twitterId,omitempty"`
}

// WatchProvider is a streaming or retail service offering a title
type WatchProvider struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	LogoPath        *string `json:"logoPath"`
	DisplayPriority int     `json:"displayPriority"`
}

// WatchProviderRegion lists the providers of a title in one country
type WatchProviderRegion struct {
	ISO3166  string          `json:"iso_3166_1"`
	Link     *string         `json:"link"`
	Buy      []WatchProvider `json:"buy"`
	Flatrate []WatchProvider `json:"flatrate"`
}

// Keyword is a TMDB keyword
type Keyword struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the full record of a movie
type MovieDetails struct {
	ID                  int                   `json:"id"`
	ImdbID              *string               `json:"imdbId"`
	Adult               bool                  `json:"adult"`
	BackdropPath        *string               `json:"backdropPath"`
	PosterPath          *string               `json:"posterPath"`
	Budget              int64                 `json:"budget"`
	Genres              Genres                `json:"genres"`
	Homepage            *string               `json:"homepage"`
	RelatedVideos       []RelatedVideo        `json:"relatedVideos"`
	OriginalLanguage    *string               `json:"originalLanguage"`
	OriginalTitle       string                `json:"originalTitle"`
	Overview            *string               `json:"overview"`
	Popularity          float64               `json:"popularity"`
	ProductionCompanies []ProductionCompany   `json:"productionCompanies"`
	ProductionCountries []ProductionCountry   `json:"productionCountries"`
	ReleaseDate         *Date                 `json:"releaseDate"`
	Releases            *Releases             `json:"releases"`
	Revenue             int64                 `json:"revenue"`
	Runtime             *int                  `json:"runtime"`
	SpokenLanguages     []SpokenLanguage      `json:"spokenLanguages"`
	Status              *string               `json:"status"`
	Tagline             *string               `json:"tagline"`
	Title               string                `json:"title"`
	Video               bool                  `json:"video"`
	VoteAverage         float64               `json:"voteAverage"`
	VoteCount           int                   `json:"voteCount"`
	Credits             Credits               `json:"credits"`
	Collection          *Collection           `json:"collection"`
	ExternalIDs         *ExternalIDs          `json:"externalIds"`
	MediaInfo           *MediaInfo            `json:"mediaInfo"`
	WatchProviders      []WatchProviderRegion `json:"watchProviders"`
}

// UnmarshalJSON requires id
func (m *MovieDetails) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if err := requireFields("movie", data, "id"); err != nil {
		return err
	}
	type plain MovieDetails
	return json.Unmarshal(data, (*plain)(m))
}

// PosterURL returns the full poster image URL, if the movie has a poster
func (m *MovieDetails) PosterURL() (string, bool) {
	return imageURL(posterBaseURL, m.PosterPath)
}

// Trailer returns the first trailer among the related videos
func (m *MovieDetails) Trailer() (RelatedVideo, bool) {
	return firstTrailer(m.RelatedVideos)
}

func firstTrailer(videos []RelatedVideo) (RelatedVideo, bool) {
	for _, v := range videos {
		if v.Type != nil && *v.Type == VideoTypeTrailer && v.URL != nil {
			return v, true
		}
	}
	return RelatedVideo{}, false
}

// TVEpisode is a single episode of a season
type TVEpisode struct {
	ID             int     `json:"id"`
	Name           string  `json:"name"`
	AirDate        *Date   `json:"airDate"`
	EpisodeNumber  int     `json:"episodeNumber"`
	Overview       *string `json:"overview"`
	ProductionCode *string `json:"productionCode"`
	ShowID         *int    `json:"showId"`
	SeasonNumber   int     `json:"seasonNumber"`
	StillPath      *string `json:"stillPath"`
	VoteAverage    float64 `json:"voteAverage"`
	VoteCount      int     `json:"voteCount"`
}

// TVSeason is a season of a show. Episodes are only filled by the season endpoint.
type TVSeason struct {
	ID           int         `json:"id"`
	AirDate      *Date       `json:"airDate"`
	EpisodeCount int         `json:"episodeCount"`
	Name         string      `json:"name"`
	Overview     *string     `json:"overview"`
	PosterPath   *string     `json:"posterPath"`
	SeasonNumber int         `json:"seasonNumber"`
	Episodes     []TVEpisode `json:"episodes"`
}

// UnmarshalJSON requires id and seasonNumber
func (s *TVSeason) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if err := requireFields("season", data, "id", "seasonNumber"); err != nil {
		return err
	}
	type plain TVSeason
	return json.Unmarshal(data, (*plain)(s))
}

// TVDetails is the full record of a TV show
type TVDetails struct {
	ID                  int                   `json:"id"`
	BackdropPath        *string               `json:"backdropPath"`
	PosterPath          *string               `json:"posterPath"`
	ContentRatings      *ContentRatings       `json:"contentRatings"`
	CreatedBy           []CreatedBy           `json:"createdBy"`
	EpisodeRunTime      []int                 `json:"episodeRunTime"`
	FirstAirDate        *Date                 `json:"firstAirDate"`
	Genres              Genres                `json:"genres"`
	Homepage            *string               `json:"homepage"`
	InProduction        bool                  `json:"inProduction"`
	Languages           []*string             `json:"languages"`
	LastAirDate         *Date                 `json:"lastAirDate"`
	LastEpisodeToAir    *TVEpisode            `json:"lastEpisodeToAir"`
	Name                string                `json:"name"`
	NextEpisodeToAir    *TVEpisode            `json:"nextEpisodeToAir"`
	Networks            []ProductionCompany   `json:"networks"`
	NumberOfEpisodes    int                   `json:"numberOfEpisodes"`
	NumberOfSeasons     int                   `json:"numberOfSeasons"`
	OriginCountry       []*string             `json:"originCountry"`
	OriginalLanguage    *string               `json:"originalLanguage"`
	OriginalName        string                `json:"originalName"`
	Overview            *string               `json:"overview"`
	Popularity          float64               `json:"popularity"`
	ProductionCompanies []ProductionCompany   `json:"productionCompanies"`
	ProductionCountries []ProductionCountry   `json:"productionCountries"`
	SpokenLanguages     []SpokenLanguage      `json:"spokenLanguages"`
	Seasons             []TVSeason            `json:"seasons"`
	RelatedVideos       []RelatedVideo        `json:"relatedVideos"`
	Credits             Credits               `json:"credits"`
	ExternalIDs         *ExternalIDs          `json:"externalIds"`
	MediaInfo           *MediaInfo            `json:"mediaInfo"`
	Keywords            []Keyword             `json:"keywords"`
	WatchProviders      []WatchProviderRegion `json:"watchProviders"`
	VoteAverage         float64               `json:"voteAverage"`
	VoteCount           int                   `json:"voteCount"`
}

// UnmarshalJSON requires id
func (t *TVDetails) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if err := requireFields("tv", data, "id"); err != nil {
		return err
	}
	type plain TVDetails
	return json.Unmarshal(data, (*plain)(t))
}

// PosterURL returns the full poster image URL, if the show has a poster
func (t *TVDetails) PosterURL() (string, bool) {
	return imageURL(posterBaseURL, t.PosterPath)
}

// Trailer returns the first trailer among the related videos
func (t *TVDetails) Trailer() (RelatedVideo, bool) {
	return firstTrailer(t.RelatedVideos)
}

// SeasonNumbers lists the regular seasons of the show, skipping specials (season 0)
func (t *TVDetails) SeasonNumbers() []int {
	var numbers []int
	for _, s := range t.Seasons {
		if s.SeasonNumber > 0 {
			numbers = append(numbers, s.SeasonNumber)
		}
	}
	return numbers
}
