package overseerr

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PageSize is the number of results Overseerr returns per search page
const PageSize = 20

// MediaType represents the type of media
type MediaType string

const (
	// MediaTypeMovie represents a movie
	MediaTypeMovie MediaType = "movie"
	// MediaTypeTV represents a TV show
	MediaTypeTV MediaType = "tv"
	// MediaTypePerson represents a cast or crew member in search results
	MediaTypePerson MediaType = "person"
)

var mediaTypes = []string{string(MediaTypeMovie), string(MediaTypeTV), string(MediaTypePerson)}

// IsMovie checks if the media type is a movie
func (mt MediaType) IsMovie() bool {
	return mt == MediaTypeMovie
}

// IsRequestable reports whether requests can be made for this media type
func (mt MediaType) IsRequestable() bool {
	return mt == MediaTypeMovie || mt == MediaTypeTV
}

// UnmarshalJSON rejects media types outside movie, tv and person
func (mt *MediaType) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch MediaType(s) {
	case MediaTypeMovie, MediaTypeTV, MediaTypePerson:
		*mt = MediaType(s)
		return nil
	}
	return &EnumError{Field: "mediaType", Value: strconv.Quote(s), Allowed: mediaTypes}
}

// RequestStatus represents the status of a media request
type RequestStatus int

const (
	// RequestStatusUnknown is the zero value and never valid on the wire
	RequestStatusUnknown RequestStatus = iota
	// RequestStatusPending indicates a pending request
	RequestStatusPending
	// RequestStatusApproved indicates an approved request
	RequestStatusApproved
	// RequestStatusDeclined indicates a declined request
	RequestStatusDeclined
	// RequestStatusFailed indicates the request could not be sent to Radarr/Sonarr
	RequestStatusFailed
	// RequestStatusCompleted indicates the requested media is available
	RequestStatusCompleted
)

// String returns the string representation of a RequestStatus
func (rs RequestStatus) String() string {
	switch rs {
	case RequestStatusPending:
		return "PENDING"
	case RequestStatusApproved:
		return "APPROVED"
	case RequestStatusDeclined:
		return "DECLINED"
	case RequestStatusFailed:
		return "FAILED"
	case RequestStatusCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// UnmarshalJSON rejects statuses outside 1..5
func (rs *RequestStatus) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n < int(RequestStatusPending) || n > int(RequestStatusCompleted) {
		return &EnumError{Field: "request status", Value: n, Allowed: []string{"1", "2", "3", "4", "5"}}
	}
	*rs = RequestStatus(n)
	return nil
}

// MediaStatus is the availability of a title as tracked by Overseerr
type MediaStatus int

const (
	// MediaStatusUnknown means the title has never been requested
	MediaStatusUnknown MediaStatus = iota + 1
	// MediaStatusPending means a request is waiting for approval
	MediaStatusPending
	// MediaStatusProcessing means the title is being downloaded
	MediaStatusProcessing
	// MediaStatusPartiallyAvailable means some seasons are available
	MediaStatusPartiallyAvailable
	// MediaStatusAvailable means the title is in the library
	MediaStatusAvailable
)

func (ms MediaStatus) String() string {
	switch ms {
	case MediaStatusUnknown:
		return "NOT_REQUESTED"
	case MediaStatusPending:
		return "PENDING"
	case MediaStatusProcessing:
		return "PROCESSING"
	case MediaStatusPartiallyAvailable:
		return "PARTIALLY_AVAILABLE"
	case MediaStatusAvailable:
		return "AVAILABLE"
	default:
		return "UNKNOWN"
	}
}

// IsRequestable reports whether a new request can still be made
func (ms MediaStatus) IsRequestable() bool {
	return ms == MediaStatusUnknown || ms == MediaStatusPartiallyAvailable
}

// UnmarshalJSON rejects statuses outside 1..5
func (ms *MediaStatus) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if n < int(MediaStatusUnknown) || n > int(MediaStatusAvailable) {
		return &EnumError{Field: "media status", Value: n, Allowed: []string{"1", "2", "3", "4", "5"}}
	}
	*ms = MediaStatus(n)
	return nil
}

// Permission is the Overseerr user permission bitmask
type Permission int

const (
	PermissionNone               Permission = 0
	PermissionAdmin              Permission = 2
	PermissionManageSettings     Permission = 4
	PermissionManageUsers        Permission = 8
	PermissionManageRequests     Permission = 16
	PermissionRequest            Permission = 32
	PermissionVote               Permission = 64
	PermissionAutoApprove        Permission = 128
	PermissionAutoApproveMovie   Permission = 256
	PermissionAutoApproveTV      Permission = 512
	PermissionRequest4K          Permission = 1024
	PermissionRequest4KMovie     Permission = 2048
	PermissionRequest4KTV        Permission = 4096
	PermissionRequestAdvanced    Permission = 8192
	PermissionRequestView        Permission = 16384
	PermissionAutoApprove4K      Permission = 32768
	PermissionAutoApprove4KMovie Permission = 65536
	PermissionAutoApprove4KTV    Permission = 131072
	PermissionRequestMovie       Permission = 262144
	PermissionRequestTV          Permission = 524288
	PermissionManageIssues       Permission = 1048576
	PermissionViewIssues         Permission = 2097152
	PermissionCreateIssues       Permission = 4194304
)

// Has reports whether every permission in perms is granted. Admins hold all permissions.
func (p Permission) Has(perms ...Permission) bool {
	if p&PermissionAdmin != 0 {
		return true
	}
	for _, perm := range perms {
		if p&perm != perm {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one permission in perms is granted
func (p Permission) HasAny(perms ...Permission) bool {
	if p&PermissionAdmin != 0 {
		return true
	}
	for _, perm := range perms {
		if p&perm == perm {
			return true
		}
	}
	return false
}

// CanRequest reports whether the user may request the given media type
func (p Permission) CanRequest(mt MediaType) bool {
	switch mt {
	case MediaTypeMovie:
		return p.HasAny(PermissionRequest, PermissionRequestMovie)
	case MediaTypeTV:
		return p.HasAny(PermissionRequest, PermissionRequestTV)
	}
	return false
}

// NotificationTypes holds the per-agent notification bitmasks of a user
type NotificationTypes struct {
	Email      *int `json:"email"`
	Discord    *int `json:"discord"`
	Pushbullet *int `json:"pushbullet"`
	Pushover   *int `json:"pushover"`
	Slack      *int `json:"slack"`
	Telegram   *int `json:"telegram"`
	Webhook    *int `json:"webhook"`
	Webpush    *int `json:"webpush"`
}

// UserSettings is only present when a single user is requested
type UserSettings struct {
	ID                       *int               `json:"id"`
	Locale                   *string            `json:"locale"`
	Region                   *string            `json:"region"`
	OriginalLanguage         *string            `json:"originalLanguage"`
	PGPKey                   *string            `json:"pgpKey"`
	DiscordID                *string            `json:"discordId"`
	PushbulletAccessToken    *string            `json:"pushbulletAccessToken"`
	PushoverApplicationToken *string            `json:"pushoverApplicationToken"`
	PushoverUserKey          *string            `json:"pushoverUserKey"`
	TelegramChatID           *string            `json:"telegramChatId"`
	TelegramSendSilently     *bool              `json:"telegramSendSilently"`
	WatchlistSyncMovies      *bool              `json:"watchlistSyncMovies"`
	WatchlistSyncTV          *bool              `json:"watchlistSyncTv"`
	NotificationTypes        *NotificationTypes `json:"notificationTypes"`
}

// User represents an Overseerr user
type User struct {
	ID           int           `json:"id"`
	Email        string        `json:"email"`
	Username     *string       `json:"username"`
	PlexUsername *string       `json:"plexUsername"`
	DisplayName  *string       `json:"displayName"`
	UserType     *int          `json:"userType"`
	Permissions  Permission    `json:"permissions"`
	Avatar       *string       `json:"avatar"`
	CreatedAt    *time.Time    `json:"createdAt"`
	UpdatedAt    *time.Time    `json:"updatedAt"`
	RequestCount *int          `json:"requestCount"`
	Settings     *UserSettings `json:"settings"`
}

// UnmarshalJSON requires id and email
func (u *User) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if err := requireFields("user", data, "id", "email"); err != nil {
		return err
	}
	type plain User
	return json.Unmarshal(data, (*plain)(u))
}

// GetDisplayName returns the best available display name for the user
func (u *User) GetDisplayName() string {
	for _, name := range []*string{u.DisplayName, u.Username, u.PlexUsername} {
		if name != nil && *name != "" {
			return *name
		}
	}
	return u.Email
}

// DiscordID returns the linked Discord account id, if the user has set one
func (u *User) DiscordID() (string, bool) {
	if u.Settings == nil || u.Settings.DiscordID == nil {
		return "", false
	}
	return *u.Settings.DiscordID, true
}

// MediaInfo links a catalog title to Overseerr's own tracking record
type MediaInfo struct {
	ID        int          `json:"id"`
	TmdbID    int          `json:"tmdbId"`
	TvdbID    *int         `json:"tvdbId"`
	ImdbID    *string      `json:"imdbId"`
	Status    MediaStatus  `json:"status"`
	Status4K  *MediaStatus `json:"status4k"`
	MediaType MediaType    `json:"mediaType"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// UnmarshalJSON requires id and status
func (m *MediaInfo) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if err := requireFields("media", data, "id", "status"); err != nil {
		return err
	}
	type plain MediaInfo
	return json.Unmarshal(data, (*plain)(m))
}

// GetTMDBID returns the TMDB ID as int64
func (m *MediaInfo) GetTMDBID() int64 {
	return int64(m.TmdbID)
}

// SeasonRequest is the per-season state of a TV request
type SeasonRequest struct {
	ID           int           `json:"id"`
	SeasonNumber int           `json:"seasonNumber"`
	Status       RequestStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Request represents a media request in Overseerr
type Request struct {
	ID                int             `json:"id"`
	Status            RequestStatus   `json:"status"`
	Media             MediaInfo       `json:"media"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	Type              MediaType       `json:"type"`
	Is4K              bool            `json:"is4k"`
	ServerID          *int            `json:"serverId"`
	ProfileID         *int            `json:"profileId"`
	RootFolder        *string         `json:"rootFolder"`
	LanguageProfileID *int            `json:"languageProfileId"`
	Tags              []int           `json:"tags"`
	IsAutoRequest     bool            `json:"isAutoRequest"`
	RequestedBy       User            `json:"requestedBy"`
	ModifiedBy        *User           `json:"modifiedBy"`
	SeasonCount       *int            `json:"seasonCount"`
	Seasons           []SeasonRequest `json:"seasons"`
}

// UnmarshalJSON requires id, status, timestamps and requester
func (r *Request) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if err := requireFields("request", data, "id", "status", "createdAt", "updatedAt", "requestedBy"); err != nil {
		return err
	}
	type plain Request
	return json.Unmarshal(data, (*plain)(r))
}

// IsMovieRequest checks if this is a movie request
func (r *Request) IsMovieRequest() bool {
	return r.Type.IsMovie() || r.Media.MediaType.IsMovie()
}

// GetApprover returns the user who approved the request, if available
func (r *Request) GetApprover() *User {
	if r.ModifiedBy != nil && (r.Status == RequestStatusApproved || r.Status == RequestStatusCompleted) {
		return r.ModifiedBy
	}
	return nil
}

// SeasonNumbers lists the seasons covered by a TV request
func (r *Request) SeasonNumbers() []int {
	numbers := make([]int, 0, len(r.Seasons))
	for _, s := range r.Seasons {
		numbers = append(numbers, s.SeasonNumber)
	}
	return numbers
}

// PageInfo contains pagination information
type PageInfo struct {
	Pages    int `json:"pages"`
	PageSize int `json:"pageSize"`
	Results  int `json:"results"`
	Page     int `json:"page"`
}

// HasMore reports whether a later page exists
func (pi *PageInfo) HasMore() bool {
	return pi.Page < pi.Pages
}

// NextPage returns the next page number, or an error if there are no more pages
func (pi *PageInfo) NextPage() (int, error) {
	if pi.Page >= pi.Pages {
		return 0, fmt.Errorf("no more pages available")
	}
	return pi.Page + 1, nil
}

// Requests represents the paginated response from the requests endpoint
type Requests struct {
	PageInfo PageInfo  `json:"pageInfo"`
	Results  []Request `json:"results"`
}

// UnmarshalJSON requires pageInfo and results
func (rr *Requests) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if err := requireFields("requests", data, "pageInfo", "results"); err != nil {
		return err
	}
	type plain Requests
	return json.Unmarshal(data, (*plain)(rr))
}

// HasMorePages checks if there are more pages to fetch
func (rr *Requests) HasMorePages() bool {
	return rr.PageInfo.HasMore()
}

// RequestCount summarises requests by type and status
type RequestCount struct {
	Total      int `json:"total"`
	Movie      int `json:"movie"`
	TV         int `json:"tv"`
	Pending    int `json:"pending"`
	Approved   int `json:"approved"`
	Declined   int `json:"declined"`
	Processing int `json:"processing"`
	Available  int `json:"available"`
}

// UnmarshalJSON requires every counter
func (rc *RequestCount) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	if err := requireFields("request count", data, "total", "movie", "tv", "pending", "approved", "declined", "processing", "available"); err != nil {
		return err
	}
	type plain RequestCount
	return json.Unmarshal(data, (*plain)(rc))
}

// UserSearchResult is a page of users
type UserSearchResult struct {
	PageInfo PageInfo `json:"pageInfo"`
	Results  []User   `json:"results"`
}

// HasMorePages checks if there are more pages to fetch
func (us *UserSearchResult) HasMorePages() bool {
	return us.PageInfo.HasMore()
}

// Genre is a TMDB genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Genres is the genre list for one media type
type Genres []Genre

// Names indexes genre names by id
func (g Genres) Names() map[int]string {
	names := make(map[int]string, len(g))
	for _, genre := range g {
		names[genre.ID] = genre.Name
	}
	return names
}

// Seasons selects the seasons of a TV request: either explicit numbers or all of them.
type Seasons struct {
	all     bool
	numbers []int
}

// AllSeasons requests every season of a show
func AllSeasons() Seasons {
	return Seasons{all: true}
}

// SeasonNumbers requests the listed seasons
func SeasonNumbers(numbers ...int) Seasons {
	return Seasons{numbers: numbers}
}

// ParseSeasons parses "all" or a comma separated list such as "1,2,3"
func ParseSeasons(s string) (Seasons, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return AllSeasons(), nil
	}
	var numbers []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Seasons{}, &ValidationError{Param: "seasons", Value: s, Reason: `must be "all" or a list of season numbers`}
		}
		numbers = append(numbers, n)
	}
	if len(numbers) == 0 {
		return Seasons{}, &ValidationError{Param: "seasons", Value: s, Reason: "no seasons given"}
	}
	return SeasonNumbers(numbers...), nil
}

// All reports whether every season is selected
func (s Seasons) All() bool {
	return s.all
}

// Numbers returns the explicitly selected seasons
func (s Seasons) Numbers() []int {
	return s.numbers
}

// IsZero reports whether no season is selected
func (s Seasons) IsZero() bool {
	return !s.all && len(s.numbers) == 0
}

func (s Seasons) String() string {
	if s.all {
		return "all"
	}
	parts := make([]string, len(s.numbers))
	for i, n := range s.numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// MarshalJSON encodes "all" or the list of season numbers
func (s Seasons) MarshalJSON() ([]byte, error) {
	if s.all {
		return json.Marshal("all")
	}
	if s.numbers == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.numbers)
}

// UnmarshalJSON accepts "all" or a list of season numbers
func (s *Seasons) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var literal string
	if err := json.Unmarshal(data, &literal); err == nil {
		if literal != "all" {
			return &EnumError{Field: "seasons", Value: strconv.Quote(literal), Allowed: []string{"all"}}
		}
		*s = AllSeasons()
		return nil
	}
	var numbers []int
	if err := json.Unmarshal(data, &numbers); err != nil {
		return err
	}
	*s = SeasonNumbers(numbers...)
	return nil
}

// RequestBody is the payload for creating or updating a request
type RequestBody struct {
	MediaID           int       `json:"mediaId"`
	MediaType         MediaType `json:"mediaType"`
	UserID            *int      `json:"userId,omitempty"`
	TvdbID            *int      `json:"tvdbId,omitempty"`
	Seasons           *Seasons  `json:"seasons,omitempty"`
	Is4K              *bool     `json:"is4k,omitempty"`
	ServerID          *int      `json:"serverId,omitempty"`
	ProfileID         *int      `json:"profileId,omitempty"`
	RootFolder        *string   `json:"rootFolder,omitempty"`
	LanguageProfileID *int      `json:"languageProfileId,omitempty"`
}
