package overseerr

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// RequestFilter narrows the request list by status
type RequestFilter string

const (
	FilterAll         RequestFilter = "all"
	FilterApproved    RequestFilter = "approved"
	FilterAvailable   RequestFilter = "available"
	FilterPending     RequestFilter = "pending"
	FilterProcessing  RequestFilter = "processing"
	FilterUnavailable RequestFilter = "unavailable"
	FilterFailed      RequestFilter = "failed"
)

// RequestFilters lists every filter accepted by the request endpoint
var RequestFilters = []RequestFilter{
	FilterAll, FilterApproved, FilterAvailable, FilterPending,
	FilterProcessing, FilterUnavailable, FilterFailed,
}

// Valid reports whether f is a known filter
func (f RequestFilter) Valid() bool {
	return slices.Contains(RequestFilters, f)
}

// RequestSort orders the request list
type RequestSort string

const (
	SortAdded    RequestSort = "added"
	SortModified RequestSort = "modified"
)

// RequestSorts lists every sort key accepted by the request endpoint
var RequestSorts = []RequestSort{SortAdded, SortModified}

// Valid reports whether s is a known sort key
func (s RequestSort) Valid() bool {
	return s == SortAdded || s == SortModified
}

// UserSort orders the user list
type UserSort string

const (
	UserSortCreated     UserSort = "created"
	UserSortUpdated     UserSort = "updated"
	UserSortRequests    UserSort = "requests"
	UserSortDisplayName UserSort = "displayname"
)

var userSorts = []string{
	string(UserSortCreated), string(UserSortUpdated),
	string(UserSortRequests), string(UserSortDisplayName),
}

// RequestsQuery selects a page of requests. Zero values fall back to
// take=PageSize, skip=0, filter=all and sort=added.
type RequestsQuery struct {
	Take        int
	Skip        int
	Filter      RequestFilter
	Sort        RequestSort
	RequestedBy int
}

func (q RequestsQuery) params(defaultTake int) (url.Values, error) {
	if q.Take < 0 {
		return nil, &ValidationError{Param: "take", Value: q.Take, Reason: "must be at least 1"}
	}
	if q.Skip < 0 {
		return nil, &ValidationError{Param: "skip", Value: q.Skip, Reason: "must not be negative"}
	}
	if q.RequestedBy < 0 {
		return nil, &ValidationError{Param: "requestedBy", Value: q.RequestedBy, Reason: "must be a user id"}
	}

	filter := q.Filter
	if filter == "" {
		filter = FilterAll
	}
	if !filter.Valid() {
		return nil, &ValidationError{Param: "filter", Value: string(q.Filter), Allowed: enumStrings(RequestFilters)}
	}

	sort := q.Sort
	if sort == "" {
		sort = SortAdded
	}
	if !sort.Valid() {
		return nil, &ValidationError{Param: "sort", Value: string(q.Sort), Allowed: enumStrings(RequestSorts)}
	}

	take := q.Take
	if take == 0 {
		take = defaultTake
	}

	params := url.Values{}
	params.Set("take", strconv.Itoa(take))
	params.Set("skip", strconv.Itoa(q.Skip))
	params.Set("filter", string(filter))
	params.Set("sort", string(sort))
	if q.RequestedBy > 0 {
		params.Set("requestedBy", strconv.Itoa(q.RequestedBy))
	}
	return params, nil
}

// UsersQuery selects a page of users. Zero values fall back to the
// client page size and the Service's default sort.
type UsersQuery struct {
	Take int
	Skip int
	Sort UserSort
}

func (q UsersQuery) params(defaultTake int) (url.Values, error) {
	if q.Take < 0 {
		return nil, &ValidationError{Param: "take", Value: q.Take, Reason: "must be at least 1"}
	}
	if q.Skip < 0 {
		return nil, &ValidationError{Param: "skip", Value: q.Skip, Reason: "must not be negative"}
	}

	take := q.Take
	if take == 0 {
		take = defaultTake
	}

	params := url.Values{}
	params.Set("take", strconv.Itoa(take))
	params.Set("skip", strconv.Itoa(q.Skip))
	if q.Sort != "" {
		if !slices.Contains(userSorts, string(q.Sort)) {
			return nil, &ValidationError{Param: "sort", Value: string(q.Sort), Allowed: userSorts}
		}
		params.Set("sort", string(q.Sort))
	}
	return params, nil
}

// validateID rejects ids below 1
func validateID(param string, id int) error {
	if id < 1 {
		return &ValidationError{Param: param, Value: id, Reason: "must be a positive id"}
	}
	return nil
}

// normalizePage maps 0 to the first page and rejects negatives
func normalizePage(page int) (int, error) {
	if page == 0 {
		return 1, nil
	}
	if page < 1 {
		return 0, &ValidationError{Param: "page", Value: page, Reason: "must be at least 1"}
	}
	return page, nil
}

// validateGenreType allows only the media types that have genre lists
func validateGenreType(mt MediaType) error {
	if mt != MediaTypeMovie && mt != MediaTypeTV {
		return &ValidationError{Param: "mediaType", Value: string(mt), Allowed: []string{string(MediaTypeMovie), string(MediaTypeTV)}}
	}
	return nil
}

// prepareRequestBody validates a new request and drops seasons for movies
func prepareRequestBody(body RequestBody) (RequestBody, error) {
	if err := validateID("mediaId", body.MediaID); err != nil {
		return RequestBody{}, err
	}
	if !body.MediaType.IsRequestable() {
		return RequestBody{}, &ValidationError{Param: "mediaType", Value: string(body.MediaType), Allowed: []string{string(MediaTypeMovie), string(MediaTypeTV)}}
	}
	if body.UserID != nil {
		if err := validateID("userId", *body.UserID); err != nil {
			return RequestBody{}, err
		}
	}

	if body.MediaType != MediaTypeTV {
		body.Seasons = nil
		return body, nil
	}
	if body.Seasons != nil {
		for _, n := range body.Seasons.Numbers() {
			if n < 0 {
				return RequestBody{}, &ValidationError{Param: "seasons", Value: n, Reason: "season numbers must not be negative"}
			}
		}
	}
	return body, nil
}

// prepareUpdateBody validates an edit of an existing request
func prepareUpdateBody(body RequestBody) (RequestBody, error) {
	if !body.MediaType.IsRequestable() {
		return RequestBody{}, &ValidationError{Param: "mediaType", Value: string(body.MediaType), Allowed: []string{string(MediaTypeMovie), string(MediaTypeTV)}}
	}
	if body.MediaType != MediaTypeTV {
		body.Seasons = nil
	}
	return body, nil
}

// ParseMediaType converts user input to a MediaType
func ParseMediaType(s string) (MediaType, error) {
	mt := MediaType(strings.ToLower(strings.TrimSpace(s)))
	switch mt {
	case MediaTypeMovie, MediaTypeTV, MediaTypePerson:
		return mt, nil
	}
	return "", &ValidationError{Param: "mediaType", Value: s, Allowed: mediaTypes}
}

// ParseRequestFilter converts user input to a RequestFilter
func ParseRequestFilter(s string) (RequestFilter, error) {
	f := RequestFilter(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", &ValidationError{Param: "filter", Value: s, Allowed: enumStrings(RequestFilters)}
	}
	return f, nil
}

// ParseRequestSort converts user input to a RequestSort
func ParseRequestSort(s string) (RequestSort, error) {
	rs := RequestSort(strings.ToLower(strings.TrimSpace(s)))
	if !rs.Valid() {
		return "", &ValidationError{Param: "sort", Value: s, Allowed: enumStrings(RequestSorts)}
	}
	return rs, nil
}

func enumStrings[E ~string](values []E) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
