package overseerr

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestRequestStatus(t *testing.T) {
	tests := []struct {
		status   RequestStatus
		expected string
	}{
		{RequestStatusPending, "PENDING"},
		{RequestStatusApproved, "APPROVED"},
		{RequestStatusDeclined, "DECLINED"},
		{RequestStatusFailed, "FAILED"},
		{RequestStatusCompleted, "COMPLETED"},
		{RequestStatusUnknown, "UNKNOWN"},
		{RequestStatus(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}

	t.Run("wire values", func(t *testing.T) {
		for n := 1; n <= 5; n++ {
			var rs RequestStatus
			require.NoError(t, json.Unmarshal([]byte{byte('0' + n)}, &rs))
			assert.Equal(t, RequestStatus(n), rs)
		}

		var rs RequestStatus
		var enumErr *EnumError
		assert.ErrorAs(t, json.Unmarshal([]byte("0"), &rs), &enumErr)
		assert.ErrorAs(t, json.Unmarshal([]byte("6"), &rs), &enumErr)
	})
}

func TestMediaStatus(t *testing.T) {
	var ms MediaStatus
	require.NoError(t, json.Unmarshal([]byte("4"), &ms))
	assert.Equal(t, MediaStatusPartiallyAvailable, ms)
	assert.Equal(t, "PARTIALLY_AVAILABLE", ms.String())
	assert.True(t, ms.IsRequestable())
	assert.False(t, MediaStatusAvailable.IsRequestable())

	var enumErr *EnumError
	assert.ErrorAs(t, json.Unmarshal([]byte("7"), &ms), &enumErr)
}

func TestMediaType(t *testing.T) {
	assert.True(t, MediaTypeMovie.IsMovie())
	assert.False(t, MediaTypeTV.IsMovie())
	assert.True(t, MediaTypeTV.IsRequestable())
	assert.False(t, MediaTypePerson.IsRequestable())

	var mt MediaType
	require.NoError(t, json.Unmarshal([]byte(`"person"`), &mt))
	assert.Equal(t, MediaTypePerson, mt)

	var enumErr *EnumError
	assert.ErrorAs(t, json.Unmarshal([]byte(`"collection"`), &mt), &enumErr)

	parsed, err := ParseMediaType(" TV ")
	require.NoError(t, err)
	assert.Equal(t, MediaTypeTV, parsed)

	_, err = ParseMediaType("book")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestPermission(t *testing.T) {
	admin := PermissionAdmin
	assert.True(t, admin.Has(PermissionManageRequests, PermissionRequest4K))
	assert.True(t, admin.CanRequest(MediaTypeTV))

	manager := PermissionManageRequests | PermissionRequest
	assert.True(t, manager.Has(PermissionManageRequests))
	assert.False(t, manager.Has(PermissionManageRequests, PermissionManageUsers))
	assert.True(t, manager.HasAny(PermissionManageUsers, PermissionRequest))

	movieOnly := PermissionRequestMovie
	assert.True(t, movieOnly.CanRequest(MediaTypeMovie))
	assert.False(t, movieOnly.CanRequest(MediaTypeTV))
	assert.False(t, movieOnly.CanRequest(MediaTypePerson))
	assert.False(t, PermissionNone.HasAny(PermissionRequest))
}

func TestUser(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{
			name: "display name available",
			user: User{
				DisplayName:  strPtr("John Doe"),
				Username:     strPtr("johndoe"),
				PlexUsername: strPtr("john_plex"),
				Email:        "john@example.com",
			},
			expected: "John Doe",
		},
		{
			name: "only username available",
			user: User{
				Username:     strPtr("johndoe"),
				PlexUsername: strPtr("john_plex"),
				Email:        "john@example.com",
			},
			expected: "johndoe",
		},
		{
			name: "only plex username available",
			user: User{
				PlexUsername: strPtr("john_plex"),
				Email:        "john@example.com",
			},
			expected: "john_plex",
		},
		{
			name: "only email available",
			user: User{
				Email: "john@example.com",
			},
			expected: "john@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.GetDisplayName())
		})
	}

	t.Run("required fields", func(t *testing.T) {
		var u User
		var missing *MissingFieldError
		require.ErrorAs(t, json.Unmarshal([]byte(`{"id":3}`), &u), &missing)
		assert.Equal(t, "email", missing.Field)
		assert.Equal(t, "user", missing.Object)
	})

	t.Run("discord id", func(t *testing.T) {
		u := User{Settings: &UserSettings{DiscordID: strPtr("42")}}
		id, ok := u.DiscordID()
		assert.True(t, ok)
		assert.Equal(t, "42", id)

		_, ok = (&User{}).DiscordID()
		assert.False(t, ok)
	})
}

func TestRequest(t *testing.T) {
	t.Run("IsMovieRequest", func(t *testing.T) {
		movieReq := Request{Type: MediaTypeMovie}
		tvReq := Request{Type: MediaTypeTV}

		assert.True(t, movieReq.IsMovieRequest())
		assert.False(t, tvReq.IsMovieRequest())
	})

	t.Run("GetApprover", func(t *testing.T) {
		approver := &User{DisplayName: strPtr("Admin")}

		tests := []struct {
			name     string
			req      Request
			expected *User
		}{
			{
				name: "approved with modifier",
				req: Request{
					Status:     RequestStatusApproved,
					ModifiedBy: approver,
				},
				expected: approver,
			},
			{
				name: "completed with modifier",
				req: Request{
					Status:     RequestStatusCompleted,
					ModifiedBy: approver,
				},
				expected: approver,
			},
			{
				name: "pending with modifier",
				req: Request{
					Status:     RequestStatusPending,
					ModifiedBy: approver,
				},
				expected: nil,
			},
			{
				name: "approved without modifier",
				req: Request{
					Status: RequestStatusApproved,
				},
				expected: nil,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, tt.expected, tt.req.GetApprover())
			})
		}
	})

	t.Run("decode", func(t *testing.T) {
		var req Request
		require.NoError(t, json.Unmarshal([]byte(testRequestJSON), &req))
		assert.Equal(t, 7, req.ID)
		assert.Equal(t, "Admin", req.RequestedBy.GetDisplayName())
		assert.True(t, req.CreatedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
		assert.Nil(t, req.ModifiedBy)
		require.NotNil(t, req.Media.TvdbID)
		assert.Equal(t, 121361, *req.Media.TvdbID)
	})

	t.Run("missing requester", func(t *testing.T) {
		var req Request
		var missing *MissingFieldError
		err := json.Unmarshal([]byte(`{"id":1,"status":1,"createdAt":"2024-01-02T03:04:05Z","updatedAt":"2024-01-02T03:04:05Z","requestedBy":null}`), &req)
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "requestedBy", missing.Field)
	})
}

func TestPageInfo(t *testing.T) {
	t.Run("NextPage", func(t *testing.T) {
		pi := PageInfo{Page: 2, Pages: 5}
		next, err := pi.NextPage()
		require.NoError(t, err)
		assert.Equal(t, 3, next)
		assert.True(t, pi.HasMore())

		pi.Page = 5
		_, err = pi.NextPage()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no more pages")
		assert.False(t, pi.HasMore())
	})

	t.Run("requests require page info", func(t *testing.T) {
		var rr Requests
		var missing *MissingFieldError
		require.ErrorAs(t, json.Unmarshal([]byte(`{"results":[]}`), &rr), &missing)
		assert.Equal(t, "pageInfo", missing.Field)
	})
}

func TestSearchResultsDecode(t *testing.T) {
	const payload = `[
		{"id":27205,"mediaType":"movie","title":"Inception","releaseDate":"2010-07-15","voteAverage":8.4},
		{"id":1399,"mediaType":"tv","name":"Game of Thrones","firstAirDate":"2011-04-17","overview":null},
		{"id":525,"mediaType":"person","name":"Christopher Nolan","profilePath":"/nolan.jpg","knownFor":[
			{"id":155,"mediaType":"movie","title":"The Dark Knight"},
			{"id":1100,"mediaType":"tv","name":"Westworld"}
		]}
	]`

	var results SearchResults
	require.NoError(t, json.Unmarshal([]byte(payload), &results))
	require.Len(t, results, 3)

	assert.Equal(t, MediaTypeMovie, results[0].MediaType())
	assert.Equal(t, MediaTypeTV, results[1].MediaType())
	assert.Equal(t, MediaTypePerson, results[2].MediaType())

	show := results[1].(*TVResult)
	assert.Equal(t, "Game of Thrones", show.Name)
	assert.Nil(t, show.Overview)
	assert.Equal(t, "2011", show.FirstAirDate.YearString())

	person := results[2].(*PersonResult)
	assert.Equal(t, 525, person.GetID())
	require.Len(t, person.KnownFor, 2)
	assert.Equal(t, "The Dark Knight", person.KnownFor[0].(*MovieResult).Title)
	assert.Equal(t, "Westworld", person.KnownFor[1].(*TVResult).Name)

	assert.Len(t, results.Movies(), 1)
	assert.Len(t, results.Shows(), 1)
	assert.Len(t, results.People(), 1)
}

func TestSearchResultsDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "unknown media type",
			payload: `[{"id":1,"mediaType":"collection"}]`,
			check: func(t *testing.T, err error) {
				var enumErr *EnumError
				require.ErrorAs(t, err, &enumErr)
				assert.Equal(t, "mediaType", enumErr.Field)
				assert.Contains(t, err.Error(), "result 0")
			},
		},
		{
			name:    "missing media type",
			payload: `[{"id":1,"mediaType":"movie","title":"A"},{"id":2,"title":"B"}]`,
			check: func(t *testing.T, err error) {
				var missing *MissingFieldError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, "mediaType", missing.Field)
				assert.Contains(t, err.Error(), "result 1")
			},
		},
		{
			name:    "missing id",
			payload: `[{"mediaType":"tv","name":"B"}]`,
			check: func(t *testing.T, err error) {
				var missing *MissingFieldError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, "id", missing.Field)
			},
		},
		{
			name:    "bad element inside knownFor",
			payload: `[{"id":3,"mediaType":"person","name":"X","knownFor":[{"id":4,"mediaType":"book"}]}]`,
			check: func(t *testing.T, err error) {
				var enumErr *EnumError
				assert.ErrorAs(t, err, &enumErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var results SearchResults
			err := json.Unmarshal([]byte(tt.payload), &results)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestVariantRejectsForeignTag(t *testing.T) {
	var movie MovieResult
	var enumErr *EnumError
	require.ErrorAs(t, json.Unmarshal([]byte(`{"id":1,"mediaType":"tv"}`), &movie), &enumErr)

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"title":"Untagged"}`), &movie))
	assert.Equal(t, "Untagged", movie.Title)
}

func TestRelatedVideoEnums(t *testing.T) {
	var video RelatedVideo
	require.NoError(t, json.Unmarshal([]byte(`{"type":"Behind the Scenes","site":"Vimeo"}`), &video))
	assert.Equal(t, VideoTypeBehindTheScenes, *video.Type)
	assert.Equal(t, VideoSiteVimeo, *video.Site)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"Clip","site":null}`), &video))
	assert.Nil(t, video.Site)

	var enumErr *EnumError
	assert.ErrorAs(t, json.Unmarshal([]byte(`{"type":"Deleted Scene"}`), &video), &enumErr)
	assert.ErrorAs(t, json.Unmarshal([]byte(`{"site":"Dailymotion"}`), &video), &enumErr)
}

func TestSeasons(t *testing.T) {
	t.Run("marshal", func(t *testing.T) {
		data, err := json.Marshal(AllSeasons())
		require.NoError(t, err)
		assert.Equal(t, `"all"`, string(data))

		data, err = json.Marshal(SeasonNumbers(1, 2))
		require.NoError(t, err)
		assert.Equal(t, `[1,2]`, string(data))

		data, err = json.Marshal(SeasonNumbers())
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(data))
	})

	t.Run("unmarshal", func(t *testing.T) {
		var s Seasons
		require.NoError(t, json.Unmarshal([]byte(`"all"`), &s))
		assert.True(t, s.All())

		require.NoError(t, json.Unmarshal([]byte(`[3,4]`), &s))
		assert.False(t, s.All())
		assert.Equal(t, []int{3, 4}, s.Numbers())

		var enumErr *EnumError
		assert.ErrorAs(t, json.Unmarshal([]byte(`"some"`), &s), &enumErr)
	})

	t.Run("parse", func(t *testing.T) {
		tests := []struct {
			input   string
			want    string
			wantErr bool
		}{
			{input: "all", want: "all"},
			{input: "ALL", want: "all"},
			{input: "1, 2,3", want: "1,2,3"},
			{input: "0", want: "0"},
			{input: "", wantErr: true},
			{input: "one", wantErr: true},
			{input: "1,-2", wantErr: true},
		}

		for _, tt := range tests {
			t.Run(tt.input, func(t *testing.T) {
				s, err := ParseSeasons(tt.input)
				if tt.wantErr {
					assert.ErrorIs(t, err, ErrInvalidParameter)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.want, s.String())
			})
		}
	})
}

func TestDate(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2010-07-15"`), &d))
	assert.Equal(t, "2010-07-15", d.String())

	require.NoError(t, json.Unmarshal([]byte(`"2011-04-17T21:00:00.000Z"`), &d))
	assert.Equal(t, "2011-04-17", d.String())

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))

	var nilDate *Date
	assert.Equal(t, "", nilDate.YearString())
}

func TestGenresNames(t *testing.T) {
	genres := Genres{{ID: 28, Name: "Action"}, {ID: 35, Name: "Comedy"}}
	assert.Equal(t, map[int]string{28: "Action", 35: "Comedy"}, genres.Names())
}

func TestAPIError(t *testing.T) {
	t.Run("Error message", func(t *testing.T) {
		err := &APIError{
			StatusCode: 404,
			Message:    "Not Found",
		}
		assert.Equal(t, "overseerr API error: status 404: Not Found", err.Error())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := &APIError{StatusCode: 404}
		assert.True(t, err.IsNotFound())

		err.StatusCode = 500
		assert.False(t, err.IsNotFound())
	})

	t.Run("IsUnauthorized", func(t *testing.T) {
		tests := []struct {
			code     int
			expected bool
		}{
			{401, true},
			{403, true},
			{404, false},
			{500, false},
		}

		for _, tt := range tests {
			err := &APIError{StatusCode: tt.code}
			assert.Equal(t, tt.expected, err.IsUnauthorized())
			assert.Equal(t, tt.expected, err.Is(ErrUnauthorized))
		}
	})

	t.Run("unwraps the envelope", func(t *testing.T) {
		envelope := &ErrorResponse{Message: "Request not found"}
		err := &APIError{StatusCode: 404, Message: envelope.Message, Response: envelope}

		var got *ErrorResponse
		require.ErrorAs(t, err, &got)
		assert.Same(t, envelope, got)
	})
}
