// Package overseerr provides a client for interacting with the Overseerr API.
//
// Overseerr is a request management and media discovery tool for Plex/Jellyfin/Emby.
// This package turns its loosely typed JSON API into typed values: mixed search
// results, media details, users, requests, genres and paging information.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Transport: HTTP plumbing, query encoding and empty-string normalization
//   - Types: Domain models with required-field and enum checks at decode time
//   - Result: the generic wrapper deciding between success and Service error
//   - Client: one method per endpoint, validating parameters before any request
//   - Errors: Structured error types for better error handling
//
// # Usage
//
// Create a new client with your Overseerr URL and API key:
//
//	logger := zerolog.New(os.Stdout)
//	client, err := overseerr.NewClient(
//		"https://overseerr.example.com",
//		"your-api-key",
//		logger,
//		overseerr.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := client.Search(ctx, "Inception", 1)
//	if err != nil {
//		log.Fatal(err) // validation, transport or decode failure
//	}
//	if !res.OK() {
//		log.Println(res.Error.Message) // Overseerr reported an error
//	}
//	for _, r := range res.Value.Results {
//		switch v := r.(type) {
//		case *overseerr.MovieResult:
//			fmt.Println(v.Title)
//		case *overseerr.TVResult:
//			fmt.Println(v.Name)
//		}
//	}
//
// # Error Handling
//
// Errors reported by Overseerr come back inside Result as *ErrorResponse. Pass
// RaiseForError() to a call, or create the client WithRaiseForError(true), to
// get an *APIError instead. Other failures are returned directly:
//
//   - *ValidationError (ErrInvalidParameter): rejected before any request
//   - *TransportError (ErrNoConnection, ErrTimeout): the request did not complete
//   - *DecodeError (ErrDecode): the response did not match the expected type
//
// API errors include helper methods for classification:
//
//	var apiErr *overseerr.APIError
//	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
//		// Handle auth failure
//	}
package overseerr
