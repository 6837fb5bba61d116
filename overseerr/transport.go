package overseerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf16"
)

const apiPrefix = "/api/v1"

// call describes a single API request before it is sent
type call struct {
	method   string
	endpoint string
	params   url.Values
	body     any
}

func get(endpoint string, params url.Values) call {
	return call{method: http.MethodGet, endpoint: endpoint, params: params}
}

func post(endpoint string, body any) call {
	return call{method: http.MethodPost, endpoint: endpoint, body: body}
}

func put(endpoint string, body any) call {
	return call{method: http.MethodPut, endpoint: endpoint, body: body}
}

// response is a completed exchange. Exactly one of body and failure is meaningful.
type response struct {
	status  int
	body    json.RawMessage
	failure *ErrorResponse
}

// do performs an HTTP request with authentication and returns the normalized body.
// Service-reported failures come back in response.failure; only transport
// problems and unreadable error bodies are returned as errors.
func (c *Client) do(ctx context.Context, cl call) (*response, error) {
	reqURL := c.baseURL + apiPrefix + cl.endpoint
	if len(cl.params) > 0 {
		reqURL += "?" + encodeQuery(cl.params)
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := marshalASCII(cl.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.transportError(cl.method, reqURL, err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(cl.method, reqURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(cl.method, reqURL, err)
	}

	c.logger.Debug().
		Str("method", cl.method).
		Str("url", reqURL).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Overseerr API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		failure, err := decodeFailure(resp.StatusCode, raw)
		if err != nil {
			return nil, err
		}
		return &response{status: resp.StatusCode, failure: failure}, nil
	}

	normalized, err := normalizeEmptyStrings(raw)
	if err != nil {
		return nil, &DecodeError{Type: "response", Err: err}
	}
	return &response{status: resp.StatusCode, body: normalized}, nil
}

// decodeFailure reads the error envelope of a non-2xx response. A body that is
// not an envelope becomes a hard *APIError.
func decodeFailure(status int, raw []byte) (*ErrorResponse, error) {
	hard := &APIError{StatusCode: status, Message: http.StatusText(status), Body: string(raw)}

	normalized, err := normalizeEmptyStrings(raw)
	if err != nil {
		return nil, hard
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(normalized, &envelope); err != nil || envelope == nil {
		return nil, hard
	}
	_, hasMessage := envelope["message"]
	_, hasErrors := envelope["errors"]
	if !hasMessage && !hasErrors {
		return nil, hard
	}

	var failure ErrorResponse
	if err := json.Unmarshal(normalized, &failure); err != nil {
		return nil, hard
	}
	if failure.Errors == nil {
		failure.Errors = []ErrorDetail{}
	}
	if failure.Message == "" {
		failure.Message = http.StatusText(status)
	}
	failure.StatusCode = status
	return &failure, nil
}

func (c *Client) transportError(method, reqURL string, err error) error {
	var netErr net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
	canceled := !timeout && errors.Is(err, context.Canceled)

	if canceled {
		c.logger.Debug().
			Str("method", method).
			Str("url", reqURL).
			Msg("Overseerr request canceled")
	} else {
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("url", reqURL).
			Bool("timeout", timeout).
			Msg("Overseerr request failed")
	}

	return &TransportError{Method: method, URL: reqURL, Timeout: timeout, Canceled: canceled, Err: err}
}

// encodeQuery renders params sorted by key with spaces as %20
func encodeQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		for _, v := range params[k] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(escapeQuery(k))
			sb.WriteByte('=')
			sb.WriteString(escapeQuery(v))
		}
	}
	return sb.String()
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// marshalASCII encodes v as JSON with every non-ASCII rune escaped as \uXXXX
func marshalASCII(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for _, r := range string(data) {
		switch {
		case r < 0x80:
			buf.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&buf, `\u%04x\u%04x`, hi, lo)
		default:
			fmt.Fprintf(&buf, `\u%04x`, r)
		}
	}
	return buf.Bytes(), nil
}
