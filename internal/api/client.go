// Package api implements the repository interfaces against the Tulisify
// HTTP API. Every outcome is reported as a result.Result: HTTP statuses are
// mapped to failure kinds and transport problems collapse into a single
// "Network error occurred" failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/result"
	"github.com/tulisify/tulisify/internal/tokenstore"
)

const (
	DefaultBaseURL = "http://localhost:4000/api"
	defaultTimeout = 30 * time.Second

	// MsgNetworkError is reported for every transport or decode failure.
	MsgNetworkError = "Network error occurred"

	maxErrorBody = 64 << 10
)

// Client performs requests against the API and attaches the stored bearer
// token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     tokenstore.Store
}

// NewClient builds a client. An empty baseURL falls back to DefaultBaseURL
// and a zero timeout to 30 seconds.
func NewClient(baseURL string, timeout time.Duration, tokens tokenstore.Store) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if tokens == nil {
		tokens = tokenstore.NewMemoryStore()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// payload is an encoded request body.
type payload struct {
	contentType string
	body        io.Reader
}

func jsonPayload(v any) (*payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return &payload{contentType: "application/json", body: bytes.NewReader(data)}, nil
}

// formFile is one file part of a multipart payload.
type formFile struct {
	field  string
	upload *entities.FileUpload
}

func multipartPayload(fields map[string]string, files []formFile) (*payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.upload.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create part %s: %w", f.field, err)
		}
		if _, err := part.Write(f.upload.Data); err != nil {
			return nil, fmt.Errorf("failed to write part %s: %w", f.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return &payload{contentType: w.FormDataContentType(), body: &buf}, nil
}

// do sends one request. A non-nil error means the request never produced a
// response (transport failure); HTTP error statuses are returned as
// responses.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body *payload) (*response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = body.body
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}

	token, err := c.tokens.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}

// errorBody covers the message fields servers commonly use.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

// failure turns a non-2xx response into a Result failure, using the
// server's message when one is present and fallback otherwise.
func failure[T any](resp *response, fallback string) result.Result[T] {
	msg := fallback
	var eb errorBody
	body := resp.body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Error != "":
			msg = eb.Error
		case eb.Message != "":
			msg = eb.Message
		case eb.Msg != "":
			msg = eb.Msg
		}
	}
	return result.Fail[T](KindForStatus(resp.status), msg)
}

// KindForStatus maps an HTTP status to a failure kind.
func KindForStatus(status int) result.Kind {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return result.KindValidation
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return result.KindUnauthorized
	case status == http.StatusNotFound:
		return result.KindNotFound
	case status == http.StatusConflict:
		return result.KindConflict
	default:
		return result.KindServer
	}
}

func networkError[T any]() result.Result[T] {
	return result.Fail[T](result.KindTransport, MsgNetworkError)
}

// decode unmarshals a 2xx body. Decode problems count as network errors.
func decode[T any](resp *response) result.Result[T] {
	var v T
	if err := json.Unmarshal(resp.body, &v); err != nil {
		return networkError[T]()
	}
	return result.Success(v)
}
