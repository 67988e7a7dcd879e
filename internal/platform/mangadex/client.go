// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mangadex is a client for the session-based chapter upload protocol.

An upload is a session: check for a stale one and abandon it, begin a new
one for (manga, groups), post the page images in batches, then commit the
chapter draft with the page order. Authentication uses the OAuth2 password
grant; a 401 forces one token refresh and the request is retried once.
*/
package mangadex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const requestTimeout = 60 * time.Second

// Config holds the endpoint and credentials.
type Config struct {
	APIURL       string
	AuthURL      string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string

	// RPS caps outgoing requests per second.
	RPS float64

	// HTTPClient is optional.
	HTTPClient *http.Client
}

// StatusError is a non-2xx reply.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mangadex: %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// File is one page image to upload.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadedFile is a page the session accepted.
type UploadedFile struct {
	ID       string
	Filename string
}

// ChapterDraft is the metadata committed with a session.
type ChapterDraft struct {
	Volume             *string `json:"volume"`
	Chapter            string  `json:"chapter"`
	TranslatedLanguage string  `json:"translatedLanguage"`
	Title              *string `json:"title"`
}

// Client talks to the upload API.
type Client struct {
	baseURL  string
	oauth    *oauth2.Config
	username string
	password string
	http     *http.Client
	limiter  *rate.Limiter

	mu     sync.Mutex
	source oauth2.TokenSource
}

// New constructs a [Client]. No request is made until the first call.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.AuthURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		username: cfg.Username,
		password: cfg.Password,
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RPS), 1),
	}
}

// # Session protocol

// OpenSession returns the id of a session left open by an earlier run. ok is false when there is none.
func (c *Client) OpenSession(ctx context.Context) (id string, ok bool, err error) {
	var session struct {
		ID string `json:"id"`
	}
	err = c.call(ctx, http.MethodGet, "/upload", nil, &session)
	var status *StatusError
	if errors.As(err, &status) && status.Status == http.StatusNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return session.ID, session.ID != "", nil
}

// AbandonSession discards a session and its uploaded pages.
func (c *Client) AbandonSession(ctx context.Context, sessionID string) error {
	return c.call(ctx, http.MethodDelete, "/upload/"+sessionID, nil, nil)
}

// BeginSession opens an upload session for a manga credited to groups.
func (c *Client) BeginSession(ctx context.Context, mangaID string, groupIDs []string) (string, error) {
	payload := map[string]any{"manga": mangaID, "groups": groupIDs}

	var session struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/upload/begin", jsonBody(payload), &session); err != nil {
		return "", err
	}
	return session.ID, nil
}

/*
UploadBatch posts files to the session in one multipart request.

Returns:
  - []UploadedFile: the pages the session accepted, in reply order
*/
func (c *Client) UploadBatch(ctx context.Context, sessionID string, files []File) ([]UploadedFile, error) {
	var buffer bytes.Buffer
	form := multipart.NewWriter(&buffer)
	for i, file := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file%d"; filename="%s"`, i+1, file.Name))
		header.Set("Content-Type", file.ContentType)

		part, err := form.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("mangadex: multipart: %w", err)
		}
		if _, err := io.Copy(part, file.Body); err != nil {
			return nil, fmt.Errorf("mangadex: read %s: %w", file.Name, err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("mangadex: multipart: %w", err)
	}

	payload := buffer.Bytes()
	body := func() (io.Reader, string) { return bytes.NewReader(payload), form.FormDataContentType() }

	var accepted []struct {
		ID         string `json:"id"`
		Attributes struct {
			OriginalFileName string `json:"originalFileName"`
		} `json:"attributes"`
	}
	if err := c.call(ctx, http.MethodPost, "/upload/"+sessionID, body, &accepted); err != nil {
		return nil, err
	}

	uploaded := make([]UploadedFile, 0, len(accepted))
	for _, file := range accepted {
		uploaded = append(uploaded, UploadedFile{ID: file.ID, Filename: file.Attributes.OriginalFileName})
	}
	return uploaded, nil
}

// Commit closes the session into a chapter and returns the chapter id.
func (c *Client) Commit(ctx context.Context, sessionID string, draft ChapterDraft, pageOrder []string) (string, error) {
	payload := map[string]any{"chapterDraft": draft, "pageOrder": pageOrder}

	var chapter struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/upload/"+sessionID+"/commit", jsonBody(payload), &chapter); err != nil {
		return "", err
	}
	return chapter.ID, nil
}

// # Transport

// bodyFunc rebuilds a request body; it runs again for the retry after a refresh.
type bodyFunc func() (io.Reader, string)

func jsonBody(payload any) bodyFunc {
	encoded, err := json.Marshal(payload)
	return func() (io.Reader, string) {
		if err != nil {
			return errReader{err}, "application/json"
		}
		return bytes.NewReader(encoded), "application/json"
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

// call performs one API call and decodes the "data" member of the reply into out.
func (c *Client) call(ctx context.Context, method, path string, body bodyFunc, out any) error {
	response, err := c.do(ctx, method, path, body, false)
	if err != nil {
		return err
	}
	if response.StatusCode == http.StatusUnauthorized {
		_ = response.Body.Close()
		response, err = c.do(ctx, method, path, body, true)
		if err != nil {
			return err
		}
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 2048))
		return &StatusError{Method: method, Path: path, Status: response.StatusCode, Body: string(detail)}
	}
	if out == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("mangadex: decode %s %s: %w", method, path, err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("mangadex: decode %s %s data: %w", method, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body bodyFunc, refresh bool) (*http.Response, error) {
	token, err := c.token(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	contentType := ""
	if body != nil {
		reader, contentType = body()
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("mangadex: build request: %w", err)
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	token.SetAuthHeader(request)

	response, err := c.http.Do(request)
	if err != nil {
		return nil, fmt.Errorf("mangadex: %s %s: %w", method, path, err)
	}
	return response, nil
}

/*
token returns a bearer token, logging in on first use.

With refresh set, the current token is treated as expired so the token
source exchanges its refresh token before the retry.
*/
func (c *Client) token(ctx context.Context, refresh bool) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source == nil {
		initial, err := c.oauth.PasswordCredentialsToken(ctx, c.username, c.password)
		if err != nil {
			return nil, fmt.Errorf("mangadex: login: %w", err)
		}
		c.source = c.oauth.TokenSource(context.WithoutCancel(ctx), initial)
	}

	token, err := c.source.Token()
	if err != nil {
		return nil, fmt.Errorf("mangadex: token: %w", err)
	}
	if !refresh {
		return token, nil
	}

	expired := *token
	expired.Expiry = time.Now().Add(-time.Minute)
	c.source = c.oauth.TokenSource(context.WithoutCancel(ctx), &expired)

	token, err = c.source.Token()
	if err != nil {
		return nil, fmt.Errorf("mangadex: refresh: %w", err)
	}
	return token, nil
}
