// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package remote is an image backend that delegates presence and URL
// queries to an HTTP image service.
//
// The service exposes two JSON endpoints:
//
//	POST /v1/images/presence          {"user", "md5", "size", "type", "width", "height", "channel"}
//	                                  -> {"uploaded": bool}
//	GET  /v1/images/url?id=...&user=... -> {"url": "..."}
//
// Requests carry the configured bearer token. Non-2xx responses with a
// JSON body of the form {"errcode": "...", "error": "..."} surface as
// *ServiceError.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/bureau-foundation/chatimage/lib/image"
	"github.com/bureau-foundation/chatimage/lib/imagebackend"
	"github.com/bureau-foundation/chatimage/lib/imagebackend/offline"
	"github.com/bureau-foundation/chatimage/lib/imageid"
	"github.com/bureau-foundation/chatimage/lib/netutil"
)

const (
	presencePath = "/v1/images/presence"
	urlPath      = "/v1/images/url"
)

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the image service root, e.g. "https://images.example".
	BaseURL string
	// Token is sent as a bearer token. Empty sends no Authorization
	// header.
	Token string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is
	// used.
	Logger *slog.Logger
}

// Client implements imagebackend.Protocol and imagebackend.URLResolver
// against the image service. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("remote: BaseURL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("remote: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("remote: BaseURL %q must be http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Install registers the client as the registry's Protocol and
// URLResolver, and the offline factory as its Factory.
func (c *Client) Install(registry *imagebackend.Registry) error {
	if err := offline.Install(registry); err != nil {
		return err
	}
	if err := registry.Provide(imagebackend.ProtocolService, imagebackend.Value(c)); err != nil {
		return err
	}
	return registry.Provide(imagebackend.URLService, imagebackend.Value(c))
}

// CloseIdleConnections closes idle connections in the HTTP transport.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

type presenceRequest struct {
	User    string                `json:"user"`
	MD5     imageid.Digest        `json:"md5"`
	Size    int64                 `json:"size"`
	Type    image.Type            `json:"type"`
	Width   int                   `json:"width,omitempty"`
	Height  int                   `json:"height,omitempty"`
	Channel *imagebackend.Channel `json:"channel,omitempty"`
}

type presenceResponse struct {
	Uploaded bool `json:"uploaded"`
}

type urlResponse struct {
	URL string `json:"url"`
}

// IsUploaded implements imagebackend.Protocol. Unknown sizes are
// answered false locally.
func (c *Client) IsUploaded(ctx context.Context, session imagebackend.Session, query imagebackend.UploadQuery) (bool, error) {
	if query.Size <= 0 {
		return false, nil
	}
	request := presenceRequest{
		User:   session.UserID(),
		MD5:    query.MD5,
		Size:   query.Size,
		Type:   query.Type,
		Width:  query.Width,
		Height: query.Height,
	}
	if !query.Channel.IsZero() {
		channel := query.Channel
		request.Channel = &channel
	}

	body, err := c.doRequest(ctx, http.MethodPost, presencePath, request, nil)
	if err != nil {
		return false, err
	}
	var response presenceResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return false, fmt.Errorf("remote: decoding presence response: %w", err)
	}
	return response.Uploaded, nil
}

// QueryURL implements imagebackend.URLResolver.
func (c *Client) QueryURL(ctx context.Context, session imagebackend.Session, img image.Image) (string, error) {
	query := url.Values{}
	query.Set("id", img.ID().String())
	query.Set("user", session.UserID())

	body, err := c.doRequest(ctx, http.MethodGet, urlPath, nil, query)
	if err != nil {
		return "", err
	}
	var response urlResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("remote: decoding URL response: %w", err)
	}
	if response.URL == "" {
		return "", fmt.Errorf("remote: service returned no URL for %s", img.ID())
	}
	return response.URL, nil
}

// doRequest performs a JSON request and returns the response body.
// Non-2xx responses become *ServiceError when the body has the
// service's error shape.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any, query url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("remote: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("remote: creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		responseBody, err := netutil.ReadResponse(response.Body)
		if err != nil {
			return nil, fmt.Errorf("remote: reading %s %s response: %w", method, path, err)
		}
		return responseBody, nil
	}

	errorBody := netutil.ErrorBody(response.Body)
	var serviceErr ServiceError
	if jsonErr := json.Unmarshal([]byte(errorBody), &serviceErr); jsonErr != nil || serviceErr.Code == "" {
		return nil, fmt.Errorf("remote: unexpected %d response from %s %s: %s",
			response.StatusCode, method, path, errorBody)
	}
	serviceErr.StatusCode = response.StatusCode
	c.logger.Debug("image service error",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"errcode", serviceErr.Code,
	)
	return nil, &serviceErr
}
