// Package rest provides the authenticated request pipeline for the TanX
// API: JWT authorization, error typing, and token refresh with a single
// retry when a request is rejected with 401.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/banky/go-tanx/constants"
	"github.com/banky/go-tanx/types"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Tokens is the session issued by login. Both values are replaced
// together on refresh.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Response is the envelope every TanX endpoint wraps its payload in
type Response[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Payload T      `json:"payload"`
}

type Client struct {
	baseUrl             string
	timeout             mo.Option[uint]
	refreshPath         string
	refreshBeforeExpiry mo.Option[time.Duration]
	logger              logrus.FieldLogger
	http                *resty.Client

	mu      sync.RWMutex
	tokens  mo.Option[Tokens]
	refresh singleflight.Group
}

// ClientInterface defines the contract for REST API calls
type ClientInterface interface {
	Get(ctx context.Context, path string, query map[string]string, result any) error
	Post(ctx context.Context, path string, body any, result any) error

	// RequireAuth fails with an AuthenticationError when no session exists
	RequireAuth() error
	SetTokens(tokens Tokens)
	Tokens() mo.Option[Tokens]
	ClearTokens()
	IsAuthenticated() bool
	Refresh(ctx context.Context) error
}

var _ ClientInterface = (*Client)(nil)

type Config struct {
	// BaseUrl is the base URL for the TanX API
	// If none is provided, the mainnet url will be used
	BaseUrl string
	// Timeout is the timeout for network requests in seconds
	// If none is provided, no timeout will be enforced
	Timeout uint
	// Logger receives request and session lifecycle entries
	// If none is provided, the logrus standard logger is used
	Logger logrus.FieldLogger
	// RefreshPath overrides the token refresh endpoint
	RefreshPath string
	// RefreshBeforeExpiry refreshes the session ahead of a request when
	// the access token expires within this window. Zero disables it and
	// refresh only happens after a 401.
	RefreshBeforeExpiry time.Duration
}

// New creates a new client instance with the
// provided configuration.
func New(c Config) *Client {
	baseUrl := c.BaseUrl
	var timeout mo.Option[uint]
	var refreshBeforeExpiry mo.Option[time.Duration]

	if baseUrl == "" {
		baseUrl = constants.MAINNET_API_URL
	}
	if c.Timeout != 0 {
		timeout = mo.Some(c.Timeout)
	}
	if c.RefreshBeforeExpiry > 0 {
		refreshBeforeExpiry = mo.Some(c.RefreshBeforeExpiry)
	}

	refreshPath := c.RefreshPath
	if refreshPath == "" {
		refreshPath = constants.PathTokenRefresh
	}

	logger := c.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		baseUrl:             baseUrl,
		timeout:             timeout,
		refreshPath:         refreshPath,
		refreshBeforeExpiry: refreshBeforeExpiry,
		logger:              logger,
		http: resty.
			New().
			SetJSONMarshaler(json.Marshal).
			SetJSONUnmarshaler(json.Unmarshal),
	}
}

// Get sends a GET request to the specified path with the provided query
// parameters.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query map[string]string,
	result any,
) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

// Post sends a POST request to the specified path with the provided body.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body any,
	result any,
) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

func (c *Client) RequireAuth() error {
	if !c.IsAuthenticated() {
		return &types.AuthenticationError{Msg: "user is not authenticated, please login first"}
	}
	return nil
}

func (c *Client) SetTokens(tokens Tokens) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = mo.Some(tokens)
}

func (c *Client) Tokens() mo.Option[Tokens] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// ClearTokens drops the session locally. The server is not notified.
func (c *Client) ClearTokens() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = mo.None[Tokens]()
}

func (c *Client) IsAuthenticated() bool {
	return c.Tokens().IsPresent()
}

// Refresh exchanges the refresh token for a new session. Concurrent
// callers share one refresh request.
func (c *Client) Refresh(ctx context.Context) error {
	tokens, ok := c.Tokens().Get()
	if !ok {
		return &types.AuthenticationError{Msg: "no session to refresh"}
	}
	return c.refreshAfter(ctx, tokens.Access)
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query map[string]string,
	body any,
	result any,
) error {
	if err := c.refreshIfExpiring(ctx); err != nil {
		return err
	}

	used := c.accessToken()
	resp, err := c.send(ctx, method, path, query, body, used)
	if err != nil {
		return err
	}

	// Resubmitted at most once. A second 401 is returned to the caller.
	if resp.StatusCode() == http.StatusUnauthorized && used != "" {
		c.logger.WithField("path", path).Debug("access token rejected, refreshing session")

		if err := c.refreshAfter(ctx, used); err != nil {
			return err
		}

		resp, err = c.send(ctx, method, path, query, body, c.accessToken())
		if err != nil {
			return err
		}
	}

	if err := handleException(resp); err != nil {
		return err
	}

	return decode(resp, result)
}

func (c *Client) send(
	ctx context.Context,
	method string,
	path string,
	query map[string]string,
	body any,
	accessToken string,
) (*resty.Response, error) {
	// Apply timeout to context if specified
	if timeout, ok := c.timeout.Get(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")

	if accessToken != "" {
		req.SetHeader("Authorization", "JWT "+accessToken)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, c.baseUrl+path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	return resp, nil
}

func (c *Client) accessToken() string {
	if tokens, ok := c.Tokens().Get(); ok {
		return tokens.Access
	}
	return ""
}

// refreshAfter refreshes the session unless the access token that was
// rejected has already been replaced. Requests that failed with the same
// token share a single refresh.
func (c *Client) refreshAfter(ctx context.Context, used string) error {
	tokens, ok := c.Tokens().Get()
	if !ok {
		return &types.AuthenticationError{Msg: "session expired"}
	}
	if tokens.Access != used {
		return nil
	}

	// The refresh outlives any single caller's cancellation since its
	// result is shared.
	ctx = context.WithoutCancel(ctx)

	_, err, _ := c.refresh.Do(used, func() (any, error) {
		return nil, c.doRefresh(ctx, used)
	})

	return err
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (c *Client) doRefresh(ctx context.Context, used string) error {
	tokens, ok := c.Tokens().Get()
	if !ok {
		return &types.AuthenticationError{Msg: "session expired"}
	}
	if tokens.Access != used {
		return nil
	}

	fail := func(err error) error {
		c.swapTokens(tokens, mo.None[Tokens]())
		c.logger.WithError(err).Warn("session refresh failed, session cleared")
		return &types.AuthenticationError{Msg: "failed to refresh session", Err: err}
	}

	resp, err := c.send(ctx, http.MethodPost, c.refreshPath, nil, refreshRequest{Refresh: tokens.Refresh}, "")
	if err != nil {
		return fail(err)
	}
	if err := handleException(resp); err != nil {
		return fail(err)
	}

	var result Response[Tokens]
	if err := decode(resp, &result); err != nil {
		return fail(err)
	}
	if result.Payload.Access == "" {
		return fail(fmt.Errorf("refresh response carried no access token"))
	}

	next := result.Payload
	if next.Refresh == "" {
		next.Refresh = tokens.Refresh
	}

	if !c.swapTokens(tokens, mo.Some(next)) {
		c.logger.Info("session changed during refresh, refreshed tokens discarded")
		return &types.AuthenticationError{Msg: "session ended during refresh"}
	}
	c.logger.Info("session refreshed")

	return nil
}

// swapTokens installs next only while the session still holds prev, so a
// refresh finishing after a logout or a new login leaves that state alone.
func (c *Client) swapTokens(prev Tokens, next mo.Option[Tokens]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.tokens.Get()
	if !ok || current != prev {
		return false
	}
	c.tokens = next
	return true
}

func (c *Client) refreshIfExpiring(ctx context.Context) error {
	window, ok := c.refreshBeforeExpiry.Get()
	if !ok {
		return nil
	}

	access := c.accessToken()
	if access == "" {
		return nil
	}

	expiresAt, ok := tokenExpiry(access).Get()
	if !ok || time.Until(expiresAt) > window {
		return nil
	}

	return c.refreshAfter(ctx, access)
}

// tokenExpiry reads the exp claim without verifying the signature. The
// client never holds the server key; this only schedules refreshes.
func tokenExpiry(access string) mo.Option[time.Time] {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return mo.None[time.Time]()
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return mo.None[time.Time]()
	}

	return mo.Some(exp.Time)
}

// PostPayload posts body and returns the payload of the response envelope
func PostPayload[T any](ctx context.Context, c ClientInterface, path string, body any) (T, error) {
	var resp Response[T]
	if err := c.Post(ctx, path, body, &resp); err != nil {
		var zero T
		return zero, err
	}
	return resp.Payload, nil
}

// GetPayload fetches path and returns the payload of the response envelope
func GetPayload[T any](ctx context.Context, c ClientInterface, path string, query map[string]string) (T, error) {
	var resp Response[T]
	if err := c.Get(ctx, path, query, &resp); err != nil {
		var zero T
		return zero, err
	}
	return resp.Payload, nil
}
