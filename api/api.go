// Package api is the client for the ISP backend's router endpoints.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/weperezh01/router-telemetry/cache"
	"github.com/weperezh01/router-telemetry/config"
	"github.com/weperezh01/router-telemetry/model"
)

const tokenKey = "token"

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Code)
}

var ErrNoToken = errors.New("no token after login")

type Client struct {
	backend    config.Backend
	baseURL    string
	httpClient *http.Client
	auth       *cache.Cache
	log        zerolog.Logger
}

// New creates a client. A static token from the config is seeded into the auth
// cache; otherwise any token cached for a previous config is dropped and the
// client logs in with the configured credentials on demand.
func New(backend config.Backend, auth *cache.Cache, log zerolog.Logger) *Client {
	if auth == nil {
		auth = cache.New()
	}
	if backend.Token != "" {
		auth.Set(tokenKey, backend.Token)
	} else {
		auth.Remove(tokenKey)
	}
	return &Client{
		backend: backend,
		baseURL: strings.TrimRight(backend.URL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 5,
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: backend.InsecureSkipVerify},
			},
			Timeout: backend.RequestTimeout(),
		},
		auth: auth,
		log:  log.With().Str("component", "api").Logger(),
	}
}

func (c *Client) canLogin() bool {
	return c.backend.Username != ""
}

func (c *Client) send(ctx context.Context, token string, method string, path string, data interface{}) (*http.Response, error) {
	var buf io.Reader
	if data != nil {
		body, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("error encoding request: %w", err)
		}
		buf = bytes.NewReader(body)
	}

	u := c.baseURL + path
	c.log.Debug().Str("method", method).Str("url", u).Msg("send request")

	req, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		c.log.Error().Int("status", res.StatusCode).Str("response", string(body)).Msg("error from API")
		return nil, &StatusError{Method: method, URL: u, Code: res.StatusCode, Body: string(body)}
	}

	return res, nil
}

// request performs an authenticated call and decodes the JSON response into out.
// A 401 clears the cached token and, when credentials are configured, the call
// is repeated once after logging in again.
func (c *Client) request(ctx context.Context, method string, path string, data interface{}, out interface{}) error {
	err := c.authenticatedRequest(ctx, method, path, data, out)

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized && c.canLogin() {
		c.log.Debug().Msg("token rejected, logging in again")
		c.auth.Remove(tokenKey)
		err = c.authenticatedRequest(ctx, method, path, data, out)
		if err != nil {
			return fmt.Errorf("error after retry: %w", err)
		}
	}
	return err
}

func (c *Client) authenticatedRequest(ctx context.Context, method string, path string, data interface{}, out interface{}) error {
	token := c.auth.Get(tokenKey)
	if token == "" && c.canLogin() {
		var err error
		token, err = c.Login(ctx)
		if err != nil {
			return err
		}
	}

	res, err := c.send(ctx, token, method, path, data)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	return decode(res.Body, out)
}

// decode accepts both a bare JSON document and one wrapped as {"data": ...}.
func decode(r io.Reader, out interface{}) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err == nil {
			if inner, ok := envelope["data"]; ok {
				trimmed = inner
			}
		}
	}

	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

// Login exchanges the configured credentials for a token and caches it.
func (c *Client) Login(ctx context.Context) (string, error) {
	login := &model.LoginRequest{
		Username: c.backend.Username,
		Password: c.backend.Password,
	}

	res, err := c.send(ctx, "", http.MethodPost, c.backend.LoginPath, login)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	defer res.Body.Close()

	var data model.LoginResponse
	if err := decode(res.Body, &data); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	if data.Token == "" {
		return "", ErrNoToken
	}

	c.auth.SetWithTTL(tokenKey, data.Token, time.Duration(data.ExpiresIn)*time.Second)
	c.log.Debug().Int64("expires_in", data.ExpiresIn).Msg("logged in")
	return data.Token, nil
}

func (c *Client) GetRouter(ctx context.Context, id model.ID) (model.RouterIdentity, error) {
	var data model.RouterIdentity
	err := c.request(ctx, http.MethodGet, "/routers/"+url.PathEscape(string(id)), nil, &data)
	if err != nil {
		return model.RouterIdentity{}, err
	}
	if data.ID == "" {
		data.ID = id
	}
	return data, nil
}

func (c *Client) GetSystemResources(ctx context.Context, id model.ID) (model.SystemResources, error) {
	var data model.SystemResources
	err := c.request(ctx, http.MethodPost, "/routers/system-resources", model.RouterRequest{RouterID: id}, &data)
	if err != nil {
		return model.SystemResources{}, err
	}
	return data, nil
}

func (c *Client) GetInterfaces(ctx context.Context, id model.ID) (model.InterfaceList, error) {
	var data model.InterfaceList
	err := c.request(ctx, http.MethodPost, "/routers/interfaces", model.RouterRequest{RouterID: id}, &data)
	if err != nil {
		return model.InterfaceList{}, err
	}
	return data, nil
}

func (c *Client) GetTraffic(ctx context.Context, id model.ID) ([]model.TrafficSample, error) {
	var data []model.TrafficSample
	err := c.request(ctx, http.MethodGet, "/router/"+url.PathEscape(string(id))+"/interfaces/traffic", nil, &data)
	if err != nil {
		return nil, err
	}
	return data, nil
}
