// Package client talks to a budgetsim server over HTTP.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/budgetsim/internal/model"
	"github.com/theirongolddev/budgetsim/internal/wire"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrNotFound indicates the simulation or resource does not exist.
	ErrNotFound = errors.New("client: not found")
	// ErrBadRequest indicates the server rejected the request.
	ErrBadRequest = errors.New("client: bad request")
)

// Client fetches simulations from and submits budgets to a budgetsim server.
type Client struct {
	baseURL  string
	playerID string
	timeout  time.Duration
	http     *http.Client
}

// New creates a client for the server at baseURL.
// Returns nil if baseURL is empty or unparseable.
func New(baseURL, playerID string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  baseURL,
		playerID: playerID,
		timeout:  timeout,
		http:     &http.Client{},
	}
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// ResultURL returns the address of the server-rendered result page.
func (c *Client) ResultURL(q wire.ResultQuery) string {
	return q.URL(c.baseURL + "/result")
}

// FetchSimulation loads one simulation by id.
func (c *Client) FetchSimulation(ctx context.Context, id int) (*model.Simulation, error) {
	body, err := c.get(ctx, "/v1/simulations/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	var page wire.SimulationPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("client: parsing simulation: %w", err)
	}
	return wire.ToSimulation(page), nil
}

// NextSimulation asks the server for a simulation the player has not
// completed yet. Empty filters are left to the server's defaults.
func (c *Client) NextSimulation(ctx context.Context, category, difficulty string) (*model.Simulation, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if difficulty != "" {
		q.Set("difficulty", difficulty)
	}
	body, err := c.get(ctx, "/v1/simulations/next", q)
	if err != nil {
		return nil, err
	}
	var page wire.SimulationPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("client: parsing simulation: %w", err)
	}
	return wire.ToSimulation(page), nil
}

// ListSimulations returns the catalog, optionally filtered.
func (c *Client) ListSimulations(ctx context.Context, category, difficulty string) ([]wire.SimulationSummary, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if difficulty != "" {
		q.Set("difficulty", difficulty)
	}
	body, err := c.get(ctx, "/v1/simulations", q)
	if err != nil {
		return nil, err
	}
	var out []wire.SimulationSummary
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("client: parsing simulations: %w", err)
	}
	return out, nil
}

// Submit posts the selection payload (a JSON id array) for grading and
// decodes the tagged result.
func (c *Client) Submit(ctx context.Context, simulationID int, payload string) (model.Result, error) {
	form := url.Values{}
	form.Set("simulation_id", strconv.Itoa(simulationID))
	form.Set("selected_expenses", payload)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/v1/simulations/" + strconv.Itoa(simulationID) + "/submit"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("client: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return wire.DecodeResult(body)
}

// FetchResult loads the result page data for a result URL's parameters.
func (c *Client) FetchResult(ctx context.Context, q wire.ResultQuery) (*wire.ResultPage, error) {
	body, err := c.get(ctx, "/v1/result", q.Values())
	if err != nil {
		return nil, err
	}
	var page wire.ResultPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("client: parsing result: %w", err)
	}
	return &page, nil
}

// FetchProgress loads the aggregated progress of the client's player.
func (c *Client) FetchProgress(ctx context.Context) (*wire.Progress, error) {
	body, err := c.get(ctx, "/v1/players/"+url.PathEscape(c.player())+"/progress", nil)
	if err != nil {
		return nil, err
	}
	var p wire.Progress
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("client: parsing progress: %w", err)
	}
	return &p, nil
}

// FetchStatus loads the server status.
func (c *Client) FetchStatus(ctx context.Context) (*wire.Status, error) {
	body, err := c.get(ctx, "/v1/status", nil)
	if err != nil {
		return nil, err
	}
	var st wire.Status
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, fmt.Errorf("client: parsing status: %w", err)
	}
	return &st, nil
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("client: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", "budgetsim/1.0")
	req.Header.Set("X-Player-ID", c.player())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("client: reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, serverMessage(body))
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, serverMessage(body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("client: unexpected status %d: %s", resp.StatusCode, serverMessage(body))
	}
	return body, nil
}

func (c *Client) player() string {
	if c.playerID == "" {
		return "anonymous"
	}
	return c.playerID
}

// serverMessage extracts the error text from an error body.
func serverMessage(body []byte) string {
	var eb wire.ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
