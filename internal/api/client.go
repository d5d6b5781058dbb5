// Package api is the JSON/HTTP client of the Musical Bingo server.
// Client implements store.Backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smileynet/bingo/internal/bingo"
)

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 8 << 20

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the server root (e.g., "https://bingo.example.com").
	BaseURL string
	// Token is the session token sent as a bearer token. Empty means anonymous.
	Token string
	// HTTPClient is used for all requests. If nil, a client with a 30s
	// timeout is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client talks to one bingo server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: BaseURL %q must be http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
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

// Games returns every game the server lists, current and past.
func (c *Client) Games(ctx context.Context) ([]bingo.Game, error) {
	var payload []gameJSON
	if err := c.getJSON(ctx, "/api/games", &payload); err != nil {
		return nil, fmt.Errorf("api: list games: %w", err)
	}
	games := make([]bingo.Game, len(payload))
	for i, g := range payload {
		games[i] = g.toGame()
	}
	return games, nil
}

// GameDetail returns one game including its track list.
func (c *Client) GameDetail(ctx context.Context, game int64) (bingo.Game, error) {
	var payload gameJSON
	if err := c.getJSON(ctx, gamePath(game), &payload); err != nil {
		return bingo.Game{}, fmt.Errorf("api: game %d: %w", game, err)
	}
	g := payload.toGame()
	if g.Tracks == nil {
		g.Tracks = []bingo.Track{}
	}
	return g, nil
}

// Tickets returns the ticket list of a game in server order.
func (c *Client) Tickets(ctx context.Context, game int64) ([]bingo.Ticket, error) {
	var payload []ticketJSON
	if err := c.getJSON(ctx, gamePath(game)+"/tickets", &payload); err != nil {
		return nil, fmt.Errorf("api: tickets of game %d: %w", game, err)
	}
	tickets := make([]bingo.Ticket, len(payload))
	for i, t := range payload {
		tickets[i] = t.toTicket(game)
	}
	return tickets, nil
}

// TicketStatus returns the ownership snapshot of a game's tickets.
func (c *Client) TicketStatus(ctx context.Context, game int64) (bingo.StatusSnapshot, error) {
	var payload statusJSON
	if err := c.getJSON(ctx, gamePath(game)+"/tickets/status", &payload); err != nil {
		return nil, fmt.Errorf("api: ticket status of game %d: %w", game, err)
	}
	snapshot := make(bingo.StatusSnapshot, len(payload.Claimed))
	for key, user := range payload.Claimed {
		pk, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("api: ticket status of game %d: bad ticket key %q", game, key)
		}
		snapshot[pk] = ownerOf(user)
	}
	return snapshot, nil
}

// TicketDetail returns the grid and checked cells of a ticket.
func (c *Client) TicketDetail(ctx context.Context, game, ticket int64) (bingo.TicketDetail, error) {
	var payload ticketDetailJSON
	if err := c.getJSON(ctx, ticketPath(game, ticket), &payload); err != nil {
		return bingo.TicketDetail{}, fmt.Errorf("api: ticket %d: %w", ticket, err)
	}
	tracks := payload.Tracks
	if tracks == nil {
		tracks = []bingo.Track{}
	}
	return bingo.TicketDetail{Tracks: tracks, Checked: bingo.Checked(payload.Checked)}, nil
}

// Claim asks the server to assign the ticket to the session user.
// A ticket held by someone else fails with an error matching ErrAlreadyClaimed.
func (c *Client) Claim(ctx context.Context, game, ticket int64) error {
	_, err := c.doRequest(ctx, http.MethodPost, ticketPath(game, ticket)+"/claim", nil)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.StatusCode == http.StatusNotAcceptable || statusErr.StatusCode == http.StatusConflict) {
			statusErr.conflict = true
		}
		return fmt.Errorf("api: claim ticket %d: %w", ticket, err)
	}
	return nil
}

// Release gives the ticket back.
func (c *Client) Release(ctx context.Context, game, ticket int64) error {
	if _, err := c.doRequest(ctx, http.MethodPost, ticketPath(game, ticket)+"/release", nil); err != nil {
		return fmt.Errorf("api: release ticket %d: %w", ticket, err)
	}
	return nil
}

// SetChecked stores the checked cells of a ticket.
func (c *Client) SetChecked(ctx context.Context, game, ticket int64, checked bingo.Checked) error {
	body := checkedJSON{Checked: uint32(checked)}
	if _, err := c.doRequest(ctx, http.MethodPost, ticketPath(game, ticket)+"/checked", body); err != nil {
		return fmt.Errorf("api: set checked cells of ticket %d: %w", ticket, err)
	}
	return nil
}

func gamePath(game int64) string {
	return "/api/games/" + strconv.FormatInt(game, 10)
}

func ticketPath(game, ticket int64) string {
	return gamePath(game) + "/tickets/" + strconv.FormatInt(ticket, 10)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}
	return nil
}

// doRequest performs one request and returns the response body of a 2xx
// response. Failures without a response wrap ErrTransport; other status
// codes return a *StatusError.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	request.Header.Set("Accept", "application/json")
	request.Header.Set("X-Request-ID", requestID)
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %w", ErrTransport, method, path, err)
	}
	c.logger.Debug("request complete",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	statusErr := &StatusError{StatusCode: response.StatusCode, RequestID: requestID}
	var payload errorJSON
	if jsonErr := json.Unmarshal(responseBody, &payload); jsonErr == nil && payload.Error != "" {
		statusErr.Message = payload.Error
	} else {
		statusErr.Message = strings.TrimSpace(string(responseBody))
	}
	return nil, statusErr
}
