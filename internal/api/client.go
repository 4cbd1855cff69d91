// internal/api/client.go
//
// HTTP client for the game API (the server holding the bombs).
// Responsibilities:
//   - Create a game with its first move, submit moves, fetch a game for resume.
//   - Tag every request with an X-Request-ID and log it.
//   - Turn every failure into one of three typed errors:
//       *NetworkError            no answer (transport, timeout, cancellation)
//       *StatusError             non-2xx answer
//       *MalformedResponseError  answer of the wrong shape
//
// The client never interprets the game; it only moves payloads across the wire.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MediaComem/minesweeper/internal/game"
)

const (
	maxBody     = 1 << 20 // largest accepted response body
	maxErrorLen = 200     // bytes of an error body kept in StatusError
)

// Client talks to the game API rooted at a base URL.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for baseURL. A nil hc gets a client with a 15s timeout.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: hc}
}

// CreateGame creates a game and plays its first move.
func (c *Client) CreateGame(ctx context.Context, req CreateGameRequest) (*CreatedGame, error) {
	var out CreatedGame
	if err := c.do(ctx, http.MethodPost, "/api/games", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitMove uncovers pos in game id.
func (c *Client) SubmitMove(ctx context.Context, id string, pos game.Coord) (*MoveResult, error) {
	var out MoveResult
	path := "/api/games/" + url.PathEscape(id) + "/moves"
	if err := c.do(ctx, http.MethodPost, path, moveRequest{Position: pos}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchGame returns the full record of game id, including its move history.
func (c *Client) FetchGame(ctx context.Context, id string) (*GameRecord, error) {
	var out GameRecord
	if err := c.do(ctx, http.MethodGet, "/api/games/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = id
	}
	return &out, nil
}

// do sends one request and decodes a validated response into out.
func (c *Client) do(ctx context.Context, method, path string, body any, out interface{ validate() error }) error {
	endpoint := method + " " + path

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("requestId", reqID).Str("endpoint", endpoint).Msg("game api unreachable")
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return &NetworkError{Endpoint: endpoint, Err: err}
	}
	log.Debug().
		Str("requestId", reqID).
		Str("endpoint", endpoint).
		Int("status", res.StatusCode).
		Dur("took", time.Since(start)).
		Msg("game api")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := strings.TrimSpace(string(raw))
		if len(msg) > maxErrorLen {
			msg = msg[:maxErrorLen]
		}
		return &StatusError{Endpoint: endpoint, Code: res.StatusCode, Body: msg}
	}
	return decodeValid(endpoint, raw, out)
}
