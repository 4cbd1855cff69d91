package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MediaComem/minesweeper/internal/game"
)

// stubServer serves canned bodies for the three game endpoints and records
// what the client sent.
type stubServer struct {
	create, move, fetch string
	status              int
	lastBody            map[string]any
	lastID              string
	lastRequestID       string
}

func (s *stubServer) router() http.Handler {
	r := chi.NewRouter()
	reply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			s.lastRequestID = r.Header.Get("X-Request-ID")
			s.lastID = chi.URLParam(r, "id")
			s.lastBody = nil
			_ = json.NewDecoder(r.Body).Decode(&s.lastBody)
			w.Header().Set("Content-Type", "application/json")
			if s.status != 0 {
				w.WriteHeader(s.status)
			}
			_, _ = w.Write([]byte(body))
		}
	}
	r.Post("/api/games", func(w http.ResponseWriter, r *http.Request) { reply(s.create)(w, r) })
	r.Post("/api/games/{id}/moves", func(w http.ResponseWriter, r *http.Request) { reply(s.move)(w, r) })
	r.Get("/api/games/{id}", func(w http.ResponseWriter, r *http.Request) { reply(s.fetch)(w, r) })
	return r
}

func newStub(t *testing.T, s *stubServer) *Client {
	t.Helper()
	srv := httptest.NewServer(s.router())
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client())
}

func TestCreateGame(t *testing.T) {
	stub := &stubServer{create: `{"id":"g2","moves":[{"uncovered":[[[1,1],2]]}]}`}
	c := newStub(t, stub)

	got, err := c.CreateGame(context.Background(), CreateGameRequest{
		Params:    game.Params{Width: 9, Height: 9, NumberOfBombs: 10},
		FirstMove: game.Coord{Col: 1, Row: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "g2", got.ID)
	require.Len(t, got.Moves, 1)
	assert.Equal(t, []game.Reveal{{Pos: game.Coord{Col: 1, Row: 1}, Value: 2}}, got.Moves[0].Uncovered)
	assert.Empty(t, got.State)

	assert.Equal(t, map[string]any{
		"width":           float64(9),
		"height":          float64(9),
		"number_of_bombs": float64(10),
		"first_move":      []any{float64(1), float64(1)},
	}, stub.lastBody)
	assert.NotEmpty(t, stub.lastRequestID)
}

func TestSubmitMoveLoss(t *testing.T) {
	stub := &stubServer{move: `{"uncovered":null,"game":{"bombs":[[4,4]],"state":"lost"}}`}
	c := newStub(t, stub)

	got, err := c.SubmitMove(context.Background(), "g1", game.Coord{Col: 4, Row: 4})
	require.NoError(t, err)
	assert.Nil(t, got.Uncovered)
	require.NotNil(t, got.Game)
	assert.Equal(t, game.StateLost, got.Game.State)
	assert.Equal(t, []game.Coord{{Col: 4, Row: 4}}, got.Game.Bombs)

	assert.Equal(t, "g1", stub.lastID)
	assert.Equal(t, map[string]any{"position": []any{float64(4), float64(4)}}, stub.lastBody)
}

func TestFetchGame(t *testing.T) {
	stub := &stubServer{fetch: `{
		"state":"ongoing","width":5,"height":5,"number_of_bombs":3,
		"created_at":"2024-03-01T10:00:00.000Z",
		"moves":[{"uncovered":[[[1,1],0],[[2,1],1]]},{"uncovered":[[[5,5],2]]}]
	}`}
	c := newStub(t, stub)

	got, err := c.FetchGame(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", got.ID)
	assert.Equal(t, game.StateOngoing, got.State)
	assert.Equal(t, game.Params{Width: 5, Height: 5, NumberOfBombs: 3}, got.Params)
	assert.True(t, got.CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.Len(t, got.Reveals(), 3)
}

func TestFetchGameCreatedAtLayouts(t *testing.T) {
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name, createdAt string
	}{
		{"utc", "2024-03-01T10:00:00Z"},
		{"offset", "2024-03-01T12:00:00+02:00"},
		{"no offset", "2024-03-01T10:00:00"},
		{"no offset fractional", "2024-03-01T10:00:00.000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubServer{fetch: `{"state":"ongoing","width":2,"height":2,"number_of_bombs":1,` +
				`"created_at":"` + tc.createdAt + `","moves":[]}`}
			got, err := newStub(t, stub).FetchGame(context.Background(), "g1")
			require.NoError(t, err)
			assert.True(t, got.CreatedAt.Equal(want), "got %v", got.CreatedAt)
			assert.Equal(t, game.Params{Width: 2, Height: 2, NumberOfBombs: 1}, got.Params)
		})
	}
}

func TestMalformedResponses(t *testing.T) {
	cases := []struct {
		name string
		stub stubServer
		call func(c *Client) error
	}{
		{"create without id", stubServer{create: `{"moves":[{"uncovered":[]}]}`}, createCall},
		{"create without moves", stubServer{create: `{"id":"g","moves":[]}`}, createCall},
		{"create bad reveal", stubServer{create: `{"id":"g","moves":[{"uncovered":[[1,1]]}]}`}, createCall},
		{"create not json", stubServer{create: `<html>`}, createCall},
		{"move without game", stubServer{move: `{"uncovered":[]}`}, moveCall},
		{"move unknown state", stubServer{move: `{"game":{"state":"paused"}}`}, moveCall},
		{"move bad bomb", stubServer{move: `{"game":{"bombs":[[0,1]],"state":"lost"}}`}, moveCall},
		{"fetch no dimensions", stubServer{fetch: `{"state":"ongoing","created_at":"2024-01-01T00:00:00Z"}`}, fetchCall},
		{"fetch no created_at", stubServer{fetch: `{"state":"ongoing","width":2,"height":2}`}, fetchCall},
		{"fetch bad created_at", stubServer{fetch: `{"state":"ongoing","width":2,"height":2,"created_at":"yesterday"}`}, fetchCall},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := tc.stub
			err := tc.call(newStub(t, &stub))
			var me *MalformedResponseError
			require.True(t, errors.As(err, &me), "got %v", err)
			assert.False(t, IsNetworkFailure(err))
		})
	}
}

func TestStatusError(t *testing.T) {
	stub := &stubServer{fetch: `{"message":"not found"}`, status: http.StatusNotFound}
	c := newStub(t, stub)

	_, err := c.FetchGame(context.Background(), "missing")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.NotFound())
	assert.Contains(t, se.Error(), "not found")
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).FetchGame(context.Background(), "g1")
	require.Error(t, err)
	assert.True(t, IsNetworkFailure(err))
}

func TestTimeoutIsNetworkFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New(srv.URL, srv.Client()).SubmitMove(ctx, "g1", game.Coord{Col: 1, Row: 1})

	var ne *NetworkError
	require.True(t, errors.As(err, &ne), "got %v", err)
	assert.True(t, ne.Timeout())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func createCall(c *Client) error {
	_, err := c.CreateGame(context.Background(), CreateGameRequest{
		Params:    game.Params{Width: 2, Height: 2, NumberOfBombs: 1},
		FirstMove: game.Coord{Col: 1, Row: 1},
	})
	return err
}

func moveCall(c *Client) error {
	_, err := c.SubmitMove(context.Background(), "g", game.Coord{Col: 1, Row: 1})
	return err
}

func fetchCall(c *Client) error {
	_, err := c.FetchGame(context.Background(), "g")
	return err
}
