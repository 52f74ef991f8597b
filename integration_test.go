package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"

	"striker-stats-server/cmd"
	"striker-stats-server/config"
	"striker-stats-server/stats"
	"striker-stats-server/storage"
)

// setupTestServer starts the full server stack against TEST_DATABASE_URL with empty tables.
func setupTestServer(t *testing.T) (*httptest.Server, *storage.Store) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store, err := storage.NewStore(ctx, url)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(store.Close)

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE match_players, matches, players RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	pool.Close()

	cfg := config.Defaults()
	cfg.AuthSecret = "integration-secret"
	cfg.AdminPassword = "letmein"
	srv, err := cmd.NewServer(ctx, cfg, store)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	server := httptest.NewServer(srv.Handler)
	t.Cleanup(server.Close)
	return server, store
}

// connectWS opens the invalidation feed and subscribes to views (all when empty).
func connectWS(t *testing.T, server *httptest.Server, views ...string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if views == nil {
		views = []string{}
	}
	if err := conn.WriteJSON(map[string]any{"type": "subscribe", "views": views}); err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	if msg := readMsg(t, conn); msg["type"] != "subscribed" {
		t.Fatalf("expected subscribed, got %v", msg)
	}
	return conn
}

// readMsg reads a single JSON message from the WebSocket with a timeout.
func readMsg(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to unmarshal: %v\ndata: %s", err, string(data))
	}
	return msg
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func call(t *testing.T, c *http.Client, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func matchJSON(playerID string, arena string) string {
	return fmt.Sprintf(`{"arena":%q,"team1Score":3,"team2Score":2,"participants":[
		{"player":%q,"striker":"Ai.Mi","rank":5,"goals":2,"saves":1},
		{"player":"anonymous","striker":"Kai","isGoalie":true,"rank":6},
		{"player":"anonymous","striker":"Juno","rank":5},
		{"player":"anonymous","striker":"Drek'ar","rank":4},
		{"player":"anonymous","striker":"X","isGoalie":true,"rank":5},
		{"player":"anonymous","striker":"Era","rank":5}]}`, arena, playerID)
}

func TestIntegration_RecordQueryDelete(t *testing.T) {
	server, store := setupTestServer(t)
	ctx := context.Background()
	player, err := store.CreatePlayer(ctx, "Nova")
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}

	feed := connectWS(t, server)
	client := newClient(t)

	// Writes need a session.
	if code := call(t, client, "POST", server.URL+"/api/matches", matchJSON(player.ID, "Ahten City"), nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %d", code)
	}
	if code := call(t, client, "POST", server.URL+"/api/login", `{"password":"letmein"}`, nil); code != http.StatusOK {
		t.Fatalf("login: %d", code)
	}

	var created struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	if code := call(t, client, "POST", server.URL+"/api/matches", matchJSON(player.ID, "Ahten City"), &created); code != http.StatusCreated {
		t.Fatalf("submit: %d", code)
	}

	msg := readMsg(t, feed)
	if msg["type"] != "invalidate" {
		t.Fatalf("expected invalidate, got %v", msg)
	}
	views, _ := msg["views"].([]any)
	if !containsView(views, "player:"+player.ID) {
		t.Errorf("invalidation missing the player view: %v", views)
	}

	var lb stats.StrikerLeaderboard
	if code := call(t, client, "GET", server.URL+"/api/strikers", "", &lb); code != http.StatusOK {
		t.Fatalf("strikers: %d", code)
	}
	if len(lb.Overall) != 6 {
		t.Errorf("expected 6 strikers, got %d", len(lb.Overall))
	}

	var results []stats.SearchResult
	call(t, client, "GET", server.URL+"/api/matches/search?arena=All%20Maps&a=X:goalie&b=Kai", "", &results)
	if len(results) != 1 || !results[0].IsReversed || results[0].Team1Score != 2 {
		t.Errorf("unexpected search results %+v", results)
	}

	var career stats.PlayerCareer
	if code := call(t, client, "GET", server.URL+"/api/players/"+player.ID, "", &career); code != http.StatusOK {
		t.Fatalf("player: %d", code)
	}
	if career.MatchesPlayed != 1 || career.Wins != 1 || career.SetsPlayed != 5 {
		t.Errorf("unexpected career %+v", career)
	}

	if code := call(t, client, "DELETE", server.URL+"/api/matches/"+created.ID, "", nil); code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	if code := call(t, client, "GET", server.URL+"/api/matches/"+created.ID, "", nil); code != http.StatusNotFound {
		t.Errorf("deleted match still visible: %d", code)
	}
	var list []stats.MatchSummary
	call(t, client, "GET", server.URL+"/api/matches", "", &list)
	if len(list) != 0 {
		t.Errorf("expected no live matches, got %d", len(list))
	}
}

func TestIntegration_InvalidMatchStoresNothing(t *testing.T) {
	server, store := setupTestServer(t)
	client := newClient(t)
	call(t, client, "POST", server.URL+"/api/login", `{"password":"letmein"}`, nil)

	var res struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	code := call(t, client, "POST", server.URL+"/api/matches", matchJSON("anonymous", "Nowhere"), &res)
	if code != http.StatusBadRequest || res.Success || !strings.Contains(res.Message, "arena") {
		t.Errorf("expected arena validation error, got %d %+v", code, res)
	}
	matches, err := store.ListMatches(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("invalid submission stored %d matches", len(matches))
	}
}

func containsView(views []any, want string) bool {
	for _, v := range views {
		if v == want {
			return true
		}
	}
	return false
}
