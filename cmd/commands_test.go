package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
	tu "github.com/desertthunder/rdx/internal/testing"
)

const (
	testArtist   = `{"key":"a1","type":"r","name":"Test Artist","url":"/artist/Test_Artist/","length":10,"hasRadio":true}`
	testTrack    = `{"key":"t1","type":"t","name":"Test Track","artist":"Test Artist","album":"Test Album","albumKey":"a2","duration":200}`
	testPlaylist = `{"key":"p1","type":"p","name":"Mix","length":1,"owner":"Ben Kree","ownerKey":"s1","trackKeys":["t1"]}`
	testUser     = `{"key":"s1","type":"s","firstName":"Ben","lastName":"Kree","gender":"m","url":"/people/ben/"}`
)

type testEnv struct {
	runner *Runner
	output *bytes.Buffer
	path   string
	api    *tu.APIServer
}

// newTestEnv writes a config pointing at a fake API and returns a runner reading it.
func newTestEnv(t *testing.T, responses map[string]string, configure func(*shared.Config)) *testEnv {
	t.Helper()
	api := tu.NewAPIServer(t, responses)
	dir := t.TempDir()

	config := shared.DefaultConfig()
	config.API.Endpoint = api.URL
	config.API.RateLimit = 0
	config.Credentials.Rdio.ConsumerKey = "ck"
	config.Credentials.Rdio.ConsumerSecret = "cs"
	config.Database.Path = filepath.Join(dir, "rdx.db")
	if configure != nil {
		configure(config)
	}

	path := filepath.Join(dir, "config.toml")
	if err := shared.SaveConfig(path, config); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Logger:      shared.NewLogger(io.Discard),
		Output:      output,
		OpenBrowser: func(string) error { return errors.New("no browser in tests") },
	})
	return &testEnv{runner: runner, output: output, path: path, api: api}
}

func authorized(config *shared.Config) {
	config.Credentials.Rdio.AccessToken = "at"
	config.Credentials.Rdio.AccessSecret = "as"
}

func (e *testEnv) run(args ...string) error {
	e.output.Reset()
	return newApp(e.runner).Run(context.Background(), append([]string{"rdx", "--config", e.path}, args...))
}

func (e *testEnv) config(t *testing.T) *shared.Config {
	t.Helper()
	config, err := shared.LoadConfig(e.path)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	return config
}

func newOAuthProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/request_token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "oauth_token=req-token&oauth_token_secret=req-secret&oauth_callback_confirmed=true")
	})
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.Contains(auth, `oauth_verifier="1234"`) || !strings.Contains(auth, `oauth_token="req-token"`) {
			http.Error(w, "bad verifier", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, "oauth_token=acc-token&oauth_token_secret=acc-secret")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func withOAuthProvider(provider *httptest.Server) func(*shared.Config) {
	return func(config *shared.Config) {
		config.API.RequestTokenURL = provider.URL + "/oauth/request_token"
		config.API.AccessTokenURL = provider.URL + "/oauth/access_token"
		config.API.AuthorizeURL = provider.URL + "/oauth/authorize"
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find a free port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestCatalogCommands(t *testing.T) {
	t.Run("search prints counts and results", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			"search": tu.OK(`{"number_results":1,"artist_count":1,"results":[` + testArtist + `]}`),
		}, nil)

		if err := env.run("search", "blue", "river"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := env.output.String()
		if !strings.Contains(out, "1 results (1 artists") {
			t.Errorf("expected counts line, got %s", out)
		}
		if !strings.Contains(out, "Test Artist") {
			t.Errorf("expected artist in output, got %s", out)
		}

		call := env.api.LastCall()
		if call.Get("query") != "blue river" {
			t.Errorf("expected joined query, got %q", call.Get("query"))
		}
		if call.Get("types") != "Artist,Album,Track,Playlist,User" {
			t.Errorf("expected every search type, got %q", call.Get("types"))
		}
	})

	t.Run("search json", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			"search": tu.OK(`{"number_results":1,"track_count":1,"results":[` + testTrack + `]}`),
		}, nil)

		if err := env.run("search", "--types", "Track", "--format", "json", "--pretty=false", "test"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), `"track_count":1`) {
			t.Errorf("expected compact JSON, got %s", env.output.String())
		}
		if env.api.LastCall().Get("types") != "Track" {
			t.Errorf("expected types=Track, got %q", env.api.LastCall().Get("types"))
		}
	})

	t.Run("search rejects unknown type before calling", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, nil)

		err := env.run("search", "--types", "Song", "test")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if len(env.api.Calls()) != 0 {
			t.Error("expected no request to be sent")
		}
	})

	t.Run("get renders csv", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			"get": tu.OK(`{"a1":` + testArtist + `,"t1":` + testTrack + `}`),
		}, nil)

		if err := env.run("get", "--format", "csv", "t1,a1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimSpace(env.output.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and two rows, got %q", env.output.String())
		}
		if !strings.Contains(lines[1], "Test Track") || !strings.Contains(lines[2], "Test Artist") {
			t.Errorf("expected rows in key order, got %q", lines[1:])
		}
		if env.api.LastCall().Get("keys") != "t1,a1" {
			t.Errorf("expected keys t1,a1, got %q", env.api.LastCall().Get("keys"))
		}
	})

	t.Run("unknown object type fails", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			"get": tu.OK(`{"x1":{"key":"x1","type":"zz"}}`),
		}, nil)

		if err := env.run("get", "x1"); !errors.Is(err, models.ErrUnknownType) {
			t.Errorf("expected ErrUnknownType, got %v", err)
		}
	})

	t.Run("API error is returned", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			"getTopCharts": tu.Failure("rate limited"),
		}, nil)

		err := env.run("charts", "Artist")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), "rate limited") {
			t.Errorf("expected API message in error, got %v", err)
		}
	})

	t.Run("resolve short code", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			"getObjectFromShortCode": tu.OK(testPlaylist),
		}, authorized)

		if err := env.run("resolve", "QitDBs0"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if env.api.LastCall().Get("short_code") != "QitDBs0" {
			t.Errorf("expected short_code, got %v", env.api.LastCall())
		}
		if !strings.Contains(env.output.String(), "Mix") {
			t.Errorf("expected playlist in output, got %s", env.output.String())
		}
	})
}

func TestCacheCommands(t *testing.T) {
	t.Run("cached objects are listed", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			"get": tu.OK(`{"a1":` + testArtist + `}`),
		}, nil)

		if err := env.run("--cache", "get", "a1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := env.run("cache", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "Test Artist") {
			t.Errorf("expected cached artist, got %s", env.output.String())
		}

		if err := env.run("cache", "clear"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := env.run("cache", "show", "a1"); !errors.Is(err, shared.ErrObjectNotFound) {
			t.Errorf("expected ErrObjectNotFound after clear, got %v", err)
		}
	})

	t.Run("nothing is cached without --cache", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			"get": tu.OK(`{"a1":` + testArtist + `}`),
		}, nil)

		if err := env.run("get", "a1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := env.run("cache", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "No results") {
			t.Errorf("expected empty cache, got %s", env.output.String())
		}
	})
}

func TestUserCommands(t *testing.T) {
	t.Run("find by email", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{"findUser": tu.OK(testUser)}, nil)

		if err := env.run("user", "find", "--email", "ben@example.com"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "Ben Kree (s1)") {
			t.Errorf("expected user in output, got %s", env.output.String())
		}
	})

	t.Run("invalid email is rejected locally", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, nil)

		if err := env.run("user", "find", "--email", "not-an-email"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if len(env.api.Calls()) != 0 {
			t.Error("expected no request to be sent")
		}
	})

	t.Run("current user requires authorization", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{"currentUser": tu.OK(testUser)}, nil)

		if err := env.run("user", "current"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("friend add", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{"addFriend": tu.OK(`true`)}, authorized)

		if err := env.run("friend", "add", "s2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if env.output.String() != "✓ Added friend s2\n" {
			t.Errorf("unexpected output %q", env.output.String())
		}
	})

	t.Run("activity follow resumes from the stored cursor", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			"getActivityStream": tu.OK(`{"last_id":100,"user":` + testUser + `,"updates":[]}`),
		}, nil)

		if err := env.run("activity", "--follow", "s1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "No new activity") {
			t.Errorf("expected empty stream message, got %s", env.output.String())
		}
		if got := env.api.LastCall().Get("last_id"); got != "" {
			t.Errorf("expected first run without last_id, got %q", got)
		}

		if err := env.run("activity", "--follow", "s1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := env.api.LastCall().Get("last_id"); got != "100" {
			t.Errorf("expected second run to resume at 100, got %q", got)
		}
	})

	t.Run("activity reset forgets the cursor", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			"getActivityStream": tu.OK(`{"last_id":100,"user":` + testUser + `,"updates":[]}`),
		}, nil)

		if err := env.run("activity", "--follow", "s1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := env.run("activity", "--follow", "--reset", "s1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := env.api.LastCall().Get("last_id"); got != "" {
			t.Errorf("expected reset run to start from the beginning, got %q", got)
		}
	})

	t.Run("activity rejects unknown scope", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, nil)

		if err := env.run("activity", "--scope", "nobody", "s1"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestCollectionCommands(t *testing.T) {
	t.Run("unauthenticated listing of own collection fails early", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, nil)

		if err := env.run("collection", "albums"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if len(env.api.Calls()) != 0 {
			t.Error("expected no request to be sent")
		}
	})

	t.Run("another user's collection is paged", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			"getTracksInCollection": tu.OK(`[` + testTrack + `]`),
		}, nil)

		if err := env.run("collection", "tracks", "--user", "s1", "--page-size", "1", "--limit", "2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		calls := env.api.Calls()
		if len(calls) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(calls))
		}
		if calls[0].Get("start") != "" || calls[1].Get("start") != "1" {
			t.Errorf("unexpected paging %q %q", calls[0].Get("start"), calls[1].Get("start"))
		}
		if calls[1].Get("user") != "s1" {
			t.Errorf("expected user s1, got %q", calls[1].Get("user"))
		}
	})

	t.Run("album and artist together are rejected", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, authorized)

		if err := env.run("collection", "tracks", "--album", "a2", "--artist", "a1"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("add", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{"addToCollection": tu.OK(`true`)}, authorized)

		if err := env.run("collection", "add", "t1", "t2,t3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if env.api.LastCall().Get("keys") != "t1,t2,t3" {
			t.Errorf("expected keys t1,t2,t3, got %q", env.api.LastCall().Get("keys"))
		}
		if !strings.Contains(env.output.String(), "Added 3 items") {
			t.Errorf("unexpected output %q", env.output.String())
		}
		if !strings.HasPrefix(env.api.LastHeader().Get("Authorization"), "OAuth ") {
			t.Error("expected signed request")
		}
	})
}

func TestPlaylistCommands(t *testing.T) {
	t.Run("create requires a description", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, authorized)

		err := env.run("playlist", "create", "--tracks", "t1", "Mix")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if len(env.api.Calls()) != 0 {
			t.Error("expected no request to be sent")
		}
	})

	t.Run("create", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{"createPlaylist": tu.OK(testPlaylist)}, authorized)

		if err := env.run("playlist", "create", "-d", "Road trip", "--tracks", "t1", "Mix"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if env.output.String() != "✓ Created Mix (p1)\n" {
			t.Errorf("unexpected output %q", env.output.String())
		}
		call := env.api.LastCall()
		if call.Get("name") != "Mix" || call.Get("description") != "Road trip" || call.Get("tracks") != "t1" {
			t.Errorf("unexpected call %v", call)
		}
	})

	t.Run("remove requires a count", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{"removeFromPlaylist": tu.OK(`true`)}, authorized)

		err := env.run("playlist", "remove", "p1", "t1", "t2")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if len(env.api.Calls()) != 0 {
			t.Error("expected no request to be sent")
		}
	})

	t.Run("remove sends index and count", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{"removeFromPlaylist": tu.OK(`true`)}, authorized)

		if err := env.run("playlist", "remove", "--count", "2", "p1", "t1", "t2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		call := env.api.LastCall()
		if call.Get("count") != "2" || call.Get("index") != "0" || call.Get("tracks") != "t1,t2" {
			t.Errorf("unexpected call %v", call)
		}
	})

	t.Run("export writes files and a manifest", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{
			"get": tu.OK(`{"p1":` + testPlaylist + `,"t1":` + testTrack + `}`),
		}, authorized)
		dir := filepath.Join(t.TempDir(), "export")

		if err := env.run("playlist", "export", "--format", "json", "--output", dir, "--rate", "100", "p1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		manifest := tu.MustReadFile(t, filepath.Join(dir, "export_manifest.json"))
		if !strings.Contains(manifest, `"p1"`) {
			t.Errorf("expected playlist in manifest, got %s", manifest)
		}
		if !strings.Contains(env.output.String(), "1 exported, 0 failed") {
			t.Errorf("unexpected summary %s", env.output.String())
		}
	})

	t.Run("export requires authorization", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, nil)

		if err := env.run("playlist", "export", "p1"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("status without access token", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, nil)

		if err := env.run("auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := env.output.String()
		if !strings.Contains(out, "Consumer key:  ✓ configured") {
			t.Errorf("expected consumer line, got %s", out)
		}
		if !strings.Contains(out, "✗ Not authorized") {
			t.Errorf("expected not authorized, got %s", out)
		}
	})

	t.Run("status with access token", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{"currentUser": tu.OK(testUser)}, authorized)

		if err := env.run("auth", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "✓ Authorized as Ben Kree (s1)") {
			t.Errorf("unexpected output %s", env.output.String())
		}
	})

	t.Run("login without consumer pair", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, func(config *shared.Config) {
			config.Credentials.Rdio.ConsumerKey = ""
			config.Credentials.Rdio.ConsumerSecret = ""
		})

		if err := env.run("auth", "login"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("complete without pending login", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, nil)

		if err := env.run("auth", "complete", "1234"); !errors.Is(err, shared.ErrNoRequestToken) {
			t.Errorf("expected ErrNoRequestToken, got %v", err)
		}
	})

	t.Run("out-of-band login then complete", func(t *testing.T) {
		provider := newOAuthProvider(t)
		env := newTestEnv(t, map[string]string{}, withOAuthProvider(provider))

		if err := env.run("auth", "login", "--oob"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "oauth_token=req-token") {
			t.Errorf("expected login URL in output, got %s", env.output.String())
		}

		pending := env.config(t).Credentials.Rdio
		if pending.RequestToken != "req-token" || pending.RequestSecret != "req-secret" {
			t.Fatalf("expected pending pair to be saved, got %q %q", pending.RequestToken, pending.RequestSecret)
		}

		if err := env.run("auth", "complete", "1234"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		saved := env.config(t).Credentials.Rdio
		if saved.AccessToken != "acc-token" || saved.AccessSecret != "acc-secret" {
			t.Errorf("expected access pair to be saved, got %q %q", saved.AccessToken, saved.AccessSecret)
		}
		if saved.HasPending() {
			t.Error("expected pending pair to be cleared")
		}
	})

	t.Run("login through the callback server", func(t *testing.T) {
		provider := newOAuthProvider(t)
		port := freePort(t)
		env := newTestEnv(t, map[string]string{}, func(config *shared.Config) {
			withOAuthProvider(provider)(config)
			config.Server.Host = "127.0.0.1"
			config.Server.Port = port
			config.Credentials.Rdio.CallbackURL = fmt.Sprintf("http://127.0.0.1:%d/callback", port)
		})
		env.runner.openBrowser = func(string) error {
			go func() {
				resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/callback?oauth_token=req-token&oauth_verifier=1234", port))
				if err == nil {
					resp.Body.Close()
				}
			}()
			return nil
		}

		if err := env.run("auth", "login", "--timeout", "5s"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "✓ Authorization successful") {
			t.Errorf("unexpected output %s", env.output.String())
		}

		saved := env.config(t).Credentials.Rdio
		if saved.AccessToken != "acc-token" {
			t.Errorf("expected access token to be saved, got %q", saved.AccessToken)
		}
	})

	t.Run("logout clears the access pair", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, authorized)

		if err := env.run("auth", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		saved := env.config(t).Credentials.Rdio
		if saved.AccessToken != "" || saved.AccessSecret != "" {
			t.Error("expected access pair to be cleared")
		}
		if saved.ConsumerKey != "ck" {
			t.Error("expected consumer pair to be kept")
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("database", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, nil)

		if err := env.run("setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(env.runner.config.Database.Path); err != nil {
			t.Errorf("expected database file, got %v", err)
		}
		if !strings.Contains(env.output.String(), "✓ Database ready") {
			t.Errorf("unexpected output %s", env.output.String())
		}
	})

	t.Run("status after setup", func(t *testing.T) {
		env := newTestEnv(t, map[string]string{}, nil)

		if err := env.run("setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := env.run("setup", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := env.output.String()
		if !strings.Contains(out, "Migrations:") || !strings.Contains(out, "✓ 001") {
			t.Errorf("expected applied migrations, got %s", out)
		}
	})
}
