package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"wsconsole/config"
	"wsconsole/internal/infra/fs"
	"wsconsole/internal/transport/ws"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	return cfg
}

func TestConsoleRoundTrip(t *testing.T) {
	for _, transport := range []string{config.TransportGorilla, config.TransportCoder} {
		t.Run(transport, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.Handle("/ws", ws.NewServer(zerolog.Nop(), nil, config.ReplyEcho))
			srv := httptest.NewServer(mux)
			defer srv.Close()

			cfg := testConfig(t)
			cfg.Client.Origin = srv.URL
			cfg.Client.Transport = transport

			var logs, out syncBuffer
			in, stdin := io.Pipe()
			done := make(chan error, 1)
			go func() {
				done <- runConsole(context.Background(), cfg, zerolog.New(&logs), in, &out)
			}()

			require.Eventually(t, func() bool {
				return strings.Contains(logs.String(), `"event":"open"`)
			}, 2*time.Second, 10*time.Millisecond)

			_, err := io.WriteString(stdin, "hello\n")
			require.NoError(t, err)
			require.Eventually(t, func() bool {
				return strings.Contains(out.String(), "status: hello\n")
			}, 2*time.Second, 10*time.Millisecond)

			require.NoError(t, stdin.Close())
			select {
			case err := <-done:
				require.NoError(t, err)
			case <-time.After(3 * time.Second):
				t.Fatal("console did not exit on EOF")
			}
			require.Contains(t, logs.String(), `"event":"close"`)
		})
	}
}

func TestConsoleSubmitsInputReadBeforeOpen(t *testing.T) {
	received := make(chan string, 4)
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(msg)
		}
	}))
	defer srv.Close()

	cfg := testConfig(t)
	cfg.Client.Origin = srv.URL

	// The whole input is available, and hits EOF, before the dial finishes.
	err := runConsole(context.Background(), cfg, zerolog.Nop(), strings.NewReader("early\n"), io.Discard)
	require.NoError(t, err)

	select {
	case msg := <-received:
		require.Equal(t, "early", msg)
	case <-time.After(2 * time.Second):
		t.Fatal("command read before open was not sent")
	}
}

func TestConsoleExitsWhenDialFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	cfg := testConfig(t)
	cfg.Client.Origin = srv.URL
	in, stdin := io.Pipe()
	defer stdin.Close()

	done := make(chan error, 1)
	go func() { done <- runConsole(context.Background(), cfg, zerolog.Nop(), in, io.Discard) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("console kept waiting after the dial failed")
	}
}

func TestConsoleRejectsBadOrigin(t *testing.T) {
	cfg := testConfig(t)
	cfg.Client.Origin = "ftp://nowhere"
	err := runConsole(context.Background(), cfg, zerolog.Nop(), strings.NewReader(""), io.Discard)
	require.ErrorIs(t, err, ws.ErrUnsupportedScheme)
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.DBPath = filepath.Join(t.TempDir(), "commands.db")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cfg, zerolog.Nop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeRejectsMissingAssetsDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.AssetsDir = filepath.Join(t.TempDir(), "missing")
	require.Error(t, runServe(context.Background(), cfg, zerolog.Nop()))
}

func TestServeRejectsAssetsDirWithoutIndex(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.AssetsDir = t.TempDir()
	require.ErrorIs(t, runServe(context.Background(), cfg, zerolog.Nop()), fs.ErrMissingIndex)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	require.True(t, names["serve"])
	require.True(t, names["console"])
}
