package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/ledcontent/internal/config"
	"github.com/xiaot623/ledcontent/internal/domain"
	"github.com/xiaot623/ledcontent/internal/hub"
	"github.com/xiaot623/ledcontent/internal/logging"
	"github.com/xiaot623/ledcontent/internal/transport/ws"
)

const morningFile = `
id = "morning"
title = "Morning"
start_time = "08:00"
checksum = "abc"

[[sessions]]
order = 1
delay = 250

[sessions.text]
start_index = 1
content = "Hi"
color = "#00ff00"
`

type cliTestEnv struct {
	dbPath string
	dir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	t.Setenv("APP_ENV", "production")
	dir := t.TempDir()
	return &cliTestEnv{dbPath: filepath.Join(dir, "content.db"), dir: dir}
}

func (e *cliTestEnv) writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--driver", "sqlite3", "--db", "file:" + e.dbPath + "?_foreign_keys=on"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestImportListShow(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFile(t, "morning.toml", morningFile)

	out, err := env.run(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported morning (1 sessions) [live]")

	out, err = env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "morning")
	assert.Contains(t, out, "Morning")

	out, err = env.run(t, "show", "morning")
	require.NoError(t, err)
	assert.Equal(t, "Frame1=08:00\nText=1,Hi\nColor=0,255,0\nDelay=250\n", out)

	out, err = env.run(t, "show", "morning", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"checksum": "abc"`)
}

func TestImportRejectsInvalidContent(t *testing.T) {
	env := setupCLITestEnv(t)
	path := env.writeFile(t, "bad.toml", strings.Replace(morningFile, `"#00ff00"`, `"green"`, 1))

	_, err := env.run(t, "import", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content rejected")

	out, err := env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents")
}

func TestActivateTestAndDelete(t *testing.T) {
	env := setupCLITestEnv(t)
	first := env.writeFile(t, "first.toml", morningFile)
	second := env.writeFile(t, "second.toml", strings.Replace(morningFile, `id = "morning"`, `id = "evening"`, 1))

	_, err := env.run(t, "import", first)
	require.NoError(t, err)
	out, err := env.run(t, "import", second, "--no-activate", "--test")
	require.NoError(t, err)
	assert.Contains(t, out, "[test]")

	out, err = env.run(t, "activate", "evening")
	require.NoError(t, err)
	assert.Contains(t, out, "Activated evening")

	_, err = env.run(t, "test", "missing")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	_, err = env.run(t, "delete", "morning")
	require.NoError(t, err)
	_, err = env.run(t, "show", "morning")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestImageCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "image", "add", "logo", "--description", "Company logo")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered image logo")

	_, err = env.run(t, "image", "add", "bad name")
	require.Error(t, err)

	out, err = env.run(t, "image", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Company logo")

	_, err = env.run(t, "image", "rm", "logo")
	require.NoError(t, err)
	out, err = env.run(t, "image", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No images")
}

func TestWatchURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:8080":      "ws://localhost:8080/api/content/ws?channel=live",
		"https://led.example.com/":   "wss://led.example.com/api/content/ws?channel=live",
		"ws://host:1/api/content/ws": "ws://host:1/api/content/ws?channel=live",
	}
	for in, want := range cases {
		got, err := watchURL(in, "live")
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := watchURL("ftp://host", "live")
	assert.Error(t, err)
}

type fixedContent string

func (f fixedContent) Definition(context.Context, domain.Channel) (string, error) {
	return string(f), nil
}

func TestWatchPrintsPushedDefinitions(t *testing.T) {
	cfg := &config.Config{PingInterval: time.Second, WriteTimeout: time.Second, ReadTimeout: 5 * time.Second, MaxMessageSize: 4096}
	h := hub.New(logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	e := echo.New()
	e.GET("/api/content/ws", ws.NewServer(cfg, h, fixedContent("Text=0,Hi\nColor=0,255,0\nDelay=100"), logging.Discard()).HandleWebSocket)
	srv := httptest.NewServer(e)
	defer srv.Close()

	go func() {
		for h.SubscriberCount(domain.ChannelTest) == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		h.Broadcast(domain.ChannelTest, []byte("Delay=100"))
	}()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"watch", srv.URL, "--channel", "test", "--count", "2"})
	require.NoError(t, cmd.ExecuteContext(ctx))

	assert.Equal(t, "Text=0,Hi\nColor=0,255,0\nDelay=100\n---\nDelay=100\n", out.String())
}
