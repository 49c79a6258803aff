package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"equalmedia/internal/config"
	"equalmedia/internal/daemon"
	"equalmedia/internal/ipc"
	"equalmedia/internal/logging"
	"equalmedia/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	configPath string
	baseDir    string
	google     *httptest.Server
	speechHits atomic.Int32
	ttsHits    atomic.Int32
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{}
	env.google = httptest.NewServer(http.HandlerFunc(env.serveGoogle))
	t.Cleanup(env.google.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithoutAPI(), testsupport.WithGoogleBaseURL(env.google.URL))
	cfg.Logging.Level = "error"
	env.cfg = cfg
	env.baseDir = testsupport.BaseDir(cfg)
	env.configPath = filepath.Join(env.baseDir, "config.toml")
	writeTestConfig(t, env.configPath, cfg)

	d, err := daemon.New(cfg, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	env.daemon = d
	t.Cleanup(func() { d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)
	time.Sleep(50 * time.Millisecond)

	return env
}

func (env *cliTestEnv) serveGoogle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/speech:recognize":
		env.speechHits.Add(1)
		_, _ = w.Write([]byte(`{"results":[
			{"alternatives":[{"transcript":"Hi there","words":[
				{"word":"Hi","startTime":"0s","endTime":"0.4s"},
				{"word":"there","startTime":"0.4s","endTime":"1.2s"}]}]},
			{"alternatives":[{"transcript":"second"}],"resultEndTime":"9s"}]}`))
	case "/text:synthesize":
		env.ttsHits.Add(1)
		audio := base64.StdEncoding.EncodeToString([]byte("ID3fake-mp3"))
		_ = json.NewEncoder(w).Encode(map[string]string{"audioContent": audio})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"no such method","status":"NOT_FOUND"}}`))
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--config", env.configPath}, args...)...)
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
