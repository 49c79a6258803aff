package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"equalmedia/internal/config"
	"equalmedia/internal/ipc"
)

// CheckAPIKey reports whether Google Cloud credentials are configured.
func CheckAPIKey(creds config.APIConfig) Result {
	const name = "Google Cloud API key"
	if strings.TrimSpace(creds.GoogleCloudAPIKey) == "" {
		return Result{Name: name, Detail: "missing (set google.api_key or GOOGLE_CLOUD_API_KEY)"}
	}
	detail := fmt.Sprintf("configured (%s)", creds.Redacted().GoogleCloudAPIKey)
	if creds.GoogleCloudProjectID != "" {
		detail += fmt.Sprintf(", project %s", creds.GoogleCloudProjectID)
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckTextToSpeech verifies the API key against the Text-to-Speech voice
// listing, which is free and needs no request body.
func CheckTextToSpeech(ctx context.Context, baseURL, apiKey, languageCode string) Result {
	const name = "Google Cloud API"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := url.Values{"key": {strings.TrimSpace(apiKey)}}
	if languageCode != "" {
		query.Set("languageCode", languageCode)
	}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/voices?"+query.Encode(), nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeRequestError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key or API not enabled)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%d)", resp.StatusCode)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSocketPath verifies the IPC socket directory is writable. An existing
// socket is fine; a regular file in its place is not.
func CheckSocketPath(path string) Result {
	const name = "IPC socket"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSocket == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: exists and is not a socket)", path)}
	}
	dir := CheckDirectoryAccess(name, filepath.Dir(path))
	if !dir.Passed {
		return dir
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckListenAddress verifies that addr can be bound. A port already in use
// usually means a sandbox is running.
func CheckListenAddress(name, addr string) Result {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, unix.EADDRINUSE) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (in use; is a sandbox already running?)", addr)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", addr, err)}
	}
	_ = listener.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (available)", addr)}
}

// CheckSandbox reports whether a sandbox answers on socketPath.
func CheckSandbox(ctx context.Context, socketPath string) Result {
	const name = "Sandbox"
	client, err := ipc.Dial(socketPath)
	if err != nil {
		return Result{Name: name, Detail: "Not running (run `equalmedia start`)"}
	}
	defer client.Close()

	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	status, err := client.Status(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("socket open but status failed (%v)", err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Running (pid %d, %d elements)", status.PID, status.Elements)}
}

func summarizeRequestError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (Google API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (Google API unreachable)"
	}
	return fmt.Sprintf("request failed (%v)", err)
}
