// Package live follows a print running on the printer backend: it polls the
// print status and fetches the G-code of the file being printed.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ThatOtherAndrew/Layerview/internal/models"
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

const (
	statusPath = "/api/print/status"
	gcodePath  = "/api/gcode/"

	// maxGcodeSize bounds a fetched G-code file.
	maxGcodeSize = 256 << 20
)

// Client talks to the printer backend's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Status fetches the current print status, normalised.
func (c *Client) Status(ctx context.Context) (models.PrintStatus, error) {
	var st models.PrintStatus
	body, err := c.get(ctx, statusPath)
	if err != nil {
		return st, err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(&st); err != nil {
		return st, fmt.Errorf("decode print status: %w", err)
	}
	return Normalize(st), nil
}

// Gcode downloads the named file's G-code text.
func (c *Client) Gcode(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		return "", errors.New("empty filename")
	}
	body, err := c.get(ctx, gcodePath+url.PathEscape(filename))
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxGcodeSize))
	if err != nil {
		return "", fmt.Errorf("read gcode %s: %w", filename, err)
	}
	return string(data), nil
}

func (c *Client) get(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s returned %d: %w", path, resp.StatusCode, ErrUnexpectedStatus)
	}
	return resp.Body, nil
}

// Normalize maps unknown states to idle and clamps progress to [0, 100].
// An idle status carries no file.
func Normalize(st models.PrintStatus) models.PrintStatus {
	st.Status = models.PrintState(strings.ToLower(strings.TrimSpace(string(st.Status))))
	if !st.Status.Active() {
		st.Status = models.StatusIdle
	}
	st.Progress = st.Fraction() * 100
	if st.Status == models.StatusIdle {
		st.Filename = ""
	}
	return st
}
