package live

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatOtherAndrew/Layerview/internal/models"
)

const cube = "G1 X10 E1\nG1 Y10 E2\nG0 Z5\n"

type backend struct {
	status      atomic.Value
	gcodeHits   atomic.Int32
	gcodeStatus atomic.Int32
}

func newBackend(t *testing.T, status string) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{}
	b.gcodeStatus.Store(http.StatusOK)
	b.status.Store(status)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/print/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(b.status.Load().(string)))
	})
	mux.HandleFunc("/api/gcode/", func(w http.ResponseWriter, r *http.Request) {
		b.gcodeHits.Add(1)
		if code := int(b.gcodeStatus.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		if r.URL.Path != "/api/gcode/cube part.gcode" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(cube))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

const printing = `{"status":"printing","progress":42.5,"filename":"cube part.gcode","current_line":17,"total_lines":40}`

func TestNewTrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:5000/", 0)
	assert.Equal(t, "http://localhost:5000", c.baseURL)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
}

func TestStatus(t *testing.T) {
	_, srv := newBackend(t, printing)

	st, err := New(srv.URL, time.Second).Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPrinting, st.Status)
	assert.InDelta(t, 42.5, st.Progress, 1e-9)
	assert.InDelta(t, 0.425, st.Fraction(), 1e-9)
	assert.Equal(t, "cube part.gcode", st.Filename)
	assert.Equal(t, 17, st.CurrentLine)
	assert.Equal(t, 40, st.TotalLines)
}

func TestStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Status(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))

	_, bad := newBackend(t, `{"status":`)
	_, err = New(bad.URL, time.Second).Status(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnexpectedStatus))

	_, err = New("http://127.0.0.1:1", time.Second).Status(context.Background())
	assert.Error(t, err)
}

func TestGcode(t *testing.T) {
	_, srv := newBackend(t, printing)
	c := New(srv.URL, time.Second)

	text, err := c.Gcode(context.Background(), "cube part.gcode")
	require.NoError(t, err)
	assert.Equal(t, cube, text)

	_, err = c.Gcode(context.Background(), "missing.gcode")
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))

	_, err = c.Gcode(context.Background(), "")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in       models.PrintStatus
		status   models.PrintState
		progress float64
		file     string
	}{
		{models.PrintStatus{Status: "printing", Progress: 50, Filename: "a"}, models.StatusPrinting, 50, "a"},
		{models.PrintStatus{Status: " Paused ", Progress: 150, Filename: "a"}, models.StatusPaused, 100, "a"},
		{models.PrintStatus{Status: "error", Progress: 30, Filename: "a"}, models.StatusIdle, 30, ""},
		{models.PrintStatus{Status: "", Progress: -4}, models.StatusIdle, 0, ""},
	}
	for _, tc := range cases {
		got := Normalize(tc.in)
		assert.Equal(t, tc.status, got.Status, "%+v", tc.in)
		assert.InDelta(t, tc.progress, got.Progress, 1e-9, "%+v", tc.in)
		assert.Equal(t, tc.file, got.Filename, "%+v", tc.in)
	}
}

func next(t *testing.T, ch <-chan Update) Update {
	t.Helper()
	select {
	case u, ok := <-ch:
		require.True(t, ok, "updates closed early")
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("no update")
	}
	return Update{}
}

func TestPollerFetchesGcodeOncePerFile(t *testing.T) {
	b, srv := newBackend(t, printing)
	p := NewPoller(New(srv.URL, time.Second), 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	first := next(t, p.Updates())
	require.NoError(t, first.Err)
	require.NotNil(t, first.Toolpath)
	assert.Equal(t, 3, first.Toolpath.Len())
	assert.Equal(t, models.StatusPrinting, first.Status.Status)

	second := next(t, p.Updates())
	assert.Nil(t, second.Toolpath)
	assert.Equal(t, int32(1), b.gcodeHits.Load())

	b.status.Store(`{"status":"idle","progress":0,"filename":""}`)
	for u := next(t, p.Updates()); u.Status.Status != models.StatusIdle; u = next(t, p.Updates()) {
	}

	b.status.Store(printing)
	for u := next(t, p.Updates()); u.Toolpath == nil; u = next(t, p.Updates()) {
	}
	assert.Equal(t, int32(2), b.gcodeHits.Load(), "same file is refetched after an idle gap")

	cancel()
	for range p.Updates() {
	}
	<-done
}

func TestPollerRetriesFailedFetch(t *testing.T) {
	b, srv := newBackend(t, printing)
	b.gcodeStatus.Store(http.StatusNotFound)
	p := NewPoller(New(srv.URL, time.Second), time.Hour, zerolog.Nop())

	u := p.poll(context.Background())
	assert.Error(t, u.Err)
	assert.Nil(t, u.Toolpath)

	b.gcodeStatus.Store(http.StatusOK)
	u = p.poll(context.Background())
	require.NoError(t, u.Err)
	assert.NotNil(t, u.Toolpath)
}

func TestPollerReportsUnreachableBackendAsIdle(t *testing.T) {
	p := NewPoller(New("http://127.0.0.1:1", time.Second), time.Hour, zerolog.Nop())

	u := p.poll(context.Background())
	assert.Error(t, u.Err)
	assert.Equal(t, models.StatusIdle, u.Status.Status)
}
