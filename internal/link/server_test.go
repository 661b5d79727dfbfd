package link

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-lightstrip/internal/events"
	"github.com/coreman2200/funtimes-lightstrip/internal/model"
)

func serve(t *testing.T, s *Server) (*httptest.Server, string) {
	t.Helper()
	mux := http.NewServeMux()
	s.Routes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestStubs(t *testing.T) {
	assert.True(t, Always{}.IsLinked())
	assert.False(t, Never{}.IsLinked())
}

func TestIndicator(t *testing.T) {
	strip := model.NewStrip(2, nil)
	ind := &Indicator{Color: model.Green}
	assert.False(t, ind.ApplyExternal(strip))
	ind.Activate()
	assert.True(t, ind.ApplyExternal(strip))
	assert.Equal(t, model.Green, strip.Pixel(1))
	assert.False(t, ind.ApplyExternal(strip), "once per activation")
}

func TestLinkFollowsConnection(t *testing.T) {
	s := NewServer(time.Second, model.Green, nil, zerolog.Nop())
	_, url := serve(t, s)
	assert.False(t, s.IsLinked())

	c := dial(t, url+"/link")
	require.Eventually(t, s.IsLinked, time.Second, 5*time.Millisecond)

	c.Close()
	assert.Eventually(t, func() bool { return !s.IsLinked() }, time.Second, 5*time.Millisecond)
}

func TestLinkEventsWithoutPolling(t *testing.T) {
	bus := events.New()
	var mu sync.Mutex
	var seen []bool
	defer bus.Subscribe(func(e events.LinkChangedEvent) {
		mu.Lock()
		seen = append(seen, e.Linked)
		mu.Unlock()
	})()
	got := func(want ...bool) func() bool {
		return func() bool {
			mu.Lock()
			defer mu.Unlock()
			return assert.ObjectsAreEqual(want, seen)
		}
	}

	s := NewServer(time.Second, model.Green, bus, zerolog.Nop())
	_, url := serve(t, s)

	c := dial(t, url+"/link")
	require.Eventually(t, got(true), time.Second, 5*time.Millisecond, "connect publishes")

	c.Close()
	assert.Eventually(t, got(true, false), time.Second, 5*time.Millisecond, "disconnect publishes")
}

func TestLinkTimesOut(t *testing.T) {
	s := NewServer(100*time.Millisecond, model.Green, nil, zerolog.Nop())
	_, url := serve(t, s)
	clock := time.Now()
	s.mu.Lock()
	s.now = func() time.Time { return clock }
	s.mu.Unlock()

	dial(t, url+"/link")
	require.Eventually(t, s.IsLinked, time.Second, 5*time.Millisecond)

	s.mu.Lock()
	clock = clock.Add(time.Second)
	s.mu.Unlock()
	assert.False(t, s.IsLinked(), "silent station drops the link")
}

func TestApplyExternal(t *testing.T) {
	s := NewServer(time.Second, model.Green, nil, zerolog.Nop())
	_, url := serve(t, s)
	strip := model.NewStrip(3, nil)

	assert.False(t, s.ApplyExternal(strip), "nothing to show")

	s.Activate()
	assert.True(t, s.ApplyExternal(strip))
	assert.Equal(t, model.Green, strip.Pixel(0), "indicator until state arrives")
	assert.False(t, s.ApplyExternal(strip))

	c := dial(t, url+"/link")
	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"color":"#ff0000"}`)))
	require.Eventually(t, func() bool { return s.ApplyExternal(strip) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, model.Red, strip.Pixel(2))

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(`{"pixels":["0000ff","00ff00"]}`)))
	require.Eventually(t, func() bool { return s.ApplyExternal(strip) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []model.Color{model.Blue, model.Green, model.Black}, strip.Pixels())
}

func TestFramesBroadcast(t *testing.T) {
	s := NewServer(time.Second, model.Green, nil, zerolog.Nop())
	_, url := serve(t, s)
	c := dial(t, url+"/frames")

	require.Eventually(t, func() bool {
		s.frameMu.Lock()
		defer s.frameMu.Unlock()
		return len(s.clients) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Write([]byte{1, 2, 3}))
	c.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)

	var f struct {
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Equal(t, uint64(1), f.FrameID)
	assert.Equal(t, []byte{1, 2, 3}, f.RGB)
}

func previews(s *Server) func() int {
	return func() int {
		s.frameMu.Lock()
		defer s.frameMu.Unlock()
		return len(s.clients)
	}
}

func TestStalledPreviewDoesNotBlockWrite(t *testing.T) {
	s := NewServer(time.Second, model.Green, nil, zerolog.Nop())
	s.throttle = 0
	ts, url := serve(t, s)
	n := previews(s)

	// never reads, so its socket buffers fill up
	dial(t, url+"/frames")
	require.Eventually(t, func() bool { return n() == 1 }, time.Second, 5*time.Millisecond)

	frame := make([]byte, 64*1024)
	var worst time.Duration
	for i := 0; i < 200; i++ {
		start := time.Now()
		require.NoError(t, s.Write(frame))
		if d := time.Since(start); d > worst {
			worst = d
		}
	}
	assert.Less(t, int64(worst), int64(50*time.Millisecond), "worst Write took %s", worst)

	start := time.Now()
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Less(t, int64(time.Since(start)), int64(100*time.Millisecond), "/health waits on the preview")
}

func TestClosedPreviewIsDropped(t *testing.T) {
	s := NewServer(time.Second, model.Green, nil, zerolog.Nop())
	s.throttle = 0
	_, url := serve(t, s)
	n := previews(s)

	c := dial(t, url+"/frames")
	require.Eventually(t, func() bool { return n() == 1 }, time.Second, 5*time.Millisecond)

	c.Close()
	assert.Eventually(t, func() bool { return n() == 0 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, s.Write([]byte{1}))
}

func TestHealth(t *testing.T) {
	s := NewServer(time.Second, model.Green, nil, zerolog.Nop())
	s.Status = func() map[string]any { return map[string]any{"mode": "manual"} }
	ts, _ := serve(t, s)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "manual", body["mode"])
	assert.Equal(t, false, body["linked"])
}
