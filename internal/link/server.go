package link

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-lightstrip/internal/events"
	"github.com/coreman2200/funtimes-lightstrip/internal/model"
)

// State is one message from the driverstation. Pixels wins over Color
// when both are set; an empty message is a heartbeat.
type State struct {
	Color  *model.Color  `json:"color,omitempty"`
	Pixels []model.Color `json:"pixels,omitempty"`
}

// Server accepts the driverstation on /link and preview clients on
// /frames. The link is up while a driverstation is connected and has sent
// something within Timeout.
type Server struct {
	Timeout   time.Duration
	Indicator model.Color
	// Status feeds /health; optional.
	Status func() map[string]any

	log zerolog.Logger
	bus *events.Bus
	now func() time.Time

	mu        sync.RWMutex
	station   *websocket.Conn
	remote    string
	lastSeen  time.Time
	pending   *State
	indicate  bool
	wasLinked bool

	frameMu  sync.Mutex
	clients  map[*websocket.Conn]*preview
	frameID  uint64
	lastEmit time.Time
	throttle time.Duration

	startTime time.Time
}

func NewServer(timeout time.Duration, indicator model.Color, bus *events.Bus, log zerolog.Logger) *Server {
	return &Server{
		Timeout:   timeout,
		Indicator: indicator,
		log:       log,
		bus:       bus,
		now:       time.Now,
		clients:   map[*websocket.Conn]*preview{},
		throttle:  50 * time.Millisecond, // ~20 FPS to previews
		startTime: time.Now(),
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Routes registers the server's handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/link", s.HandleLinkWS)
	mux.HandleFunc("/frames", s.HandleFramesWS)
	mux.HandleFunc("/health", s.HandleHealth)
}

// IsLinked implements dispatch.Link.
func (s *Server) IsLinked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	up := s.station != nil && s.now().Sub(s.lastSeen) <= s.Timeout
	if up != s.wasLinked {
		s.wasLinked = up
		s.log.Info().Bool("linked", up).Str("remote", s.remote).Msg("link changed")
		s.bus.Publish(events.LinkChangedEvent{Linked: up, Remote: s.remote})
	}
	return up
}

// Activate is called when the controller enters driven mode: until the
// driverstation sends state the strip shows the indicator color.
func (s *Server) Activate() {
	s.mu.Lock()
	s.indicate = true
	s.mu.Unlock()
}

// ApplyExternal implements dispatch.External.
func (s *Server) ApplyExternal(strip *model.Strip) bool {
	s.mu.Lock()
	st, indicate := s.pending, s.indicate
	s.pending, s.indicate = nil, false
	s.mu.Unlock()

	switch {
	case st != nil && len(st.Pixels) > 0:
		for i := 0; i < strip.Len(); i++ {
			if i < len(st.Pixels) {
				strip.SetPixel(i, st.Pixels[i])
			} else {
				strip.SetPixel(i, model.Black)
			}
		}
		return true
	case st != nil && st.Color != nil:
		strip.Fill(*st.Color)
		return true
	case indicate:
		strip.Fill(s.Indicator)
		return true
	}
	return false
}

// HandleLinkWS serves the driverstation. A second station replaces the
// first.
func (s *Server) HandleLinkWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	if s.station != nil {
		s.station.Close()
	}
	s.station = conn
	s.remote = r.RemoteAddr
	s.lastSeen = s.now()
	s.mu.Unlock()
	s.log.Info().Str("remote", r.RemoteAddr).Msg("driverstation connected")
	s.IsLinked()

	defer func() {
		s.mu.Lock()
		if s.station == conn {
			s.station = nil
		}
		s.mu.Unlock()
		conn.Close()
		s.log.Info().Str("remote", r.RemoteAddr).Msg("driverstation disconnected")
		s.IsLinked()
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var st State
		if err := json.Unmarshal(data, &st); err != nil {
			s.log.Debug().Err(err).Msg("bad link message")
			continue
		}
		s.mu.Lock()
		s.lastSeen = s.now()
		if st.Color != nil || len(st.Pixels) > 0 {
			s.pending = &st
		}
		s.mu.Unlock()
	}
}

// preview is one /frames client. Its writer goroutine owns the socket;
// out holds at most the newest frame.
type preview struct {
	conn *websocket.Conn
	out  chan []byte
}

const previewWriteTimeout = 200 * time.Millisecond

// HandleFramesWS streams every flushed frame (throttled) to a preview.
func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	p := &preview{conn: conn, out: make(chan []byte, 1)}
	s.frameMu.Lock()
	s.clients[conn] = p
	s.frameMu.Unlock()

	go func() {
		for b := range p.out {
			conn.SetWriteDeadline(time.Now().Add(previewWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				s.log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("dropping preview")
				s.dropPreview(conn)
				return
			}
		}
	}()
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.dropPreview(conn)
				return
			}
		}
	}()
}

func (s *Server) dropPreview(conn *websocket.Conn) {
	s.frameMu.Lock()
	p, ok := s.clients[conn]
	if ok {
		delete(s.clients, conn)
		close(p.out)
	}
	s.frameMu.Unlock()
	if ok {
		conn.Close()
	}
}

// Write makes the server a led.Driver so it can sit in a Tee next to the
// strip. It never touches a socket: each preview gets the newest frame in
// its queue and a preview that falls behind skips frames.
func (s *Server) Write(rgb []byte) error {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	s.frameID++
	now := s.now()
	if len(s.clients) == 0 || now.Sub(s.lastEmit) < s.throttle {
		return nil
	}
	s.lastEmit = now

	type frame struct {
		T       int64  `json:"t"`
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	b, _ := json.Marshal(frame{T: now.UnixNano(), FrameID: s.frameID, RGB: rgb})
	for _, p := range s.clients {
		// senders all hold frameMu, so after the drain the send cannot block
		select {
		case <-p.out:
		default:
		}
		p.out <- b
	}
	return nil
}

// Close drops every connection.
func (s *Server) Close() error {
	s.frameMu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.frameMu.Unlock()
	for _, c := range conns {
		s.dropPreview(c)
	}
	s.mu.Lock()
	if s.station != nil {
		s.station.Close()
	}
	s.mu.Unlock()
	return nil
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.frameMu.Lock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"previews": len(s.clients),
	}
	s.frameMu.Unlock()
	resp["linked"] = s.IsLinked()
	if s.Status != nil {
		for k, v := range s.Status() {
			resp[k] = v
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
