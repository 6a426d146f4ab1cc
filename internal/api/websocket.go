package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/saintsjh/PortfolioWebsite/internal/input"
	"github.com/saintsjh/PortfolioWebsite/internal/layout"
	"github.com/saintsjh/PortfolioWebsite/internal/lifecycle"
)

const (
	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	writeWait = 2 * time.Second
)

func newUpgrader(origins *OriginChecker) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origins.Allowed(origin) {
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
}

// View is one character simulation with its own frame loop.
type View interface {
	Controller
	Start()
	Stop()
}

// ViewFactory builds a fresh view for a new viewer.
type ViewFactory func() View

// Viewer message types. Pointer and touch events use the input event
// names (pointermove, touchstart, ...).
const (
	ViewMsgFrame    = "frame"    // server to viewer: a render.Scene
	ViewMsgViewport = "viewport" // {width, height, compact}
	ViewMsgOrigin   = "origin"   // {x, y}: container position in page coordinates
	ViewMsgActivate = "activate"
	ViewMsgStop     = "stop"
	ViewMsgStatus   = "status"
	ViewMsgError    = "error"
)

// viewMessage is anything a viewer sends on /ws/characters.
type viewMessage struct {
	Type    string  `json:"type"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Target  string  `json:"target,omitempty"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Compact bool    `json:"compact"`
}

type statusReply struct {
	Type string `json:"type"`
	lifecycle.Status
}

type errorReply struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

var pointerEvents = map[string]bool{
	string(input.PointerMove): true,
	string(input.PointerDown): true,
	string(input.PointerUp):   true,
	string(input.TouchStart):  true,
	string(input.TouchMove):   true,
	string(input.TouchEnd):    true,
}

// CharacterSessions gives every viewer its own simulation. The view is
// started on connect and stopped on disconnect; frames go out as JSON
// scenes whenever the view publishes a new one.
type CharacterSessions struct {
	newView   ViewFactory
	upgrader  websocket.Upgrader
	connLimit *ConnLimiter
	rateCfg   RateLimitConfig
	max       int64
	fps       int
	active    atomic.Int64
	wg        sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// NewCharacterSessions creates the session handler.
func NewCharacterSessions(newView ViewFactory, origins *OriginChecker, maxClients, fps int, rateCfg RateLimitConfig) *CharacterSessions {
	ctx, cancel := context.WithCancel(context.Background())
	return &CharacterSessions{
		newView:   newView,
		upgrader:  newUpgrader(origins),
		connLimit: NewConnLimiter(MaxWSConnectionsPerIP),
		rateCfg:   rateCfg,
		max:       int64(maxClients),
		fps:       fps,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Close ends every session and refuses new ones.
func (cs *CharacterSessions) Close() {
	cs.cancel()
}

// Active returns the number of connected viewers.
func (cs *CharacterSessions) Active() int {
	return int(cs.active.Load())
}

// Wait blocks until every session has ended.
func (cs *CharacterSessions) Wait() {
	cs.wg.Wait()
}

// HandleWebSocket serves one viewer until it disconnects.
func (cs *CharacterSessions) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if cs.ctx.Err() != nil {
		writeError(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}
	ip := GetClientIP(r)

	if n := cs.active.Add(1); n > cs.max {
		cs.active.Add(-1)
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", cs.max)
		RecordConnectionRejected("ws_total_limit")
		writeError(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !cs.connLimit.Acquire(ip) {
		cs.active.Add(-1)
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		writeError(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := cs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		cs.connLimit.Release(ip)
		cs.active.Add(-1)
		return
	}

	cs.wg.Add(1)
	setCharacterClients(cs.Active())
	log.Printf("📱 Viewer connected from %s (%d total)", ip, cs.Active())

	view := cs.newView()
	view.Start()
	defer func() {
		view.Stop()
		conn.Close()
		cs.connLimit.Release(ip)
		n := cs.active.Add(-1)
		setCharacterClients(int(n))
		log.Printf("📱 Viewer disconnected from %s (%d remaining)", ip, n)
		cs.wg.Done()
	}()

	s := &characterSession{conn: conn, view: view, replies: make(chan []byte, 8)}
	s.serve(cs.ctx, cs.fps, NewInputLimiter(cs.rateCfg).Allow)
}

type characterSession struct {
	conn    *websocket.Conn
	view    View
	replies chan []byte
}

func (s *characterSession) serve(ctx context.Context, fps int, allow func() bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		s.writeFrames(ctx, fps)
	}()

	s.readControl(ctx, allow)
	cancel()
	<-writerDone
}

// writeFrames is the only writer on the connection. It sends replies as
// they come and each new frame the view publishes, polled at fps.
func (s *characterSession) writeFrames(ctx context.Context, fps int) {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var last uint64
	for {
		var msg []byte
		select {
		case <-ctx.Done():
			return
		case msg = <-s.replies:
		case <-ticker.C:
			frame := s.view.Frame()
			if frame == nil || frame.Sequence == last {
				continue
			}
			last = frame.Sequence

			var err error
			if msg, err = json.Marshal(sceneOf(frame)); err != nil {
				continue
			}
			recordCharacterFrame()
		}

		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (s *characterSession) readControl(ctx context.Context, allow func() bool) {
	stop := context.AfterFunc(ctx, func() {
		s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	tracker := s.view.Tracker()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var m viewMessage
		if err := json.Unmarshal(data, &m); err != nil {
			s.reply(errorReply{Type: ViewMsgError, Error: "invalid message"})
			continue
		}

		switch {
		case pointerEvents[m.Type]:
			if !allow() {
				continue
			}
			tracker.Handle(input.Event{Type: input.EventType(m.Type), X: m.X, Y: m.Y, Target: m.Target})

		case m.Type == ViewMsgOrigin:
			tracker.SetOrigin(m.X, m.Y)

		case m.Type == ViewMsgViewport:
			if m.Width <= 0 || m.Height <= 0 || m.Width > maxViewport || m.Height > maxViewport {
				s.reply(errorReply{Type: ViewMsgError, Error: fmt.Sprintf("viewport must be within 1..%d", maxViewport)})
				continue
			}
			s.view.SetViewport(layout.Viewport{Width: m.Width, Height: m.Height, Compact: m.Compact})
			s.reply(statusReply{Type: ViewMsgStatus, Status: s.view.Status()})

		case m.Type == ViewMsgActivate:
			if err := s.view.ActivatePhysics(); err != nil {
				s.reply(errorReply{Type: ViewMsgError, Error: err.Error()})
				continue
			}
			s.reply(statusReply{Type: ViewMsgStatus, Status: s.view.Status()})

		case m.Type == ViewMsgStop:
			s.view.StopPhysics()
			s.reply(statusReply{Type: ViewMsgStatus, Status: s.view.Status()})

		case m.Type == ViewMsgStatus:
			s.reply(statusReply{Type: ViewMsgStatus, Status: s.view.Status()})

		default:
			s.reply(errorReply{Type: ViewMsgError, Error: fmt.Sprintf("unknown message type %q", m.Type)})
		}
	}
}

// reply queues a message for the writer. Replies are dropped when the
// viewer is not reading.
func (s *characterSession) reply(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case s.replies <- data:
	default:
	}
}
