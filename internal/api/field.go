package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/saintsjh/PortfolioWebsite/internal/physics"
	"github.com/saintsjh/PortfolioWebsite/internal/protocol"
	"github.com/saintsjh/PortfolioWebsite/internal/worker"
)

// FieldSessions runs one field worker per WebSocket connection. Control
// messages arrive as JSON text frames; renders leave as binary frames. The
// session holds the render buffer between sending a frame and the client's
// bufferBack, so exactly one frame is ever in flight.
type FieldSessions struct {
	opts     worker.Options
	upgrader websocket.Upgrader
	rateCfg  RateLimitConfig
	max      int64
	active   atomic.Int64
	wg       sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// NewFieldSessions creates the session handler.
func NewFieldSessions(opts worker.Options, origins *OriginChecker, maxSessions int, rateCfg RateLimitConfig) *FieldSessions {
	ctx, cancel := context.WithCancel(context.Background())
	return &FieldSessions{
		opts:     opts,
		upgrader: newUpgrader(origins),
		rateCfg:  rateCfg,
		max:      int64(maxSessions),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Close ends every running session and refuses new ones.
func (fs *FieldSessions) Close() {
	fs.cancel()
}

// Active returns the number of running sessions.
func (fs *FieldSessions) Active() int {
	return int(fs.active.Load())
}

// Wait blocks until every session has ended.
func (fs *FieldSessions) Wait() {
	fs.wg.Wait()
}

// HandleWebSocket serves one session until the client disconnects.
func (fs *FieldSessions) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if fs.ctx.Err() != nil {
		writeError(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}
	if n := fs.active.Add(1); n > fs.max {
		fs.active.Add(-1)
		RecordConnectionRejected("field_limit")
		writeError(w, "Too many field sessions", http.StatusServiceUnavailable)
		return
	}

	conn, err := fs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		fs.active.Add(-1)
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	fs.wg.Add(1)
	fieldSessionsActive.Inc()
	defer func() {
		conn.Close()
		fieldSessionsActive.Dec()
		fs.active.Add(-1)
		fs.wg.Done()
	}()

	s := &fieldSession{conn: conn, ip: GetClientIP(r)}
	s.serve(fs.ctx, fs.opts, NewInputLimiter(fs.rateCfg).Allow)
}

type fieldSession struct {
	conn *websocket.Conn
	ip   string

	mu   sync.Mutex
	held *physics.Buffer
}

func (s *fieldSession) serve(ctx context.Context, opts worker.Options, allow func() bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wk := worker.New(opts)
	wk.Start(ctx)
	log.Printf("✨ Field session started for %s", s.ip)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		s.writeRenders(wk)
	}()

	s.readControl(ctx, wk, allow)

	wk.Terminate()
	<-writerDone
	log.Printf("🔌 Field session ended for %s", s.ip)
}

// writeRenders sends every render as a binary frame. The buffer is
// encoded before it becomes available to bufferBack, so the worker never
// writes into storage that is still being read.
func (s *fieldSession) writeRenders(wk *worker.Worker) {
	var frame []byte
	for r := range wk.Renders() {
		var err error
		frame, err = protocol.AppendRender(frame[:0], r.Particles)
		if err != nil {
			return
		}

		s.mu.Lock()
		s.held = r.Particles
		s.mu.Unlock()

		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
		fieldFramesTotal.Inc()
	}
}

func (s *fieldSession) readControl(ctx context.Context, wk *worker.Worker, allow func() bool) {
	stop := context.AfterFunc(ctx, func() {
		s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			log.Printf("⚠️ Field session %s: %v", s.ip, err)
			continue
		}

		if _, ok := msg.(protocol.BufferBack); ok {
			s.mu.Lock()
			buf := s.held
			s.held = nil
			s.mu.Unlock()
			if buf == nil {
				continue
			}
			err = wk.Return(buf)
		} else {
			if msg.Type() == protocol.TypeUpdateMouse && !allow() {
				continue
			}
			err = wk.Post(msg)
		}
		if errors.Is(err, worker.ErrTerminated) {
			return
		}
	}
}
