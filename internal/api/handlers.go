package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/saintsjh/PortfolioWebsite/internal/layout"
	"github.com/saintsjh/PortfolioWebsite/internal/lifecycle"
	"github.com/saintsjh/PortfolioWebsite/internal/protocol"
	"github.com/saintsjh/PortfolioWebsite/internal/render"
	"github.com/saintsjh/PortfolioWebsite/internal/worker"
)

const (
	maxViewport   = 10000
	maxFrameSide  = 1920
	maxFrameSteps = 600
)

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.ctrl.Status())
}

func (h *routerHandlers) handleGetBodies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, sceneOf(h.ctrl.Frame()))
}

func (h *routerHandlers) handlePutViewport(w http.ResponseWriter, r *http.Request) {
	var vp layout.Viewport
	if err := json.NewDecoder(r.Body).Decode(&vp); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if vp.Width <= 0 || vp.Height <= 0 || vp.Width > maxViewport || vp.Height > maxViewport {
		writeError(w, fmt.Sprintf("Viewport must be within 1..%d", maxViewport), http.StatusBadRequest)
		return
	}

	h.ctrl.SetViewport(vp)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(h.ctrl.Status())
}

func (h *routerHandlers) handleActivate(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.ActivatePhysics(); err != nil {
		if errors.Is(err, lifecycle.ErrNotSettled) {
			writeError(w, err.Error(), http.StatusConflict)
			return
		}
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.ctrl.Status())
}

func (h *routerHandlers) handleStop(w http.ResponseWriter, r *http.Request) {
	h.ctrl.StopPhysics()
	writeJSON(w, h.ctrl.Status())
}

// handleFieldFrame runs a private field worker for the requested number of
// frames and returns the last one as PNG.
func (h *routerHandlers) handleFieldFrame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err1 := queryInt(q.Get("w"), 640, 1, maxFrameSide)
	height, err2 := queryInt(q.Get("h"), 360, 1, maxFrameSide)
	frames, err3 := queryInt(q.Get("frames"), 60, 1, maxFrameSteps)
	if err := errors.Join(err1, err2, err3); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var painter render.Painter = render.NewCanvas(width, height)
	if q.Get("painter") == "raster" {
		painter = render.NewRaster(width, height)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	setup := protocol.Init{Width: float64(width), Height: float64(height), IsMobile: q.Get("mobile") == "true"}
	mouse := protocol.UpdateMouse{MousePos: protocol.Point{X: float64(width) / 2, Y: float64(height) / 2}}
	if x, err := strconv.ParseFloat(q.Get("x"), 64); err == nil {
		mouse.MousePos.X = x
	}
	if y, err := strconv.ParseFloat(q.Get("y"), 64); err == nil {
		mouse.MousePos.Y = y
	}
	mouse.IsMouseDown = q.Get("down") == "true"

	start := time.Now()
	err := worker.Run(ctx, h.field, []protocol.Message{setup, mouse}, frames, func(last worker.Render) error {
		return painter.Draw(last.Particles)
	})
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	RecordFieldRender(time.Since(start))

	var buf bytes.Buffer
	if err := png.Encode(&buf, painter.Image()); err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func sceneOf(frame *lifecycle.Frame) render.Scene {
	if frame == nil {
		return render.Scene{Type: ViewMsgFrame, State: string(lifecycle.Measuring), Elements: []render.Element{}}
	}
	return render.Scene{
		Type:     ViewMsgFrame,
		Sequence: frame.Sequence,
		State:    string(frame.State),
		ShowHint: frame.ShowHint,
		Elements: render.DOM(frame.Bodies, make([]render.Element, 0, len(frame.Bodies))),
	}
}

func queryInt(s string, def, lo, hi int) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("value %q must be an integer within %d..%d", s, lo, hi)
	}
	return v, nil
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
