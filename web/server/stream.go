package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/df07/go-bokeh/pkg/core"
	"github.com/df07/go-bokeh/pkg/renderer"
)

// ProgressUpdate represents a single progressive pass sent over the websocket
type ProgressUpdate struct {
	PassNumber  int    `json:"passNumber"`
	TotalPasses int    `json:"totalPasses"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	IsComplete  bool   `json:"isComplete"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	HitFraction    float64 `json:"hitFraction"`
}

// passOptions doubles the sample budget each pass so the last pass uses the
// full request budget
func passOptions(req *PreviewRequest, pass int) renderer.RenderOptions {
	opts := req.RenderOptions()
	shift := req.Passes - pass
	opts.Samples = max(1000, req.Samples>>shift)
	opts.Supersample = max(1, req.Supersample>>shift)
	opts.Seed = req.Seed + int64(pass)
	return opts
}

// handleStream upgrades to a websocket and streams progressively refined
// previews, one message per pass
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parsePreviewRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		core.Logger().Warn("websocket accept failed", "err", err)
		return
	}

	err = s.stream(r.Context(), conn, req)
	switch {
	case err == nil:
		conn.Close(websocket.StatusNormalClosure, "render complete")
	case errors.Is(err, context.Canceled):
		conn.Close(websocket.StatusGoingAway, "client disconnected")
	default:
		core.Logger().Warn("stream failed", "err", err)
		conn.Close(websocket.StatusInternalError, err.Error())
	}
}

func (s *Server) stream(ctx context.Context, conn *websocket.Conn, req *PreviewRequest) error {
	tex := req.Texture()
	start := time.Now()

	for pass := 1; pass <= req.Passes; pass++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		img, stats, err := renderer.RenderMode(req.Mode, tex, passOptions(req, pass))
		if err != nil {
			return err
		}
		imageData, err := imageToBase64PNG(img)
		if err != nil {
			return fmt.Errorf("failed to encode image: %w", err)
		}

		update := ProgressUpdate{
			PassNumber:  pass,
			TotalPasses: req.Passes,
			ImageData:   imageData,
			Stats: Stats{
				TotalPixels:    stats.TotalPixels,
				TotalSamples:   stats.TotalSamples,
				AverageSamples: stats.AverageSamples(),
				HitFraction:    stats.HitFraction(),
			},
			IsComplete: pass == req.Passes,
			ElapsedMs:  time.Since(start).Milliseconds(),
		}
		if err := wsjson.Write(ctx, conn, update); err != nil {
			return err
		}
	}
	return nil
}
