package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/df07/go-bokeh/pkg/core"
	"github.com/df07/go-bokeh/pkg/material"
	"github.com/df07/go-bokeh/pkg/renderer"
)

// Config controls the preview server
type Config struct {
	Port            int
	RendersPerSec   float64 // Sustained rate of render requests; <= 0 disables limiting
	RenderBurst     int     // Renders allowed back to back before limiting starts
	MaxPasses       int     // Upper bound for progressive passes on /api/stream
	MaxSamples      int     // Upper bound for the samples parameter
	MaxSize         int     // Upper bound for the size parameter
	RequestIDHeader string  // Response header carrying the request id
}

// DefaultConfig returns the settings used by the web command
func DefaultConfig() Config {
	return Config{
		Port:            8080,
		RendersPerSec:   4,
		RenderBurst:     8,
		MaxPasses:       10,
		MaxSamples:      10_000_000,
		MaxSize:         1024,
		RequestIDHeader: "X-Request-Id",
	}
}

// Server serves aperture previews over HTTP
type Server struct {
	config  Config
	mux     *http.ServeMux
	limiter *rate.Limiter
}

// NewServer creates a new preview server
func NewServer(config Config) *Server {
	d := DefaultConfig()
	if config.MaxPasses <= 0 {
		config.MaxPasses = d.MaxPasses
	}
	if config.MaxSamples <= 0 {
		config.MaxSamples = d.MaxSamples
	}
	if config.MaxSize <= 0 {
		config.MaxSize = d.MaxSize
	}
	if config.RequestIDHeader == "" {
		config.RequestIDHeader = d.RequestIDHeader
	}

	limit := rate.Inf
	if config.RendersPerSec > 0 {
		limit = rate.Limit(config.RendersPerSec)
	}

	s := &Server{
		config:  config,
		mux:     http.NewServeMux(),
		limiter: rate.NewLimiter(limit, max(1, config.RenderBurst)),
	}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/texture", s.handleTexture)
	s.mux.HandleFunc("/api/aperture", s.limited(s.handleAperture))
	s.mux.HandleFunc("/api/stream", s.limited(s.handleStream))
	return s
}

// ServeHTTP tags every request with an id before dispatching it
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(s.config.RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(s.config.RequestIDHeader, id)
	w.Header().Set("Access-Control-Allow-Origin", "*")

	start := time.Now()
	s.mux.ServeHTTP(w, r)
	core.Logger().Debug("request served",
		"id", id, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	core.Logger().Info("starting web server", "addr", "http://localhost"+addr)
	return http.ListenAndServe(addr, s)
}

// limited rejects requests beyond the configured render rate
func (s *Server) limited(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "render rate exceeded"})
			return
		}
		h(w, r)
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PreviewRequest represents an aperture preview request from the client
type PreviewRequest struct {
	Mode        string  `json:"mode"`        // One of renderer.Modes()
	Shape       string  `json:"shape"`       // "blade" or "disk"
	Blades      int     `json:"blades"`      // Blade count for blade apertures
	Angle       float64 `json:"angle"`       // Blade rotation in radians
	Size        int     `json:"size"`        // Output width and height
	Supersample int     `json:"supersample"` // Subpixels per axis for mask renders
	Samples     int     `json:"samples"`     // Samples for histogram and bokeh renders
	Passes      int     `json:"passes"`      // Progressive passes for /api/stream
	Seed        int64   `json:"seed"`
}

// Texture builds the aperture the request describes
func (req *PreviewRequest) Texture() material.SamplableTexture {
	if req.Shape == "disk" {
		return material.NewDiskTexture()
	}
	return material.NewBladeTexture(req.Blades, req.Angle)
}

// RenderOptions returns the renderer settings for the request
func (req *PreviewRequest) RenderOptions() renderer.RenderOptions {
	return renderer.RenderOptions{
		Size:        req.Size,
		Supersample: req.Supersample,
		Samples:     req.Samples,
		Seed:        req.Seed,
	}
}

// parsePreviewRequest parses and validates request parameters
func (s *Server) parsePreviewRequest(r *http.Request) (*PreviewRequest, error) {
	values := r.URL.Query()
	req := &PreviewRequest{
		Mode:  renderer.ModeMask,
		Shape: "blade",
	}

	if mode := values.Get("mode"); mode != "" {
		if !slices.Contains(renderer.Modes(), mode) {
			return nil, fmt.Errorf("%q: %w", mode, renderer.ErrUnknownMode)
		}
		req.Mode = mode
	}
	if shape := values.Get("shape"); shape != "" {
		if shape != "blade" && shape != "disk" {
			return nil, fmt.Errorf("unknown shape: %s", shape)
		}
		req.Shape = shape
	}

	var err error
	if req.Blades, err = parseIntParam(values, "blades", material.DefaultBlades, material.MinBlades, 64); err != nil {
		return nil, err
	}
	if req.Angle, err = parseFloatParam(values, "angle", material.DefaultBladeAngle(req.Blades), -2*math.Pi, 2*math.Pi); err != nil {
		return nil, err
	}
	if req.Size, err = parseIntParam(values, "size", 256, 8, s.config.MaxSize); err != nil {
		return nil, err
	}
	if req.Supersample, err = parseIntParam(values, "supersample", 4, 1, 16); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 200_000, 1000, s.config.MaxSamples); err != nil {
		return nil, err
	}
	if req.Passes, err = parseIntParam(values, "passes", 5, 1, s.config.MaxPasses); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(values, "seed", 1, math.MinInt32, math.MaxInt32)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)

	if req.Mode == renderer.ModeOutline && req.Shape == "disk" {
		return nil, fmt.Errorf("disk: %w", renderer.ErrNoOutline)
	}
	return req, nil
}

// handleAperture renders a single preview and returns it as a PNG
func (s *Server) handleAperture(w http.ResponseWriter, r *http.Request) {
	req, err := s.parsePreviewRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	start := time.Now()
	img, stats, err := renderer.RenderMode(req.Mode, req.Texture(), req.RenderOptions())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("Render error: %v", err)})
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("Encode error: %v", err)})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	w.Header().Set("X-Render-Hit-Fraction", strconv.FormatFloat(stats.HitFraction(), 'f', 6, 64))
	w.Header().Set("X-Render-Elapsed-Ms", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		core.Logger().Debug("failed to write aperture response", "path", r.URL.Path, "err", err)
	}
}

// TextureInfo describes an aperture's geometry
type TextureInfo struct {
	Texture  json.RawMessage `json:"texture"`
	Area     float64         `json:"area"`
	Vertices [][2]float64    `json:"vertices,omitempty"`
	Bounds   *[4]float64     `json:"bounds,omitempty"` // minU, minV, maxU, maxV
}

// handleTexture returns the serialized aperture along with its area and outline
func (s *Server) handleTexture(w http.ResponseWriter, r *http.Request) {
	req, err := s.parsePreviewRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	tex := req.Texture()
	data, err := material.MarshalTexture(tex)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	info := TextureInfo{Texture: data}
	switch t := tex.(type) {
	case *material.BladeTexture:
		info.Area = t.Area()
		for _, v := range t.Vertices() {
			info.Vertices = append(info.Vertices, [2]float64{v.X, v.Y})
		}
		b := t.Bounds()
		info.Bounds = &[4]float64{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y}
	case *material.DiskTexture:
		info.Area = t.Area()
	}
	writeJSON(w, http.StatusOK, info)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
