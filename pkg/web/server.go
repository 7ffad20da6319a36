// Package web serves the face overlay preview to browsers.
//
// Server is the pipeline's Display: the pipeline shows images and overlays
// on it, and it republishes both over websockets. The container size the
// pipeline lays images out in is the browser viewport, set through the API.
package web

import (
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-faceoverlay/internal/log"
	"github.com/teslashibe/go-faceoverlay/pkg/camera"
	"github.com/teslashibe/go-faceoverlay/pkg/frame"
	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
	"github.com/teslashibe/go-faceoverlay/pkg/hub"
	"github.com/teslashibe/go-faceoverlay/pkg/overlay"
	"github.com/teslashibe/go-faceoverlay/pkg/pipeline"
)

// DefaultViewport is the container size used until a browser reports its own.
var DefaultViewport = geometry.Size{W: 390, H: 844}

// MaxViewport bounds the container size a browser may report. The overlay
// is rendered at viewport resolution.
var MaxViewport = geometry.Size{W: 4096, H: 4096}

// DefaultJPEGQuality is used for previews.
const DefaultJPEGQuality = 80

// Status is the body of GET /api/status.
type Status struct {
	Session  string             `json:"session"`
	Viewport geometry.Size      `json:"viewport"`
	Pipeline pipeline.Stats     `json:"pipeline"`
	Camera   camera.SourceStats `json:"camera"`
	Source   string             `json:"source"`
	Detector string             `json:"detector"`
	Clients  map[string]int     `json:"clients"`
}

// OverlayState is broadcast on /ws/overlay and returned by GET /api/overlay.
type OverlayState struct {
	Seq       uint64          `json:"seq"`
	Viewport  geometry.Size   `json:"viewport"`
	Image     *geometry.Size  `json:"image,omitempty"`
	Display   *geometry.Rect  `json:"display,omitempty"`
	Rects     []geometry.Rect `json:"rects"`
	Rendered  uint64          `json:"rendered"`
	Timestamp int64           `json:"timestamp_ms"`
}

// Server is the preview server.
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	quality int

	// Display state, written on the presenter goroutine.
	mu       sync.RWMutex
	viewport geometry.Size
	image    *frame.OrientedImage
	display  geometry.Rect
	renderer *overlay.Renderer

	previewHub *hub.Hub
	overlayHub *hub.Hub

	camera *camera.Manager

	// OnViewportChange is called after PUT /api/viewport changed the size.
	OnViewportChange func(size geometry.Size)

	// OnStatus fills in the pipeline and camera parts of GET /api/status.
	OnStatus func(s *Status)
}

// NewServer creates a server listening on port. cam may be nil, in which
// case the camera routes answer 503.
func NewServer(port string, cam *camera.Manager, logger *slog.Logger) *Server {
	logger = log.Or(logger).With("component", "web")
	s := &Server{
		port:       port,
		logger:     logger,
		quality:    DefaultJPEGQuality,
		viewport:   DefaultViewport,
		renderer:   overlay.NewRenderer(DefaultViewport, overlay.DefaultStyle()),
		previewHub: hub.New("preview", hub.WithLogger(logger)),
		overlayHub: hub.New("overlay", hub.WithLogger(logger), hub.WithReplay()),
		camera:     cam,
	}

	app := fiber.New(fiber.Config{
		AppName:               "faceoverlay",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/overlay", s.handleOverlay)
	api.Get("/frame.jpg", s.handleFrame)
	api.Get("/viewport", s.handleGetViewport)
	api.Put("/viewport", s.handleSetViewport)
	api.Get("/camera", s.handleGetCamera)
	api.Put("/camera", s.handleSetCamera)
	api.Get("/camera/presets", s.handleCameraPresets)
	api.Get("/camera/capabilities", s.handleCameraCapabilities)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/preview", websocket.New(s.serveHub(s.previewHub)))
	app.Get("/ws/overlay", websocket.New(s.serveHub(s.overlayHub)))

	s.app = app
	return s
}

// SetJPEGQuality changes the preview quality (1-100).
func (s *Server) SetJPEGQuality(q int) {
	if q < 1 || q > 100 {
		return
	}
	s.mu.Lock()
	s.quality = q
	s.mu.Unlock()
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		hub.NewClient(h, c).Run()
	}
}

func (s *Server) startHubs() {
	go s.previewHub.Run()
	go s.overlayHub.Run()
}

// Start runs the hubs and blocks serving HTTP on the configured port.
func (s *Server) Start() error {
	s.logger.Info("preview server listening", "url", "http://localhost:"+s.port)
	s.startHubs()
	return s.app.Listen(":" + s.port)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.startHubs()
	return s.app.Listener(ln)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("web server error", "error", err)
		}
	}()
}

// Shutdown disconnects all viewers and stops the server.
func (s *Server) Shutdown() error {
	s.previewHub.Stop()
	s.overlayHub.Stop()
	return s.app.Shutdown()
}
