package web

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-faceoverlay/pkg/camera"
	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
)

// handleStatus returns pipeline, camera and viewer counters
func (s *Server) handleStatus(c *fiber.Ctx) error {
	st := Status{
		Viewport: s.ContainerSize(),
		Clients: map[string]int{
			s.previewHub.Name(): s.previewHub.ClientCount(),
			s.overlayHub.Name(): s.overlayHub.ClientCount(),
		},
	}
	if s.OnStatus != nil {
		s.OnStatus(&st)
	}
	return c.JSON(st)
}

// handleOverlay returns the rectangles currently drawn
func (s *Server) handleOverlay(c *fiber.Ctx) error {
	return c.JSON(s.Overlay())
}

// handleFrame returns the current preview as JPEG.
// ?overlay=false returns the upright camera image only.
func (s *Server) handleFrame(c *fiber.Ctx) error {
	withOverlay := true
	if v := c.Query("overlay"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "overlay must be a boolean",
			})
		}
		withOverlay = b
	}

	data, err := s.SnapshotJPEG(withOverlay)
	if errors.Is(err, ErrNoImage) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("jpg")
	return c.Send(data)
}

// ViewportRequest is the body of PUT /api/viewport
type ViewportRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleGetViewport(c *fiber.Ctx) error {
	return c.JSON(s.ContainerSize())
}

// handleSetViewport changes the container size and relays out the last frame
func (s *Server) handleSetViewport(c *fiber.Ctx) error {
	var req ViewportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}

	size := geometry.Size{W: req.Width, H: req.Height}
	if err := s.SetViewport(size); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(size)
}

// handleGetCamera returns the current camera configuration
func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	if s.camera == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "camera not configured",
		})
	}
	return c.JSON(s.camera.GetConfigJSON())
}

// handleSetCamera updates the camera configuration
func (s *Server) handleSetCamera(c *fiber.Ctx) error {
	if s.camera == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "camera not configured",
		})
	}

	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}

	if err := s.camera.UpdateConfig(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.logger.Info("camera config updated", "params", params)
	return c.JSON(s.camera.GetConfigJSON())
}

// handleCameraPresets lists the named capture presets
func (s *Server) handleCameraPresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"names":    camera.PresetNames(),
		"presets":  camera.Presets(),
		"backends": camera.AvailableBackends(),
	})
}

func (s *Server) handleCameraCapabilities(c *fiber.Ctx) error {
	return c.JSON(camera.Capabilities())
}
