package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-faceoverlay/internal/log"
	"github.com/teslashibe/go-faceoverlay/pkg/camera"
	"github.com/teslashibe/go-faceoverlay/pkg/frame"
	"github.com/teslashibe/go-faceoverlay/pkg/geometry"
	"github.com/teslashibe/go-faceoverlay/pkg/orientation"
	"github.com/teslashibe/go-faceoverlay/pkg/overlay"
	"github.com/teslashibe/go-faceoverlay/pkg/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer("0", camera.NewManager(camera.DefaultConfig()), log.Discard())
}

func grayImage(w, h int) *frame.OrientedImage {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 128, 128, 128, 255
	}
	return frame.NewOrientedImage(img, orientation.Up)
}

func do(t *testing.T, s *Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestStatus(t *testing.T) {
	s := newTestServer(t)
	s.OnStatus = func(st *Status) {
		st.Session = "abc"
		st.Pipeline = pipeline.Stats{Received: 10, DroppedBusy: 4}
		st.Source = "mock"
	}

	resp, body := do(t, s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st Status
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, "abc", st.Session)
	assert.Equal(t, int64(10), st.Pipeline.Received)
	assert.Equal(t, int64(4), st.Pipeline.DroppedBusy)
	assert.Equal(t, DefaultViewport, st.Viewport)
	assert.Equal(t, 0, st.Clients["preview"])
}

func TestViewport(t *testing.T) {
	s := newTestServer(t)

	var got []geometry.Size
	s.OnViewportChange = func(size geometry.Size) { got = append(got, size) }

	resp, _ := do(t, s, http.MethodPut, "/api/viewport", `{"width":300,"height":500}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, geometry.Size{W: 300, H: 500}, s.ContainerSize())
	assert.Equal(t, []geometry.Size{{W: 300, H: 500}}, got)
	assert.Equal(t, geometry.Size{W: 300, H: 500}, s.renderer.Size())

	// Same size again does not fire the hook.
	do(t, s, http.MethodPut, "/api/viewport", `{"width":300,"height":500}`)
	assert.Len(t, got, 1)

	resp, _ = do(t, s, http.MethodPut, "/api/viewport", `{"width":0,"height":500}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, geometry.Size{W: 300, H: 500}, s.ContainerSize())

	for _, body := range []string{
		`{"width":1e12,"height":1e12}`,
		`{"width":100000,"height":100000}`,
		`{"width":4097,"height":500}`,
	} {
		resp, _ = do(t, s, http.MethodPut, "/api/viewport", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
	assert.Equal(t, geometry.Size{W: 300, H: 500}, s.ContainerSize())
	assert.Equal(t, geometry.Size{W: 300, H: 500}, s.renderer.Size())
	assert.Len(t, got, 1)

	resp, _ = do(t, s, http.MethodPut, "/api/viewport", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, s, http.MethodGet, "/api/viewport", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"width":300,"height":500}`, string(body))
}

func TestSetViewport_Bounds(t *testing.T) {
	s := newTestServer(t)

	var ide *geometry.InvalidDimensionsError
	assert.ErrorAs(t, s.SetViewport(geometry.Size{W: 1e12, H: 1e12}), &ide)
	assert.ErrorAs(t, s.SetViewport(geometry.Size{W: 390, H: MaxViewport.H + 1}), &ide)
	edge := geometry.Size{W: MaxViewport.W, H: 100}
	assert.NoError(t, s.SetViewport(edge))
	assert.Equal(t, edge, s.ContainerSize())
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	s := newTestServer(t)
	s.App().Get("/api/boom", func(*fiber.Ctx) error { panic("boom") })

	resp, _ := do(t, s, http.MethodGet, "/api/boom", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, _ = do(t, s, http.MethodGet, "/api/viewport", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFrame(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.SetViewport(geometry.Size{W: 200, H: 100}))

	resp, _ := do(t, s, http.MethodGet, "/api/frame.jpg", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	img := grayImage(100, 100)
	display, err := geometry.AspectFit(img.Size(), s.ContainerSize())
	require.NoError(t, err)
	s.ShowImage(img, display)
	s.ShowOverlay(overlay.Set{{X: 60, Y: 10, W: 40, H: 40}})

	resp, body := do(t, s, http.MethodGet, "/api/frame.jpg", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

	preview, err := jpeg.Decode(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(200, 100), preview.Bounds().Size())

	// Pillarbox stays black; the image area is gray.
	r, _, _, _ := preview.At(10, 50).RGBA()
	assert.Less(t, r>>8, uint32(30))
	r, _, _, _ = preview.At(100, 80).RGBA()
	assert.InDelta(t, 128, float64(r>>8), 20)

	resp, body = do(t, s, http.MethodGet, "/api/frame.jpg?overlay=false", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := jpeg.Decode(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(100, 100), raw.Bounds().Size())

	resp, _ = do(t, s, http.MethodGet, "/api/frame.jpg?overlay=maybe", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSnapshot_DrawsOverlay(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.SetViewport(geometry.Size{W: 100, H: 100}))

	s.ShowImage(grayImage(100, 100), geometry.Rect{W: 100, H: 100})
	s.ShowOverlay(overlay.Set{{X: 20, Y: 20, W: 60, H: 60}})

	img, err := s.Snapshot(true)
	require.NoError(t, err)

	c := color.RGBAModel.Convert(img.At(20, 50)).(color.RGBA)
	assert.Greater(t, c.R, uint8(200))
	assert.Less(t, c.G, uint8(100))
}

func TestOverlay(t *testing.T) {
	s := newTestServer(t)

	resp, body := do(t, s, http.MethodGet, "/api/overlay", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var empty OverlayState
	require.NoError(t, json.Unmarshal(body, &empty))
	assert.Empty(t, empty.Rects)
	assert.Nil(t, empty.Display)

	img := grayImage(40, 20)
	img.Seq = 9
	s.ShowImage(img, geometry.Rect{X: 0, Y: 10, W: 390, H: 195})
	s.ShowOverlay(overlay.Set{{X: 1, Y: 2, W: 3, H: 4}})

	_, body = do(t, s, http.MethodGet, "/api/overlay", "")
	var st OverlayState
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, uint64(9), st.Seq)
	assert.Equal(t, []geometry.Rect{{X: 1, Y: 2, W: 3, H: 4}}, st.Rects)
	require.NotNil(t, st.Display)
	assert.Equal(t, 195.0, st.Display.H)
	require.NotNil(t, st.Image)
	assert.Equal(t, geometry.Size{W: 40, H: 20}, *st.Image)
}

func TestCamera(t *testing.T) {
	s := newTestServer(t)

	var applied []camera.Config
	s.camera.OnConfigChange = func(cfg camera.Config) error {
		applied = append(applied, cfg)
		return nil
	}

	resp, body := do(t, s, http.MethodGet, "/api/camera", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"preset":"photo"`)

	resp, body = do(t, s, http.MethodPut, "/api/camera", `{"preset":"vga","interface":"landscape-left"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Len(t, applied, 1)
	assert.Equal(t, 640, applied[0].Width)
	assert.Equal(t, orientation.InterfaceLandscapeLeft, applied[0].Interface)

	resp, _ = do(t, s, http.MethodPut, "/api/camera", `{"preset":"imax"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, s, http.MethodGet, "/api/camera/presets", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var presets struct {
		Names []string `json:"names"`
	}
	require.NoError(t, json.Unmarshal(body, &presets))
	assert.Equal(t, camera.PresetNames(), presets.Names)

	resp, body = do(t, s, http.MethodGet, "/api/camera/capabilities", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"max_fps":120`)
}

func TestCamera_NotConfigured(t *testing.T) {
	s := NewServer("0", nil, log.Discard())
	resp, _ := do(t, s, http.MethodGet, "/api/camera", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWebsocket_RequiresUpgrade(t *testing.T) {
	s := newTestServer(t)
	resp, _ := do(t, s, http.MethodGet, "/ws/overlay", "")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func serve(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go s.Serve(ln)
	t.Cleanup(func() { s.Shutdown() })
	return "ws://" + ln.Addr().String()
}

func TestWebsocket_Streams(t *testing.T) {
	s := newTestServer(t)
	base := serve(t, s)

	overlayConn, _, err := websocket.DefaultDialer.Dial(base+"/ws/overlay", nil)
	require.NoError(t, err)
	defer overlayConn.Close()

	previewConn, _, err := websocket.DefaultDialer.Dial(base+"/ws/preview", nil)
	require.NoError(t, err)
	defer previewConn.Close()

	require.Eventually(t, func() bool {
		return s.overlayHub.ClientCount() == 1 && s.previewHub.ClientCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	s.ShowImage(grayImage(50, 50), geometry.Rect{X: 0, Y: 227, W: 390, H: 390})
	s.ShowOverlay(overlay.Set{{X: 10, Y: 237, W: 100, H: 100}})

	overlayConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	typ, data, err := overlayConn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, typ)
	var st OverlayState
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, []geometry.Rect{{X: 10, Y: 237, W: 100, H: 100}}, st.Rects)

	previewConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	typ, data, err = previewConn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, typ)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(390, 844), img.Bounds().Size())
}
