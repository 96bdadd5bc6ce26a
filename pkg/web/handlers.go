package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/glitchmirror/pkg/hub"
	"github.com/teslashibe/glitchmirror/pkg/mirror"
)

// handleStatus returns the current session status plus the number of
// connected frame viewers.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	if s.StatusFunc == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "session not running",
		})
	}
	return c.JSON(struct {
		mirror.Status
		Viewers int `json:"viewers"`
	}{s.StatusFunc(), s.ViewerCount()})
}

// handleScene returns the current scene parameters.
func (s *Server) handleScene(c *fiber.Ctx) error {
	if s.SceneFunc == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "session not running",
		})
	}
	return c.JSON(s.SceneFunc())
}

// handleFramesWS streams binary JPEG frames to a viewer.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	hub.NewClient(s.frameHub, c).Run()
}

// handleStatusWS streams JSON status snapshots.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	hub.NewClient(s.statusHub, c).Run()
}

// handleIndex serves the built-in viewer page.
func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.SendString(indexHTML)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>glitchmirror</title>
<style>
  body { margin: 0; background: #0a0a0f; color: #e8e8f0; font-family: monospace; }
  #frame { display: block; margin: 0 auto; max-width: 100vw; max-height: 90vh; }
  #status { padding: 8px 16px; font-size: 12px; opacity: 0.7; }
</style>
</head>
<body>
<img id="frame" alt="mirror">
<div id="status">connecting...</div>
<script>
  const img = document.getElementById("frame");
  const status = document.getElementById("status");

  const frames = new WebSocket("ws://" + location.host + "/ws/frames");
  frames.binaryType = "blob";
  let url = null;
  frames.onmessage = (ev) => {
    if (url) URL.revokeObjectURL(url);
    url = URL.createObjectURL(ev.data);
    img.src = url;
  };

  const st = new WebSocket("ws://" + location.host + "/ws/status");
  st.onmessage = (ev) => {
    const s = JSON.parse(ev.data);
    status.textContent =
      "palette=" + s.palette + " shapes=" + s.shapes +
      " history=" + s.history + " resets=" + s.resets +
      " ticks=" + s.ticks + " dropped=" + s.dropped;
  };
</script>
</body>
</html>
`
