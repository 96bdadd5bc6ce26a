package facemesh

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/glitchmirror/pkg/geom"
)

const (
	dialTimeout  = 10 * time.Second
	roundTimeout = 2 * time.Second
)

// Client talks to a landmark sidecar over websocket: it sends one JPEG
// frame per Detect call and reads back a JSON landmark list. A slow or
// failing round trip surfaces as an error; the caller drops that frame and
// keeps going.
type Client struct {
	url string

	ws      *websocket.Conn
	wsMutex sync.Mutex

	closed bool
}

// NewClient creates a client for the sidecar at url (e.g.
// ws://localhost:9464/mesh). Call Connect before Detect.
func NewClient(url string) *Client {
	return &Client{url: url}
}

// Connect establishes the websocket connection.
func (c *Client) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: dialTimeout,
	}

	ws, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("mesh connect failed: %w", err)
	}
	c.ws = ws
	return nil
}

// meshReply is the sidecar's per-frame response. Landmarks are normalized
// [0,1] with optional depth.
type meshReply struct {
	Faces []struct {
		Landmarks []geom.Point `json:"landmarks"`
	} `json:"faces"`
}

// Detect sends one JPEG frame and returns the first face's landmarks, or
// an empty slice when the sidecar saw no face.
func (c *Client) Detect(encoded []byte) ([]geom.Point, error) {
	c.wsMutex.Lock()
	defer c.wsMutex.Unlock()

	if c.ws == nil || c.closed {
		return nil, fmt.Errorf("mesh client not connected")
	}

	c.ws.SetWriteDeadline(time.Now().Add(roundTimeout))
	if err := c.ws.WriteMessage(websocket.BinaryMessage, encoded); err != nil {
		return nil, fmt.Errorf("mesh send: %w", err)
	}

	c.ws.SetReadDeadline(time.Now().Add(roundTimeout))
	_, msg, err := c.ws.ReadMessage()
	c.ws.SetReadDeadline(time.Time{})
	if err != nil {
		return nil, fmt.Errorf("mesh read: %w", err)
	}

	var reply meshReply
	if err := json.Unmarshal(msg, &reply); err != nil {
		return nil, fmt.Errorf("mesh reply: %w", err)
	}

	if len(reply.Faces) == 0 {
		return nil, nil
	}
	// Multi-face trackers may report several; only the first is used.
	return reply.Faces[0].Landmarks, nil
}

// Close closes the websocket connection.
func (c *Client) Close() error {
	c.wsMutex.Lock()
	defer c.wsMutex.Unlock()

	c.closed = true
	if c.ws != nil {
		return c.ws.Close()
	}
	return nil
}
