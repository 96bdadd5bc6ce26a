// Package video provides the remote frame source: a WebRTC subscriber for
// installations where the camera is a separate machine publishing through
// a GStreamer signalling server.
package video

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/jpeg"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v3"

	"github.com/teslashibe/glitchmirror/internal/log"
	"github.com/teslashibe/glitchmirror/pkg/frame"
)

// Source subscribes to a remote H264 video producer and keeps the most
// recently decoded frame available.
type Source struct {
	signallingURL string
	producerName  string

	ws      *websocket.Conn
	pc      *webrtc.PeerConnection
	wsMutex sync.Mutex

	peerID     string
	producerID string
	sessionID  string

	decoder *Decoder

	latestFrame []byte
	frameMutex  sync.RWMutex
	trackReady  chan struct{}

	closed atomic.Bool
}

// NewSource creates a source for the given signalling server URL
// (ws://host:8443) and producer name.
func NewSource(signallingURL, producerName string) *Source {
	return &Source{
		signallingURL: signallingURL,
		producerName:  producerName,
		decoder:       NewDecoder(50 * time.Millisecond),
		trackReady:    make(chan struct{}, 1),
	}
}

// Connect performs signalling and waits for the video track.
func (s *Source) Connect() error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	var err error
	s.ws, _, err = dialer.Dial(s.signallingURL, nil)
	if err != nil {
		return fmt.Errorf("video: signalling connect: %w", err)
	}

	if err := s.waitForWelcome(); err != nil {
		return fmt.Errorf("video: welcome: %w", err)
	}

	if err := s.findProducer(); err != nil {
		return fmt.Errorf("video: find producer: %w", err)
	}
	log.Info("video producer found", "producer", s.producerID)

	if err := s.createPeerConnection(); err != nil {
		return fmt.Errorf("video: peer connection: %w", err)
	}

	if err := s.startSession(); err != nil {
		return fmt.Errorf("video: start session: %w", err)
	}

	go s.handleSignalling()

	select {
	case <-s.trackReady:
		log.Info("video track connected", "producer", s.producerName)
	case <-time.After(15 * time.Second):
		return errors.New("video: timeout waiting for track")
	}

	return nil
}

func (s *Source) waitForWelcome() error {
	s.ws.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, msg, err := s.ws.ReadMessage()
	s.ws.SetReadDeadline(time.Time{})
	if err != nil {
		return err
	}

	var welcome struct {
		Type   string `json:"type"`
		PeerID string `json:"peerId"`
	}
	if err := json.Unmarshal(msg, &welcome); err != nil {
		return err
	}
	if welcome.Type != "welcome" {
		return fmt.Errorf("expected welcome, got %s", welcome.Type)
	}
	s.peerID = welcome.PeerID
	return nil
}

func (s *Source) findProducer() error {
	if err := s.writeJSON(map[string]string{"type": "list"}); err != nil {
		return err
	}

	s.ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := s.ws.ReadMessage()
	s.ws.SetReadDeadline(time.Time{})
	if err != nil {
		return err
	}

	var listResp struct {
		Type      string `json:"type"`
		Producers []struct {
			ID   string            `json:"id"`
			Meta map[string]string `json:"meta"`
		} `json:"producers"`
	}
	if err := json.Unmarshal(msg, &listResp); err != nil {
		return err
	}

	for _, p := range listResp.Producers {
		if p.Meta["name"] == s.producerName {
			s.producerID = p.ID
			return nil
		}
	}
	return fmt.Errorf("producer %q not found among %d producers", s.producerName, len(listResp.Producers))
}

func (s *Source) createPeerConnection() error {
	var err error
	s.pc, err = webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return err
	}

	if _, err = s.pc.AddTransceiverFromKind(webrtc.RTPCodecTypeVideo, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionRecvonly,
	}); err != nil {
		return err
	}

	s.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		log.Debug("video track", "kind", track.Kind().String(), "codec", track.Codec().MimeType)
		if track.Kind() == webrtc.RTPCodecTypeVideo {
			go s.consumeTrack(track)
		}
	})

	s.pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate != nil {
			s.sendICECandidate(candidate)
		}
	})

	s.pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		log.Debug("video connection state", "state", state.String())
	})

	return nil
}

func (s *Source) startSession() error {
	return s.writeJSON(map[string]string{
		"type":   "startSession",
		"peerId": s.producerID,
	})
}

func (s *Source) handleSignalling() {
	for !s.closed.Load() {
		_, msg, err := s.ws.ReadMessage()
		if err != nil {
			if !s.closed.Load() {
				log.Warn("video signalling error", "error", err)
			}
			return
		}

		var baseMsg struct {
			Type      string `json:"type"`
			SessionID string `json:"sessionId"`
		}
		json.Unmarshal(msg, &baseMsg)

		switch baseMsg.Type {
		case "sessionStarted":
			s.sessionID = baseMsg.SessionID
		case "peer":
			s.handlePeerMessage(msg)
		case "endSession":
			return
		}
	}
}

func (s *Source) handlePeerMessage(msg []byte) {
	var peerMsg struct {
		SDP *struct {
			Type string `json:"type"`
			SDP  string `json:"sdp"`
		} `json:"sdp"`
		ICE *struct {
			Candidate     string  `json:"candidate"`
			SDPMid        *string `json:"sdpMid"`
			SDPMLineIndex *uint16 `json:"sdpMLineIndex"`
		} `json:"ice"`
	}
	if err := json.Unmarshal(msg, &peerMsg); err != nil {
		log.Warn("bad peer message", "error", err)
		return
	}

	if peerMsg.SDP != nil && peerMsg.SDP.Type == "offer" {
		offer := webrtc.SessionDescription{
			Type: webrtc.SDPTypeOffer,
			SDP:  peerMsg.SDP.SDP,
		}
		if err := s.pc.SetRemoteDescription(offer); err != nil {
			log.Warn("set remote description failed", "error", err)
			return
		}

		answer, err := s.pc.CreateAnswer(nil)
		if err != nil {
			log.Warn("create answer failed", "error", err)
			return
		}
		if err := s.pc.SetLocalDescription(answer); err != nil {
			log.Warn("set local description failed", "error", err)
			return
		}
		s.sendSDP(answer)
	}

	if peerMsg.ICE != nil {
		s.pc.AddICECandidate(webrtc.ICECandidateInit{
			Candidate:     peerMsg.ICE.Candidate,
			SDPMid:        peerMsg.ICE.SDPMid,
			SDPMLineIndex: peerMsg.ICE.SDPMLineIndex,
		})
	}
}

func (s *Source) sendSDP(sdp webrtc.SessionDescription) {
	s.writeJSON(map[string]any{
		"type":      "peer",
		"sessionId": s.sessionID,
		"sdp": map[string]string{
			"type": sdp.Type.String(),
			"sdp":  sdp.SDP,
		},
	})
}

func (s *Source) sendICECandidate(candidate *webrtc.ICECandidate) {
	if s.sessionID == "" {
		return
	}
	init := candidate.ToJSON()
	s.writeJSON(map[string]any{
		"type":      "peer",
		"sessionId": s.sessionID,
		"ice": map[string]any{
			"candidate":     init.Candidate,
			"sdpMid":        init.SDPMid,
			"sdpMLineIndex": init.SDPMLineIndex,
		},
	})
}

func (s *Source) writeJSON(v any) error {
	s.wsMutex.Lock()
	defer s.wsMutex.Unlock()
	return s.ws.WriteJSON(v)
}

// consumeTrack accumulates H264 payload from RTP packets and decodes a
// frame at the decoder's rate limit.
func (s *Source) consumeTrack(track *webrtc.TrackRemote) {
	select {
	case s.trackReady <- struct{}{}:
	default:
	}

	var nalBuffer bytes.Buffer
	lastDecode := time.Now()

	for !s.closed.Load() {
		var pkt *rtp.Packet
		pkt, _, err := track.ReadRTP()
		if err != nil {
			return
		}
		nalBuffer.Write(pkt.Payload)

		if time.Since(lastDecode) > 100*time.Millisecond {
			if jpeg, err := s.decoder.DecodeNAL(nalBuffer.Bytes()); err == nil && jpeg != nil {
				s.frameMutex.Lock()
				s.latestFrame = jpeg
				s.frameMutex.Unlock()
			}
			nalBuffer.Reset()
			lastDecode = time.Now()
		}
	}
}

// Frame returns a copy of the latest decoded frame as JPEG bytes.
func (s *Source) Frame() ([]byte, error) {
	s.frameMutex.RLock()
	defer s.frameMutex.RUnlock()

	if s.latestFrame == nil {
		return nil, errors.New("video: no frame available")
	}

	out := make([]byte, len(s.latestFrame))
	copy(out, s.latestFrame)
	return out, nil
}

// WaitForFrame polls until a frame is available or the timeout passes.
func (s *Source) WaitForFrame(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if f, err := s.Frame(); err == nil {
			return f, nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil, errors.New("video: timeout waiting for frame")
}

// Read returns the latest frame both decoded and as JPEG, matching the
// local capture interface so the app can swap sources.
func (s *Source) Read() (frame.Frame, []byte, error) {
	encoded, err := s.Frame()
	if err != nil {
		return nil, nil, err
	}

	img, err := jpeg.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, nil, fmt.Errorf("video: decode frame: %w", err)
	}
	return frame.FromImage(img), encoded, nil
}

// Close tears down the peer connection and signalling socket. Safe to call
// more than once.
func (s *Source) Close() {
	if s.closed.Swap(true) {
		return
	}
	if s.pc != nil {
		s.pc.Close()
	}
	if s.ws != nil {
		s.ws.Close()
	}
}
