package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/teslashibe/glitchmirror/pkg/mirror"
)

func TestStatusEndpointReportsViewers(t *testing.T) {
	s := NewServer("0")
	s.StatusFunc = func() mirror.Status {
		return mirror.Status{Palette: "phosphor", Cooldown: 7}
	}

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/status", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var body struct {
		Palette  string `json:"palette"`
		Cooldown int    `json:"cooldown"`
		Viewers  *int   `json:"viewers"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Palette != "phosphor" || body.Cooldown != 7 {
		t.Errorf("session fields not passed through: %+v", body)
	}
	if body.Viewers == nil {
		t.Fatal("viewers field missing from status response")
	}
	if *body.Viewers != 0 {
		t.Errorf("viewers = %d, want 0 with no connections", *body.Viewers)
	}
}

func TestStatusEndpointWithoutSession(t *testing.T) {
	s := NewServer("0")

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/status", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 503 {
		t.Errorf("status = %d, want 503 before the session runs", resp.StatusCode)
	}
}
