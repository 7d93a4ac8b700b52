package landmark

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPProvider_Detect(t *testing.T) {
	frame := []byte("jpeg-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Expected Bearer test-key, got %s", auth)
		}

		var req detectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil || string(decoded) != string(frame) {
			t.Errorf("image payload: got %q, want %q", decoded, frame)
		}

		json.NewEncoder(w).Encode(detectResponse{
			Faces: []Face{{Box: Box{Width: 100, Height: 120}, Yaw: 5, Confidence: 0.9}},
		})
	}))
	defer server.Close()

	p := NewHTTP(server.URL, "test-key")
	faces, err := p.Detect(context.Background(), frame)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(faces) != 1 {
		t.Fatalf("faces: got %d, want 1", len(faces))
	}
	if faces[0].Box.Width != 100 || faces[0].Yaw != 5 {
		t.Errorf("face: got %+v", faces[0])
	}
}

func TestHTTPProvider_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(detectResponse{Error: "model not loaded"})
	}))
	defer server.Close()

	p := NewHTTP(server.URL, "")
	if _, err := p.Detect(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected an error when the service reports one")
	}
}

func TestHTTPProvider_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewHTTP(server.URL, "")
	if _, err := p.Detect(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected an error on a non-200 status")
	}
}
