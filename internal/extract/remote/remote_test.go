package remote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/authentix/internal/common"
)

func TestExtract_Success(t *testing.T) {
	sample := []byte("raw-image-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/extract" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		decoded, _ := base64.StdEncoding.DecodeString(req.Sample)
		if string(decoded) != string(sample) {
			t.Errorf("sample mangled in transit: %q", decoded)
		}
		json.NewEncoder(w).Encode(extractResponse{Vector: []float32{1, 2, 3}})
	}))
	defer srv.Close()

	e := New(srv.URL, 3)
	vec, err := e.Extract(context.Background(), sample)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if len(vec) != 3 || vec[0] != 1 {
		t.Fatalf("unexpected vector: %v", vec)
	}
}

func TestExtract_ModelFailureReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(extractResponse{Error: "no face detected"})
	}))
	defer srv.Close()

	e := New(srv.URL, 3)
	_, err := e.Extract(context.Background(), []byte("x"))
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("want ErrExtraction, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "no face detected") {
		t.Fatalf("reason should be preserved, got %q", got)
	}
}

func TestExtract_DimensionMismatchFromModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractResponse{Vector: []float32{1, 2}})
	}))
	defer srv.Close()

	e := New(srv.URL, 3)
	_, err := e.Extract(context.Background(), []byte("x"))
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("want ErrExtraction, got %v", err)
	}
}

func TestExtract_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	e := New(srv.URL, 3, WithTimeout(20*time.Millisecond))
	_, err := e.Extract(context.Background(), []byte("x"))
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("timeout must surface as ErrExtraction, got %v", err)
	}
}

func TestExtract_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	e := New(srv.URL, 3)
	_, err := e.Extract(ctx, []byte("x"))
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("cancellation must surface as ErrExtraction, got %v", err)
	}
}
