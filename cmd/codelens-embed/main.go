// Command codelens-embed is a standalone HTTP embedding sidecar. It speaks
// the same subprocess+HTTP contract the teacher's cortex-embed binary
// does (health check on GET /healthz, batch embedding on POST /embed), but
// generates deterministic hash-derived vectors in pure Go instead of
// running a local Python/ONNX model — a reference implementation, not a
// production embedding backend.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

const defaultDimensions = 384

type embedRequest struct {
	Texts []string `json:"texts"`
	Mode  string   `json:"mode"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func main() {
	addr := flag.String("addr", "127.0.0.1:8089", "address to listen on")
	dimensions := flag.Int("dimensions", defaultDimensions, "embedding vector width")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/embed", handleEmbed(*dimensions))

	srv := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("codelens-embed listening on %s (dimensions=%d)", *addr, *dimensions)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("codelens-embed: %v", err)
	}
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func handleEmbed(dimensions int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		embeddings := make([][]float32, len(req.Texts))
		for i, text := range req.Texts {
			embeddings[i] = hashVector(req.Mode+":"+text, dimensions)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: embeddings})
	}
}

// hashVector derives a deterministic vector from text so the same input
// always embeds to the same point, without needing a real model. Each
// component is a 4-byte window of one sha256 digest mapped into [-1, 1];
// the vector is not normalized.
func hashVector(text string, dimensions int) []float32 {
	hash := sha256.Sum256([]byte(text))
	vec := make([]float32, dimensions)
	for j := 0; j < dimensions; j++ {
		offset := (j * 4) % len(hash)
		val := binary.BigEndian.Uint32(hash[offset : offset+4])
		vec[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
	}
	return vec
}
