package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/damilare-ade/vendor-ledger/internal/logging"
)

// Stand-in for the external media-storage service: accepts multipart
// uploads, stores them on disk, and serves them back by URL.
func main() {
	logging.Init("mock-media", "info", os.Getenv("APP_ENV"))

	dir := os.Getenv("MEDIA_DIR")
	if dir == "" {
		dir = "/tmp/mock-media"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("failed to create media dir", "error", err)
		os.Exit(1)
	}

	baseURL := os.Getenv("MEDIA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})

	mux.HandleFunc("POST /upload", func(w http.ResponseWriter, r *http.Request) {
		src, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file part required", http.StatusBadRequest)
			return
		}
		defer src.Close()

		name := uuid.NewString() + filepath.Ext(header.Filename)
		dst, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			slog.Error("failed to create file", "error", err)
			http.Error(w, "storage failure", http.StatusInternalServerError)
			return
		}
		defer dst.Close()

		if _, err := io.Copy(dst, src); err != nil {
			slog.Error("failed to store file", "error", err)
			http.Error(w, "storage failure", http.StatusInternalServerError)
			return
		}

		slog.Info("file stored", "name", name, "original", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(map[string]string{
			"url": fmt.Sprintf("%s/files/%s", baseURL, name),
		}); err != nil {
			slog.Error("failed to write upload response", "error", err)
		}
	})

	mux.Handle("GET /files/", http.StripPrefix("/files/", http.FileServer(http.Dir(dir))))

	slog.Info("mock media service started", "addr", ":8081", "dir", dir)
	if err := http.ListenAndServe(":8081", mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
