package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/damilare-ade/vendor-ledger/internal/logging"
)

// MediaClient talks to the external media-storage service. The service is
// consumed only as upload(file) -> URL; the returned reference is what gets
// persisted on the vendor row.
type MediaClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewMediaClient(baseURL string) *MediaClient {
	return &MediaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadFile streams the file at path to the media service and returns the
// public URL. The caller owns the file and its cleanup.
func (c *MediaClient) UploadFile(ctx context.Context, path, filename string) (string, error) {
	log := logging.FromContext(ctx)

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("UploadFile: open: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		return "", fmt.Errorf("UploadFile: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("UploadFile: send: %w", err)
	}
	defer resp.Body.Close()

	log.Info("media upload completed",
		"status", resp.StatusCode,
		"filename", filename,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("UploadFile: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("UploadFile: decode: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("UploadFile: media service returned empty url")
	}

	return out.URL, nil
}
