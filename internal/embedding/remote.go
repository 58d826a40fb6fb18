package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// RemoteExtractor calls a face-embedding sidecar over HTTP. The sidecar
// runs the detection model and responds with the normalized embedding of
// the largest detected face, or a no-face marker.
type RemoteExtractor struct {
	baseURL string
	client  *http.Client
}

// NewRemoteExtractor builds a client for the extractor service.
func NewRemoteExtractor(baseURL string, timeout time.Duration) *RemoteExtractor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteExtractor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name identifies the implementation in logs.
func (e *RemoteExtractor) Name() string {
	return "remote"
}

type embedResponse struct {
	Dim       int       `json:"dim"`
	Embedding []float64 `json:"embedding"`
	FaceFound bool      `json:"face_found"`
}

// Extract posts the image and decodes the embedding. Returns
// ErrNoFaceDetected when the sidecar found no face.
func (e *RemoteExtractor) Extract(ctx context.Context, image []byte) ([]float64, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed/face", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extractor request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read extractor response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extractor error (status %d): %s", resp.StatusCode, string(body))
	}

	var decoded embedResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode extractor response: %w", err)
	}
	if !decoded.FaceFound || len(decoded.Embedding) == 0 {
		return nil, ErrNoFaceDetected
	}
	if decoded.Dim > 0 && decoded.Dim != len(decoded.Embedding) {
		return nil, fmt.Errorf("extractor dim mismatch: header %d, vector %d", decoded.Dim, len(decoded.Embedding))
	}
	return decoded.Embedding, nil
}
