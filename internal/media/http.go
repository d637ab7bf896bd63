package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPHost talks to a remote media service: signed multipart uploads to
// <base>/upload, downloads from <base>/<publicID>.
type HTTPHost struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client
	now       func() time.Time
}

func NewHTTPHost(baseURL, apiKey, apiSecret string, timeout time.Duration) *HTTPHost {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPHost{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    &http.Client{Timeout: timeout},
		now:       time.Now,
	}
}

type uploadResponse struct {
	PublicID string `json:"public_id"`
}

func (h *HTTPHost) Upload(ctx context.Context, data []byte) (string, error) {
	timestamp := strconv.FormatInt(h.now().Unix(), 10)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for field, value := range map[string]string{
		"api_key":   h.apiKey,
		"timestamp": timestamp,
		"signature": h.sign(timestamp),
	} {
		if err := form.WriteField(field, value); err != nil {
			return "", err
		}
	}
	part, err := form.CreateFormFile("file", "display-picture")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("media upload failed: status %d", resp.StatusCode)
	}
	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.PublicID == "" {
		return "", fmt.Errorf("media upload failed: empty public id")
	}
	return out.PublicID, nil
}

func (h *HTTPHost) Fetch(ctx context.Context, publicID string) ([]byte, error) {
	if publicID == "" {
		return nil, ErrNotFound
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/"+url.PathEscape(publicID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("media fetch failed: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (h *HTTPHost) sign(timestamp string) string {
	sum := sha1.Sum([]byte("timestamp=" + timestamp + h.apiSecret))
	return hex.EncodeToString(sum[:])
}
