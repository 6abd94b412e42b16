package assets

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTP fetches absolute URLs. No retries: the logo is best-effort.
type HTTP struct {
	client *resty.Client
}

func NewHTTP(timeout time.Duration) *HTTP {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "image/*")
	return &HTTP{client: client}
}

func (h *HTTP) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := h.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch logo: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.IsError():
		return nil, fmt.Errorf("fetch logo: status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}
