package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jhoicas/conecta-isp/internal/application/notify"
	"github.com/jhoicas/conecta-isp/pkg/config"
)

var _ notify.PushGateway = (*HTTPPushGateway)(nil)

// HTTPPushGateway envía notificaciones push vía el relay HTTP del proveedor.
type HTTPPushGateway struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTPPushGateway construye el gateway.
func NewHTTPPushGateway(cfg config.PushConfig) *HTTPPushGateway {
	return &HTTPPushGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SendPush entrega la notificación al dispositivo.
func (g *HTTPPushGateway) SendPush(ctx context.Context, deviceToken, title, content string) error {
	payload, err := json.Marshal(map[string]string{
		"token": deviceToken,
		"title": title,
		"body":  content,
	})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/push", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push relay respondió %d", resp.StatusCode)
	}
	return nil
}
