// Package notification implementa los gateways concretos de SMS, email y push
// detrás de los puertos del despachador de notificaciones.
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

var _ notify.SMSGateway = (*HTTPSMSGateway)(nil)

// HTTPSMSGateway envía SMS vía el gateway HTTP del agregador.
type HTTPSMSGateway struct {
	baseURL string
	apiKey  string
	sender  string
	http    *http.Client
}

// NewHTTPSMSGateway construye el gateway.
func NewHTTPSMSGateway(cfg config.SMSConfig) *HTTPSMSGateway {
	return &HTTPSMSGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		sender:  cfg.Sender,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SendSMS entrega el mensaje al agregador.
func (g *HTTPSMSGateway) SendSMS(ctx context.Context, to, content string) error {
	payload, err := json.Marshal(map[string]string{
		"from": g.sender,
		"to":   to,
		"text": content,
	})
	if err != nil {
		return fmt.Errorf("marshal sms payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sms gateway respondió %d", resp.StatusCode)
	}
	return nil
}
