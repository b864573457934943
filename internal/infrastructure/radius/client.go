// Package radius implementa el cliente HTTP del servicio de control RADIUS
// (radius-ctl) que traduce altas, suspensiones y bajas a la base del NAS.
package radius

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jhoicas/conecta-isp/internal/application/provisioning"
	"github.com/jhoicas/conecta-isp/internal/domain"
	"github.com/jhoicas/conecta-isp/pkg/config"
)

var _ provisioning.RadiusClient = (*Client)(nil)

// Client cliente HTTP del servicio radius-ctl. Todos los fallos (red, timeout,
// respuesta no-2xx) se devuelven envueltos en domain.ErrAdapterFailure para
// que el coordinador los trate como abortables/reintentables.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient construye el cliente con el timeout de la configuración.
func NewClient(cfg config.RadiusConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type provisionPayload struct {
	Username     string `json:"username"`
	Profile      string `json:"profile"`
	DownloadKbps int    `json:"download_kbps"`
	UploadKbps   int    `json:"upload_kbps"`
	StaticIP     string `json:"static_ip,omitempty"`
	Vlan         int    `json:"vlan,omitempty"`
	Suspended    bool   `json:"suspended"`
}

// Provision da de alta la sesión del abonado en el NAS.
func (c *Client) Provision(ctx context.Context, req provisioning.ProvisionRequest) error {
	return c.post(ctx, "/subscribers", payloadFrom(req))
}

// Reprovision reaplica el perfil de una sesión existente. El servidor lo trata
// como upsert, por lo que repetirlo es inocuo.
func (c *Client) Reprovision(ctx context.Context, req provisioning.ProvisionRequest) error {
	return c.post(ctx, "/subscribers/"+url.PathEscape(req.Username)+"/reprovision", payloadFrom(req))
}

// Deprovision elimina la sesión del abonado del NAS.
func (c *Client) Deprovision(ctx context.Context, username string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/subscribers/"+url.PathEscape(username), nil)
	if err != nil {
		return fmt.Errorf("%w: build radius request: %v", domain.ErrAdapterFailure, err)
	}
	return c.do(httpReq)
}

func payloadFrom(req provisioning.ProvisionRequest) provisionPayload {
	return provisionPayload{
		Username:     req.Username,
		Profile:      req.Profile,
		DownloadKbps: req.DownloadKbps,
		UploadKbps:   req.UploadKbps,
		StaticIP:     req.StaticIP,
		Vlan:         req.Vlan,
		Suspended:    req.Suspended,
	}
}

func (c *Client) post(ctx context.Context, path string, payload provisionPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal radius payload: %v", domain.ErrAdapterFailure, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build radius request: %v", domain.ErrAdapterFailure, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return c.do(httpReq)
}

func (c *Client) do(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: radius request: %v", domain.ErrAdapterFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: radius respondió %d", domain.ErrAdapterFailure, resp.StatusCode)
	}
	return nil
}
