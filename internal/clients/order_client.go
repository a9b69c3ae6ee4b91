package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tm-acme-shop/smartfold-composer/internal/config"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
	"go.uber.org/zap"
)

// CreatedOrder is the part of the backend's order response the composer
// cares about.
type CreatedOrder struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// APIError is returned for non-2xx responses. Message carries the backend's
// error text when it sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("order service returned status %d: %s", e.StatusCode, e.Message)
}

// HTTPOrderClient creates orders through the REST backend.
type HTTPOrderClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *zap.Logger
}

// NewHTTPOrderClient creates a new HTTP-based order client.
func NewHTTPOrderClient(cfg config.ServiceConfig, logger *zap.Logger) *HTTPOrderClient {
	return &HTTPOrderClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// CreateOrder posts payload to /api/orders.
func (c *HTTPOrderClient) CreateOrder(ctx context.Context, payload *models.OrderPayload) (*CreatedOrder, error) {
	c.logger.Debug("Creating order",
		zap.Int("items", len(payload.Items)),
		zap.Int64("total", payload.Total),
	)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/orders", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Order request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
		c.logger.Error("Order request returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return nil, apiErr
	}

	var result CreatedOrder
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && err != io.EOF {
		return nil, err
	}

	c.logger.Info("Order created",
		zap.Int64("order_id", result.ID),
		zap.String("status", result.Status),
	)
	return &result, nil
}

func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		return body.Message
	}
	return strings.TrimSpace(string(data))
}

func (c *HTTPOrderClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
