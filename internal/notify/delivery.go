package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"storefront/pkg/log"
)

// deliveryPath is the dispatch endpoint on the delivery order processor
const deliveryPath = "/api/OrderItemsDeliveryServiceRun"

// DeliveryNotification is the payload the delivery order processor expects.
// ShippingAddress is a single rendered shipping line, not a structured
// address.
type DeliveryNotification struct {
	ID              string         `json:"id"`
	ShippingAddress string         `json:"shippingAddress"`
	ListOfItems     map[string]int `json:"listOfItems"`
	FinalPrice      float64        `json:"finalPrice"`
}

// DeliveryClient notifies the delivery order processor after checkout
type DeliveryClient struct {
	baseURL string
	client  *http.Client
}

// NewDeliveryClient creates a delivery client. The HTTP client is shared and
// carries the outbound timeout.
func NewDeliveryClient(baseURL string, client *http.Client) *DeliveryClient {
	return &DeliveryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Dispatch posts the notification. The response body is read and discarded
// regardless of status; only transport failures are returned to the caller.
func (c *DeliveryClient) Dispatch(ctx context.Context, notification *DeliveryNotification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to encode delivery notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+deliveryPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build delivery request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivery dispatch failed: %w", err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("failed to read delivery response: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"notification_id": notification.ID,
		"status":          resp.StatusCode,
	}).Info("Delivery dispatch sent")

	return nil
}
