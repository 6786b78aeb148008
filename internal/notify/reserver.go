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

// reservationPath is the reservation endpoint on the order items reserver
const reservationPath = "/api/ReservationOfOrderItems"

// ReserverClient notifies the order items reserver after checkout
type ReserverClient struct {
	baseURL string
	client  *http.Client
}

// NewReserverClient creates a reserver client
func NewReserverClient(baseURL string, client *http.Client) *ReserverClient {
	return &ReserverClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Reserve posts the checked-out quantity mapping as raw JSON. The response
// is read and discarded regardless of status; only transport failures are
// returned.
func (c *ReserverClient) Reserve(ctx context.Context, items map[string]int) error {
	body, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode reservation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+reservationPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build reservation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("reservation failed: %w", err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("failed to read reservation response: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"lines":  len(items),
		"status": resp.StatusCode,
	}).Info("Reservation sent")

	return nil
}
