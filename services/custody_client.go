// bounty-marketplace-system/services/custody_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"bounty-marketplace-system/engine"
	"bounty-marketplace-system/utils"
)

// CustodyClient is the transfer mechanism behind settlements: one HTTP call
// per settlement carrying the whole batch, which the custody service
// executes all-or-nothing. A non-2xx response (or transport failure) makes
// the engine abort the transition.
type CustodyClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

var _ engine.Transferer = (*CustodyClient)(nil)

func NewCustodyClient() *CustodyClient {
	baseURL := os.Getenv("CUSTODY_SERVICE_URL")
	if baseURL == "" {
		log.Fatal("CUSTODY_SERVICE_URL environment variable is required")
	}
	token := os.Getenv("BOUNTY_SERVICE_TOKEN")
	if token == "" {
		log.Fatal("BOUNTY_SERVICE_TOKEN environment variable is required for custody transfers")
	}
	return &CustodyClient{
		BaseURL: baseURL,
		Token:   token,
		Client:  utils.HTTPClient,
	}
}

// Execute posts the settlement batch to the custody service.
func (c *CustodyClient) Execute(ctx context.Context, bountyID uint32, transfers []engine.TransferRequest) ([]engine.TransferResult, error) {
	reqBody := map[string]interface{}{
		"bounty_id": bountyID,
		"atomic":    true,
		"transfers": transfers,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transfer batch: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/internal/transfers", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call custody service: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode != http.StatusOK {
		log.Printf("CustodyService /transfers returned %d for bounty #%d: %s", resp.StatusCode, bountyID, string(body))
		return nil, fmt.Errorf("custody transfer failed: %d", resp.StatusCode)
	}

	var out struct {
		Results []engine.TransferResult `json:"results"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode custody response: %w", err)
	}
	return out.Results, nil
}
