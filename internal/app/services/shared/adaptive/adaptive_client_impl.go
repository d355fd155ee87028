// Package adaptive is the HTTP client for the optional locator-suggestion
// collaborator the element resolver consults as its last strategy.
package adaptive

import (
	"bytes"
	"context"
	"fmt"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/exceptions"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

type adaptiveClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewAdaptiveClient returns nil when the collaborator is disabled; the
// resolver treats a nil client as "no adaptive tier".
func NewAdaptiveClient(internalConfig *config.InternalConfig) contracts.AdaptiveLocatorClient {
	if !internalConfig.Adaptive.Enabled {
		return nil
	}
	return &adaptiveClient{
		BaseURL: internalConfig.Adaptive.BaseURL,
		APIKey:  internalConfig.Adaptive.APIKey,
		HTTPClient: &http.Client{
			Timeout: time.Duration(internalConfig.Adaptive.TimeoutSeconds) * time.Second,
		},
	}
}

func (c *adaptiveClient) SuggestLocator(ctx context.Context, request *contracts.AdaptiveLookupRequest) (*contracts.AdaptiveLookupResult, error) {
	requestJSON, err := json.Marshal(request)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/locators/suggest", c.BaseURL), bytes.NewBuffer(requestJSON))
	if err != nil {
		return nil, err
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	req.Header.Set(constvars.HeaderXAPIKey, c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		return nil, fmt.Errorf("adaptive locator service returned status %d", resp.StatusCode)
	}

	result := new(contracts.AdaptiveLookupResult)
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, err
	}
	return result, nil
}
