// Package eligibility is the HTTP client for the external eligibility oracle.
package eligibility

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

type eligibilityClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewEligibilityClient(internalConfig *config.InternalConfig) contracts.EligibilityClient {
	return &eligibilityClient{
		BaseURL: internalConfig.Eligibility.BaseURL,
		APIKey:  internalConfig.Eligibility.APIKey,
		HTTPClient: &http.Client{
			Timeout: time.Duration(internalConfig.Eligibility.TimeoutSeconds) * time.Second,
		},
	}
}

func (c *eligibilityClient) Verify(ctx context.Context, request *contracts.EligibilityRequest) (*contracts.EligibilityResult, error) {
	requestJSON, err := json.Marshal(request)
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/coverage/verify", c.BaseURL), bytes.NewBuffer(requestJSON))
	if err != nil {
		return nil, exceptions.ErrOracleUnavailable(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	req.Header.Set(constvars.HeaderXAPIKey, c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, exceptions.ErrOracleUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		return nil, exceptions.ErrOracleBadResponse(fmt.Errorf("status %d", resp.StatusCode))
	}

	result := new(contracts.EligibilityResult)
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, exceptions.ErrOracleBadResponse(err)
	}
	return result, nil
}
