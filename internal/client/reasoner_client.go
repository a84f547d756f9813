package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"veritas/ranking-service/internal/models"
)

// ReasonerClient calls the AI reasoning API that turns a claim plus
// summarized citations into a structured verdict. It implements
// service.ClaimReasoner; the aggregator supplies the deterministic fallback
// when this call fails.
type ReasonerClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewReasonerClient creates a reasoner client with a fixed timeout
func NewReasonerClient(baseURL, apiKey string, timeout time.Duration) *ReasonerClient {
	return &ReasonerClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type reasonerRequest struct {
	Claim     string             `json:"claim"`
	Citations []reasonerCitation `json:"citations"`
}

type reasonerCitation struct {
	Source      string `json:"source"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Analyze submits the claim and citations and decodes the structured verdict
func (c *ReasonerClient) Analyze(ctx context.Context, claim string, citations []models.Citation) (*models.ReasonerVerdict, error) {
	request := reasonerRequest{Claim: claim}
	for _, citation := range citations {
		request.Citations = append(request.Citations, reasonerCitation{
			Source:      citation.SourceName,
			Title:       citation.Title,
			URL:         citation.URL,
			Description: citation.Description,
		})
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reasoner request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/v1/analyze", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build reasoner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call reasoner: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reasoner returned error: %s - %s", resp.Status, string(respBody))
	}

	var verdict models.ReasonerVerdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("failed to decode reasoner verdict: %w", err)
	}

	if verdict.AgreementRatio < 0 || verdict.AgreementRatio > 1 {
		return nil, fmt.Errorf("reasoner returned agreement ratio out of range: %f", verdict.AgreementRatio)
	}
	return &verdict, nil
}
