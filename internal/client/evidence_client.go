package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"veritas/ranking-service/internal/models"
)

// EvidenceClient queries one external evidence-search API. It implements
// service.EvidenceProvider; each instance covers one provider endpoint.
type EvidenceClient struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewEvidenceClient creates a client for one evidence provider
func NewEvidenceClient(name, baseURL, apiKey string, timeout time.Duration) *EvidenceClient {
	return &EvidenceClient{
		name:       name,
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name used in logs and metrics
func (c *EvidenceClient) Name() string {
	return c.name
}

// evidenceResponse is the provider's article list payload
type evidenceResponse struct {
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string  `json:"title"`
		URL         string  `json:"url"`
		PublishedAt *string `json:"publishedAt"`
		Description string  `json:"description"`
	} `json:"articles"`
}

// Search queries the provider for evidence about the claim. A non-200 status
// or malformed payload is an error; the aggregator treats it as zero results.
func (c *EvidenceClient) Search(ctx context.Context, claim string) ([]models.Citation, error) {
	params := url.Values{}
	params.Add("q", claim)
	params.Add("sortBy", "relevancy")
	if c.apiKey != "" {
		params.Add("apiKey", c.apiKey)
	}

	apiURL := fmt.Sprintf("%s/v2/everything?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build evidence request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call evidence provider %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("evidence provider %s returned error: %s - %s", c.name, resp.Status, string(body))
	}

	var payload evidenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode evidence response: %w", err)
	}

	citations := make([]models.Citation, 0, len(payload.Articles))
	for _, article := range payload.Articles {
		citation := models.Citation{
			SourceName:  article.Source.Name,
			Title:       article.Title,
			URL:         article.URL,
			Description: article.Description,
		}
		if article.PublishedAt != nil {
			if published, err := time.Parse(time.RFC3339, *article.PublishedAt); err == nil {
				citation.PublishedAt = &published
			}
		}
		citations = append(citations, citation)
	}
	return citations, nil
}
