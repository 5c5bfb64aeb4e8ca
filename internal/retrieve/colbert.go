package retrieve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultColbertEndpoint is the public ColBERTv2/PLAID index of the
// Wikipedia corpus published alongside the DSP project
// (https://github.com/stanfordnlp/dsp).
const DefaultColbertEndpoint = "http://index.contextual.ai:8893/api/search"

const defaultTopK = 10

// ColbertRetriever queries a remote ColBERTv2 passage-retrieval
// endpoint, used for the HotpotQA fullwiki setting.
type ColbertRetriever struct {
	Endpoint string
	TopK     int
	Client   *http.Client
}

// Retrieve performs a blocking GET against the endpoint and returns
// the ranked topk passages.
func (r *ColbertRetriever) Retrieve(ctx context.Context, query string) ([]Node, error) {
	if r == nil {
		return nil, errors.New("retrieve: nil colbert retriever")
	}
	if ctx == nil {
		return nil, errors.New("retrieve: nil context")
	}

	endpoint := strings.TrimSpace(r.Endpoint)
	if endpoint == "" {
		endpoint = DefaultColbertEndpoint
	}
	topK := r.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	u := fmt.Sprintf("%s?query=%s&top_k=%d", endpoint, url.QueryEscape(query), topK)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve: colbert request: %w", err)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieve: colbert query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retrieve: colbert query: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("retrieve: colbert response: %w", err)
	}

	ranked := gjson.GetBytes(body, "topk")
	if !ranked.Exists() || !ranked.IsArray() {
		return nil, errors.New("retrieve: colbert response missing topk list")
	}

	var nodes []Node
	ranked.ForEach(func(_, item gjson.Result) bool {
		nodes = append(nodes, Node{
			Text:  item.Get("text").String(),
			Score: item.Get("score").Float(),
		})
		return true
	})
	return nodes, nil
}
