package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/roach88/nlq/internal/rank"
)

// Embedder turns text into a vector for semantic ranking.
type Embedder interface {
	// Name identifies the embedder and its configuration. Vectors from
	// embedders with different names are not comparable.
	Name() string

	Embed(ctx context.Context, text string) ([]float32, error)
}

// DefaultDims is the vector size of the default hashing embedder.
const DefaultDims = 256

// HashingEmbedder is an offline embedder: it hashes word and character
// trigram features of the case-folded text into a fixed-size vector.
// Texts sharing words or word fragments get a positive cosine.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder creates a hashing embedder with dims buckets.
// dims <= 0 means DefaultDims.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultDims
	}
	return &HashingEmbedder{dims: dims}
}

// Name implements Embedder.
func (h *HashingEmbedder) Name() string {
	return fmt.Sprintf("hash/%d", h.dims)
}

// Embed implements Embedder. The result has unit length, or is all zeros
// for text without words.
func (h *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, h.dims)
	for _, w := range strings.Fields(rank.Fold(text)) {
		h.add(v, "w:"+w, 1)

		runes := []rune(" " + w + " ")
		for i := 0; i+3 <= len(runes); i++ {
			h.add(v, "g:"+string(runes[i:i+3]), 0.5)
		}
	}
	return rank.Normalize(v), nil
}

func (h *HashingEmbedder) add(v []float32, feature string, weight float32) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum64()

	// the top bit picks the sign so collisions tend to cancel out
	if sum>>63 == 1 {
		weight = -weight
	}
	v[sum%uint64(len(v))] += weight
}

// Ollama defaults.
const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "nomic-embed-text"
)

// ollamaEmbedReq is the Ollama /api/embed request body.
type ollamaEmbedReq struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// ollamaEmbedResp is the Ollama /api/embed response body.
type ollamaEmbedResp struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// OllamaEmbedder calls an Ollama server's /api/embed endpoint.
type OllamaEmbedder struct {
	url    string
	model  string
	client *http.Client
}

// NewOllamaEmbedder creates an embedder for the server at baseURL.
// Empty arguments fall back to DefaultOllamaURL and DefaultOllamaModel.
func NewOllamaEmbedder(baseURL, model string) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaEmbedder{
		url:   strings.TrimRight(baseURL, "/") + "/api/embed",
		model: model,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name implements Embedder.
func (o *OllamaEmbedder) Name() string {
	return "ollama/" + o.model
}

// Embed implements Embedder. Vectors are normalized to unit length.
func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(ollamaEmbedReq{
		Model: o.model,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed HTTP call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed service returned %d: %s", resp.StatusCode, string(body))
	}

	var ollamaResp ollamaEmbedResp
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return nil, fmt.Errorf("parse embed response: %w", err)
	}
	if len(ollamaResp.Embeddings) == 0 || len(ollamaResp.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("embed service returned empty vector")
	}

	return rank.Normalize(ollamaResp.Embeddings[0]), nil
}
