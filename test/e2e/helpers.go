//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veritext/veritext/internal/api/handlers"
	"github.com/veritext/veritext/internal/openai"
	"github.com/veritext/veritext/internal/repository"
	"github.com/veritext/veritext/internal/server"
	"github.com/veritext/veritext/internal/service"
	"github.com/veritext/veritext/internal/testutil"
)

const (
	embeddingDims = 1536
	testAPIToken  = "vtx_e2e_token"
	testModel     = "text-embedding-3-small"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T             *testing.T
	Ctx           context.Context
	PostgresC     *testutil.PostgresContainer
	Pool          *pgxpool.Pool
	EmbeddingStub *httptest.Server
	ServerURL     string
	ServerCloser  func()
	HTTPClient    *http.Client
}

// SetupE2EEnv creates a full E2E test environment: a pgvector container, a
// stubbed embeddings API and the HTTP server wired against both.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	embeddingStub := newEmbeddingStub()

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, embeddingStub.URL, port)

	return &E2ETestEnv{
		T:             t,
		Ctx:           ctx,
		PostgresC:     pgC,
		Pool:          pool,
		EmbeddingStub: embeddingStub,
		ServerURL:     serverURL,
		ServerCloser:  serverCloser,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.EmbeddingStub != nil {
		e.EmbeddingStub.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, authToken)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, authToken)
}

// Delete performs a DELETE request
func (e *E2ETestEnv) Delete(path, authToken string) (*APIResponse, error) {
	return e.doRequest("DELETE", path, nil, authToken)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// newEmbeddingStub serves a minimal OpenAI-compatible embeddings endpoint.
// Vectors are a normalized bag of hashed words, so texts that share words
// land close together and disjoint texts are (near) orthogonal.
func newEmbeddingStub() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Input) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		type embeddingData struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]embeddingData, len(req.Input))
		for i, text := range req.Input {
			data[i] = embeddingData{
				Object:    "embedding",
				Embedding: StubEmbedding(text),
				Index:     i,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	})
	return httptest.NewServer(mux)
}

// StubEmbedding mirrors the vectors the stub endpoint produces.
func StubEmbedding(text string) []float32 {
	vec := make([]float32, embeddingDims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%embeddingDims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

// startServer starts the HTTP server wired against the stub embeddings API
func startServer(t *testing.T, pool *pgxpool.Pool, embeddingsURL string, port int) (string, func()) {
	contentRepo := repository.NewContentRepository(pool)

	embedder := openai.NewClientWithConfig(openai.Config{
		APIKey:              "test-key",
		BaseURL:             embeddingsURL,
		EmbeddingModel:      testModel,
		EmbeddingDimensions: embeddingDims,
	})

	contentSvc := service.NewContentService(contentRepo, embedder, testModel)
	searchSvc := service.NewSearchService(contentRepo, embedder)

	cfg := server.RouterConfig{
		APIToken:       testAPIToken,
		AllowedOrigins: []string{"https://chatgpt.com"},
		ContentHandler: handlers.NewContentHandler(contentSvc),
		SearchHandler:  handlers.NewSearchHandler(searchSvc),
		TopicsHandler:  handlers.NewTopicsHandler(contentSvc),
	}

	router := server.NewRouter(cfg)
	addr := fmt.Sprintf(":%d", port)

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
