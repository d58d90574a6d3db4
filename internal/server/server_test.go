package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/neuronpath/pkg/cache"
	"github.com/matzehuels/neuronpath/pkg/errors"
	"github.com/matzehuels/neuronpath/pkg/observability"
	"github.com/matzehuels/neuronpath/pkg/observability/prom"
	"github.com/matzehuels/neuronpath/pkg/pipeline"
)

const sampleBody = `{
	"name": "sst",
	"edges": [{"from": "a", "to": "b@L5"}, {"from": "b@L5", "to": "c"}],
	"linkers": [{"from": "a", "to": "c"}]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts, _ := newMetricsServer(t)
	return ts
}

func newMetricsServer(t *testing.T) (*httptest.Server, *prom.Metrics) {
	t.Helper()
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, log.New(io.Discard))
	metrics := prom.New(prometheus.NewRegistry())
	s := New(runner, metrics.Handler(), log.New(io.Discard), Config{MaxBodyBytes: 1 << 16})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, metrics
}

func post(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decodeJSON[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if _, err := uuid.Parse(resp.Header.Get(HeaderRequestID)); err != nil {
		t.Errorf("%s = %q, want a uuid", HeaderRequestID, resp.Header.Get(HeaderRequestID))
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)
	id := uuid.NewString()
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(HeaderRequestID, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(HeaderRequestID); got != id {
		t.Errorf("%s = %q, want %q", HeaderRequestID, got, id)
	}
}

func TestExpandAndCollapse(t *testing.T) {
	ts := newTestServer(t)

	resp, data := post(t, ts, "/v1/expand", sampleBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expand status = %d: %s", resp.StatusCode, data)
	}
	got := decodeJSON[forestResponse](t, data)
	if got.Forest != "(a (b@L5 c) c)" || got.Name != "sst" || got.GraphHash == "" {
		t.Errorf("expand = %+v", got)
	}

	resp, data = post(t, ts, "/v1/collapse", `{"name": "sst", "forest": "`+got.Forest+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("collapse status = %d: %s", resp.StatusCode, data)
	}
	edges := decodeJSON[edgesResponse](t, data)
	var pairs []string
	for _, e := range edges.Edges {
		pairs = append(pairs, e.From.Canonical()+">"+e.To.Canonical())
	}
	if diff := cmp.Diff([]string{"a>b@L5", "a>c", "b@L5>c"}, pairs); diff != "" {
		t.Errorf("collapse edges mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeAndDecode(t *testing.T) {
	ts := newTestServer(t)

	resp, data := post(t, ts, "/v1/encode", sampleBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("encode status = %d: %s", resp.StatusCode, data)
	}
	enc := decodeJSON[encodedResponse](t, data)
	if !strings.Contains(enc.Text, "ilxtr:hasLayer") {
		t.Errorf("encoded text %s does not mention the layer term", enc.Text)
	}

	raw, _ := json.Marshal(enc.Encoded)
	resp, data = post(t, ts, "/v1/decode", `{"name": "sst", "encoded": `+string(raw)+`}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("decode status = %d: %s", resp.StatusCode, data)
	}
	if got := decodeJSON[forestResponse](t, data).Forest; got != "(a (b@L5 c) c)" {
		t.Errorf("decode forest = %s", got)
	}
}

func TestDecomposeAndRecompose(t *testing.T) {
	ts := newTestServer(t)

	resp, data := post(t, ts, "/v1/decompose", sampleBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("decompose status = %d: %s", resp.StatusCode, data)
	}
	got := decodeJSON[chainsResponse](t, data)
	if len(got.Chains.Chains) != 1 || len(got.Chains.Linkers) != 1 {
		t.Fatalf("decompose = %+v", got.Chains)
	}

	body, _ := json.Marshal(got.Chains)
	resp, data = post(t, ts, "/v1/recompose", string(body))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recompose status = %d: %s", resp.StatusCode, data)
	}
	if n := len(decodeJSON[edgesResponse](t, data).Edges); n != 3 {
		t.Errorf("recompose returned %d edges, want 3", n)
	}
}

func TestRun(t *testing.T) {
	ts := newTestServer(t)
	resp, data := post(t, ts, "/v1/run", sampleBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("run status = %d: %s", resp.StatusCode, data)
	}
	var res pipeline.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	if res.Forest.String() != "(a (b@L5 c) c)" || res.Stats.ChainCount != 1 {
		t.Errorf("run = %s, %+v", res.Forest, res.Stats)
	}
}

func TestRenderDOT(t *testing.T) {
	ts := newTestServer(t)
	resp, data := post(t, ts, "/v1/render?format=dot", sampleBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("render status = %d: %s", resp.StatusCode, data)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("render body does not start with digraph: %.40s", data)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"bad json", "/v1/expand", `{"edges": [`, 400, errors.ErrCodeMalformedInput},
		{"unknown field", "/v1/expand", `{"edgez": []}`, 400, errors.ErrCodeMalformedInput},
		{"bad forest", "/v1/collapse", `{"forest": "(a (b"}`, 400, errors.ErrCodeMalformedInput},
		{"duplicate edge", "/v1/recompose", `{"chains": [["a", "b"]], "linkers": [{"from": "a", "to": "b"}]}`, 422, errors.ErrCodeDuplicateEdge},
		{"bad format", "/v1/render?format=pdf", sampleBody, 400, errors.ErrCodeInvalidFormat},
		{"bad layer term", "/v1/encode", `{"edges": [{"from": "a", "to": "b"}], "options": {"layer_term": "no spaces allowed"}}`, 400, errors.ErrCodeInvalidInput},
		{"layer term as region", "/v1/encode", `{"edges": [{"from": "ilxtr:hasLayer", "to": "b"}]}`, 400, errors.ErrCodeInvalidNode},
		{"custom layer term as region", "/v1/encode", `{"edges": [{"from": "a", "to": "ilxtr:inLayer@b"}], "options": {"layer_term": "ilxtr:inLayer"}}`, 400, errors.ErrCodeInvalidNode},
		{"too large", "/v1/expand", `{"name": "` + strings.Repeat("x", 1<<16) + `"}`, 400, errors.ErrCodeInvalidInput},
	}
	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := post(t, ts, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d: %s", resp.StatusCode, tt.status, data)
			}
			got := decodeJSON[errorBody](t, data)
			if got.Error.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", got.Error.Code, tt.code, got.Error.Message)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, metrics := newMetricsServer(t)
	metrics.Install()
	t.Cleanup(observability.Reset)

	post(t, ts, "/v1/expand", sampleBody)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{
		`neuronpath_operations_total{op="expand"} 1`,
		`neuronpath_http_requests_total{method="POST",route="/v1/expand",status="200"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

type httpRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (r *httpRecorder) OnRequest(context.Context, string, string) {}

func (r *httpRecorder) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, method+" "+route+" "+http.StatusText(status))
}

func TestHTTPHooksUseRoutePattern(t *testing.T) {
	rec := &httpRecorder{}
	observability.SetHTTPHooks(rec)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	post(t, ts, "/v1/expand", sampleBody)
	post(t, ts, "/v1/collapse", `{"forest": "("}`)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []string{"POST /v1/expand OK", "POST /v1/collapse Bad Request"}
	if diff := cmp.Diff(want, rec.routes); diff != "" {
		t.Errorf("hook routes mismatch (-want +got):\n%s", diff)
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	s := New(runner, nil, log.New(io.Discard), Config{Addr: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestHTTPHooksBoundUnmatchedPaths(t *testing.T) {
	rec := &httpRecorder{}
	observability.SetHTTPHooks(rec)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	for _, p := range []string{"/nope", "/other/" + uuid.NewString()} {
		resp, err := http.Get(ts.URL + p)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []string{"GET unmatched Not Found", "GET unmatched Not Found"}
	if diff := cmp.Diff(want, rec.routes); diff != "" {
		t.Errorf("hook routes mismatch (-want +got):\n%s", diff)
	}
}
