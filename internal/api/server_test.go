package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/sceneplan/sceneplan/pkg/pipeline"
)

func testServer(t *testing.T, defaults pipeline.Options) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	srv := httptest.NewServer(NewServer(runner, nil, logger, defaults).Router())
	t.Cleanup(srv.Close)
	return srv
}

const createBody = `{
  "requests": [
    {"id": "title", "kind": "title", "width": 3, "height": 0.8, "time_window": {"start": 0, "end": 5}},
    {"id": "eq", "kind": "equation", "width": 2.5, "height": 1.2, "time_window": {"start": 1, "end": 8}}
  ],
  "options": {"canvas_width": 10.8, "canvas_height": 9.6}
}`

func createPlan(t *testing.T, srv *httptest.Server) planResponse {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/plans", "application/json", strings.NewReader(createBody))
	if err != nil {
		t.Fatalf("POST /v1/plans: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var created planResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return created
}

func TestHealthz(t *testing.T) {
	srv := testServer(t, pipeline.Options{})
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestCreateAndFetchPlan(t *testing.T) {
	srv := testServer(t, pipeline.Options{})
	created := createPlan(t, srv)

	if created.ID == uuid.Nil {
		t.Error("response missing id")
	}
	if created.Stats.Placed != 2 || created.Stats.Failed != 0 {
		t.Errorf("stats = %+v", created.Stats)
	}
	if created.Plan == nil || len(created.Plan.Entries) != 2 {
		t.Fatalf("plan = %+v", created.Plan)
	}

	resp, err := http.Get(srv.URL + "/v1/plans/" + created.ID.String())
	if err != nil {
		t.Fatalf("GET plan: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("fetch status = %d", resp.StatusCode)
	}
	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(body.String(), `"title"`) {
		t.Error("stored plan missing request data")
	}
}

func TestGetArtifact(t *testing.T) {
	srv := testServer(t, pipeline.Options{})
	created := createPlan(t, srv)

	resp, err := http.Get(srv.URL + "/v1/plans/" + created.ID.String() + "/artifacts/svg?t=2&grid=true")
	if err != nil {
		t.Fatalf("GET artifact: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("artifact status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(data, []byte("<svg")) {
		t.Error("artifact is not svg")
	}

	// Unsupported format.
	resp2, err := http.Get(srv.URL + "/v1/plans/" + created.ID.String() + "/artifacts/gif")
	if err != nil {
		t.Fatalf("GET gif: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Errorf("gif status = %d, want 400", resp2.StatusCode)
	}
}

func TestErrorEnvelopes(t *testing.T) {
	srv := testServer(t, pipeline.Options{})

	cases := []struct {
		name   string
		do     func() (*http.Response, error)
		status int
		code   string
	}{
		{
			name: "bad json",
			do: func() (*http.Response, error) {
				return http.Post(srv.URL+"/v1/plans", "application/json", strings.NewReader("{oops"))
			},
			status: http.StatusBadRequest,
			code:   "INVALID_REQUEST",
		},
		{
			name: "empty batch",
			do: func() (*http.Response, error) {
				return http.Post(srv.URL+"/v1/plans", "application/json", strings.NewReader(`{"requests": []}`))
			},
			status: http.StatusBadRequest,
			code:   "INVALID_REQUEST",
		},
		{
			name: "unknown plan",
			do: func() (*http.Response, error) {
				return http.Get(srv.URL + "/v1/plans/" + uuid.NewString())
			},
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
		{
			name: "malformed id",
			do: func() (*http.Response, error) {
				return http.Get(srv.URL + "/v1/plans/not-a-uuid")
			},
			status: http.StatusBadRequest,
			code:   "INVALID_REQUEST",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := tc.do()
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			var envelope errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if string(envelope.Error.Code) != tc.code {
				t.Errorf("code = %s, want %s", envelope.Error.Code, tc.code)
			}
		})
	}
}

func TestCreatePlanUsesServerDefaults(t *testing.T) {
	srv := testServer(t, pipeline.Options{
		CanvasWidth:  12,
		CanvasHeight: 7,
		Margin:       0.2,
	})

	body := `{"requests": [
	  {"id": "a", "kind": "text", "width": 2, "height": 1, "time_window": {"start": 0, "end": 5}}
	]}`
	resp, err := http.Post(srv.URL+"/v1/plans", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/plans: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body = %s", resp.StatusCode, raw)
	}

	var created planResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Plan.CanvasWidth != 12 || created.Plan.CanvasHeight != 7 {
		t.Errorf("canvas = %g x %g, want the configured defaults",
			created.Plan.CanvasWidth, created.Plan.CanvasHeight)
	}
	if created.Plan.Margin != 0.2 {
		t.Errorf("margin = %g, want 0.2", created.Plan.Margin)
	}

	// Explicit request options still win over the defaults.
	created2 := createPlan(t, srv)
	if created2.Plan.CanvasWidth != 10.8 {
		t.Errorf("explicit canvas width = %g", created2.Plan.CanvasWidth)
	}
}

func TestListPlans(t *testing.T) {
	srv := testServer(t, pipeline.Options{})
	createPlan(t, srv)

	resp, err := http.Get(srv.URL + "/v1/plans")
	if err != nil {
		t.Fatalf("GET /v1/plans: %v", err)
	}
	defer resp.Body.Close()
	var plans []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&plans); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(plans) != 1 {
		t.Errorf("list length = %d", len(plans))
	}
}
