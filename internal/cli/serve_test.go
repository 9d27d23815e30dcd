package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pegtower/pkg/cache"
	pegerrors "github.com/matzehuels/pegtower/pkg/errors"
)

func newTestServer(t *testing.T, mutate func(*Config)) *httptest.Server {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	srv := httptest.NewServer(newServer(cfg, newLogger(&bytes.Buffer{}, log.InfoLevel)).routes())
	t.Cleanup(srv.Close)
	return srv
}

func createRun(t *testing.T, srv *httptest.Server, body string) (*http.Response, runSummary) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/runs", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var sum runSummary
	if resp.StatusCode == http.StatusCreated {
		if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
			t.Fatal(err)
		}
	}
	return resp, sum
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServeCreateRun(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, sum := createRun(t, srv, `{"blocks": 3, "seed": 42}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if _, err := uuid.Parse(sum.ID); err != nil {
		t.Errorf("id %q is not a uuid", sum.ID)
	}
	if resp.Header.Get("Location") != "/runs/"+sum.ID {
		t.Errorf("Location = %q", resp.Header.Get("Location"))
	}
	if sum.Blocks != 3 || sum.Seed != 42 || sum.Frames == 0 || sum.Warning != "" {
		t.Errorf("summary = %+v", sum)
	}

	got := get(t, srv.URL+"/runs/"+sum.ID)
	if got.StatusCode != http.StatusOK {
		t.Fatalf("GET run status = %d", got.StatusCode)
	}
	var again runSummary
	if err := json.NewDecoder(got.Body).Decode(&again); err != nil {
		t.Fatal(err)
	}
	if again.ID != sum.ID || again.Moves != sum.Moves {
		t.Errorf("GET run = %+v, want %+v", again, sum)
	}
}

func TestServeEmptyBodyUsesConfig(t *testing.T) {
	srv := newTestServer(t, func(c *Config) { c.Blocks = 4 })

	resp, sum := createRun(t, srv, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if sum.Blocks != 4 {
		t.Errorf("blocks = %d, want config value 4", sum.Blocks)
	}
}

func TestServeCreateRunValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"strict rejects 11", `{"blocks": 11, "strict": true}`, http.StatusBadRequest, "INVALID_BLOCK_COUNT"},
		{"strict rejects -1", `{"blocks": -1, "strict": true}`, http.StatusBadRequest, "INVALID_BLOCK_COUNT"},
		{"too many blocks", `{"blocks": 101}`, http.StatusBadRequest, "INVALID_BLOCK_COUNT"},
		{"bad json", `{"blocks":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"zero step", `{"step_ms": 0}`, http.StatusBadRequest, "INVALID_CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/runs", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var e errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
				t.Fatal(err)
			}
			if e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}
}

func TestServeOutOfRangeWarns(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, sum := createRun(t, srv, `{"blocks": 11, "seed": 1}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if sum.Warning == "" {
		t.Error("out-of-range run should carry a warning")
	}
}

func TestServeFrames(t *testing.T) {
	srv := newTestServer(t, nil)
	_, sum := createRun(t, srv, `{"blocks": 3, "seed": 42}`)
	base := srv.URL + "/runs/" + sum.ID

	tests := []struct {
		path        string
		wantStatus  int
		contentType string
	}{
		{"/frames/0.svg", http.StatusOK, "image/svg+xml"},
		{"/frames/1.png", http.StatusOK, "image/png"},
		{"/frames/0.json", http.StatusOK, "application/json"},
		{"/animation.gif", http.StatusOK, "image/gif"},
		{"/frames/999.svg", http.StatusNotFound, "application/json"},
		{"/frames/x.svg", http.StatusNotFound, "application/json"},
		{"/frames/0.gif", http.StatusBadRequest, "application/json"},
		{"/frames/0.bmp", http.StatusBadRequest, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := get(t, base+tt.path)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
		})
	}
}

func TestServeUnknownRun(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		for _, path := range []string{"/runs/" + id, "/runs/" + id + "/frames/0.svg", "/runs/" + id + "/animation.gif"} {
			if resp := get(t, srv.URL+path); resp.StatusCode != http.StatusNotFound {
				t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
			}
		}
	}
}

func TestServeDeleteAndList(t *testing.T) {
	srv := newTestServer(t, func(c *Config) { c.Serve.MaxRuns = 2 })

	var ids []string
	for i := 0; i < 3; i++ {
		_, sum := createRun(t, srv, `{"blocks": 2}`)
		ids = append(ids, sum.ID)
	}

	var list []runSummary
	if err := json.NewDecoder(get(t, srv.URL+"/runs").Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != ids[1] || list[1].ID != ids[2] {
		t.Fatalf("list = %+v, want the two newest runs", list)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/runs/"+ids[1], nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", resp.StatusCode)
	}
	if resp := get(t, srv.URL+"/runs/"+ids[1]); resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted run status = %d, want 404", resp.StatusCode)
	}
}

func TestServeHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Server"), "pegtower/") {
		t.Errorf("Server header = %q", resp.Header.Get("Server"))
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"INVALID_FORMAT", http.StatusBadRequest},
		{"INVALID_BLOCK_COUNT", http.StatusBadRequest},
		{"INTERNAL_ERROR", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(pegerrors.Code(tt.code)); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestServeCachesEncodedFrames(t *testing.T) {
	s := newServer(DefaultConfig(), newLogger(&bytes.Buffer{}, log.InfoLevel))
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	_, sum := createRun(t, srv, `{"blocks": 3, "seed": 5}`)
	first := get(t, srv.URL+"/runs/"+sum.ID+"/frames/2.svg")
	second := get(t, srv.URL+"/runs/"+sum.ID+"/frames/2.svg")
	if first.StatusCode != http.StatusOK || second.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, %d", first.StatusCode, second.StatusCode)
	}
	if first.ContentLength != second.ContentLength {
		t.Errorf("cached frame differs in size: %d vs %d", first.ContentLength, second.ContentLength)
	}

	mc, ok := s.frames.(*cache.MemoryCache)
	if !ok {
		t.Fatalf("frames cache is %T, want *cache.MemoryCache", s.frames)
	}
	if mc.Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", mc.Len())
	}
}
