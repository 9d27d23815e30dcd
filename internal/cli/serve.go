package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pegtower/pkg/animate"
	"github.com/matzehuels/pegtower/pkg/buildinfo"
	"github.com/matzehuels/pegtower/pkg/cache"
	pegerrors "github.com/matzehuels/pegtower/pkg/errors"
	"github.com/matzehuels/pegtower/pkg/peg"
	"github.com/matzehuels/pegtower/pkg/render/sink"
)

const (
	// maxServeBlocks caps requests that skip strict validation; every block
	// adds frames to memory.
	maxServeBlocks = 100

	shutdownTimeout = 5 * time.Second

	// frameCacheTTL bounds how long an encoded frame outlives its last write.
	frameCacheTTL = 10 * time.Minute
)

// =============================================================================
// Run Store
// =============================================================================

// runSummary is the JSON view of a stored run.
type runSummary struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Blocks     int       `json:"blocks"`
	Seed       uint64    `json:"seed"`
	Iterations int       `json:"iterations"`
	Moves      int       `json:"moves"`
	Frames     int       `json:"frames"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	Solved     bool      `json:"solved"`
	Warning    string    `json:"warning,omitempty"`
}

type storedRun struct {
	summary runSummary
	frames  []animate.Frame
}

// runStore keeps finished runs in memory, evicting the oldest beyond max.
type runStore struct {
	mu    sync.RWMutex
	runs  map[uuid.UUID]*storedRun
	order []uuid.UUID
	max   int
}

func newRunStore(max int) *runStore {
	return &runStore{runs: make(map[uuid.UUID]*storedRun), max: max}
}

func (s *runStore) put(id uuid.UUID, r *storedRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[id] = r
	s.order = append(s.order, id)
	for len(s.order) > s.max {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *runStore) get(id uuid.UUID) (*storedRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	return r, ok
}

func (s *runStore) delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return false
	}
	delete(s.runs, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *runStore) list() []runSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]runSummary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.runs[id].summary)
	}
	return out
}

// =============================================================================
// Server
// =============================================================================

// server plays runs on request and serves their frames.
type server struct {
	cfg    Config
	store  *runStore
	frames cache.Cache
	logger *log.Logger
}

func newServer(cfg Config, logger *log.Logger) *server {
	return &server{
		cfg:    cfg,
		store:  newRunStore(cfg.Serve.MaxRuns),
		frames: cache.NewMemoryCache(cfg.Serve.CacheEntries),
		logger: logger,
	}
}

// encodeCached encodes frames of run in format, reusing an earlier encoding
// when one is cached. frame is -1 for whole-run encodings.
func (s *server) encodeCached(ctx context.Context, run *storedRun, frame int, format string, frames []animate.Frame) ([]byte, error) {
	speed := 1.0
	if frame < 0 {
		speed = s.cfg.Render.Speed
	}
	key := cache.FrameKey(run.summary.ID, frame, format, s.cfg.Render.Scale, speed)
	if data, ok, err := s.frames.Get(ctx, key); err == nil && ok {
		return data, nil
	}

	data, err := encode(format, frames, s.cfg.Render.Scale, speed)
	if err != nil {
		return nil, err
	}
	if err := s.frames.Set(ctx, key, data, frameCacheTTL); err != nil {
		s.logger.Warn("Caching frame failed", "run", run.summary.ID, "err", err)
	}
	return data, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Server", buildinfo.UserAgent()))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/runs", func(r chi.Router) {
		r.Post("/", s.createRun)
		r.Get("/", s.listRuns)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getRun)
			r.Delete("/", s.deleteRun)
			r.Get("/animation.gif", s.getAnimation)
			r.Get("/frames/{n}.{format}", s.getFrame)
		})
	})
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

// createRunRequest overrides config values per run. Absent fields keep the
// server configuration.
type createRunRequest struct {
	Blocks     *int    `json:"blocks"`
	Seed       *uint64 `json:"seed"`
	Iterations *int    `json:"iterations"`
	StepMS     *int    `json:"step_ms"`
	SlackMS    *int    `json:"slack_ms"`
	Strict     *bool   `json:"strict"`
}

func (req createRunRequest) apply(cfg Config) (Config, error) {
	if req.Blocks != nil {
		cfg.Blocks = *req.Blocks
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	if req.Iterations != nil {
		cfg.Iterations = *req.Iterations
	}
	if req.StepMS != nil {
		cfg.StepMS = *req.StepMS
	}
	if req.SlackMS != nil {
		cfg.SlackMS = *req.SlackMS
	}
	if req.Strict != nil {
		cfg.Strict = *req.Strict
	}
	if err := pegerrors.ValidateRange(pegerrors.ErrCodeInvalidBlockCount, "block count", cfg.Blocks, peg.MinBlocks, maxServeBlocks); err != nil {
		return cfg, err
	}
	if err := pegerrors.ValidateRange(pegerrors.ErrCodeInvalidInput, "iterations", cfg.Iterations, 0, 10*maxServeBlocks); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (s *server) createRun(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, pegerrors.Wrap(pegerrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	cfg, err := req.apply(s.cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := withLogger(r.Context(), s.logger)
	sess, err := newSession(ctx, cfg, true)
	if err != nil {
		writeError(w, err)
		return
	}
	frames, res, err := collectFrames(ctx, sess)
	if err != nil {
		writeError(w, err)
		return
	}

	id := uuid.New()
	run := &storedRun{
		summary: runSummary{
			ID:         id.String(),
			CreatedAt:  time.Now().UTC(),
			Blocks:     cfg.Blocks,
			Seed:       sess.seed,
			Iterations: res.Iterations,
			Moves:      res.Moves,
			Frames:     len(frames),
			ElapsedMS:  res.Elapsed.Milliseconds(),
			Solved:     res.Solved,
		},
		frames: frames,
	}
	if err := peg.ValidateCount(cfg.Blocks); err != nil {
		run.summary.Warning = pegerrors.UserMessage(err)
	}
	s.store.put(id, run)
	s.logger.Info("Run created", "id", id, "blocks", cfg.Blocks, "moves", res.Moves)

	w.Header().Set("Location", "/runs/"+id.String())
	writeJSON(w, http.StatusCreated, run.summary)
}

func (s *server) listRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.list())
}

func (s *server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run.summary)
}

func (s *server) deleteRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil || !s.store.delete(id) {
		writeError(w, pegerrors.New(pegerrors.ErrCodeNotFound, "run not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) getFrame(w http.ResponseWriter, r *http.Request) {
	run, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	format := chi.URLParam(r, "format")
	if err := sink.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	if format == sink.FormatGIF {
		writeError(w, pegerrors.New(pegerrors.ErrCodeInvalidFormat, "frames cannot be gif; use /runs/{id}/animation.gif"))
		return
	}

	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 0 || n >= len(run.frames) {
		writeError(w, pegerrors.New(pegerrors.ErrCodeNotFound, "frame %s not found (run has %d frames)", chi.URLParam(r, "n"), len(run.frames)))
		return
	}

	data, err := s.encodeCached(r.Context(), run, n, format, run.frames[n:n+1])
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, sink.ContentType(format), data)
}

func (s *server) getAnimation(w http.ResponseWriter, r *http.Request) {
	run, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := s.encodeCached(r.Context(), run, -1, sink.FormatGIF, run.frames)
	if err != nil {
		writeError(w, err)
		return
	}
	writeBody(w, sink.ContentType(sink.FormatGIF), data)
}

func (s *server) lookup(r *http.Request) (*storedRun, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, pegerrors.New(pegerrors.ErrCodeNotFound, "run not found")
	}
	run, ok := s.store.get(id)
	if !ok {
		return nil, pegerrors.New(pegerrors.ErrCodeNotFound, "run %s not found", id)
	}
	return run, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeBody(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	code := pegerrors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{Code: string(code), Message: pegerrors.UserMessage(err)})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code pegerrors.Code) int {
	switch code {
	case pegerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case pegerrors.ErrCodeInvalidInput, pegerrors.ErrCodeInvalidBlockCount, pegerrors.ErrCodeInvalidFormat,
		pegerrors.ErrCodeInvalidConfig, pegerrors.ErrCodeInvalidPeg:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// Serve Command
// =============================================================================

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve runs and their frames over HTTP",
		Long: `Start an HTTP server that plays runs on request and keeps them in memory.

Endpoints:
  POST   /runs                          create a run (JSON body overrides config)
  GET    /runs                          list runs
  GET    /runs/{id}                     run summary
  DELETE /runs/{id}                     forget a run
  GET    /runs/{id}/frames/{n}.{format} one frame as svg, png, pdf or json
  GET    /runs/{id}/animation.gif       every frame as an animated GIF`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", DefaultConfig().Serve.Addr, "listen address")
	return cmd
}

// runServe blocks until ctx is cancelled, then shuts the server down.
func runServe(ctx context.Context, cfg Config) error {
	logger := loggerFromContext(ctx)

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           newServer(cfg, logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	printInfo("Listening on %s", StyleHighlight.Render(cfg.Serve.Addr))
	printKeyValue("runs kept", strconv.Itoa(cfg.Serve.MaxRuns))
	printKeyValue("frame cache", strconv.Itoa(cfg.Serve.CacheEntries))
	printNewline()
	printNextStep("Create a run", "curl -X POST http://localhost"+cfg.Serve.Addr+"/runs")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return ctx.Err()
}
