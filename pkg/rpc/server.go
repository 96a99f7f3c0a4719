package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DeckerSU/equihashverify/pkg/core/consensus"
	"github.com/DeckerSU/equihashverify/pkg/core/equihash"
	"github.com/sirupsen/logrus"
)

const (
	maxVerifyBody = 1 << 20
	maxBatchBody  = 32 << 20
	maxBatchItems = 4096
)

type Server struct {
	registry *consensus.Registry
	workers  int
	log      logrus.FieldLogger
	http     *http.Server
}

func NewServer(registry *consensus.Registry, workers int, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		registry: registry,
		workers:  workers,
		log:      log.WithField("component", "rpc"),
	}
}

// Handler returns the HTTP routes served by s.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/verify", s.handleVerify)
	mux.HandleFunc("/verify/batch", s.handleBatch)
	mux.HandleFunc("/params", s.handleParams)

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Equihash verifier running. Default: %s", s.registry.DefaultParams())
	})

	return mux
}

// Start listens on addr and blocks until the server stops.
// It returns nil after a Shutdown.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.WithField("addr", addr).Info("RPC server listening")

	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops a server started with Start, waiting for in-flight
// requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// POST /verify
// Body: {"header": hex, "solution": hex, "n": uint, "k": uint}
// n and k are optional and must be given together.
type VerifyRequest struct {
	Header   string  `json:"header"`
	Solution string  `json:"solution"`
	N        *uint32 `json:"n,omitempty"`
	K        *uint32 `json:"k,omitempty"`
}

type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// POST /verify/batch
// Body: {"n": uint, "k": uint, "items": [{"header": hex, "solution": hex}]}
type BatchRequest struct {
	N     *uint32     `json:"n,omitempty"`
	K     *uint32     `json:"k,omitempty"`
	Items []BatchItem `json:"items"`
}

type BatchItem struct {
	Header   string `json:"header"`
	Solution string `json:"solution"`
}

type BatchResponse struct {
	Valid []bool `json:"valid"`
}

// GET /params
type ParamsEntry struct {
	N                  uint32 `json:"n"`
	K                  uint32 `json:"k"`
	Default            bool   `json:"default"`
	CollisionBitLength uint32 `json:"collisionBitLength"`
	IndicesPerSolution uint32 `json:"indicesPerSolution"`
	IndexBitLength     uint32 `json:"indexBitLength"`
	HashOutput         uint32 `json:"hashOutput"`
	SolutionWidth      uint32 `json:"solutionWidth"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "only POST allowed", http.StatusMethodNotAllowed)
		return
	}

	var req VerifyRequest
	if !readJSON(w, r, maxVerifyBody, &req) {
		return
	}

	header, err := hex.DecodeString(req.Header)
	if err != nil {
		http.Error(w, "invalid header hex", http.StatusBadRequest)
		return
	}
	solution, err := hex.DecodeString(req.Solution)
	if err != nil {
		http.Error(w, "invalid solution hex", http.StatusBadRequest)
		return
	}

	v, ok := s.verifierFor(w, req.N, req.K)
	if !ok {
		return
	}

	valid, err := v.Verify(header, solution)
	if err != nil {
		s.log.WithError(err).Error("Verification failed")
		http.Error(w, fmt.Sprintf("verification failed: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, VerifyResponse{Valid: valid})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "only POST allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BatchRequest
	if !readJSON(w, r, maxBatchBody, &req) {
		return
	}
	if len(req.Items) > maxBatchItems {
		http.Error(w, fmt.Sprintf("too many items: %d > %d", len(req.Items), maxBatchItems), http.StatusBadRequest)
		return
	}

	candidates := make([]consensus.Candidate, len(req.Items))
	for i, item := range req.Items {
		header, err := hex.DecodeString(item.Header)
		if err != nil {
			http.Error(w, fmt.Sprintf("item %d: invalid header hex", i), http.StatusBadRequest)
			return
		}
		solution, err := hex.DecodeString(item.Solution)
		if err != nil {
			http.Error(w, fmt.Sprintf("item %d: invalid solution hex", i), http.StatusBadRequest)
			return
		}
		candidates[i] = consensus.Candidate{Header: header, Solution: solution}
	}

	v, ok := s.verifierFor(w, req.N, req.K)
	if !ok {
		return
	}

	set, err := consensus.NewBatchVerifier(v, s.workers).VerifyBatch(r.Context(), candidates)
	if err != nil {
		s.log.WithError(err).WithField("items", len(candidates)).Error("Batch verification failed")
		http.Error(w, fmt.Sprintf("verification failed: %v", err), http.StatusInternalServerError)
		return
	}

	resp := BatchResponse{Valid: make([]bool, len(candidates))}
	for i := range resp.Valid {
		resp.Valid[i] = set.Test(uint(i))
	}
	writeJSON(w, resp)
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "only GET allowed", http.StatusMethodNotAllowed)
		return
	}

	def := s.registry.DefaultParams()
	supported := equihash.SupportedParams()
	entries := make([]ParamsEntry, 0, len(supported))
	for _, p := range supported {
		entries = append(entries, ParamsEntry{
			N:                  p.N,
			K:                  p.K,
			Default:            p.Set == def.Set,
			CollisionBitLength: p.CollisionBitLength,
			IndicesPerSolution: p.IndicesPerSolution,
			IndexBitLength:     p.IndexBitLength,
			HashOutput:         p.HashOutput,
			SolutionWidth:      p.SolutionWidth,
		})
	}
	writeJSON(w, entries)
}

// verifierFor resolves the verifier named by an optional (n, k) pair,
// writing a 400 response and returning false if it cannot.
func (s *Server) verifierFor(w http.ResponseWriter, n, k *uint32) (consensus.PoWVerifier, bool) {
	var (
		v   consensus.PoWVerifier
		err error
	)
	switch {
	case n == nil && k == nil:
		v, err = s.registry.Default()
	case n == nil || k == nil:
		http.Error(w, "n and k must be given together", http.StatusBadRequest)
		return nil, false
	default:
		v, err = s.registry.Get(*n, *k)
	}

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, equihash.ErrUnsupportedParameters) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return nil, false
	}
	return v, true
}

func readJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
