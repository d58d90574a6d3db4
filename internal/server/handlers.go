package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matzehuels/neuronpath/pkg/chain"
	perrors "github.com/matzehuels/neuronpath/pkg/errors"
	"github.com/matzehuels/neuronpath/pkg/graph"
	pio "github.com/matzehuels/neuronpath/pkg/io"
	"github.com/matzehuels/neuronpath/pkg/pipeline"
	"github.com/matzehuels/neuronpath/pkg/rdflist"
	"github.com/matzehuels/neuronpath/pkg/render"
)

// pathRequest is the body of every endpoint that starts from edges.
type pathRequest struct {
	Name    string            `json:"name,omitempty"`
	Edges   []pipeline.Edge   `json:"edges"`
	Linkers []pipeline.Edge   `json:"linkers,omitempty"`
	Options *pipeline.Options `json:"options,omitempty"`
}

// path validates the request and returns it as a named path. Regions may
// not collide with the layer term of opts.
func (req pathRequest) path(opts pipeline.Options) (pipeline.Path, error) {
	p := pipeline.Path{Name: req.Name, Edges: req.Edges, Linkers: req.Linkers}
	if p.Name == "" {
		p.Name = pio.DefaultPathName
	}
	ps := pio.PathSet{Paths: []pipeline.Path{p}}
	return p, ps.Validate(opts.LayerTerm)
}

func (s *Server) options(o *pipeline.Options) pipeline.Options {
	if o == nil {
		return s.cfg.Defaults
	}
	return *o
}

type forestResponse struct {
	Name      string `json:"name"`
	GraphHash string `json:"graph_hash,omitempty"`
	Forest    string `json:"forest"`
	Cached    bool   `json:"cached"`
}

type edgesResponse struct {
	Name  string          `json:"name"`
	Edges []pipeline.Edge `json:"edges"`
}

type encodedResponse struct {
	Name      string       `json:"name"`
	GraphHash string       `json:"graph_hash"`
	Encoded   rdflist.Cell `json:"encoded"`
	Text      string       `json:"text"`
	Cached    bool         `json:"cached"`
}

type chainsResponse struct {
	Name      string                            `json:"name"`
	GraphHash string                            `json:"graph_hash"`
	Chains    chain.Decomposition[pipeline.Key] `json:"decomposition"`
	Cached    bool                              `json:"cached"`
}

type errorBody struct {
	Error struct {
		Code    perrors.Code `json:"code"`
		Message string       `json:"message"`
	} `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := req.path(s.options(req.Options))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := s.options(req.Options)
	opts.Formats = nil
	res, err := s.runner.Execute(r.Context(), p, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := req.path(s.options(req.Options))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g, _ := pipeline.DistinctGraph(p)
	forest, hit, err := s.runner.ExpandWithCacheInfo(r.Context(), p.Name, g, s.options(req.Options))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, forestResponse{Name: p.Name, GraphHash: graph.Hash(g), Forest: forest.String(), Cached: hit})
}

func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name,omitempty"`
		Forest string `json:"forest"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	forest, err := pipeline.ParseForest(req.Forest)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	edges, err := s.runner.Collapse(r.Context(), req.Name, forest)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, edgesResponse{Name: req.Name, Edges: nonNil(edges)})
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := req.path(s.options(req.Options))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := s.options(req.Options)
	if err := opts.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	g, _ := pipeline.DistinctGraph(p)
	hash := graph.Hash(g)
	forest, _, err := s.runner.ExpandWithCacheInfo(r.Context(), p.Name, g, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cell, hit, err := s.runner.EncodeWithCacheInfo(r.Context(), p.Name, hash, forest, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, encodedResponse{Name: p.Name, GraphHash: hash, Encoded: cell, Text: cell.String(), Cached: hit})
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string            `json:"name,omitempty"`
		Encoded json.RawMessage   `json:"encoded"`
		Options *pipeline.Options `json:"options,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	opts := s.options(req.Options)
	if err := opts.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	cell, err := pipeline.ParseEncoded(req.Encoded)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	forest, err := s.runner.Decode(r.Context(), req.Name, cell, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, forestResponse{Name: req.Name, Forest: forest.String()})
}

func (s *Server) handleDecompose(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := req.path(s.options(req.Options))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	g, _ := pipeline.DistinctGraph(p)
	d, hit, err := s.runner.DecomposeWithCacheInfo(r.Context(), p.Name, g, s.options(req.Options))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chainsResponse{Name: p.Name, GraphHash: graph.Hash(g), Chains: d, Cached: hit})
}

func (s *Server) handleRecompose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name,omitempty"`
		chain.Decomposition[pipeline.Key]
	}
	if !s.decode(w, r, &req) {
		return
	}
	edges, err := s.runner.Recompose(r.Context(), req.Name, req.Decomposition)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, edgesResponse{Name: req.Name, Edges: nonNil(edges)})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatSVG
	}
	if err := render.ValidateFormat(format); err != nil {
		s.fail(w, r, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "render"))
		return
	}

	var req pathRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := req.path(s.options(req.Options))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := s.options(req.Options)
	opts.Formats = []string{format}

	g, _ := pipeline.DistinctGraph(p)
	d, _, err := s.runner.DecomposeWithCacheInfo(r.Context(), p.Name, g, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	artifacts, err := s.runner.Render(r.Context(), p.Name, g.Edges(), &d, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// decode reads the JSON body into v. It writes the error response and
// returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, perrors.New(perrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		s.fail(w, r, perrors.Wrap(perrors.ErrCodeMalformedInput, err, "decode request"))
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	err = pipeline.Classify(err)
	status := perrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		loggerFrom(r.Context()).Error("request failed", "error", err)
	} else {
		loggerFrom(r.Context()).Debug("request rejected", "error", err)
	}
	var body errorBody
	body.Error.Code = perrors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = perrors.ErrCodeInternal
	}
	body.Error.Message = perrors.UserMessage(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil(edges []pipeline.Edge) []pipeline.Edge {
	if edges == nil {
		return []pipeline.Edge{}
	}
	return edges
}
