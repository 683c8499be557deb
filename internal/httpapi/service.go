// Package httpapi wires the search core to the external/internal HTTP
// surfaces: route tables, DTOs and the thin per-request service layer
// handlers call into.
package httpapi

import (
	"context"
	"time"

	"github.com/r3e-network/metasearch/internal/platform/apierrors"
	"github.com/r3e-network/metasearch/internal/search"
)

// Service is the thin layer between HTTP handlers and the search core: it
// owns no state of its own beyond references to the registry/executor.
type Service struct {
	Registry *search.Registry
	Executor *search.Executor
}

func NewService(registry *search.Registry, executor *search.Executor) *Service {
	return &Service{Registry: registry, Executor: executor}
}

// Search runs one query through the executor's batched mode.
func (s *Service) Search(ctx context.Context, p search.ParsedQuery) (search.SearchResponse, error) {
	req, err := search.ParseRequest(p, s.Registry.GlobalOrder(), s.knownEngines())
	if err != nil {
		return search.SearchResponse{}, apierrors.InvalidQuery(err.Error())
	}
	if req.Timeout == 0 {
		req.Timeout = 8 * time.Second
	}
	resp, err := s.Executor.Batched(ctx, req)
	if err != nil {
		return search.SearchResponse{}, apierrors.Wrap(apierrors.CodeRequestTimeout, 504, "search cancelled", err)
	}
	return resp, nil
}

// Stream runs one query through the executor's streaming mode, delivering
// each engine's result to sink as it completes.
func (s *Service) Stream(ctx context.Context, p search.ParsedQuery, sink search.StreamSink) (search.SearchResponse, error) {
	req, err := search.ParseRequest(p, s.Registry.GlobalOrder(), s.knownEngines())
	if err != nil {
		return search.SearchResponse{}, apierrors.InvalidQuery(err.Error())
	}
	if req.Timeout == 0 {
		req.Timeout = 8 * time.Second
	}
	resp, err := s.Executor.Stream(ctx, req, sink)
	if err != nil {
		return search.SearchResponse{}, apierrors.Wrap(apierrors.CodeRequestTimeout, 504, "search cancelled", err)
	}
	return resp, nil
}

func (s *Service) knownEngines() map[string]bool {
	out := make(map[string]bool)
	for _, name := range s.Registry.GlobalOrder() {
		out[name] = true
	}
	return out
}
