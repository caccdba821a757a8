package index

import (
	"context"

	"github.com/Aman-CERP/localfiles/internal/query"
	"github.com/Aman-CERP/localfiles/internal/snippet"
	"github.com/Aman-CERP/localfiles/internal/store"
)

// SearchRequest is a free-text query plus optional filters.
type SearchRequest struct {
	Query      string
	Limit      int
	Extension  string
	PathPrefix string
}

// SearchResult is one ranked match.
type SearchResult struct {
	FilePath string  `json:"file_path"`
	FileName string  `json:"file_name"`
	Score    float64 `json:"score"`
	Snippet  string  `json:"snippet"`
	// Line is the 1-based line of the first highlighted term, or 0.
	Line int `json:"line,omitempty"`
}

// SearchResponse holds the results of one search. TotalCount is the
// number of returned results, not the number of matching documents.
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	TotalCount int            `json:"total_count"`
}

type cacheKey struct {
	query      string
	limit      int
	extension  string
	pathPrefix string
}

// Search runs req against the committed index. An empty query with no
// filters returns no results without touching the engine.
func (fi *FileIndex) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.Limit <= 0 {
		req.Limit = DefaultSearchLimit
	}

	key := cacheKey{query: req.Query, limit: req.Limit, extension: req.Extension, pathPrefix: req.PathPrefix}
	if fi.cache != nil {
		if cached, ok := fi.cache.Get(key); ok {
			return cached.clone(), nil
		}
	}

	q, err := query.Build(req.Query, query.Filters{Extension: req.Extension, PathPrefix: req.PathPrefix})
	if err != nil {
		return nil, err
	}
	if q == nil {
		return &SearchResponse{Results: []SearchResult{}}, nil
	}

	hits, err := fi.store.Search(ctx, q, req.Limit)
	if err != nil {
		return nil, err
	}

	terms := snippet.Terms(req.Query)
	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		content := h.Fields[store.FieldContent]
		r := SearchResult{
			FilePath: h.ID,
			FileName: h.Fields[store.FieldName],
			Score:    h.Score,
			Snippet:  snippet.Extract(content, terms, fi.window),
		}
		if line, ok := snippet.FindMatchLine(content, terms); ok {
			r.Line = line
		}
		results = append(results, r)
	}

	resp := &SearchResponse{Results: results, TotalCount: len(results)}
	if fi.cache != nil {
		fi.cache.Add(key, resp)
	}
	return resp.clone(), nil
}

func (r *SearchResponse) clone() *SearchResponse {
	return &SearchResponse{
		Results:    append([]SearchResult{}, r.Results...),
		TotalCount: r.TotalCount,
	}
}
