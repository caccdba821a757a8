package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/localfiles/internal/config"
	"github.com/Aman-CERP/localfiles/internal/index"
	"github.com/Aman-CERP/localfiles/internal/telemetry"
	"github.com/Aman-CERP/localfiles/pkg/version"
)

// Index is the part of the coordinator the server dispatches to.
type Index interface {
	Search(ctx context.Context, req index.SearchRequest) (*index.SearchResponse, error)
	IndexPaths(ctx context.Context, paths []string, w index.Registrar) index.IndexPathsResult
	Status() index.CoordinatorStatus
	ReadFile(path string) (string, error)
	ListFiles(ext, substring string) []string
}

// Server is the MCP server. Every tool call is dispatched to the shared
// Index; the server itself holds no index state.
type Server struct {
	mcp     *mcp.Server
	index   Index
	watcher index.Registrar
	config  *config.Config
	logger  *slog.Logger
	metrics *telemetry.QueryMetrics
}

// NewServer creates a server over idx. Paths indexed through the
// index_paths tool are registered with w; a nil w disables watching.
func NewServer(idx Index, w index.Registrar, cfg *config.Config) (*Server, error) {
	if idx == nil {
		return nil, errors.New("index is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	s := &Server{
		index:   idx,
		watcher: w,
		config:  cfg,
		logger:  slog.Default(),
		metrics: telemetry.New(telemetry.DefaultConfig()),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Server.Name,
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search",
		Description: "Full-text search over indexed local files. Returns ranked files with a snippet and the line of the first match. Filter by extension or by directory names.",
	}, s.mcpSearchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_paths",
		Description: "Index files or directories (recursively) and keep them up to date as they change.",
	}, s.mcpIndexPathsHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "status",
		Description: "Report how many files are indexed, which directories are watched and where the index is stored.",
	}, s.mcpStatusHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "read_file",
		Description: "Read the current content of an indexed file.",
	}, s.mcpReadFileHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_files",
		Description: "List indexed files, optionally filtered by extension or by a substring of the path.",
	}, s.mcpListFilesHandler)

	s.logger.Debug("MCP tools registered", slog.Int("count", 5))
}

func (s *Server) mcpSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	start := time.Now()
	requestID := generateRequestID()
	limit := clampLimit(input.Limit, s.config.Search.DefaultLimit, 1, s.config.Search.MaxLimit)

	s.logger.Info("search started",
		slog.String("request_id", requestID),
		slog.String("query", input.Query),
		slog.Int("limit", limit),
		slog.String("extension", input.Extension),
		slog.String("path_prefix", input.PathPrefix))

	resp, err := s.index.Search(ctx, index.SearchRequest{
		Query:      input.Query,
		Limit:      limit,
		Extension:  input.Extension,
		PathPrefix: input.PathPrefix,
	})
	duration := time.Since(start)
	if err != nil {
		s.metrics.Record(telemetry.QueryEvent{Query: input.Query, Latency: duration, Failed: true})
		s.logger.Error("search failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, SearchOutput{}, MapError(err)
	}

	s.metrics.Record(telemetry.QueryEvent{Query: input.Query, ResultCount: resp.TotalCount, Latency: duration})
	s.logger.Info("search completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("result_count", resp.TotalCount))

	output := SearchOutput{
		Results:    make([]SearchResultOutput, 0, len(resp.Results)),
		TotalCount: resp.TotalCount,
	}
	for _, r := range resp.Results {
		output.Results = append(output.Results, SearchResultOutput(r))
	}

	return textResult(FormatSearchResults(input.Query, resp.Results)), output, nil
}

func (s *Server) mcpIndexPathsHandler(ctx context.Context, _ *mcp.CallToolRequest, input IndexPathsInput) (
	*mcp.CallToolResult,
	IndexPathsOutput,
	error,
) {
	if len(input.Paths) == 0 {
		return nil, IndexPathsOutput{}, NewInvalidParamsError("paths must contain at least one path")
	}

	res := s.index.IndexPaths(ctx, input.Paths, s.watcher)
	return nil, IndexPathsOutput{IndexedCount: res.IndexedCount, Errors: res.Errors}, nil
}

func (s *Server) mcpStatusHandler(_ context.Context, _ *mcp.CallToolRequest, _ StatusInput) (
	*mcp.CallToolResult,
	StatusOutput,
	error,
) {
	st := s.index.Status()
	return nil, StatusOutput{
		NumFiles:      st.NumFiles,
		WatchedPaths:  st.WatchedPaths,
		IndexPath:     st.IndexPath,
		SchemaVersion: st.SchemaVersion,
		Watching:      st.Watching,
		Queries:       s.metrics.Snapshot(),
	}, nil
}

func (s *Server) mcpReadFileHandler(_ context.Context, _ *mcp.CallToolRequest, input ReadFileInput) (
	*mcp.CallToolResult,
	ReadFileOutput,
	error,
) {
	if input.Path == "" {
		return nil, ReadFileOutput{}, NewInvalidParamsError("path parameter is required")
	}

	content, err := s.index.ReadFile(input.Path)
	if err != nil {
		return nil, ReadFileOutput{}, MapError(err)
	}
	return textResult(content), ReadFileOutput{
		Path:     input.Path,
		MIMEType: MimeTypeForPath(input.Path),
		Content:  content,
	}, nil
}

func (s *Server) mcpListFilesHandler(_ context.Context, _ *mcp.CallToolRequest, input ListFilesInput) (
	*mcp.CallToolResult,
	ListFilesOutput,
	error,
) {
	files := s.index.ListFiles(input.Extension, input.PathPrefix)
	return nil, ListFilesOutput{Files: files, Count: len(files)}, nil
}

// Serve runs the server on transport until ctx is canceled or the client
// disconnects.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
