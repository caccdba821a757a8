package mcp

import (
	"context"
	"net/url"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const fileScheme = "file://"

// filePathFromURI returns the decoded local path of a file URI. Only an
// empty or "localhost" host is accepted.
func filePathFromURI(uri string) (string, bool) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" || u.Path == "" {
		return "", false
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", false
	}
	return u.Path, true
}

// registerResources exposes every indexed file as file://<absolute path>.
func (s *Server) registerResources() {
	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "indexed-file",
		URITemplate: fileScheme + "{+path}",
		Description: "Current content of an indexed file",
	}, s.handleReadResource)
}

func (s *Server) handleReadResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	path, ok := filePathFromURI(uri)
	if !ok {
		return nil, NewResourceNotFoundError(uri)
	}

	content, err := s.index.ReadFile(path)
	if err != nil {
		return nil, MapError(err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: MimeTypeForPath(path),
				Text:     content,
			},
		},
	}, nil
}
