// Package mcp exposes the writing corpus to AI agents over the Model
// Context Protocol.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/kakuhq/kaku/internal/corpus"
	"github.com/kakuhq/kaku/internal/retrieval"
	"github.com/kakuhq/kaku/internal/style"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Corpus is the subset of the corpus service the tools need.
type Corpus interface {
	List(ctx context.Context, owner string) ([]corpus.Document, error)
	Profile(ctx context.Context, owner string) (style.Profile, error)
	AddText(ctx context.Context, owner, title, content string) (*corpus.Document, error)
}

// Searcher ranks corpus chunks for a query.
type Searcher interface {
	Search(ctx context.Context, owner, query string, topK int) ([]retrieval.Result, error)
}

// Server wraps an MCP server bound to a single corpus owner.
type Server struct {
	corpus   Corpus
	searcher Searcher
	owner    string
	mcp      *server.MCPServer
}

// NewServer creates an MCP server whose tools act on owner's corpus.
func NewServer(c Corpus, s Searcher, owner string) *Server {
	srv := &Server{corpus: c, searcher: s, owner: owner}

	srv.mcp = server.NewMCPServer(
		"kaku",
		Version,
		server.WithToolCapabilities(false),
	)
	srv.registerTools()
	return srv
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchCorpusTool, s.handleSearchCorpus)
	s.mcp.AddTool(styleProfileTool, s.handleStyleProfile)
	s.mcp.AddTool(composePromptTool, s.handleComposePrompt)
	s.mcp.AddTool(listDocumentsTool, s.handleListDocuments)
	s.mcp.AddTool(addSampleTool, s.handleAddSample)
}

// Serve starts the MCP server on stdio. Stdout carries protocol messages, so
// all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
