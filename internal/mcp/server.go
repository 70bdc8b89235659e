// Package mcp exposes the variant matcher as MCP tools over stdio.
// It needs no external services: annotations live in a local SQLite file.
package mcp

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/oncodrug-server/internal/cache"
	"github.com/oncodrug-server/internal/config"
	"github.com/oncodrug-server/internal/database"
	"github.com/oncodrug-server/internal/logging"
	"github.com/oncodrug-server/internal/repository"
	"github.com/oncodrug-server/internal/service"
)

// Server metadata reported to MCP clients.
const (
	ServerName    = "oncodrug-mcp-server"
	ServerVersion = "v1.0.0"
)

// Server is an MCP server backed by a SQLite annotation store.
type Server struct {
	config    *config.LiteConfig
	mcpServer *mcp.Server
	db        *sql.DB
	ownsDB    bool
	repo      *repository.AnnotationRepository
	cache     *cache.SearchCache
	matcher   *service.VariantMatcher
	logger    *logrus.Logger
}

// Option is a functional option for Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDatabase uses an already open SQLite database instead of the data directory file.
// The caller keeps ownership of db.
func WithDatabase(db *sql.DB) Option {
	return func(s *Server) {
		s.db = db
	}
}

// NewServer creates the MCP server and registers its tools.
func NewServer(ctx context.Context, cfg *config.LiteConfig, opts ...Option) (*Server, error) {
	server := &Server{config: cfg}
	for _, opt := range opts {
		opt(server)
	}

	if server.logger == nil {
		logger, err := logging.New(cfg.LoggingConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
		server.logger = logger
	}

	if server.db == nil {
		if err := cfg.EnsureDataDir(); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err := database.OpenSQLite(ctx, cfg.DBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to open annotation store: %w", err)
		}
		server.db = db
		server.ownsDB = true
	}

	searchCache, err := cache.New(cfg.CacheConfig(), server.logger)
	if err != nil {
		server.Close()
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}
	server.cache = searchCache

	server.repo = repository.NewAnnotationRepository(server.db, repository.DialectSQLite, server.logger)
	server.matcher = service.NewVariantMatcher(server.repo, server.logger, service.WithSearchCache(searchCache))

	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)
	server.registerTools()

	server.logger.WithField("db_path", cfg.DBPath()).Info("MCP server initialized")
	return server, nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_drug_by_variant",
		Description: "Find targeted drugs annotated for genetic variants in one cancer type. Results are grouped by gene and alteration and paginated.",
	}, s.handleSearchDrugByVariant)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "extract_variant_patterns",
		Description: "Show the search patterns derived from a variant descriptor such as NM_005228.5(EGFR):c.2573T>G:p.Leu858Arg.",
	}, s.handleExtractVariantPatterns)

	s.logger.WithField("tool_count", 2).Debug("Registered MCP tools")
}

// Run serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting MCP server on stdio")
	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Close releases the cache and, when owned, the database.
func (s *Server) Close() error {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close search cache")
		}
	}
	if s.ownsDB && s.db != nil {
		return s.db.Close()
	}
	return nil
}
