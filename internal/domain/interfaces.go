package domain

import (
	"context"
)

// AnnotationRepository is the document-store collaborator of the variant matcher.
// Implementations only read for queries; InsertRecords exists for seeding.
type AnnotationRepository interface {
	Find(ctx context.Context, query *Query) ([]VariantAnnotationRecord, error)
	// Count is the countDocuments half of the store contract. The matcher pages
	// grouped results in memory, so it counts groups rather than calling this.
	Count(ctx context.Context, query *Query) (int64, error)
	FindByGenes(ctx context.Context, collection CancerType, genes []string) ([]VariantAnnotationRecord, error)
	FindByID(ctx context.Context, collection CancerType, id int64) (*VariantAnnotationRecord, error)
	Search(ctx context.Context, collection CancerType, filter DrugFilter, limit, offset int) ([]VariantAnnotationRecord, int64, error)
	InsertRecords(ctx context.Context, collection CancerType, records []VariantAnnotationRecord) (int, error)
	Ping(ctx context.Context) error
}

// SearchCache stores grouped search results between identical requests.
// Implementations must treat backend failures as misses.
type SearchCache interface {
	Get(ctx context.Context, key string) ([]GroupedMatch, bool)
	Set(ctx context.Context, key string, groups []GroupedMatch)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetDatabaseConfig() *DatabaseConfig
	GetServerConfig() *ServerConfig
	GetCacheConfig() *CacheConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	GetDatabaseURL() string
	IsProduction() bool
	IsDevelopment() bool
}
