package suppression

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	"wxrmessenger/internal/config"
	"wxrmessenger/internal/db"
)

// OpenStore builds the Store selected by cfg.Ledger.Backend. The returned
// close func releases any connection pool and is safe to call when nothing
// was opened.
func OpenStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (Store, func(), error) {
	switch cfg.Ledger.Backend {
	case config.LedgerPostgres:
		pool, err := db.NewPool(ctx, cfg.Ledger.DatabaseURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("suppression: %w", err)
		}
		repo := db.NewSuppressionRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, func() {}, fmt.Errorf("suppression: %w", err)
		}
		return repo, pool.Close, nil
	case config.LedgerMemory:
		return NewMemoryStore(), func() {}, nil
	case config.LedgerDynamoDB, "":
		return NewDynamoStore(awsCfg, cfg.Ledger.TableName), func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("suppression: unknown ledger backend %q", cfg.Ledger.Backend)
	}
}

var _ Store = (*db.SuppressionRepository)(nil)
