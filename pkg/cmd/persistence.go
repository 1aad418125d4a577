package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dukex/hl7autoct/pkg/persistence"
	"github.com/dukex/hl7autoct/pkg/persistence/file"
	"github.com/dukex/hl7autoct/pkg/persistence/memory"
	"github.com/dukex/hl7autoct/pkg/persistence/postgresql"
	"github.com/dukex/hl7autoct/pkg/persistence/redis"
)

var supportedPersistenceProviders = []string{"memory", "file", "redis", "rediss", "postgres", "postgresql"}

// NewPersistence opens the launch ledger selected by the URL scheme. URLs
// without a known scheme are treated as a directory for the file ledger.
func NewPersistence(ctx context.Context, logger *slog.Logger, ledgerURL string, retention time.Duration) (persistence.Persistence, error) {
	provider := parsePersistenceProvider(ledgerURL)

	switch provider {
	case "memory":
		return memory.NewPersistence(), nil
	case "redis", "rediss":
		p, err := redis.NewPersistence(ctx, logger, ledgerURL, retention)
		if err != nil {
			return nil, err
		}

		return p, nil
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, ledgerURL)
		if err != nil {
			return nil, err
		}

		return p, nil
	default:
		root := strings.TrimPrefix(ledgerURL, "file://")
		if root == "" {
			return nil, fmt.Errorf("file ledger needs a directory: %q", ledgerURL)
		}

		if err := os.MkdirAll(root, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}

		return file.NewPersistence(root), nil
	}
}

func parsePersistenceProvider(ledgerURL string) string {
	if ledgerURL == "" {
		return "memory"
	}

	parts := strings.Split(ledgerURL, "://")

	provider := parts[0]
	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
