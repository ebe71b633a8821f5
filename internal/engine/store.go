package engine

import (
	"context"
	"fmt"

	"github.com/railops/railops/internal/database"
	"github.com/railops/railops/internal/roster"
)

// OpenStore returns the roster backend the binaries serve: the YAML fixture
// at fixturePath when set, PostgreSQL otherwise. The returned func releases
// the backend.
func OpenStore(ctx context.Context, fixturePath string, db database.Config) (roster.Store, func(), error) {
	if fixturePath != "" {
		mem, err := roster.LoadFixtureFile(fixturePath)
		if err != nil {
			return nil, nil, err
		}
		return mem, func() {}, nil
	}

	pool, err := database.Connect(ctx, db)
	if err != nil {
		return nil, nil, fmt.Errorf("open roster database: %w", err)
	}
	return roster.NewPostgresRepository(pool), pool.Close, nil
}
