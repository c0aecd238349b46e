package cmd

import (
	"context"
	"fmt"

	"github.com/domalab/cgtrace/daemon/domain"
	"github.com/domalab/cgtrace/daemon/services/persistence"
	"github.com/domalab/cgtrace/daemon/services/pipeline"
)

// Boot is the default subcommand: open the store, then hand off to the
// pipeline for the lifetime of the process.
type Boot struct{}

func (b *Boot) Run(appCtx *domain.Context) error {
	ctx := context.Background()

	store, err := persistence.Open(ctx, appCtx.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	return pipeline.New(appCtx, store).Run(ctx)
}
