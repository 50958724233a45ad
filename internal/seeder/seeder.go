package seeders

import (
	"context"
	"log/slog"
	"time"

	"github.com/cradoe/nationalid/internal/config"
	"github.com/cradoe/nationalid/internal/repository"
)

const defaultTimeout = 5 * time.Second

type Seeder struct {
	DB     repository.Database
	Config *config.Config
	Logger *slog.Logger
}

func New(DB repository.Database, cfg *config.Config, logger *slog.Logger) *Seeder {
	return &Seeder{
		DB:     DB,
		Config: cfg,
		Logger: logger,
	}
}

// Run seeds the initial admin account and the constituency list. Existing
// rows are left untouched, so it is safe on every start.
func (seeder *Seeder) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := seeder.seedAdmin(ctx); err != nil {
		return err
	}

	return seeder.seedConstituencies(ctx)
}
