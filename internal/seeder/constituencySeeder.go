package seeders

import (
	"context"
	"fmt"
	"strings"
)

func (seeder *Seeder) seedConstituencies(ctx context.Context) error {
	var seeded int

	for _, name := range seeder.Config.Seed.Constituencies {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		created, err := seeder.DB.Constituency().InsertIfMissing(ctx, name)
		if err != nil {
			return fmt.Errorf("seed constituency %q: %w", name, err)
		}
		if created {
			seeded++
		}
	}

	if seeded > 0 {
		seeder.Logger.Info("constituencies seeded", "count", seeded)
	}

	return nil
}
