package seeders

import (
	"context"
	"fmt"

	"github.com/cradoe/gopass"
	"github.com/cradoe/nationalid/internal/models"
)

func (seeder *Seeder) seedAdmin(ctx context.Context) error {
	seed := seeder.Config.Seed

	if seed.AdminUsername == "" || seed.AdminPassword == "" {
		seeder.Logger.Warn("admin seed skipped: no username or password configured")
		return nil
	}

	hashedPassword, err := gopass.Hash(seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	fullName := seed.AdminFullName
	if fullName == "" {
		fullName = "System Administrator"
	}

	created, err := seeder.DB.Admin().InsertIfMissing(ctx, &models.Admin{
		Username:       seed.AdminUsername,
		FullName:       fullName,
		HashedPassword: hashedPassword,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if created {
		seeder.Logger.Info("admin account seeded", "username", seed.AdminUsername)
	}

	return nil
}
