// Package seed loads demo accounts into an empty database so a fresh
// deployment has something to click through. It is a no-op when any user
// already exists.
package seed

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/talentscout/talentscout-server/internal/domain"
	"github.com/talentscout/talentscout-server/internal/repo"
)

// DemoPassword is the login password for the seeded demo accounts.
const DemoPassword = "password123"

// Run inserts a demo athlete, a demo recruiter, an accepted match between
// them, and a welcome message. Everything happens in one transaction; if any
// user row already exists the database is left untouched.
func Run(ctx context.Context, db *gorm.DB) error {
	var existing int64
	if err := db.WithContext(ctx).Model(&domain.User{}).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		log.Debug().Msg("seed: database already populated")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		athleteUser, err := repo.CreateUser(ctx, tx, "Demo Athlete", "athlete@example.com", string(hash), domain.RoleAthlete)
		if err != nil {
			return err
		}
		recruiterUser, err := repo.CreateUser(ctx, tx, "Demo Recruiter", "recruiter@example.com", string(hash), domain.RoleRecruiter)
		if err != nil {
			return err
		}
		// Seeded accounts skip email verification.
		if err := tx.Model(&domain.User{}).
			Where("id IN ?", []string{athleteUser.ID, recruiterUser.ID}).
			Update("is_verified", true).Error; err != nil {
			return err
		}

		athlete, err := repo.CreateAthlete(ctx, tx, athleteUser.ID, "Soccer", "Forward", "Demo athlete bio")
		if err != nil {
			return err
		}
		recruiter, err := repo.CreateRecruiter(ctx, tx, recruiterUser.ID, "Acme Corp", "Demo recruiter bio")
		if err != nil {
			return err
		}

		match, err := repo.CreateMatch(ctx, tx, athlete.ID, recruiter.ID)
		if err != nil {
			return err
		}
		if _, err := repo.TransitionMatchStatus(ctx, tx, match.ID, domain.MatchAccepted); err != nil {
			return err
		}

		if _, err := repo.CreateMessage(tx, match.ID, athleteUser.ID, "Welcome to TalentScout!"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Msg("seed: demo data created")
	return nil
}
