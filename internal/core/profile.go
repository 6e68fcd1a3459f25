// Package core implements the consistency layer between the HTTP/session
// boundary and the persisted store: membership gating, versioned entity
// updates with audit history, the balance ledger and the friend graph. Every
// operation takes a validated input plus an authenticated principal's
// profile public id and returns either a payload or a classified failure
// from pkg/apperr.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/rumCAJs/atomicapp/pkg/apperr"
	"github.com/rumCAJs/atomicapp/pkg/models"
	"github.com/rumCAJs/atomicapp/pkg/repository"
)

// Four-digit pin space, unique per nick.
const (
	pinMin   = 1000
	pinSpace = 9000
)

// pinAttempts bounds the re-roll loop when a concurrent signup wins the
// (nick, pin) uniqueness race between our read and our insert.
const pinAttempts = 3

// ProfileService manages player identities.
type ProfileService struct {
	repo   repository.ProfileRepo
	logger *slog.Logger
}

func NewProfileService(repo repository.ProfileRepo, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{repo: repo, logger: logger}
}

// Signup creates the user account and its profile as one unit; a profile
// insert failure leaves no orphaned user row. The public id is random, the
// pin a four-digit number unique within the nick.
func (s *ProfileService) Signup(ctx context.Context, email, passwordHash, name, nick string) (*models.Profile, error) {
	var id int64
	err := s.withFreshPin(ctx, nick, func(pin int) error {
		p := &models.Profile{
			PublicID: uuid.NewString(),
			Name:     name,
			Nick:     nick,
			Pin:      pin,
		}
		var err error
		id, err = s.repo.CreateAccount(ctx, email, passwordHash, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.byID(ctx, id)
}

// Create inserts the profile for an already existing user account.
func (s *ProfileService) Create(ctx context.Context, userID int64, name, nick string) (*models.Profile, error) {
	var id int64
	err := s.withFreshPin(ctx, nick, func(pin int) error {
		p := &models.Profile{
			UserID:   userID,
			PublicID: uuid.NewString(),
			Name:     name,
			Nick:     nick,
			Pin:      pin,
		}
		var err error
		id, err = s.repo.CreateProfile(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.byID(ctx, id)
}

// GetByPublicID resolves a profile or fails with a profile not-found.
func (s *ProfileService) GetByPublicID(ctx context.Context, publicID string) (*models.Profile, error) {
	p, err := s.repo.GetProfileByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("profile")
	}

	return p, nil
}

// GetByUserID resolves the profile owned by a user account.
func (s *ProfileService) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	p, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("profile")
	}

	return p, nil
}

// ChangeInfo updates the owner's nick, re-rolling a pin unique within the
// new nick.
func (s *ProfileService) ChangeInfo(ctx context.Context, publicID, nick string) (*models.Profile, error) {
	p, err := s.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	err = s.withFreshPin(ctx, nick, func(pin int) error {
		return s.repo.UpdateProfileInfo(ctx, p.ID, nick, pin)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByPublicID(ctx, publicID)
}

func (s *ProfileService) byID(ctx context.Context, id int64) (*models.Profile, error) {
	p, err := s.repo.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("profile %d vanished after insert", id)
	}

	return p, nil
}

// withFreshPin runs fn with a pin free for nick, re-rolling a bounded number
// of times when the (nick, pin) uniqueness constraint fails under a
// concurrent write.
func (s *ProfileService) withFreshPin(ctx context.Context, nick string, fn func(pin int) error) error {
	for attempt := 1; ; attempt++ {
		taken, err := s.repo.PinsForNick(ctx, nick)
		if err != nil {
			return err
		}
		pin, err := pickPin(taken)
		if err != nil {
			return err
		}

		err = fn(pin)
		if err == nil || attempt >= pinAttempts || !isPinCollision(err) {
			return err
		}
		s.logger.Warn("pin collision, re-rolling", "nick", nick, "attempt", attempt)
	}
}

// pickPin chooses a four-digit pin not in taken, scanning the pin space from
// a random start so the walk terminates after at most pinSpace probes.
func pickPin(taken []int) (int, error) {
	used := make(map[int]bool, len(taken))
	for _, p := range taken {
		used[p] = true
	}

	start := rand.IntN(pinSpace)
	for i := 0; i < pinSpace; i++ {
		pin := pinMin + (start+i)%pinSpace
		if !used[pin] {
			return pin, nil
		}
	}

	return 0, fmt.Errorf("no free pin for nick")
}

// isPinCollision sniffs the driver message for the (nick, pin) uniqueness
// constraint; modernc.org/sqlite surfaces constraint failures only as
// strings.
func isPinCollision(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: profiles.nick")
}
