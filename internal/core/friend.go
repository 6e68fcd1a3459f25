package core

import (
	"context"
	"log/slog"

	"github.com/rumCAJs/atomicapp/pkg/apperr"
	"github.com/rumCAJs/atomicapp/pkg/models"
	"github.com/rumCAJs/atomicapp/pkg/repository"
)

// Friend request processing actions.
const (
	FriendActionAccept = "accept"
	FriendActionReject = "reject"
)

// FriendService manages the directed friend graph. An edge moves through
// none, requested and accepted/rejected; a friendship is symmetric only when
// both directional edges carry an accepted timestamp.
type FriendService struct {
	repo     repository.FriendRepo
	profiles *ProfileService
	logger   *slog.Logger
}

func NewFriendService(repo repository.FriendRepo, profiles *ProfileService, logger *slog.Logger) *FriendService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FriendService{repo: repo, profiles: profiles, logger: logger}
}

// RequestResult reports the outcome of a friend request.
type RequestResult struct {
	State   string `json:"state"`
	Message string `json:"message"`
}

// ProcessResult reports the outcome of processing a pending request.
type ProcessResult struct {
	Status   string `json:"status"`
	Accepted bool   `json:"accepted"`
	Rejected bool   `json:"rejected"`
}

// Request records the caller's friend request toward the target profile.
// Repeating a request is a no-op. When the target already requested the
// caller, both edges end up accepted so the friendship is symmetric.
func (s *FriendService) Request(ctx context.Context, profilePublicID, targetPublicID string) (*RequestResult, error) {
	caller, err := s.profiles.GetByPublicID(ctx, profilePublicID)
	if err != nil {
		return nil, err
	}
	target, err := s.profiles.GetByPublicID(ctx, targetPublicID)
	if err != nil {
		return nil, err
	}
	if caller.ID == target.ID {
		return nil, apperr.FriendRequest("cannot befriend yourself")
	}

	existing, err := s.repo.GetEdge(ctx, caller.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		msg := "already requested"
		if existing.AcceptedAt != nil {
			msg = "already friends"
		}
		return &RequestResult{State: "ok", Message: msg}, nil
	}

	counter, err := s.repo.GetEdge(ctx, target.ID, caller.ID)
	if err != nil {
		return nil, err
	}
	if counter != nil && counter.RejectedAt == nil {
		// Mutual request: the counter edge is accepted and the new edge
		// inserted pre-accepted in one transaction, so both directions list
		// the friendship or neither edge changes.
		if err := s.repo.AcceptMutualEdges(ctx, caller.ID, target.ID); err != nil {
			return nil, err
		}

		s.logger.Info("mutual friend request accepted", "from", caller.PublicID, "to", target.PublicID)

		return &RequestResult{State: "ok", Message: "friend request accepted"}, nil
	}

	if err := s.repo.InsertEdge(ctx, caller.ID, target.ID); err != nil {
		return nil, err
	}

	return &RequestResult{State: "ok", Message: "friend request sent"}, nil
}

// Process accepts or rejects a pending incoming request from the target
// profile to the caller.
func (s *FriendService) Process(ctx context.Context, profilePublicID, targetPublicID, action string) (*ProcessResult, error) {
	if action != FriendActionAccept && action != FriendActionReject {
		return nil, apperr.FriendRequest("unknown action")
	}

	caller, err := s.profiles.GetByPublicID(ctx, profilePublicID)
	if err != nil {
		return nil, err
	}
	target, err := s.profiles.GetByPublicID(ctx, targetPublicID)
	if err != nil {
		return nil, err
	}

	edge, err := s.repo.GetEdge(ctx, target.ID, caller.ID)
	if err != nil {
		return nil, err
	}
	if edge == nil || edge.AcceptedAt != nil {
		return nil, apperr.FriendRequest("no pending friend request")
	}

	updated, err := s.repo.SetEdgeState(ctx, target.ID, caller.ID, action == FriendActionAccept)
	if err != nil {
		return nil, err
	}

	return &ProcessResult{
		Status:   "ok",
		Accepted: updated.AcceptedAt != nil,
		Rejected: updated.RejectedAt != nil,
	}, nil
}

// List returns the caller's outgoing edges joined to the target profiles,
// filtered by acceptance state. An unknown filter falls back to accepted.
func (s *FriendService) List(ctx context.Context, profilePublicID, filter string) ([]models.Friend, error) {
	caller, err := s.profiles.GetByPublicID(ctx, profilePublicID)
	if err != nil {
		return nil, err
	}

	switch filter {
	case repository.FilterAccepted, repository.FilterRequested, repository.FilterAll:
	default:
		filter = repository.FilterAccepted
	}

	return s.repo.ListFriends(ctx, caller.ID, filter)
}
