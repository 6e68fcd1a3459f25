package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rumCAJs/atomicapp/pkg/apperr"
	"github.com/rumCAJs/atomicapp/pkg/models"
	"github.com/rumCAJs/atomicapp/pkg/repository"
)

// StoreService manages project stores and the debit half of the balance
// ledger.
type StoreService struct {
	repo     repository.StoreRepo
	projects *ProjectService
	logger   *slog.Logger
}

func NewStoreService(repo repository.StoreRepo, projects *ProjectService, logger *slog.Logger) *StoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreService{repo: repo, projects: projects, logger: logger}
}

// AddItemInput carries a new item for a store.
type AddItemInput struct {
	StoreID       int64
	Name          string
	Price         int64
	ActorPublicID string
}

// AddItem creates a store item. Any member of the store's project may add
// items.
func (s *StoreService) AddItem(ctx context.Context, in AddItemInput) (*models.StoreItem, error) {
	store, _, _, err := s.resolveStore(ctx, in.StoreID, in.ActorPublicID)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.CreateStoreItem(ctx, &models.StoreItem{
		StoreID: store.ID,
		Name:    in.Name,
		Price:   in.Price,
	})
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetStoreItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("store item %d vanished after insert", id)
	}

	return item, nil
}

// Items lists a store's items for a member of its project.
func (s *StoreService) Items(ctx context.Context, storeID int64, profilePublicID string) ([]models.StoreItem, error) {
	store, _, _, err := s.resolveStore(ctx, storeID, profilePublicID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListStoreItems(ctx, store.ID, true)
}

// BuyItem debits the member's balance by the item's price and records the
// purchase, atomically, returning the new balance. The debit never drives
// the balance negative: a balance below the price fails the purchase and
// writes nothing.
func (s *StoreService) BuyItem(ctx context.Context, itemID int64, profilePublicID string) (int64, error) {
	item, err := s.repo.GetStoreItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	if item == nil {
		return 0, apperr.NotFound("store item")
	}

	_, project, profile, err := s.resolveStore(ctx, item.StoreID, profilePublicID)
	if err != nil {
		return 0, err
	}

	balance, err := s.repo.PurchaseStoreItem(ctx, item, profile.ID, project.ID)
	if errors.Is(err, repository.ErrInsufficientBalance) {
		return 0, apperr.InsufficientBalance()
	}
	if err != nil {
		return 0, err
	}

	s.logger.Info("item purchased", "item", item.ID, "profile", profile.PublicID, "balance", balance)

	return balance, nil
}

// resolveStore loads the store and proves the caller's membership in its
// project.
func (s *StoreService) resolveStore(ctx context.Context, storeID int64, profilePublicID string) (*models.Store, *models.Project, *models.Profile, error) {
	store, err := s.repo.GetStoreByID(ctx, storeID)
	if err != nil {
		return nil, nil, nil, err
	}
	if store == nil {
		return nil, nil, nil, apperr.NotFound("store")
	}

	project, err := s.projects.GetByID(ctx, store.ProjectID)
	if err != nil {
		return nil, nil, nil, err
	}

	profile, _, err := s.projects.RequireMembership(ctx, project, profilePublicID)
	if err != nil {
		return nil, nil, nil, err
	}

	return store, project, profile, nil
}
