package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/storelinkhq/storelink-backend/pkg/db"
	"github.com/storelinkhq/storelink-backend/pkg/db/models"
	"github.com/storelinkhq/storelink-backend/pkg/enums"
	pkgerrors "github.com/storelinkhq/storelink-backend/pkg/errors"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
	"github.com/storelinkhq/storelink-backend/pkg/shopify"
	"github.com/storelinkhq/storelink-backend/pkg/types"
)

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) error
	FindByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*models.Store, error)
	FindByOwnerAndDomain(ctx context.Context, ownerID uuid.UUID, domain string) (*models.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Store, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Update(ctx context.Context, store *models.Store) error
	ClearPrimaryWithTx(tx *gorm.DB, ownerID uuid.UUID) error
	SetPrimaryWithTx(tx *gorm.DB, ownerID, storeID uuid.UUID) (int64, error)
	MostRecentlyConnectedWithTx(tx *gorm.DB, ownerID, excludeID uuid.UUID) (*models.Store, error)
	DeleteWithTx(tx *gorm.DB, storeID uuid.UUID) error
	DeleteCredentialsWithTx(tx *gorm.DB, storeID uuid.UUID) error
	FindWebhooksByStore(ctx context.Context, storeID uuid.UUID) ([]models.WebhookRegistration, error)
	DeleteWebhooksWithTx(tx *gorm.DB, storeID uuid.UUID) error
}

type credentialStore interface {
	Store(ctx context.Context, ownerID, storeID uuid.UUID, rawToken string) error
	Token(ctx context.Context, ownerID, storeID uuid.UUID) (string, error)
}

type platformClient interface {
	GetShop(ctx context.Context, domain, accessToken string) (*shopify.ShopInfo, error)
	ListWebhooks(ctx context.Context, domain, accessToken string) ([]shopify.WebhookInfo, error)
	DeleteWebhook(ctx context.Context, domain, accessToken string, webhookID int64) error
}

type syncTrigger interface {
	Sync(ctx context.Context, ownerID, storeID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the store registry operations.
type Service interface {
	AddStore(ctx context.Context, ownerID uuid.UUID, domain, rawToken string) (*StoreDTO, error)
	RemoveStore(ctx context.Context, ownerID, storeID uuid.UUID) error
	SetPrimaryStore(ctx context.Context, ownerID, storeID uuid.UUID) error
	ListStores(ctx context.Context, ownerID uuid.UUID) ([]StoreDTO, error)
	GetPrimaryStore(ctx context.Context, ownerID uuid.UUID) (*StoreDTO, error)
	UpdatePermissions(ctx context.Context, ownerID, storeID uuid.UUID, partial types.Permissions) (*StoreDTO, error)
	UpdateAgentAccess(ctx context.Context, ownerID, storeID uuid.UUID, partial types.AgentAccess) (*StoreDTO, error)
}

type service struct {
	repo     storeRepository
	creds    credentialStore
	platform platformClient
	syncer   syncTrigger
	tx       txRunner
	cache    *Cache
	logg     *logger.Logger
}

// NewService builds the registry service with the provided collaborators.
// The cache may be nil; everything else is required.
func NewService(repo storeRepository, creds credentialStore, platform platformClient, syncer syncTrigger, tx txRunner, cache *Cache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if creds == nil {
		return nil, fmt.Errorf("credential store required")
	}
	if platform == nil {
		return nil, fmt.Errorf("platform client required")
	}
	if syncer == nil {
		return nil, fmt.Errorf("sync trigger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		creds:    creds,
		platform: platform,
		syncer:   syncer,
		tx:       tx,
		cache:    cache,
		logg:     logg,
	}, nil
}

func (s *service) AddStore(ctx context.Context, ownerID uuid.UUID, domain, rawToken string) (*StoreDTO, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "domain is required")
	}
	if strings.TrimSpace(rawToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "access token is required")
	}

	existing, err := s.repo.FindByOwnerAndDomain(ctx, ownerID, domain)
	switch {
	case err == nil:
		return s.reconnect(ctx, existing, rawToken)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.register(ctx, ownerID, domain, rawToken)
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up store")
	}
}

// reconnect overwrites the credential and leaves the store untouched. A failed
// credential write is logged, not surfaced; the stale token shows up on the
// next platform call anyway.
func (s *service) reconnect(ctx context.Context, store *models.Store, rawToken string) (*StoreDTO, error) {
	ctx = s.logg.WithStoreID(ctx, store.ID.String())
	if err := s.creds.Store(ctx, store.OwnerID, store.ID, rawToken); err != nil {
		s.logg.Warn(ctx, "reconnect credential rewrite failed")
	} else {
		s.logg.Info(ctx, "store reconnected")
	}
	return FromModel(store), nil
}

func (s *service) register(ctx context.Context, ownerID uuid.UUID, domain, rawToken string) (*StoreDTO, error) {
	shop, err := s.platform.GetShop(ctx, domain, rawToken)
	if err != nil {
		if shopify.IsAuthError(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidCredential, err, "token rejected by platform")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate token")
	}

	count, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count owner stores")
	}

	displayName := shop.Name
	if displayName == "" {
		displayName = domain
	}

	store := &models.Store{
		OwnerID:     ownerID,
		Domain:      domain,
		DisplayName: displayName,
		IsActive:    true,
		IsPrimary:   count == 0,
		SyncStatus:  enums.SyncStatusNever,
		PlatformID:  shop.ID,
		Currency:    shop.Currency,
		Timezone:    shop.Timezone,
		PlanTier:    shop.PlanTier,
		Country:     shop.Country,
		Address:     shop.Address,
		Permissions: types.DefaultPermissions(),
		AgentAccess: types.AgentAccess{},
	}
	if err := s.repo.Create(ctx, store); err != nil {
		// Concurrent connects race on the (owner, domain) index, or on the
		// partial primary index when two first stores insert together.
		switch {
		case db.IsUniqueViolation(err, "idx_stores_owner_domain"):
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "store already connected")
		case db.IsUniqueViolation(err, "idx_stores_owner_primary"):
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "primary store already assigned")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist store")
	}

	ctx = s.logg.WithStoreID(ctx, store.ID.String())
	if err := s.creds.Store(ctx, ownerID, store.ID, rawToken); err != nil {
		s.logg.Warn(ctx, "initial credential write failed")
	}

	s.cache.Invalidate(ctx, ownerID, store.ID)
	s.kickOffSync(ctx, ownerID, store.ID)
	s.logg.Info(ctx, "store registered")
	return FromModel(store), nil
}

// kickOffSync runs the initial sync detached from the request; a failure here
// only marks the store's own sync fields.
func (s *service) kickOffSync(ctx context.Context, ownerID, storeID uuid.UUID) {
	bg := s.logg.WithStoreID(context.Background(), storeID.String())
	bg = s.logg.WithOwnerID(bg, ownerID.String())
	go func() {
		if err := s.syncer.Sync(bg, ownerID, storeID); err != nil {
			s.logg.Warn(bg, "initial sync kickoff failed")
		}
	}()
}

func (s *service) RemoveStore(ctx context.Context, ownerID, storeID uuid.UUID) error {
	store, err := s.repo.FindByOwnerAndID(ctx, ownerID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	ctx = s.logg.WithStoreID(ctx, storeID.String())
	s.cleanupPlatformWebhooks(ctx, store)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteWebhooksWithTx(tx, storeID); err != nil {
			return fmt.Errorf("delete webhook rows: %w", err)
		}
		if err := s.repo.DeleteCredentialsWithTx(tx, storeID); err != nil {
			return fmt.Errorf("delete credential: %w", err)
		}
		if err := s.repo.DeleteWithTx(tx, storeID); err != nil {
			return fmt.Errorf("delete store: %w", err)
		}
		if store.IsPrimary {
			next, err := s.repo.MostRecentlyConnectedWithTx(tx, ownerID, storeID)
			switch {
			case err == nil:
				if _, err := s.repo.SetPrimaryWithTx(tx, ownerID, next.ID); err != nil {
					return fmt.Errorf("promote primary: %w", err)
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				// last store removed, nothing to promote
			default:
				return fmt.Errorf("find promotion candidate: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove store")
	}

	s.cache.Invalidate(ctx, ownerID, storeID)
	s.logg.Info(ctx, "store removed")
	return nil
}

// cleanupPlatformWebhooks deletes the platform-side webhook subscriptions for
// the store. Failures are collected and logged; they never block removal.
func (s *service) cleanupPlatformWebhooks(ctx context.Context, store *models.Store) {
	hooks, err := s.repo.FindWebhooksByStore(ctx, store.ID)
	if err != nil {
		s.logg.Warn(ctx, "listing webhook registrations failed")
		return
	}
	if len(hooks) == 0 {
		return
	}

	token, err := s.creds.Token(ctx, store.OwnerID, store.ID)
	if err != nil {
		s.logg.Warn(ctx, "webhook cleanup skipped, credential unavailable")
		return
	}

	// Reconcile against the platform so hooks already gone there are not
	// deleted again. When the listing fails, every recorded hook is attempted.
	verified := true
	live, err := s.platform.ListWebhooks(ctx, store.Domain, token)
	if err != nil {
		s.logg.Warn(ctx, "listing platform webhooks failed")
		verified = false
	}
	present := make(map[int64]bool, len(live))
	for _, hook := range live {
		present[hook.ID] = true
	}

	var cleanupErr error
	for _, hook := range hooks {
		if verified && !present[hook.PlatformWebhookID] {
			continue
		}
		if err := s.platform.DeleteWebhook(ctx, store.Domain, token, hook.PlatformWebhookID); err != nil {
			cleanupErr = multierr.Append(cleanupErr, fmt.Errorf("webhook %d: %w", hook.PlatformWebhookID, err))
		}
	}
	if cleanupErr != nil {
		s.logg.Error(ctx, "webhook cleanup incomplete", cleanupErr)
	}
}

func (s *service) SetPrimaryStore(ctx context.Context, ownerID, storeID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.ClearPrimaryWithTx(tx, ownerID); err != nil {
			return fmt.Errorf("clear primary: %w", err)
		}
		rows, err := s.repo.SetPrimaryWithTx(tx, ownerID, storeID)
		if err != nil {
			return fmt.Errorf("set primary: %w", err)
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set primary store")
	}

	s.cache.Invalidate(ctx, ownerID, storeID)
	return nil
}

func (s *service) ListStores(ctx context.Context, ownerID uuid.UUID) ([]StoreDTO, error) {
	if cached, ok := s.cache.GetOwnerStores(ctx, ownerID); ok {
		return cached, nil
	}

	records, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	list := FromModels(records)
	s.cache.SetOwnerStores(ctx, ownerID, list)
	return list, nil
}

func (s *service) GetPrimaryStore(ctx context.Context, ownerID uuid.UUID) (*StoreDTO, error) {
	list, err := s.ListStores(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	for i := range list {
		if list[i].IsPrimary {
			return &list[i], nil
		}
	}
	// fall back to the earliest-connected store
	return &list[0], nil
}

func (s *service) UpdatePermissions(ctx context.Context, ownerID, storeID uuid.UUID, partial types.Permissions) (*StoreDTO, error) {
	store, err := s.loadOwned(ctx, ownerID, storeID)
	if err != nil {
		return nil, err
	}

	store.Permissions = store.Permissions.Merge(partial)
	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update permissions")
	}
	s.cache.Invalidate(ctx, ownerID, storeID)
	return FromModel(store), nil
}

func (s *service) UpdateAgentAccess(ctx context.Context, ownerID, storeID uuid.UUID, partial types.AgentAccess) (*StoreDTO, error) {
	store, err := s.loadOwned(ctx, ownerID, storeID)
	if err != nil {
		return nil, err
	}

	store.AgentAccess = store.AgentAccess.Merge(partial)
	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update agent access")
	}
	s.cache.Invalidate(ctx, ownerID, storeID)
	return FromModel(store), nil
}

func (s *service) loadOwned(ctx context.Context, ownerID, storeID uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindByOwnerAndID(ctx, ownerID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}
