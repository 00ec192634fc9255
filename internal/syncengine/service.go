package syncengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelinkhq/storelink-backend/pkg/db/models"
	pkgerrors "github.com/storelinkhq/storelink-backend/pkg/errors"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
	"github.com/storelinkhq/storelink-backend/pkg/metrics"
	"github.com/storelinkhq/storelink-backend/pkg/types"
)

type storeLoader interface {
	FindByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*models.Store, error)
}

type syncStateRepository interface {
	BeginSync(ctx context.Context, storeID uuid.UUID) (bool, error)
	CompleteSync(ctx context.Context, storeID uuid.UUID, snapshot types.SyncSnapshot) error
	FailSync(ctx context.Context, storeID uuid.UUID, message string) error
}

type tokenSource interface {
	Token(ctx context.Context, ownerID, storeID uuid.UUID) (string, error)
}

type platformCounter interface {
	CountProducts(ctx context.Context, domain, accessToken string) (int, error)
	CountOrders(ctx context.Context, domain, accessToken string, since time.Time) (int, error)
	CountCustomers(ctx context.Context, domain, accessToken string) (int, error)
}

// Service drives the per-store sync state machine.
type Service interface {
	Sync(ctx context.Context, ownerID, storeID uuid.UUID) error
}

type service struct {
	stores   storeLoader
	state    syncStateRepository
	creds    tokenSource
	platform platformCounter
	metrics  *metrics.SyncMetrics
	timeout  time.Duration
	logg     *logger.Logger
}

// NewService builds the sync engine. Metrics may be nil.
func NewService(stores storeLoader, state syncStateRepository, creds tokenSource, platform platformCounter, syncMetrics *metrics.SyncMetrics, timeout time.Duration, logg *logger.Logger) (Service, error) {
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	if state == nil {
		return nil, fmt.Errorf("sync state repository required")
	}
	if creds == nil {
		return nil, fmt.Errorf("token source required")
	}
	if platform == nil {
		return nil, fmt.Errorf("platform client required")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("sync timeout must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		stores:   stores,
		state:    state,
		creds:    creds,
		platform: platform,
		metrics:  syncMetrics,
		timeout:  timeout,
		logg:     logg,
	}, nil
}

// Sync runs one pass of the state machine. After the store passes the syncing
// gate it always lands in synced or error; failures past the gate are recorded
// on the store, not returned.
func (s *service) Sync(ctx context.Context, ownerID, storeID uuid.UUID) error {
	store, err := s.stores.FindByOwnerAndID(ctx, ownerID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	ctx = s.logg.WithStoreID(ctx, storeID.String())
	acquired, err := s.state.BeginSync(ctx, storeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "begin sync")
	}
	if !acquired {
		s.logg.Debug(ctx, "sync already in flight, skipping")
		return nil
	}

	started := time.Now()
	snapshot, runErr := s.run(ctx, store)
	if runErr != nil {
		s.metrics.IncFailure("shopify")
		s.fail(ctx, storeID, runErr)
		return nil
	}

	if err := s.state.CompleteSync(ctx, storeID, *snapshot); err != nil {
		s.metrics.IncFailure("shopify")
		s.fail(ctx, storeID, fmt.Errorf("record sync result: %w", err))
		return nil
	}
	s.metrics.IncSuccess("shopify")
	s.metrics.ObserveDuration("shopify", time.Since(started))
	s.logg.Info(ctx, "store sync completed")
	return nil
}

// run fetches the snapshot counts under the configured timeout.
func (s *service) run(ctx context.Context, store *models.Store) (*types.SyncSnapshot, error) {
	token, err := s.creds.Token(ctx, store.OwnerID, store.ID)
	if err != nil {
		return nil, fmt.Errorf("credential unavailable: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	products, err := s.platform.CountProducts(callCtx, store.Domain, token)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	// The snapshot is a lifetime count, so no since filter.
	orders, err := s.platform.CountOrders(callCtx, store.Domain, token, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	customers, err := s.platform.CountCustomers(callCtx, store.Domain, token)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	return &types.SyncSnapshot{
		Products:  products,
		Orders:    orders,
		Customers: customers,
	}, nil
}

// fail writes the error state on a detached context so a cancelled request
// can never leave the store stuck in syncing.
func (s *service) fail(ctx context.Context, storeID uuid.UUID, cause error) {
	s.logg.Error(ctx, "store sync failed", cause)
	writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.state.FailSync(writeCtx, storeID, cause.Error()); err != nil {
		s.logg.Error(ctx, "recording sync failure state failed", err)
	}
}
