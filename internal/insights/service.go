package insights

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storelinkhq/storelink-backend/pkg/db/models"
	"github.com/storelinkhq/storelink-backend/pkg/enums"
	pkgerrors "github.com/storelinkhq/storelink-backend/pkg/errors"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
	"github.com/storelinkhq/storelink-backend/pkg/shopify"
)

// defaultInsightTimeframe is the lookback window GenerateInsights reads
// metrics over.
const defaultInsightTimeframe = 30 * 24 * time.Hour

type storeLister interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Store, error)
}

type tokenSource interface {
	Token(ctx context.Context, ownerID, storeID uuid.UUID) (string, error)
}

type orderReader interface {
	CountOrders(ctx context.Context, domain, accessToken string, since time.Time) (int, error)
	ListOrders(ctx context.Context, domain, accessToken string, since time.Time, limit int) ([]shopify.OrderSummary, error)
}

// Service aggregates metrics across an owner's stores and derives comparative
// insights from them.
type Service interface {
	Metrics(ctx context.Context, ownerID uuid.UUID, timeframe time.Duration) ([]StoreMetrics, error)
	GenerateInsights(ctx context.Context, ownerID uuid.UUID) ([]Insight, error)
}

type service struct {
	stores     storeLister
	creds      tokenSource
	platform   orderReader
	orderLimit int
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the insight engine. orderLimit caps how many orders each
// per-store revenue read pulls from the platform.
func NewService(stores storeLister, creds tokenSource, platform orderReader, orderLimit int, logg *logger.Logger) (Service, error) {
	if stores == nil {
		return nil, fmt.Errorf("store lister required")
	}
	if creds == nil {
		return nil, fmt.Errorf("credential service required")
	}
	if platform == nil {
		return nil, fmt.Errorf("platform client required")
	}
	if orderLimit <= 0 {
		return nil, fmt.Errorf("order limit must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		stores:     stores,
		creds:      creds,
		platform:   platform,
		orderLimit: orderLimit,
		logg:       logg,
		now:        time.Now,
	}, nil
}

// Metrics reads order counts and revenue for every active store of the owner
// over the timeframe. This is a best-effort analytics read: a store whose
// platform call fails is skipped, not surfaced as an error.
func (s *service) Metrics(ctx context.Context, ownerID uuid.UUID, timeframe time.Duration) ([]StoreMetrics, error) {
	if timeframe <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "timeframe must be positive")
	}

	stores, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}

	since := s.now().Add(-timeframe)
	results := make([]StoreMetrics, 0, len(stores))
	for i := range stores {
		store := &stores[i]
		if !store.IsActive {
			continue
		}
		metrics, err := s.storeMetrics(ctx, store, since)
		if err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"store_id": store.ID.String(),
				"domain":   store.Domain,
			})
			s.logg.Warn(logCtx, "store metrics read failed, skipping store")
			continue
		}
		results = append(results, metrics)
	}
	return results, nil
}

func (s *service) storeMetrics(ctx context.Context, store *models.Store, since time.Time) (StoreMetrics, error) {
	token, err := s.creds.Token(ctx, store.OwnerID, store.ID)
	if err != nil {
		return StoreMetrics{}, fmt.Errorf("credential unavailable: %w", err)
	}

	// Count and revenue must cover the same window, so both reads carry since.
	orderCount, err := s.platform.CountOrders(ctx, store.Domain, token, since)
	if err != nil {
		return StoreMetrics{}, fmt.Errorf("count orders: %w", err)
	}

	orders, err := s.platform.ListOrders(ctx, store.Domain, token, since, s.orderLimit)
	if err != nil {
		return StoreMetrics{}, fmt.Errorf("list orders: %w", err)
	}

	revenue := decimal.Zero
	for _, order := range orders {
		revenue = revenue.Add(order.TotalPrice)
	}

	// Zero orders means AOV 0, not a division error.
	aov := decimal.Zero
	if orderCount > 0 {
		aov = revenue.Div(decimal.NewFromInt(int64(orderCount)))
	}

	return StoreMetrics{
		StoreID:           store.ID,
		Domain:            store.Domain,
		Name:              store.DisplayName,
		Currency:          store.Currency,
		OrderCount:        orderCount,
		Revenue:           revenue,
		AverageOrderValue: aov,
	}, nil
}

// GenerateInsights derives comparative findings across the owner's active
// stores. Fewer than two active stores yields nothing to compare.
func (s *service) GenerateInsights(ctx context.Context, ownerID uuid.UUID) ([]Insight, error) {
	stores, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}

	active := make([]models.Store, 0, len(stores))
	for _, store := range stores {
		if store.IsActive {
			active = append(active, store)
		}
	}
	if len(active) < 2 {
		return []Insight{}, nil
	}

	metrics, err := s.Metrics(ctx, ownerID, defaultInsightTimeframe)
	if err != nil {
		return nil, err
	}

	insights := []Insight{}
	if gap, ok := performanceGap(metrics); ok {
		insights = append(insights, gap)
	}
	if pricing, ok := currencyFragmentation(active); ok {
		insights = append(insights, pricing)
	}
	return insights, nil
}

// performanceGap compares the top and bottom store by revenue. A bottom
// revenue of zero makes the ratio undefined, so the insight is skipped.
func performanceGap(metrics []StoreMetrics) (Insight, bool) {
	if len(metrics) < 2 {
		return Insight{}, false
	}

	sorted := make([]StoreMetrics, len(metrics))
	copy(sorted, metrics)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Revenue.GreaterThan(sorted[j].Revenue)
	})

	top := sorted[0]
	bottom := sorted[len(sorted)-1]
	if !bottom.Revenue.IsPositive() {
		return Insight{}, false
	}

	gap := top.Revenue.Div(bottom.Revenue).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100)).Round(2)

	return Insight{
		Type:  enums.InsightTypePerformanceComparison,
		Title: "Revenue gap between stores",
		Description: fmt.Sprintf("%s generated %s%% more revenue than %s over the last %d days",
			top.Domain, gap.String(), bottom.Domain, int(defaultInsightTimeframe.Hours()/24)),
		StoreIDs: []uuid.UUID{top.StoreID, bottom.StoreID},
		Data: map[string]any{
			"top_store":      top.Domain,
			"top_revenue":    top.Revenue,
			"bottom_store":   bottom.Domain,
			"bottom_revenue": bottom.Revenue,
			"gap_percent":    gap,
		},
		Recommendations: []string{
			"Review the top store's product mix and promotions for tactics to replicate",
			"Audit the bottom store's pricing and checkout funnel for friction",
			"Consider cross-listing the top store's best sellers",
		},
		Impact: enums.InsightImpactHigh,
	}, true
}

// currencyFragmentation flags an owner selling in more than one currency.
func currencyFragmentation(stores []models.Store) (Insight, bool) {
	seen := map[string]bool{}
	currencies := []string{}
	storeIDs := []uuid.UUID{}
	for _, store := range stores {
		storeIDs = append(storeIDs, store.ID)
		if store.Currency == "" || seen[store.Currency] {
			continue
		}
		seen[store.Currency] = true
		currencies = append(currencies, store.Currency)
	}
	if len(currencies) < 2 {
		return Insight{}, false
	}
	sort.Strings(currencies)

	return Insight{
		Type:        enums.InsightTypePricingAnalysis,
		Title:       "Stores operate in multiple currencies",
		Description: fmt.Sprintf("Your stores sell in %d currencies (%v), which complicates cross-store pricing", len(currencies), currencies),
		StoreIDs:    storeIDs,
		Data: map[string]any{
			"currencies": currencies,
		},
		Recommendations: []string{
			"Normalize reporting to a single base currency",
			"Review exchange-rate exposure on cross-store pricing decisions",
		},
		Impact: enums.InsightImpactMedium,
	}, true
}
