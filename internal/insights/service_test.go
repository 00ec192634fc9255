package insights

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storelinkhq/storelink-backend/pkg/db/models"
	"github.com/storelinkhq/storelink-backend/pkg/enums"
	pkgerrors "github.com/storelinkhq/storelink-backend/pkg/errors"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
	"github.com/storelinkhq/storelink-backend/pkg/shopify"
)

type stubLister struct {
	stores []models.Store
	err    error
}

func (s *stubLister) FindByOwner(_ context.Context, _ uuid.UUID) ([]models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stores, nil
}

type stubTokens struct {
	failFor map[uuid.UUID]bool
}

func (s *stubTokens) Token(_ context.Context, _, storeID uuid.UUID) (string, error) {
	if s.failFor[storeID] {
		return "", fmt.Errorf("credential not found")
	}
	return "tok-" + storeID.String()[:8], nil
}

type domainOrders struct {
	count         int
	lifetimeCount int
	orders        []shopify.OrderSummary
	err           error
}

type stubOrderReader struct {
	byDomain  map[string]domainOrders
	lastSince time.Time
}

func (s *stubOrderReader) CountOrders(_ context.Context, domain, _ string, since time.Time) (int, error) {
	s.lastSince = since
	d := s.byDomain[domain]
	if d.err != nil {
		return 0, d.err
	}
	if since.IsZero() {
		return d.lifetimeCount, nil
	}
	return d.count, nil
}

func (s *stubOrderReader) ListOrders(_ context.Context, domain, _ string, _ time.Time, _ int) ([]shopify.OrderSummary, error) {
	d := s.byDomain[domain]
	if d.err != nil {
		return nil, d.err
	}
	return d.orders, nil
}

func orderOf(amount string, currency string) shopify.OrderSummary {
	return shopify.OrderSummary{TotalPrice: decimal.RequireFromString(amount), Currency: currency}
}

func storeOf(ownerID uuid.UUID, domain, currency string, active bool) models.Store {
	return models.Store{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Domain:   domain,
		Currency: currency,
		IsActive: active,
	}
}

func newInsightsFixture(t *testing.T, lister *stubLister, tokens *stubTokens, platform *stubOrderReader) Service {
	t.Helper()

	if tokens == nil {
		tokens = &stubTokens{}
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(lister, tokens, platform, 250, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestMetricsComputesRevenueAndAOV(t *testing.T) {
	ownerID := uuid.New()
	store := storeOf(ownerID, "alpha.myshopify.com", "USD", true)
	lister := &stubLister{stores: []models.Store{store}}
	platform := &stubOrderReader{byDomain: map[string]domainOrders{
		"alpha.myshopify.com": {
			count: 3,
			orders: []shopify.OrderSummary{
				orderOf("100.00", "USD"),
				orderOf("150.00", "USD"),
				orderOf("200.00", "USD"),
			},
		},
	}}
	svc := newInsightsFixture(t, lister, nil, platform)

	metrics, err := svc.Metrics(context.Background(), ownerID, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("expected 1 result, got %d", len(metrics))
	}
	m := metrics[0]
	if m.OrderCount != 3 {
		t.Fatalf("order count = %d, want 3", m.OrderCount)
	}
	if !m.Revenue.Equal(decimal.RequireFromString("450.00")) {
		t.Fatalf("revenue = %s, want 450.00", m.Revenue)
	}
	if !m.AverageOrderValue.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("aov = %s, want 150", m.AverageOrderValue)
	}
	if m.StoreID != store.ID || m.Currency != "USD" {
		t.Fatalf("unexpected metrics identity: %+v", m)
	}
}

func TestMetricsCountScopedToTimeframe(t *testing.T) {
	ownerID := uuid.New()
	store := storeOf(ownerID, "alpha.myshopify.com", "USD", true)
	lister := &stubLister{stores: []models.Store{store}}
	platform := &stubOrderReader{byDomain: map[string]domainOrders{
		"alpha.myshopify.com": {
			count:         1,
			lifetimeCount: 1000,
			orders:        []shopify.OrderSummary{orderOf("50.00", "USD")},
		},
	}}
	svc := newInsightsFixture(t, lister, nil, platform)

	metrics, err := svc.Metrics(context.Background(), ownerID, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("expected 1 result, got %d", len(metrics))
	}
	if platform.lastSince.IsZero() {
		t.Fatal("order count must be restricted to the timeframe")
	}
	m := metrics[0]
	if m.OrderCount != 1 {
		t.Fatalf("order count = %d, want the in-window count 1", m.OrderCount)
	}
	if !m.AverageOrderValue.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("aov = %s, want 50.00", m.AverageOrderValue)
	}
}

func TestMetricsZeroOrdersMeansZeroAOV(t *testing.T) {
	ownerID := uuid.New()
	store := storeOf(ownerID, "quiet.myshopify.com", "USD", true)
	lister := &stubLister{stores: []models.Store{store}}
	platform := &stubOrderReader{byDomain: map[string]domainOrders{
		"quiet.myshopify.com": {count: 0},
	}}
	svc := newInsightsFixture(t, lister, nil, platform)

	metrics, err := svc.Metrics(context.Background(), ownerID, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(metrics) != 1 {
		t.Fatalf("expected 1 result, got %d", len(metrics))
	}
	if !metrics[0].AverageOrderValue.IsZero() {
		t.Fatalf("aov = %s, want 0", metrics[0].AverageOrderValue)
	}
}

func TestMetricsSkipsInactiveAndFailingStores(t *testing.T) {
	ownerID := uuid.New()
	healthy := storeOf(ownerID, "healthy.myshopify.com", "USD", true)
	inactive := storeOf(ownerID, "paused.myshopify.com", "USD", false)
	broken := storeOf(ownerID, "broken.myshopify.com", "USD", true)
	lister := &stubLister{stores: []models.Store{healthy, inactive, broken}}
	platform := &stubOrderReader{byDomain: map[string]domainOrders{
		"healthy.myshopify.com": {count: 1, orders: []shopify.OrderSummary{orderOf("10.00", "USD")}},
		"broken.myshopify.com":  {err: fmt.Errorf("platform unavailable")},
	}}
	svc := newInsightsFixture(t, lister, nil, platform)

	metrics, err := svc.Metrics(context.Background(), ownerID, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("partial results must not error: %v", err)
	}
	if len(metrics) != 1 || metrics[0].StoreID != healthy.ID {
		t.Fatalf("expected only the healthy store, got %+v", metrics)
	}
}

func TestMetricsSkipsStoreWithoutCredential(t *testing.T) {
	ownerID := uuid.New()
	store := storeOf(ownerID, "alpha.myshopify.com", "USD", true)
	lister := &stubLister{stores: []models.Store{store}}
	tokens := &stubTokens{failFor: map[uuid.UUID]bool{store.ID: true}}
	platform := &stubOrderReader{byDomain: map[string]domainOrders{}}
	svc := newInsightsFixture(t, lister, tokens, platform)

	metrics, err := svc.Metrics(context.Background(), ownerID, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(metrics) != 0 {
		t.Fatalf("expected no results, got %d", len(metrics))
	}
}

func TestMetricsRejectsNonPositiveTimeframe(t *testing.T) {
	svc := newInsightsFixture(t, &stubLister{}, nil, &stubOrderReader{})

	_, err := svc.Metrics(context.Background(), uuid.New(), 0)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateInsightsRequiresTwoActiveStores(t *testing.T) {
	ownerID := uuid.New()
	lister := &stubLister{stores: []models.Store{
		storeOf(ownerID, "solo.myshopify.com", "USD", true),
		storeOf(ownerID, "paused.myshopify.com", "USD", false),
	}}
	svc := newInsightsFixture(t, lister, nil, &stubOrderReader{})

	insights, err := svc.GenerateInsights(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(insights) != 0 {
		t.Fatalf("expected no insights below two active stores, got %d", len(insights))
	}
}

func TestGenerateInsightsPerformanceGap(t *testing.T) {
	ownerID := uuid.New()
	alpha := storeOf(ownerID, "alpha.myshopify.com", "USD", true)
	beta := storeOf(ownerID, "beta.myshopify.com", "USD", true)
	lister := &stubLister{stores: []models.Store{alpha, beta}}
	platform := &stubOrderReader{byDomain: map[string]domainOrders{
		"alpha.myshopify.com": {count: 10, orders: []shopify.OrderSummary{orderOf("1000.00", "USD")}},
		"beta.myshopify.com":  {count: 5, orders: []shopify.OrderSummary{orderOf("500.00", "USD")}},
	}}
	svc := newInsightsFixture(t, lister, nil, platform)

	insights, err := svc.GenerateInsights(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	if len(insights) != 1 {
		t.Fatalf("expected exactly one insight, got %d: %+v", len(insights), insights)
	}
	insight := insights[0]
	if insight.Type != enums.InsightTypePerformanceComparison {
		t.Fatalf("type = %s", insight.Type)
	}
	if insight.Impact != enums.InsightImpactHigh {
		t.Fatalf("impact = %s", insight.Impact)
	}
	gap, ok := insight.Data["gap_percent"].(decimal.Decimal)
	if !ok || !gap.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("gap = %v, want 100", insight.Data["gap_percent"])
	}
	if len(insight.StoreIDs) != 2 || insight.StoreIDs[0] != alpha.ID || insight.StoreIDs[1] != beta.ID {
		t.Fatalf("store ids should be top then bottom: %v", insight.StoreIDs)
	}
	if len(insight.Recommendations) == 0 {
		t.Fatal("performance insight carries recommendations")
	}
}

func TestGenerateInsightsSkipsGapOnZeroBottomRevenue(t *testing.T) {
	ownerID := uuid.New()
	alpha := storeOf(ownerID, "alpha.myshopify.com", "USD", true)
	beta := storeOf(ownerID, "beta.myshopify.com", "USD", true)
	lister := &stubLister{stores: []models.Store{alpha, beta}}
	platform := &stubOrderReader{byDomain: map[string]domainOrders{
		"alpha.myshopify.com": {count: 10, orders: []shopify.OrderSummary{orderOf("1000.00", "USD")}},
		"beta.myshopify.com":  {count: 0},
	}}
	svc := newInsightsFixture(t, lister, nil, platform)

	insights, err := svc.GenerateInsights(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}
	for _, insight := range insights {
		if insight.Type == enums.InsightTypePerformanceComparison {
			t.Fatal("zero bottom revenue makes the gap undefined, insight must be skipped")
		}
	}
}

func TestGenerateInsightsCurrencyFragmentation(t *testing.T) {
	ownerID := uuid.New()
	alpha := storeOf(ownerID, "alpha.myshopify.com", "USD", true)
	beta := storeOf(ownerID, "beta.myshopify.com", "EUR", true)
	lister := &stubLister{stores: []models.Store{alpha, beta}}
	platform := &stubOrderReader{byDomain: map[string]domainOrders{
		"alpha.myshopify.com": {count: 2, orders: []shopify.OrderSummary{orderOf("200.00", "USD")}},
		"beta.myshopify.com":  {count: 1, orders: []shopify.OrderSummary{orderOf("100.00", "EUR")}},
	}}
	svc := newInsightsFixture(t, lister, nil, platform)

	insights, err := svc.GenerateInsights(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}

	var pricing *Insight
	for i := range insights {
		if insights[i].Type == enums.InsightTypePricingAnalysis {
			pricing = &insights[i]
		}
	}
	if pricing == nil {
		t.Fatalf("expected a pricing insight, got %+v", insights)
	}
	if pricing.Impact != enums.InsightImpactMedium {
		t.Fatalf("impact = %s", pricing.Impact)
	}
	currencies, ok := pricing.Data["currencies"].([]string)
	if !ok || len(currencies) != 2 || currencies[0] != "EUR" || currencies[1] != "USD" {
		t.Fatalf("currencies = %v", pricing.Data["currencies"])
	}
}

func TestGenerateInsightsListerFailure(t *testing.T) {
	lister := &stubLister{err: fmt.Errorf("connection reset")}
	svc := newInsightsFixture(t, lister, nil, &stubOrderReader{})

	_, err := svc.GenerateInsights(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
