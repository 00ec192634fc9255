package insights

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storelinkhq/storelink-backend/pkg/enums"
)

// StoreMetrics is one store's slice of the cross-store metrics read.
type StoreMetrics struct {
	StoreID           uuid.UUID       `json:"store_id"`
	Domain            string          `json:"domain"`
	Name              string          `json:"name"`
	Currency          string          `json:"currency"`
	OrderCount        int             `json:"order_count"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

// Insight is a derived analytical finding. It is computed on demand and never
// persisted.
type Insight struct {
	Type            enums.InsightType   `json:"type"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	StoreIDs        []uuid.UUID         `json:"store_ids"`
	Data            map[string]any      `json:"data"`
	Recommendations []string            `json:"recommendations"`
	Impact          enums.InsightImpact `json:"impact"`
}
