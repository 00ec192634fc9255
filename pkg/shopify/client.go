package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/shopspring/decimal"

	"github.com/storelinkhq/storelink-backend/pkg/config"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
	"github.com/storelinkhq/storelink-backend/pkg/types"
)

var errLoggerRequired = errors.New("shopify logger is required")

// ShopInfo carries the shop attributes the registry stores as passthrough
// platform metadata.
type ShopInfo struct {
	ID       int64
	Name     string
	Currency string
	Timezone string
	PlanTier string
	Country  string
	Address  types.Address
}

// OrderSummary is the slice of an order the insight engine needs.
type OrderSummary struct {
	TotalPrice decimal.Decimal
	Currency   string
}

// WebhookInfo identifies a platform-side webhook subscription.
type WebhookInfo struct {
	ID      int64
	Topic   string
	Address string
}

// Client wraps go-shopify with per-call token handling. Tokens are supplied
// fresh on every call; the wrapper never caches them.
type Client struct {
	app    goshopify.App
	logger *logger.Logger
}

// NewClient builds the Shopify wrapper from app credentials.
func NewClient(cfg config.ShopifyConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &Client{
		app: goshopify.App{
			ApiKey:    cfg.APIKey,
			ApiSecret: cfg.APISecret,
		},
		logger: logg,
	}, nil
}

func (c *Client) session(domain, accessToken string) (*goshopify.Client, error) {
	client, err := goshopify.NewClient(c.app, domain, accessToken)
	if err != nil {
		return nil, fmt.Errorf("create shopify session: %w", err)
	}
	return client, nil
}

// GetShop fetches the shop record, which doubles as token validation: an
// invalid or revoked token fails here with an auth error.
func (c *Client) GetShop(ctx context.Context, domain, accessToken string) (*ShopInfo, error) {
	client, err := c.session(domain, accessToken)
	if err != nil {
		return nil, err
	}

	shop, err := client.Shop.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	return shopInfoFrom(shop), nil
}

func shopInfoFrom(shop *goshopify.Shop) *ShopInfo {
	return &ShopInfo{
		ID:       int64(shop.Id),
		Name:     shop.Name,
		Currency: shop.Currency,
		Timezone: shop.IanaTimezone,
		PlanTier: shop.PlanName,
		Country:  shop.CountryCode,
		Address: types.Address{
			Line1:      shop.Address1,
			City:       shop.City,
			Province:   shop.Province,
			PostalCode: shop.Zip,
			Country:    shop.CountryCode,
			Phone:      shop.Phone,
		},
	}
}

// CountProducts returns the product count for the shop.
func (c *Client) CountProducts(ctx context.Context, domain, accessToken string) (int, error) {
	client, err := c.session(domain, accessToken)
	if err != nil {
		return 0, err
	}
	count, err := client.Product.Count(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// CountOrders returns the order count for the shop, any status. A non-zero
// since restricts the count to orders created after that time; a zero since
// counts the shop's lifetime orders.
func (c *Client) CountOrders(ctx context.Context, domain, accessToken string, since time.Time) (int, error) {
	client, err := c.session(domain, accessToken)
	if err != nil {
		return 0, err
	}
	options := goshopify.OrderCountOptions{Status: "any"}
	if !since.IsZero() {
		options.CreatedAtMin = since
	}
	count, err := client.Order.Count(ctx, options)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

// CountCustomers returns the customer count for the shop.
func (c *Client) CountCustomers(ctx context.Context, domain, accessToken string) (int, error) {
	client, err := c.session(domain, accessToken)
	if err != nil {
		return 0, err
	}
	count, err := client.Customer.Count(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return count, nil
}

// ListOrders fetches order summaries created since the given time.
func (c *Client) ListOrders(ctx context.Context, domain, accessToken string, since time.Time, limit int) ([]OrderSummary, error) {
	client, err := c.session(domain, accessToken)
	if err != nil {
		return nil, err
	}

	options := goshopify.OrderListOptions{
		Status: "any",
		ListOptions: goshopify.ListOptions{
			CreatedAtMin: since,
			Limit:        limit,
		},
	}
	orders, err := client.Order.List(ctx, options)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if limit > 0 && len(orders) == limit {
		logCtx := c.logger.WithField(ctx, "domain", domain)
		c.logger.Warn(logCtx, "order list filled the page limit, older orders in the window may be missing")
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, order := range orders {
		summary := OrderSummary{Currency: order.Currency}
		if order.TotalPrice != nil {
			summary.TotalPrice = *order.TotalPrice
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ListWebhooks returns the webhook subscriptions registered for the shop.
func (c *Client) ListWebhooks(ctx context.Context, domain, accessToken string) ([]WebhookInfo, error) {
	client, err := c.session(domain, accessToken)
	if err != nil {
		return nil, err
	}

	webhooks, err := client.Webhook.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}

	infos := make([]WebhookInfo, 0, len(webhooks))
	for _, hook := range webhooks {
		infos = append(infos, webhookInfoFrom(hook))
	}
	return infos, nil
}

func webhookInfoFrom(hook goshopify.Webhook) WebhookInfo {
	return WebhookInfo{
		ID:      int64(hook.Id),
		Topic:   hook.Topic,
		Address: hook.Address,
	}
}

// DeleteWebhook removes a platform-side webhook subscription.
func (c *Client) DeleteWebhook(ctx context.Context, domain, accessToken string, webhookID int64) error {
	client, err := c.session(domain, accessToken)
	if err != nil {
		return err
	}
	if err := client.Webhook.Delete(ctx, uint64(webhookID)); err != nil {
		return fmt.Errorf("delete webhook %d: %w", webhookID, err)
	}
	return nil
}

// IsAuthError reports whether the platform rejected the credential itself, as
// opposed to a transient failure.
func IsAuthError(err error) bool {
	var responseErr goshopify.ResponseError
	if errors.As(err, &responseErr) {
		status := responseErr.GetStatus()
		return status == http.StatusUnauthorized || status == http.StatusPaymentRequired || status == http.StatusForbidden
	}
	return false
}
