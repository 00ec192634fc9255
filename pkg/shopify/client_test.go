package shopify

import (
	"errors"
	"fmt"
	"testing"

	goshopify "github.com/bold-commerce/go-shopify/v4"

	"github.com/storelinkhq/storelink-backend/pkg/config"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
)

func TestNewClientRequiresLogger(t *testing.T) {
	if _, err := NewClient(config.ShopifyConfig{}, nil); err == nil {
		t.Fatal("expected error without logger")
	}
}

func TestNewClientBuildsApp(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	client, err := NewClient(config.ShopifyConfig{APIKey: "key", APISecret: "secret"}, logg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.app.ApiKey != "key" || client.app.ApiSecret != "secret" {
		t.Fatal("app credentials not wired")
	}
}

func TestShopInfoMapping(t *testing.T) {
	info := shopInfoFrom(&goshopify.Shop{
		Id:           42,
		Name:         "Alpha",
		Currency:     "USD",
		IanaTimezone: "America/Chicago",
		PlanName:     "basic",
		CountryCode:  "US",
		Address1:     "1 Main St",
		City:         "Austin",
	})
	if info.ID != 42 {
		t.Fatalf("shop id = %d, want 42", info.ID)
	}
	if info.Name != "Alpha" || info.Currency != "USD" || info.PlanTier != "basic" {
		t.Fatalf("shop fields not mapped: %+v", info)
	}
	if info.Address.Line1 != "1 Main St" || info.Address.Country != "US" {
		t.Fatalf("address not mapped: %+v", info.Address)
	}
}

func TestWebhookInfoMapping(t *testing.T) {
	info := webhookInfoFrom(goshopify.Webhook{Id: 7, Topic: "orders/create", Address: "https://example.com/hook"})
	if info.ID != 7 || info.Topic != "orders/create" || info.Address != "https://example.com/hook" {
		t.Fatalf("webhook fields not mapped: %+v", info)
	}
}

func TestIsAuthError(t *testing.T) {
	unauthorized := goshopify.ResponseError{Status: 401}
	if !IsAuthError(unauthorized) {
		t.Fatal("401 should be an auth error")
	}
	if !IsAuthError(fmt.Errorf("get shop: %w", goshopify.ResponseError{Status: 403})) {
		t.Fatal("wrapped 403 should be an auth error")
	}
	if IsAuthError(goshopify.ResponseError{Status: 429}) {
		t.Fatal("429 is transient, not an auth failure")
	}
	if IsAuthError(errors.New("timeout")) {
		t.Fatal("plain errors are not auth failures")
	}
}
