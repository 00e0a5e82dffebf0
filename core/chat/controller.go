// Package chat orchestrates one inbound message end to end: load the
// sender's record, run stage dispatch and intent classification, mutate
// state through the store, and build the reply text.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jummai/wabot/core/chat/intent"
	"github.com/jummai/wabot/core/chat/parse"
	"github.com/jummai/wabot/core/logger"
	"github.com/jummai/wabot/core/store"
)

// Controller turns inbound messages into state mutations and reply text.
type Controller struct {
	store store.Store
	now   func() time.Time
}

// NewController constructs a Controller over the given store.
func NewController(st store.Store) *Controller {
	return &Controller{store: st, now: time.Now}
}

// Handle processes one inbound message and returns the reply to send.
// Exactly one reply is produced per message; soft parse failures yield a
// guidance reply, not an error.
func (c *Controller) Handle(ctx context.Context, sender, body string) (string, error) {
	user, _, err := c.store.GetOrCreateUser(ctx, sender)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}

	// The first message from a new sender is spent on the welcome; its
	// content is ignored entirely.
	if user.Stage == store.StageNew {
		if err := c.store.SetStage(ctx, sender, store.StageAwaitingName); err != nil {
			return "", fmt.Errorf("transition to awaiting name: %w", err)
		}
		logger.Debug(ctx, "chat", "user.welcomed",
			slog.String("status", "ok"),
			slog.String("sender", sender),
		)
		return welcomeReply, nil
	}

	if user.Stage == store.StageAwaitingName && intent.IsBusinessName(body) {
		name := strings.TrimSpace(body)
		if err := c.store.SetBusinessName(ctx, sender, name); err != nil {
			return "", fmt.Errorf("set business name: %w", err)
		}
		logger.Info(ctx, "chat", "user.onboarded",
			slog.String("status", "ok"),
			slog.String("sender", sender),
		)
		return nameConfirmedReply(name), nil
	}

	in := intent.Classify(body)
	ctx = logger.WithHandler(ctx, string(in))

	var reply string
	switch in {
	case intent.RecordSale:
		reply, err = c.recordSale(ctx, sender, body)
	case intent.Restock:
		reply, err = c.restock(ctx, sender, body)
	case intent.SalesReport:
		reply, err = c.salesReport(ctx, sender)
	case intent.InventoryReport:
		reply, err = c.inventoryReport(ctx, sender)
	case intent.Help:
		reply = helpReply(user.BusinessName)
	default:
		reply = unknownReply
	}
	if err != nil {
		return "", err
	}

	logger.Debug(ctx, "chat", "message.handled",
		slog.String("status", "ok"),
		slog.String("intent", string(in)),
	)
	return reply, nil
}

func (c *Controller) recordSale(ctx context.Context, sender, body string) (string, error) {
	amount := parse.Amount(body)
	if amount <= 0 {
		// Soft failure: explain, mutate nothing.
		return amountNotUnderstoodReply, nil
	}

	sale := store.SaleRecord{
		ID:         uuid.NewString(),
		Product:    parse.SaleProduct(body),
		Amount:     amount,
		Quantity:   parse.SaleQuantity(body),
		RecordedAt: c.now(),
	}
	count, err := c.store.AppendSale(ctx, sender, sale)
	if err != nil {
		return "", fmt.Errorf("append sale: %w", err)
	}

	logger.Info(ctx, "chat", "sale.recorded",
		slog.String("status", "ok"),
		slog.String("product", sale.Product),
		slog.Int64("amount", sale.Amount),
		slog.Int("quantity", sale.Quantity),
		slog.Int("sales_total", count),
	)
	return saleRecordedReply(sale, count), nil
}

func (c *Controller) restock(ctx context.Context, sender, body string) (string, error) {
	product := parse.StockProduct(body)
	qty := parse.StockQuantity(body)

	total, err := c.store.AddStock(ctx, sender, product, qty)
	if err != nil {
		return "", fmt.Errorf("add stock: %w", err)
	}

	logger.Info(ctx, "chat", "stock.added",
		slog.String("status", "ok"),
		slog.String("product", product),
		slog.Int("quantity", qty),
		slog.Int("stock", total),
	)
	return stockUpdatedReply(product, total, c.now()), nil
}

func (c *Controller) salesReport(ctx context.Context, sender string) (string, error) {
	since := c.now().Add(-7 * 24 * time.Hour)
	sales, err := c.store.SalesSince(ctx, sender, since)
	if err != nil {
		return "", fmt.Errorf("load sales: %w", err)
	}
	return salesReportReply(sales), nil
}

func (c *Controller) inventoryReport(ctx context.Context, sender string) (string, error) {
	inv, err := c.store.Inventory(ctx, sender)
	if err != nil {
		return "", fmt.Errorf("load inventory: %w", err)
	}
	return inventoryReply(inv), nil
}
