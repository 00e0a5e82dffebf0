package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jummai/wabot/core/store"
)

func newTestController(now time.Time) (*Controller, store.Store) {
	st := store.NewMemoryStore()
	c := NewController(st)
	c.now = func() time.Time { return now }
	return c, st
}

func TestHandleOnboardingFlow(t *testing.T) {
	ctx := context.Background()
	c, st := newTestController(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))

	// First contact is spent on the welcome, whatever the body says.
	reply, err := c.Handle(ctx, "whatsapp:+2348001", "I sold 3 shirts for 5k each")
	if err != nil {
		t.Fatalf("welcome: %v", err)
	}
	if !strings.Contains(reply, "Welcome to Jummai") {
		t.Fatalf("expected welcome reply, got %q", reply)
	}
	if sales, _ := st.SalesSince(ctx, "whatsapp:+2348001", time.Time{}); len(sales) != 0 {
		t.Fatalf("first message must not record a sale, got %d", len(sales))
	}

	// Second message names the business and activates the account.
	reply, err = c.Handle(ctx, "whatsapp:+2348001", "Acme Foods")
	if err != nil {
		t.Fatalf("set name: %v", err)
	}
	if !strings.Contains(reply, "Acme Foods") {
		t.Fatalf("expected name confirmation, got %q", reply)
	}
	user, _, err := st.GetOrCreateUser(ctx, "whatsapp:+2348001")
	if err != nil {
		t.Fatal(err)
	}
	if user.Stage != store.StageActive {
		t.Fatalf("stage = %q, want %q", user.Stage, store.StageActive)
	}
	if user.BusinessName != "Acme Foods" {
		t.Fatalf("business name = %q", user.BusinessName)
	}
}

func TestHandleRecordSale(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	c, st := newTestController(now)
	activateUser(t, c, "whatsapp:+2348002")

	reply, err := c.Handle(ctx, "whatsapp:+2348002", "I sold 3 shirts for 5k each")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "Sale recorded") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if !strings.Contains(reply, "₦5,000") {
		t.Fatalf("reply missing formatted amount: %q", reply)
	}

	sales, err := st.SalesSince(ctx, "whatsapp:+2348002", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sales) != 1 {
		t.Fatalf("got %d sales, want 1", len(sales))
	}
	s := sales[0]
	// "shirts" is not a recognized unit word, so the quantity defaults to 1.
	if s.Product != "3 shirts" || s.Amount != 5000 || s.Quantity != 1 {
		t.Fatalf("sale = %+v", s)
	}
	if !s.RecordedAt.Equal(now) {
		t.Fatalf("recorded at %v, want %v", s.RecordedAt, now)
	}
}

func TestHandleRecordSaleBadAmount(t *testing.T) {
	ctx := context.Background()
	c, st := newTestController(time.Now())
	activateUser(t, c, "whatsapp:+2348003")

	reply, err := c.Handle(ctx, "whatsapp:+2348003", "I sold some shirts")
	if err != nil {
		t.Fatal(err)
	}
	if reply != amountNotUnderstoodReply {
		t.Fatalf("unexpected reply %q", reply)
	}
	if sales, _ := st.SalesSince(ctx, "whatsapp:+2348003", time.Time{}); len(sales) != 0 {
		t.Fatalf("unparseable sale must not be stored, got %d", len(sales))
	}
}

func TestHandleRestockAndInventory(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	activateUser(t, c, "whatsapp:+2348004")

	reply, err := c.Handle(ctx, "whatsapp:+2348004", "Add 10 bags of rice")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "Inventory updated") || !strings.Contains(reply, "rice") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if !strings.Contains(reply, "Current Stock: 10") {
		t.Fatalf("reply missing stock total: %q", reply)
	}

	reply, err = c.Handle(ctx, "whatsapp:+2348004", "show inventory")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "rice: 10 in stock") {
		t.Fatalf("unexpected inventory listing %q", reply)
	}
}

func TestHandleSalesReportWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	st := store.NewMemoryStore()
	c := NewController(st)
	activateUser(t, c, "whatsapp:+2348005")

	// One sale well outside the 7-day window, two inside.
	clock := now.Add(-30 * 24 * time.Hour)
	c.now = func() time.Time { return clock }
	if _, err := c.Handle(ctx, "whatsapp:+2348005", "sold old stock for 9k"); err != nil {
		t.Fatal(err)
	}
	clock = now.Add(-2 * 24 * time.Hour)
	if _, err := c.Handle(ctx, "whatsapp:+2348005", "sold shirts for 5k"); err != nil {
		t.Fatal(err)
	}
	clock = now.Add(-time.Hour)
	if _, err := c.Handle(ctx, "whatsapp:+2348005", "sold caps for 2k"); err != nil {
		t.Fatal(err)
	}

	clock = now
	reply, err := c.Handle(ctx, "whatsapp:+2348005", "show sales this week")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "Total Sales: ₦7,000") {
		t.Fatalf("unexpected total in %q", reply)
	}
	if !strings.Contains(reply, "Transactions: 2") {
		t.Fatalf("unexpected transaction count in %q", reply)
	}
	if strings.Contains(reply, "old stock") {
		t.Fatalf("stale sale leaked into report: %q", reply)
	}
}

func TestHandleSalesReportEmpty(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(time.Now())
	activateUser(t, c, "whatsapp:+2348006")

	reply, err := c.Handle(ctx, "whatsapp:+2348006", "show sales")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "No sales yet") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if !strings.Contains(reply, "Total Sales: ₦0") {
		t.Fatalf("unexpected total in %q", reply)
	}
}

func TestHandleHelpAndUnknown(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(time.Now())
	activateUser(t, c, "whatsapp:+2348007")

	reply, err := c.Handle(ctx, "whatsapp:+2348007", "help")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "JUMMAI HELP") || !strings.Contains(reply, "Shop Seven") {
		t.Fatalf("unexpected help reply %q", reply)
	}

	reply, err = c.Handle(ctx, "whatsapp:+2348007", "what is the weather")
	if err != nil {
		t.Fatal(err)
	}
	if reply != unknownReply {
		t.Fatalf("unexpected fallback %q", reply)
	}
}

// activateUser walks a fresh sender through welcome and naming so tests
// start from an active account named "Shop Seven".
func activateUser(t *testing.T, c *Controller, sender string) {
	t.Helper()
	ctx := context.Background()
	if _, err := c.Handle(ctx, sender, "hi"); err != nil {
		t.Fatalf("welcome %s: %v", sender, err)
	}
	if _, err := c.Handle(ctx, sender, "Shop Seven"); err != nil {
		t.Fatalf("name %s: %v", sender, err)
	}
}

func TestFormatNaira(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "₦0"},
		{5, "₦5"},
		{500, "₦500"},
		{5000, "₦5,000"},
		{1234567, "₦1,234,567"},
		{-5000, "-₦5,000"},
	}
	for _, tc := range cases {
		if got := formatNaira(tc.in); got != tc.want {
			t.Errorf("formatNaira(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
