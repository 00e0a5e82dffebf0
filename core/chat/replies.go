package chat

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jummai/wabot/core/store"
)

const replyTimeLayout = "02 Jan 2006 15:04"

const welcomeReply = `Welcome to Jummai! 👋

I help you track your business sales and inventory.

Try these:
💰 "I sold 2 shirts for 5k each"
📦 "Add 10 bags of rice"
📊 "Show sales this week"

What's your business name?`

const amountNotUnderstoodReply = `I couldn't understand the amount. Try: "I sold 2 shirts for 5k each"`

const unknownReply = `I didn't understand that. Try:
💰 "I sold 2 shirts for 5k each"
📦 "Add 10 bags of rice"
📊 "Show sales this week"
❓ "help" for more commands`

const apologyReply = `Sorry, something went wrong. Please try again.`

func nameConfirmedReply(name string) string {
	return fmt.Sprintf(`Great! %s is now set up. 🎉

Try logging your first sale:
"I sold 2 shirts for 5k each"`, name)
}

func saleRecordedReply(sale store.SaleRecord, lifetimeCount int) string {
	return fmt.Sprintf(`✅ Sale recorded!
📝 Product: %s
💰 Amount: %s
📊 Quantity: %d
📅 Time: %s

Total sales recorded: %d`,
		sale.Product,
		formatNaira(sale.Amount),
		sale.Quantity,
		sale.RecordedAt.Format(replyTimeLayout),
		lifetimeCount,
	)
}

func stockUpdatedReply(product string, stock int, at time.Time) string {
	return fmt.Sprintf(`📦 Inventory updated!
🆕 Product: %s
📊 Current Stock: %d
📅 Updated: %s`,
		product, stock, at.Format(replyTimeLayout),
	)
}

func salesReportReply(sales []store.SaleRecord) string {
	var total int64
	for _, s := range sales {
		total += s.Amount
	}

	recent := sales
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	lines := make([]string, 0, len(recent))
	for _, s := range recent {
		lines = append(lines, fmt.Sprintf("• %s: %s", s.Product, formatNaira(s.Amount)))
	}
	listing := strings.Join(lines, "\n")
	if listing == "" {
		listing = "No sales yet"
	}

	return fmt.Sprintf(`📊 WEEKLY SALES REPORT
💰 Total Sales: %s
📈 Transactions: %d
📅 Last 7 days

Recent sales:
%s`, formatNaira(total), len(sales), listing)
}

func inventoryReply(inv map[string]int) string {
	if len(inv) == 0 {
		return `📦 No inventory items yet.
Try: "Add 10 bags of rice"`
	}

	products := make([]string, 0, len(inv))
	for p := range inv {
		products = append(products, p)
	}
	sort.Strings(products)

	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, fmt.Sprintf("• %s: %d in stock", p, inv[p]))
	}
	return "📦 CURRENT INVENTORY:\n" + strings.Join(lines, "\n")
}

func helpReply(businessName string) string {
	if businessName == "" {
		businessName = "Not set"
	}
	return fmt.Sprintf(`🆘 JUMMAI HELP

💰 Record Sales:
"I sold 2 shirts for 5k each"

📦 Add Inventory:
"Add 10 bags of rice"

📊 View Reports:
"Show sales this week"

📦 Check Inventory:
"Show inventory"

🏪 Business: %s
Need help? Just ask!`, businessName)
}

// formatNaira renders an amount in whole naira with comma grouping: ₦5,000.
func formatNaira(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₦")
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

// ApologyReply is sent when message handling fails unexpectedly.
func ApologyReply() string {
	return apologyReply
}
