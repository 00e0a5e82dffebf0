// Package intent classifies inbound message text into one of a fixed set of
// command intents by substring containment. Ordering is deliberate: a message
// containing both "sold" and "show" records a sale, it never reports.
package intent

import "strings"

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	RecordSale      Intent = "record_sale"
	Restock         Intent = "restock"
	SalesReport     Intent = "sales_report"
	InventoryReport Intent = "inventory_report"
	Help            Intent = "help"
	Unknown         Intent = "unknown"
)

// Classify maps message text to an Intent. First match wins.
func Classify(text string) Intent {
	msg := strings.ToLower(text)
	switch {
	case strings.Contains(msg, "sold") || strings.Contains(msg, "sell"):
		return RecordSale
	case strings.Contains(msg, "add") || strings.Contains(msg, "restock"):
		return Restock
	case strings.Contains(msg, "inventory") || strings.Contains(msg, "stock"):
		return InventoryReport
	case strings.Contains(msg, "show") || strings.Contains(msg, "report") || strings.Contains(msg, "sales"):
		return SalesReport
	case strings.Contains(msg, "help"):
		return Help
	default:
		return Unknown
	}
}

// IsBusinessName reports whether a message from a sender without a business
// name should be captured as the name: anything that does not look like a
// sale or restock command.
func IsBusinessName(text string) bool {
	msg := strings.ToLower(text)
	return !strings.Contains(msg, "sold") && !strings.Contains(msg, "add")
}
