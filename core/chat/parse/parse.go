// Package parse holds the pure lexical extractors that pull amounts,
// quantities, and product names out of free-form chat messages. They are
// best-effort pattern matchers tuned for common phrasing ("I sold 2 shirts
// for 5k each", "Add 10 bags of rice") and fall back to defaults instead of
// failing, so the bot can always answer something.
package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultProduct is used when no product name can be extracted.
const DefaultProduct = "Item"

var (
	amountKRe   = regexp.MustCompile(`(\d+)k`)
	numberRe    = regexp.MustCompile(`(\d+)`)
	saleQtyRe   = regexp.MustCompile(`(\d+)\s*(pieces?|bags?|bottles?)`)
	saleProdRe  = regexp.MustCompile(`sold\s+(.+?)\s+for`)
	stockProdRe = regexp.MustCompile(`add\s+\d+\s+(.+)`)
	unitPrefRe  = regexp.MustCompile(`^(?:pieces?|bags?|bottles?)\s+of\s+`)
)

// Amount extracts a monetary amount in whole naira. A k-suffixed number
// ("5k" -> 5000) takes priority over any bare number anywhere in the
// message; only the first match counts. Returns 0 when nothing numeric is
// found.
func Amount(text string) int64 {
	msg := strings.ToLower(text)

	if m := amountKRe.FindStringSubmatch(msg); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil {
			return n * 1000
		}
	}
	if m := numberRe.FindStringSubmatch(msg); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil {
			return n
		}
	}
	return 0
}

// SaleQuantity extracts the unit count from a sale message, recognizing
// "<n> pieces|bags|bottles". Defaults to 1.
func SaleQuantity(text string) int {
	msg := strings.ToLower(text)
	if m := saleQtyRe.FindStringSubmatch(msg); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 1
}

// StockQuantity extracts the unit count from a restock message: the first
// bare run of digits. Defaults to 1.
func StockQuantity(text string) int {
	msg := strings.ToLower(text)
	if m := numberRe.FindStringSubmatch(msg); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 1
}

// SaleProduct extracts the product from a sale message: the words between
// "sold" and the first "for". Defaults to DefaultProduct.
func SaleProduct(text string) string {
	msg := strings.ToLower(text)
	if m := saleProdRe.FindStringSubmatch(msg); m != nil {
		if p := strings.TrimSpace(m[1]); p != "" {
			return p
		}
	}
	return DefaultProduct
}

// StockProduct extracts the product from a restock message: everything
// after "add <n>", with a leading unit phrase ("bags of", "bottles of")
// stripped so "Add 10 bags of rice" keys the inventory under "rice".
// Defaults to DefaultProduct.
func StockProduct(text string) string {
	msg := strings.ToLower(text)
	if m := stockProdRe.FindStringSubmatch(msg); m != nil {
		p := strings.TrimSpace(m[1])
		p = strings.TrimSpace(unitPrefRe.ReplaceAllString(p, ""))
		if p != "" {
			return p
		}
	}
	return DefaultProduct
}
