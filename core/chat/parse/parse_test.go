package parse

import "testing"

func TestAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"I sold 2 shirts for 5k each", 5000},
		{"sold shoes for 12K", 12000},
		{"sold a shirt for 1500", 1500},
		{"sold milk for 500", 500},
		{"I sold something", 0},
		{"", 0},
		// First k-suffixed number wins over any bare number.
		{"sold 3 bags for 2k, then 700 more", 2000},
		// First bare number wins when no k-suffix is present.
		{"sold 3 bags for 700", 3},
	}
	for _, tc := range cases {
		if got := Amount(tc.in); got != tc.want {
			t.Errorf("Amount(%q) = %d, expected %d", tc.in, got, tc.want)
		}
	}
}

func TestSaleQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"I sold 2 pieces for 5k", 2},
		{"sold 10 bags of rice for 3k", 10},
		{"sold 4 bottles for 1k", 4},
		{"sold 3bags for 2k", 3},
		{"sold shirts for 5k", 1},
		{"", 1},
	}
	for _, tc := range cases {
		if got := SaleQuantity(tc.in); got != tc.want {
			t.Errorf("SaleQuantity(%q) = %d, expected %d", tc.in, got, tc.want)
		}
	}
}

func TestStockQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"Add 10 bags of rice", 10},
		{"restock 25 bottles", 25},
		{"add more rice", 1},
		{"", 1},
	}
	for _, tc := range cases {
		if got := StockQuantity(tc.in); got != tc.want {
			t.Errorf("StockQuantity(%q) = %d, expected %d", tc.in, got, tc.want)
		}
	}
}

func TestSaleProduct(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"I sold 3 shirts for 5k each", "3 shirts"},
		{"Sold shirts for 5k", "shirts"},
		// Lazy match stops at the first "for".
		{"sold rice for mama for 2k", "rice"},
		{"I want to sell something", DefaultProduct},
		{"", DefaultProduct},
	}
	for _, tc := range cases {
		if got := SaleProduct(tc.in); got != tc.want {
			t.Errorf("SaleProduct(%q) = %q, expected %q", tc.in, got, tc.want)
		}
	}
}

func TestStockProduct(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Add 10 bags of rice", "rice"},
		{"add 5 bottles of coke", "coke"},
		{"Add 3 shirts", "shirts"},
		{"restock 10 things", DefaultProduct},
		{"", DefaultProduct},
	}
	for _, tc := range cases {
		if got := StockProduct(tc.in); got != tc.want {
			t.Errorf("StockProduct(%q) = %q, expected %q", tc.in, got, tc.want)
		}
	}
}
