package intent

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		want Intent
	}{
		{"I sold 2 shirts for 5k each", RecordSale},
		{"I want to sell my shoes", RecordSale},
		{"Add 10 bags of rice", Restock},
		{"restock 5 bottles", Restock},
		{"Show sales this week", SalesReport},
		{"weekly report please", SalesReport},
		{"inventory", InventoryReport},
		{"how much stock do I have", InventoryReport},
		{"help", Help},
		{"good morning", Unknown},
		{"", Unknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.in); got != tc.want {
			t.Errorf("Classify(%q) = %s, expected %s", tc.in, got, tc.want)
		}
	}
}

func TestClassifyPrecedence(t *testing.T) {
	// "sold" outranks "show": this is a sale, never a report.
	if got := Classify("show what I sold"); got != RecordSale {
		t.Fatalf("Classify = %s, expected %s", got, RecordSale)
	}
	// "add" outranks "stock".
	if got := Classify("add stock"); got != Restock {
		t.Fatalf("Classify = %s, expected %s", got, Restock)
	}
	// Inventory words outrank report words so "show inventory" lists stock.
	if got := Classify("show inventory"); got != InventoryReport {
		t.Fatalf("Classify = %s, expected %s", got, InventoryReport)
	}
}

func TestIsBusinessName(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Acme Foods", true},
		{"Mama Nkechi Stores", true},
		{"I sold 2 shirts for 5k", false},
		{"Add 10 bags of rice", false},
		{"Address Plaza", false}, // substring match on "add"
	}
	for _, tc := range cases {
		if got := IsBusinessName(tc.in); got != tc.want {
			t.Errorf("IsBusinessName(%q) = %v, expected %v", tc.in, got, tc.want)
		}
	}
}
