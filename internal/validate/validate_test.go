package validate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func TestRatingMessages(t *testing.T) {
	if err := Rating(0); err == nil || err.Error() != "Please select a rating" {
		t.Fatalf("rating 0: %v", err)
	}
	if err := Rating(6); err == nil || err.Error() != "Rating must be between 1 and 5" {
		t.Fatalf("rating 6: %v", err)
	}
	for r := 1; r <= 5; r++ {
		if err := Rating(r); err != nil {
			t.Fatalf("rating %d rejected: %v", r, err)
		}
	}
}

func TestCommentTrimmed(t *testing.T) {
	if _, err := Comment("   \n"); err == nil || err.Error() != "Please write a review comment" {
		t.Fatalf("blank comment: %v", err)
	}
	c, err := Comment("  works great  ")
	if err != nil || c != "works great" {
		t.Fatalf("comment = %q, %v", c, err)
	}
}

func TestQuantity(t *testing.T) {
	if err := Quantity(0); err == nil || !IsValidation(err) {
		t.Fatalf("quantity 0: %v", err)
	}
	if err := Quantity(1); err != nil {
		t.Fatalf("quantity 1: %v", err)
	}
}

func TestShippingAddressAndCredentials(t *testing.T) {
	if _, err := ShippingAddress(" "); err == nil || err.Error() != "Please enter a shipping address" {
		t.Fatalf("address: %v", err)
	}
	if err := Credentials("alice", ""); err == nil {
		t.Fatal("empty password accepted")
	}
	if err := Credentials("alice", "x"); err != nil {
		t.Fatalf("credentials: %v", err)
	}
}

func TestRegisterFields(t *testing.T) {
	if _, err := Email("not-an-email"); err == nil {
		t.Fatal("bad email accepted")
	}
	if e, err := Email(" bob@shop.test "); err != nil || e != "bob@shop.test" {
		t.Fatalf("email = %q, %v", e, err)
	}
	if _, err := Username("ab"); err == nil {
		t.Fatal("short username accepted")
	}
	if err := Password("12345"); err == nil {
		t.Fatal("short password accepted")
	}
}

func TestPriceAndName(t *testing.T) {
	if err := Price(decimal.Zero); err == nil {
		t.Fatal("zero price accepted")
	}
	if err := Price(decimal.RequireFromString("0.01")); err != nil {
		t.Fatalf("price: %v", err)
	}
	if _, err := Name(""); err == nil {
		t.Fatal("empty name accepted")
	}
	if q, ok := Q("  lamp "); !ok || q != "lamp" {
		t.Fatalf("q = %q", q)
	}
}

func TestQCutsOnRuneBoundary(t *testing.T) {
	q, ok := Q("a" + strings.Repeat("é", 120))
	if !ok || !utf8.ValidString(q) || utf8.RuneCountInString(q) != 100 {
		t.Fatalf("q = %q (%d runes)", q, utf8.RuneCountInString(q))
	}
}
