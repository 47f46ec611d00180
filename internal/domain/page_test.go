package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewPageWindows(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}
	p := NewPage(all, 1, 2)
	if len(p.Content) != 2 || p.Content[0] != 3 {
		t.Fatalf("bad content: %+v", p.Content)
	}
	if p.TotalPages != 3 || p.TotalElements != 5 || p.First || p.Last {
		t.Fatalf("bad envelope: %+v", p)
	}
	last := NewPage(all, 2, 2)
	if !last.Last || len(last.Content) != 1 {
		t.Fatalf("bad last page: %+v", last)
	}
	past := NewPage(all, 9, 2)
	if !past.Empty {
		t.Fatalf("page past the end should be empty: %+v", past)
	}
}

func TestNewPageHugeIndexDoesNotOverflow(t *testing.T) {
	all := []int{1, 2, 3}
	p := NewPage(all, 92233720368547758, 200)
	if !p.Empty || !p.Last || p.TotalPages != 1 {
		t.Fatalf("bad envelope: %+v", p)
	}
	if p.Number != 92233720368547758 {
		t.Fatalf("number = %d", p.Number)
	}
}

func TestPriceJSONIsNumber(t *testing.T) {
	p := Product{ID: 1, Name: "Lamp", Price: decimal.RequireFromString("19.5")}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["price"].(float64); !ok {
		t.Fatalf("price should marshal as a JSON number: %s", b)
	}
	if p.DisplayPrice() != "$19.50" {
		t.Fatalf("display price = %s", p.DisplayPrice())
	}
}

func TestIdentityRoles(t *testing.T) {
	id := Identity{Username: "root", Roles: []string{RoleCustomer, RoleAdmin}}
	if !id.IsAdmin() || id.HasRole(RoleStaff) {
		t.Fatalf("bad role checks for %+v", id)
	}
	if (Identity{}).IsAdmin() {
		t.Fatal("empty identity must not be admin")
	}
}

func TestRatingAcceptsBareNumber(t *testing.T) {
	var r ProductRating
	if err := json.Unmarshal([]byte(`4.5`), &r); err != nil || r.AverageRating != 4.5 {
		t.Fatalf("bare number: %+v, %v", r, err)
	}
	if err := json.Unmarshal([]byte(`{"averageRating":3,"totalReviews":2}`), &r); err != nil || r.TotalReviews != 2 || r.AverageRating != 3 {
		t.Fatalf("object: %+v, %v", r, err)
	}
}
