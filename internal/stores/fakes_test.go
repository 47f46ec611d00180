package stores

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"storefront/internal/api"
	"storefront/internal/domain"
)

func apiErr(status int, msg string) error {
	return &api.Error{Status: status, Message: msg}
}

type fakeAuth struct {
	calls   int
	token   string
	user    *domain.Identity
	failing bool
}

func (f *fakeAuth) Login(_ context.Context, req domain.LoginRequest) (domain.AuthResponse, error) {
	f.calls++
	if f.failing {
		return domain.AuthResponse{}, apiErr(http.StatusUnauthorized, "Bad credentials")
	}
	f.token = "tok"
	f.user = &domain.Identity{ID: 1, Username: req.Username, Roles: []string{domain.RoleCustomer}}
	return domain.AuthResponse{Token: "tok", ID: 1, Username: req.Username, Roles: []string{domain.RoleCustomer}}, nil
}

func (f *fakeAuth) Register(context.Context, domain.RegisterRequest) (domain.MessageResponse, error) {
	f.calls++
	if f.failing {
		return domain.MessageResponse{}, apiErr(http.StatusBadRequest, "Error: Username is already taken!")
	}
	return domain.MessageResponse{Message: "User registered successfully!"}, nil
}

func (f *fakeAuth) Logout() error {
	f.token = ""
	f.user = nil
	return nil
}

func (f *fakeAuth) CurrentUser() (*domain.Identity, error) { return f.user, nil }
func (f *fakeAuth) IsAuthenticated() bool                  { return f.token != "" }

// fakeCart keeps a server-side cart and counts requests.
type fakeCart struct {
	items    map[int64]int
	price    decimal.Decimal
	requests int
	failGet  bool
	failNext error
}

func newFakeCart() *fakeCart {
	return &fakeCart{items: map[int64]int{}, price: decimal.RequireFromString("2.50")}
}

func (f *fakeCart) snapshot() domain.CartResponse {
	var out domain.CartResponse
	for id, q := range f.items {
		sub := f.price.Mul(decimal.NewFromInt(int64(q)))
		out.Cart.Items = append(out.Cart.Items, domain.CartItem{Product: domain.Product{ID: id, Price: f.price}, Quantity: q, Subtotal: sub})
		out.ItemCount++
		out.Total = out.Total.Add(sub)
	}
	return out
}

func (f *fakeCart) Get(context.Context) (domain.CartResponse, error) {
	f.requests++
	if f.failGet {
		return domain.CartResponse{}, apiErr(http.StatusInternalServerError, "")
	}
	return f.snapshot(), nil
}

func (f *fakeCart) take() error {
	f.requests++
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeCart) AddItem(_ context.Context, req domain.AddToCartRequest) (domain.Cart, error) {
	if err := f.take(); err != nil {
		return domain.Cart{}, err
	}
	f.items[req.ProductID] += req.Quantity
	return f.snapshot().Cart, nil
}

func (f *fakeCart) UpdateItem(_ context.Context, id int64, qty int) (domain.Cart, error) {
	if err := f.take(); err != nil {
		return domain.Cart{}, err
	}
	f.items[id] = qty
	return f.snapshot().Cart, nil
}

func (f *fakeCart) RemoveItem(_ context.Context, id int64) (domain.Cart, error) {
	if err := f.take(); err != nil {
		return domain.Cart{}, err
	}
	delete(f.items, id)
	return f.snapshot().Cart, nil
}

func (f *fakeCart) Clear(context.Context) error {
	if err := f.take(); err != nil {
		return err
	}
	f.items = map[int64]int{}
	return nil
}

// fakeProducts records which endpoint served the last listing.
type fakeProducts struct {
	last      string
	lastQuery domain.ProductQuery
	total     int
	failList  bool
	failCats  bool
}

func (f *fakeProducts) page(name string, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	f.last = name
	f.lastQuery = q
	if f.failList {
		return domain.Page[domain.Product]{}, apiErr(http.StatusInternalServerError, "")
	}
	all := make([]domain.Product, f.total)
	for i := range all {
		all[i] = domain.Product{ID: int64(i + 1)}
	}
	return domain.NewPage(all, q.Page, q.Size), nil
}

func (f *fakeProducts) List(_ context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	return f.page("list", q)
}
func (f *fakeProducts) Get(_ context.Context, id int64) (domain.Product, error) {
	if id == 404 {
		return domain.Product{}, apiErr(http.StatusNotFound, "Product not found")
	}
	return domain.Product{ID: id, Name: "Lamp"}, nil
}
func (f *fakeProducts) Search(_ context.Context, kw string, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	return f.page("search:"+kw, q)
}
func (f *fakeProducts) ByCategory(_ context.Context, id int64, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	return f.page("category", q)
}
func (f *fakeProducts) ByPriceRange(_ context.Context, q domain.ProductQuery) (domain.Page[domain.Product], error) {
	return f.page("price", q)
}
func (f *fakeProducts) Categories(context.Context) ([]domain.Category, error) {
	if f.failCats {
		return nil, apiErr(http.StatusInternalServerError, "")
	}
	return []domain.Category{{ID: 1, Name: "Lighting"}}, nil
}

type fakeOrders struct {
	requests  int
	lastPage  int
	lastSize  int
	admin     bool
	orders    []domain.Order
	cancelErr error
}

func (f *fakeOrders) Checkout(_ context.Context, req domain.CheckoutRequest) (domain.Order, error) {
	f.requests++
	o := domain.Order{ID: int64(len(f.orders) + 1), ShippingAddress: req.ShippingAddress, Status: domain.OrderPending}
	f.orders = append(f.orders, o)
	return o, nil
}
func (f *fakeOrders) History(_ context.Context, page, size int) (domain.Page[domain.Order], error) {
	f.requests++
	f.lastPage, f.lastSize = page, size
	return domain.NewPage(f.orders, page, size), nil
}
func (f *fakeOrders) Get(_ context.Context, id int64) (domain.Order, error) {
	f.requests++
	return f.orders[id-1], nil
}
func (f *fakeOrders) Cancel(_ context.Context, id int64) (domain.Order, error) {
	f.requests++
	if f.cancelErr != nil {
		return domain.Order{}, f.cancelErr
	}
	f.orders[id-1].Status = domain.OrderCancelled
	return f.orders[id-1], nil
}
func (f *fakeOrders) All(_ context.Context, page, size int) (domain.Page[domain.Order], error) {
	f.requests++
	f.admin = true
	f.lastPage, f.lastSize = page, size
	return domain.NewPage(f.orders, page, size), nil
}
func (f *fakeOrders) UpdateStatus(_ context.Context, id int64, st domain.OrderStatus) (domain.Order, error) {
	f.requests++
	f.orders[id-1].Status = st
	return f.orders[id-1], nil
}

type fakeReviews struct {
	requests   int
	reviews    []domain.Review
	failRating bool
	failCreate bool
}

func (f *fakeReviews) ForProduct(_ context.Context, _ int64, page, size int) (domain.Page[domain.Review], error) {
	f.requests++
	return domain.NewPage(f.reviews, page, size), nil
}
func (f *fakeReviews) Rating(context.Context, int64) (domain.ProductRating, error) {
	f.requests++
	if f.failRating {
		return domain.ProductRating{}, apiErr(http.StatusInternalServerError, "")
	}
	return domain.ProductRating{AverageRating: 4, TotalReviews: int64(len(f.reviews))}, nil
}
func (f *fakeReviews) Create(_ context.Context, req domain.CreateReviewRequest) (domain.Review, error) {
	f.requests++
	if f.failCreate {
		return domain.Review{}, apiErr(http.StatusBadRequest, "")
	}
	r := domain.Review{ID: int64(len(f.reviews) + 1), Rating: req.Rating, Comment: req.Comment, User: domain.User{Username: "alice"}}
	f.reviews = append([]domain.Review{r}, f.reviews...)
	return r, nil
}
func (f *fakeReviews) Delete(_ context.Context, id int64) error {
	f.requests++
	for i, r := range f.reviews {
		if r.ID == id {
			f.reviews = append(f.reviews[:i], f.reviews[i+1:]...)
			break
		}
	}
	return nil
}
