package devapi

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
)

type account struct {
	domain.User
	Hash  []byte
	Roles []string
}

func (a *account) public() domain.User {
	u := a.User
	u.Roles = make([]domain.Role, len(a.Roles))
	for i, r := range a.Roles {
		u.Roles[i] = domain.Role{ID: int64(i + 1), Name: r}
	}
	return u
}

type cartLine struct {
	ID        int64
	ProductID int64
	Quantity  int
}

type storedFile struct {
	ContentType string
	Data        []byte
}

type voucher struct {
	Code     string
	Percent  decimal.Decimal
	MinSpend decimal.Decimal
	Expires  time.Time
}

// state is the whole backend. Every handler holds mu for its full
// read-modify-write.
type state struct {
	mu   sync.Mutex
	seq  int64
	now  func() time.Time
	cost int

	users      map[int64]*account
	categories map[int64]*domain.Category
	products   map[int64]*domain.Product
	stock      map[int64]*domain.Inventory
	carts      map[int64][]*cartLine // by user id
	orders     map[int64]*domain.Order
	owners     map[int64]int64 // order id -> user id
	reviews    map[int64]*domain.Review
	media      map[int64]*domain.ProductMedia
	files      map[string]storedFile
	vouchers   map[string]voucher
}

func newState(cost int) *state {
	return &state{
		now:        time.Now,
		cost:       cost,
		users:      map[int64]*account{},
		categories: map[int64]*domain.Category{},
		products:   map[int64]*domain.Product{},
		stock:      map[int64]*domain.Inventory{},
		carts:      map[int64][]*cartLine{},
		orders:     map[int64]*domain.Order{},
		owners:     map[int64]int64{},
		reviews:    map[int64]*domain.Review{},
		media:      map[int64]*domain.ProductMedia{},
		files:      map[string]storedFile{},
		vouchers:   map[string]voucher{},
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *state) stamp() string { return s.now().UTC().Format(time.RFC3339) }

func (s *state) addUser(username, email, password string, roles ...string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	a := &account{User: domain.User{ID: s.nextID(), Username: username, Email: email}, Hash: hash, Roles: roles}
	s.users[a.ID] = a
	return a, nil
}

func (s *state) userByName(username string) *account {
	for _, a := range s.users {
		if a.Username == username {
			return a
		}
	}
	return nil
}

func (s *state) addCategory(name, desc string) *domain.Category {
	c := &domain.Category{ID: s.nextID(), Name: name, Description: desc}
	s.categories[c.ID] = c
	return c
}

func (s *state) addProduct(in domain.ProductInput, qty int) *domain.Product {
	p := &domain.Product{
		ID:          s.nextID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		ImageURL:    in.ImageURL,
		CreatedAt:   s.stamp(),
	}
	if c := s.categories[in.CategoryID]; c != nil {
		p.CategoryName = c.Name
	}
	s.products[p.ID] = p
	s.stock[p.ID] = &domain.Inventory{ID: s.nextID(), ProductID: p.ID, Quantity: qty, LastUpdated: s.stamp()}
	return p
}

func (s *state) available(productID int64) int {
	if inv := s.stock[productID]; inv != nil {
		return inv.Quantity
	}
	return 0
}

func (s *state) adjustStock(productID int64, delta int) {
	inv := s.stock[productID]
	if inv == nil {
		inv = &domain.Inventory{ID: s.nextID(), ProductID: productID}
		s.stock[productID] = inv
	}
	inv.Quantity += delta
	inv.LastUpdated = s.stamp()
}

func (s *state) cartOf(userID int64) domain.Cart {
	c := domain.Cart{ID: userID, Items: []domain.CartItem{}}
	for _, l := range s.carts[userID] {
		p := s.products[l.ProductID]
		if p == nil {
			continue
		}
		c.Items = append(c.Items, domain.CartItem{
			ID:       l.ID,
			Product:  *p,
			Quantity: l.Quantity,
			Subtotal: p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	return c
}

func cartTotal(c domain.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal)
	}
	return total
}

// purchased reports whether userID has a shipped or delivered order
// containing productID.
func (s *state) purchased(userID, productID int64) bool {
	for id, o := range s.orders {
		if s.owners[id] != userID {
			continue
		}
		if o.Status != domain.OrderShipped && o.Status != domain.OrderDelivered {
			continue
		}
		for _, it := range o.Items {
			if it.Product.ID == productID {
				return true
			}
		}
	}
	return false
}

func (s *state) productReviews(productID int64) []domain.Review {
	var out []domain.Review
	for _, r := range s.reviews {
		if r.Product.ID == productID {
			out = append(out, *r)
		}
	}
	sortReviews(out)
	return out
}

// sortReviews orders newest first.
func sortReviews(rs []domain.Review) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].ID > rs[j].ID })
}

func (s *state) productMedia(productID int64) []domain.ProductMedia {
	out := []domain.ProductMedia{}
	for _, m := range s.media {
		if m.ProductID == productID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Seed accounts. All share one password.
const SeedPassword = "Passw0rd!"

func (s *state) seed() error {
	if _, err := s.addUser("alice", "alice@storefront.test", SeedPassword, domain.RoleCustomer); err != nil {
		return err
	}
	if _, err := s.addUser("admin", "admin@storefront.test", SeedPassword, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.addUser("staff", "staff@storefront.test", SeedPassword, domain.RoleStaff); err != nil {
		return err
	}

	light := s.addCategory("Lighting", "Lamps and bulbs")
	desk := s.addCategory("Desk", "Desk accessories")
	audio := s.addCategory("Audio", "Headphones and speakers")

	price := decimal.RequireFromString
	lamp := s.addProduct(domain.ProductInput{Name: "Arc Floor Lamp", Description: "Brushed steel arc lamp", Price: price("89.99"), CategoryID: light.ID, ImageURL: "https://img.storefront.test/arc-lamp.jpg"}, 12)
	s.addProduct(domain.ProductInput{Name: "Edison Bulb 4-pack", Description: "Warm filament bulbs", Price: price("19.50"), CategoryID: light.ID}, 40)
	s.addProduct(domain.ProductInput{Name: "Walnut Desk Organizer", Description: "Three-slot organizer", Price: price("34.00"), CategoryID: desk.ID}, 8)
	s.addProduct(domain.ProductInput{Name: "Cable Tray", Description: "Under-desk cable management", Price: price("24.95"), CategoryID: desk.ID}, 0)
	s.addProduct(domain.ProductInput{Name: "Studio Headphones", Description: "Closed-back monitors", Price: price("129.00"), CategoryID: audio.ID}, 5)
	s.addProduct(domain.ProductInput{Name: "Bookshelf Speakers", Description: "Pair, 4 inch woofers", Price: price("149.00"), CategoryID: audio.ID}, 3)

	s.vouchers["WELCOME10"] = voucher{Code: "WELCOME10", Percent: decimal.NewFromInt(10), MinSpend: decimal.NewFromInt(20), Expires: s.now().AddDate(1, 0, 0)}
	s.vouchers["EXPIRED5"] = voucher{Code: "EXPIRED5", Percent: decimal.NewFromInt(5), Expires: s.now().AddDate(0, 0, -1)}

	// alice already received a lamp, so she can review it
	alice := s.userByName("alice")
	o := &domain.Order{
		ID:              s.nextID(),
		User:            alice.public(),
		ShippingAddress: "1 Main St",
		TotalPrice:      lamp.Price,
		Status:          domain.OrderDelivered,
		CreatedAt:       s.stamp(),
		Items:           []domain.OrderItem{{ID: s.nextID(), Product: *lamp, Quantity: 1, Price: lamp.Price, Subtotal: lamp.Price}},
	}
	s.orders[o.ID] = o
	s.owners[o.ID] = alice.ID
	return nil
}
