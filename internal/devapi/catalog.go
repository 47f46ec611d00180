package devapi

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/validate"
)

type productFilter struct {
	Name       string
	CategoryID int64
	Min, Max   *decimal.Decimal
}

func (f productFilter) match(p *domain.Product) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
		return false
	}
	if f.Min != nil && p.Price.LessThan(*f.Min) {
		return false
	}
	if f.Max != nil && p.Price.GreaterThan(*f.Max) {
		return false
	}
	return true
}

func decimalQuery(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, badRequest("Invalid %s: %s", name, v)
	}
	return &d, nil
}

func filterOf(c *fiber.Ctx) (productFilter, error) {
	var f productFilter
	f.Name, _ = validate.Q(c.Query("name"))
	if v := c.Query("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, badRequest("Invalid categoryId: %s", v)
		}
		f.CategoryID = id
	}
	var err error
	if f.Min, err = decimalQuery(c, "minPrice"); err != nil {
		return f, err
	}
	if f.Max, err = decimalQuery(c, "maxPrice"); err != nil {
		return f, err
	}
	return f, nil
}

// listProducts answers a paged product query; f may be zero.
func (s *Server) listProducts(c *fiber.Ctx, f productFilter) error {
	pr, err := pageOf(c, "name,asc")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	var all []domain.Product
	for _, p := range s.st.products {
		if f.match(p) {
			all = append(all, *p)
		}
	}
	s.st.mu.Unlock()
	sortProducts(all, pr)
	return c.JSON(domain.NewPage(all, pr.Page, pr.Size))
}

func (s *Server) products(c *fiber.Ctx) error { return s.listProducts(c, productFilter{}) }

func (s *Server) searchProducts(c *fiber.Ctx) error {
	f, err := filterOf(c)
	if err != nil {
		return err
	}
	return s.listProducts(c, f)
}

func (s *Server) categoryProducts(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	_, ok := s.st.categories[id]
	s.st.mu.Unlock()
	if !ok {
		return notFound("Category", "id", id)
	}
	return s.listProducts(c, productFilter{CategoryID: id})
}

func (s *Server) product(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	p := s.st.products[id]
	if p == nil {
		return notFound("Product", "id", id)
	}
	return c.JSON(p)
}

func (s *Server) inventory(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	inv := s.st.stock[id]
	if inv == nil {
		return notFound("Inventory", "productId", id)
	}
	return c.JSON(inv)
}

func (s *Server) categories(c *fiber.Ctx) error {
	s.st.mu.Lock()
	out := make([]domain.Category, 0, len(s.st.categories))
	for _, cat := range s.st.categories {
		out = append(out, *cat)
	}
	s.st.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return c.JSON(out)
}

func (s *Server) category(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	cat := s.st.categories[id]
	if cat == nil {
		return notFound("Category", "id", id)
	}
	return c.JSON(cat)
}

// ---------- admin ----------

func (s *Server) productInput(c *fiber.Ctx) (domain.ProductInput, error) {
	var in domain.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return in, badRequest("Malformed JSON request")
	}
	name, err := validate.Name(in.Name)
	if err != nil {
		return in, badRequest("%s", err.Error())
	}
	in.Name = name
	if err := validate.Price(in.Price); err != nil {
		return in, badRequest("%s", err.Error())
	}
	if _, ok := s.st.categories[in.CategoryID]; !ok {
		return in, notFound("Category", "id", in.CategoryID)
	}
	return in, nil
}

func (s *Server) createProduct(c *fiber.Ctx) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	in, err := s.productInput(c)
	if err != nil {
		return err
	}
	p := s.st.addProduct(in, 0)
	applog.AuditCtx(c, "admin.product.create", map[string]any{"product_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (s *Server) updateProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	p := s.st.products[id]
	if p == nil {
		return notFound("Product", "id", id)
	}
	in, err := s.productInput(c)
	if err != nil {
		return err
	}
	p.Name, p.Description, p.Price, p.CategoryID = in.Name, in.Description, in.Price, in.CategoryID
	p.CategoryName = s.st.categories[in.CategoryID].Name
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	applog.AuditCtx(c, "admin.product.update", map[string]any{"product_id": id})
	return c.JSON(p)
}

func (s *Server) deleteProduct(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if s.st.products[id] == nil {
		return notFound("Product", "id", id)
	}
	delete(s.st.products, id)
	delete(s.st.stock, id)
	for mid, m := range s.st.media {
		if m.ProductID == id {
			delete(s.st.media, mid)
		}
	}
	applog.AuditCtx(c, "admin.product.delete", map[string]any{"product_id": id})
	return c.JSON(domain.MessageResponse{Message: "Product deleted successfully!"})
}

// stockChange handles set, add and remove; mode picks the arithmetic.
func (s *Server) stockChange(mode string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		qty, err := intQuery(c, "quantity")
		if err != nil {
			return err
		}
		s.st.mu.Lock()
		defer s.st.mu.Unlock()
		if s.st.products[id] == nil {
			return notFound("Product", "id", id)
		}
		have := s.st.available(id)
		switch mode {
		case "set":
			if qty < 0 {
				return badRequest("Quantity cannot be negative")
			}
			s.st.adjustStock(id, qty-have)
		case "add":
			if qty <= 0 {
				return badRequest("Quantity to add must be positive")
			}
			s.st.adjustStock(id, qty)
		case "remove":
			if qty <= 0 {
				return badRequest("Quantity to remove must be positive")
			}
			if qty > have {
				return badRequest("Insufficient stock for '%s'. Requested: %d, Available: %d", s.st.products[id].Name, qty, have)
			}
			s.st.adjustStock(id, -qty)
		}
		applog.AuditCtx(c, "admin.inventory."+mode, map[string]any{"product_id": id, "qty": qty})
		return c.JSON(s.st.stock[id])
	}
}

// Description is nil when the body leaves it out.
type categoryInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) categoryInput(c *fiber.Ctx, self int64) (categoryInput, error) {
	var in categoryInput
	if err := c.BodyParser(&in); err != nil {
		return in, badRequest("Malformed JSON request")
	}
	name, err := validate.Name(in.Name)
	if err != nil {
		return in, badRequest("%s", err.Error())
	}
	in.Name = name
	for _, cat := range s.st.categories {
		if cat.ID != self && strings.EqualFold(cat.Name, name) {
			return in, conflict("Category", "name", name)
		}
	}
	return in, nil
}

func (s *Server) createCategory(c *fiber.Ctx) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	in, err := s.categoryInput(c, 0)
	if err != nil {
		return err
	}
	var desc string
	if in.Description != nil {
		desc = *in.Description
	}
	cat := s.st.addCategory(in.Name, desc)
	applog.AuditCtx(c, "admin.category.create", map[string]any{"category_id": cat.ID})
	return c.Status(fiber.StatusCreated).JSON(cat)
}

func (s *Server) updateCategory(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	cat := s.st.categories[id]
	if cat == nil {
		return notFound("Category", "id", id)
	}
	in, err := s.categoryInput(c, id)
	if err != nil {
		return err
	}
	cat.Name = in.Name
	if in.Description != nil {
		cat.Description = *in.Description
	}
	for _, p := range s.st.products {
		if p.CategoryID == id {
			p.CategoryName = cat.Name
		}
	}
	return c.JSON(cat)
}

func (s *Server) deleteCategory(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if s.st.categories[id] == nil {
		return notFound("Category", "id", id)
	}
	for _, p := range s.st.products {
		if p.CategoryID == id {
			return badRequest("Cannot delete category with existing products")
		}
	}
	delete(s.st.categories, id)
	applog.AuditCtx(c, "admin.category.delete", map[string]any{"category_id": id})
	return c.JSON(domain.MessageResponse{Message: "Category deleted successfully!"})
}
