package devapi

import (
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

var hundred = decimal.NewFromInt(100)

func (s *Server) checkout(c *fiber.Ctx) error {
	var req domain.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Malformed JSON request")
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return badRequest("Shipping address is required")
	}
	uid := userID(c)

	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	acct := s.st.users[uid]
	if acct == nil {
		return errUnauthenticated
	}
	cart := s.st.cartOf(uid)
	if len(cart.Items) == 0 {
		return badRequest("Cart is empty")
	}
	subtotal := cartTotal(cart)

	discount := decimal.Zero
	if code := strings.TrimSpace(req.VoucherCode); code != "" {
		v, ok := s.st.vouchers[strings.ToUpper(code)]
		if !ok {
			return notFound("Voucher", "code", code)
		}
		if s.st.now().After(v.Expires) {
			return badRequest("Voucher has expired")
		}
		if subtotal.LessThan(v.MinSpend) {
			return badRequest("Minimum spend of %s required for this voucher", v.MinSpend.StringFixed(2))
		}
		discount = subtotal.Mul(v.Percent).Div(hundred).Round(2)
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
	}

	for _, it := range cart.Items {
		if s.st.available(it.Product.ID) < it.Quantity {
			return badRequest("Insufficient stock for product: %s", it.Product.Name)
		}
	}

	o := &domain.Order{
		ID:              s.st.nextID(),
		User:            acct.public(),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		TotalPrice:      subtotal.Sub(discount),
		Status:          domain.OrderPending,
		CreatedAt:       s.st.stamp(),
	}
	for _, it := range cart.Items {
		s.st.adjustStock(it.Product.ID, -it.Quantity)
		o.Items = append(o.Items, domain.OrderItem{
			ID:       s.st.nextID(),
			Product:  it.Product,
			Quantity: it.Quantity,
			Price:    it.Product.Price,
			Subtotal: it.Subtotal,
		})
	}
	s.st.orders[o.ID] = o
	s.st.owners[o.ID] = uid
	delete(s.st.carts, uid)

	applog.AuditCtx(c, "order.place", map[string]any{"order_id": o.ID, "total": o.TotalPrice.StringFixed(2), "discount": discount.StringFixed(2)})
	return c.JSON(o)
}

// ordersPage lists orders newest first; uid 0 means every user.
func (s *Server) ordersPage(c *fiber.Ctx, uid int64) error {
	pr, err := pageOf(c, "createdAt,desc")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	var all []domain.Order
	for id, o := range s.st.orders {
		if uid == 0 || s.st.owners[id] == uid {
			all = append(all, *o)
		}
	}
	s.st.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return c.JSON(domain.NewPage(all, pr.Page, pr.Size))
}

func (s *Server) myOrders(c *fiber.Ctx) error { return s.ordersPage(c, userID(c)) }

func (s *Server) allOrders(c *fiber.Ctx) error { return s.ordersPage(c, 0) }

// ownOrder loads an order the caller owns. Callers hold mu.
func (s *Server) ownOrder(c *fiber.Ctx) (*domain.Order, error) {
	id, err := idParam(c, "id")
	if err != nil {
		return nil, err
	}
	o := s.st.orders[id]
	if o == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Order not found with id: "+c.Params("id"))
	}
	if s.st.owners[id] != userID(c) {
		applog.SecurityCtx(c, "access.denied.order", map[string]any{"order_id": id})
		return nil, badRequest("Access denied to this order")
	}
	return o, nil
}

func (s *Server) order(c *fiber.Ctx) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	o, err := s.ownOrder(c)
	if err != nil {
		return err
	}
	return c.JSON(o)
}

// cancelOrder restores stock; only pending or processing orders qualify.
func (s *Server) cancelOrder(c *fiber.Ctx) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	o, err := s.ownOrder(c)
	if err != nil {
		return err
	}
	if o.Status != domain.OrderPending && o.Status != domain.OrderProcessing {
		return badRequest("Cannot cancel order in %s status", o.Status)
	}
	for _, it := range o.Items {
		s.st.adjustStock(it.Product.ID, it.Quantity)
	}
	o.Status = domain.OrderCancelled
	applog.AuditCtx(c, "order.cancel", map[string]any{"order_id": o.ID})
	return c.JSON(o)
}

// updateOrderStatus lets an admin move an order anywhere except out of
// CANCELLED. Cancelling here restores stock like a customer cancel.
func (s *Server) updateOrderStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	status := domain.OrderStatus(strings.ToUpper(c.Query("status")))
	if !status.Valid() {
		return badRequest("Invalid order status: %s", c.Query("status"))
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	o := s.st.orders[id]
	if o == nil {
		return notFound("Order", "id", id)
	}
	if o.Status == domain.OrderCancelled {
		return badRequest("Cannot change status of order in %s status", o.Status)
	}
	if status == domain.OrderCancelled {
		for _, it := range o.Items {
			s.st.adjustStock(it.Product.ID, it.Quantity)
		}
	}
	o.Status = status
	applog.AuditCtx(c, "admin.orders.update", map[string]any{"order_id": id, "status": status})
	return c.JSON(o)
}
