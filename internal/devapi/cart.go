package devapi

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

func (s *Server) cart(c *fiber.Ctx) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	cart := s.st.cartOf(userID(c))
	return c.JSON(domain.CartResponse{Cart: cart, ItemCount: len(cart.Items), Total: cartTotal(cart)})
}

func (s *Server) addToCart(c *fiber.Ctx) error {
	var req domain.AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("Malformed JSON request")
	}
	if req.Quantity <= 0 {
		return badRequest("Quantity must be positive")
	}
	uid := userID(c)

	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	p := s.st.products[req.ProductID]
	if p == nil {
		return notFound("Product", "id", req.ProductID)
	}
	have := s.st.available(p.ID)
	if have < req.Quantity {
		return badRequest("Insufficient stock for product: %s", p.Name)
	}
	var line *cartLine
	for _, l := range s.st.carts[uid] {
		if l.ProductID == p.ID {
			line = l
		}
	}
	if line == nil {
		s.st.carts[uid] = append(s.st.carts[uid], &cartLine{ID: s.st.nextID(), ProductID: p.ID, Quantity: req.Quantity})
	} else {
		if have < line.Quantity+req.Quantity {
			return badRequest("Insufficient stock. Available: %d", have)
		}
		line.Quantity += req.Quantity
	}
	applog.InfoCtx(c, "cart.add", map[string]any{"product_id": p.ID, "qty": req.Quantity})
	return c.JSON(s.st.cartOf(uid))
}

func (s *Server) updateCartItem(c *fiber.Ctx) error {
	pid, err := idParam(c, "productId")
	if err != nil {
		return err
	}
	qty, err := intQuery(c, "quantity")
	if err != nil {
		return err
	}
	if qty <= 0 {
		return badRequest("Quantity must be positive")
	}
	uid := userID(c)

	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, l := range s.st.carts[uid] {
		if l.ProductID != pid {
			continue
		}
		if have := s.st.available(pid); have < qty {
			return badRequest("Insufficient stock. Available: %d", have)
		}
		l.Quantity = qty
		return c.JSON(s.st.cartOf(uid))
	}
	return notFound("CartItem", "productId", pid)
}

func (s *Server) removeCartItem(c *fiber.Ctx) error {
	pid, err := idParam(c, "productId")
	if err != nil {
		return err
	}
	uid := userID(c)

	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	lines := s.st.carts[uid]
	for i, l := range lines {
		if l.ProductID == pid {
			s.st.carts[uid] = append(lines[:i], lines[i+1:]...)
			return c.JSON(s.st.cartOf(uid))
		}
	}
	return notFound("CartItem", "productId", pid)
}

func (s *Server) clearCart(c *fiber.Ctx) error {
	s.st.mu.Lock()
	delete(s.st.carts, userID(c))
	s.st.mu.Unlock()
	return c.JSON(domain.MessageResponse{Message: "Cart cleared successfully!"})
}
