package devapi

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

type pageReq struct {
	Page int
	Size int
	Sort string
	Desc bool
}

// pageOf reads page, size and sort ("field,dir") from the query.
func pageOf(c *fiber.Ctx, defSort string) (pageReq, error) {
	pr := pageReq{Size: defaultPageSize}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return pr, badRequest("Invalid page index: %s", v)
		}
		pr.Page = n
	}
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return pr, badRequest("Invalid page size: %s", v)
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		pr.Size = n
	}
	s := c.Query("sort", defSort)
	field, dir, _ := strings.Cut(s, ",")
	pr.Sort = strings.TrimSpace(field)
	pr.Desc = strings.EqualFold(strings.TrimSpace(dir), "desc")
	return pr, nil
}

func sortProducts(ps []domain.Product, pr pageReq) {
	less := func(a, b domain.Product) bool {
		switch pr.Sort {
		case "price":
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case "name":
			if a.Name != b.Name {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		case "createdAt":
			if a.CreatedAt != b.CreatedAt {
				return a.CreatedAt < b.CreatedAt
			}
		}
		return a.ID < b.ID
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if pr.Desc {
			return less(ps[j], ps[i])
		}
		return less(ps[i], ps[j])
	})
}

func idParam(c *fiber.Ctx, name string) (int64, error) {
	v := c.Params(name)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 1 {
		return 0, badRequest("Invalid %s: %s", name, v)
	}
	return id, nil
}

// intQuery reads a required integer query parameter.
func intQuery(c *fiber.Ctx, name string) (int, error) {
	v := c.Query(name)
	if v == "" {
		return 0, badRequest("Required request parameter '%s' is not present", name)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("Invalid %s: %s", name, v)
	}
	return n, nil
}
