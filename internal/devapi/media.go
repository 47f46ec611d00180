package devapi

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"storefront/internal/domain"
	applog "storefront/internal/log"
)

const (
	maxImageSize = 5 * 1024 * 1024
	maxVideoSize = 50 * 1024 * 1024
)

type mediaRule struct {
	kind    domain.MediaType
	label   string
	max     int64
	allowed map[string]bool
	names   string
}

var (
	imageRule = mediaRule{domain.MediaImage, "Image", maxImageSize,
		map[string]bool{"image/jpeg": true, "image/png": true, "image/webp": true, "image/gif": true}, "JPEG, PNG, WebP, GIF"}
	videoRule = mediaRule{domain.MediaVideo, "Video", maxVideoSize,
		map[string]bool{"video/mp4": true, "video/webm": true}, "MP4, WebM"}
)

func (s *Server) uploadMedia(rule mediaRule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pid, err := idParam(c, "id")
		if err != nil {
			return err
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return badRequest("Required request part 'file' is not present")
		}
		if fh.Size == 0 {
			return badRequest("File is empty")
		}
		if fh.Size > rule.max {
			return badRequest("%s size exceeds maximum limit of %d MB", rule.label, rule.max/1024/1024)
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return err
		}

		ct := strings.ToLower(strings.TrimSpace(fh.Header.Get(fiber.HeaderContentType)))
		if ct == "" || ct == fiber.MIMEOctetStream {
			ct = mimetype.Detect(data).String()
		}
		if !rule.allowed[ct] {
			applog.SecurityCtx(c, "media.upload.rejected", map[string]any{"content_type": ct})
			return badRequest("Invalid %s type. Allowed types: %s", strings.ToLower(rule.label), rule.names)
		}

		order := 0
		if v := c.FormValue("displayOrder"); v != "" {
			if order, err = strconv.Atoi(v); err != nil {
				return badRequest("Invalid displayOrder: %s", v)
			}
		}

		s.st.mu.Lock()
		defer s.st.mu.Unlock()
		if s.st.products[pid] == nil {
			return notFound("Product", "id", pid)
		}
		name := fmt.Sprintf("products/%d/%s%s", pid, uuid.NewString(), strings.ToLower(filepath.Ext(fh.Filename)))
		s.st.files[name] = storedFile{ContentType: ct, Data: data}
		m := &domain.ProductMedia{
			ID:           s.st.nextID(),
			ProductID:    pid,
			MediaType:    rule.kind,
			URL:          c.BaseURL() + "/media/" + name,
			AltText:      c.FormValue("altText"),
			DisplayOrder: order,
			CreatedAt:    s.st.stamp(),
			UpdatedAt:    s.st.stamp(),
		}
		s.st.media[m.ID] = m
		applog.AuditCtx(c, "media.upload", map[string]any{"media_id": m.ID, "product_id": pid, "bytes": len(data)})
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

func (s *Server) listMedia(c *fiber.Ctx) error {
	pid, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if s.st.products[pid] == nil {
		return notFound("Product", "id", pid)
	}
	return c.JSON(s.st.productMedia(pid))
}

func (s *Server) updateMedia(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	m := s.st.media[id]
	if m == nil {
		return notFound("ProductMedia", "id", id)
	}
	args := c.Context().QueryArgs()
	if args.Has("altText") {
		m.AltText = c.Query("altText")
	}
	if v := c.Query("displayOrder"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return badRequest("Invalid displayOrder: %s", v)
		}
		m.DisplayOrder = n
	}
	m.UpdatedAt = s.st.stamp()
	return c.JSON(m)
}

func (s *Server) deleteMedia(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	m := s.st.media[id]
	if m == nil {
		return notFound("ProductMedia", "id", id)
	}
	if _, name, ok := strings.Cut(m.URL, "/media/"); ok {
		delete(s.st.files, name)
	}
	delete(s.st.media, id)
	applog.AuditCtx(c, "media.delete", map[string]any{"media_id": id})
	return c.JSON(fiber.Map{"message": "Media deleted successfully"})
}

func (s *Server) mediaFile(c *fiber.Ctx) error {
	name := c.Params("*")
	s.st.mu.Lock()
	f, ok := s.st.files[name]
	s.st.mu.Unlock()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Media not found")
	}
	c.Set(fiber.HeaderContentType, f.ContentType)
	return c.Send(f.Data)
}
