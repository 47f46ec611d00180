package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"storefront/internal/api"
	"storefront/internal/domain"
)

type MediaService struct {
	API *api.Client
}

func NewMediaService(c *api.Client) *MediaService { return &MediaService{API: c} }

// MediaUpload describes one file headed for a product's gallery.
type MediaUpload struct {
	File         api.FilePart
	AltText      string
	DisplayOrder *int
	Progress     api.Progress
}

func (s *MediaService) upload(ctx context.Context, path string, in MediaUpload) (domain.ProductMedia, error) {
	fields := map[string]string{}
	if in.AltText != "" {
		fields["altText"] = in.AltText
	}
	if in.DisplayOrder != nil {
		fields["displayOrder"] = strconv.Itoa(*in.DisplayOrder)
	}
	file := in.File
	if file.Field == "" {
		file.Field = "file"
	}
	var out domain.ProductMedia
	err := s.API.Upload(ctx, path, fields, file, in.Progress, &out)
	return out, err
}

func (s *MediaService) UploadImage(ctx context.Context, productID int64, in MediaUpload) (domain.ProductMedia, error) {
	return s.upload(ctx, fmt.Sprintf("/api/admin/media/products/%d/images", productID), in)
}

func (s *MediaService) UploadVideo(ctx context.Context, productID int64, in MediaUpload) (domain.ProductMedia, error) {
	return s.upload(ctx, fmt.Sprintf("/api/admin/media/products/%d/videos", productID), in)
}

func (s *MediaService) ForProduct(ctx context.Context, productID int64) ([]domain.ProductMedia, error) {
	var out []domain.ProductMedia
	err := s.API.Get(ctx, fmt.Sprintf("/api/admin/media/products/%d", productID), nil, &out)
	return out, err
}

func (s *MediaService) Update(ctx context.Context, mediaID int64, in domain.MediaUpdate) (domain.ProductMedia, error) {
	q := url.Values{}
	if in.AltText != nil {
		q.Set("altText", *in.AltText)
	}
	if in.DisplayOrder != nil {
		q.Set("displayOrder", strconv.Itoa(*in.DisplayOrder))
	}
	var out domain.ProductMedia
	err := s.API.Put(ctx, fmt.Sprintf("/api/admin/media/%d", mediaID), q, nil, &out)
	return out, err
}

func (s *MediaService) Delete(ctx context.Context, mediaID int64) error {
	return s.API.Delete(ctx, fmt.Sprintf("/api/admin/media/%d", mediaID), nil)
}
