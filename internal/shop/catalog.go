package shop

import (
	"context"
	"shoptogether/pkg/domain"
	"shoptogether/pkg/serrors"
	"shoptogether/pkg/storage"
	"strings"

	"github.com/go-faster/errors"
)

// ProductInput is the payload to create a product.
type ProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  int64  `json:"priceCents"`
	Stock       int    `json:"stock"`
	ImageURL    string `json:"imageUrl"`
}

// ProductPatch lists the product fields to change; nil fields stay as they are.
type ProductPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	PriceCents  *int64  `json:"priceCents"`
	Stock       *int    `json:"stock"`
	ImageURL    *string `json:"imageUrl"`
}

func validateProduct(name string, price int64, stock int) error {
	switch {
	case strings.TrimSpace(name) == "":
		return serrors.With(serrors.ErrBadRequest, "product name is required")
	case price < 0:
		return serrors.With(serrors.ErrBadRequest, "product price must not be negative")
	case stock < 0:
		return serrors.With(serrors.ErrBadRequest, "product stock must not be negative")
	}

	return nil
}

func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)

	products, err := s.storage.Products(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	p, err := s.storage.ProductByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get product")
	}
	if p == nil {
		return nil, serrors.With(serrors.ErrNotFound, "product not found")
	}

	return p, nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := validateProduct(in.Name, in.PriceCents, in.Stock); err != nil {
		return nil, err
	}
	image, err := NormalizeImageURL(in.ImageURL)
	if err != nil {
		return nil, err
	}

	p, err := s.storage.StoreProduct(ctx, domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		ImageURL:    image,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create product")
	}

	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id domain.ProductID, patch ProductPatch) (*domain.Product, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, serrors.With(serrors.ErrBadRequest, "product name is required")
		}
		patch.Name = &trimmed
	}
	if patch.PriceCents != nil && *patch.PriceCents < 0 {
		return nil, serrors.With(serrors.ErrBadRequest, "product price must not be negative")
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, serrors.With(serrors.ErrBadRequest, "product stock must not be negative")
	}
	if patch.ImageURL != nil {
		image, err := NormalizeImageURL(*patch.ImageURL)
		if err != nil {
			return nil, err
		}
		patch.ImageURL = &image
	}

	p, err := s.storage.UpdateProduct(ctx, id, storage.ProductUpdates{
		Name:        patch.Name,
		Description: patch.Description,
		Category:    patch.Category,
		PriceCents:  patch.PriceCents,
		Stock:       patch.Stock,
		ImageURL:    patch.ImageURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	if p == nil {
		return nil, serrors.With(serrors.ErrNotFound, "product not found")
	}

	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id domain.ProductID) error {
	deleted, err := s.storage.DeleteProduct(ctx, id)
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if !deleted {
		return serrors.With(serrors.ErrNotFound, "product not found")
	}

	return nil
}
