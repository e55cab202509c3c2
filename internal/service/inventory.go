package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/store"
	"fuelbook/backend/internal/xid"
)

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}
	if err := s.validateStruct(req); err != nil {
		return domain.Product{}, err
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.UnitPrice.IsNegative() || req.InitialStock.IsNegative() {
		return domain.Product{}, fmt.Errorf("negative price or stock: %w", store.ErrInvalid)
	}

	product := domain.Product{
		ID:        xid.New("prd"),
		Name:      req.Name,
		Category:  req.Category,
		UnitPrice: req.UnitPrice,
		Stock:     req.InitialStock,
		CreatedAt: time.Now().UTC(),
	}
	if product.Category == domain.ProductCategoryFuel {
		// Fuel stock lives on the tank.
		product.Stock = decimal.Zero
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_create", "product", created.ID, fmt.Sprintf("name=%s,category=%s", created.Name, created.Category))
	return *created, nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.Product{}, err
	}

	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, fmt.Errorf("empty product name: %w", store.ErrInvalid)
		}
		product.Name = name
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return domain.Product{}, fmt.Errorf("negative price: %w", store.ErrInvalid)
		}
		product.UnitPrice = *req.UnitPrice
	}

	updated, err := s.repo.UpdateProduct(ctx, *product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product_update", "product", updated.ID, fmt.Sprintf("name=%s,unit_price=%s", updated.Name, updated.UnitPrice))
	return *updated, nil
}

func (s *Service) CreateTank(ctx context.Context, req domain.TankCreateRequest) (domain.Tank, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return domain.Tank{}, err
	}
	if err := s.validateStruct(req); err != nil {
		return domain.Tank{}, err
	}
	if req.Capacity.IsNegative() || req.InitialStock.IsNegative() {
		return domain.Tank{}, fmt.Errorf("negative capacity or stock: %w", store.ErrInvalid)
	}
	if req.Capacity.IsPositive() && req.InitialStock.GreaterThan(req.Capacity) {
		return domain.Tank{}, fmt.Errorf("initial stock above capacity: %w", store.ErrInvalid)
	}

	product, err := s.repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return domain.Tank{}, err
	}
	if product.Category != domain.ProductCategoryFuel {
		return domain.Tank{}, fmt.Errorf("tanks only attach to fuel products: %w", store.ErrInvalid)
	}

	tank := domain.Tank{
		ID:        xid.New("tnk"),
		Name:      strings.TrimSpace(req.Name),
		ProductID: product.ID,
		Capacity:  req.Capacity,
		Stock:     req.InitialStock,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateTank(ctx, tank)
	if err != nil {
		return domain.Tank{}, err
	}

	s.logAudit(ctx, "tank_create", "tank", created.ID, fmt.Sprintf("product=%s,capacity=%s", created.ProductID, created.Capacity))
	return *created, nil
}

func (s *Service) ListTanks(ctx context.Context) ([]domain.Tank, error) {
	return s.repo.ListTanks(ctx)
}
