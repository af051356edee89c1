package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/internal/repository"
	appErrors "github.com/coronacion-creator/colegio-api/pkg/errors"
)

type inventoryRepository interface {
	List(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, int, error)
	FindByID(ctx context.Context, id string) (*models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) error
	Update(ctx context.Context, item *models.InventoryItem) error
	Sell(ctx context.Context, itemID, studentID string, quantity int) (*models.InventorySale, error)
	Restock(ctx context.Context, itemID string, quantity int) error
	ListSales(ctx context.Context, itemID, studentID string) ([]models.InventorySale, error)
}

// CreateItemRequest describes a new inventory item.
type CreateItemRequest struct {
	SiteID    string  `json:"site_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Stock     int     `json:"stock" validate:"gte=0"`
	UnitPrice float64 `json:"unit_price" validate:"gt=0"`
}

// UpdateItemRequest modifies item attributes other than stock.
type UpdateItemRequest struct {
	Name      string  `json:"name" validate:"required"`
	UnitPrice float64 `json:"unit_price" validate:"gt=0"`
	Active    bool    `json:"active"`
}

// SellRequest describes a sale attempt.
type SellRequest struct {
	ItemID    string `json:"item_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// RestockRequest adds stock to an item.
type RestockRequest struct {
	Quantity int `json:"quantity" validate:"gt=0"`
}

// InventoryService manages stock and sales.
type InventoryService struct {
	repo      inventoryRepository
	students  studentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInventoryService constructs InventoryService.
func NewInventoryService(repo inventoryRepository, students studentReader, validate *validator.Validate, logger *zap.Logger) *InventoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns inventory items with pagination metadata.
func (s *InventoryService) List(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inventory items")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one inventory item.
func (s *InventoryService) Get(ctx context.Context, id string) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inventory item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inventory item")
	}
	return item, nil
}

// Create registers a new item.
func (s *InventoryService) Create(ctx context.Context, req CreateItemRequest) (*models.InventoryItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid item payload")
	}
	item := &models.InventoryItem{SiteID: req.SiteID, Name: req.Name, Stock: req.Stock, UnitPrice: req.UnitPrice}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create inventory item")
	}
	return item, nil
}

// Update modifies name, price and active flag.
func (s *InventoryService) Update(ctx context.Context, id string, req UpdateItemRequest) (*models.InventoryItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid item payload")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inventory item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inventory item")
	}
	item.Name = req.Name
	item.UnitPrice = req.UnitPrice
	item.Active = req.Active
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update inventory item")
	}
	return item, nil
}

// Sell decrements stock and records the sale. Selling more than the
// available stock, or from an inactive item, is a rejection result; stock
// is never left partially changed.
func (s *InventoryService) Sell(ctx context.Context, req SellRequest) (*models.OperationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sale payload")
	}
	item, err := s.repo.FindByID(ctx, req.ItemID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inventory item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inventory item")
	}
	if !item.Active {
		return models.Rejected("inventory item is inactive"), nil
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	sale, err := s.repo.Sell(ctx, req.ItemID, req.StudentID, req.Quantity)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return models.Rejected("insufficient stock"), nil
		}
		return nil, opError(err, "failed to sell item")
	}
	s.logger.Info("inventory sold",
		zap.String("item_id", req.ItemID),
		zap.String("student_id", req.StudentID),
		zap.Int("quantity", req.Quantity),
		zap.Float64("total", sale.Total))
	return models.Accepted("sale recorded", sale), nil
}

// Restock adds stock to an item.
func (s *InventoryService) Restock(ctx context.Context, id string, req RestockRequest) (*models.OperationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid restock payload")
	}
	if err := s.repo.Restock(ctx, id, req.Quantity); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inventory item not found")
		}
		return nil, opError(err, "failed to restock item")
	}
	return models.Accepted("stock added", nil), nil
}

// ListSales returns sales filtered by item or student.
func (s *InventoryService) ListSales(ctx context.Context, itemID, studentID string) ([]models.InventorySale, error) {
	sales, err := s.repo.ListSales(ctx, itemID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sales")
	}
	return sales, nil
}
