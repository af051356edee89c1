package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/internal/repository"
)

type mockInventoryRepo struct {
	items map[string]*models.InventoryItem
	sales []models.InventorySale
}

func (m *mockInventoryRepo) List(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, int, error) {
	return nil, 0, nil
}

func (m *mockInventoryRepo) FindByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	if i, ok := m.items[id]; ok {
		return i, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInventoryRepo) Create(ctx context.Context, item *models.InventoryItem) error {
	if m.items == nil {
		m.items = make(map[string]*models.InventoryItem)
	}
	item.ID = "new-item"
	item.Active = true
	m.items[item.ID] = item
	return nil
}

func (m *mockInventoryRepo) Update(ctx context.Context, item *models.InventoryItem) error {
	m.items[item.ID] = item
	return nil
}

func (m *mockInventoryRepo) Sell(ctx context.Context, itemID, studentID string, quantity int) (*models.InventorySale, error) {
	item, ok := m.items[itemID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if item.Stock < quantity {
		return nil, repository.ErrInsufficientStock
	}
	item.Stock -= quantity
	sale := models.InventorySale{
		ID: "sale-1", ItemID: itemID, StudentID: studentID,
		Quantity: quantity, UnitPrice: item.UnitPrice, Total: item.UnitPrice * float64(quantity),
	}
	m.sales = append(m.sales, sale)
	return &sale, nil
}

func (m *mockInventoryRepo) Restock(ctx context.Context, itemID string, quantity int) error {
	item, ok := m.items[itemID]
	if !ok {
		return sql.ErrNoRows
	}
	item.Stock += quantity
	return nil
}

func (m *mockInventoryRepo) ListSales(ctx context.Context, itemID, studentID string) ([]models.InventorySale, error) {
	return m.sales, nil
}

func stockedRepo(stock int) *mockInventoryRepo {
	return &mockInventoryRepo{items: map[string]*models.InventoryItem{
		"item-1": {ID: "item-1", SiteID: "site-1", Name: "Buzo talla M", Stock: stock, UnitPrice: 45, Active: true},
	}}
}

func TestInventoryServiceSell(t *testing.T) {
	repo := stockedRepo(10)
	svc := NewInventoryService(repo, activeStudents(), validator.New(), zap.NewNop())

	result, err := svc.Sell(context.Background(), SellRequest{ItemID: "item-1", StudentID: "s1", Quantity: 3})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 7, repo.items["item-1"].Stock)
	require.Len(t, repo.sales, 1)
	assert.Equal(t, 135.0, repo.sales[0].Total)
}

func TestInventoryServiceSellInsufficientStock(t *testing.T) {
	repo := stockedRepo(2)
	svc := NewInventoryService(repo, activeStudents(), validator.New(), zap.NewNop())

	result, err := svc.Sell(context.Background(), SellRequest{ItemID: "item-1", StudentID: "s1", Quantity: 3})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 2, repo.items["item-1"].Stock)
	assert.Empty(t, repo.sales)
}

func TestInventoryServiceSellInactiveItem(t *testing.T) {
	repo := stockedRepo(10)
	repo.items["item-1"].Active = false
	svc := NewInventoryService(repo, activeStudents(), validator.New(), zap.NewNop())

	result, err := svc.Sell(context.Background(), SellRequest{ItemID: "item-1", StudentID: "s1", Quantity: 1})
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestInventoryServiceSellNonPositiveQuantity(t *testing.T) {
	repo := stockedRepo(10)
	svc := NewInventoryService(repo, activeStudents(), validator.New(), zap.NewNop())

	_, err := svc.Sell(context.Background(), SellRequest{ItemID: "item-1", StudentID: "s1", Quantity: 0})
	require.Error(t, err)
	assert.Equal(t, 10, repo.items["item-1"].Stock)
}

func TestInventoryServiceRestock(t *testing.T) {
	repo := stockedRepo(2)
	svc := NewInventoryService(repo, activeStudents(), validator.New(), zap.NewNop())

	result, err := svc.Restock(context.Background(), "item-1", RestockRequest{Quantity: 8})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 10, repo.items["item-1"].Stock)
}
