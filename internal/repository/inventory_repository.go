package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/pkg/config"
)

// InventoryRepository persists inventory items and sales.
type InventoryRepository struct {
	db      *sqlx.DB
	locking config.LockingConfig
}

// NewInventoryRepository constructs the repository.
func NewInventoryRepository(db *sqlx.DB, locking config.LockingConfig) *InventoryRepository {
	return &InventoryRepository{db: db, locking: locking}
}

// List returns inventory items matching the filter.
func (r *InventoryRepository) List(ctx context.Context, filter models.InventoryFilter) ([]models.InventoryItem, int, error) {
	base := `FROM inventory_items`
	var conditions []string
	var args []interface{}
	if filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("site_id = $%d", len(args)+1))
		args = append(args, filter.SiteID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	query := fmt.Sprintf(`SELECT id, site_id, name, stock, unit_price, active, created_at, updated_at
        %s ORDER BY name ASC LIMIT %d OFFSET %d`, base+clause, size, (page-1)*size)

	var items []models.InventoryItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list inventory items: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", base+clause), args...); err != nil {
		return nil, 0, fmt.Errorf("count inventory items: %w", err)
	}
	return items, total, nil
}

// FindByID returns one inventory item.
func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*models.InventoryItem, error) {
	const query = `SELECT id, site_id, name, stock, unit_price, active, created_at, updated_at FROM inventory_items WHERE id = $1`
	var item models.InventoryItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create persists a new inventory item.
func (r *InventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	item.Active = true
	const query = `INSERT INTO inventory_items (id, site_id, name, stock, unit_price, active, created_at, updated_at)
        VALUES (:id, :site_id, :name, :stock, :unit_price, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create inventory item: %w", err)
	}
	return nil
}

// Update modifies name, price and active flag. Stock moves only through
// Sell and Restock.
func (r *InventoryRepository) Update(ctx context.Context, item *models.InventoryItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE inventory_items SET name = :name, unit_price = :unit_price, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	return nil
}

// Sell decrements stock and records the sale in one transaction. The item
// row is locked before the stock check, so concurrent sales serialize and
// stock can never go negative.
func (r *InventoryRepository) Sell(ctx context.Context, itemID, studentID string, quantity int) (*models.InventorySale, error) {
	tx, err := beginLocked(ctx, r.db, r.locking.Timeout)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck

	var item models.InventoryItem
	const lock = `SELECT id, site_id, name, stock, unit_price, active, created_at, updated_at
        FROM inventory_items WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &item, lock, itemID); err != nil {
		return nil, err
	}
	if item.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	const decrement = `UPDATE inventory_items SET stock = stock - $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, decrement, itemID, quantity, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	sale := &models.InventorySale{
		ID:        uuid.NewString(),
		ItemID:    itemID,
		StudentID: studentID,
		Quantity:  quantity,
		UnitPrice: item.UnitPrice,
		Total:     item.UnitPrice * float64(quantity),
		SoldAt:    time.Now().UTC(),
	}
	const insert = `INSERT INTO inventory_sales (id, item_id, student_id, quantity, unit_price, total, sold_at)
        VALUES (:id, :item_id, :student_id, :quantity, :unit_price, :total, :sold_at)`
	if _, err := tx.NamedExecContext(ctx, insert, sale); err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sale: %w", err)
	}
	return sale, nil
}

// Restock adds stock under the same row lock used by sales.
func (r *InventoryRepository) Restock(ctx context.Context, itemID string, quantity int) error {
	tx, err := beginLocked(ctx, r.db, r.locking.Timeout)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var id string
	if err := tx.GetContext(ctx, &id, `SELECT id FROM inventory_items WHERE id = $1 FOR UPDATE`, itemID); err != nil {
		return err
	}
	const query = `UPDATE inventory_items SET stock = stock + $2, updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, itemID, quantity, time.Now().UTC()); err != nil {
		return fmt.Errorf("restock item: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restock: %w", err)
	}
	return nil
}

// ListSales returns sales for an item or a student.
func (r *InventoryRepository) ListSales(ctx context.Context, itemID, studentID string) ([]models.InventorySale, error) {
	query := `SELECT id, item_id, student_id, quantity, unit_price, total, sold_at FROM inventory_sales WHERE 1=1`
	var args []interface{}
	if itemID != "" {
		query += fmt.Sprintf(" AND item_id = $%d", len(args)+1)
		args = append(args, itemID)
	}
	if studentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, studentID)
	}
	query += " ORDER BY sold_at DESC"
	var sales []models.InventorySale
	if err := r.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}
