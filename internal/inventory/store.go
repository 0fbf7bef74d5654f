package inventory

import (
	"errors"
	"fmt"
	"strings"

	"pyme-backend/internal/metrics"
	"pyme-backend/internal/models"
	"pyme-backend/internal/stockstatus"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProductInUse  = errors.New("producto con compras, ventas o producción registradas")
	ErrNegativeStock = errors.New("cantidad, stock mínimo y máximo no pueden ser negativos")
)

// Thresholds are the min/max applied to a newly created stock row.
type Thresholds struct {
	MinStock int
	MaxStock int
}

// CreateProduct inserts p and its initial empty stock row in one transaction.
func CreateProduct(db *gorm.DB, p *models.Product, th Thresholds) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("crear producto: %w", err)
		}

		stock := models.Stock{
			UserID:    p.UserID,
			ProductID: p.ID,
			Quantity:  0,
			MinStock:  th.MinStock,
			MaxStock:  th.MaxStock,
		}
		if err := tx.Create(&stock).Error; err != nil {
			return fmt.Errorf("crear stock inicial: %w", err)
		}
		p.Stock = []models.Stock{stock}
		return nil
	})
}

// DeleteProduct removes the stock rows of p and then p itself. Products that
// other records still point at are refused with ErrProductInUse.
func DeleteProduct(db *gorm.DB, p *models.Product) error {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("iniciar transacción: %w", tx.Error)
	}

	for _, ref := range []any{&models.Purchase{}, &models.Sale{}, &models.Production{}} {
		var n int64
		if err := tx.Model(ref).Where("product_id = ?", p.ID).Count(&n).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("contar referencias: %w", err)
		}
		if n > 0 {
			tx.Rollback()
			return ErrProductInUse
		}
	}

	if err := tx.Where("product_id = ?", p.ID).Delete(&models.Stock{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("eliminar stock: %w", err)
	}
	if err := tx.Delete(p).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("eliminar producto: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("confirmar transacción: %w", err)
	}
	return nil
}

// StockUpdate carries the fields of a stock upsert; nil keeps the current
// value, or the default on insert.
type StockUpdate struct {
	Quantity *int
	MinStock *int
	MaxStock *int
	Location *string
}

func (u StockUpdate) validate() error {
	for _, v := range []*int{u.Quantity, u.MinStock, u.MaxStock} {
		if v != nil && *v < 0 {
			return ErrNegativeStock
		}
	}
	return nil
}

// UpsertStock updates the stock row of product or inserts one when missing.
// The returned bool is true when a row was created.
func UpsertStock(db *gorm.DB, product *models.Product, u StockUpdate, th Thresholds) (*models.Stock, bool, error) {
	if err := u.validate(); err != nil {
		return nil, false, err
	}

	var stock models.Stock
	created := false
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("product_id = ?", product.ID).First(&stock).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			stock = models.Stock{
				UserID:    product.UserID,
				ProductID: product.ID,
				MinStock:  th.MinStock,
				MaxStock:  th.MaxStock,
			}
		case err != nil:
			return fmt.Errorf("buscar stock: %w", err)
		}

		if u.Quantity != nil {
			stock.Quantity = *u.Quantity
		}
		if u.MinStock != nil {
			stock.MinStock = *u.MinStock
		}
		if u.MaxStock != nil {
			stock.MaxStock = *u.MaxStock
		}
		if u.Location != nil {
			stock.Location = strings.TrimSpace(*u.Location)
		}

		if created {
			return tx.Create(&stock).Error
		}
		return tx.Save(&stock).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &stock, created, nil
}

// StockRows loads every stock row of userID with its product and supplier,
// most recently updated first.
func StockRows(db *gorm.DB, userID uuid.UUID) ([]models.Stock, error) {
	var rows []models.Stock
	err := db.
		Where("user_id = ?", userID).
		Preload("Product.Supplier").
		Order("updated_at desc").
		Find(&rows).Error
	return rows, err
}

func levelOf(s *models.Stock) *stockstatus.Level {
	if s == nil {
		return nil
	}
	return &stockstatus.Level{Quantity: s.Quantity, MinStock: s.MinStock, MaxStock: s.MaxStock}
}

// evaluate classifies level for view and records the result.
func evaluate(view stockstatus.View, level *stockstatus.Level) stockstatus.Status {
	status := stockstatus.Evaluate(view, level)
	metrics.ObserveStockStatus(string(view), string(status))
	return status
}

// AlertItem names one product inside an alert bucket.
type AlertItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	MinStock    int    `json:"min_stock"`

	level stockstatus.Level
}

// BuildAlerts groups stock rows, in their listing order, into the out of
// stock and low stock buckets.
func BuildAlerts(rows []models.Stock) stockstatus.Alerts[AlertItem] {
	items := make([]AlertItem, 0, len(rows))
	for i := range rows {
		name := ""
		if rows[i].Product != nil {
			name = rows[i].Product.Name
		}
		items = append(items, AlertItem{
			ProductID:   rows[i].ProductID.String(),
			ProductName: name,
			Quantity:    rows[i].Quantity,
			MinStock:    rows[i].MinStock,
			level:       *levelOf(&rows[i]),
		})
	}

	return stockstatus.BuildAlerts(items, func(it AlertItem) *stockstatus.Level {
		return &it.level
	})
}
