package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LavaJover/festival-order-service/internal/domain"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/postgres/models"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) Upsert(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	model := mappers.ToGORMOrder(order)
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_code"}},
		DoUpdates: clause.Set{
			{
				Column: clause.Column{Name: "status"},
				Value:  gorm.Expr("CASE WHEN orders.status = ? THEN orders.status ELSE excluded.status END", domain.StatusPaid),
			},
			{Column: clause.Column{Name: "delivered"}, Value: gorm.Expr("excluded.delivered")},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
		},
	}).Create(model).Error
	if err != nil {
		return nil, fmt.Errorf("upsert order %s: %w", order.OrderCode, err)
	}
	return r.GetByCode(ctx, order.OrderCode)
}

func (r *DefaultOrderRepository) GetByCode(ctx context.Context, orderCode string) (*domain.Order, error) {
	var model models.OrderModel
	err := r.DB.WithContext(ctx).Where("order_code = ?", orderCode).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainOrder(&model), nil
}

// ListAll returns every order, newest first.
func (r *DefaultOrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	var rows []models.OrderModel
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(rows), nil
}

func (r *DefaultOrderRepository) ListPending(ctx context.Context) ([]*domain.Order, error) {
	var rows []models.OrderModel
	err := r.DB.WithContext(ctx).
		Where("status = ?", domain.StatusPending).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainOrders(rows), nil
}

func (r *DefaultOrderRepository) MarkPaid(ctx context.Context, orderCode string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.OrderModel{}).
		Where("order_code = ? AND status = ?", orderCode, domain.StatusPending).
		Updates(map[string]any{
			"status":     domain.StatusPaid,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark order %s paid: %w", orderCode, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *DefaultOrderRepository) SetDelivered(ctx context.Context, orderCode string, delivered bool) (*domain.Order, error) {
	res := r.DB.WithContext(ctx).Model(&models.OrderModel{}).
		Where("order_code = ?", orderCode).
		Updates(map[string]any{
			"delivered":  delivered,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrOrderNotFound
	}
	return r.GetByCode(ctx, orderCode)
}

func (r *DefaultOrderRepository) Delete(ctx context.Context, orderCode string) error {
	res := r.DB.WithContext(ctx).Where("order_code = ?", orderCode).Delete(&models.OrderModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *DefaultOrderRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).Where("1 = 1").Delete(&models.OrderModel{})
	return res.RowsAffected, res.Error
}

// DeletePendingBefore removes stale pending orders in one statement and
// returns the codes of the rows it actually deleted. An order paid while the
// statement runs fails the status predicate and is neither deleted nor
// reported.
func (r *DefaultOrderRepository) DeletePendingBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	var deleted []models.OrderModel
	err := r.DB.WithContext(ctx).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "order_code"}}}).
		Where("status = ? AND created_at < ?", domain.StatusPending, cutoff).
		Delete(&deleted).Error
	if err != nil {
		return nil, fmt.Errorf("delete expired orders: %w", err)
	}

	codes := make([]string, 0, len(deleted))
	for _, m := range deleted {
		codes = append(codes, m.OrderCode)
	}
	sort.Strings(codes)
	return codes, nil
}

func (r *DefaultOrderRepository) PaidTicketsByPhone(ctx context.Context) (map[string]int64, error) {
	var sums []models.TicketSum
	err := r.DB.WithContext(ctx).Model(&models.OrderModel{}).
		Select("phone, COALESCE(SUM(tickets), 0) AS tickets").
		Where("status = ?", domain.StatusPaid).
		Group("phone").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(sums))
	for _, s := range sums {
		out[s.Phone] = s.Tickets
	}
	return out, nil
}

func toDomainOrders(rows []models.OrderModel) []*domain.Order {
	out := make([]*domain.Order, 0, len(rows))
	for i := range rows {
		out = append(out, mappers.ToDomainOrder(&rows[i]))
	}
	return out
}
