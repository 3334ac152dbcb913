package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LavaJover/festival-order-service/internal/domain"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/postgres/models"
)

// DefaultTicketLedger derives balances from paid orders plus the
// game_states row of each phone.
type DefaultTicketLedger struct {
	DB *gorm.DB
}

func NewDefaultTicketLedger(db *gorm.DB) *DefaultTicketLedger {
	return &DefaultTicketLedger{DB: db}
}

func (l *DefaultTicketLedger) Balance(ctx context.Context, phone string) (domain.TicketBalance, error) {
	var (
		out domain.TicketBalance
		st  models.GameStateModel
	)
	db := l.DB.WithContext(ctx)

	orderTickets, err := paidTickets(db, phone)
	if err != nil {
		return out, err
	}

	err = db.Where("phone = ?", phone).Take(&st).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.TicketBalance{Phone: phone, OrderTickets: orderTickets, CollectedCards: []int{}}, nil
	case err != nil:
		return out, err
	}
	return toBalance(&st, orderTickets), nil
}

// Spend locks the phone's state row for the whole check-apply-write cycle.
// The row is created on demand; on any error the transaction rolls back and
// no row is left behind.
func (l *DefaultTicketLedger) Spend(ctx context.Context, phone string, apply domain.SpendFunc) (domain.TicketBalance, error) {
	var out domain.TicketBalance
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.GameStateModel{
			Phone:          phone,
			CollectedCards: mappers.ToCardSlice(nil),
			UpdatedAt:      time.Now().UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("seed game state: %w", err)
		}

		var st models.GameStateModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("phone = ?", phone).
			Take(&st).Error; err != nil {
			return fmt.Errorf("lock game state: %w", err)
		}

		orderTickets, err := paidTickets(tx, phone)
		if err != nil {
			return err
		}
		if orderTickets+st.BonusTickets-st.UsedTickets <= 0 {
			return domain.ErrInsufficientTickets
		}

		state := mappers.ToDomainGameState(&st)
		if err := apply(state); err != nil {
			return err
		}

		now := time.Now().UTC()
		res := tx.Model(&models.GameStateModel{}).
			Where("phone = ? AND used_tickets = ?", phone, st.UsedTickets).
			Updates(map[string]any{
				"used_tickets":    gorm.Expr("used_tickets + 1"),
				"collected_cards": mappers.ToCardSlice(state.CollectedCards),
				"updated_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrTicketConflict
		}

		st.UsedTickets++
		st.CollectedCards = mappers.ToCardSlice(state.CollectedCards)
		st.UpdatedAt = now
		out = toBalance(&st, orderTickets)
		return nil
	})
	if err != nil {
		return domain.TicketBalance{}, err
	}
	return out, nil
}

func (l *DefaultTicketLedger) Grant(ctx context.Context, phone string, count int64) (domain.TicketBalance, error) {
	if count <= 0 {
		return domain.TicketBalance{}, domain.NewValidationError("count", "must be positive")
	}
	seed := models.GameStateModel{
		Phone:          phone,
		CollectedCards: mappers.ToCardSlice(nil),
		BonusTickets:   count,
		UpdatedAt:      time.Now().UTC(),
	}
	err := l.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "phone"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "bonus_tickets"}, Value: gorm.Expr("game_states.bonus_tickets + excluded.bonus_tickets")},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
		},
	}).Create(&seed).Error
	if err != nil {
		return domain.TicketBalance{}, fmt.Errorf("grant tickets to %s: %w", phone, err)
	}
	return l.Balance(ctx, phone)
}

func (l *DefaultTicketLedger) Delete(ctx context.Context, phone string) error {
	res := l.DB.WithContext(ctx).Where("phone = ?", phone).Delete(&models.GameStateModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrGameStateNotFound
	}
	return nil
}

func (l *DefaultTicketLedger) ListStates(ctx context.Context) ([]*domain.GameState, error) {
	var rows []models.GameStateModel
	if err := l.DB.WithContext(ctx).Order("phone ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.GameState, 0, len(rows))
	for i := range rows {
		out = append(out, mappers.ToDomainGameState(&rows[i]))
	}
	return out, nil
}

func paidTickets(db *gorm.DB, phone string) (int64, error) {
	var total int64
	err := db.Model(&models.OrderModel{}).
		Select("COALESCE(SUM(tickets), 0)").
		Where("phone = ? AND status = ?", phone, domain.StatusPaid).
		Row().Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum paid tickets: %w", err)
	}
	return total, nil
}

func toBalance(st *models.GameStateModel, orderTickets int64) domain.TicketBalance {
	state := mappers.ToDomainGameState(st)
	return domain.TicketBalance{
		Phone:          st.Phone,
		OrderTickets:   orderTickets,
		BonusTickets:   st.BonusTickets,
		UsedTickets:    st.UsedTickets,
		CollectedCards: state.CollectedCards,
		HasState:       true,
	}
}
