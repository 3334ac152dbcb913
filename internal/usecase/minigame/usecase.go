package minigame

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/LavaJover/festival-order-service/internal/domain"
	"github.com/LavaJover/festival-order-service/internal/game"
	publisher "github.com/LavaJover/festival-order-service/internal/infrastructure/kafka"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/metrics"
	gamedto "github.com/LavaJover/festival-order-service/internal/usecase/dto/game"
)

const (
	gameWheel = "wheel"
	gameFlip  = "flip"

	// a conflicting concurrent spend is retried; the locked path never hits it
	maxSpendAttempts = 3
)

type GameUsecase interface {
	GetGameState(ctx context.Context, phone string) (*gamedto.GameStateOutput, error)
	PlayWheel(ctx context.Context, phone string) (*gamedto.WheelOutput, error)
	PlayCardFlip(ctx context.Context, phone string) (*gamedto.CardFlipOutput, error)
	GrantBonusTickets(ctx context.Context, phone string, count int64) (*gamedto.GameStateOutput, error)
	DeleteGameState(ctx context.Context, phone string) error
	ListGameStats(ctx context.Context) ([]gamedto.GameStatOutput, error)
}

type DefaultGameUsecase struct {
	OrderRepo domain.OrderRepository
	Ledger    domain.TicketLedger
	Wheel     *game.Wheel
	Random    game.Source
	Publisher *publisher.EventPublisher
	Metrics   *metrics.OrderMetrics
	Logger    *slog.Logger
	Now       func() time.Time
}

func NewDefaultGameUsecase(
	orderRepo domain.OrderRepository,
	ledger domain.TicketLedger,
	wheel *game.Wheel,
	random game.Source,
	eventPublisher *publisher.EventPublisher,
	orderMetrics *metrics.OrderMetrics,
	logger *slog.Logger,
) *DefaultGameUsecase {
	return &DefaultGameUsecase{
		OrderRepo: orderRepo,
		Ledger:    ledger,
		Wheel:     wheel,
		Random:    random,
		Publisher: eventPublisher,
		Metrics:   orderMetrics,
		Logger:    logger,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetGameState returns the derived balance. A phone that never played has
// HasState false and an empty collection, which is not an error.
func (uc *DefaultGameUsecase) GetGameState(ctx context.Context, rawPhone string) (*gamedto.GameStateOutput, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}
	b, err := uc.Ledger.Balance(ctx, phone)
	if err != nil {
		return nil, err
	}
	return toStateOutput(b), nil
}

func (uc *DefaultGameUsecase) PlayWheel(ctx context.Context, rawPhone string) (*gamedto.WheelOutput, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	var idx int
	b, err := uc.spend(ctx, gameWheel, phone, func(*domain.GameState) error {
		idx = uc.Wheel.Spin(uc.Random)
		return nil
	})
	if err != nil {
		return nil, err
	}

	prize := uc.Wheel.Prizes()[idx]
	uc.played(gameWheel, phone, prize.Name, b)
	return &gamedto.WheelOutput{
		PrizeIndex:       idx,
		Prize:            prize,
		UsedTickets:      b.UsedTickets,
		AvailableTickets: b.Available(),
	}, nil
}

// PlayCardFlip draws one card. The ticket check runs before the completion
// check, so a player with a full album and no tickets sees the ticket error.
func (uc *DefaultGameUsecase) PlayCardFlip(ctx context.Context, rawPhone string) (*gamedto.CardFlipOutput, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	var (
		card  domain.Card
		isNew bool
	)
	b, err := uc.spend(ctx, gameFlip, phone, func(st *domain.GameState) error {
		if st.IsComplete() {
			return domain.ErrCollectionComplete
		}
		card, isNew = game.DrawCard(st.CollectedCards, uc.Random)
		if isNew {
			st.CollectedCards = append(st.CollectedCards, card.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	complete := len(b.CollectedCards) >= domain.CollectionSize
	outcome := "duplicate"
	if isNew {
		outcome = "new"
		if complete {
			uc.Metrics.RecordCollectionCompleted()
		}
	}
	uc.played(gameFlip, phone, outcome, b)
	return &gamedto.CardFlipOutput{
		Card:             card,
		IsNew:            isNew,
		CollectedCards:   b.CollectedCards,
		UsedTickets:      b.UsedTickets,
		AvailableTickets: b.Available(),
		IsComplete:       complete,
	}, nil
}

func (uc *DefaultGameUsecase) spend(ctx context.Context, gameName, phone string, apply domain.SpendFunc) (domain.TicketBalance, error) {
	var (
		b   domain.TicketBalance
		err error
	)
	for attempt := 0; attempt < maxSpendAttempts; attempt++ {
		b, err = uc.Ledger.Spend(ctx, phone, apply)
		if !errors.Is(err, domain.ErrTicketConflict) {
			break
		}
	}
	switch {
	case errors.Is(err, domain.ErrInsufficientTickets):
		uc.Metrics.RecordGameRejection(gameName, "no_tickets")
	case errors.Is(err, domain.ErrCollectionComplete):
		uc.Metrics.RecordGameRejection(gameName, "complete")
	case errors.Is(err, domain.ErrTicketConflict):
		uc.Metrics.RecordGameRejection(gameName, "conflict")
	case err != nil:
		uc.Logger.Error("ticket spend failed", "game", gameName, "phone", phone, "error", err)
	}
	return b, err
}

func (uc *DefaultGameUsecase) played(gameName, phone, outcome string, b domain.TicketBalance) {
	uc.Metrics.RecordGamePlay(gameName, outcome)
	uc.Logger.Info("game played", "game", gameName, "phone", phone, "outcome", outcome, "available", b.Available())
	uc.Publisher.PublishGame(publisher.GameEvent{
		Type:             publisher.EventGamePlayed,
		Phone:            phone,
		Game:             gameName,
		Outcome:          outcome,
		RemainingTickets: b.Available(),
		OccurredAt:       uc.Now(),
	})
}

func (uc *DefaultGameUsecase) GrantBonusTickets(ctx context.Context, rawPhone string, count int64) (*gamedto.GameStateOutput, error) {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, domain.NewValidationError("count", "must be positive")
	}

	b, err := uc.Ledger.Grant(ctx, phone, count)
	if err != nil {
		return nil, err
	}

	uc.Metrics.RecordBonusTickets(count)
	uc.Logger.Info("bonus tickets granted", "phone", phone, "count", count, "available", b.Available())
	uc.Publisher.PublishGame(publisher.GameEvent{
		Type:             publisher.EventTicketsGranted,
		Phone:            phone,
		Count:            count,
		RemainingTickets: b.Available(),
		OccurredAt:       uc.Now(),
	})
	return toStateOutput(b), nil
}

func (uc *DefaultGameUsecase) DeleteGameState(ctx context.Context, rawPhone string) error {
	phone, err := domain.NormalizePhone(rawPhone)
	if err != nil {
		return err
	}
	if err := uc.Ledger.Delete(ctx, phone); err != nil {
		return err
	}
	uc.Logger.Warn("game state deleted", "phone", phone)
	return nil
}

// ListGameStats merges paid-order tickets with stored game states. Phones
// with neither tickets nor plays are left out.
func (uc *DefaultGameUsecase) ListGameStats(ctx context.Context) ([]gamedto.GameStatOutput, error) {
	orderTickets, err := uc.OrderRepo.PaidTicketsByPhone(ctx)
	if err != nil {
		return nil, err
	}
	states, err := uc.Ledger.ListStates(ctx)
	if err != nil {
		return nil, err
	}

	byPhone := make(map[string]domain.TicketBalance, len(orderTickets)+len(states))
	for phone, n := range orderTickets {
		byPhone[phone] = domain.TicketBalance{Phone: phone, OrderTickets: n, CollectedCards: []int{}}
	}
	for _, st := range states {
		b := byPhone[st.Phone]
		b.Phone = st.Phone
		b.BonusTickets = st.BonusTickets
		b.UsedTickets = st.UsedTickets
		b.CollectedCards = st.CollectedCards
		b.HasState = true
		byPhone[st.Phone] = b
	}

	out := make([]gamedto.GameStatOutput, 0, len(byPhone))
	for _, b := range byPhone {
		if b.Total() <= 0 && b.UsedTickets <= 0 {
			continue
		}
		cards := b.CollectedCards
		if cards == nil {
			cards = []int{}
		}
		out = append(out, gamedto.GameStatOutput{
			Phone:            b.Phone,
			TotalTickets:     b.Total(),
			UsedTickets:      b.UsedTickets,
			RemainingTickets: b.Available(),
			BonusTickets:     b.BonusTickets,
			CollectedCount:   len(cards),
			CollectedCards:   cards,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Phone < out[j].Phone })
	return out, nil
}

func toStateOutput(b domain.TicketBalance) *gamedto.GameStateOutput {
	cards := b.CollectedCards
	if cards == nil {
		cards = []int{}
	}
	catalogue := make([]domain.Card, 0, len(cards))
	for _, id := range cards {
		if c, ok := game.CardByID(id); ok {
			catalogue = append(catalogue, c)
		}
	}
	return &gamedto.GameStateOutput{
		Phone:            b.Phone,
		HasState:         b.HasState,
		CollectedCards:   cards,
		Cards:            catalogue,
		UsedTickets:      b.UsedTickets,
		BonusTickets:     b.BonusTickets,
		TotalTickets:     b.Total(),
		AvailableTickets: b.Available(),
		IsComplete:       len(cards) >= domain.CollectionSize,
	}
}

var _ GameUsecase = (*DefaultGameUsecase)(nil)
