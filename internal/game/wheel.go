package game

import (
	"errors"
	"fmt"

	"github.com/LavaJover/festival-order-service/internal/domain"
)

var ErrEmptyWheel = errors.New("wheel has no prizes with positive weight")

var DefaultPrizes = []domain.Prize{
	{Name: "Better luck next time", Weight: 40},
	{Name: "Free drink", Weight: 30},
	{Name: "Extra skewer", Weight: 20},
	{Name: "Grand prize", Weight: 10},
}

type Wheel struct {
	prizes      []domain.Prize
	totalWeight int64
}

func NewWheel(prizes []domain.Prize) (*Wheel, error) {
	if len(prizes) == 0 {
		return nil, ErrEmptyWheel
	}
	var total int64
	for i, p := range prizes {
		if p.Weight < 0 {
			return nil, fmt.Errorf("prize %d (%s): negative weight %d", i, p.Name, p.Weight)
		}
		total += p.Weight
	}
	if total == 0 {
		return nil, ErrEmptyWheel
	}
	cp := make([]domain.Prize, len(prizes))
	copy(cp, prizes)
	return &Wheel{prizes: cp, totalWeight: total}, nil
}

func (w *Wheel) Prizes() []domain.Prize {
	cp := make([]domain.Prize, len(w.prizes))
	copy(cp, w.prizes)
	return cp
}

func (w *Wheel) TotalWeight() int64 {
	return w.totalWeight
}

// Spin draws one prize index proportionally to weight.
func (w *Wheel) Spin(src Source) int {
	return w.Pick(int64(src.IntN(int(w.totalWeight))))
}

// Pick maps a draw in [0, TotalWeight) to a prize index by subtracting
// weights in table order until the remainder goes negative.
func (w *Wheel) Pick(draw int64) int {
	remainder := draw
	for i, p := range w.prizes {
		remainder -= p.Weight
		if remainder < 0 {
			return i
		}
	}
	return len(w.prizes) - 1
}
