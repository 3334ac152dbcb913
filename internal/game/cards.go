package game

import "github.com/LavaJover/festival-order-service/internal/domain"

var Cards = [domain.CollectionSize]domain.Card{
	{ID: 1, Name: "Fire Dragon"},
	{ID: 2, Name: "Snow Mountain"},
	{ID: 3, Name: "Star"},
	{ID: 4, Name: "Festival"},
	{ID: 5, Name: "Spring Fair"},
	{ID: 6, Name: "Music"},
	{ID: 7, Name: "Art"},
	{ID: 8, Name: "Champion"},
	{ID: 9, Name: "Diamond"},
	{ID: 10, Name: "Superstar"},
	{ID: 11, Name: "Crown"},
}

// duplicateChance[n] is the probability that a flip with n cards already
// collected yields a card the player owns. Must be non-decreasing.
var duplicateChance = [domain.CollectionSize]float64{
	0,     // 0 collected: always new
	0.20,  // 1
	0.30,  // 2
	0.45,  // 3
	0.55,  // 4
	0.70,  // 5
	0.80,  // 6
	0.88,  // 7
	0.93,  // 8
	0.97,  // 9
	0.993, // 10: last card
}

func DuplicateChance(collected int) float64 {
	switch {
	case collected <= 0:
		return 0
	case collected >= len(duplicateChance):
		return duplicateChance[len(duplicateChance)-1]
	default:
		return duplicateChance[collected]
	}
}

func CardByID(id int) (domain.Card, bool) {
	if id < 1 || id > len(Cards) {
		return domain.Card{}, false
	}
	return Cards[id-1], true
}

// DrawCard selects the next card for a player owning collected and reports
// whether it is new to them.
func DrawCard(collected []int, src Source) (domain.Card, bool) {
	owned := make(map[int]bool, len(collected))
	for _, id := range collected {
		owned[id] = true
	}
	n := len(owned)

	if n > 0 && n < domain.CollectionSize && src.Float64() < DuplicateChance(n) {
		id := collected[src.IntN(len(collected))]
		card, _ := CardByID(id)
		return card, false
	}

	missing := make([]domain.Card, 0, domain.CollectionSize-n)
	for _, c := range Cards {
		if !owned[c.ID] {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return Cards[src.IntN(len(Cards))], false
	}
	return missing[src.IntN(len(missing))], true
}
