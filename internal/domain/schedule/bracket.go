package schedule

import (
	"fmt"

	"github.com/okian/pong/internal/domain/model"
	"github.com/okian/pong/internal/domain/standings"
)

// Bracket builds a single-elimination skeleton for seeds.
//
// A power-of-two list is paired in order: seeds[0] v seeds[1], seeds[2] v
// seeds[3] and so on. Otherwise seeds are ranked best first and the bracket
// is sized to the next power of two; slots follow the standard seeding order
// so missing entrants become byes for the highest seeds. A round-1 pair with
// a bye produces no match and its team starts in round 2. Later rounds are
// placeholders addressed by (Round, Position). With thirdPlace set, a playoff
// for the semifinal losers is added to the final round when both semifinals
// are played.
func Bracket(seeds []string, thirdPlace bool, newID func() string) ([]*model.KnockoutMatch, error) {
	if len(seeds) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughTeams, len(seeds))
	}
	size, rounds := 1, 0
	for size < len(seeds) {
		size *= 2
		rounds++
	}

	later := make([][]*model.KnockoutMatch, rounds+1)
	for r := 2; r <= rounds; r++ {
		count := size >> r
		later[r] = make([]*model.KnockoutMatch, count)
		for p := 0; p < count; p++ {
			later[r][p] = &model.KnockoutMatch{MatchBase: model.MatchBase{ID: newID()}, Round: r, Position: p}
		}
	}

	order := sequential(size)
	if len(seeds) < size {
		order = SeedOrder(size)
	}
	var first []*model.KnockoutMatch
	for p := 0; p < size/2; p++ {
		a, b := slot(seeds, order[2*p]), slot(seeds, order[2*p+1])
		if a != "" && b != "" {
			first = append(first, &model.KnockoutMatch{
				MatchBase: model.MatchBase{ID: newID(), Team1ID: a, Team2ID: b},
				Round:     1,
				Position:  p,
			})
			continue
		}
		team := a
		if team == "" {
			team = b
		}
		later[2][p/2].Place(team)
	}

	out := first
	for r := 2; r <= rounds; r++ {
		out = append(out, later[r]...)
	}
	// With two rounds and a bye one semifinal is never played.
	if thirdPlace && (rounds > 2 || (rounds == 2 && len(seeds) == size)) {
		out = append(out, &model.KnockoutMatch{
			MatchBase:  model.MatchBase{ID: newID()},
			Round:      rounds,
			Position:   1,
			ThirdPlace: true,
		})
	}
	return out, nil
}

func sequential(size int) []int {
	order := make([]int, size)
	for i := range order {
		order[i] = i + 1
	}
	return order
}

func slot(seeds []string, seed int) string {
	if seed > len(seeds) {
		return ""
	}
	return seeds[seed-1]
}

// SeedOrder lists 1-based seeds in bracket slot order for a power-of-two
// size, so that seed s meets seed size+1-s in round 1 and the top two seeds
// can only meet in the final.
func SeedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		n := len(order) * 2
		next := make([]int, 0, n)
		for _, s := range order {
			next = append(next, s, n+1-s)
		}
		order = next
	}
	return order
}

// Seeds picks the top qualifiers of every group table (all teams when
// qualifiers is not positive) and ranks them: every group winner in group
// order, then every runner-up, and so on. A power-of-two field is returned in
// bracket order, so pairing it sequentially matches seed s with seed n+1-s
// (winners against runners-up of another group). Any other field is returned
// ranked and left for Bracket to place around the byes.
func Seeds(tables [][]standings.Row, qualifiers int) []string {
	var ranked []string
	for rank := 0; ; rank++ {
		found := false
		for _, rows := range tables {
			take := len(rows)
			if qualifiers > 0 && qualifiers < take {
				take = qualifiers
			}
			if rank < take {
				ranked = append(ranked, rows[rank].TeamID)
				found = true
			}
		}
		if !found {
			break
		}
	}
	n := len(ranked)
	if n < 2 || n&(n-1) != 0 {
		return ranked
	}
	seeds := make([]string, 0, n)
	for _, s := range SeedOrder(n) {
		seeds = append(seeds, ranked[s-1])
	}
	return seeds
}
