// Package schedule generates round-robin fixtures and knockout bracket skeletons.
package schedule

import "github.com/okian/pong/internal/domain/model"

// bye marks the synthetic opponent added to odd-sized groups.
const bye = -1

// Pairing is one fixture of a round-robin schedule.
type Pairing struct {
	Round int
	Home  string
	Away  string
}

// RoundRobin schedules every unordered pair of group exactly once using the
// circle method. Odd groups get a bye, which is never returned as a pairing.
func RoundRobin(group []string) []Pairing {
	if len(group) < 2 {
		return nil
	}
	slots := make([]int, len(group), len(group)+1)
	for i := range slots {
		slots[i] = i
	}
	if len(slots)%2 == 1 {
		slots = append(slots, bye)
	}

	n := len(slots)
	pairings := make([]Pairing, 0, len(group)*(len(group)-1)/2)
	for round := 1; round < n; round++ {
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home == bye || away == bye {
				continue
			}
			pairings = append(pairings, Pairing{Round: round, Home: group[home], Away: group[away]})
		}
		// Position 0 stays fixed; the last slot moves to position 1.
		rotated := make([]int, 0, n)
		rotated = append(rotated, slots[0], slots[n-1])
		rotated = append(rotated, slots[1:n-1]...)
		slots = rotated
	}
	return pairings
}

// GroupMatches builds the group phase: one round robin per group, tagged with
// the group's index.
func GroupMatches(groups [][]string, newID func() string) []*model.GroupMatch {
	var matches []*model.GroupMatch
	for gi, group := range groups {
		for _, p := range RoundRobin(group) {
			matches = append(matches, &model.GroupMatch{
				MatchBase: model.MatchBase{ID: newID(), Team1ID: p.Home, Team2ID: p.Away},
				Group:     gi,
			})
		}
	}
	return matches
}
