package simulate

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

var (
	tournamentAdjectives = []string{
		"Roaring", "Sleepy", "Fearless", "Wobbly", "Golden", "Midnight", "Thundering",
		"Cheeky", "Mighty", "Dizzy", "Brave", "Sneaky", "Lucky", "Howling", "Fizzy",
	}
	tournamentAnimals = []string{
		"Otters", "Badgers", "Falcons", "Walruses", "Pandas", "Lynxes", "Geckos",
		"Herons", "Moose", "Wombats", "Narwhals", "Coyotes", "Puffins", "Yaks",
	}
	teamAdjectives = []string{
		"Thirsty", "Foamy", "Bubbly", "Frosty", "Hoppy", "Salty", "Bouncy",
		"Sticky", "Rowdy", "Spilled", "Tipsy", "Crisp", "Hazy", "Bitter",
	}
	drinkTypes = []string{
		"Lager", "Stout", "Cider", "Pilsner", "Porter", "Ale", "Shandy",
		"Radler", "Kölsch", "Bock", "Weizen", "Mead",
	}
	teamTypes = []string{
		"Legends", "Bandits", "Rebels", "Pirates", "Wizards", "Rangers",
		"Sharks", "Outlaws", "Titans", "Rockets", "Vikings", "Comets",
	}
	playerAdjectives = []string{
		"Steady", "Wild", "Smooth", "Quick", "Calm", "Shaky", "Sharp", "Loud",
	}
	playerTypes = []string{
		"Thrower", "Bouncer", "Sniper", "Rookie", "Captain", "Splasher", "Ace", "Closer",
	}
)

// namer hands out names that are unique within one simulation.
type namer struct {
	mu   sync.Mutex
	rnd  *rand.Rand
	used map[string]struct{}
}

func newNamer(rnd *rand.Rand) *namer {
	return &namer{rnd: rnd, used: make(map[string]struct{})}
}

func (n *namer) pick(words []string) string {
	return words[n.rnd.IntN(len(words))]
}

// unique draws from gen until it finds an unused name, then falls back to a
// numbered suffix.
func (n *namer) unique(gen func() string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	name := gen()
	for attempt := 0; attempt < 100; attempt++ {
		if _, ok := n.used[strings.ToLower(name)]; !ok {
			break
		}
		name = gen()
	}
	for i := 2; ; i++ {
		if _, ok := n.used[strings.ToLower(name)]; !ok {
			break
		}
		name = fmt.Sprintf("%s %d", strings.TrimRight(name, " 0123456789"), i)
	}
	n.used[strings.ToLower(name)] = struct{}{}
	return name
}

func (n *namer) tournament() string {
	return n.unique(func() string {
		return n.pick(tournamentAdjectives) + " " + n.pick(tournamentAnimals) + " Cup"
	})
}

func (n *namer) team() string {
	return n.unique(func() string {
		return n.pick(teamAdjectives) + " " + n.pick(drinkTypes) + " " + n.pick(teamTypes)
	})
}

func (n *namer) player() string {
	return n.unique(func() string {
		return n.pick(playerAdjectives) + " " + n.pick(playerTypes)
	})
}
