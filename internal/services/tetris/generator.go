package tetris

import (
	model "github.com/kestrel-tetris/kestrel-backend/internal/models/tetris"
)

// splitMix64 is a small, portable 64-bit PRNG. It is the documented,
// stable generator behind the piece generator (spec §4.2, §9 open
// question): replays depend on this exact algorithm never changing, so it
// is implemented explicitly here rather than delegated to math/rand,
// whose internal generator is not a stability guarantee across Go
// releases.
type splitMix64 struct {
	state uint64
}

func newSplitMix64(seed uint64) *splitMix64 {
	return &splitMix64{state: seed}
}

func (s *splitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// floatUnit returns a uniform value in [0, 1).
func (s *splitMix64) floatUnit() float64 {
	return float64(s.next()>>11) / float64(1<<53)
}

// RecencyGenerator implements spec §4.2's recency-weighted piece
// generator: each tetromino is drawn with probability proportional to the
// square of the number of pieces produced since it was last emitted.
type RecencyGenerator struct {
	rng           *splitMix64
	lastGenerated [7]int // indexed by Tetromino-1
}

// NewRecencyGenerator seeds a generator from a 64-bit seed. All recency
// counters start at 1 so no piece is favoured on the first draw.
func NewRecencyGenerator(seed uint64) *RecencyGenerator {
	g := &RecencyGenerator{rng: newSplitMix64(seed)}
	for i := range g.lastGenerated {
		g.lastGenerated[i] = 1
	}
	return g
}

// Next draws and returns the next tetromino, updating recency state.
func (g *RecencyGenerator) Next() model.Tetromino {
	var weights [7]float64
	var total float64
	for i, count := range g.lastGenerated {
		w := float64(count * count)
		weights[i] = w
		total += w
	}

	roll := g.rng.floatUnit() * total
	chosen := 6
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			chosen = i
			break
		}
	}

	for i := range g.lastGenerated {
		if i == chosen {
			g.lastGenerated[i] = 1
		} else {
			g.lastGenerated[i]++
		}
	}
	return model.AllTetrominoes[chosen]
}
