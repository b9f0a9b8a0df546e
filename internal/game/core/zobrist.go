package core

import (
	"hash/fnv"
	"strings"
	"sync"

	"golang.org/x/exp/rand"
)

// zobristSeed fixes the table so hashes are stable across runs
const zobristSeed = 0x5a17041

type zobristTable struct {
	levels  [CellCount][MaxLevel + 1]uint64
	workers [CellCount][WorkersPerPlayer]uint64
}

var (
	zobristOnce   sync.Once
	sharedZobrist *zobristTable
)

func zobrist() *zobristTable {
	zobristOnce.Do(func() {
		rng := rand.New(rand.NewSource(zobristSeed))
		t := &zobristTable{}
		for i := range t.levels {
			for j := range t.levels[i] {
				t.levels[i][j] = rng.Uint64()
			}
			for j := range t.workers[i] {
				t.workers[i][j] = rng.Uint64()
			}
		}
		sharedZobrist = t
	})
	return sharedZobrist
}

// nameSalt is case-insensitive to match player name comparison.
func nameSalt(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(name)))
	return h.Sum64()
}

// mix64 scrambles a salted key so owners do not cancel out under XOR
func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
