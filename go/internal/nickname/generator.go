package nickname

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed names.yaml
var defaultNames []byte

var ErrNoNames = errors.New("nickname list is empty")

type wordList struct {
	Names []string `yaml:"names"`
}

// Generator hands out random nicknames. It is safe for concurrent use.
type Generator struct {
	names []string

	mu  sync.Mutex
	rng *rand.Rand
}

// Parse builds a Generator from a YAML document with a top-level names list.
func Parse(data []byte, rng *rand.Rand) (*Generator, error) {
	var wl wordList
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("failed to parse nickname list: %w", err)
	}
	if len(wl.Names) == 0 {
		return nil, ErrNoNames
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{names: wl.Names, rng: rng}, nil
}

// Default returns a Generator over the built-in word list.
func Default() (*Generator, error) {
	return Parse(defaultNames, nil)
}

// Next returns a word from the list followed by a number in [0, 100).
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	word := g.names[g.rng.IntN(len(g.names))]
	return word + strconv.Itoa(g.rng.IntN(100))
}
