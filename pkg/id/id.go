package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out ULID strings. IDs from one generator are
// lexicographically increasing, and two generators built with the same seed
// produce the same IDs for the same timestamps.
type Generator struct {
	mu   sync.Mutex
	mono io.Reader
}

// NewGenerator returns a generator whose entropy is derived from seed.
// A zero seed draws one from crypto/rand.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
	}
	return &Generator{
		mono: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}
}

// Next returns a ULID stamped with t.
func (g *Generator) Next(t time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), g.mono)
	if err != nil {
		// only possible if t goes backwards within one millisecond's entropy space
		panic(err)
	}
	return id.String()
}

var defaultGen = NewGenerator(0)

// New returns a ULID string stamped with the current time.
func New() string {
	return defaultGen.Next(time.Now())
}
