package experience

import (
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/mdp"
)

var (
	// ErrBufferClosed is returned when operations are attempted on a closed buffer
	ErrBufferClosed = errors.New("experience buffer is closed")
)

// DefaultCapacity is used when a buffer is created with a non-positive capacity.
const DefaultCapacity = 10000

// Experience is one observed transition of a training episode.
type Experience[S comparable] struct {
	Episode     int
	Step        int
	State       S
	Action      mdp.Action
	Reward      float64
	NextState   S
	Done        bool
	CollectedAt time.Time
}

// Buffer is a circular buffer of experiences. When full, the oldest
// experience is dropped. A Buffer belongs to a single training loop and is
// not safe for concurrent use.
type Buffer[S comparable] struct {
	buffer   []Experience[S]
	capacity int
	size     int
	head     int // Write position
	tail     int // Read position
	closed   bool

	// Statistics
	totalAdded   int64
	totalDropped int64

	logger zerolog.Logger
}

// NewBuffer creates a new experience buffer with the specified capacity
func NewBuffer[S comparable](capacity int, logger zerolog.Logger) *Buffer[S] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Buffer[S]{
		buffer:   make([]Experience[S], capacity),
		capacity: capacity,
		logger:   logger.With().Str("component", "experience_buffer").Logger(),
	}
}

// Add adds an experience to the buffer
func (b *Buffer[S]) Add(exp Experience[S]) error {
	if b.closed {
		return ErrBufferClosed
	}
	b.push(exp)
	return nil
}

// AddBatch adds multiple experiences to the buffer
func (b *Buffer[S]) AddBatch(experiences []Experience[S]) error {
	if b.closed {
		return ErrBufferClosed
	}
	for _, exp := range experiences {
		b.push(exp)
	}

	if len(experiences) > 0 {
		b.logger.Debug().
			Int("batch_size", len(experiences)).
			Int64("total_added", b.totalAdded).
			Msg("Added batch of experiences")
	}
	return nil
}

func (b *Buffer[S]) push(exp Experience[S]) {
	if b.size >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.totalDropped++
	} else {
		b.size++
	}

	b.buffer[b.head] = exp
	b.head = (b.head + 1) % b.capacity
	b.totalAdded++
}

// Get removes and returns up to n of the oldest experiences
func (b *Buffer[S]) Get(n int) []Experience[S] {
	if n > b.size {
		n = b.size
	}

	result := make([]Experience[S], n)
	for i := 0; i < n; i++ {
		result[i] = b.buffer[b.tail]
		b.tail = (b.tail + 1) % b.capacity
		b.size--
	}
	return result
}

// GetAll removes and returns every experience, oldest first
func (b *Buffer[S]) GetAll() []Experience[S] {
	return b.Get(b.size)
}

// Snapshot returns every experience, oldest first, without removing them.
func (b *Buffer[S]) Snapshot() []Experience[S] {
	result := make([]Experience[S], b.size)
	for i := 0; i < b.size; i++ {
		result[i] = b.buffer[(b.tail+i)%b.capacity]
	}
	return result
}

// Sample draws n experiences uniformly at random, with replacement.
func (b *Buffer[S]) Sample(n int, rng *rand.Rand) []Experience[S] {
	if b.size == 0 || n <= 0 {
		return []Experience[S]{}
	}

	result := make([]Experience[S], n)
	for i := range result {
		result[i] = b.buffer[(b.tail+rng.Intn(b.size))%b.capacity]
	}
	return result
}

// GetLatest returns the n most recent experiences from the buffer
func (b *Buffer[S]) GetLatest(n int) []Experience[S] {
	if n > b.size {
		n = b.size
	}

	result := make([]Experience[S], n)
	for i := 0; i < n; i++ {
		idx := (b.head - n + i + b.capacity) % b.capacity
		result[i] = b.buffer[idx]
	}
	return result
}

// Size returns the current number of experiences in the buffer
func (b *Buffer[S]) Size() int {
	return b.size
}

// Capacity returns the maximum capacity of the buffer
func (b *Buffer[S]) Capacity() int {
	return b.capacity
}

// IsFull returns true if the buffer is at capacity
func (b *Buffer[S]) IsFull() bool {
	return b.size >= b.capacity
}

// Clear removes all experiences from the buffer
func (b *Buffer[S]) Clear() {
	b.size = 0
	b.head = 0
	b.tail = 0
	b.buffer = make([]Experience[S], b.capacity)

	b.logger.Debug().Msg("Buffer cleared")
}

// Close marks the buffer closed. Buffered experiences stay readable.
func (b *Buffer[S]) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	b.logger.Debug().
		Int64("total_added", b.totalAdded).
		Int64("total_dropped", b.totalDropped).
		Msg("Buffer closed")
	return nil
}

// Stats returns buffer statistics
func (b *Buffer[S]) Stats() BufferStats {
	return BufferStats{
		CurrentSize:    b.size,
		Capacity:       b.capacity,
		TotalAdded:     b.totalAdded,
		TotalDropped:   b.totalDropped,
		UtilizationPct: float64(b.size) / float64(b.capacity) * 100,
	}
}

// BufferStats contains buffer statistics
type BufferStats struct {
	CurrentSize    int
	Capacity       int
	TotalAdded     int64
	TotalDropped   int64
	UtilizationPct float64
}
