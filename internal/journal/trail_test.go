package journal

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrailLast(t *testing.T) {
	trail := NewTrail()
	for i := 1; i <= 5; i++ {
		trail.Append(fmt.Sprintf("entry %d", i))
	}

	assert.Equal(t, []string{"entry 4", "entry 5"}, trail.Last(2))
	assert.Equal(t, []string{"entry 1", "entry 2", "entry 3", "entry 4", "entry 5"}, trail.Last(0))
	assert.Equal(t, trail.All(), trail.Last(10), "over-asking returns everything")
	assert.Equal(t, 5, trail.Len())
}

func TestTrailEmpty(t *testing.T) {
	trail := NewTrail()
	assert.Empty(t, trail.All())
	assert.Empty(t, trail.Last(3))
}

func TestTrailLastReturnsCopy(t *testing.T) {
	trail := NewTrail()
	trail.Append("a")
	trail.Append("b")

	got := trail.Last(0)
	got[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, trail.All())
}

func TestTrailConcurrentAppend(t *testing.T) {
	trail := NewTrail()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				trail.Append(fmt.Sprintf("writer %d line %d", n, j))
				trail.Last(5)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1000, trail.Len())
}
