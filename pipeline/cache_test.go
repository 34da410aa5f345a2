package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellInitialValue(t *testing.T) {
	c := NewCell(42)
	assert.Equal(t, 42, c.Load())
}

func TestCellLastWriteWins(t *testing.T) {
	c := NewCell("a")
	c.Store("b")
	c.Store("c")
	assert.Equal(t, "c", c.Load())
}

func TestCellConcurrentReadersSeeWholeValues(t *testing.T) {
	// Store pairs whose halves must always match; a torn read would
	// surface as a mismatched pair.
	c := NewCell([2]int{0, 0})
	done := make(chan struct{})

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				v := c.Load()
				assert.Equal(t, v[0], v[1])
			}
		}()
	}

	for i := 1; i <= 10000; i++ {
		c.Store([2]int{i, i})
	}
	close(done)
	wg.Wait()

	assert.Equal(t, [2]int{10000, 10000}, c.Load())
}
