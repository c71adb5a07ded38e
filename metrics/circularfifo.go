package metrics

import (
	"container/ring"

	"github.com/kar8uncle/uvgRTP/my"
)

/*
 * CircularFIFO is a first-in first-out queue with a fixed size
 * that replaces its oldest element if full.
 * Thread Safe
 *
 * Used to keep a rolling window of recent per-interval jitter samples
 * for observability without unbounded growth.
 */
type CircularFIFO struct {
	my.RWMutex
	writeHead *ring.Ring // pointing to last written element
	size      int
	max       int
}

func NewCircularFIFO(max int) *CircularFIFO {
	if max < 1 {
		max = 1
	}
	c := new(CircularFIFO)
	c.Init(max)
	return c
}

func (c *CircularFIFO) Init(max int) *CircularFIFO {
	c.max = max
	return c
}

func (c *CircularFIFO) PushBack(data interface{}) {
	c.Lock()
	defer c.Unlock()

	if c.writeHead == nil {
		c.writeHead = ring.New(1)
		c.writeHead.Value = data
		c.size++
		return
	}
	if c.size < c.max {
		e := ring.New(1)
		e.Value = data
		c.writeHead.Link(e)
		c.writeHead = e
		c.size++
		return
	}
	c.writeHead = c.writeHead.Next()
	c.writeHead.Value = data
}

func (c *CircularFIFO) GetLast() interface{} {
	c.RLock()
	defer c.RUnlock()

	if c.writeHead == nil {
		return nil
	}
	return c.writeHead.Value
}

// Do calls function f on each element of the ring, from oldest to nearest
func (c *CircularFIFO) Do(f func(interface{})) {
	c.RLock()
	defer c.RUnlock()
	if c.writeHead == nil {
		return
	}
	c.writeHead.Next().Do(f)
}
