// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import "fmt"

// Stats stores status information about an operation. Each sub-problem that is
// not found in the memo table is explored exactly once, so Explored is equal to
// Memoized (unless memoization is disabled with option Nocache, in which case
// Memoized is zero).
type Stats struct {
	Explored  int // sub-problems explored (memo misses)
	MemoHits  int // sub-problems found in the memo table
	Memoized  int // entries in the memo table at the end of the operation
	Terminals int // calls that reached a pair of terminals
	Produced  int // nodes produced in the result
	ApplyHits int // entries found in the Apply cache (projection in Regress)
	ApplyMiss int // entries not found in the Apply cache
}

func (s Stats) String() string {
	res := fmt.Sprintf("Explored:       %d\n", s.Explored)
	res += fmt.Sprintf("Memo Hits:      %d\n", s.MemoHits)
	res += fmt.Sprintf("Memoized:       %d\n", s.Memoized)
	res += fmt.Sprintf("Terminals:      %d\n", s.Terminals)
	res += fmt.Sprintf("Produced:       %d\n", s.Produced)
	res += fmt.Sprintf("Apply Hits:     %d\n", s.ApplyHits)
	res += fmt.Sprintf("Apply Miss:     %d", s.ApplyMiss)
	return res
}

// memocache is the memo table of one call to Combine or Regress. It must
// never be reused for another call.
type memocache struct {
	table   map[memokey]NodeID
	disable bool
}

func newmemocache(size int, disable bool) *memocache {
	c := &memocache{disable: disable}
	if !disable {
		c.table = make(map[memokey]NodeID, size)
	}
	return c
}

func (c *memocache) match(k memokey) (NodeID, bool) {
	if c.disable {
		return NoNode, false
	}
	res, ok := c.table[k]
	return res, ok
}

func (c *memocache) set(k memokey, res NodeID) NodeID {
	if !c.disable && res != NoNode {
		c.table[k] = res
	}
	return res
}

func (c *memocache) len() int {
	return len(c.table)
}

// applycache is used for caching Apply results. It is tied to a single
// operator.
type applycache struct {
	table map[pairkey]NodeID
}

func newapplycache(size int) *applycache {
	return &applycache{table: make(map[pairkey]NodeID, size)}
}

func (c *applycache) match(x, y NodeID) (NodeID, bool) {
	res, ok := c.table[pairkey{x, y}]
	return res, ok
}

func (c *applycache) set(x, y, res NodeID) NodeID {
	if res != NoNode {
		c.table[pairkey{x, y}] = res
	}
	return res
}
