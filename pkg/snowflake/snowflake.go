package snowflake

import (
	"errors"
	"sync"
	"time"
)

const (
	// epoch is 2024-01-01T00:00:00Z in milliseconds. IDs order by
	// generation time relative to this point.
	epoch int64 = 1704067200000

	nodeBits     uint8 = 10
	sequenceBits uint8 = 12

	maxNodeID    = -1 ^ (-1 << nodeBits)
	sequenceMask = -1 ^ (-1 << sequenceBits)

	timeShift = nodeBits + sequenceBits
	nodeShift = sequenceBits
)

// IDGenerator produces unique, time-ordered 64-bit IDs. A single
// generator is safe for concurrent use; distinct nodes must use
// distinct node IDs.
type IDGenerator struct {
	mu       sync.Mutex
	lastTime int64
	nodeID   int64
	sequence int64
}

// NewIDGenerator creates a generator for the given node
func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	if nodeID < 0 || nodeID > maxNodeID {
		return nil, errors.New("invalid node ID")
	}
	return &IDGenerator{nodeID: nodeID}, nil
}

// NextID generates the next ID
func (g *IDGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli()

	if now == g.lastTime {
		g.sequence = (g.sequence + 1) & sequenceMask
		if g.sequence == 0 {
			// Sequence exhausted within this millisecond
			for now <= g.lastTime {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		g.sequence = 0
	}

	g.lastTime = now

	return ((now - epoch) << timeShift) |
		(g.nodeID << nodeShift) |
		g.sequence
}

// Decompose splits an ID into its timestamp (milliseconds since the
// Unix epoch), node ID and sequence parts
func Decompose(id int64) (timestamp, nodeID, sequence int64) {
	timestamp = (id >> timeShift) + epoch
	nodeID = (id >> nodeShift) & maxNodeID
	sequence = id & sequenceMask
	return
}
