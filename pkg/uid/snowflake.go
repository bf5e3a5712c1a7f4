// Package uid generates numeric identifiers.
package uid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

const nodeBits = 10

// Epoch is 2025-01-01T00:00:00Z in milliseconds. Changing it reorders numbers.
const Epoch int64 = 1735689600000

// Snowflake generates time ordered, unique int64 values.
type Snowflake struct {
	node *snowflake.Node
}

func randomNodeID() (int64, error) {
	var nodeID int64
	if err := binary.Read(rand.Reader, binary.BigEndian, &nodeID); err != nil {
		return 0, fmt.Errorf("could not read random node id: %w", err)
	}

	return nodeID & (1<<nodeBits - 1), nil
}

// NewSnowflake creates a generator for nodeID. A negative nodeID picks a random
// one, which is fine for a single instance.
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	if nodeID < 0 {
		var err error
		if nodeID, err = randomNodeID(); err != nil {
			return nil, err
		}
	}

	snowflake.Epoch = Epoch

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("could not create snowflake node: %w", err)
	}

	return &Snowflake{node: node}, nil
}

// Next returns a new unique number.
func (s *Snowflake) Next() int64 {
	return s.node.Generate().Int64()
}
