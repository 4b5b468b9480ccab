package uid

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-sortable int64 IDs using the snowflake layout.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator whose node number comes from the NODE_ID
// environment variable, falling back to the process ID.
func NewSnowflake() (*Snowflake, error) {
	nodeID := int64(os.Getpid())
	if v := os.Getenv("NODE_ID"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			nodeID = parsed
		}
	}

	node, err := snowflake.NewNode(nodeID % 1024)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new snowflake ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
