package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string. Used for records
// addressed by opaque string IDs (contact messages, learning tips).
func NewKSUID() string {
	return ksuid.New().String()
}

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewSnowflakeID generates an int64 snowflake ID. The node ID comes from the
// SNOWFLAKE_NODE environment variable, defaulting to 1. The node is
// initialized once and reused for every call.
func NewSnowflakeID() int64 {
	nodeOnce.Do(func() {
		id := int64(1)
		if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
			if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
				id = parsed
			}
		}
		n, err := snowflake.NewNode(id)
		if err != nil {
			// node id out of range; fall back to node 1
			n, _ = snowflake.NewNode(1)
		}
		node = n
	})
	return node.Generate().Int64()
}
