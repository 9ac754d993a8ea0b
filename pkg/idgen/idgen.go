package idgen

import "github.com/bwmarrin/snowflake"

// Generator mints time-ordered int64 ids. Each running instance gets its own
// node id from config so ids never collide across replicas.
type Generator struct {
	node *snowflake.Node
}

func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &Generator{node: node}, nil
}

func (g *Generator) NextID() int64 {
	return g.node.Generate().Int64()
}
