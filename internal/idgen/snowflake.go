package idgen

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Generator issues WR and shipment numbers from snowflake ids, so numbers are
// unique across server instances as long as each runs with its own node.
type Generator struct {
	node           *snowflake.Node
	wrPrefix       string
	shipmentPrefix string
}

func New(node int64, wrPrefix, shipmentPrefix string) (*Generator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("failed to init snowflake node %d: %w", node, err)
	}
	return &Generator{node: n, wrPrefix: wrPrefix, shipmentPrefix: shipmentPrefix}, nil
}

func (g *Generator) number(prefix string) string {
	id := strings.ToUpper(g.node.Generate().Base36())
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}

func (g *Generator) NextWRNumber() string { return g.number(g.wrPrefix) }

func (g *Generator) NextShipmentNumber() string { return g.number(g.shipmentPrefix) }
