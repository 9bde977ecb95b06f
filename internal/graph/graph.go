// Package graph renders a topology as Graphviz DOT text: exchanges as boxes,
// queues as ellipses, one edge per binding labeled with its routing key.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/topomq/topomq/internal/topology"
)

// Node identifiers are prefixed per namespace so an exchange and a queue
// sharing a name stay distinct nodes.
func exchangeID(name string) string { return "exchange:" + name }
func queueID(name string) string    { return "queue:" + name }

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// DOT renders the topology deterministically: nodes and edges are sorted, so
// the same topology always yields the same text.
func DOT(tp *topology.Topology) string {
	var b strings.Builder
	b.WriteString("digraph topology {\n")
	b.WriteString("  rankdir=LR;\n")

	exchanges := make([]string, 0, len(tp.Exchanges))
	for _, ex := range tp.Exchanges {
		exchanges = append(exchanges, ex.Name)
	}
	sort.Strings(exchanges)
	for _, name := range exchanges {
		fmt.Fprintf(&b, "  %s [shape=box, label=%s];\n", quote(exchangeID(name)), quote(name))
	}

	queues := make([]string, 0, len(tp.Queues))
	for _, q := range tp.Queues {
		queues = append(queues, q.Name)
	}
	sort.Strings(queues)
	for _, name := range queues {
		fmt.Fprintf(&b, "  %s [shape=ellipse, label=%s];\n", quote(queueID(name)), quote(name))
	}

	edges := make([]string, 0, len(tp.Bindings))
	for _, bind := range tp.Bindings {
		dst := queueID(bind.Destination)
		if bind.DestinationType == topology.DestinationExchange {
			dst = exchangeID(bind.Destination)
		}
		edges = append(edges, fmt.Sprintf("  %s -> %s [label=%s];\n",
			quote(exchangeID(bind.Source)), quote(dst), quote(bind.RoutingKey)))
	}
	sort.Strings(edges)
	for _, e := range edges {
		b.WriteString(e)
	}

	b.WriteString("}\n")
	return b.String()
}
