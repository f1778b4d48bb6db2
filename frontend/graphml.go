package frontend

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/forsyde/f2cc-sub001/errs"
)

// Legacy GraphML-style dialect (spec §6 "Input format"): rooted at
// graphml/graph/node+edge, data carried as key-value <data key="..."> tags
// (leaf_type, procfun_arg, num_leafs, initial_value, array_size) rather than
// typed attributes. decodeGraphML normalizes this into the same
// xmlProcessNetwork DOM the rich dialect builds, so Build (frontend/build.go)
// handles both dialects uniformly — "both produce the same IR" (spec §6).
type graphmlDoc struct {
	XMLName xml.Name    `xml:"graphml"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlGraph struct {
	ID    string        `xml:"id,attr"`
	Nodes []graphmlNode `xml:"node"`
	Edges []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string       `xml:"id,attr"`
	Data []graphmlKV  `xml:"data"`
}

type graphmlEdge struct {
	Source     string      `xml:"source,attr"`
	Target     string      `xml:"target,attr"`
	Data       []graphmlKV `xml:"data"`
}

type graphmlKV struct {
	Key  string `xml:"key,attr"`
	Text string `xml:",chardata"`
}

func (n graphmlNode) data(key string) (string, bool) {
	for _, d := range n.Data {
		if d.Key == key {
			return strings.TrimSpace(d.Text), true
		}
	}
	return "", false
}

func (e graphmlEdge) data(key string) (string, bool) {
	for _, d := range e.Data {
		if d.Key == key {
			return strings.TrimSpace(d.Text), true
		}
	}
	return "", false
}

// decodeGraphML unmarshals the legacy dialect and translates it into the
// rich-dialect DOM. Every node becomes a leaf_process at the root composite
// (the legacy dialect has no nested composite_process notion); ports are
// synthesized from edge endpoints since the legacy dialect does not declare
// them explicitly.
func decodeGraphML(data []byte) (*xmlProcessNetwork, error) {
	var doc graphmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.Parse, err, "malformed GraphML")
	}
	if doc.Graph.ID == "" {
		return nil, errs.New(errs.Parse, "graphml/graph missing required attribute \"id\"")
	}

	pn := &xmlProcessNetwork{Name: doc.Graph.ID}

	portCounters := map[string]struct{ in, out int }{}
	nextPort := func(nodeID string, out bool) string {
		c := portCounters[nodeID]
		var name string
		if out {
			c.out++
			name = "out" + strconv.Itoa(c.out)
		} else {
			c.in++
			name = "in" + strconv.Itoa(c.in)
		}
		portCounters[nodeID] = c
		return name
	}

	for _, node := range doc.Graph.Nodes {
		leafType, ok := node.data("leaf_type")
		if !ok {
			return nil, errs.New(errs.Parse, "graphml node %q missing data key \"leaf_type\"", node.ID)
		}
		leaf := xmlLeaf{
			Name: node.ID,
			Constructor: xmlConstructor{
				Name: leafType,
				MoC:  "sy",
			},
		}
		if fn, ok := node.data("procfun_arg"); ok {
			leaf.Constructor.Arguments = append(leaf.Constructor.Arguments, xmlArgument{Value: fn})
		}
		if initVal, ok := node.data("initial_value"); ok {
			leaf.Constructor.Arguments = append(leaf.Constructor.Arguments, xmlArgument{Name: "init_val", Value: initVal})
		}
		pn.Leaves = append(pn.Leaves, leaf)
	}

	typeOf := func(e graphmlEdge) string {
		if sz, ok := e.data("array_size"); ok && sz != "" {
			return "int32_t[" + sz + "]"
		}
		return "int32_t"
	}

	leafByID := map[string]*xmlLeaf{}
	for i := range pn.Leaves {
		leafByID[pn.Leaves[i].Name] = &pn.Leaves[i]
	}

	for _, edge := range doc.Graph.Edges {
		srcLeaf, ok := leafByID[edge.Source]
		if !ok {
			return nil, errs.New(errs.Parse, "graphml edge references unknown source node %q", edge.Source)
		}
		dstLeaf, ok := leafByID[edge.Target]
		if !ok {
			return nil, errs.New(errs.Parse, "graphml edge references unknown target node %q", edge.Target)
		}
		t := typeOf(edge)
		srcPort := nextPort(edge.Source, true)
		dstPort := nextPort(edge.Target, false)
		srcLeaf.Ports = append(srcLeaf.Ports, xmlPort{Name: srcPort, Direction: "out", Type: t})
		dstLeaf.Ports = append(dstLeaf.Ports, xmlPort{Name: dstPort, Direction: "in", Type: t})
		pn.Signals = append(pn.Signals, xmlSignal{
			Source: edge.Source, SourcePort: srcPort,
			Target: edge.Target, TargetPort: dstPort,
		})
	}

	return pn, nil
}

// looksLikeGraphML sniffs the raw document for the legacy dialect's root
// element without requiring a full parse, so Frontend.Parse can dispatch to
// the right decoder.
func looksLikeGraphML(data []byte) bool {
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	return strings.Contains(string(head), "<graphml")
}
