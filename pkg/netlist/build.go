package netlist

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/nlcircuit/core/pkg/model"
	"github.com/nlcircuit/core/pkg/pin"
)

// NodeIndex maps netlist node names to the pins the Build step resolved
// them to, so a caller can drive inputs and read dynamic outputs by name.
type NodeIndex struct {
	pins   map[string]pin.Pin
	counts nodeCounts
}

// Pin returns the resolved Pin for a node name.
func (n *NodeIndex) Pin(name string) (pin.Pin, bool) {
	p, ok := n.pins[name]
	return p, ok
}

// DynamicNames returns the netlist node name for each dynamic pin index,
// for callers that want to label solver output by name.
func (n *NodeIndex) DynamicNames() []string {
	names := make([]string, n.counts[1])
	for name, p := range n.pins {
		if p.Kind == pin.Dynamic {
			names[p.Index] = name
		}
	}
	return names
}

// isGround reports whether a node name is the implicit ground reference.
func isGround(name string) bool {
	return name == "0" || strings.EqualFold(name, "gnd")
}

// resolveNodes assigns every node name referenced in the netlist to a pin
// kind and index: "0"/"gnd" is always static pin 0; a node that is a
// DC-valued V element's first terminal, or that was declared with a
// ".static" card, is an additional static pin; a node that is a non-DC V
// element's terminal (anything tagged other than a bare value or "DC",
// e.g. "AC") is an input pin; everything else is a dynamic unknown. This
// DC/non-DC split mirrors create_voltage() in the prototype this engine
// was distilled from, rather than inferring input-pin-hood from the node
// name itself.
//
// A first pass determines which names are forced static or forced input
// (so a node referenced as both a V terminal and a resistor leg is
// resolved consistently regardless of line order); a second pass allocates
// indices within each kind in first-appearance order.
func resolveNodes(nl *Netlist) *NodeIndex {
	idx := &NodeIndex{pins: make(map[string]pin.Pin)}
	forcedStatic := make(map[string]bool)
	forcedInput := make(map[string]bool)

	for name := range nl.staticDecl {
		if !isGround(name) {
			forcedStatic[name] = true
		}
	}
	for _, el := range nl.elements {
		if el.kind != 'V' {
			continue
		}
		if el.inputOnly {
			for _, n := range el.nodes {
				if !isGround(n) {
					forcedInput[n] = true
				}
			}
			continue
		}
		if len(el.nodes) > 0 && !isGround(el.nodes[0]) {
			forcedStatic[el.nodes[0]] = true
		}
	}

	nextStatic, nextDynamic, nextInput := 0, 0, 0
	idx.pins["0"] = pin.S(nextStatic)
	idx.pins["gnd"] = pin.S(nextStatic)
	nextStatic++

	visit := func(name string) {
		if isGround(name) {
			return
		}
		if _, ok := idx.pins[name]; ok {
			return
		}
		switch {
		case forcedStatic[name]:
			idx.pins[name] = pin.S(nextStatic)
			nextStatic++
		case forcedInput[name]:
			idx.pins[name] = pin.I(nextInput)
			nextInput++
		default:
			idx.pins[name] = pin.D(nextDynamic)
			nextDynamic++
		}
	}

	for _, el := range nl.elements {
		for _, n := range el.nodes {
			visit(n)
		}
	}

	idx.counts = nodeCounts{nextStatic, nextDynamic, nextInput}
	return idx
}

// counts holds the final pin-vector sizes once resolveNodes has visited
// every element; Build reads it to size the Model.
type nodeCounts = [3]int

// Build constructs a model.Model from the parsed netlist: resolving node
// names to pins, instantiating a component.Component per element, wiring
// it in, and fixing the sample period.
func Build(nl *Netlist, dt float64) (*model.Model, *NodeIndex, error) {
	idx := resolveNodes(nl)
	nStatic, nDynamic, nInput := idx.counts[0], idx.counts[1], idx.counts[2]

	m := model.New(nDynamic, nStatic, nInput)
	if err := m.SetTimeStep(dt); err != nil {
		return nil, nil, err
	}

	for node, v := range nl.staticDecl {
		p, ok := idx.pins[node]
		if !ok || p.Kind != pin.Static {
			continue
		}
		m.Static()[p.Index] = v
	}

	for _, el := range nl.elements {
		c, err := componentFor(nl, el)
		if err != nil {
			return nil, nil, err
		}
		if c == nil {
			// A non-DC V element: its nodes are already resolved to input
			// pins above, and it stamps no component of its own.
			continue
		}
		names := el.nodes
		if el.kind == 'V' {
			// A DC V element fixes only its first node as a static rail.
			names = el.nodes[:1]
		}
		pins := make([]pin.Pin, len(names))
		for i, name := range names {
			p, ok := idx.pins[name]
			if !ok {
				return nil, nil, errors.Errorf("netlist: %s: unresolved node %q", el.designator, name)
			}
			pins[i] = p
		}
		if err := m.AddComponent(c, pins); err != nil {
			return nil, nil, errors.Wrapf(err, "netlist: adding %s", el.designator)
		}
	}

	return m, idx, nil
}
