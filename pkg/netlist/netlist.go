// Package netlist implements the SPICE-like text front end described as an
// external collaborator of the modeling engine: a small, line-oriented
// format that builds a model.Model instead of running its own analysis.
package netlist

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nlcircuit/core/pkg/component"
	"github.com/nlcircuit/core/pkg/model"
	"github.com/nlcircuit/core/pkg/pin"
)

// unitMap is the suffix-scaling table. meg is fixed to the SPICE-standard
// 1e6 here; the prototype this engine was distilled from returned 1e3 for
// "meg", a bug documented in DESIGN.md.
var unitMap = map[string]float64{
	"t":   1e12,
	"g":   1e9,
	"meg": 1e6,
	"k":   1e3,
	"mil": 2.54e-6,
	"m":   1e-3,
	"u":   1e-6,
	"n":   1e-9,
	"p":   1e-12,
	"f":   1e-15,
}

var valueRe = regexp.MustCompile(`(?i)^([-+]?\d*\.?\d+(?:e[-+]?\d+)?)(meg|mil|[tgkmunpf])?$`)

// ParseValue parses a SPICE-style numeric literal with an optional unit
// suffix, e.g. "4.7k", "100n", "2.2meg".
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	m := valueRe.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.Errorf("netlist: invalid numeric literal %q", s)
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, errors.Wrapf(err, "netlist: parsing %q", s)
	}
	if m[2] != "" {
		if mult, ok := unitMap[strings.ToLower(m[2])]; ok {
			num *= mult
		}
	}
	return num, nil
}

// element is one parsed netlist line: a reference designator, its node
// names, a scalar value, and any named parameters (model reference,
// gain, emission coefficient, ...).
type element struct {
	designator string
	kind       byte // first letter of the designator, uppercased
	nodes      []string
	value      float64
	params     map[string]string
	// inputOnly marks a V element that names a non-DC source (anything
	// other than a bare value or an explicit "DC" tag): its nodes are
	// wired as input pins and it contributes no component, since the
	// actual waveform is supplied externally through the input vector
	// passed to Model.Step.
	inputOnly bool
}

// modelCard is a ".model" line: a named bundle of device parameters
// referenced by Q elements.
type modelCard struct {
	name     string
	kind     string // NPN or PNP
	params   map[string]float64
}

// Netlist is the parsed, not-yet-built intermediate form. Build turns it
// into a model.Model.
type Netlist struct {
	Title      string
	elements   []element
	models     map[string]modelCard
	staticDecl map[string]float64 // node name -> initial static value, from .static cards
}

// Parse reads a netlist in the format documented in SPEC_FULL.md §6:
// reference-designator element lines, "*" full-line comments, and
// ".model"/".static" directive cards.
func Parse(text string) (*Netlist, error) {
	nl := &Netlist{models: make(map[string]modelCard), staticDecl: make(map[string]float64)}

	scanner := bufio.NewScanner(strings.NewReader(text))
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			if strings.HasPrefix(line, "*") {
				nl.Title = strings.TrimSpace(strings.TrimPrefix(line, "*"))
				continue
			}
		}
		if line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		if strings.HasPrefix(line, ".") {
			if err := nl.parseDirective(line); err != nil {
				return nil, err
			}
			continue
		}
		el, err := parseElementLine(line)
		if err != nil {
			return nil, err
		}
		nl.elements = append(nl.elements, *el)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "netlist: reading input")
	}
	return nl, nil
}

func (nl *Netlist) parseDirective(line string) error {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ".model":
		return nl.parseModelCard(fields)
	case ".static":
		if len(fields) < 2 {
			return errors.Errorf("netlist: .static requires a node name")
		}
		v := 0.0
		if len(fields) > 2 {
			var err error
			if v, err = ParseValue(fields[2]); err != nil {
				return err
			}
		}
		nl.staticDecl[fields[1]] = v
		return nil
	default:
		return errors.Errorf("netlist: unsupported directive %q", fields[0])
	}
}

// parseModelCard handles ".model name NPN(is=1e-14 bf=100 br=1 vt=26m ne=1)".
func (nl *Netlist) parseModelCard(fields []string) error {
	if len(fields) < 3 {
		return errors.Errorf("netlist: .model requires a name and a type")
	}
	name := fields[1]
	rest := strings.Join(fields[2:], " ")
	open := strings.Index(rest, "(")
	close_ := strings.LastIndex(rest, ")")
	if open < 0 || close_ < 0 || close_ < open {
		return errors.Errorf("netlist: .model %s: malformed parameter list", name)
	}
	kind := strings.ToUpper(strings.TrimSpace(rest[:open]))
	if kind != "NPN" && kind != "PNP" {
		return errors.Errorf("netlist: .model %s: unsupported type %q", name, kind)
	}
	params := make(map[string]float64)
	for _, tok := range strings.Fields(rest[open+1 : close_]) {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 {
			continue
		}
		v, err := ParseValue(kv[1])
		if err != nil {
			return errors.Wrapf(err, "netlist: .model %s param %s", name, kv[0])
		}
		params[strings.ToLower(kv[0])] = v
	}
	nl.models[name] = modelCard{name: name, kind: kind, params: params}
	return nil
}

var parenRe = regexp.MustCompile(`\(([^)]*)\)`)

func parseElementLine(line string) (*element, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, errors.Errorf("netlist: malformed element line %q", line)
	}
	el := &element{
		designator: fields[0],
		kind:       byte(strings.ToUpper(fields[0])[0]),
		params:     make(map[string]string),
	}

	switch el.kind {
	case 'Q': // Q<name> base collector emitter model
		if len(fields) < 5 {
			return nil, errors.Errorf("netlist: bjt %s: needs base, collector, emitter, model", el.designator)
		}
		el.nodes = fields[1:4]
		el.params["model"] = fields[4]

	case 'D': // D<name> anode cathode [model params in parens] | DA<name> anode cathode [...]
		if len(fields) < 3 {
			return nil, errors.Errorf("netlist: diode %s: needs anode and cathode", el.designator)
		}
		el.nodes = fields[1:3]
		if m := parenRe.FindStringSubmatch(line); m != nil {
			for _, tok := range strings.Fields(m[1]) {
				kv := strings.SplitN(tok, "=", 2)
				if len(kv) == 2 {
					el.params[strings.ToLower(kv[0])] = kv[1]
				}
			}
		}

	case 'E': // E<name> vin+ vin- vout+ vout- gain
		if len(fields) < 6 {
			return nil, errors.Errorf("netlist: voltage gain %s: needs 4 nodes and a gain", el.designator)
		}
		el.nodes = fields[1:5]
		v, err := ParseValue(fields[5])
		if err != nil {
			return nil, err
		}
		el.value = v

	case 'O': // O<name> vminus vplus vout
		if len(fields) < 4 {
			return nil, errors.Errorf("netlist: opamp %s: needs 3 nodes", el.designator)
		}
		el.nodes = fields[1:4]

	case 'V': // V<name> n0 n1 value | V<name> n0 n1 DC value | V<name> n0 n1 <tag> value
		if len(fields) < 4 {
			return nil, errors.Errorf("netlist: voltage source %s: needs 2 nodes and a value", el.designator)
		}
		el.nodes = fields[1:3]
		switch {
		case len(fields) == 4:
			v, err := ParseValue(fields[3])
			if err != nil {
				return nil, err
			}
			el.value = v
		case len(fields) == 5 && strings.EqualFold(fields[3], "DC"):
			v, err := ParseValue(fields[4])
			if err != nil {
				return nil, err
			}
			el.value = v
		case len(fields) == 5:
			// Any other tag (AC, SIN, ...) marks the source as input-driven
			// rather than a fixed rail, mirroring the prototype's
			// create_voltage() dispatch.
			el.inputOnly = true
		default:
			return nil, errors.Errorf("netlist: voltage source %s: malformed line %q", el.designator, line)
		}

	default: // R, C, L, I: two nodes and a value
		if len(fields) < 3 {
			return nil, errors.Errorf("netlist: %s: needs at least 2 nodes and a value", el.designator)
		}
		el.nodes = fields[1 : len(fields)-1]
		v, err := ParseValue(fields[len(fields)-1])
		if err != nil {
			return nil, err
		}
		el.value = v
	}

	return el, nil
}

// pinParam reads a float parameter from an element's params map, falling
// back to def when absent.
func pinParam(params map[string]string, key string, def float64) (float64, error) {
	raw, ok := params[key]
	if !ok {
		return def, nil
	}
	return ParseValue(raw)
}

// componentFor constructs the component.Component for a single element;
// Build then wires it to the element's resolved pins.
func componentFor(nl *Netlist, el element) (component.Component, error) {
	switch el.kind {
	case 'R':
		return component.NewResistor(el.designator, el.value), nil
	case 'C':
		return component.NewCapacitor(el.designator, el.value), nil
	case 'L':
		return component.NewCoil(el.designator, el.value), nil
	case 'I':
		return component.NewCurrentSource(el.designator, el.value), nil
	case 'V':
		if el.inputOnly {
			// Nodes already resolved to input pins by resolveNodes; the
			// waveform itself is driven externally, so no component is
			// stamped for this element.
			return nil, nil
		}
		return component.NewDCVoltage(el.designator, el.value), nil
	case 'O':
		return component.NewOpAmp(el.designator), nil
	case 'E':
		return component.NewVoltageGain(el.designator, el.value), nil
	case 'D':
		is, err := pinParam(el.params, "is", 1e-14)
		if err != nil {
			return nil, err
		}
		n, err := pinParam(el.params, "n", 1.24)
		if err != nil {
			return nil, err
		}
		vt, err := pinParam(el.params, "vt", 0)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(strings.ToUpper(el.designator), "DA") {
			return component.NewAntiparallelDiode(el.designator, is, n, vt), nil
		}
		return component.NewDiode(el.designator, is, n, vt), nil
	case 'Q':
		mc, ok := nl.models[el.params["model"]]
		if !ok {
			return nil, errors.Errorf("netlist: bjt %s: unknown model %q", el.designator, el.params["model"])
		}
		polarity := component.NPN
		if mc.kind == "PNP" {
			polarity = component.PNP
		}
		is := mc.params["is"]
		if is == 0 {
			is = 1e-14
		}
		bf := mc.params["bf"]
		if bf == 0 {
			bf = 100
		}
		br := mc.params["br"]
		if br == 0 {
			br = 1
		}
		return component.NewBJT(el.designator, polarity, is, bf, br, mc.params["vt"], mc.params["ne"]), nil
	default:
		return nil, errors.Errorf("netlist: unsupported element type %q", el.designator)
	}
}
