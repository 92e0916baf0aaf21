package emit

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ScriptSink renders the construction sequence as a standalone Python
// script for the pyAgrum library. Every line derives from network content
// alone, so identical input yields byte-identical output.
//
// Node ids in the interchange format are C-style identifiers, so they
// double as the script's Python variable names.
type ScriptSink struct {
	buf bytes.Buffer
}

// NewScriptSink returns an empty script sink.
func NewScriptSink() *ScriptSink {
	return &ScriptSink{}
}

func (s *ScriptSink) Begin(networkID string) error {
	if networkID != "" {
		fmt.Fprintf(&s.buf, "# Influence diagram '%s' reconstructed from its XDSL source.\n", networkID)
	} else {
		s.buf.WriteString("# Influence diagram reconstructed from its XDSL source.\n")
	}
	s.buf.WriteString("import pyAgrum as gum\n")
	s.buf.WriteString("\n")
	s.buf.WriteString("diag = gum.InfluenceDiagram()\n")
	return nil
}

func (s *ScriptSink) AddChance(id string, states []string) error {
	fmt.Fprintf(&s.buf, "\n# Node %s\n%s = diag.addChanceNode(gum.LabelizedVariable(%s, %s, %s))\n",
		id, id, pyStr(id), pyStr(id), pyList(states))
	return nil
}

func (s *ScriptSink) AddDecision(id string, states []string) error {
	fmt.Fprintf(&s.buf, "\n# Node %s\n%s = diag.addDecisionNode(gum.LabelizedVariable(%s, %s, %s))\n",
		id, id, pyStr(id), pyStr(id), pyList(states))
	return nil
}

func (s *ScriptSink) AddUtility(id string) error {
	fmt.Fprintf(&s.buf, "\n# Node %s\n%s = diag.addUtilityNode(gum.LabelizedVariable(%s, %s, 1))\n",
		id, id, pyStr(id), pyStr(id))
	return nil
}

func (s *ScriptSink) AddArc(parentID, childID string) error {
	fmt.Fprintf(&s.buf, "diag.addArc(%s, %s)\n", parentID, childID)
	return nil
}

func (s *ScriptSink) AssignCPT(id string, values []float64) error {
	fmt.Fprintf(&s.buf, "diag.cpt(%s).fillWith(%s)\n", id, pyFloats(values))
	return nil
}

func (s *ScriptSink) AssignUtility(id string, values []float64) error {
	fmt.Fprintf(&s.buf, "diag.utility(%s).fillWith(%s)\n", id, pyFloats(values))
	return nil
}

func (s *ScriptSink) End() error {
	return nil
}

// String returns the script rendered so far.
func (s *ScriptSink) String() string {
	return s.buf.String()
}

// Bytes returns the rendered script without copying.
func (s *ScriptSink) Bytes() []byte {
	return s.buf.Bytes()
}

var pyEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// pyStr renders s as a single-quoted Python string literal.
func pyStr(s string) string {
	return "'" + pyEscaper.Replace(s) + "'"
}

// pyList renders labels as a Python list of string literals.
func pyList(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = pyStr(l)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// pyFloats renders values as a Python list of numbers. The shortest
// round-trip representation keeps output identical across runs and
// platforms.
func pyFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
