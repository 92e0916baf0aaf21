package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgmkit/xdsl2agrum/internal/model"
	"github.com/pgmkit/xdsl2agrum/internal/testutil"
)

func demoNetwork() *model.Network {
	net := model.NewNetwork("demo")
	net.Add(&model.Node{
		ID: "A", Kind: model.Chance,
		States: []string{"true", "false"},
		Table:  []float64{0.6, 0.4},
	})
	net.Add(&model.Node{
		ID: "B", Kind: model.Chance,
		States:  []string{"true", "false"},
		Parents: []string{"A"},
		Table:   []float64{0.9, 0.1, 0.2, 0.8},
	})
	return net
}

func TestEmit_Script(t *testing.T) {
	ctx := testutil.Context(t)

	sink := NewScriptSink()
	require.NoError(t, Emit(ctx, demoNetwork(), []string{"A", "B"}, sink))

	want := `# Influence diagram 'demo' reconstructed from its XDSL source.
import pyAgrum as gum

diag = gum.InfluenceDiagram()

# Node A
A = diag.addChanceNode(gum.LabelizedVariable('A', 'A', ['true', 'false']))
diag.cpt(A).fillWith([0.6, 0.4])

# Node B
B = diag.addChanceNode(gum.LabelizedVariable('B', 'B', ['true', 'false']))
diag.addArc(A, B)
diag.cpt(B).fillWith([0.9, 0.2, 0.1, 0.8])
`
	assert.Equal(t, want, sink.String())
}

func TestEmit_DecisionAndUtility(t *testing.T) {
	ctx := testutil.Context(t)

	net := model.NewNetwork("policy")
	net.Add(&model.Node{ID: "D", Kind: model.Decision, States: []string{"act", "wait"}})
	net.Add(&model.Node{
		ID: "U", Kind: model.Utility,
		Parents: []string{"D"},
		Table:   []float64{10, -5},
		Weight:  2,
	})

	sink := NewScriptSink()
	require.NoError(t, Emit(ctx, net, []string{"D", "U"}, sink))
	script := sink.String()

	assert.Contains(t, script, "D = diag.addDecisionNode(gum.LabelizedVariable('D', 'D', ['act', 'wait']))")
	assert.Contains(t, script, "U = diag.addUtilityNode(gum.LabelizedVariable('U', 'U', 1))")
	assert.Contains(t, script, "diag.addArc(D, U)")
	assert.Contains(t, script, "diag.utility(U).fillWith([20, -10])", "weight must scale the emitted values")
	assert.NotContains(t, script, "diag.cpt(D)", "decision nodes carry no table")
}

func TestEmit_ConstructionPrecedesReference(t *testing.T) {
	ctx := testutil.Context(t)

	net := model.NewNetwork("demo")
	net.Add(&model.Node{ID: "C", Kind: model.Chance, States: []string{"y", "n"},
		Parents: []string{"A", "B"},
		Table:   []float64{0.1, 0.9, 0.2, 0.8, 0.3, 0.7, 0.4, 0.6}})
	net.Add(&model.Node{ID: "A", Kind: model.Chance, States: []string{"y", "n"}, Table: []float64{0.5, 0.5}})
	net.Add(&model.Node{ID: "B", Kind: model.Chance, States: []string{"y", "n"}, Table: []float64{0.5, 0.5}})

	sink := NewScriptSink()
	require.NoError(t, Emit(ctx, net, []string{"A", "B", "C"}, sink))
	script := sink.String()

	posA := strings.Index(script, "# Node A")
	posB := strings.Index(script, "# Node B")
	posC := strings.Index(script, "# Node C")
	arcAC := strings.Index(script, "diag.addArc(A, C)")
	arcBC := strings.Index(script, "diag.addArc(B, C)")

	require.NotEqual(t, -1, arcAC)
	require.NotEqual(t, -1, arcBC)
	assert.Less(t, posA, posC)
	assert.Less(t, posB, posC)
	assert.Less(t, posC, arcAC, "arcs belong to the child's block")
	assert.Less(t, arcAC, arcBC, "arcs keep the declared parent order")
}

func TestEmit_DuplicateParentEmitsOneArc(t *testing.T) {
	ctx := testutil.Context(t)

	net := model.NewNetwork("demo")
	net.Add(&model.Node{ID: "A", Kind: model.Chance, States: []string{"y", "n"}, Table: []float64{0.5, 0.5}})
	net.Add(&model.Node{ID: "B", Kind: model.Chance, States: []string{"y", "n"},
		Parents: []string{"A", "A"},
		Table:   []float64{0.9, 0.1, 0.2, 0.8}})

	sink := NewScriptSink()
	require.NoError(t, Emit(ctx, net, []string{"A", "B"}, sink))

	assert.Equal(t, 1, strings.Count(sink.String(), "diag.addArc(A, B)"))
}

func TestEmit_Diagram(t *testing.T) {
	ctx := testutil.Context(t)

	net := demoNetwork()
	net.Add(&model.Node{
		ID: "U", Kind: model.Utility,
		Parents: []string{"B"},
		Table:   []float64{1, -1},
		Weight:  1,
	})

	sink := NewDiagramSink()
	require.NoError(t, Emit(ctx, net, []string{"A", "B", "U"}, sink))
	d := sink.Diagram()

	require.NotNil(t, d)
	assert.Equal(t, "demo", d.Name)
	require.Len(t, d.Nodes, 3)
	assert.Equal(t, []model.Arc{
		{Parent: "A", Child: "B"},
		{Parent: "B", Child: "U"},
	}, d.Arcs)

	a, ok := d.Node("A")
	require.True(t, ok)
	assert.Equal(t, model.Chance, a.Kind)
	assert.Equal(t, []string{"true", "false"}, a.States)
	assert.Equal(t, []float64{0.6, 0.4}, a.Values)

	b, ok := d.Node("B")
	require.True(t, ok)
	assert.Equal(t, []float64{0.9, 0.2, 0.1, 0.8}, b.Values, "diagram tables are reindexed like the script's")

	u, ok := d.Node("U")
	require.True(t, ok)
	assert.Equal(t, model.Utility, u.Kind)
	assert.Empty(t, u.States)
	assert.Equal(t, []float64{1, -1}, u.Values)

	_, ok = d.Node("missing")
	assert.False(t, ok)
}

func TestEmit_InvariantViolations(t *testing.T) {
	ctx := testutil.Context(t)

	t.Run("order shorter than network", func(t *testing.T) {
		err := Emit(ctx, demoNetwork(), []string{"A"}, NewScriptSink())
		assert.ErrorContains(t, err, "emission order covers 1 of 2 nodes")
	})

	t.Run("order names unknown node", func(t *testing.T) {
		err := Emit(ctx, demoNetwork(), []string{"A", "X"}, NewScriptSink())
		assert.ErrorContains(t, err, `unknown node "X"`)
	})
}

func TestPythonLiterals(t *testing.T) {
	t.Run("strings escape quotes and backslashes", func(t *testing.T) {
		assert.Equal(t, `'don\'t'`, pyStr("don't"))
		assert.Equal(t, `'a\\b'`, pyStr(`a\b`))
	})

	t.Run("state lists", func(t *testing.T) {
		assert.Equal(t, `['yes', 'no']`, pyList([]string{"yes", "no"}))
		assert.Equal(t, `[]`, pyList(nil))
	})

	t.Run("float lists use shortest round-trip form", func(t *testing.T) {
		assert.Equal(t, `[0.5, 1, -2.25]`, pyFloats([]float64{0.5, 1, -2.25}))
		assert.Equal(t, `[1e-09]`, pyFloats([]float64{1e-9}))
	})
}
