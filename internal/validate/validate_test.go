package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/pgmkit/xdsl2agrum/internal/errors"
	"github.com/pgmkit/xdsl2agrum/internal/model"
	"github.com/pgmkit/xdsl2agrum/internal/testutil"
)

func chanceNode(id string, parents []string, table []float64) *model.Node {
	return &model.Node{
		ID:      id,
		Kind:    model.Chance,
		States:  []string{"true", "false"},
		Parents: parents,
		Table:   table,
	}
}

func TestReport(t *testing.T) {
	t.Run("empty report", func(t *testing.T) {
		r := &Report{}
		assert.True(t, r.Empty())
		assert.NoError(t, r.Err())
		assert.Empty(t, r.Problems())
	})

	t.Run("nil errors are ignored", func(t *testing.T) {
		r := &Report{}
		r.Add(nil)
		assert.True(t, r.Empty())
	})

	t.Run("problems keep insertion order", func(t *testing.T) {
		r := &Report{}
		r.Add(cerrors.ErrDuplicateNodeID.GenWithStackByArgs("a"))
		r.Add(cerrors.ErrDanglingArc.GenWithStackByArgs("b", "ghost"))

		require.Len(t, r.Problems(), 2)
		assert.True(t, cerrors.ErrDuplicateNodeID.Equal(r.Problems()[0]))
		assert.True(t, cerrors.ErrDanglingArc.Equal(r.Problems()[1]))
		assert.Error(t, r.Err())
		assert.Contains(t, r.Error(), "duplicate node id")
		assert.Contains(t, r.Error(), "undeclared parent")
	})
}

func TestCheck_CleanNetwork(t *testing.T) {
	ctx := testutil.Context(t)

	net := model.NewNetwork("demo")
	net.Add(chanceNode("A", nil, []float64{0.5, 0.5}))
	net.Add(chanceNode("B", []string{"A"}, []float64{0.9, 0.1, 0.2, 0.8}))
	net.Add(&model.Node{ID: "D", Kind: model.Decision, States: []string{"yes", "no"}, Parents: []string{"A"}})
	net.Add(&model.Node{ID: "U", Kind: model.Utility, Parents: []string{"D"}, Table: []float64{10, -5}, Weight: 1})

	report := Check(ctx, net)
	assert.True(t, report.Empty(), "expected no problems, got: %v", report.Problems())
}

func TestCheck_CarriesExtraProblems(t *testing.T) {
	ctx := testutil.Context(t)

	net := model.NewNetwork("demo")
	net.Add(chanceNode("A", nil, []float64{0.5, 0.5}))

	upstream := cerrors.ErrEmptyStateSpace.GenWithStackByArgs("Z")
	report := Check(ctx, net, upstream)

	require.Len(t, report.Problems(), 1)
	assert.True(t, cerrors.ErrEmptyStateSpace.Equal(report.Problems()[0]))
}

func TestCheck_DuplicateNodeID(t *testing.T) {
	ctx := testutil.Context(t)

	net := model.NewNetwork("demo")
	net.Add(chanceNode("A", nil, []float64{0.5, 0.5}))
	net.Add(chanceNode("A", nil, []float64{0.3, 0.7}))

	report := Check(ctx, net)

	require.Len(t, report.Problems(), 1)
	err := report.Problems()[0]
	assert.True(t, cerrors.ErrDuplicateNodeID.Equal(err))
	assert.Contains(t, err.Error(), "'A'")
}

func TestCheck_DanglingArc(t *testing.T) {
	ctx := testutil.Context(t)

	// B names a parent that was never declared. The dangling arc is the
	// only problem: B's table size is undefined until the arc is fixed,
	// so no mismatch is piled on top.
	net := model.NewNetwork("demo")
	net.Add(chanceNode("B", []string{"ghost"}, []float64{0.9, 0.1}))

	report := Check(ctx, net)

	require.Len(t, report.Problems(), 1)
	err := report.Problems()[0]
	assert.True(t, cerrors.ErrDanglingArc.Equal(err))
	assert.Contains(t, err.Error(), "'B'")
	assert.Contains(t, err.Error(), "'ghost'")
}

func TestCheck_Cycles(t *testing.T) {
	t.Run("self-loop", func(t *testing.T) {
		ctx := testutil.Context(t)

		net := model.NewNetwork("demo")
		net.Add(chanceNode("A", []string{"A"}, []float64{0.5, 0.5, 0.5, 0.5}))

		report := Check(ctx, net)

		require.False(t, report.Empty())
		err := report.Problems()[0]
		assert.True(t, cerrors.ErrCyclicGraph.Equal(err))
		assert.Contains(t, err.Error(), "lists itself")
	})

	t.Run("two-node cycle", func(t *testing.T) {
		ctx := testutil.Context(t)

		net := model.NewNetwork("demo")
		net.Add(chanceNode("A", []string{"B"}, []float64{0.9, 0.1, 0.2, 0.8}))
		net.Add(chanceNode("B", []string{"A"}, []float64{0.9, 0.1, 0.2, 0.8}))

		report := Check(ctx, net)

		require.Len(t, report.Problems(), 1)
		assert.True(t, cerrors.ErrCyclicGraph.Equal(report.Problems()[0]))
	})

	t.Run("longer cycle", func(t *testing.T) {
		ctx := testutil.Context(t)

		net := model.NewNetwork("demo")
		net.Add(chanceNode("A", []string{"C"}, []float64{0.9, 0.1, 0.2, 0.8}))
		net.Add(chanceNode("B", []string{"A"}, []float64{0.9, 0.1, 0.2, 0.8}))
		net.Add(chanceNode("C", []string{"B"}, []float64{0.9, 0.1, 0.2, 0.8}))

		report := Check(ctx, net)

		require.False(t, report.Empty())
		assert.True(t, cerrors.ErrCyclicGraph.Equal(report.Problems()[0]))
	})

	t.Run("duplicate arcs collapse to one", func(t *testing.T) {
		ctx := testutil.Context(t)

		// A listed twice as parent of B: one effective arc, one table
		// axis, no cycle.
		net := model.NewNetwork("demo")
		net.Add(chanceNode("A", nil, []float64{0.5, 0.5}))
		net.Add(chanceNode("B", []string{"A", "A"}, []float64{0.9, 0.1, 0.2, 0.8}))

		report := Check(ctx, net)
		assert.True(t, report.Empty(), "expected no problems, got: %v", report.Problems())
	})
}

func TestCheck_TableSizes(t *testing.T) {
	t.Run("chance node with wrong value count", func(t *testing.T) {
		ctx := testutil.Context(t)

		net := model.NewNetwork("demo")
		net.Add(chanceNode("A", nil, []float64{0.5, 0.5}))
		net.Add(chanceNode("B", []string{"A"}, []float64{0.9, 0.1})) // needs 4

		report := Check(ctx, net)

		require.Len(t, report.Problems(), 1)
		err := report.Problems()[0]
		assert.True(t, cerrors.ErrTableSizeMismatch.Equal(err))
		assert.Contains(t, err.Error(), "'B'")
		assert.Contains(t, err.Error(), "holds 2 values, expected 4")
	})

	t.Run("chance node with no table at all", func(t *testing.T) {
		ctx := testutil.Context(t)

		net := model.NewNetwork("demo")
		net.Add(chanceNode("A", nil, nil))

		report := Check(ctx, net)

		require.Len(t, report.Problems(), 1)
		assert.True(t, cerrors.ErrTableSizeMismatch.Equal(report.Problems()[0]))
	})

	t.Run("decision nodes carry no table", func(t *testing.T) {
		ctx := testutil.Context(t)

		net := model.NewNetwork("demo")
		net.Add(&model.Node{ID: "D", Kind: model.Decision, States: []string{"yes", "no"}})

		report := Check(ctx, net)
		assert.True(t, report.Empty())
	})

	t.Run("utility expects one value per parent combination", func(t *testing.T) {
		ctx := testutil.Context(t)

		net := model.NewNetwork("demo")
		net.Add(chanceNode("A", nil, []float64{0.5, 0.5}))
		net.Add(&model.Node{ID: "U", Kind: model.Utility, Parents: []string{"A"}, Table: []float64{5, -5, 1}, Weight: 1})

		report := Check(ctx, net)

		require.Len(t, report.Problems(), 1)
		err := report.Problems()[0]
		assert.True(t, cerrors.ErrTableSizeMismatch.Equal(err))
		assert.Contains(t, err.Error(), "holds 3 values, expected 2")
	})

	t.Run("parentless utility expects a single value", func(t *testing.T) {
		ctx := testutil.Context(t)

		net := model.NewNetwork("demo")
		net.Add(&model.Node{ID: "U", Kind: model.Utility, Table: []float64{42}, Weight: 1})

		report := Check(ctx, net)
		assert.True(t, report.Empty())
	})
}

func TestCheck_AccumulatesAcrossRules(t *testing.T) {
	ctx := testutil.Context(t)

	// One pass, three independent defects: a duplicate id, a dangling
	// arc, and a bad table.
	net := model.NewNetwork("demo")
	net.Add(chanceNode("A", nil, []float64{0.5, 0.5}))
	net.Add(chanceNode("A", nil, []float64{0.5, 0.5}))
	net.Add(chanceNode("B", []string{"ghost"}, []float64{0.9, 0.1}))
	net.Add(chanceNode("C", nil, []float64{0.9}))

	report := Check(ctx, net)

	require.Len(t, report.Problems(), 3)
	assert.True(t, cerrors.ErrDuplicateNodeID.Equal(report.Problems()[0]))
	assert.True(t, cerrors.ErrDanglingArc.Equal(report.Problems()[1]))
	assert.True(t, cerrors.ErrTableSizeMismatch.Equal(report.Problems()[2]))
}
