// Package reindex rearranges flat table values between axis orders.
//
// The document lays a chance node's table out with the node's own states
// as the innermost, fastest-cycling axis and the parent axes outermost in
// listed order. The target representation wants the own-state axis
// outermost (slowest) with the parent axes following in the same listed
// order. The permutation is computed over strides so every output slot is
// written exactly once.
package reindex

// CPT reorders a chance node's table from document order to target order.
// parentSizes holds the state count of each parent in listed order,
// ownSize the node's own state count. len(values) must equal the product
// of all sizes; the validator guarantees that before this runs.
func CPT(values []float64, parentSizes []int, ownSize int) []float64 {
	srcShape := make([]int, 0, len(parentSizes)+1)
	srcShape = append(srcShape, parentSizes...)
	srcShape = append(srcShape, ownSize)

	// Target axis j reads source axis perm[j]: the own axis moves to the
	// front, parents keep their relative order behind it.
	perm := make([]int, 0, len(srcShape))
	perm = append(perm, len(parentSizes))
	for i := range parentSizes {
		perm = append(perm, i)
	}

	return permute(values, srcShape, perm)
}

// Utility reorders a utility node's table and applies its multi-attribute
// weight. With no own-state axis both layouts enumerate the parent axes
// in listed order, so the positions pass through unchanged and only the
// weight is applied.
func Utility(values []float64, weight float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * weight
	}
	return out
}

// permute copies values laid out row-major over srcShape into a slice
// laid out row-major over the permuted shape. perm maps target axis
// positions to source axis positions and must be a permutation of
// srcShape's indices.
func permute(values []float64, srcShape []int, perm []int) []float64 {
	srcStride := make([]int, len(srcShape))
	stride := 1
	for i := len(srcShape) - 1; i >= 0; i-- {
		srcStride[i] = stride
		stride *= srcShape[i]
	}

	tgtShape := make([]int, len(perm))
	for j, axis := range perm {
		tgtShape[j] = srcShape[axis]
	}

	out := make([]float64, len(values))
	for flat := range out {
		rem := flat
		src := 0
		for j := len(tgtShape) - 1; j >= 0; j-- {
			digit := rem % tgtShape[j]
			rem /= tgtShape[j]
			src += digit * srcStride[perm[j]]
		}
		out[flat] = values[src]
	}
	return out
}
