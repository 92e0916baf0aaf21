// Package dag holds the generic graph machinery of the converter: cycle
// detection over declared arcs and the deterministic topological order the
// emitter walks. It deals in bare node ids; network semantics stay in the
// model package.
package dag
