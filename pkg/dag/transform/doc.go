// Package transform derives layout structure from a [dag.Graph].
//
// [AssignRanks] layers the graph into rank levels using Kahn's algorithm and
// fails with a [*CycleError] on cyclic input. [FindCycle] extracts one
// concrete cycle for diagnostics.
//
// [dag.Graph]: github.com/matzehuels/flowgrid/pkg/dag.Graph
package transform
