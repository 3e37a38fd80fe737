// Package gridastar provides an incremental A* search over 2D occupancy grids.
//
// It exposes two main entry points:
//
//   - Engine: advance the search one node expansion at a time to drive UIs or debugging tools.
//   - Search: run an engine to completion and get a Result (SearchAll does it for many grids).
//
// Moves are king moves (4 orthogonal + 4 diagonal) and every move costs 1.
// The heuristic is the Euclidean distance to the goal. Because a diagonal
// move costs 1 while the heuristic measures it as ~1.414, the heuristic can
// overestimate: the search is complete but paths are only guaranteed to be
// shortest in step count, not in Euclidean length.
package gridastar
