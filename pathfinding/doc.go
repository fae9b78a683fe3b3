// Package pathfinding finds shortest paths on a 2D traversability grid with a
// time-sliced A* that can run inside a real-time loop.
//
// A Grid is sampled once from a world rectangle and an ObstacleQuery. A
// RegionGraph optionally partitions it into authored rectangular regions
// with static adjacency. A Finder then drives one search at a time:
//
//   - Start validates the endpoints and runs the first slice.
//   - Tick resumes the search for at most one slice per call.
//   - Reset returns every touched node and region to the unvisited state.
//
// ModeBasic runs 8-connected A* (orthogonal cost 10, diagonal 14, octile
// heuristic). ModeRegion first routes over the region graph and then solves
// node-level segments along that corridor.
//
// Search costs live in a per-Finder arena, so a Grid and its RegionGraph are
// read-only after construction and can be shared by concurrent Finders.
package pathfinding
