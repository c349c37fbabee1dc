package graph

import (
	"github.com/vanshika/soltrace/internal/domain"
)

type searchItem struct {
	node string
	path domain.Path
}

// FindPaths runs a breadth-first search from start and returns every path
// the traversal completes to end within maxDepth nodes. An address is marked
// visited the moment it is enqueued, so at most one path ever reaches a
// given address; when end is reachable the result is the single
// breadth-first route to it, not an enumeration of all simple paths. A
// branch is dropped once its node count exceeds maxDepth, and the depth
// check precedes the end match, so over-long routes to end are not emitted.
// Neighbor order follows map iteration, so which of several equally short
// routes is found may vary between runs. The search never fails; an
// unreachable or absent end yields a nil slice.
func FindPaths(g Graph, start, end string, maxDepth int) []domain.Path {
	queue := []searchItem{{node: start, path: domain.Path{start}}}
	visited := make(map[string]struct{})
	var paths []domain.Path

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if len(item.path) > maxDepth {
			continue
		}

		if item.node == end {
			paths = append(paths, item.path)
			continue
		}

		for next := range g[item.node] {
			if _, seen := visited[next]; seen {
				continue
			}
			path := make(domain.Path, len(item.path), len(item.path)+1)
			copy(path, item.path)
			path = append(path, next)
			queue = append(queue, searchItem{node: next, path: path})
			visited[next] = struct{}{}
		}
	}

	return paths
}
