package internal

import "slices"

// ReconstructPath walks parent links back from current until it reaches a node
// without a parent, and returns the nodes in root-to-current order.
// The links must form a tree; a cycle would never terminate.
func ReconstructPath[NodeType comparable](cameFrom map[NodeType]NodeType, current NodeType) []NodeType {
	path := []NodeType{current}
	for {
		previousNode, exists := cameFrom[current]
		if !exists {
			break
		}
		path = append(path, previousNode)
		current = previousNode
	}
	slices.Reverse(path)
	return path
}
