package gridastar

// queueItem is one frontier entry. A coordinate may have several entries;
// only the one with the lowest GScore is live, the others are skipped when popped.
type queueItem struct {
	Node     Coord
	GScore   float64
	FCost    float64
	Sequence uint64
}

// priorityQueue orders entries by FCost, then by insertion order.
type priorityQueue []*queueItem

func (queue priorityQueue) Len() int { return len(queue) }
func (queue priorityQueue) Less(i, j int) bool {
	if queue[i].FCost != queue[j].FCost {
		return queue[i].FCost < queue[j].FCost
	}
	return queue[i].Sequence < queue[j].Sequence
}
func (queue priorityQueue) Swap(i, j int) { queue[i], queue[j] = queue[j], queue[i] }

func (queue *priorityQueue) Push(x any) {
	*queue = append(*queue, x.(*queueItem))
}

func (queue *priorityQueue) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	*queue = oldQueue[:n-1]
	return item
}
