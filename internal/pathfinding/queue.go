package pathfinding

import "container/heap"

// queueItem элемент очереди A*; node - индекс в арене поиска
type queueItem struct {
	node int
	pos  Position
	f    float64
	g    float64
}

// openSet минимальная очередь по f, затем g, этажу, x, y
type openSet []queueItem

func (q openSet) Len() int { return len(q) }

func (q openSet) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.g != b.g {
		return a.g < b.g
	}
	if a.pos.Floor != b.pos.Floor {
		return a.pos.Floor < b.pos.Floor
	}
	if a.pos.X != b.pos.X {
		return a.pos.X < b.pos.X
	}
	return a.pos.Y < b.pos.Y
}

func (q openSet) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *openSet) Push(x interface{}) {
	*q = append(*q, x.(queueItem))
}

func (q *openSet) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func (q *openSet) push(item queueItem) {
	heap.Push(q, item)
}

func (q *openSet) pop() queueItem {
	return heap.Pop(q).(queueItem)
}
