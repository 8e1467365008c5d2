package narration

import "github.com/annel0/indoor-nav/internal/pathfinding"

// Heading направление движения по сетке. Север - уменьшение y.
type Heading int

const (
	North Heading = iota
	East
	South
	West
)

func (h Heading) String() string {
	switch h {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return "unknown"
}

// HeadingBetween направление шага между соседними клетками; false если клетки не соседние
func HeadingBetween(from, to pathfinding.Position) (Heading, bool) {
	if !from.IsPlanarNeighbor(to) {
		return North, false
	}
	switch {
	case to.Y < from.Y:
		return North, true
	case to.X > from.X:
		return East, true
	case to.Y > from.Y:
		return South, true
	default:
		return West, true
	}
}

// Turn поворот между двумя направлениями
type Turn int

const (
	TurnNone Turn = iota
	TurnRight
	TurnAround
	TurnLeft
)

// TurnBetween определен для любой пары направлений
func TurnBetween(from, to Heading) Turn {
	return Turn((int(to) - int(from) + 4) % 4)
}

func (t Turn) String() string {
	switch t {
	case TurnRight:
		return "right"
	case TurnLeft:
		return "left"
	case TurnAround:
		return "around"
	}
	return "none"
}

// Instruction текст поворота; пустая строка для TurnNone
func (t Turn) Instruction() string {
	switch t {
	case TurnRight:
		return "Turn right"
	case TurnLeft:
		return "Turn left"
	case TurnAround:
		return "Turn around"
	}
	return ""
}
