package pathfinding

import "errors"

var (
	// ErrInvalidEndpoint начальная или конечная точка вне сетки, на препятствии или на неизвестном этаже
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrNoPathFound путь не найден (недостижимо или исчерпан лимит раскрытий)
	ErrNoPathFound = errors.New("no path found")

	// ErrNoEntrance у здания или этажа не задан вход
	ErrNoEntrance = errors.New("no entrance defined")

	// ErrUnknownRoom комната с таким ID отсутствует
	ErrUnknownRoom = errors.New("unknown room")

	// ErrUnknownFloor этаж с таким номером отсутствует
	ErrUnknownFloor = errors.New("unknown floor")
)
