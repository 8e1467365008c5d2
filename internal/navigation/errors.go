package navigation

import "errors"

var (
	// ErrMapNotFound карта с таким идентификатором не загружена в хранилище
	ErrMapNotFound = errors.New("map not found")

	// ErrBadRequest запрос не задает однозначно начало и конец маршрута
	ErrBadRequest = errors.New("bad route request")
)
