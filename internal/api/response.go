package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/indoor-nav/internal/building"
	"github.com/annel0/indoor-nav/internal/navigation"
	"github.com/annel0/indoor-nav/internal/pathfinding"
)

// Response единый формат ответа API
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
}

func respond(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
		Data:      data,
	})
}

// fail пишет ответ об ошибке со статусом, выбранным по типу ошибки
func fail(c *gin.Context, message string, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(code, Response{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
		Error:     err.Error(),
	})
}

// statusFor сопоставляет ошибки ядра HTTP-статусам
func statusFor(err error) int {
	switch {
	case errors.Is(err, navigation.ErrBadRequest),
		errors.Is(err, pathfinding.ErrInvalidEndpoint),
		errors.Is(err, building.ErrMalformedLink):
		return http.StatusBadRequest
	case errors.Is(err, navigation.ErrMapNotFound),
		errors.Is(err, pathfinding.ErrUnknownRoom),
		errors.Is(err, pathfinding.ErrUnknownFloor),
		errors.Is(err, pathfinding.ErrNoPathFound):
		return http.StatusNotFound
	case errors.Is(err, pathfinding.ErrNoEntrance),
		errors.Is(err, building.ErrMalformedSnapshot):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor короткое сообщение для клиента
func messageFor(err error, fallback string) string {
	switch {
	case errors.Is(err, navigation.ErrMapNotFound):
		return "Map does not exist"
	case errors.Is(err, pathfinding.ErrUnknownRoom):
		return "Room does not exist"
	case errors.Is(err, pathfinding.ErrInvalidEndpoint):
		return "Start or end point is not walkable"
	case errors.Is(err, pathfinding.ErrNoPathFound):
		return "Cannot find path"
	case errors.Is(err, pathfinding.ErrNoEntrance):
		return "Cannot find valid starting entrance"
	default:
		return fallback
	}
}
