package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/indoor-nav/internal/navigation"
	"github.com/annel0/indoor-nav/internal/pathfinding"
)

// RoomRequest запрос маршрута до комнаты. Без start и from_room
// маршрут строится от входа здания.
type RoomRequest struct {
	RoomID    string                `json:"room_id" binding:"required"`
	Start     *pathfinding.Position `json:"start,omitempty"`
	FromRoom  string                `json:"from_room,omitempty"`
	Algorithm string                `json:"algorithm,omitempty"`
}

// handlePath маршрут по координатам или комнатам
func (rs *RestServer) handlePath(c *gin.Context) {
	var req navigation.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, "Invalid request body", fmt.Errorf("%w: %v", navigation.ErrBadRequest, err))
		return
	}
	rs.route(c, req)
}

// handleRoom маршрут до комнаты
func (rs *RestServer) handleRoom(c *gin.Context) {
	var body RoomRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, "Missing required field: room_id", fmt.Errorf("%w: %v", navigation.ErrBadRequest, err))
		return
	}

	req := navigation.RouteRequest{
		ToRoom:    body.RoomID,
		Start:     body.Start,
		FromRoom:  body.FromRoom,
		Algorithm: body.Algorithm,
	}
	if req.Start == nil && req.FromRoom == "" {
		req.FromEntrance = true
	}
	rs.route(c, req)
}

func (rs *RestServer) route(c *gin.Context, req navigation.RouteRequest) {
	res, err := rs.nav.Route(c.Request.Context(), c.Param("map"), req)
	if err != nil {
		fail(c, messageFor(err, "Path calculation failed"), err)
		return
	}
	respond(c, http.StatusOK, "Path calculation successful", res)
}

// handleConnectivity достижимость комнат этажа от его входа
func (rs *RestServer) handleConnectivity(c *gin.Context) {
	floor := 1
	if raw := c.Query("floor"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, "Invalid floor", fmt.Errorf("%w: floor %q", navigation.ErrBadRequest, raw))
			return
		}
		floor = n
	}

	report, err := rs.nav.Connectivity(c.Request.Context(), c.Param("map"), floor)
	if err != nil {
		fail(c, messageFor(err, "Connectivity check failed"), err)
		return
	}
	respond(c, http.StatusOK, "success", report)
}

// handleAudit достижимость всех комнат здания
func (rs *RestServer) handleAudit(c *gin.Context) {
	audit, err := rs.nav.Audit(c.Request.Context(), c.Param("map"))
	if err != nil {
		fail(c, messageFor(err, "Audit failed"), err)
		return
	}
	respond(c, http.StatusOK, "success", audit)
}

// handleListMaps список доступных карт
func (rs *RestServer) handleListMaps(c *gin.Context) {
	maps, err := rs.nav.Maps(c.Request.Context())
	if err != nil {
		fail(c, "Failed to list maps", err)
		return
	}
	respond(c, http.StatusOK, "success", gin.H{
		"maps":        maps,
		"total_count": len(maps),
	})
}

// handleLogs журнал навигации за день (?date=YYYY-MM-DD, по умолчанию сегодня)
func (rs *RestServer) handleLogs(c *gin.Context) {
	if rs.journal == nil {
		respond(c, http.StatusServiceUnavailable, "Navigation journal is disabled", nil)
		return
	}
	day, ok := parseDay(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	logs := rs.journal.Query(navigation.JournalQuery{Date: day, MapID: c.Query("map"), Limit: limit})
	respond(c, http.StatusOK, "success", gin.H{
		"date":        day.Format("2006-01-02"),
		"logs":        logs,
		"total_count": len(logs),
	})
}

// handleStats статистика навигации за день
func (rs *RestServer) handleStats(c *gin.Context) {
	if rs.journal == nil {
		respond(c, http.StatusServiceUnavailable, "Navigation journal is disabled", nil)
		return
	}
	day, ok := parseDay(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "success", rs.journal.Stats(day))
}

func parseDay(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().UTC(), true
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		fail(c, "Invalid date, expected YYYY-MM-DD", fmt.Errorf("%w: date %q", navigation.ErrBadRequest, raw))
		return time.Time{}, false
	}
	return day, true
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"time":    time.Now().Unix(),
		"process": rs.metrics.Collect(),
	})
}
