// Calendar export HTTP handler.
//
//   - GET /calendar.ics  (iCalendar document covering a range of days)
//
// The endpoint serves text/calendar with an attachment disposition so it
// works both as a subscription URL and as a one-off download.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gfarooqi/prayersync-sub001/internal/http/middleware"
	"github.com/gfarooqi/prayersync-sub001/internal/services"
)

// GetCalendar handles GET /calendar.ics.
//
// Query parameters:
//   - lat, lon: coordinate (required, decimal degrees)
//   - method:   calculation method id (optional)
//   - from:     first civil date YYYY-MM-DD in the coordinate's own zone
//     (optional, defaults to today there)
//   - days:     number of days to export (optional, default 7, capped)
//
// Days that no cache tier and no fetch could satisfy are filled with the
// static fallback set; such exports carry X-Fallback-Times: true.
func (h *Handlers) GetCalendar(c *gin.Context) {
	coord, valid := parseCoordinate(c)
	if !valid {
		return
	}
	method, valid := parseMethod(c)
	if !valid {
		return
	}

	days := 7
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}
	if days > h.maxDays {
		days = h.maxDays
	}

	ctx := c.Request.Context()
	var (
		out services.Export
		err error
	)
	if raw := c.Query("from"); raw != "" {
		start, perr := parseCivilDate(raw)
		if perr != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "from must be YYYY-MM-DD")
			return
		}
		out, err = h.cal.BuildCalendarRange(ctx, coord, method, start, days)
	} else {
		out, err = h.cal.BuildCalendar(ctx, coord, method, h.now(), days)
	}
	if err != nil {
		failFromService(c, err)
		return
	}

	if out.Degraded {
		lg := middleware.LoggerFrom(c)
		lg.Warn().Int("events", out.Events).Msg("calendar export degraded to fallback times")
		c.Header("X-Fallback-Times", "true")
	}
	c.Header("Content-Disposition", `attachment; filename="prayer-times.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(out.ICS))
}
