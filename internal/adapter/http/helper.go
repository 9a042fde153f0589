package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vasujain275/shelfwise/internal/domain/book"
	"github.com/vasujain275/shelfwise/internal/domain/loan"
	"github.com/vasujain275/shelfwise/internal/domain/user"
)

// ---- helpers ----

// errorStatus maps the three domain error kinds onto HTTP: missing rows →
// 404, business refusals → 400, state conflicts → 409.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, loan.ErrNotFound),
		errors.Is(err, book.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, loan.ErrReferenceOnly),
		errors.Is(err, loan.ErrDueDateRegression):
		return http.StatusBadRequest
	case errors.Is(err, loan.ErrNoCopiesAvailable),
		errors.Is(err, loan.ErrBookNotAvailable),
		errors.Is(err, loan.ErrNotActive),
		errors.Is(err, loan.ErrTxConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(c echo.Context, err error) error {
	st := errorStatus(err)
	if st == http.StatusInternalServerError {
		return c.JSON(st, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(st, ErrorResponse{Error: err.Error()})
}

func pageParams(c echo.Context) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	size, _ = strconv.Atoi(c.QueryParam("size"))
	return page, size
}

// dates arrive as whole days; time-of-day is not part of the loan model
func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func nowUTC() time.Time { return time.Now().UTC() }
