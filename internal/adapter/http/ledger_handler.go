package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vasujain275/shelfwise/internal/usecase/ledger"
	"github.com/vasujain275/shelfwise/internal/usecase/overdue"
)

type LedgerHandler struct {
	ledger  *ledger.Usecase
	overdue *overdue.Usecase
}

func NewLedgerHandler(lg *ledger.Usecase, od *overdue.Usecase) *LedgerHandler {
	return &LedgerHandler{ledger: lg, overdue: od}
}

// Register wires every ledger route onto e. Static segments (search,
// overdue, ...) are registered alongside /loans/:loan_id; echo routes
// statics first. mutating is applied to issue/return/renew only: the sweep
// is idempotent already and the import runs as a trusted job.
func (h *LedgerHandler) Register(e *echo.Echo, mutating ...echo.MiddlewareFunc) {
	e.POST("/loans", h.IssueLoan, mutating...)
	e.POST("/loans/import", h.ImportLoans)
	e.POST("/loans/sweep", h.Sweep)
	e.POST("/loans/:loan_id/return", h.ReturnLoan, mutating...)
	e.POST("/loans/:loan_id/renew", h.RenewLoan, mutating...)
	e.GET("/loans", h.ListLoans)
	e.GET("/loans/search", h.SearchLoans)
	e.GET("/loans/active", h.ListActive)
	e.GET("/loans/overdue", h.ListOverdue)
	e.GET("/loans/:loan_id", h.GetLoan)
	e.GET("/books/:book_id/loans", h.BookLoans)
	e.GET("/books/:book_id/holders/:user_id", h.IsIssuedTo)
	e.GET("/users/:user_id/loans", h.UserLoans)
	e.GET("/users/:user_id/loans/history", h.UserHistory)
	e.GET("/users/:user_id/loans/active-count", h.ActiveCount)
}

type issueLoanReq struct {
	BookID    string `json:"book_id"    validate:"required,hex32"`
	UserID    string `json:"user_id"    validate:"required,hex32"`
	IssuerID  string `json:"issuer_id"  validate:"required,hex32"`
	IssueDate string `json:"issue_date" validate:"required,datetime=2006-01-02"`
	DueDate   string `json:"due_date"   validate:"required,datetime=2006-01-02"`
	Notes     string `json:"notes"`
}

func (r issueLoanReq) toInput() (ledger.IssueInput, error) {
	issued, err := parseDay(r.IssueDate)
	if err != nil {
		return ledger.IssueInput{}, err
	}
	due, err := parseDay(r.DueDate)
	if err != nil {
		return ledger.IssueInput{}, err
	}
	return ledger.IssueInput{
		BookID:    r.BookID,
		UserID:    r.UserID,
		IssuerID:  r.IssuerID,
		IssueDate: issued,
		DueDate:   due,
		Notes:     r.Notes,
	}, nil
}

func (h *LedgerHandler) IssueLoan(c echo.Context) error {
	var req issueLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	in, err := req.toInput()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
	}
	dto, err := h.ledger.Issue(c.Request().Context(), in)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type returnLoanReq struct {
	ReturnerID string `json:"returner_id" validate:"required,hex32"`
	Notes      string `json:"notes"`
}

func (h *LedgerHandler) ReturnLoan(c echo.Context) error {
	var req returnLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.ledger.Return(c.Request().Context(), ledger.ReturnInput{
		LoanID:     c.Param("loan_id"),
		ReturnerID: req.ReturnerID,
		Notes:      req.Notes,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type renewLoanReq struct {
	NewDueDate string `json:"new_due_date" validate:"required,datetime=2006-01-02"`
	Notes      string `json:"notes"`
}

func (h *LedgerHandler) RenewLoan(c echo.Context) error {
	var req renewLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	due, err := parseDay(req.NewDueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
	}
	dto, err := h.ledger.Renew(c.Request().Context(), ledger.RenewInput{
		LoanID:     c.Param("loan_id"),
		NewDueDate: due,
		Notes:      req.Notes,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LedgerHandler) GetLoan(c echo.Context) error {
	dto, err := h.ledger.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LedgerHandler) ListLoans(c echo.Context) error {
	page, size := pageParams(c)
	out, err := h.ledger.List(c.Request().Context(), page, size)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LedgerHandler) SearchLoans(c echo.Context) error {
	page, size := pageParams(c)
	out, err := h.ledger.Search(c.Request().Context(), c.QueryParam("q"), page, size)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LedgerHandler) ListActive(c echo.Context) error {
	page, size := pageParams(c)
	out, err := h.ledger.ListActive(c.Request().Context(), page, size)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LedgerHandler) ListOverdue(c echo.Context) error {
	page, size := pageParams(c)
	out, err := h.ledger.ListOverdue(c.Request().Context(), page, size)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LedgerHandler) BookLoans(c echo.Context) error {
	page, size := pageParams(c)
	out, err := h.ledger.ListByBook(c.Request().Context(), c.Param("book_id"), page, size)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LedgerHandler) UserLoans(c echo.Context) error {
	page, size := pageParams(c)
	ctx := c.Request().Context()
	userID := c.Param("user_id")
	if c.QueryParam("active") == "true" {
		out, err := h.ledger.ListActiveByUser(ctx, userID, page, size)
		if err != nil {
			return jsonError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
	out, err := h.ledger.ListByUser(ctx, userID, page, size)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LedgerHandler) UserHistory(c echo.Context) error {
	out, err := h.ledger.History(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LedgerHandler) IsIssuedTo(c echo.Context) error {
	issued, err := h.ledger.IsIssuedTo(c.Request().Context(), c.Param("book_id"), c.Param("user_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"issued_to_user": issued})
}

func (h *LedgerHandler) ActiveCount(c echo.Context) error {
	n, err := h.ledger.ActiveCount(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

type importLoansReq struct {
	Relaxed  bool           `json:"relaxed"`
	Requests []issueLoanReq `json:"requests" validate:"required,min=1,dive"`
}

func (h *LedgerHandler) ImportLoans(c echo.Context) error {
	var req importLoansReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	ins := make([]ledger.IssueInput, 0, len(req.Requests))
	for _, r := range req.Requests {
		in, err := r.toInput()
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid date"})
		}
		ins = append(ins, in)
	}
	res, err := h.ledger.IssueBatch(c.Request().Context(), ins, req.Relaxed)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Sweep triggers an out-of-band overdue pass, same as the scheduler tick.
func (h *LedgerHandler) Sweep(c echo.Context) error {
	n, err := h.overdue.SweepOverdue(c.Request().Context(), nowUTC())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"marked": n})
}
