package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"microlend/internal/adapter/middleware"
	"microlend/internal/domain/errs"
	"microlend/internal/usecase/lifecycle"
	"microlend/internal/usecase/trustscore"
)

type TrustHandler struct {
	uc    *trustscore.Usecase
	loans *lifecycle.Usecase
	log   logrus.FieldLogger
}

func NewTrustHandler(uc *trustscore.Usecase, loans *lifecycle.Usecase, log logrus.FieldLogger) *TrustHandler {
	return &TrustHandler{uc: uc, loans: loans, log: log}
}

func (h *TrustHandler) MyTimeline(c echo.Context) error {
	return h.timeline(c, middleware.CallerID(c))
}

// UserTimeline is visible to the user themselves and to admins.
func (h *TrustHandler) UserTimeline(c echo.Context) error {
	userID := c.Param("id")
	if userID != middleware.CallerID(c) && !middleware.IsAdmin(c) {
		return writeError(c, h.log, errs.Forbidden("trust history is private"))
	}
	return h.timeline(c, userID)
}

func (h *TrustHandler) timeline(c echo.Context, userID string) error {
	tl, err := h.uc.Timeline(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentTimeline(tl))
}

// LoanHistory lists the score changes caused by one loan, for its parties.
func (h *TrustHandler) LoanHistory(c echo.Context) error {
	ctx := c.Request().Context()
	l, err := h.loans.Get(ctx, c.Param("id"), middleware.CallerID(c), middleware.IsAdmin(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	hs, err := h.uc.LoanHistory(ctx, l.ID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentHistory(hs))
}
