package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"microlend/internal/adapter/middleware"
	"microlend/internal/usecase/lifecycle"
)

type LoanHandler struct {
	uc  *lifecycle.Usecase
	log logrus.FieldLogger
}

func NewLoanHandler(uc *lifecycle.Usecase, log logrus.FieldLogger) *LoanHandler {
	return &LoanHandler{uc: uc, log: log}
}

type markPaidReq struct {
	PaymentProof string `json:"paymentProof" validate:"required"`
}

type updateStatusReq struct {
	Status string `json:"status" validate:"required,loanstatus"`
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	l, err := h.uc.Get(c.Request().Context(), c.Param("id"), middleware.CallerID(c), middleware.IsAdmin(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentLoan(l))
}

func (h *LoanHandler) ListMine(c echo.Context) error {
	ls, err := h.uc.ListMine(c.Request().Context(), middleware.CallerID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentLoans(ls))
}

func (h *LoanHandler) Sign(c echo.Context) error {
	l, err := h.uc.SignByLender(c.Request().Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentLoan(l))
}

func (h *LoanHandler) MarkPaid(c echo.Context) error {
	var req markPaidReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	l, err := h.uc.MarkPaidByBorrower(c.Request().Context(), c.Param("id"), middleware.CallerID(c), req.PaymentProof)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentLoan(l))
}

func (h *LoanHandler) ConfirmPayment(c echo.Context) error {
	l, err := h.uc.ConfirmPaymentByLender(c.Request().Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentLoan(l))
}

// Admin routes below; RequireAdmin guards them in the router.

func (h *LoanHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	l, err := h.uc.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentLoan(l))
}

func (h *LoanHandler) Default(c echo.Context) error {
	l, err := h.uc.MarkDefaulted(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentLoan(l))
}

func (h *LoanHandler) Cancel(c echo.Context) error {
	l, err := h.uc.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentLoan(l))
}

func (h *LoanHandler) FlagOverdue(c echo.Context) error {
	l, err := h.uc.FlagOverdue(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentLoan(l))
}
