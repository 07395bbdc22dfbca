package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"microlend/internal/adapter/middleware"
	"microlend/internal/usecase/funding"
)

type FundingHandler struct {
	uc  *funding.Usecase
	log logrus.FieldLogger
}

func NewFundingHandler(uc *funding.Usecase, log logrus.FieldLogger) *FundingHandler {
	return &FundingHandler{uc: uc, log: log}
}

type createRequestReq struct {
	Amount          float64    `json:"amount" validate:"required,gt=0,dec2"`
	MinAmount       *float64   `json:"minAmount" validate:"omitempty,gt=0,dec2"`
	InterestRate    *float64   `json:"interestRate" validate:"omitempty,gte=0,lte=100"`
	DurationDays    int        `json:"durationDays" validate:"required,gte=1,lte=3650"`
	Purpose         string     `json:"purpose" validate:"max=2000"`
	ExpiresAt       *time.Time `json:"expiresAt"`
	FundingDeadline *time.Time `json:"fundingDeadline"`
}

type createOfferReq struct {
	Amount         float64  `json:"amount" validate:"required,gt=0,dec2"`
	InterestRate   *float64 `json:"interestRate" validate:"omitempty,gte=0,lte=100"`
	IsCounterOffer bool     `json:"isCounterOffer"`
	Message        string   `json:"message" validate:"max=2000"`
}

type documentReq struct {
	Type string `json:"type" validate:"required,doctype"`
	URL  string `json:"url" validate:"required,url"`
}

type acceptOfferReq struct {
	Documents []documentReq `json:"documents" validate:"dive"`
}

func toDecimal(v float64) decimal.Decimal { return decimal.NewFromFloat(v).Round(2) }

func (h *FundingHandler) CreateRequest(c echo.Context) error {
	var req createRequestReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	in := funding.CreateRequestInput{
		BorrowerID:      middleware.CallerID(c),
		Amount:          toDecimal(req.Amount),
		InterestRate:    req.InterestRate,
		DurationDays:    req.DurationDays,
		Purpose:         req.Purpose,
		ExpiresAt:       req.ExpiresAt,
		FundingDeadline: req.FundingDeadline,
	}
	if req.MinAmount != nil {
		m := toDecimal(*req.MinAmount)
		in.MinAmount = &m
	}
	r, err := h.uc.CreateRequest(c.Request().Context(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, presentRequest(r))
}

func (h *FundingHandler) GetRequest(c echo.Context) error {
	r, err := h.uc.GetRequest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentRequest(r))
}

func (h *FundingHandler) ListOpenRequests(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	rs, err := h.uc.ListOpenRequests(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentRequests(rs))
}

func (h *FundingHandler) ListMyRequests(c echo.Context) error {
	rs, err := h.uc.ListMyRequests(c.Request().Context(), middleware.CallerID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentRequests(rs))
}

func (h *FundingHandler) CancelRequest(c echo.Context) error {
	r, err := h.uc.CancelRequest(c.Request().Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentRequest(r))
}

func (h *FundingHandler) ListOffers(c echo.Context) error {
	offers, err := h.uc.ListOffers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentOffers(offers))
}

func (h *FundingHandler) CreateOffer(c echo.Context) error {
	var req createOfferReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	o, err := h.uc.CreateOffer(c.Request().Context(), funding.CreateOfferInput{
		RequestID:      c.Param("id"),
		LenderID:       middleware.CallerID(c),
		Amount:         toDecimal(req.Amount),
		InterestRate:   req.InterestRate,
		IsCounterOffer: req.IsCounterOffer,
		Message:        req.Message,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, presentOffer(o))
}

// AcceptOffer turns a pending offer into a PENDING loan signed by the borrower.
func (h *FundingHandler) AcceptOffer(c echo.Context) error {
	var req acceptOfferReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	docs := make([]funding.DocumentInput, 0, len(req.Documents))
	for _, d := range req.Documents {
		docs = append(docs, funding.DocumentInput{Type: d.Type, URL: d.URL})
	}
	l, err := h.uc.AcceptOffer(c.Request().Context(), funding.AcceptOfferInput{
		OfferID:    c.Param("id"),
		BorrowerID: middleware.CallerID(c),
		Documents:  docs,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, presentLoan(l))
}

func (h *FundingHandler) RejectOffer(c echo.Context) error {
	o, err := h.uc.RejectOffer(c.Request().Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentOffer(o))
}

func (h *FundingHandler) WithdrawOffer(c echo.Context) error {
	o, err := h.uc.WithdrawOffer(c.Request().Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, presentOffer(o))
}
