package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/service"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/util"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func RegisterPayments(e *echo.Echo, auth *service.AuthService, payments *service.PaymentService) {
	handler := &PaymentHandler{payments: payments}

	e.GET("/api/v1/payments/plans", handler.listPlans)

	protected := e.Group("/api/v1/payments", RequireAuth(auth))
	protected.POST("/checkout", handler.createCheckout)
}

func (h *PaymentHandler) listPlans(c echo.Context) error {
	return c.JSON(http.StatusOK, util.Data("plans", h.payments.Plans()))
}

func (h *PaymentHandler) createCheckout(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req struct {
		Plan string `json:"plan"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if strings.TrimSpace(req.Plan) == "" {
		return c.JSON(http.StatusBadRequest, util.Error("plan is required"))
	}

	session, err := h.payments.CreateCheckoutSession(c.Request().Context(), account.ID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanUnknown):
			return c.JSON(http.StatusBadRequest, util.Error("unknown subscription plan"))
		case errors.Is(err, service.ErrPaymentUnavailable):
			return c.JSON(http.StatusServiceUnavailable, util.Error("payments are not configured"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not start checkout"))
		}
	}

	return c.JSON(http.StatusCreated, util.Envelope{
		"session_id":   session.SessionID,
		"checkout_url": session.URL,
	})
}
