// Billing HTTP handlers.
//
// This file exposes the subscription checkout flow:
//   - POST /billing/checkout  (create a hosted checkout session)
//   - POST /billing/confirm   (mark the caller subscribed; webhook seam)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentscout/talentscout-server/internal/billing"
	"github.com/talentscout/talentscout-server/internal/services"
)

// CheckoutResponse carries the hosted checkout session the client should
// redirect to.
type CheckoutResponse struct {
	Session *billing.CheckoutSession `json:"session"`
}

// StartCheckout godoc
// @ID          startCheckout
// @Summary     Start subscription checkout
// @Description Creates a provider-hosted checkout session for the caller.
// @Tags        Billing
// @Produce     json
// @Success     200  {object}  handlers.CheckoutResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     404  {object}  handlers.ErrorResponse  "Account not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /billing/checkout [post]
func (h *Handlers) StartCheckout(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	sess, err := h.billingSvc.StartCheckout(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, CheckoutResponse{Session: sess})
}

// ConfirmSubscription godoc
// @ID          confirmSubscription
// @Summary     Confirm subscription
// @Description Marks the caller's account subscribed after a completed checkout.
// @Tags        Billing
// @Produce     json
// @Success     204  "Subscribed"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     404  {object}  handlers.ErrorResponse  "Account not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /billing/confirm [post]
func (h *Handlers) ConfirmSubscription(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}
	if err := h.billingSvc.Confirm(c.Request.Context(), uid); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "account not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
