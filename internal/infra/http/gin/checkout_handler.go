package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"kase/internal/app/commands"
	"kase/internal/app/dto"
	checkoutapp "kase/internal/app/handlers/checkout"
	"kase/internal/app/policies"
	"kase/internal/app/queries"
	domaincheckout "kase/internal/domain/checkout"
)

type CheckoutHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Prefs    policies.PreferencesPort
}

type startCheckoutRequest struct {
	ListingID string `json:"listing_id"`
}

func (h CheckoutHandler) Start(c *gin.Context) {
	var req startCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := checkoutapp.StartCheckoutCommand{
		SessionID: uuid.NewString(),
		ListingID: req.ListingID,
		UserID:    currentUserID(c),
	}
	result, err := commands.Dispatch[checkoutapp.StartCheckoutCommand, *checkoutapp.StartCheckoutResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.mapSnapshot(result.Snapshot))
}

func (h CheckoutHandler) Get(c *gin.Context) {
	query := checkoutapp.GetCheckoutQuery{SessionID: c.Param("id")}
	result, err := queries.Ask[checkoutapp.GetCheckoutQuery, *checkoutapp.GetCheckoutResult](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.mapSnapshot(result.Snapshot))
}

type updateDatesRequest struct {
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
}

func (h CheckoutHandler) UpdateDates(c *gin.Context) {
	var req updateDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := checkoutapp.UpdateDatesCommand{SessionID: c.Param("id")}
	if req.CheckIn != nil {
		cmd.CheckIn = *req.CheckIn
	}
	if req.CheckOut != nil {
		cmd.CheckOut = *req.CheckOut
	}
	h.dispatchSession(c, cmd)
}

type updateGuestsRequest struct {
	Step string `json:"step"`
}

func (h CheckoutHandler) UpdateGuests(c *gin.Context) {
	var req updateGuestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.dispatchSession(c, checkoutapp.UpdateGuestsCommand{
		SessionID: c.Param("id"),
		Step:      checkoutapp.GuestStep(req.Step),
	})
}

type updateIdentityRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h CheckoutHandler) UpdateIdentity(c *gin.Context) {
	var req updateIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.dispatchSession(c, checkoutapp.UpdateIdentityCommand{
		SessionID: c.Param("id"),
		Name:      req.Name,
		Email:     req.Email,
	})
}

func (h CheckoutHandler) Continue(c *gin.Context) {
	h.dispatchSession(c, checkoutapp.ContinueToPaymentCommand{SessionID: c.Param("id")})
}

func (h CheckoutHandler) Back(c *gin.Context) {
	h.dispatchSession(c, checkoutapp.BackToDetailsCommand{SessionID: c.Param("id")})
}

func (h CheckoutHandler) Reset(c *gin.Context) {
	h.dispatchSession(c, checkoutapp.ResetCheckoutCommand{SessionID: c.Param("id")})
}

func (h CheckoutHandler) Submit(c *gin.Context) {
	cmd := checkoutapp.SubmitPaymentCommand{
		SessionID:       c.Param("id"),
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[checkoutapp.SubmitPaymentCommand, *checkoutapp.SubmitPaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"booking_id": result.BookingID,
		"snapshot":   h.mapSnapshot(result.Snapshot),
	})
}

func (h CheckoutHandler) Close(c *gin.Context) {
	cmd := checkoutapp.CloseCheckoutCommand{SessionID: c.Param("id")}
	if _, err := commands.Dispatch[checkoutapp.CloseCheckoutCommand, *checkoutapp.CloseCheckoutResult](c.Request.Context(), h.Commands, cmd); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h CheckoutHandler) dispatchSession(c *gin.Context, cmd commands.Command) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	result, err := h.Commands.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	sessionResult, ok := result.(*checkoutapp.SessionResult)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected result type"})
		return
	}
	c.JSON(http.StatusOK, h.mapSnapshot(sessionResult.Snapshot))
}

func (h CheckoutHandler) mapSnapshot(snap domaincheckout.Snapshot) dto.CheckoutSnapshot {
	display := ""
	if h.Prefs != nil {
		display = h.Prefs.FormatPrice(snap.Total)
	}
	return dto.MapCheckoutSnapshot(snap, display)
}

var _ CheckoutHTTP = CheckoutHandler{}
