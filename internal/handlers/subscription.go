package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/deepchat/internal/models"
	"github.com/Skotchmaster/deepchat/internal/store"
)

type SubscriptionHandler struct {
	Store store.Store
}

type subscriptionRequest struct {
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
}

func (r *subscriptionRequest) validate() error {
	if r.Type != models.SubscriptionStandard && r.Type != models.SubscriptionPremium {
		return fmt.Errorf("invalid subscription type %q", r.Type)
	}
	if r.Status != models.StatusActive && r.Status != models.StatusInactive {
		return fmt.Errorf("invalid subscription status %q", r.Status)
	}
	return nil
}

func (h *SubscriptionHandler) Create(c echo.Context) error {
	var req subscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	var user models.User
	if err := h.Store.Get(ctx, store.Users, req.UserID, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Document with ID %s not found", req.UserID))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}

	sub := models.Subscription{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Type:      req.Type,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    req.Status,
	}
	if err := h.Store.Upsert(ctx, store.Subscriptions, sub.ID, sub); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Subscription not created")
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *SubscriptionHandler) List(c echo.Context) error {
	var items []models.Subscription
	if err := h.Store.List(c.Request().Context(), store.Subscriptions, &items); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *SubscriptionHandler) Get(c echo.Context) error {
	var sub models.Subscription
	err := h.Store.Get(c.Request().Context(), store.Subscriptions, c.Param("id"), &sub)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Subscription not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) Update(c echo.Context) error {
	id := c.Param("id")

	var req subscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	var sub models.Subscription
	err := h.Store.Get(ctx, store.Subscriptions, id, &sub)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Subscription not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}

	sub.UserID = req.UserID
	sub.Type = req.Type
	sub.StartDate = req.StartDate
	sub.EndDate = req.EndDate
	sub.Status = req.Status
	if err := h.Store.Upsert(ctx, store.Subscriptions, id, sub); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) Delete(c echo.Context) error {
	present, err := h.Store.Delete(c.Request().Context(), store.Subscriptions, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	if !present {
		return echo.NewHTTPError(http.StatusNotFound, "Subscription not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Subscription deleted"})
}
