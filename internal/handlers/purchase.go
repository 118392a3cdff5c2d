package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/deepchat/internal/events"
	"github.com/Skotchmaster/deepchat/internal/models"
	"github.com/Skotchmaster/deepchat/internal/store"
)

type PurchaseHandler struct {
	Store  store.Store
	Events events.Publisher
}

func (h *PurchaseHandler) Create(c echo.Context) error {
	var req struct {
		UserID         string `json:"user_id"`
		PresentationID string `json:"presentation_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ctx := c.Request().Context()
	if err := h.documentExists(ctx, store.Users, req.UserID); err != nil {
		return err
	}
	if err := h.documentExists(ctx, store.Presentations, req.PresentationID); err != nil {
		return err
	}

	p := models.Purchase{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		PresentationID: req.PresentationID,
		PurchaseDate:   time.Now(),
	}
	if err := h.Store.Upsert(ctx, store.Purchases, p.ID, p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Purchase not created")
	}

	h.publish(c, map[string]any{
		"type":            "purchase_created",
		"purchase_id":     p.ID,
		"user_id":         p.UserID,
		"presentation_id": p.PresentationID,
	})

	return c.JSON(http.StatusCreated, p)
}

func (h *PurchaseHandler) Get(c echo.Context) error {
	var p models.Purchase
	err := h.Store.Get(c.Request().Context(), store.Purchases, c.Param("id"), &p)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Purchase not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PurchaseHandler) List(c echo.Context) error {
	var items []models.Purchase
	if err := h.Store.List(c.Request().Context(), store.Purchases, &items); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *PurchaseHandler) ListByUser(c echo.Context) error {
	var items []models.Purchase
	err := h.Store.ListByField(c.Request().Context(), store.Purchases, "user_id", c.Param("user_id"), &items)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *PurchaseHandler) Delete(c echo.Context) error {
	present, err := h.Store.Delete(c.Request().Context(), store.Purchases, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	if !present {
		return echo.NewHTTPError(http.StatusNotFound, "Purchase not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Purchase deleted"})
}

func (h *PurchaseHandler) documentExists(ctx context.Context, collection, id string) error {
	var doc map[string]any
	err := h.Store.Get(ctx, collection, id, &doc)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Document with ID %s not found", id))
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	return nil
}

func (h *PurchaseHandler) publish(c echo.Context, event map[string]any) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Events.Publish(ctx, events.PurchaseTopic, fmt.Sprint(event["user_id"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
