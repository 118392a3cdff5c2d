package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/deepchat/internal/models"
	"github.com/Skotchmaster/deepchat/internal/search"
	"github.com/Skotchmaster/deepchat/internal/store"
)

type PresentationHandler struct {
	Store store.Store
	ES    *elasticsearch.Client
	Index string
}

func (h *PresentationHandler) Create(c echo.Context) error {
	var req struct {
		Title string `json:"title"`
		Price int    `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p := models.Presentation{
		ID:    uuid.NewString(),
		Title: req.Title,
		Price: req.Price,
	}
	if err := h.Store.Upsert(c.Request().Context(), store.Presentations, p.ID, p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Presentation not created")
	}

	h.index(c, p)
	return c.JSON(http.StatusCreated, p)
}

func (h *PresentationHandler) List(c echo.Context) error {
	var items []models.Presentation
	if err := h.Store.List(c.Request().Context(), store.Presentations, &items); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *PresentationHandler) Get(c echo.Context) error {
	var p models.Presentation
	err := h.Store.Get(c.Request().Context(), store.Presentations, c.Param("id"), &p)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Presentation not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PresentationHandler) Update(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		Title string `json:"title"`
		Price int    `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var p models.Presentation
	err := h.Store.Get(c.Request().Context(), store.Presentations, id, &p)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Presentation not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}

	p.Title = req.Title
	p.Price = req.Price
	if err := h.Store.Upsert(c.Request().Context(), store.Presentations, id, p); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}

	h.index(c, p)
	return c.JSON(http.StatusOK, p)
}

func (h *PresentationHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	present, err := h.Store.Delete(c.Request().Context(), store.Presentations, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
	if !present {
		return echo.NewHTTPError(http.StatusNotFound, "Presentation not found")
	}

	if h.ES != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := search.DeletePresentation(ctx, h.ES, h.Index, id); err != nil {
			c.Logger().Errorf("search delete error: %v", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Presentation deleted"})
}

// index mirrors the document into the search index, best-effort.
func (h *PresentationHandler) index(c echo.Context, p models.Presentation) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexPresentation(ctx, h.ES, h.Index, p); err != nil {
		c.Logger().Errorf("search index error: %v", err)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
