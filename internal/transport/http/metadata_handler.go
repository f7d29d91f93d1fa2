package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/service"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/util"
)

type MetadataHandler struct {
	metadata *service.MetadataService
}

// Lookup lists are public; clients need them on the registration screen
// before any account exists.
func RegisterMetadata(e *echo.Echo, metadata *service.MetadataService) {
	handler := &MetadataHandler{metadata: metadata}

	group := e.Group("/api/v1/metadata")
	group.GET("/categories", handler.listCategories)
	group.GET("/:category", handler.lookup)
}

func (h *MetadataHandler) listCategories(c echo.Context) error {
	categories, err := h.metadata.Categories(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not load categories"))
	}
	return c.JSON(http.StatusOK, util.Data("categories", categories))
}

func (h *MetadataHandler) lookup(c echo.Context) error {
	category := strings.TrimSpace(c.Param("category"))
	values, err := h.metadata.Lookup(c.Request().Context(), category)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLookupCategoryUnknown):
			return c.JSON(http.StatusNotFound, util.Error("unknown lookup category"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not load lookup values"))
		}
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"category": category,
		"values":   values,
	})
}
