package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/service"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/util"
)

type FavoriteHandler struct {
	favorites *service.FavoriteService
}

type FavoriteItemResponse struct {
	ID      int64                   `json:"id"`
	SavedAt string                  `json:"saved_at"`
	Profile FavoriteProfileResponse `json:"profile"`
}

type FavoriteProfileResponse struct {
	ProfileID       uuid.UUID `json:"profile_id"`
	Gender          string    `json:"gender"`
	City            *string   `json:"city,omitempty"`
	Country         *string   `json:"country,omitempty"`
	Religion        *string   `json:"religion,omitempty"`
	PrimaryPhotoURL *string   `json:"primary_photo_url,omitempty"`
}

func RegisterFavorites(e *echo.Echo, auth *service.AuthService, favorites *service.FavoriteService) {
	handler := &FavoriteHandler{favorites: favorites}

	protected := e.Group("/api/v1/favorites", RequireAuth(auth))
	protected.POST("", handler.saveFavorite)
	protected.DELETE("/:profile_id", handler.removeFavorite)
	protected.GET("", handler.listFavorites)
}

func (h *FavoriteHandler) saveFavorite(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req struct {
		ProfileID string `json:"profile_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if strings.TrimSpace(req.ProfileID) == "" {
		return c.JSON(http.StatusBadRequest, util.Error("profile_id is required"))
	}

	profileID, err := uuid.Parse(strings.TrimSpace(req.ProfileID))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("profile_id must be a valid UUID"))
	}

	favorite, err := h.favorites.Save(c.Request().Context(), account.ID, profileID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			return c.JSON(http.StatusNotFound, util.Error("profile not found"))
		case errors.Is(err, service.ErrFavoriteSelf):
			return c.JSON(http.StatusBadRequest, util.Error("cannot favorite your own profile"))
		case errors.Is(err, service.ErrFavoriteAlreadyExists):
			return c.JSON(http.StatusConflict, util.Error("profile already saved"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update favorites"))
		}
	}

	return c.JSON(http.StatusCreated, util.Envelope{
		"favorite": util.Envelope{
			"id":         favorite.ID,
			"profile_id": favorite.ProfileID,
			"saved_at":   favorite.CreatedAt.UTC().Format(time.RFC3339),
		},
		"message": "profile saved to favorites",
	})
}

func (h *FavoriteHandler) removeFavorite(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	profileID, err := uuid.Parse(strings.TrimSpace(c.Param("profile_id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("profile_id must be a valid UUID"))
	}

	if err := h.favorites.Remove(c.Request().Context(), account.ID, profileID); err != nil {
		switch {
		case errors.Is(err, service.ErrFavoriteNotFound):
			return c.JSON(http.StatusNotFound, util.Error("profile is not in your favorites"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update favorites"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"profile_id": profileID,
		"message":    "profile removed from favorites",
	})
}

func (h *FavoriteHandler) listFavorites(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	limit, offset := parsePagination(c, 20, 0)
	result, err := h.favorites.List(c.Request().Context(), account.ID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load favorites"))
	}

	items := make([]FavoriteItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, toFavoriteItemResponse(item))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"items": items,
		"pagination": util.Envelope{
			"limit":  result.Limit,
			"offset": result.Offset,
			"total":  result.Total,
			"count":  len(items),
		},
	})
}

func toFavoriteItemResponse(item domain.FavoriteListItem) FavoriteItemResponse {
	return FavoriteItemResponse{
		ID:      item.ID,
		SavedAt: item.SavedAt.UTC().Format(time.RFC3339),
		Profile: FavoriteProfileResponse{
			ProfileID:       item.ProfileID,
			Gender:          item.Gender,
			City:            item.City,
			Country:         item.Country,
			Religion:        item.Religion,
			PrimaryPhotoURL: item.PrimaryPhotoURL,
		},
	}
}
