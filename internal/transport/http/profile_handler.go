package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/domain"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/media"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/service"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/util"
)

type ProfileHandler struct {
	profiles *service.ProfileService
}

type ProfileRequest struct {
	Gender        string  `json:"gender"`
	DateOfBirth   string  `json:"date_of_birth"`
	MaritalStatus *string `json:"marital_status,omitempty"`
	Religion      *string `json:"religion,omitempty"`
	Caste         *string `json:"caste,omitempty"`
	MotherTongue  *string `json:"mother_tongue,omitempty"`
	City          *string `json:"city,omitempty"`
	Country       *string `json:"country,omitempty"`
	Education     *string `json:"education,omitempty"`
	Occupation    *string `json:"occupation,omitempty"`
	AnnualIncome  *int64  `json:"annual_income,omitempty"`
	Diet          *string `json:"diet,omitempty"`
	AboutMe       *string `json:"about_me,omitempty"`
}

func RegisterProfiles(e *echo.Echo, auth *service.AuthService, profiles *service.ProfileService) {
	handler := &ProfileHandler{profiles: profiles}

	protected := e.Group("/api/v1/profiles", RequireAuth(auth))
	protected.POST("", handler.createProfile)
	protected.GET("/me", handler.myProfile)
	protected.PUT("/me", handler.updateProfile)
	protected.GET("/search", handler.search)
	protected.GET("/:id", handler.getProfile)
	protected.POST("/me/photos", handler.uploadPhoto)
	protected.GET("/me/photos", handler.listPhotos)
	protected.DELETE("/me/photos/:photo_id", handler.removePhoto)
}

func (h *ProfileHandler) createProfile(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	profile, err := profileFromRequest(account.ID, req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	created, err := h.profiles.Create(c.Request().Context(), profile)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileInvalid):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrProfileAlreadyExists):
			return c.JSON(http.StatusConflict, util.Error("account already has a profile"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not create profile"))
		}
	}

	return c.JSON(http.StatusCreated, util.Data("profile", created))
}

func (h *ProfileHandler) myProfile(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	profile, err := h.profiles.GetByAccount(c.Request().Context(), account.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			return c.JSON(http.StatusNotFound, util.Error("profile not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not load profile"))
		}
	}
	return c.JSON(http.StatusOK, util.Data("profile", profile))
}

func (h *ProfileHandler) updateProfile(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	updates, err := profileFromRequest(account.ID, req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	updated, err := h.profiles.Update(c.Request().Context(), account.ID, updates)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileInvalid):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrProfileNotFound):
			return c.JSON(http.StatusNotFound, util.Error("profile not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not update profile"))
		}
	}
	return c.JSON(http.StatusOK, util.Data("profile", updated))
}

func (h *ProfileHandler) getProfile(c echo.Context) error {
	profileID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("profile id must be a valid UUID"))
	}

	profile, err := h.profiles.GetByID(c.Request().Context(), profileID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			return c.JSON(http.StatusNotFound, util.Error("profile not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not load profile"))
		}
	}
	return c.JSON(http.StatusOK, util.Data("profile", profile))
}

func (h *ProfileHandler) search(c echo.Context) error {
	filter := domain.ProfileSearchFilter{
		Gender:    strings.TrimSpace(c.QueryParam("gender")),
		Religions: splitFilter(c.QueryParam("religion")),
		Castes:    splitFilter(c.QueryParam("caste")),
		Countries: splitFilter(c.QueryParam("country")),
	}
	filter.MinAge = atoiOrZero(c.QueryParam("min_age"))
	filter.MaxAge = atoiOrZero(c.QueryParam("max_age"))

	limit, offset := parsePagination(c, 20, 0)
	result, err := h.profiles.Search(c.Request().Context(), filter, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not search profiles"))
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"items": result.Items,
		"pagination": util.Envelope{
			"limit":  result.Limit,
			"offset": result.Offset,
			"total":  result.Total,
			"count":  len(result.Items),
		},
	})
}

func (h *ProfileHandler) uploadPhoto(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("photo file is required"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("could not read photo"))
	}
	defer file.Close()

	caption := optionalField(c.FormValue("caption"))
	isPrimary := strings.EqualFold(strings.TrimSpace(c.FormValue("is_primary")), "true")

	photo, err := h.profiles.UploadPhoto(c.Request().Context(), account.ID, media.Upload{
		Reader:      file,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
	}, caption, isPrimary)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			return c.JSON(http.StatusNotFound, util.Error("profile not found"))
		case errors.Is(err, media.ErrPhotoTooLarge),
			errors.Is(err, media.ErrPhotoUnsupported),
			errors.Is(err, media.ErrPhotoDimensions),
			errors.Is(err, media.ErrPhotoNotDecodable):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not upload photo"))
		}
	}

	return c.JSON(http.StatusCreated, util.Data("photo", photo))
}

func (h *ProfileHandler) listPhotos(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	photos, err := h.profiles.ListPhotos(c.Request().Context(), account.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			return c.JSON(http.StatusNotFound, util.Error("profile not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not load photos"))
		}
	}
	return c.JSON(http.StatusOK, util.Data("photos", photos))
}

func (h *ProfileHandler) removePhoto(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	photoID, err := uuid.Parse(strings.TrimSpace(c.Param("photo_id")))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("photo_id must be a valid UUID"))
	}

	if err := h.profiles.RemovePhoto(c.Request().Context(), account.ID, photoID); err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			return c.JSON(http.StatusNotFound, util.Error("profile not found"))
		case errors.Is(err, service.ErrPhotoNotFound):
			return c.JSON(http.StatusNotFound, util.Error("photo not found"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not remove photo"))
		}
	}
	return c.JSON(http.StatusOK, util.Message("photo removed"))
}

func profileFromRequest(accountID uuid.UUID, req ProfileRequest) (*domain.Profile, error) {
	dob, err := time.Parse("2006-01-02", strings.TrimSpace(req.DateOfBirth))
	if err != nil {
		return nil, errors.New("date_of_birth must be in YYYY-MM-DD format")
	}
	return &domain.Profile{
		AccountID:     accountID,
		Gender:        strings.ToLower(strings.TrimSpace(req.Gender)),
		DateOfBirth:   dob,
		MaritalStatus: req.MaritalStatus,
		Religion:      req.Religion,
		Caste:         req.Caste,
		MotherTongue:  req.MotherTongue,
		City:          req.City,
		Country:       req.Country,
		Education:     req.Education,
		Occupation:    req.Occupation,
		AnnualIncome:  req.AnnualIncome,
		Diet:          req.Diet,
		AboutMe:       req.AboutMe,
	}, nil
}

func splitFilter(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

func parsePagination(c echo.Context, defaultLimit, defaultOffset int) (int, int) {
	limit := defaultLimit
	offset := defaultOffset
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := strings.TrimSpace(c.QueryParam("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
