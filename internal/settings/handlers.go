package settings

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for settings operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new settings handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers settings routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Get)
	g.PUT("", h.Update)
}

// view is what the dashboard sees. The token itself never leaves the
// server; only its presence is reported.
type view struct {
	Theme           string `json:"theme"`
	CatalogTokenSet bool   `json:"catalogTokenSet"`
}

type updateRequest struct {
	Theme        *string `json:"theme"`
	CatalogToken *string `json:"catalogToken"`
}

// Get returns the current settings.
// GET /api/v1/settings
func (h *Handlers) Get(c echo.Context) error {
	current, err := h.view(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, current)
}

// Update changes the settings present in the request body; absent fields
// stay as they are.
// PUT /api/v1/settings
func (h *Handlers) Update(c echo.Context) error {
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()

	if req.Theme != nil {
		if err := h.service.SetTheme(ctx, *req.Theme); err != nil {
			if errors.Is(err, ErrInvalidTheme) {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if req.CatalogToken != nil {
		if err := h.service.SetToken(ctx, *req.CatalogToken); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	updated, err := h.view(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handlers) view(c echo.Context) (view, error) {
	ctx := c.Request().Context()

	theme, err := h.service.Theme(ctx)
	if err != nil {
		return view{}, err
	}
	token, err := h.service.Token(ctx)
	if err != nil {
		return view{}, err
	}

	return view{Theme: theme, CatalogTokenSet: token != ""}, nil
}
