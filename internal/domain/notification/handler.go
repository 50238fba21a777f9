package notification

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ehr/practice/pkg/pagination"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/notifications", h.List)
	api.GET("/notifications/stats", h.Stats)
	api.GET("/notifications/filters", h.GetFilters)
	api.PUT("/notifications/filters", h.SetFilters)
	api.POST("/notifications", h.Create)
	api.POST("/notifications/read-all", h.MarkAllAsRead)
	api.DELETE("/notifications", h.ClearAll)
	api.GET("/notifications/:id", h.Get)
	api.POST("/notifications/:id/read", h.MarkAsRead)
	api.DELETE("/notifications/:id", h.Delete)
}

type createRequest struct {
	Type           string     `json:"type" validate:"required,oneof=urgent alert warning success info"`
	Title          string     `json:"title" validate:"required,max=200"`
	Message        string     `json:"message" validate:"required,max=2000"`
	IsRead         bool       `json:"isRead"`
	Priority       string     `json:"priority" validate:"required,oneof=low medium high critical"`
	Category       string     `json:"category" validate:"required,oneof=medical administrative system security"`
	ActionRequired bool       `json:"actionRequired"`
	PatientID      string     `json:"patientId" validate:"max=64"`
	PatientName    string     `json:"patientName" validate:"max=200"`
	Service        string     `json:"service" validate:"max=64"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

type filtersRequest struct {
	Type     *string    `json:"type" validate:"omitempty,oneof=urgent alert warning success info"`
	Category *string    `json:"category" validate:"omitempty,oneof=medical administrative system security"`
	Priority *string    `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	IsRead   *bool      `json:"isRead"`
	Service  *string    `json:"service"`
	DateFrom *time.Time `json:"dateFrom"`
	DateTo   *time.Time `json:"dateTo"`
}

func (r filtersRequest) toFilters() Filters {
	f := Filters{
		IsRead:   r.IsRead,
		Service:  r.Service,
		DateFrom: r.DateFrom,
		DateTo:   r.DateTo,
	}
	if r.Type != nil {
		v := Type(*r.Type)
		f.Type = &v
	}
	if r.Category != nil {
		v := Category(*r.Category)
		f.Category = &v
	}
	if r.Priority != nil {
		v := Priority(*r.Priority)
		f.Priority = &v
	}
	return f
}

// bindError keeps status codes raised while reading the body, such as 413
// from the body limit, and reports anything else as a 400.
func bindError(err error) error {
	for e := err; e != nil; {
		var he *echo.HTTPError
		if !errors.As(e, &he) {
			break
		}
		if he.Code != http.StatusBadRequest {
			return he
		}
		e = he.Internal
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

// List handles GET /notifications: the filtered view, one page at a time.
func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items := h.store.List()
	start, end := pg.Window(len(items))
	return c.JSON(http.StatusOK, pagination.NewResponse(items[start:end], len(items), pg.Limit, pg.Offset))
}

func (h *Handler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Stats())
}

func (h *Handler) GetFilters(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Filters())
}

// SetFilters handles PUT /notifications/filters. The body replaces the
// active filters completely; an empty object clears them.
func (h *Handler) SetFilters(c echo.Context) error {
	var req filtersRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.DateFrom != nil && req.DateTo != nil && req.DateTo.Before(*req.DateFrom) {
		return echo.NewHTTPError(http.StatusBadRequest, "dateTo must not be before dateFrom")
	}
	f := req.toFilters()
	h.store.SetFilters(f)
	return c.JSON(http.StatusOK, h.store.Filters())
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	n := h.store.AddNotification(NewNotification{
		Type:           Type(req.Type),
		Title:          req.Title,
		Message:        req.Message,
		IsRead:         req.IsRead,
		Priority:       Priority(req.Priority),
		Category:       Category(req.Category),
		ActionRequired: req.ActionRequired,
		PatientID:      req.PatientID,
		PatientName:    req.PatientName,
		Service:        req.Service,
		ExpiresAt:      req.ExpiresAt,
	})
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) Get(c echo.Context) error {
	n, ok := h.store.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	return c.JSON(http.StatusOK, n)
}

// MarkAsRead handles POST /notifications/:id/read. Unknown ids are not an
// error.
func (h *Handler) MarkAsRead(c echo.Context) error {
	h.store.MarkAsRead(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MarkAllAsRead(c echo.Context) error {
	h.store.MarkAllAsRead()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Delete(c echo.Context) error {
	h.store.DeleteNotification(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ClearAll(c echo.Context) error {
	h.store.ClearAllNotifications()
	return c.NoContent(http.StatusNoContent)
}
