package terminology

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler provides the REST endpoints for terminology search, mapping,
// and the chat assistant.
type Handler struct {
	svc *Service
}

// NewHandler creates a new terminology handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers all routes on the Echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.POST("/search", h.Search)
	e.POST("/map", h.Map)
	e.POST("/chat", h.Chat)
	e.GET("/status", h.Status)
	e.GET("/test-db", h.TestDB)
}

// SearchRequest is the /search request body.
type SearchRequest struct {
	Query   string   `json:"query"`
	Systems []string `json:"systems"`
}

// MapRequest is the /map request body.
type MapRequest struct {
	NamasteCode string `json:"namaste_code"`
}

// ChatRequest is the /chat request body.
type ChatRequest struct {
	Query               string     `json:"query"`
	ConversationHistory []ChatTurn `json:"conversation_history"`
}

// Root handles GET / as a liveness marker.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Terminology search and mapping service running",
	})
}

// Search handles POST /search.
func (h *Handler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.svc.Search(c.Request().Context(), req.Query, req.Systems))
}

// Map handles POST /map.
func (h *Handler) Map(c echo.Context) error {
	var req MapRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.svc.MapCode(req.NamasteCode))
}

// Chat handles POST /chat. Upstream model failures degrade to the
// system fallback response; this endpoint never returns a 5xx for them.
func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.svc.Chat(c.Request().Context(), req.Query, req.ConversationHistory))
}

// Status handles GET /status.
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Status())
}

// TestDB handles GET /test-db, reporting per-source connectivity and
// table listings.
func (h *Handler) TestDB(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.TestSources(c.Request().Context()))
}
