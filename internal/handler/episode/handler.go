package episode

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careflowhq/careflow-api/internal/handler"
	"github.com/careflowhq/careflow-api/internal/middleware"
	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/service/episode"
)

type Handler struct {
	service *episode.Service
}

func NewHandler(service *episode.Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes mounts the front-desk operations.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	episodes := r.Group("/episodes")
	{
		episodes.POST("", h.CreateEpisode)
		episodes.GET("/today", h.ListToday)
		episodes.GET("/:id", h.GetEpisode)
		episodes.POST("/:id/assign", h.AssignDoctor)
	}
	r.GET("/patients/:id/episodes", h.ListForPatient)
}

// RegisterDoctorRoutes mounts the clinical operations.
func (h *Handler) RegisterDoctorRoutes(r *gin.RouterGroup) {
	episodes := r.Group("/episodes")
	{
		episodes.GET("", h.ListMine)
		episodes.GET("/today", h.ListMineToday)
		episodes.GET("/:id", h.GetEpisode)
		episodes.POST("/:id/complete", h.CompleteEpisode)
	}
}

// CreateEpisode opens an episode from a scanned QR payload. The scan is
// decoded leniently; the patient existence check decides validity.
func (h *Handler) CreateEpisode(c *gin.Context) {
	var req model.CreateEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	ep, err := h.service.CreateEpisodeFromScan(c.Request.Context(), req.QRPayload, model.EpisodeType(req.Type), req.AdminNotes)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(ep))
}

func (h *Handler) GetEpisode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid episode ID"))
		return
	}

	ep, err := h.service.GetEpisode(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(ep))
}

func (h *Handler) AssignDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid episode ID"))
		return
	}

	var req model.AssignDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.AssignDoctor(c.Request.Context(), id, req.DoctorID); err != nil {
		handler.RespondError(c, err)
		return
	}

	ep, err := h.service.GetEpisode(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(ep))
}

func (h *Handler) CompleteEpisode(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid episode ID"))
		return
	}

	if err := h.service.CompleteEpisode(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	ep, err := h.service.GetEpisode(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(ep))
}

func (h *Handler) ListForPatient(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	episodes, err := h.service.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(episodes))
}

func (h *Handler) ListToday(c *gin.Context) {
	dayStart, err := dayStartFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	episodes, err := h.service.ListToday(c.Request.Context(), dayStart)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(episodes))
}

func (h *Handler) ListMine(c *gin.Context) {
	doctorID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	episodes, err := h.service.ListForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(episodes))
}

func (h *Handler) ListMineToday(c *gin.Context) {
	doctorID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	dayStart, err := dayStartFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	episodes, err := h.service.ListTodayForDoctor(c.Request.Context(), doctorID, dayStart)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(episodes))
}

// dayStartFromQuery reads the explicit day boundary for "today" views.
// Callers pass day_start (RFC3339) or tz (IANA name, midnight of the
// current day there). The default is midnight UTC, never the server's
// local wall clock.
func dayStartFromQuery(c *gin.Context) (time.Time, error) {
	if raw := c.Query("day_start"); raw != "" {
		return time.Parse(time.RFC3339, raw)
	}

	loc := time.UTC
	if tz := c.Query("tz"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, err
		}
		loc = parsed
	}
	return episode.DayStart(time.Now().In(loc)), nil
}
