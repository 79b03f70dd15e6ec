package record

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careflowhq/careflow-api/internal/handler"
	"github.com/careflowhq/careflow-api/internal/middleware"
	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/service/episode"
	"github.com/careflowhq/careflow-api/internal/service/record"
)

type Handler struct {
	service    *record.Service
	episodeSvc *episode.Service
}

func NewHandler(service *record.Service, episodeSvc *episode.Service) *Handler {
	return &Handler{service: service, episodeSvc: episodeSvc}
}

// RegisterDoctorRoutes mounts the ledger endpoints for the authoring
// doctor.
func (h *Handler) RegisterDoctorRoutes(r *gin.RouterGroup) {
	r.POST("/episodes/:id/records", h.AddRecord)
	r.GET("/episodes/:id/records", h.ListForEpisode)
	r.GET("/patients/:id/records", h.ListForPatient)
}

func (h *Handler) AddRecord(c *gin.Context) {
	episodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid episode ID"))
		return
	}

	doctorID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	var req model.CreateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	ep, err := h.episodeSvc.GetEpisode(c.Request.Context(), episodeID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	rec, err := h.service.AddRecord(c.Request.Context(), episodeID, ep.PatientID, doctorID, req.Diagnosis, req.Prescription, req.Notes)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rec))
}

func (h *Handler) ListForEpisode(c *gin.Context) {
	episodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid episode ID"))
		return
	}

	records, err := h.service.ListForEpisode(c.Request.Context(), episodeID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) ListForPatient(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	records, err := h.service.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}
