package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careflowhq/careflow-api/internal/handler"
	"github.com/careflowhq/careflow-api/internal/middleware"
	"github.com/careflowhq/careflow-api/internal/service/episode"
	"github.com/careflowhq/careflow-api/internal/service/patient"
	"github.com/careflowhq/careflow-api/internal/service/record"
)

type Handler struct {
	service    *patient.Service
	episodeSvc *episode.Service
	recordSvc  *record.Service
}

func NewHandler(service *patient.Service, episodeSvc *episode.Service, recordSvc *record.Service) *Handler {
	return &Handler{
		service:    service,
		episodeSvc: episodeSvc,
		recordSvc:  recordSvc,
	}
}

// RegisterAdminRoutes mounts front-desk lookups.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/patients", h.ListPatients)
	r.GET("/patients/:id", h.GetPatient)
}

// RegisterPatientRoutes mounts the patient's own dashboard: profile
// with QR payload, episode history, record history.
func (h *Handler) RegisterPatientRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.MyProfile)
	r.GET("/episodes", h.MyEpisodes)
	r.GET("/records", h.MyRecords)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.service.ListPatients(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) MyProfile(c *gin.Context) {
	patientID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) MyEpisodes(c *gin.Context) {
	patientID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	episodes, err := h.episodeSvc.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(episodes))
}

func (h *Handler) MyRecords(c *gin.Context) {
	patientID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	records, err := h.recordSvc.ListForPatient(c.Request.Context(), patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}
