package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careflowhq/careflow-api/internal/handler"
	"github.com/careflowhq/careflow-api/internal/middleware"
	"github.com/careflowhq/careflow-api/internal/model"
	"github.com/careflowhq/careflow-api/internal/service/doctor"
)

type Handler struct {
	service *doctor.Service
}

func NewHandler(service *doctor.Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes mounts the doctor roster used when assigning.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/doctors", h.ListDoctors)
	r.GET("/doctors/available", h.ListAvailableDoctors)
	r.GET("/doctors/:id", h.GetDoctor)
}

// RegisterDoctorRoutes mounts the doctor's own availability toggle.
func (h *Handler) RegisterDoctorRoutes(r *gin.RouterGroup) {
	r.PUT("/availability", h.SetAvailability)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.ListDoctors(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) ListAvailableDoctors(c *gin.Context) {
	doctors, err := h.service.ListAvailableDoctors(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	d, err := h.service.GetDoctor(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(d))
}

func (h *Handler) SetAvailability(c *gin.Context) {
	doctorID, ok := middleware.AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	var req model.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.SetAvailability(c.Request.Context(), doctorID, *req.IsAvailable); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
