package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/careflowhq/careflow-api/internal/handler"
	authHandler "github.com/careflowhq/careflow-api/internal/handler/auth"
	doctorHandler "github.com/careflowhq/careflow-api/internal/handler/doctor"
	episodeHandler "github.com/careflowhq/careflow-api/internal/handler/episode"
	patientHandler "github.com/careflowhq/careflow-api/internal/handler/patient"
	recordHandler "github.com/careflowhq/careflow-api/internal/handler/record"
	"github.com/careflowhq/careflow-api/internal/middleware"
	"github.com/careflowhq/careflow-api/internal/model"
)

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORS           middleware.CORSConfig
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	h        *handler.Handler
	authH    *authHandler.Handler
	episodeH *episodeHandler.Handler
	patientH *patientHandler.Handler
	doctorH  *doctorHandler.Handler
	recordH  *recordHandler.Handler
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func newRouterMetrics() *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "careflow",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careflow",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	h *handler.Handler,
	authH *authHandler.Handler,
	episodeH *episodeHandler.Handler,
	patientH *patientHandler.Handler,
	doctorH *doctorHandler.Handler,
	recordH *recordHandler.Handler,
	cfg Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidators()
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		h:        h,
		authH:    authH,
		episodeH: episodeH,
		patientH: patientH,
		doctorH:  doctorH,
		recordH:  recordH,
		metrics:  newRouterMetrics(),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.CORS(cfg.CORS),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   cfg.RateLimitRPS,
		Burst: cfg.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) Setup() {
	r.engine.GET("/healthz", r.h.HealthCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	r.authH.RegisterRoutes(api)

	protected := api.Group("", r.auth.Authenticate())
	r.authH.RegisterProtectedRoutes(protected)

	admin := protected.Group("/admin", r.auth.RequireRole(model.RoleAdmin))
	r.episodeH.RegisterAdminRoutes(admin)
	r.patientH.RegisterAdminRoutes(admin)
	r.doctorH.RegisterAdminRoutes(admin)

	doctor := protected.Group("/doctor", r.auth.RequireRole(model.RoleDoctor))
	r.episodeH.RegisterDoctorRoutes(doctor)
	r.recordH.RegisterDoctorRoutes(doctor)
	r.doctorH.RegisterDoctorRoutes(doctor)

	me := protected.Group("/me", r.auth.RequireRole(model.RolePatient))
	r.patientH.RegisterPatientRoutes(me)
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
