package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"winefeed/internal/service"
	"winefeed/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	requests   *service.RequestService
	router     *service.RouterService
	offers     *service.OfferService
	acceptance *service.AcceptanceService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	requests *service.RequestService,
	router *service.RouterService,
	offers *service.OfferService,
	acceptance *service.AcceptanceService,
) *Handler {
	return &Handler{
		requests:   requests,
		router:     router,
		offers:     offers,
		acceptance: acceptance,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/quote-requests", h.createQuoteRequest)
	router.GET("/quote-requests/:id", h.getQuoteRequest)
	router.POST("/quote-requests/:id/dispatch", h.dispatchQuoteRequest)
	router.GET("/quote-requests/:id/dispatch", h.getDispatch)
	router.POST("/quote-requests/:id/offers", h.createOffer)
	router.GET("/quote-requests/:id/offers", h.listOffers)
	router.GET("/suppliers/:id/quote-requests", h.listSupplierRequests)
	router.POST("/offers/:id/accept", h.acceptOffer)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type createQuoteRequestBody struct {
	RestaurantID        int64      `json:"restaurantId" binding:"required"`
	Freetext            string     `json:"freetext" binding:"required"`
	BudgetPerBottleSek  *float64   `json:"budgetPerBottleSek,omitempty"`
	Quantity            *int       `json:"quantity,omitempty"`
	DeliveryBy          *time.Time `json:"deliveryBy,omitempty"`
	SpecialRequirements []string   `json:"specialRequirements,omitempty"`
}

// createQuoteRequest handles quote request creation
func (h *Handler) createQuoteRequest(c *gin.Context) {
	var body createQuoteRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	in := service.CreateRequestInput{
		RestaurantID:        body.RestaurantID,
		Freetext:            body.Freetext,
		Quantity:            body.Quantity,
		DeliveryBy:          body.DeliveryBy,
		SpecialRequirements: body.SpecialRequirements,
	}
	if body.BudgetPerBottleSek != nil {
		ore := oreFromSek(*body.BudgetPerBottleSek)
		in.BudgetPerBottleOre = &ore
	}

	request, err := h.requests.CreateRequest(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// getQuoteRequest handles get quote request by ID
func (h *Handler) getQuoteRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	request, err := h.requests.GetRequest(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

type dispatchBody struct {
	MaxMatches     int `json:"maxMatches,omitempty"`
	MinScore       int `json:"minScore,omitempty"`
	ExpiresInHours int `json:"expiresInHours,omitempty"`
}

// dispatchQuoteRequest routes a request and persists its assignments
func (h *Handler) dispatchQuoteRequest(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body dispatchBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}
	}

	opts := service.RouteOptions{
		MaxMatches: body.MaxMatches,
		MinScore:   body.MinScore,
		ExpiresIn:  time.Duration(body.ExpiresInHours) * time.Hour,
	}

	result, err := h.router.Dispatch(c.Request.Context(), id, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"assignmentsCreated": result.AssignmentsCreated,
		"matches":            result.Matches,
		"expiresAt":          result.ExpiresAt,
	})
}

// getDispatch returns the dispatch status, or a non-persisting routing
// preview when ?preview=true.
func (h *Handler) getDispatch(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if c.Query("preview") == "true" {
		opts := service.RouteOptions{}
		if v := c.Query("minScore"); v != "" {
			opts.MinScore, _ = strconv.Atoi(v)
		}
		if v := c.Query("maxMatches"); v != "" {
			opts.MaxMatches, _ = strconv.Atoi(v)
		}

		preview, err := h.router.Route(c.Request.Context(), id, opts)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"preview": preview})
		return
	}

	status, err := h.router.GetDispatchStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type createOfferBody struct {
	SupplierID           int64     `json:"supplierId" binding:"required"`
	SupplierWineID       int64     `json:"supplierWineId" binding:"required"`
	OfferedPriceExVatSek float64   `json:"offeredPriceExVatSek" binding:"required"`
	VatRate              *int      `json:"vatRate,omitempty"`
	Quantity             int       `json:"quantity" binding:"required"`
	DeliveryDate         time.Time `json:"deliveryDate" binding:"required"`
	LeadTimeDays         int       `json:"leadTimeDays" binding:"required"`
	Notes                string    `json:"notes,omitempty"`
}

// createOffer handles supplier offer submission
func (h *Handler) createOffer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body createOfferBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	vatRate := 25
	if body.VatRate != nil {
		vatRate = *body.VatRate
	}

	offer, err := h.offers.CreateOffer(c.Request.Context(), service.CreateOfferInput{
		QuoteRequestID: id,
		SupplierID:     body.SupplierID,
		WineID:         body.SupplierWineID,
		PriceExVatOre:  oreFromSek(body.OfferedPriceExVatSek),
		VatRate:        vatRate,
		Quantity:       body.Quantity,
		DeliveryDate:   body.DeliveryDate,
		LeadTimeDays:   body.LeadTimeDays,
		Notes:          body.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

// listOffers handles the restaurant comparison listing
func (h *Handler) listOffers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	listing, err := h.offers.ListOffersForRequest(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// listSupplierRequests handles the supplier inbox; reading marks unseen
// assignments VIEWED.
func (h *Handler) listSupplierRequests(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	activeOnly := c.Query("status") == "active"

	rows, err := h.offers.ListAssignedRequests(c.Request.Context(), id, activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": rows, "total": len(rows)})
}

type acceptOfferBody struct {
	RestaurantID int64 `json:"restaurantId" binding:"required"`
}

// acceptOffer handles offer acceptance
func (h *Handler) acceptOffer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var body acceptOfferBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.acceptance.AcceptOffer(c.Request.Context(), id, body.RestaurantID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"commercialIntent": result.CommercialIntent,
		"order":            result.Order,
	})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  service.CodeValidation,
			"error": "invalid id in path",
		})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    service.CodeValidation,
		"error":   "invalid request body",
		"details": err.Error(),
	})
}

// respondError maps business errors to their HTTP status; anything else is
// an infrastructure failure and stays a 500.
func respondError(c *gin.Context, err error) {
	if be, ok := service.AsError(err); ok {
		c.JSON(statusForCode(be.Code), gin.H{
			"code":  be.Code,
			"error": be.Message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "internal error",
	})
}

func statusForCode(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeTenantIsolation, service.CodeNoAssignment, service.CodeAssignmentExpired:
		return http.StatusForbidden
	case service.CodeAlreadyDispatched, service.CodeAlreadyResponded, service.CodeAlreadyAccepted:
		return http.StatusConflict
	case service.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// oreFromSek converts a decimal SEK amount to integer öre once, at the API
// edge; everything downstream is integer math.
func oreFromSek(sek float64) int64 {
	return int64(math.Round(sek * 100))
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
