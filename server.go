package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/vendex_backend/config"
	"github.com/mmdatafocus/vendex_backend/mlservice"
	"github.com/mmdatafocus/vendex_backend/models"
	"github.com/mmdatafocus/vendex_backend/utils"
	"github.com/mmdatafocus/vendex_backend/workflow"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, utils.ErrorInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, utils.ErrorInsufficientData):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, utils.ErrorInvalidState),
		errors.Is(err, utils.ErrorAlreadyExists),
		errors.Is(err, utils.ErrorInsufficientStock):
		status = http.StatusConflict
	case errors.Is(err, utils.ErrorIntegrationFailure):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func dateQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		raw = time.Now().Format("2006-01-02")
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

func registerRoutes(r *gin.Engine, mlClient *mlservice.Client) {
	rosterProvider := workflow.NewRosterDecisionProvider(mlClient)

	// products
	r.POST("/products", func(c *gin.Context) {
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	})
	r.GET("/products", func(c *gin.Context) {
		products, err := models.ListProducts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	})
	r.GET("/products/:sku", func(c *gin.Context) {
		product, err := models.GetProductBySku(c.Request.Context(), c.Param("sku"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	})
	r.PUT("/products/:sku", func(c *gin.Context) {
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), c.Param("sku"), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	})
	r.DELETE("/products/:sku", func(c *gin.Context) {
		product, err := models.DeactivateProduct(c.Request.Context(), c.Param("sku"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	})

	// stock
	r.GET("/stock/:sku", func(c *gin.Context) {
		onHand, err := models.GetOnHand(c.Request.Context(), c.Param("sku"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sku": c.Param("sku"), "on_hand": onHand})
	})
	r.GET("/stock/:sku/movements", func(c *gin.Context) {
		movements, err := models.GetStockMovements(c.Request.Context(), c.Param("sku"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, movements)
	})
	type stockChange struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	r.POST("/stock/:sku/add", func(c *gin.Context) {
		var input stockChange
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		if err := models.AddStock(c.Request.Context(), c.Param("sku"), input.Quantity); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.POST("/stock/:sku/reduce", func(c *gin.Context) {
		var input stockChange
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		if err := models.ReduceStock(c.Request.Context(), c.Param("sku"), input.Quantity); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	// sales
	r.POST("/sales", func(c *gin.Context) {
		var input models.NewSalesRecord
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		record, err := models.CreateSalesRecord(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	})
	r.GET("/sales", func(c *gin.Context) {
		records, err := models.ListSalesRecords(c.Request.Context(), c.Query("sku"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	})

	// purchase orders
	type newPurchaseOrder struct {
		Items []models.NewPurchaseOrderItem `json:"items" binding:"required"`
	}
	r.POST("/purchase-orders", func(c *gin.Context) {
		var input newPurchaseOrder
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		po, err := models.CreatePurchaseOrder(c.Request.Context(), input.Items, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, po)
	})
	r.GET("/purchase-orders", func(c *gin.Context) {
		orders, err := models.ListPurchaseOrders(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	})
	r.GET("/purchase-orders/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		po, err := models.GetPurchaseOrder(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, po)
	})
	transition := func(fn func(ctx context.Context, id int) (*models.PurchaseOrder, error)) gin.HandlerFunc {
		return func(c *gin.Context) {
			id, ok := idParam(c)
			if !ok {
				return
			}
			po, err := fn(c.Request.Context(), id)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, po)
		}
	}
	r.POST("/purchase-orders/:id/approve", transition(models.ApprovePurchaseOrder))
	r.POST("/purchase-orders/:id/send", transition(models.MarkPurchaseOrderSent))
	r.POST("/purchase-orders/:id/receive", transition(models.MarkPurchaseOrderReceived))
	type finalizeManufacturer struct {
		ManufacturerId int `json:"manufacturer_id" binding:"required"`
	}
	r.POST("/purchase-orders/:id/finalize-manufacturer", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input finalizeManufacturer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		po, err := models.FinalizePurchaseOrderManufacturer(c.Request.Context(), id, input.ManufacturerId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, po)
	})
	r.DELETE("/purchase-orders/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := models.DeletePurchaseOrder(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	// inventory agent
	r.POST("/inventory/forecast-and-decide/:sku", func(c *gin.Context) {
		result, err := workflow.ForecastAndDecide(c.Request.Context(), mlClient, c.Param("sku"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})
	r.POST("/inventory/forecast-and-decide", func(c *gin.Context) {
		results, err := workflow.BulkForecastAndDecide(c.Request.Context(), mlClient)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, results)
	})

	// purchase order AI documents
	r.POST("/ai/purchase-orders/:id/generate-receipt", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		pdf, err := workflow.GeneratePurchaseOrderReceipt(c.Request.Context(), mlClient, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=receipt_"+strconv.Itoa(id)+".pdf")
		c.Data(http.StatusOK, "application/pdf", pdf)
	})
	r.POST("/ai/purchase-orders/:id/recommend-manufacturer", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var mode models.PaymentMode
		if err := mode.UnmarshalText([]byte(c.DefaultQuery("preferredPaymentMode", string(models.PaymentModeCredit)))); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment mode"})
			return
		}
		recommendation, err := workflow.RecommendManufacturer(c.Request.Context(), mlClient, id, mode)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", recommendation)
	})
	r.POST("/ai/customer/process-intent", func(c *gin.Context) {
		userInput := c.Query("userInput")
		response, err := workflow.ProcessCustomerIntent(c.Request.Context(), mlClient, userInput)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, response)
	})

	// manufacturers
	r.POST("/manufacturers", func(c *gin.Context) {
		var input models.NewManufacturer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		manufacturer, err := models.CreateManufacturer(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, manufacturer)
	})
	r.GET("/manufacturers", func(c *gin.Context) {
		manufacturers, err := models.ListManufacturers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, manufacturers)
	})
	r.GET("/manufacturers/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		manufacturer, err := models.GetManufacturer(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, manufacturer)
	})
	r.PUT("/manufacturers/:id/payment-profile", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.ManufacturerPaymentProfile
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		input.ManufacturerId = id
		profile, err := models.UpsertManufacturerPaymentProfile(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	})
	r.POST("/manufacturers/:id/products", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.ManufacturerProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		input.ManufacturerId = id
		product, err := models.CreateManufacturerProduct(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	})
	r.GET("/manufacturers/:id/products", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		products, err := models.ListManufacturerProducts(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	})
	r.POST("/manufacturers/:id/ratings", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.ManufacturerRating
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		input.ManufacturerId = id
		rating, err := models.CreateManufacturerRating(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rating)
	})
	r.GET("/manufacturers/:id/average-rating", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		avg, err := models.GetManufacturerAverageRating(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"manufacturer_id": id, "average_rating": avg})
	})

	// staff
	r.POST("/staff", func(c *gin.Context) {
		var input models.NewStaff
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		staff, err := models.CreateStaff(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, staff)
	})
	r.GET("/staff", func(c *gin.Context) {
		staff, err := models.ListStaff(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, staff)
	})
	r.GET("/staff/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		staff, err := models.GetStaff(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, staff)
	})
	r.DELETE("/staff/:id", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		staff, err := models.DeactivateStaff(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, staff)
	})
	r.POST("/staff/:id/availability", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.StaffAvailability
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		input.StaffId = id
		window, err := models.CreateStaffAvailability(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, window)
	})
	r.GET("/staff/:id/availability", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		windows, err := models.ListStaffAvailabilities(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, windows)
	})

	// shifts and roster
	r.POST("/shifts", func(c *gin.Context) {
		var input models.NewShift
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		shift, err := models.CreateShift(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, shift)
	})
	r.GET("/shifts", func(c *gin.Context) {
		date, ok := dateQuery(c, "date")
		if !ok {
			return
		}
		shifts, err := models.ListShiftsForDate(c.Request.Context(), date)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, shifts)
	})
	r.POST("/shifts/generate-default", func(c *gin.Context) {
		date, ok := dateQuery(c, "date")
		if !ok {
			return
		}
		shifts, err := models.GenerateDefaultShifts(c.Request.Context(), date)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, shifts)
	})
	type assignStaff struct {
		StaffId int `json:"staff_id" binding:"required"`
	}
	r.POST("/shifts/:id/assign", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input assignStaff
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		shift, err := models.ManuallyAssignStaff(c.Request.Context(), id, input.StaffId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, shift)
	})
	r.POST("/shifts/:id/complete", func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		shift, err := models.CompleteShift(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, shift)
	})
	r.POST("/roster/generate", func(c *gin.Context) {
		date, ok := dateQuery(c, "date")
		if !ok {
			return
		}
		result, err := workflow.GenerateRoster(c.Request.Context(), rosterProvider, date)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server first; app endpoints 503 until dependencies are up.
	r := gin.New()
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Writer.Header().Set("x-correlation-id", cid)
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		logger.WithFields(logrus.Fields{
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"status":        c.Writer.Status(),
			"durationMs":    time.Since(start).Milliseconds(),
			"correlationId": cid,
		}).Info("request")
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))
	r.Use(gin.Recovery())

	registerRoutes(r, mlservice.NewClientFromEnv())

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	// AutoMigrate runs DDL; allow running it as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{"port": port}).Info("listening")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("shutdown: " + err.Error())
	}
}
