package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salon-scheduler/internal/middleware"
	"github.com/salonkit/salon-scheduler/internal/models"
)

type CustomerHandler struct {
	db *gorm.DB
}

func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// ======================================================
// LIST CUSTOMERS (RECEPÇÃO)
// ======================================================
func (h *CustomerHandler) List(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("location_id = ?", locationID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var customers []models.Customer
	if err := q.
		Order("created_at DESC").
		Find(&customers).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed_to_list_customers",
		})
		return
	}

	c.JSON(http.StatusOK, customers)
}

// Consents mostra o estado atual de consentimento por canal — a tela
// de detalhe do cliente usa isso para montar os toggles.
func (h *CustomerHandler) Consents(c *gin.Context) {
	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	customerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_customer_id"})
		return
	}

	var customer models.Customer
	if err := h.db.
		Where("id = ? AND location_id = ?", customerID, locationID).
		First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer_not_found"})
		return
	}

	var consents []models.Consent
	if err := h.db.
		Where("customer_id = ? AND location_id = ?", customerID, locationID).
		Order("type ASC").
		Find(&consents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_consents"})
		return
	}

	var permissions []models.BookingPermission
	if err := h.db.
		Where("customer_id = ? AND location_id = ?", customerID, locationID).
		Find(&permissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_permissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customer":    customer,
		"consents":    consents,
		"permissions": permissions,
	})
}
