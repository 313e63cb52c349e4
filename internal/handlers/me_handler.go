package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonkit/salon-scheduler/internal/middleware"
	"github.com/salonkit/salon-scheduler/internal/models"
)

type MeHandler struct {
	db *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler {
	return &MeHandler{db: db}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	staffIDVal, exists := c.Get(middleware.ContextStaffID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "staff_not_in_context"})
		return
	}

	staffID, ok := staffIDVal.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_staff_id_type"})
		return
	}

	locationID := c.MustGet(middleware.ContextLocationID).(uint)

	var staff models.Staff
	if err := h.db.First(&staff, staffID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "staff_not_found"})
		return
	}

	var location models.Location
	if err := h.db.First(&location, locationID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "location_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"staff": gin.H{
			"id":              staff.ID,
			"name":            staff.Name,
			"email":           staff.Email,
			"phone":           staff.Phone,
			"role":            staff.Role,
			"calendar_color":  staff.CalendarColor,
			"online_bookable": staff.OnlineBookable,
		},
		"location": gin.H{
			"id":       location.ID,
			"name":     location.Name,
			"slug":     location.Slug,
			"phone":    location.Phone,
			"address":  location.Address,
			"timezone": location.Timezone,
		},
	})
}
