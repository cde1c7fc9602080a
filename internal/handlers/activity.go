package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/agrolink/internal/middleware"
	"github.com/example/agrolink/internal/models"
	"github.com/example/agrolink/internal/utils"
)

// ActivityHandler manages farm activity records.
type ActivityHandler struct {
	db *gorm.DB
}

// NewActivityHandler constructs an ActivityHandler.
func NewActivityHandler(db *gorm.DB) *ActivityHandler {
	return &ActivityHandler{db: db}
}

type createActivityRequest struct {
	FarmID              string   `json:"farm_id"`
	ActivityType        string   `json:"activity_type"`
	Description         string   `json:"description"`
	ActivityDate        string   `json:"activity_date"` // YYYY-MM-DD
	Status              string   `json:"status"`
	CropName            *string  `json:"crop_name"`
	FieldPlot           *string  `json:"field_plot"`
	InputsUsed          *string  `json:"inputs_used"`
	QuantityMeasured    *float64 `json:"quantity_measured"`
	UnitMeasured        *string  `json:"unit_measured"`
	ExpectedHarvestDate string   `json:"expected_harvest_date"`
	Notes               *string  `json:"notes"`
}

// CreateActivity records a farm activity for the logged-in farmer.
func (h *ActivityHandler) CreateActivity(c *fiber.Ctx) error {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Not logged in")
	}

	var req createActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.ActivityType == "" || req.Description == "" {
		return fiber.NewError(fiber.StatusBadRequest, "activity_type and description are required")
	}

	activityDate, err := time.Parse("2006-01-02", req.ActivityDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "activity_date must be YYYY-MM-DD")
	}

	activity := models.FarmActivity{
		FarmerID:         session.FarmerID,
		ActivityType:     req.ActivityType,
		Description:      req.Description,
		ActivityDate:     activityDate,
		Status:           req.Status,
		CropName:         req.CropName,
		FieldPlot:        req.FieldPlot,
		InputsUsed:       req.InputsUsed,
		QuantityMeasured: req.QuantityMeasured,
		UnitMeasured:     req.UnitMeasured,
		Notes:            req.Notes,
	}

	if activity.Status == "" {
		activity.Status = "planned"
	}

	if req.FarmID != "" {
		if farmID, err := uuid.Parse(req.FarmID); err == nil {
			activity.FarmID = &farmID
		} else {
			return fiber.NewError(fiber.StatusBadRequest, "invalid farm_id")
		}
	}

	if req.ExpectedHarvestDate != "" {
		harvest, err := time.Parse("2006-01-02", req.ExpectedHarvestDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "expected_harvest_date must be YYYY-MM-DD")
		}
		activity.ExpectedHarvestDate = &harvest
	}

	if err := h.db.Create(&activity).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": activity})
}

// ListActivities returns the logged-in farmer's activities, newest first.
func (h *ActivityHandler) ListActivities(c *fiber.Ctx) error {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Not logged in")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.FarmActivity{}).Where("farmer_id = ?", session.FarmerID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var activities []models.FarmActivity
	if err := query.Order("activity_date desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&activities).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    activities,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}
