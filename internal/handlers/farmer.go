package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/agrolink/internal/config"
	"github.com/example/agrolink/internal/logger"
	"github.com/example/agrolink/internal/middleware"
	"github.com/example/agrolink/internal/services"
	"github.com/example/agrolink/internal/utils"
)

// FarmerHandler bundles dependencies for farmer endpoints.
type FarmerHandler struct {
	farmers *services.FarmerService
	cfg     *config.Config
}

// NewFarmerHandler constructs a FarmerHandler.
func NewFarmerHandler(farmers *services.FarmerService, cfg *config.Config) *FarmerHandler {
	return &FarmerHandler{farmers: farmers, cfg: cfg}
}

// Register creates a new farmer (and optional farm) and sends the first OTP.
func (h *FarmerHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterFarmerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	summary, otpSent, err := h.farmers.Register(req)
	if err != nil {
		return err
	}

	if !otpSent {
		logger.Log.Warnf("registration for %s succeeded but OTP was not delivered", summary.PhoneNumber)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"data":     summary,
		"otp_sent": otpSent,
	})
}

type loginRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// Login sends a login OTP to an already-registered farmer. The actual login
// completes when the farmer verifies the code.
func (h *FarmerHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.farmers.SendLoginOTP(req.PhoneNumber); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}

type verifyPhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
	OTPCode     string `json:"otp_code"`
}

// VerifyPhone consumes the OTP and, on success, establishes the session.
func (h *FarmerHandler) VerifyPhone(c *fiber.Ctx) error {
	var req verifyPhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ok, err := h.farmers.ValidateOTP(req.PhoneNumber, req.OTPCode)
	if err != nil {
		return err
	}
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Phone verification failed",
		})
	}

	farmer, err := h.farmers.FarmerByPhone(req.PhoneNumber)
	if err != nil {
		return err
	}

	session := utils.SessionData{
		FarmerID:    farmer.ID,
		DisplayName: farmer.DisplayName(),
	}

	if farm, err := h.farmers.FirstFarm(farmer.ID); err == nil && farm != nil {
		farmID := farm.ID
		session.FarmID = &farmID
	}

	if err := middleware.SetSessionCookie(c, h.cfg, session); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Phone verified successfully",
	})
}

type resendOTPRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// ResendOTP issues a fresh OTP for a registered phone number. Used both for
// login retries and for registrations whose first delivery failed.
func (h *FarmerHandler) ResendOTP(c *fiber.Ctx) error {
	var req resendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.farmers.SendLoginOTP(req.PhoneNumber); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent successfully",
	})
}

// Dashboard greets the logged-in farmer.
func (h *FarmerHandler) Dashboard(c *fiber.Ctx) error {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Not logged in")
	}

	return c.SendString("Welcome back " + session.DisplayName)
}

// Logout clears the session cookie.
func (h *FarmerHandler) Logout(c *fiber.Ctx) error {
	middleware.ClearSessionCookie(c)
	return c.SendString("Logged out")
}
