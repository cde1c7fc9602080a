package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/agrolink/internal/apperrors"
	"github.com/example/agrolink/internal/logger"
	"github.com/example/agrolink/internal/models"
	"github.com/example/agrolink/internal/utils"
)

// FarmerService drives farmer registration and the OTP verification flow.
type FarmerService struct {
	db     *gorm.DB
	sms    SMSSender
	otpTTL time.Duration
}

// NewFarmerService constructs a FarmerService.
func NewFarmerService(db *gorm.DB, sms SMSSender, otpTTL time.Duration) *FarmerService {
	return &FarmerService{db: db, sms: sms, otpTTL: otpTTL}
}

// FarmPayload is the optional farm record embedded in a registration request.
type FarmPayload struct {
	FarmName         string   `json:"farm_name"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	AddressText      string   `json:"address_text"`
	FarmSizeHectares *float64 `json:"farm_size_hectares"`
	FarmType         string   `json:"farm_type"`
	PrimaryCrops     []string `json:"primary_crops"`
}

// RegisterFarmerRequest is the registration input.
type RegisterFarmerRequest struct {
	PhoneNumber         string       `json:"phone_number"`
	Email               *string      `json:"email"`
	FirstName           string       `json:"first_name"`
	LastName            string       `json:"last_name"`
	RegistrationChannel string       `json:"registration_channel"`
	FarmData            *FarmPayload `json:"farm_data"`
}

// Register creates a farmer and, when farm data is present, its farm in one
// transaction, then issues the first OTP. The returned otpSent flag is false
// when the farmer was persisted but OTP delivery failed; callers retry
// delivery through ResendOTP rather than re-registering.
func (s *FarmerService) Register(req RegisterFarmerRequest) (models.FarmerSummary, bool, error) {
	if req.PhoneNumber == "" {
		return models.FarmerSummary{}, false, apperrors.Validation("Phone number cannot be empty")
	}

	var count int64
	if err := s.db.Model(&models.Farmer{}).Where("phone_number = ?", req.PhoneNumber).Count(&count).Error; err != nil {
		return models.FarmerSummary{}, false, apperrors.Database(err)
	}
	if count > 0 {
		return models.FarmerSummary{}, false, apperrors.Validation("Phone number already registered")
	}

	channel := req.RegistrationChannel
	if channel == "" {
		channel = "Web"
	}

	farmer := models.Farmer{
		PhoneNumber:         req.PhoneNumber,
		Email:               req.Email,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		RegistrationChannel: channel,
		VerificationStatus:  models.VerificationPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&farmer).Error; err != nil {
			return err
		}

		if req.FarmData != nil {
			farm := buildFarm(farmer.ID, req.FarmData)
			if err := tx.Create(&farm).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		// The unique constraint backstops the pre-check under concurrent
		// registration of the same phone number.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.FarmerSummary{}, false, apperrors.Validation("Phone number already registered")
		}
		return models.FarmerSummary{}, false, apperrors.Database(err)
	}

	otpSent := true
	if err := s.IssueOTP(req.PhoneNumber); err != nil {
		logger.Log.WithError(err).Warnf("farmer %s registered but OTP delivery failed", farmer.ID)
		otpSent = false
	}

	return farmer.Summary(), otpSent, nil
}

func buildFarm(farmerID uuid.UUID, data *FarmPayload) models.Farm {
	farm := models.Farm{
		FarmerID:         farmerID,
		FarmName:         data.FarmName,
		AddressText:      data.AddressText,
		FarmSizeHectares: data.FarmSizeHectares,
		FarmType:         data.FarmType,
		PrimaryCrops:     models.StringList(data.PrimaryCrops),
	}

	if farm.FarmType == "" {
		farm.FarmType = "subsistence"
	}

	// The point is stored only when both coordinates are present.
	if data.Latitude != nil && data.Longitude != nil {
		location := fmt.Sprintf("POINT(%v %v)", *data.Longitude, *data.Latitude)
		farm.Location = &location
	}

	return farm
}

// IssueOTP stores a fresh OTP for the phone number and delivers it by SMS.
// Rows whose expiry has passed are cleaned up first. Delivery failure fails
// issuance.
func (s *FarmerService) IssueOTP(phoneNumber string) error {
	code, err := utils.GenerateOTP()
	if err != nil {
		return apperrors.Internal("Failed to generate OTP", err)
	}

	if err := s.db.Where("phone_number = ? AND expires_at < ?", phoneNumber, time.Now()).
		Delete(&models.PhoneVerification{}).Error; err != nil {
		return apperrors.Database(err)
	}

	verification := models.PhoneVerification{
		PhoneNumber: phoneNumber,
		OTPCode:     code,
		ExpiresAt:   time.Now().Add(s.otpTTL),
	}
	if err := s.db.Create(&verification).Error; err != nil {
		return apperrors.Database(err)
	}

	return s.sms.Send(phoneNumber, fmt.Sprintf("Your otp code is %s", code))
}

// ValidateOTP consumes the latest OTP issued for the phone number. It returns
// false, not an error, when the code does not match or the record is already
// verified, expired, or out of attempts. Every failed match increments the
// attempt counter so the 3-attempt limit actually bounds brute force. On
// success the row is marked verified and the farmer advances to
// phone_verified in the same transaction.
func (s *FarmerService) ValidateOTP(phoneNumber, code string) (bool, error) {
	var verification models.PhoneVerification
	err := s.db.Where("phone_number = ?", phoneNumber).
		Order("created_at desc").
		First(&verification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperrors.Database(err)
	}

	if !verification.Usable(time.Now()) {
		return false, nil
	}

	if verification.OTPCode != code {
		if err := s.db.Model(&models.PhoneVerification{}).
			Where("id = ?", verification.ID).
			Update("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
			return false, apperrors.Database(err)
		}
		return false, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PhoneVerification{}).
			Where("id = ?", verification.ID).
			Update("verified", true).Error; err != nil {
			return err
		}

		return tx.Model(&models.Farmer{}).
			Where("phone_number = ?", phoneNumber).
			Update("verification_status", models.VerificationPhoneVerified).Error
	})
	if err != nil {
		return false, apperrors.Database(err)
	}

	return true, nil
}

// SendLoginOTP issues a login OTP for an already-registered farmer. There is
// no auto-registration on login.
func (s *FarmerService) SendLoginOTP(phoneNumber string) error {
	if phoneNumber == "" {
		return apperrors.Validation("Phone number cannot be empty")
	}

	var count int64
	if err := s.db.Model(&models.Farmer{}).Where("phone_number = ?", phoneNumber).Count(&count).Error; err != nil {
		return apperrors.Database(err)
	}
	if count == 0 {
		return apperrors.Validation("Phone number is not registered")
	}

	return s.IssueOTP(phoneNumber)
}

// CompleteLogin validates the OTP and loads the farmer. The failure message is
// deliberately coarse: callers cannot tell a wrong code from an expired or
// exhausted one.
func (s *FarmerService) CompleteLogin(phoneNumber, code string) (*models.Farmer, error) {
	ok, err := s.ValidateOTP(phoneNumber, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Validation("OTP invalid")
	}

	return s.FarmerByPhone(phoneNumber)
}

// FarmerByPhone loads a farmer by phone number.
func (s *FarmerService) FarmerByPhone(phoneNumber string) (*models.Farmer, error) {
	var farmer models.Farmer
	if err := s.db.Where("phone_number = ?", phoneNumber).First(&farmer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Farmer not found")
		}
		return nil, apperrors.Database(err)
	}
	return &farmer, nil
}

// FirstFarm returns the farmer's farm when one was registered, else nil.
func (s *FarmerService) FirstFarm(farmerID uuid.UUID) (*models.Farm, error) {
	var farm models.Farm
	err := s.db.Where("farmer_id = ?", farmerID).Order("created_at asc").First(&farm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Database(err)
	}
	return &farm, nil
}
