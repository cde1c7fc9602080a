package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/agrolink/internal/apperrors"
	"github.com/example/agrolink/internal/models"
)

const testPhone = "08012345678"

func newFarmerService(t *testing.T) (*FarmerService, *fakeSMS) {
	t.Helper()
	sms := &fakeSMS{}
	return NewFarmerService(newTestDB(t), sms, 30*time.Minute), sms
}

func floatPtr(v float64) *float64 { return &v }

func registerRequest() RegisterFarmerRequest {
	return RegisterFarmerRequest{
		PhoneNumber: testPhone,
		FirstName:   "Ada",
		LastName:    "Obi",
		FarmData: &FarmPayload{
			FarmName:         "Obi Family Farm",
			Latitude:         floatPtr(6.5244),
			Longitude:        floatPtr(3.3792),
			AddressText:      "Ikorodu, Lagos",
			FarmSizeHectares: floatPtr(2.5),
			PrimaryCrops:     []string{"cassava", "maize"},
		},
	}
}

func latestVerification(t *testing.T, s *FarmerService, phone string) models.PhoneVerification {
	t.Helper()
	var v models.PhoneVerification
	require.NoError(t, s.db.Where("phone_number = ?", phone).Order("created_at desc").First(&v).Error)
	return v
}

func TestRegisterCreatesFarmerAndFarm(t *testing.T) {
	svc, sms := newFarmerService(t)

	summary, otpSent, err := svc.Register(registerRequest())
	require.NoError(t, err)
	assert.True(t, otpSent)
	assert.Equal(t, testPhone, summary.PhoneNumber)
	assert.Equal(t, models.VerificationPending, summary.VerificationStatus)
	assert.NotEmpty(t, summary.ID)

	farmer, err := svc.FarmerByPhone(testPhone)
	require.NoError(t, err)
	assert.Equal(t, "Web", farmer.RegistrationChannel)

	farm, err := svc.FirstFarm(farmer.ID)
	require.NoError(t, err)
	require.NotNil(t, farm)
	assert.Equal(t, "subsistence", farm.FarmType)
	require.NotNil(t, farm.Location)
	assert.Equal(t, "POINT(3.3792 6.5244)", *farm.Location)
	assert.Equal(t, models.StringList{"cassava", "maize"}, farm.PrimaryCrops)

	// The first OTP went out as part of registration.
	require.Len(t, sms.sent, 1)
	assert.Equal(t, testPhone, sms.sent[0].to)
	assert.Regexp(t, `^Your otp code is \d{6}$`, sms.sent[0].body)

	verification := latestVerification(t, svc, testPhone)
	assert.False(t, verification.Verified)
	assert.Equal(t, 0, verification.Attempts)
	assert.True(t, verification.ExpiresAt.After(time.Now()))
}

func TestRegisterWithoutFarm(t *testing.T) {
	svc, _ := newFarmerService(t)

	req := registerRequest()
	req.FarmData = nil

	_, _, err := svc.Register(req)
	require.NoError(t, err)

	farmer, err := svc.FarmerByPhone(testPhone)
	require.NoError(t, err)

	farm, err := svc.FirstFarm(farmer.ID)
	require.NoError(t, err)
	assert.Nil(t, farm)
}

func TestRegisterLocationNeedsBothCoordinates(t *testing.T) {
	svc, _ := newFarmerService(t)

	req := registerRequest()
	req.FarmData.Longitude = nil

	_, _, err := svc.Register(req)
	require.NoError(t, err)

	farmer, err := svc.FarmerByPhone(testPhone)
	require.NoError(t, err)

	farm, err := svc.FirstFarm(farmer.ID)
	require.NoError(t, err)
	require.NotNil(t, farm)
	assert.Nil(t, farm.Location)
}

func TestRegisterEmptyPhone(t *testing.T) {
	svc, _ := newFarmerService(t)

	_, _, err := svc.Register(RegisterFarmerRequest{FirstName: "Ada"})
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc, _ := newFarmerService(t)

	_, _, err := svc.Register(registerRequest())
	require.NoError(t, err)

	_, _, err = svc.Register(registerRequest())
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)

	var farmers int64
	require.NoError(t, svc.db.Model(&models.Farmer{}).Count(&farmers).Error)
	assert.EqualValues(t, 1, farmers)

	var farms int64
	require.NoError(t, svc.db.Model(&models.Farm{}).Count(&farms).Error)
	assert.EqualValues(t, 1, farms)
}

func TestRegisterRollsBackFarmerWhenFarmInsertFails(t *testing.T) {
	svc, _ := newFarmerService(t)

	// Sabotage the farm insert so the transaction has to roll back.
	require.NoError(t, svc.db.Migrator().DropTable(&models.Farm{}))

	_, _, err := svc.Register(registerRequest())
	require.Error(t, err)

	var farmers int64
	require.NoError(t, svc.db.Model(&models.Farmer{}).Count(&farmers).Error)
	assert.EqualValues(t, 0, farmers, "farmer row must not survive a failed farm insert")
}

func TestRegisterSurvivesOTPDeliveryFailure(t *testing.T) {
	svc, sms := newFarmerService(t)
	sms.fail = true

	summary, otpSent, err := svc.Register(registerRequest())
	require.NoError(t, err)
	assert.False(t, otpSent)
	assert.Equal(t, testPhone, summary.PhoneNumber)

	// The committed registration is never rolled back by a failed send.
	_, err = svc.FarmerByPhone(testPhone)
	require.NoError(t, err)
}

func TestIssueOTPFailsClosedOnGatewayError(t *testing.T) {
	svc, sms := newFarmerService(t)
	sms.fail = true

	err := svc.IssueOTP(testPhone)
	require.Error(t, err)
}

func TestIssueOTPCleansExpiredRows(t *testing.T) {
	svc, _ := newFarmerService(t)

	expired := models.PhoneVerification{
		PhoneNumber: testPhone,
		OTPCode:     "111111",
		ExpiresAt:   time.Now().Add(-time.Hour),
	}
	require.NoError(t, svc.db.Create(&expired).Error)

	require.NoError(t, svc.IssueOTP(testPhone))

	var count int64
	require.NoError(t, svc.db.Model(&models.PhoneVerification{}).
		Where("phone_number = ?", testPhone).Count(&count).Error)
	assert.EqualValues(t, 1, count, "expired row should have been deleted")

	verification := latestVerification(t, svc, testPhone)
	assert.NotEqual(t, "111111", verification.OTPCode)
	assert.False(t, verification.Verified)
	assert.Equal(t, 0, verification.Attempts)
}

func TestValidateOTPUnknownPhone(t *testing.T) {
	svc, _ := newFarmerService(t)

	ok, err := svc.ValidateOTP("08099999999", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateOTPWrongCodeIncrementsAttempts(t *testing.T) {
	svc, _ := newFarmerService(t)

	_, _, err := svc.Register(registerRequest())
	require.NoError(t, err)

	ok, err := svc.ValidateOTP(testPhone, "000000")
	require.NoError(t, err)
	assert.False(t, ok)

	verification := latestVerification(t, svc, testPhone)
	assert.Equal(t, 1, verification.Attempts)
}

func TestValidateOTPExhaustsAfterThreeFailures(t *testing.T) {
	svc, _ := newFarmerService(t)

	_, _, err := svc.Register(registerRequest())
	require.NoError(t, err)
	code := latestVerification(t, svc, testPhone).OTPCode

	for i := 0; i < models.MaxOTPAttempts; i++ {
		ok, err := svc.ValidateOTP(testPhone, "000000")
		require.NoError(t, err)
		assert.False(t, ok)
	}

	// Even the right code is dead once the attempt limit is reached.
	ok, err := svc.ValidateOTP(testPhone, code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateOTPExpiredCode(t *testing.T) {
	svc, _ := newFarmerService(t)

	_, _, err := svc.Register(registerRequest())
	require.NoError(t, err)

	verification := latestVerification(t, svc, testPhone)
	require.NoError(t, svc.db.Model(&models.PhoneVerification{}).
		Where("id = ?", verification.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	ok, err := svc.ValidateOTP(testPhone, verification.OTPCode)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateOTPSuccessIsSingleUse(t *testing.T) {
	svc, _ := newFarmerService(t)

	_, _, err := svc.Register(registerRequest())
	require.NoError(t, err)
	code := latestVerification(t, svc, testPhone).OTPCode

	ok, err := svc.ValidateOTP(testPhone, code)
	require.NoError(t, err)
	assert.True(t, ok)

	verification := latestVerification(t, svc, testPhone)
	assert.True(t, verification.Verified)

	farmer, err := svc.FarmerByPhone(testPhone)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPhoneVerified, farmer.VerificationStatus)

	// Replaying the consumed code fails.
	ok, err = svc.ValidateOTP(testPhone, code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateOTPOnlyLatestCodeCounts(t *testing.T) {
	svc, _ := newFarmerService(t)

	_, _, err := svc.Register(registerRequest())
	require.NoError(t, err)
	firstCode := latestVerification(t, svc, testPhone).OTPCode

	// Reissue; force distinct creation times so ordering is deterministic.
	require.NoError(t, svc.db.Model(&models.PhoneVerification{}).
		Where("phone_number = ?", testPhone).
		Update("created_at", time.Now().Add(-time.Minute)).Error)
	require.NoError(t, svc.IssueOTP(testPhone))
	secondCode := latestVerification(t, svc, testPhone).OTPCode

	if firstCode != secondCode {
		ok, err := svc.ValidateOTP(testPhone, firstCode)
		require.NoError(t, err)
		assert.False(t, ok, "superseded code must not verify")
	}

	ok, err := svc.ValidateOTP(testPhone, secondCode)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSendLoginOTP(t *testing.T) {
	svc, sms := newFarmerService(t)

	err := svc.SendLoginOTP("")
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)

	err = svc.SendLoginOTP("08055555555")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind, "no auto-registration on login")

	_, _, err = svc.Register(registerRequest())
	require.NoError(t, err)
	sms.sent = nil

	require.NoError(t, svc.SendLoginOTP(testPhone))
	require.Len(t, sms.sent, 1)
}

func TestCompleteLogin(t *testing.T) {
	svc, _ := newFarmerService(t)

	_, _, err := svc.Register(registerRequest())
	require.NoError(t, err)
	code := latestVerification(t, svc, testPhone).OTPCode

	_, err = svc.CompleteLogin(testPhone, "000000")
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "OTP invalid", appErr.Message)

	// The failed attempt above consumed one of three tries; the right code
	// still works.
	farmer, err := svc.CompleteLogin(testPhone, code)
	require.NoError(t, err)
	assert.Equal(t, testPhone, farmer.PhoneNumber)
	assert.Equal(t, "Ada Obi", farmer.DisplayName())
}
