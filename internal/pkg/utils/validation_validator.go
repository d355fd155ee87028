package utils

import (
	"labbridge-service/internal/pkg/constvars"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("test_code", validateTestCode)
	validate.RegisterValidation("dx_code", validateDiagnosisCode)
	validate.RegisterValidation("npi", validateNPI)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validatePhoneNumber(fl validator.FieldLevel) bool {
	phoneNumber := fl.Field().String()
	re := regexp.MustCompile(constvars.RegexPhoneNumberGeneral)
	return re.MatchString(phoneNumber)
}

func validateTestCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	re := regexp.MustCompile(constvars.RegexLabTestCode)
	return re.MatchString(code)
}

func validateDiagnosisCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	re := regexp.MustCompile(constvars.RegexICD10Code)
	return re.MatchString(code)
}

func validateNPI(fl validator.FieldLevel) bool {
	npi := fl.Field().String()
	re := regexp.MustCompile(constvars.RegexNPI)
	return re.MatchString(npi)
}
