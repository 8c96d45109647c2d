package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/rBrown1405/zentry-pos-sub001/internal/identifier"
	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterValidation("business_type", validateBusinessType)
	v.RegisterValidation("role", validateRole)
	v.RegisterValidation("connection_code", validateConnectionCode)
	v.RegisterValidation("staff_id", validateStaffID)

	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func validateBusinessType(fl validator.FieldLevel) bool {
	return model.BusinessType(fl.Field().String()).IsValid()
}

func validateRole(fl validator.FieldLevel) bool {
	_, err := model.ParseRole(fl.Field().String())
	return err == nil
}

func validateConnectionCode(fl validator.FieldLevel) bool {
	return identifier.ValidConnectionCode(fl.Field().String())
}

func validateStaffID(fl validator.FieldLevel) bool {
	return identifier.ValidStaffID(fl.Field().String())
}
