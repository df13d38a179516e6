package handler

import "github.com/go-playground/validator/v10"

func formatValidationErrors(err error) map[string]string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
