package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tulisify/tulisify/internal/entities"
	"github.com/tulisify/tulisify/internal/usecases"
)

const (
	MsgInvalidBody  = "Invalid request body"
	MsgFileTooLarge = "File too large"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerValidators adds the "category" tag to gin's validator engine.
func registerValidators() error {
	registerOnce.Do(func() {
		registerErr = registerCategory(binding.Validator.Engine())
	})
	return registerErr
}

func registerCategory(engine any) error {
	v, ok := engine.(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", engine)
	}
	if err := v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, ok := entities.ParseCategory(fl.Field().String())
		return ok
	}); err != nil {
		return fmt.Errorf("register category validation: %w", err)
	}
	return nil
}

// bindingMessage turns a binding error into the message the API reports.
func bindingMessage(err error) (int, string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, MsgFileTooLarge
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Tag() {
			case "category":
				return http.StatusBadRequest, usecases.MsgInvalidCategory
			}
		}
		return http.StatusBadRequest, MsgInvalidBody
	}

	// year is the only numeric field bound from forms and queries
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return http.StatusBadRequest, usecases.MsgInvalidYear
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "year" {
		return http.StatusBadRequest, usecases.MsgInvalidYear
	}
	return http.StatusBadRequest, MsgInvalidBody
}

// isEmptyBody reports whether err only says the body had nothing to bind.
func isEmptyBody(err error) bool {
	return errors.Is(err, io.EOF)
}
