package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/hyperjump/aidex/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondData(w http.ResponseWriter, status int, data interface{}, page *models.Pagination) {
	s.respondJSON(w, status, models.Envelope[interface{}]{Data: data, Success: true, Pagination: page})
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, models.Envelope[interface{}]{Success: false, Message: message})
}

// normalizer is implemented by request bodies that clean themselves up
// before validation.
type normalizer interface {
	Normalize()
}

// decodeBody reads a JSON body into v and validates it.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(body) == 0 {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if n, ok := v.(normalizer); ok {
		n.Normalize()
	}
	if err := s.validate.Struct(v); err != nil {
		s.respondError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "url":
			parts = append(parts, fmt.Sprintf("%s must be a valid URL", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(parts, "; ")
}
