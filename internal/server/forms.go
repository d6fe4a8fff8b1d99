package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/aidex/internal/models"
	"github.com/hyperjump/aidex/internal/storage"
)

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var in models.SubmissionInput
	if !s.decodeBody(w, r, &in) {
		return
	}
	sub := &models.Submission{
		ID:              uuid.NewString(),
		Status:          models.SubmissionPending,
		CreatedAt:       s.clock.Now().UTC(),
		SubmissionInput: in,
	}
	if err := s.storage.CreateSubmission(r.Context(), sub); err != nil {
		s.logger.Error("submission failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store submission")
		return
	}
	s.metrics.ObserveEvent("submission")
	s.logger.Info("tool submitted", zap.String("id", sub.ID), zap.String("title", sub.Title))
	s.respondJSON(w, http.StatusCreated, models.Envelope[*models.Submission]{
		Data:    sub,
		Success: true,
		Message: "Tool submitted for review",
	})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var in models.SubscribeInput
	if !s.decodeBody(w, r, &in) {
		return
	}
	err := s.storage.AddSubscriber(r.Context(), in.Email)
	if errors.Is(err, storage.ErrAlreadySubscribed) {
		s.respondError(w, http.StatusConflict, "email already subscribed")
		return
	}
	if err != nil {
		s.logger.Error("subscribe failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}
	s.metrics.ObserveEvent("subscription")
	s.respondJSON(w, http.StatusCreated, models.Envelope[models.SubscribeInput]{
		Data:    models.SubscribeInput{Email: strings.ToLower(strings.TrimSpace(in.Email))},
		Success: true,
		Message: "Subscribed",
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var in models.FeedbackInput
	if !s.decodeBody(w, r, &in) {
		return
	}
	fb := &models.Feedback{
		ID:            uuid.NewString(),
		CreatedAt:     s.clock.Now().UTC(),
		FeedbackInput: in,
	}
	if err := s.storage.CreateFeedback(r.Context(), fb); err != nil {
		s.logger.Error("feedback failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store feedback")
		return
	}
	s.metrics.ObserveEvent("feedback")
	s.respondJSON(w, http.StatusCreated, models.Envelope[*models.Feedback]{
		Data:    fb,
		Success: true,
		Message: "Thanks for your feedback",
	})
}
