package http

import (
	"errors"
	"net/http"
	"sync/atomic"

	"finai/internal/log"
	"finai/internal/services"
)

const (
	maxUploadSize = 10 << 20
	// Parts beyond this are spooled to disk by the multipart reader.
	multipartMemory = 2 << 20
)

type (
	kycResponse struct {
		Success bool `json:"success"`
		*services.KYCResult
	}

	cardResponse struct {
		Success bool `json:"success"`
		*services.CardResult
	}
)

func (s *Server) onboardingAvailable(w http.ResponseWriter) bool {
	if s.onboarding == nil {
		ErrorResponse(http.StatusServiceUnavailable, "onboarding is not configured").Write(w)
		return false
	}
	return true
}

// handleUploadKYC stores the multipart "file" part and screens it, inline or
// through the screening worker.
func (s *Server) handleUploadKYC(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if !s.onboardingAvailable(w) {
		return
	}

	logger := log.FromContext(r.Context()).WithComponent(log.ComponentOnboarding)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "file exceeds the 10 MB upload limit").Write(w)
			return
		}
		BadRequestError("No file part").Write(w)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		BadRequestError("No file part").Write(w)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		BadRequestError("No selected file").Write(w)
		return
	}

	res, err := s.onboarding.SubmitKYC(r.Context(), header.Filename, file)
	switch {
	case errors.Is(err, services.ErrNoFile):
		BadRequestError("No selected file").Write(w)
		return
	case err != nil:
		log.NewStructuredLogger(logger).LogError(r.Context(), "Failed to process KYC document", err, log.OpCreate,
			log.LogFields{log.FieldFilename: header.Filename, "error_type": log.ErrorTypeDatabase})
		InternalServerError("failed to process document").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.kycUploads, 1)
	log.NewStructuredLogger(logger).LogUpload(r.Context(), res.ID, header.Filename, res.Status, header.Size)

	NewJSONResponse().Body(kycResponse{Success: true, KYCResult: res}).Write(w)
}

func (s *Server) handleLinkCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if !decodePOST(w, r, &req) {
		return
	}
	if !s.onboardingAvailable(w) {
		return
	}

	res, err := s.onboarding.LinkCard(r.Context(), sanitizeInput(req.Name), req.Number)
	switch {
	case errors.Is(err, services.ErrCardName):
		UnprocessableEntityError(err.Error()).Write(w)
		return
	case err != nil:
		log.NewStructuredLogger(log.FromContext(r.Context()).WithComponent(log.ComponentOnboarding)).
			LogError(r.Context(), "Failed to link card", err, log.OpCreate,
				log.LogFields{"error_type": log.ErrorTypeDatabase})
		InternalServerError("failed to link card").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.cardsLinked, 1)
	NewJSONResponse().Body(cardResponse{Success: true, CardResult: res}).Write(w)
}
