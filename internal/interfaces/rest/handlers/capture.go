package handlers

import (
	"net/http"
	"strings"

	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest"
	"github.com/go-chi/chi/v5"
)

type sizeResponse struct {
	PhotoSize string `json:"photo_size"`
	Frame     string `json:"frame"`
	Price     string `json:"price"`
	Width     int    `json:"image_width"`
	Height    int    `json:"image_height"`
}

// SetSize reads the "size" form field.
func (h *Handlers) SetSize(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	frame, err := h.capture.SetSize(sess, strings.TrimSpace(r.FormValue("size")))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if !h.saveSession(w, r, sess) {
		return
	}

	rest.WriteData(w, http.StatusOK, sizeResponse{
		PhotoSize: frame.Key,
		Frame:     frame.Label,
		Price:     frame.Price.StringFixed(2),
		Width:     frame.Width,
		Height:    frame.Height,
	})
}

type summaryResponse struct {
	PhotoSize       string `json:"photo_size"`
	Frame           string `json:"frame"`
	Price           string `json:"price"`
	Width           int    `json:"image_width"`
	Height          int    `json:"image_height"`
	PreviewFilename string `json:"preview_image_filename"`
}

func (h *Handlers) PaymentSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	summary, err := h.capture.Summary(sess)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, summaryResponse{
		PhotoSize:       summary.FrameKey,
		Frame:           summary.FrameLabel,
		Price:           summary.Price,
		Width:           summary.Width,
		Height:          summary.Height,
		PreviewFilename: summary.PreviewFilename,
	})
}

type saveImageRequest struct {
	Image string `json:"image" validate:"required"`
}

type saveImageResponse struct {
	Variant    domain.ArtifactVariant `json:"variant"`
	Filename   string                 `json:"filename"`
	UniqueCode string                 `json:"unique_code,omitempty"`
}

func (h *Handlers) SaveImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	variant, err := domain.ParseArtifactVariant(strings.ToLower(chi.URLParam(r, "variant")))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	var req saveImageRequest
	if err := rest.DecodeJSON(r, w, h.validate, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	saved, err := h.capture.SaveImage(r.Context(), sess, variant, req.Image)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if !h.saveSession(w, r, sess) {
		return
	}

	rest.WriteData(w, http.StatusOK, saveImageResponse{
		Variant:    saved.Variant,
		Filename:   saved.Filename,
		UniqueCode: saved.UniqueCode,
	})
}

func (h *Handlers) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.capture.DeletePhoto(r.Context(), sess); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	if !h.saveSession(w, r, sess) {
		return
	}

	rest.WriteData(w, http.StatusOK, messageResponse{Message: "Photo deleted successfully"})
}
