package handlers

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest"
)

// ViewSecureImage serves the deliverable behind a signed link, inline or as
// an attachment when download=true.
func (h *Handlers) ViewSecureImage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	dl, err := h.downloads.Open(r.Context(), q.Get("token"))
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}
	defer dl.Body.Close()

	contentType := mime.TypeByExtension(path.Ext(dl.Filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := "inline"
	if strings.EqualFold(q.Get("download"), "true") {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": dl.Filename}))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, dl.Body); err != nil {
		h.logger.Warn("secure image transfer interrupted", "filename", dl.Filename, "error", err)
	}
}

func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		rest.WriteError(w, domain.NewMissingRequiredFieldError("username and password"), h.logger)
		return
	}

	if err := h.adminAuth.Login(w, username, password); err != nil {
		h.logger.Warn("admin login failed", "username", username)
		rest.WriteError(w, err, h.logger)
		return
	}

	h.logger.Info("admin logged in", "username", username)
	rest.WriteData(w, http.StatusOK, messageResponse{Message: "Logged in"})
}

func (h *Handlers) AdminLogout(w http.ResponseWriter, r *http.Request) {
	h.adminAuth.Logout(w)
	rest.WriteData(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

type adminDownloadRequest struct {
	UniqueCode string `json:"unique_code" validate:"required"`
}

type adminDownloadResponse struct {
	UniqueCode  string             `json:"unique_code"`
	Status      domain.PhotoStatus `json:"status"`
	DownloadURL string             `json:"download_url"`
}

// AdminDownload looks up a photo by the code the visitor reads out.
func (h *Handlers) AdminDownload(w http.ResponseWriter, r *http.Request) {
	var req adminDownloadRequest
	if err := rest.DecodeJSON(r, w, h.validate, &req); err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	result, err := h.admin.LookupDownload(r.Context(), req.UniqueCode)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, adminDownloadResponse{
		UniqueCode:  result.UniqueCode,
		Status:      result.Status,
		DownloadURL: result.DownloadURL,
	})
}
