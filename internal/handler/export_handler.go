package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"brandforge/internal/auth"
	"brandforge/internal/domain"
	"brandforge/internal/service"
)

type ExportHandler struct {
	exportService *service.ExportService
	baseURL       string
	log           zerolog.Logger
}

func NewExportHandler(exportService *service.ExportService, baseURL string, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		baseURL:       baseURL,
		log:           log.With().Str("component", "export_handler").Logger(),
	}
}

type exportResponse struct {
	*domain.Export
	DownloadURL string `json:"download_url"`
}

func (h *ExportHandler) respond(export *domain.Export) exportResponse {
	return exportResponse{Export: export, DownloadURL: h.baseURL + "/downloads/" + export.UUID}
}

func (h *ExportHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req service.CreateExportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	export, err := h.exportService.CreateExport(r.Context(), userID, req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.respond(export))
}

func (h *ExportHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var filter domain.ExportFilter
	filter.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	filter.PerPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if raw := r.URL.Query().Get("export_type"); raw != "" {
		t := domain.ExportType(raw)
		if !t.Valid() {
			writeError(w, h.log, domain.NewValidationError("export_type", "must be pdf, csv or json"))
			return
		}
		filter.ExportType = &t
	}

	list, err := h.exportService.GetUserExports(r.Context(), userID, filter)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *ExportHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	export, err := h.exportService.GetOwnedExport(r.Context(), userID, chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, h.respond(export))
}

// Download streams the artifact. The opaque id is the capability: the public
// variant mounts this handler without token auth.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	dl, err := h.exportService.ServeDownload(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(dl.Export.FileSize, 10))

	if _, err := io.Copy(w, dl.Body); err != nil {
		h.log.Error().Err(err).Str("export", dl.Export.UUID).Msg("failed to stream artifact")
	}
}

func (h *ExportHandler) DeleteExport(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.exportService.DeleteExport(r.Context(), userID, chi.URLParam(r, "uuid")); err != nil {
		writeError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ExportHandler) ExportAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	analytics, err := h.exportService.GetExportAnalytics(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}
