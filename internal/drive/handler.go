package drive

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	source        Source
	ingestService *IngestService
}

func NewHandler(source Source, ingestService *IngestService) *Handler {
	return &Handler{
		source:        source,
		ingestService: ingestService,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/files/download", h.DownloadFile).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/ingest", h.IngestFile).Methods(http.MethodPost)
	router.HandleFunc("/api/drive/ingest/folder", h.IngestFolder).Methods(http.MethodPost)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, summary string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	writeJSON(w, status, map[string]string{"error": summary, "details": details})
}

// resolveFolder prefers an explicit folderId and falls back to a path lookup.
func (h *Handler) resolveFolder(r *http.Request) (string, error) {
	query := r.URL.Query()
	if path := query.Get("path"); path != "" && query.Get("folderId") == "" {
		return h.source.FindFolderByPath(r.Context(), path)
	}
	return query.Get("folderId"), nil
}

func folderStatus(err error) int {
	if errors.Is(err, ErrFolderNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func ingestStatus(err error) int {
	if errors.Is(err, ErrUnsupportedFile) || errors.Is(err, ErrInvalidFile) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	folderID, err := h.resolveFolder(r)
	if err != nil {
		writeError(w, folderStatus(err), "Failed to resolve folder", err)
		return
	}

	files, err := h.source.ListFiles(r.Context(), folderID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to list files", err)
		return
	}
	if files == nil {
		files = []*File{}
	}
	writeJSON(w, http.StatusOK, files)
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "fileId parameter is required", nil)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=data.csv")

	if err := h.source.DownloadFile(r.Context(), fileID, w); err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("drive download failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "fileId parameter is required", nil)
		return
	}

	res, err := h.ingestService.IngestFile(r.Context(), fileID)
	if err != nil {
		writeError(w, ingestStatus(err), "Ingestion failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) IngestFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := h.resolveFolder(r)
	if err != nil {
		writeError(w, folderStatus(err), "Failed to resolve folder", err)
		return
	}
	if folderID == "" {
		writeError(w, http.StatusBadRequest, "folderId or path parameter is required", nil)
		return
	}

	res, err := h.ingestService.IngestFolder(r.Context(), folderID)
	if err != nil {
		writeError(w, ingestStatus(err), "Ingestion failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
