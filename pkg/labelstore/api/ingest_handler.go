// Package api exposes the ingestion write path over HTTP. Request
// routing and validation stay thin; placement decisions belong to the
// placement package.
package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/label-store/pkg/labelstore"
	"github.com/tendant/label-store/pkg/labelstore/metrics"
	"github.com/tendant/label-store/pkg/labelstore/placement"
)

// maxUploadBytes caps the in-memory portion of a multipart upload.
const maxUploadBytes = 64 << 20

// IngestHandler handles multipart file ingestion API endpoints.
type IngestHandler struct {
	placer  *placement.Placer
	repo    labelstore.Repository
	metrics *metrics.Metrics
}

// NewIngestHandler creates an IngestHandler over the placer and the
// ingestion-record repository. Metrics may be nil.
func NewIngestHandler(placer *placement.Placer, repo labelstore.Repository, m *metrics.Metrics) *IngestHandler {
	return &IngestHandler{
		placer:  placer,
		repo:    repo,
		metrics: m,
	}
}

// Routes returns the router for ingestion endpoints.
func (h *IngestHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Ingest)
	r.Get("/", h.ListIngestions)
	r.Get("/{ingestion_id}", h.GetIngestion)
	return r
}

// IngestResponse reports where an uploaded file pair was placed.
type IngestResponse struct {
	ID           string    `json:"id"`
	StorageType  string    `json:"storage_type"`
	FileName     string    `json:"file_name"`
	Labels       []string  `json:"labels,omitempty"`
	PrimaryPath  string    `json:"primary_path"`
	MetadataPath string    `json:"metadata_path"`
	AllPaths     []string  `json:"all_paths,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Ingest accepts a multipart upload with parts:
//
//	file        - the media file (required)
//	metadata    - the annotation JSON document (optional)
//	storage_type - workflow kind, first key segment (required)
//	labels      - repeated values or one comma-separated value (optional)
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	storageType := r.FormValue("storage_type")
	if !labelstore.IsStorageType(storageType) {
		slog.Error("Invalid storage type", "storage_type", storageType)
		http.Error(w, "invalid storage_type", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Missing file part", "error", err)
		http.Error(w, "file part is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Failed to read file part", "error", err)
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	var metadata []byte
	if mf, _, err := r.FormFile("metadata"); err == nil {
		metadata, err = io.ReadAll(mf)
		mf.Close()
		if err != nil {
			slog.Error("Failed to read metadata part", "error", err)
			http.Error(w, "failed to read metadata", http.StatusBadRequest)
			return
		}
	} else if v := r.FormValue("metadata"); v != "" {
		metadata = []byte(v)
	}

	labels := parseLabels(r.Form["labels"])

	result, err := h.placer.Place(r.Context(), placement.Request{
		StorageType: labelstore.StorageType(storageType),
		FileName:    header.Filename,
		Data:        data,
		MimeType:    header.Header.Get("Content-Type"),
		Metadata:    metadata,
		Labels:      labels,
	})
	if err != nil {
		h.recordIngestion(storageType, "error", start, 0, 0)
		slog.Error("Failed to place file", "file_name", header.Filename, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rec := &labelstore.IngestionRecord{
		ID:           uuid.New(),
		StorageType:  storageType,
		FileName:     header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		SizeBytes:    int64(len(data)),
		Labels:       labels,
		PrimaryPath:  result.PrimaryPath,
		MetadataPath: result.MetadataPath,
		AllPaths:     result.AllPaths,
		CreatedAt:    time.Now(),
	}
	if err := h.repo.CreateIngestion(r.Context(), rec); err != nil {
		h.recordIngestion(storageType, "error", start, 0, 0)
		slog.Error("Failed to record ingestion", "id", rec.ID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fanout := 1
	if len(result.AllPaths) > 1 {
		fanout = len(result.AllPaths)
	}
	h.recordIngestion(storageType, "ok", start, int64(len(data)), fanout)

	slog.Info("File ingested", "id", rec.ID, "primary_path", rec.PrimaryPath)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toResponse(rec))
}

// GetIngestion returns one ingestion record by ID.
func (h *IngestHandler) GetIngestion(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "ingestion_id"))
	if err != nil {
		http.Error(w, "invalid ingestion ID", http.StatusBadRequest)
		return
	}

	rec, err := h.repo.GetIngestion(r.Context(), id)
	if err != nil {
		if err == labelstore.ErrIngestionNotFound {
			http.Error(w, "ingestion not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get ingestion", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	render.JSON(w, r, toResponse(rec))
}

// ListIngestions returns recent ingestion records, newest first.
// Supports storage_type, limit and offset query parameters.
func (h *IngestHandler) ListIngestions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	recs, err := h.repo.ListIngestions(r.Context(), r.URL.Query().Get("storage_type"), limit, offset)
	if err != nil {
		slog.Error("Failed to list ingestions", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]IngestResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toResponse(rec))
	}
	render.JSON(w, r, out)
}

func (h *IngestHandler) recordIngestion(storageType, status string, start time.Time, bytes int64, fanout int) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordIngestion(storageType, status, time.Since(start).Seconds(), bytes, fanout)
}

// parseLabels accepts repeated labels values as well as a single
// comma-separated value.
func parseLabels(values []string) []string {
	var labels []string
	for _, v := range values {
		for _, label := range strings.Split(v, ",") {
			label = strings.TrimSpace(label)
			if label != "" {
				labels = append(labels, label)
			}
		}
	}
	return labels
}

func toResponse(rec *labelstore.IngestionRecord) IngestResponse {
	return IngestResponse{
		ID:           rec.ID.String(),
		StorageType:  rec.StorageType,
		FileName:     rec.FileName,
		Labels:       rec.Labels,
		PrimaryPath:  rec.PrimaryPath,
		MetadataPath: rec.MetadataPath,
		AllPaths:     rec.AllPaths,
		CreatedAt:    rec.CreatedAt,
	}
}
