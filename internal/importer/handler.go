package importer

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storekeep/storekeep/internal/platform/httpx"
	"github.com/storekeep/storekeep/internal/shared"
)

// maxUploadBytes caps a single CSV upload.
const maxUploadBytes = 8 << 20

// EnqueueFunc schedules a background product import and returns a job id.
// Wired from the job queue at startup so this package stays queue-agnostic.
type EnqueueFunc func(hubID int64, data []byte) (string, error)

type Handler struct {
	logger  *slog.Logger
	service *Service
	enqueue EnqueueFunc
}

func NewHandler(logger *slog.Logger, service *Service, enqueue EnqueueFunc) *Handler {
	return &Handler{logger: logger, service: service, enqueue: enqueue}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/price-levels", h.ImportPriceLevels)
	r.Post("/products", h.ImportProducts)
	r.Post("/products/async", h.EnqueueProducts)
	return r
}

func (h *Handler) ImportPriceLevels(w http.ResponseWriter, r *http.Request) {
	ident, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	created, err := h.service.ImportPriceLevels(r.Context(), ident.HubID, data)
	if err != nil {
		h.logger.Error("import price levels", slog.Int64("hub_id", ident.HubID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"created": created})
}

func (h *Handler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	ident, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	created, err := h.service.ImportProducts(r.Context(), ident.HubID, data)
	if err != nil {
		h.logger.Error("import products", slog.Int64("hub_id", ident.HubID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"created": created})
}

// EnqueueProducts accepts the upload immediately and runs the import on the
// worker. Parse errors then surface in the job log, not the response.
func (h *Handler) EnqueueProducts(w http.ResponseWriter, r *http.Request) {
	ident, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	if h.enqueue == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "background imports are not enabled")
		return
	}
	jobID, err := h.enqueue(ident.HubID, data)
	if err != nil {
		h.logger.Error("enqueue product import", slog.Int64("hub_id", ident.HubID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{"job_id": jobID})
}

// readUpload authorizes the caller and reads the "file" multipart part.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (shared.Identity, []byte, bool) {
	ident, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return shared.Identity{}, nil, false
	}
	if err := ident.RequireCapability(shared.CapCatalogImport); err != nil {
		httpx.RespondError(w, err)
		return shared.Identity{}, nil, false
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "expected a multipart upload")
		return shared.Identity{}, nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "missing \"file\" part")
		return shared.Identity{}, nil, false
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "could not read upload")
		return shared.Identity{}, nil, false
	}
	return ident, data, true
}
