package receipt

import (
	"io"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/gastoscl/rendiciones/internal/expense"
	"github.com/gastoscl/rendiciones/internal/transport"
	"github.com/gastoscl/rendiciones/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	store   *FileStore
	scanner *Scanner
}

func NewHandler(store *FileStore, scanner *Scanner) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		store:       store,
		scanner:     scanner,
	}
}

type uploadResponse struct {
	Reference string           `json:"reference"`
	Hints     *expense.OCRData `json:"hints,omitempty"`
}

// UploadReceipt stores the file and, when a scanner is configured, returns
// extraction hints alongside the reference so the client can pre-fill the
// expense form.
func (h *Handler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ref, err := h.store.Save(header.Filename, file)
	if err != nil {
		h.Logger.Error("UploadReceipt: save failed", "error", err, "filename", header.Filename)
		h.HandleServiceError(w, err)
		return
	}

	resp := uploadResponse{Reference: ref}
	if h.scanner != nil {
		if hints, err := h.scanner.Scan(r.Context(), ref); err != nil {
			h.Logger.Warn("UploadReceipt: scan failed, returning reference only", "error", err, "reference", ref)
		} else {
			resp.Hints = hints
		}
	}

	h.Logger.Info("UploadReceipt: receipt stored", "reference", ref)
	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")

	f, err := h.store.Open(ref)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", `attachment; filename="`+ref+`"`)
	if _, err := io.Copy(w, f); err != nil {
		h.Logger.Error("DownloadReceipt: copy failed", "error", err, "reference", ref)
	}
}
