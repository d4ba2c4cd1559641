package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/okian/pipeaudit/internal/adapters/tabular"
	"github.com/okian/pipeaudit/internal/domain/model"
)

// maxUploadBytes bounds one audit request body (32 MiB covers multi-year
// exports from mid-size CRMs).
const maxUploadBytes = 32 << 20

// AuditHandler accepts CSV exports and returns the audit report as JSON.
type AuditHandler struct {
	auditor Auditor
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(auditor Auditor) *AuditHandler {
	return &AuditHandler{auditor: auditor}
}

// HandlePostAudit handles POST /audit. The request is multipart/form-data
// with a required "deals" file part and an optional "activities" part.
func (h *AuditHandler) HandlePostAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form: "+err.Error())
		return
	}

	dealRows, err := formCSV(r, "deals")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if dealRows == nil {
		writeError(w, http.StatusBadRequest, `missing "deals" file part`)
		return
	}
	activityRows, err := formCSV(r, "activities")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.auditor.Run(r.Context(), dealRows, activityRows)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// formCSV parses the named multipart file part, returning nil rows when
// the part is absent.
func formCSV(r *http.Request, name string) ([]model.RawRecord, error) {
	file, _, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %q part: %w", name, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	rows, err := tabular.Read(file)
	if err != nil {
		return nil, fmt.Errorf("parse %q part: %w", name, err)
	}
	return rows, nil
}
