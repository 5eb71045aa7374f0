package handler

import (
	"net/http"

	"callmood/internal/emotion"
)

const maxUploadSize = 100 << 20

// Upload handles POST /v1/analyze with a multipart "file" field
func (h *CallHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	h.log.WithField("filename", header.Filename).Info("Analyzing uploaded audio")
	result, err := h.analyzer.AnalyzeUpload(r.Context(), header.Filename, file)
	if err != nil {
		writeServiceError(w, h.log, "", err)
		return
	}

	status := http.StatusOK
	if result.Dashboard.Outcome == emotion.OutcomeNoSpeech {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}
