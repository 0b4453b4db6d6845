package api

import (
	"bytes"
	"encoding/csv"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/ignite/planner-ranker/internal/datanorm"
	"github.com/ignite/planner-ranker/internal/pkg/logger"
)

// 64 MB cap on a single upload request
const maxUploadBytes = 64 << 20

// uploadFileResult is the per-file outcome in the upload response.
type uploadFileResult struct {
	Filename  string `json:"filename"`
	Kind      string `json:"kind"`
	TotalRows int    `json:"total_rows"`
	GoodRows  int    `json:"good_rows"`
	ErrorRows int    `json:"error_rows"`
	Error     string `json:"error,omitempty"`
}

// Upload accepts one or more CSV files, classifies each as history or plan
// input, normalizes it, and persists the results.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		// Single-file clients use the "file" field
		files = r.MultipartForm.File["file"]
	}
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided; use multipart field \"files\"")
		return
	}

	results := make([]uploadFileResult, 0, len(files))
	for _, fh := range files {
		results = append(results, h.ingestFile(r, fh))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"files": results,
	})
}

func (h *Handlers) ingestFile(r *http.Request, fh *multipart.FileHeader) uploadFileResult {
	out := uploadFileResult{Filename: fh.Filename}

	f, err := fh.Open()
	if err != nil {
		out.Error = "could not open upload: " + err.Error()
		return out
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		out.Error = "could not read upload: " + err.Error()
		return out
	}

	kind := h.classifyCSV(fh.Filename, data)
	out.Kind = string(kind)

	switch kind {
	case datanorm.KindHistory:
		records, res, err := datanorm.ImportHistory(bytes.NewReader(data), fh.Filename)
		if err != nil {
			out.Error = err.Error()
			return out
		}
		if err := h.saveHistory(r.Context(), records); err != nil {
			out.Error = "could not save history: " + err.Error()
			return out
		}
		out.TotalRows, out.GoodRows, out.ErrorRows = res.TotalRows, res.GoodRows, res.ErrorRows

	case datanorm.KindPlan:
		plans, res, err := datanorm.ImportPlans(r.Context(), bytes.NewReader(data), fh.Filename, h.store.Lookup())
		if err != nil {
			out.Error = err.Error()
			return out
		}
		if err := h.store.SavePlans(r.Context(), plans); err != nil {
			out.Error = "could not save plans: " + err.Error()
			return out
		}
		out.TotalRows, out.GoodRows, out.ErrorRows = res.TotalRows, res.GoodRows, res.ErrorRows
	}

	logger.Info("file ingested",
		"filename", fh.Filename,
		"kind", out.Kind,
		"good_rows", out.GoodRows,
		"error_rows", out.ErrorRows)
	return out
}

// classifyCSV sniffs the header row so the classifier can weigh column
// names alongside the filename.
func (h *Handlers) classifyCSV(filename string, data []byte) datanorm.Kind {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		header = nil
	}
	return h.classifier.Classify(filename, header)
}
