package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	nodex "github.com/tanpawarit/financial-document-analyzer/agent/nodes"
)

const multipartMemory = 8 << 20

type rootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

type healthResponse struct {
	Status     string            `json:"status"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

type analyzeResponse struct {
	Status        string `json:"status"`
	Query         string `json:"query"`
	Analysis      string `json:"analysis"`
	FileProcessed string `json:"file_processed"`
	FileSize      string `json:"file_size"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Message: serviceName + " API is running",
		Status:  "healthy",
		Version: serviceVersion,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: serviceName,
		Components: map[string]string{
			"api":     "operational",
			"crew_ai": "operational",
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Uploaded file exceeds %d bytes", s.cfg.MaxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to remove multipart temp files")
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".pdf") {
		writeError(w, http.StatusBadRequest, "Only PDF files are supported")
		return
	}

	query := nodex.NormalizeQuery(r.FormValue("query"))

	upload, err := persistUpload(s.cfg.UploadDir, file)
	if upload.Path != "" {
		defer removeUpload(ctx, upload.Path)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to store upload")
		writeError(w, http.StatusInternalServerError, "Error processing financial document: "+err.Error())
		return
	}
	if upload.Size == 0 {
		writeError(w, http.StatusBadRequest, "Uploaded file is empty")
		return
	}

	log.Ctx(ctx).Info().
		Str("file", header.Filename).
		Int64("size", upload.Size).
		Str("path", upload.Path).
		Msg("analysis requested")

	res, err := s.analyzer.Run(ctx, query, upload.Path)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, contractx.ErrExtraction) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, "Error processing financial document: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Status:        "success",
		Query:         query,
		Analysis:      res.Analysis,
		FileProcessed: header.Filename,
		FileSize:      formatKB(upload.Size),
	})
}

func formatKB(size int64) string {
	return fmt.Sprintf("%.2f KB", float64(size)/1024)
}
