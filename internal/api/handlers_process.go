package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/rlmproc/internal/chunk"
	"github.com/dgallion1/rlmproc/internal/convert"
	"github.com/dgallion1/rlmproc/internal/pipeline"
	"github.com/dgallion1/rlmproc/internal/rlm"
)

// handleProcess accepts one document and one query and queues a job.
// Multipart uploads carry the document as a file part; a JSON body
// carries the text inline.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	// Limit total request size, with headroom for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		s.handleProcessJSON(w, r)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	query := strings.TrimSpace(r.FormValue("query"))
	if query == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !convert.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	job := pipeline.NewJob(query, filename, data, s.optionsFromForm(r))
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.writeAccepted(w, job)
}

// processRequest is the JSON submission body. Pointer fields distinguish
// "absent" from explicit zero values.
type processRequest struct {
	Query     string `json:"query"`
	Content   string `json:"content"`
	Filename  string `json:"filename"`
	ChunkSize int    `json:"chunk_size"`
	Overlap   *int   `json:"overlap"`
	Filter    *bool  `json:"filter"`
	Fast      bool   `json:"fast"`
	Strategy  string `json:"strategy"`
}

func (s *Server) handleProcessJSON(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		jsonError(w, "content is required", http.StatusBadRequest)
		return
	}
	filename := sanitizeFilename(req.Filename)
	if req.Filename == "" {
		filename = "content.txt"
	}

	opts := s.orchestrator.BaseOptions()
	if req.ChunkSize > 0 {
		opts.ChunkSize = req.ChunkSize
	}
	if req.Overlap != nil && *req.Overlap >= 0 {
		opts.Overlap = *req.Overlap
	}
	if req.Filter != nil {
		opts.FilterEnabled = *req.Filter
	}
	opts.Fast = req.Fast
	if req.Strategy != "" {
		opts.Strategy = chunk.Strategy(req.Strategy)
	}

	job := pipeline.NewJob(strings.TrimSpace(req.Query), filename, []byte(req.Content), opts)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.writeAccepted(w, job)
}

// handleBatchProcess queues one job per uploaded file, all sharing a
// single query. Per-file failures are reported inline; good files still
// queue.
func (s *Server) handleBatchProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	query := strings.TrimSpace(r.FormValue("query"))
	if query == "" {
		jsonError(w, "query is required", http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	opts := s.optionsFromForm(r)

	var results []map[string]any
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !convert.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}

		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "file too large or read error",
			})
			continue
		}

		job := pipeline.NewJob(query, filename, data, opts)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"status":   job.Snapshot().Status,
			"poll_url": fmt.Sprintf("/api/process/%s/status", job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

// optionsFromForm builds run options from the server defaults plus any
// form-field overrides.
func (s *Server) optionsFromForm(r *http.Request) rlm.Options {
	opts := s.orchestrator.BaseOptions()
	if v := r.FormValue("chunk_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.ChunkSize = n
		}
	}
	if v := r.FormValue("overlap"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Overlap = n
		}
	}
	if v := r.FormValue("filter"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.FilterEnabled = b
		}
	}
	if v := r.FormValue("fast"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Fast = b
		}
	}
	if v := r.FormValue("strategy"); v != "" {
		opts.Strategy = chunk.Strategy(v)
	}
	return opts
}

func (s *Server) writeAccepted(w http.ResponseWriter, job *pipeline.Job) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Snapshot().Status,
		"poll_url": fmt.Sprintf("/api/process/%s/status", job.ID),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
