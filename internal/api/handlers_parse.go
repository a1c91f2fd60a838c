package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/vbtree/internal/chunker"
	"github.com/dgallion1/vbtree/internal/parser"
	"github.com/dgallion1/vbtree/internal/pipeline"
)

// parseBody is the JSON form of a parse request.
type parseBody struct {
	HTML    string `json:"html"`
	Title   string `json:"title"`
	DocType string `json:"doc_type"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	var (
		data []byte
		req  pipeline.Request
	)
	if isMultipart(r) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		filename := sanitizeFilename(header.Filename)
		if !parser.IsSupportedExtension(filename) {
			jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
			return
		}
		data, err = s.readUpload(file)
		if err != nil {
			uploadError(w, err)
			return
		}
		req = pipeline.Request{
			Filename: filename,
			Title:    r.FormValue("title"),
			DocType:  r.FormValue("doc_type"),
		}
	} else {
		var body parseBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
				return
			}
			jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
			return
		}
		data = []byte(body.HTML)
		req = pipeline.Request{Title: body.Title, DocType: body.DocType}
	}

	req.Chunks = queryBool(r, "chunks")
	req.Chunking = chunkingFromQuery(r)

	doc, err := s.svc.Parse(r.Context(), data, req)
	if err != nil {
		s.log.Warn("parse failed", "filename", req.Filename, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// profileInfo describes a profile for clients.
type profileInfo struct {
	Name           string   `json:"name"`
	Kinds          []string `json:"kinds"`
	StrictArticles bool     `json:"strict_articles"`
	RomanChapters  bool     `json:"roman_chapters"`
	RomanSections  bool     `json:"roman_sections"`
	Appendix       bool     `json:"appendix"`
	ReferenceGuard bool     `json:"reference_guard"`
	MergeDups      bool     `json:"merge_duplicates"`
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := make([]profileInfo, 0, len(parser.Profiles))
	for _, p := range parser.Profiles {
		kinds := make([]string, len(p.Kinds))
		for i, k := range p.Kinds {
			kinds[i] = k.String()
		}
		profiles = append(profiles, profileInfo{
			Name:           p.Name,
			Kinds:          kinds,
			StrictArticles: p.StrictArticles,
			RomanChapters:  p.RomanChapters,
			RomanSections:  p.RomanSections,
			Appendix:       p.Appendix,
			ReferenceGuard: p.ReferenceGuard && s.cfg.ReferenceGuard,
			MergeDups:      p.MergeDuplicates,
		})
	}

	types := make(map[string]string)
	for _, t := range parser.DocTypes() {
		types[t] = parser.ForType(t).Name
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"profiles":         profiles,
		"doc_types":        types,
		"default_doc_type": s.cfg.DefaultDocType,
	})
}

var errTooLarge = errors.New("file too large")

func (s *Server) readUpload(f io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("%w: max %d bytes", errTooLarge, s.cfg.MaxUploadBytes)
	}
	return data, nil
}

func uploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, errTooLarge) {
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, "failed to read file", http.StatusInternalServerError)
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

// chunkingFromQuery reads optional chunk_size and overlap overrides. Zero
// values fall back to the configured defaults.
func chunkingFromQuery(r *http.Request) chunker.Config {
	var cfg chunker.Config
	q := r.URL.Query()
	if n, err := strconv.Atoi(q.Get("chunk_size")); err == nil && n > 0 {
		cfg.ChunkSize = n
	}
	if n, err := strconv.Atoi(q.Get("overlap")); err == nil && n > 0 {
		cfg.ChunkOverlap = n
	}
	return cfg
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
