package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/smsdesk/internal/core"
	"github.com/JonMunkholm/smsdesk/internal/logging"
	"github.com/JonMunkholm/smsdesk/internal/web/templates"
)

// multipartMemory is how much of a multipart upload is buffered in memory
// before spilling to temporary files.
const multipartMemory = 1 << 20

// handleImport runs a full import for the authenticated owner.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	owner, ok := core.OwnerFromContext(r.Context())
	if !ok {
		s.respondError(w, r, core.ErrUnauthenticated, http.StatusUnauthorized)
		return
	}

	raw, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, uploadErrorStatus(err))
		return
	}

	if err := s.limiter.Acquire(r.Context()); err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, core.ErrTooManyImports) {
			w.Header().Set("Retry-After", "5")
		} else {
			status = http.StatusRequestTimeout
		}
		s.respondError(w, r, err, status)
		return
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Import.Timeout)
	defer cancel()

	outcome, err := s.importer.Import(ctx, raw, owner)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnauthorized)
		return
	}

	s.renderOutcome(w, r, outcome)
}

// handleValidate is a dry run: it reports what an import would do without
// touching the store.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	raw, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, uploadErrorStatus(err))
		return
	}
	s.renderOutcome(w, r, core.Validate(raw))
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	body := core.Template()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", core.TemplateFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}

type healthResponse struct {
	Status  string             `json:"status"`
	Imports core.LimiterStatus `json:"imports"`
	Store   string             `json:"store,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Imports: s.limiter.Status()}
	if s.storeState != nil {
		resp.Store = s.storeState()
	}
	writeJSON(w, http.StatusOK, resp)
}

// renderOutcome writes the outcome as JSON, or as an HTML fragment for
// htmx. htmx only swaps 2xx responses, so fragments are always sent with 200.
func (s *Server) renderOutcome(w http.ResponseWriter, r *http.Request, outcome core.ImportOutcome) {
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.ImportResult(outcome).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render import result", "error", err)
		}
		return
	}
	writeJSON(w, outcomeStatus(outcome), outcome)
}

func outcomeStatus(outcome core.ImportOutcome) int {
	switch outcome.State {
	case core.StateSucceeded, core.StateValidated:
		return http.StatusOK
	case core.StateCollaboratorFailed:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

// readUpload returns the CSV text from a text/csv body or from the "file"
// field of a multipart form, capped at IMPORT_MAX_FILE_SIZE.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return "", fmt.Errorf("%w: %v", core.ErrUnsupportedContent, err)
		}
		mediaType = mt
	}

	var src io.Reader
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return "", uploadError(err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", core.ErrNoFile
		}
		defer file.Close()
		src = file
	case "", "text/csv", "text/plain", "application/csv", "application/vnd.ms-excel", "application/octet-stream":
		src = r.Body
	default:
		return "", fmt.Errorf("%w: %s", core.ErrUnsupportedContent, mediaType)
	}

	counter := core.NewCountingReader(src)
	data, err := io.ReadAll(counter)
	if err != nil {
		return "", uploadError(err)
	}

	logging.FromContext(r.Context()).Debug("upload read", "bytes", counter.BytesRead(), "media_type", mediaType)
	return string(data), nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, tooLarge.Limit)
	}
	// multipart does not always wrap the MaxBytesError.
	if strings.Contains(err.Error(), "request body too large") {
		return fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
	}
	return fmt.Errorf("read upload: %w", err)
}

func uploadErrorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedContent):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}
