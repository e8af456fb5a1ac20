package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/uploadkit/pkg/logger"
	"github.com/dmitrymomot/uploadkit/pkg/upload"
)

// In-memory part of a parsed multipart form. Larger parts go to disk.
const multipartMemory = 8 << 20

// Transport codes reported in upload.IncomingFile.TransportError.
const (
	transportPartial = 3 // fewer bytes arrived than the part declared
	transportNoFile  = 4 // the part carried no filename
)

const defaultContentType = "application/octet-stream"

// response is the JSON body of POST /upload.
type response struct {
	upload.Result
	Message string `json:"message,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.ContentLength > s.maxBody {
		s.respondError(w, r, fmt.Errorf("%w: limit %d bytes", ErrRequestTooLarge, s.maxBody), http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: limit %d bytes", ErrRequestTooLarge, tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %w", ErrInvalidForm, err), http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files, err := s.spool(r.MultipartForm)
	defer removeSpooled(files)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	opts := append([]upload.Option{upload.WithLogger(s.log)}, s.uploadOpts...)
	u, err := upload.NewFromConfig(files, s.upload, opts...)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	result, err := u.Save(ctx)
	resp := response{Result: result}
	if err != nil {
		resp.Message = err.Error()
	}
	writeJSON(w, statusFor(err), resp)
}

// spool copies the first file of every form field into a temporary file.
func (s *Server) spool(form *multipart.Form) (upload.Files, error) {
	files := make(upload.Files, len(form.File))
	for field, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]

		tmp, n, err := s.spoolPart(fh)
		if err != nil {
			return files, fmt.Errorf("%w: field %q: %w", ErrFailedToSpool, field, err)
		}

		code := 0
		switch {
		case fh.Filename == "":
			code = transportNoFile
		case n != fh.Size:
			code = transportPartial
		}

		files[field] = upload.IncomingFile{
			Name:           fh.Filename,
			TmpLocation:    tmp,
			DeclaredMIME:   contentType(fh),
			Size:           n,
			TransportError: code,
		}
	}
	return files, nil
}

func (s *Server) spoolPart(fh *multipart.FileHeader) (string, int64, error) {
	src, err := fh.Open()
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.CreateTemp(s.cfg.TempDir, "upload-*")
	if err != nil {
		return "", 0, err
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", 0, err
	}
	return dst.Name(), n, nil
}

// removeSpooled deletes temporary files a transfer left behind.
func removeSpooled(files upload.Files) {
	for _, f := range files {
		if f.TmpLocation != "" {
			_ = os.Remove(f.TmpLocation)
		}
	}
}

// contentType returns the media type declared for the part, without parameters.
func contentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		return defaultContentType
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return defaultContentType
	}
	return mediaType
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusCreated
	case errors.Is(err, upload.ErrInputNotFound):
		return http.StatusBadRequest
	case errors.Is(err, upload.ErrOverwriteDenied):
		return http.StatusConflict
	case errors.Is(err, upload.ErrMIMETypeNotAllowed):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, upload.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, upload.ErrPersistFailed):
		return http.StatusInternalServerError
	case errors.Is(err, upload.ErrCallback):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if len(s.checks) == 0 {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
		return
	}

	for _, check := range s.checks {
		if err := check(r.Context()); err != nil {
			s.log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT_READY"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("READY"))
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	s.log.ErrorContext(r.Context(), "request error",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		logger.Error(err),
	)
	writeJSON(w, status, map[string]string{"message": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.InfoContext(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			logger.Duration(time.Since(start)),
		)
	})
}
