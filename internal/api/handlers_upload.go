package api

import (
	"errors"
	"net/http"

	"github.com/slmn-lf/east-stress-store/internal/upload"
)

const multipartMemory = 8 << 20

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxBytes()+maxBodyBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(w, r, upload.ErrTooLarge, "upload")
			return
		}
		fail(w, r, upload.ErrNoFile, "upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, r, upload.ErrNoFile, "upload")
		return
	}
	defer file.Close()

	res, err := s.uploads.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		fail(w, r, err, "upload")
		return
	}
	respond(w, r, http.StatusCreated, res, nil)
}
