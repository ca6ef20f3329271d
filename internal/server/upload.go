package server

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/rotisserie/eris"
)

// AnalyzeRequest is the JSON form of an analyze call.
// Multipart forms use the same field names with a "file" part.
type AnalyzeRequest struct {
	Query string      `json:"query"`
	Mode  string      `json:"mode"`
	File  *FileUpload `json:"file,omitempty"`
}

// FileUpload is an attachment sent inline as base64
type FileUpload struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

func (s *Server) parseSubmission(w http.ResponseWriter, r *http.Request) (model.Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		return s.parseMultipart(r)
	}
	return parseJSON(r)
}

func parseJSON(r *http.Request) (model.Submission, error) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if eris.As(err, &tooLarge) {
			return model.Submission{}, tooLarge
		}
		return model.Submission{}, &model.ValidationError{Message: "invalid request body"}
	}

	sub, err := newSubmission(req.Query, req.Mode)
	if err != nil || req.File == nil {
		return sub, err
	}

	data, err := base64.StdEncoding.DecodeString(req.File.Data)
	if err != nil {
		return sub, &model.ValidationError{Field: "file", Message: "file data must be base64"}
	}
	sub.File, err = newAttachment(req.File.Name, req.File.MIMEType, data)
	return sub, err
}

func (s *Server) parseMultipart(r *http.Request) (model.Submission, error) {
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if eris.As(err, &tooLarge) {
			return model.Submission{}, tooLarge
		}
		return model.Submission{}, &model.ValidationError{Message: "file too large or invalid form"}
	}

	sub, err := newSubmission(r.FormValue("query"), r.FormValue("mode"))
	if err != nil {
		return sub, err
	}

	file, header, err := r.FormFile("file")
	if err == http.ErrMissingFile {
		return sub, nil
	}
	if err != nil {
		return sub, &model.ValidationError{Field: "file", Message: "invalid file part"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return sub, eris.Wrap(err, "server: read upload")
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	sub.File, err = newAttachment(header.Filename, mimeType, data)
	return sub, err
}

func newSubmission(query, mode string) (model.Submission, error) {
	if mode == "" {
		mode = string(model.ModeFact)
	}
	m, err := model.ParseMode(mode)
	if err != nil {
		return model.Submission{}, &model.ValidationError{Field: "mode", Message: err.Error()}
	}
	return model.Submission{Query: query, Mode: m}, nil
}

func newAttachment(name, mimeType string, data []byte) (*model.Attachment, error) {
	if len(data) == 0 {
		return nil, &model.ValidationError{Field: "file", Message: "file is empty"}
	}
	if len(data) > model.MaxAttachmentBytes {
		return nil, &model.ValidationError{Field: "file", Message: "file exceeds 20 MiB"}
	}
	if !model.AllowedMIMEType(mimeType) {
		return nil, &model.ValidationError{Field: "file", Message: "unsupported file type " + mimeType}
	}
	return &model.Attachment{Name: name, MIMEType: mimeType, Data: data}, nil
}
