package workspace

import (
	"context"

	"github.com/malonaz/pdfchat/internal/api"
	"github.com/malonaz/pdfchat/internal/debug"
	"github.com/malonaz/pdfchat/internal/file"
)

// UploadOutcome is the result of an upload attempt.
type UploadOutcome struct {
	stamp
	Path string
	// Message is the status line: the backend's message, or the reason the upload failed.
	Message string
	Err     error
}

func (o *UploadOutcome) requestErr() error { return o.Err }

func (o *UploadOutcome) apply(w *Workspace) bool {
	if !w.sameIdentity(o.stamp) {
		return false
	}
	if w.handleUnauthorized(o.Err) {
		return true
	}
	w.uploadMessage = o.Message
	return true
}

// Upload returns the task validating and sending the PDF at path.
func (w *Workspace) Upload(path string) Task {
	if path == "" {
		return nil
	}
	s := w.stamp()
	backend := w.backend
	config := w.config
	return func(ctx context.Context) Outcome {
		expanded, err := file.ExpandPath(path)
		if err != nil {
			return &UploadOutcome{stamp: s, Path: path, Message: UploadFailed, Err: err}
		}
		info, err := file.InspectPDF(expanded, config.MaxUploadBytes, !config.SkipValidation)
		if err != nil {
			debug.GetLogger().Info("rejected upload", "path", path, "error", err)
			return &UploadOutcome{stamp: s, Path: path, Message: err.Error(), Err: err}
		}
		debug.GetLogger().Debug("uploading", "path", info.Path, "size", info.Size, "pages", info.Pages)
		message, err := backend.UploadPDF(ctx, info.Path)
		if err != nil {
			return &UploadOutcome{stamp: s, Path: path, Message: api.ErrorText(err, UploadFailed), Err: err}
		}
		return &UploadOutcome{stamp: s, Path: path, Message: message}
	}
}
