package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gabayhq/gabay-backend/internal/capture"
	"github.com/gabayhq/gabay-backend/internal/eventlog"
)

// maxImageUpload caps document scans at 20 MB.
const maxImageUpload = 20 << 20

func readImageUpload(req *http.Request) (capture.Blob, error) {
	if err := req.ParseMultipartForm(maxImageUpload); err != nil {
		return capture.Blob{}, fmt.Errorf("invalid multipart form: %w", err)
	}
	file, header, err := req.FormFile("image")
	if err != nil {
		return capture.Blob{}, fmt.Errorf("missing image part: %w", err)
	}
	defer file.Close()

	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}
	return capture.BlobFromReader(file, mime)
}

// handleOCR extracts text from an uploaded bill, receipt or document image.
func (r *Router) handleOCR(w http.ResponseWriter, req *http.Request) {
	user := getAuthUser(req.Context())
	if user == nil {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	image, err := readImageUpload(req)
	if err != nil {
		http.Error(w, `{"error": "image is required"}`, http.StatusBadRequest)
		return
	}
	if image.Size() == 0 {
		http.Error(w, `{"error": "image is empty"}`, http.StatusBadRequest)
		return
	}

	result, err := r.ocr.ExtractText(req.Context(), image)
	if err != nil {
		r.logger.Printf("ocr: extraction failed for user %s: %v", user.ID, err)
		captureError(req, err, "ocr extraction failed")
		http.Error(w, `{"error": "text extraction failed"}`, http.StatusBadGateway)
		return
	}

	interactionID := newInteractionID()
	r.eventLog.LogAsync(interactionID, eventlog.EventOCRExtracted, map[string]any{
		"user_id":    user.ID,
		"bytes":      image.Size(),
		"confidence": result.Confidence,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"interaction_id": interactionID,
		"text":           result.Text,
		"confidence":     result.Confidence,
	})
}
