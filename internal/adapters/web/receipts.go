package web

import (
	"io"
	"net/http"
)

// maxReceiptSize caps receipt uploads at 10 MB.
const maxReceiptSize = 10 << 20

var allowedReceiptTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// scanReceipt handles POST /api/receipts/scan. Expects a multipart form
// with the image under the "receipt" field.
func (h *Handler) scanReceipt(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.businessID(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize)
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
		writeError(w, r, "invalid multipart form or file too large", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		writeError(w, r, "missing receipt file", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, "failed to read receipt file", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !allowedReceiptTypes[mimeType] {
		writeError(w, r, "unsupported image type, want JPEG, PNG or WEBP", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ScanReceipt(r.Context(), mimeType, data)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result.Draft)
}
