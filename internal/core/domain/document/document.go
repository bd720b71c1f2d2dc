package document

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrForbidden = errors.New("document belongs to another user")
	// ErrNoText is returned when extraction produced nothing to render.
	ErrNoText = errors.New("no text extracted from image")
	// ErrUnsupportedMedia is returned for uploads that are not images.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrEmptyUpload      = errors.New("no image file provided")
	ErrTooLarge         = errors.New("image exceeds the upload size limit")
)

// Format is a downloadable rendering of a document.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatWord Format = "word"
)

func (f Format) IsValid() bool {
	return f == FormatPDF || f == FormatWord
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Extension is the file extension, without the dot.
func (f Format) Extension() string {
	if f == FormatPDF {
		return "pdf"
	}
	return "docx"
}

// Document is an extracted text together with its rendered files.
type Document struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	OriginalName string    `json:"original_name" db:"original_name"`
	Text         string    `json:"text" db:"text"`
	PDF          []byte    `json:"-" db:"pdf"`
	Word         []byte    `json:"-" db:"word"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// File returns the stored bytes for the requested format.
func (d *Document) File(f Format) []byte {
	if f == FormatPDF {
		return d.PDF
	}
	return d.Word
}

// Summary is the list view of a document, without payloads.
type Summary struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OriginalName string    `json:"originalName" db:"original_name"`
	Text         string    `json:"text" db:"text"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Upload is an image handed in for processing.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProcessResult is returned after an upload has been converted.
type ProcessResult struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	WordURL string    `json:"wordUrl"`
	PDFURL  string    `json:"pdfUrl"`
}
