package store

import "strings"

// FieldErrors maps a field name to its validation messages, mirroring the
// per-field error payload returned on 400 responses.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// HasErrors reports whether any field failed validation.
func (e FieldErrors) HasErrors() bool { return len(e) > 0 }

const (
	msgURLScheme  = "URL must start with http:// or https://"
	msgTitleEmpty = "Title cannot be empty"
)

// ValidateBookmarkFields is the single validation path for bookmark writes,
// used identically by create, full update, and partial update. A nil field
// pointer means "not supplied" and is skipped (partial update); supplied
// values are validated and normalized in place (title is trimmed).
func ValidateBookmarkFields(url, title *string) FieldErrors {
	errs := FieldErrors{}

	if url != nil {
		// Scheme check is case-sensitive on purpose: "HTTP://" is rejected.
		if !strings.HasPrefix(*url, "http://") && !strings.HasPrefix(*url, "https://") {
			errs.add("url", msgURLScheme)
		}
	}

	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			errs.add("title", msgTitleEmpty)
		} else {
			*title = trimmed
		}
	}

	return errs
}
