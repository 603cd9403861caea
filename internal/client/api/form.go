package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"strconv"
)

// Form builds a multipart/form-data body. Every mutating endpoint of the
// platform accepts multipart, so file and non-file submissions share one
// encoder.
//
// Declared file fields that receive no content are still written as an
// explicit empty file part. The server relies on field presence to
// distinguish "no change" from "field omitted", so the placeholder is part of
// the wire contract, not an encoding accident.
type Form struct {
	order    []string
	values   map[string]string
	files    map[string]filePart
	declared []string
}

type filePart struct {
	filename string
	content  []byte
}

func NewForm() *Form {
	return &Form{values: make(map[string]string), files: make(map[string]filePart)}
}

// Set adds a plain string field.
func (f *Form) Set(key, value string) *Form {
	if _, seen := f.values[key]; !seen {
		f.order = append(f.order, key)
	}
	f.values[key] = value
	return f
}

// SetInt adds an integer field.
func (f *Form) SetInt(key string, v int64) *Form {
	return f.Set(key, strconv.FormatInt(v, 10))
}

// SetBool adds a boolean field.
func (f *Form) SetBool(key string, v bool) *Form {
	return f.Set(key, strconv.FormatBool(v))
}

// File attaches binary content under key.
func (f *Form) File(key, filename string, content []byte) *Form {
	f.files[key] = filePart{filename: filename, content: content}
	return f
}

// DeclareFile marks keys the server expects as file fields. Any declared key
// without attached content is encoded as an empty file placeholder.
func (f *Form) DeclareFile(keys ...string) *Form {
	f.declared = append(f.declared, keys...)
	return f
}

// Encode writes the multipart body and returns it with its content type.
func (f *Form) Encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, key := range f.order {
		if err := w.WriteField(key, f.values[key]); err != nil {
			return nil, "", fmt.Errorf("failed to write field %q: %w", key, err)
		}
	}

	for _, key := range f.declared {
		if _, ok := f.files[key]; !ok {
			// explicit empty-file placeholder
			if _, err := w.CreateFormFile(key, ""); err != nil {
				return nil, "", fmt.Errorf("failed to write placeholder %q: %w", key, err)
			}
		}
	}

	for key, part := range f.files {
		fw, err := w.CreateFormFile(key, part.filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part %q: %w", key, err)
		}
		if _, err := fw.Write(part.content); err != nil {
			return nil, "", fmt.Errorf("failed to write file part %q: %w", key, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
