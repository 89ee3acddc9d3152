package searchindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// wrapperPrefix is the JavaScript assignment the documentation generator
// puts in front of the JSON object.
const wrapperPrefix = "var documenterSearchIndex = "

// wireRecord uses pointers so absent fields can be told apart from empty ones
type wireRecord struct {
	Location *string `json:"location"`
	Page     *string `json:"page"`
	Title    *string `json:"title"`
	Text     *string `json:"text"`
	Category *string `json:"category"`
}

type wirePayload struct {
	Docs *[]wireRecord `json:"docs"`
}

// StripWrapper removes the JavaScript assignment around the JSON payload,
// if present, and returns the bare JSON object.
func StripWrapper(raw []byte) ([]byte, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}

	if data[0] == '[' {
		return nil, ErrNoDocs
	}

	if data[0] != '{' {
		// Any "var x = ", "const x = " or "window.x = " assignment
		eq := bytes.IndexByte(data, '=')
		if eq < 0 {
			return nil, fmt.Errorf("unrecognized search index wrapper: %q", preview(data))
		}
		data = bytes.TrimSpace(data[eq+1:])
	}

	data = bytes.TrimSpace(bytes.TrimRight(data, ";\n\r\t "))
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return data, nil
}

// Decode reads a search index payload, either the bare JSON object or the
// generated JavaScript file, and checks that every record carries exactly
// the five known fields with a known category.
func Decode(r io.Reader) (*Index, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read search index: %w", err)
	}
	return DecodeBytes(raw)
}

// DecodeBytes is Decode over an in-memory payload.
func DecodeBytes(raw []byte) (*Index, error) {
	data, err := StripWrapper(raw)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var payload wirePayload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode search index: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrTrailingData, preview(data[dec.InputOffset():]))
	}
	if payload.Docs == nil {
		return nil, ErrNoDocs
	}

	wire := *payload.Docs
	idx := &Index{Docs: make([]Record, 0, len(wire))}
	for i, w := range wire {
		rec, err := w.record()
		if err != nil {
			return nil, fmt.Errorf("docs[%d]: %w", i, err)
		}
		idx.Docs = append(idx.Docs, rec)
	}

	return idx, nil
}

func (w wireRecord) record() (Record, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"location", w.Location},
		{"page", w.Page},
		{"title", w.Title},
		{"text", w.Text},
		{"category", w.Category},
	}
	for _, f := range fields {
		if f.value == nil {
			return Record{}, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	category, err := ParseCategory(*w.Category)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Location: *w.Location,
		Page:     *w.Page,
		Title:    *w.Title,
		Text:     *w.Text,
		Category: category,
	}, nil
}

// ParseFile decodes the search index stored at path.
func ParseFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	defer f.Close()

	idx, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// Encode writes idx in the same JavaScript form the documentation
// generator emits, so the result can replace a site's search_index.js.
func Encode(w io.Writer, idx *Index) error {
	var buf bytes.Buffer
	buf.WriteString(wrapperPrefix)
	buf.WriteString("{\"docs\":\n[")

	enc := json.NewEncoder(&buf)
	// Docstrings carry "<:" and "&&", keep them readable
	enc.SetEscapeHTML(false)

	for i, rec := range idx.Docs {
		if !rec.Category.Valid() {
			return fmt.Errorf("docs[%d]: %w: %q", i, ErrInvalidCategory, rec.Category)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode docs[%d]: %w", i, err)
		}
		// Encoder terminates every value with a newline
		buf.Truncate(buf.Len() - 1)
	}

	buf.WriteString("]\n}\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile encodes idx to path, replacing any existing file.
func WriteFile(path string, idx *Index) error {
	var buf bytes.Buffer
	if err := Encode(&buf, idx); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write search index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace search index: %w", err)
	}
	return nil
}

func preview(data []byte) string {
	if len(data) <= 40 {
		return string(data)
	}
	n := 40
	for n > 0 && !utf8.RuneStart(data[n]) {
		n--
	}
	return string(data[:n]) + "..."
}
