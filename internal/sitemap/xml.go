package sitemap

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
)

const (
	// ContentType is the media type the sitemap is served with.
	ContentType = "application/xml; charset=utf-8"

	Namespace      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation = Namespace + " " + Namespace + "/sitemap.xsd"
)

type urlset struct {
	XMLName        xml.Name `xml:"urlset"`
	Xmlns          string   `xml:"xmlns,attr"`
	XSI            string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:schemaLocation,attr"`
	URLs           []URL    `xml:"url"`
}

// Bytes renders the complete XML document.
func (s *Sitemap) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	doc := urlset{
		Xmlns:          Namespace,
		XSI:            xsiNamespace,
		SchemaLocation: SchemaLocation,
		URLs:           s.URLs,
	}
	if err := enc.Encode(doc); err != nil {
		return nil, derrors.WrapError(err, derrors.CategorySitemap, "encode sitemap").Build()
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Encode writes the document to w. Nothing is written if rendering fails.
func (s *Sitemap) Encode(w io.Writer) error {
	data, err := s.Bytes()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write sitemap").Build()
	}
	return nil
}

// WriteFile renders the document and replaces path with it atomically.
func (s *Sitemap) WriteFile(path string) error {
	data, err := s.Bytes()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create sitemap directory").
			WithContext("path", dir).Build()
	}
	tmp, err := os.CreateTemp(dir, ".sitemap-*.xml")
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create temp sitemap").Build()
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write temp sitemap").Build()
	}
	if err := tmp.Close(); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "close temp sitemap").Build()
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "chmod sitemap").Build()
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "replace sitemap").
			WithContext("path", path).Build()
	}
	return nil
}
