package main

import (
	"github.com/indigo-web/wireparse/http/form"
	"github.com/indigo-web/wireparse/kv"
)

type Header struct {
	Key   string `json:"key" msgpack:"key"`
	Value string `json:"value" msgpack:"value"`
}

type PartReport struct {
	Headers     []Header `json:"headers" msgpack:"headers"`
	Name        string   `json:"name,omitempty" msgpack:"name,omitempty"`
	Filename    string   `json:"filename,omitempty" msgpack:"filename,omitempty"`
	ContentType string   `json:"content_type" msgpack:"content_type"`
	Charset     string   `json:"charset,omitempty" msgpack:"charset,omitempty"`
	Size        int64    `json:"size" msgpack:"size"`

	// Content is filled for form fields only.
	Content string `json:"content,omitempty" msgpack:"content,omitempty"`

	// Location is a file path or an s3:// URI of the stored upload.
	Location string `json:"location,omitempty" msgpack:"location,omitempty"`
}

type MultipartReport struct {
	Boundary string       `json:"boundary" msgpack:"boundary"`
	Parts    []PartReport `json:"parts" msgpack:"parts"`
}

type FieldReport struct {
	Name  string `json:"name,omitempty" msgpack:"name,omitempty"`
	Value string `json:"value,omitempty" msgpack:"value,omitempty"`

	// Bare marks a token standing alone, Null marks a value spelled as null.
	Bare bool `json:"bare,omitempty" msgpack:"bare,omitempty"`
	Null bool `json:"null,omitempty" msgpack:"null,omitempty"`
}

type FormReport struct {
	Fields []FieldReport `json:"fields" msgpack:"fields"`
}

type StatusReport struct {
	Proto   string   `json:"proto,omitempty" msgpack:"proto,omitempty"`
	Major   int      `json:"major" msgpack:"major"`
	Minor   int      `json:"minor" msgpack:"minor"`
	Code    int      `json:"code" msgpack:"code"`
	Reason  string   `json:"reason" msgpack:"reason"`
	Headers []Header `json:"headers" msgpack:"headers"`
}

type RequestReport struct {
	Method  string   `json:"method" msgpack:"method"`
	Target  string   `json:"target" msgpack:"target"`
	Proto   string   `json:"proto,omitempty" msgpack:"proto,omitempty"`
	Major   int      `json:"major" msgpack:"major"`
	Minor   int      `json:"minor" msgpack:"minor"`
	Headers []Header `json:"headers" msgpack:"headers"`

	// BodySize is the size of a body that is neither multipart nor a form.
	BodySize  int64            `json:"body_size,omitempty" msgpack:"body_size,omitempty"`
	Form      *FormReport      `json:"form,omitempty" msgpack:"form,omitempty"`
	Multipart *MultipartReport `json:"multipart,omitempty" msgpack:"multipart,omitempty"`
}

func headersReport(headers *kv.Storage) []Header {
	pairs := headers.Expose()
	report := make([]Header, 0, len(pairs))
	for _, pair := range pairs {
		report = append(report, Header{Key: pair.Key, Value: pair.Value})
	}

	return report
}

func formReport(f form.Form) *FormReport {
	report := &FormReport{Fields: make([]FieldReport, 0, len(f))}
	for _, pair := range f {
		report.Fields = append(report.Fields, FieldReport{
			Name:  pair.Name,
			Value: pair.Value,
			Bare:  !pair.HasName,
			Null:  pair.HasName && !pair.HasValue,
		})
	}

	return report
}
