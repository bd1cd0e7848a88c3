package main

import (
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Format represents an output format.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat parses a format string, returning an error for unknown formats.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be json or msgpack)", s)
	}
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Renderer writes reports in the selected format.
type Renderer struct {
	format Format
	out    io.Writer
}

// NewRenderer creates a renderer from CLI context.
func NewRenderer(c *cli.Context) (*Renderer, error) {
	format, err := ParseFormat(c.String(FormatFlag.Name))
	if err != nil {
		return nil, err
	}

	return &Renderer{format: format, out: c.App.Writer}, nil
}

func (r *Renderer) Render(v any) error {
	switch r.format {
	case FormatMsgpack:
		return msgpack.NewEncoder(r.out).Encode(v)
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(r.out, "%s\n", data)
		return err
	}
}
