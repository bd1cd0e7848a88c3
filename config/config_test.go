package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoZeroFields(t *testing.T) {
	cfg := Default()

	for _, field := range visit(newVar(*cfg), "Config", false) {
		assert.Fail(t, "zero-value field", field)
	}
}

type variable struct {
	Type  reflect.Type
	Value reflect.Value
}

func newVar(a any) variable {
	return variable{reflect.TypeOf(a), reflect.ValueOf(a)}
}

func visit(a variable, name string, nullable bool) (fields []string) {
	if a.Type.Kind() == reflect.Struct {
		for field := range a.Value.NumField() {
			v1 := variable{a.Type.Field(field).Type, a.Value.Field(field)}
			fieldname := a.Type.Field(field).Name
			isNullable := a.Type.Field(field).Tag.Get("test") == "nullable"
			fields = append(fields, visit(v1, name+"."+fieldname, isNullable)...)
		}

		return fields
	}

	if a.Value.IsZero() && !nullable {
		return []string{name}
	}

	return nil
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("toml", func(t *testing.T) {
		path := writeFile(t, "wireparse.toml", `
[multipart]
max_message_size = 1048576
dir = "/var/spool/parts"

[multipart.s3]
bucket = "uploads"
region = "eu-central-1"

[start_line]
request_line_max_size = 4096
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, int64(1<<20), cfg.Multipart.MaxMessageSize)
		require.Equal(t, "/var/spool/parts", cfg.Multipart.Dir)
		require.Equal(t, "uploads", cfg.Multipart.S3.Bucket)
		require.Equal(t, "eu-central-1", cfg.Multipart.S3.Region)
		require.Equal(t, 4096, cfg.StartLine.RequestLineMaxSize)
		// untouched keys keep defaults
		require.Equal(t, Default().StartLine.StatusLineMaxSize, cfg.StartLine.StatusLineMaxSize)
		require.Equal(t, Default().Multipart.MaxHeaderSize, cfg.Multipart.MaxHeaderSize)
	})

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "wireparse.yml", `
headers:
  max_size: 8192
form:
  max_size: 512
net:
  read_buffer_size: 128
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, 8192, cfg.Headers.MaxSize)
		require.Equal(t, int64(512), cfg.Form.MaxSize)
		require.Equal(t, 128, cfg.NET.ReadBufferSize)
		require.Equal(t, Default().Headers.Prealloc, cfg.Headers.Prealloc)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeFile(t, "wireparse.yaml", "net:\n  read_buffer_size: 0\n")
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Load(writeFile(t, "broken.toml", "[multipart\n"))
		require.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := Load(writeFile(t, "config.json", "{}"))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}
