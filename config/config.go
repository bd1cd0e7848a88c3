package config

type (
	StartLine struct {
		// RequestLineMaxSize limits the request line, CRLF included. Values below the
		// shortest possible request line are raised.
		RequestLineMaxSize int `toml:"request_line_max_size" yaml:"request_line_max_size"`
		// StatusLineMaxSize does the same for the status line.
		StatusLineMaxSize int `toml:"status_line_max_size" yaml:"status_line_max_size"`
	}

	Headers struct {
		// MaxSize limits the whole header section, the terminating empty line included.
		MaxSize int `toml:"max_size" yaml:"max_size"`
		// Prealloc is the initial capacity of kv.Storage headers are parsed into.
		Prealloc int `toml:"prealloc" yaml:"prealloc"`
	}

	S3 struct {
		Bucket string `toml:"bucket" yaml:"bucket" test:"nullable"`
		// Prefix is prepended to every object key.
		Prefix string `toml:"prefix" yaml:"prefix" test:"nullable"`
		Region string `toml:"region" yaml:"region" test:"nullable"`
		// Endpoint overrides the default service endpoint, e.g. for MinIO or localstack.
		Endpoint     string `toml:"endpoint" yaml:"endpoint" test:"nullable"`
		UsePathStyle bool   `toml:"use_path_style" yaml:"use_path_style" test:"nullable"`
	}

	Multipart struct {
		// MaxMessageSize limits the whole multipart body. 0 disables the limit.
		MaxMessageSize int64 `toml:"max_message_size" yaml:"max_message_size" test:"nullable"`
		// MaxHeaderSize limits the header section of every single body part.
		MaxHeaderSize int `toml:"max_header_size" yaml:"max_header_size"`
		// Dir is where file-backed parts are stored. Empty value stands for os.TempDir().
		Dir string `toml:"dir" yaml:"dir" test:"nullable"`
		S3  S3     `toml:"s3" yaml:"s3"`
	}

	Form struct {
		// MaxSize limits x-www-form-urlencoded bodies. 0 disables the limit.
		MaxSize int64 `toml:"max_size" yaml:"max_size" test:"nullable"`
		// EntriesPrealloc is the number of preallocated seats for form.Form.
		EntriesPrealloc int `toml:"entries_prealloc" yaml:"entries_prealloc"`
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// the source.
		ReadBufferSize int `toml:"read_buffer_size" yaml:"read_buffer_size"`
	}
)

// Config holds the limits and pre-allocations used across the parsers.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	StartLine StartLine `toml:"start_line" yaml:"start_line"`
	Headers   Headers   `toml:"headers" yaml:"headers"`
	Multipart Multipart `toml:"multipart" yaml:"multipart"`
	Form      Form      `toml:"form" yaml:"form"`
	NET       NET       `toml:"net" yaml:"net"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		StartLine: StartLine{
			RequestLineMaxSize: 2 * 1024,
			StatusLineMaxSize:  2 * 1024,
		},
		Headers: Headers{
			MaxSize:  16 * 1024,
			Prealloc: 8,
		},
		Multipart: Multipart{
			MaxMessageSize: 0,
			MaxHeaderSize:  4 * 1024,
		},
		Form: Form{
			MaxSize:         0,
			EntriesPrealloc: 8,
		},
		NET: NET{
			ReadBufferSize: 4 * 1024,
		},
	}
}
