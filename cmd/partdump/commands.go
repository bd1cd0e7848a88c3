package main

import (
	"context"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/wireparse/config"
	"github.com/indigo-web/wireparse/http/form"
	"github.com/indigo-web/wireparse/http/mime"
	"github.com/indigo-web/wireparse/http/mime/multipart"
	"github.com/indigo-web/wireparse/http/mime/multipart/s3stream"
	"github.com/indigo-web/wireparse/http/parser/http1"
	"github.com/indigo-web/wireparse/http/status"
	"github.com/indigo-web/wireparse/internal/logging"
	"github.com/indigo-web/wireparse/kv"
	"github.com/indigo-web/wireparse/transport"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func multipartCommand() *cli.Command {
	return &cli.Command{
		Name:      "multipart",
		Usage:     "Dump body parts of a multipart message",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{BoundaryFlag, ChunkedFlag, DirFlag},
		Action:    multipartAction,
	}
}

func formCommand() *cli.Command {
	return &cli.Command{
		Name:      "form",
		Usage:     "Dump fields of an x-www-form-urlencoded body",
		ArgsUsage: "<file>",
		Action:    formAction,
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Dump the status line and headers of a response",
		ArgsUsage: "<file>",
		Action:    statusAction,
	}
}

func requestCommand() *cli.Command {
	return &cli.Command{
		Name:      "request",
		Usage:     "Dump the request line, headers and body of a request",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{DirFlag},
		Action:    requestAction,
	}
}

// session carries everything a command needs besides its input.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	renderer *Renderer
	input    io.ReadCloser
}

func newSession(c *cli.Context) (*session, error) {
	if c.NArg() < 1 {
		return nil, cli.Exit("input file required", 1)
	}

	cfg := config.Default()
	if configPath := c.String(ConfigFlag.Name); configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, cli.Exit(err.Error(), 1)
		}
	}

	log, err := logging.New(c.App.ErrWriter, c.String(LogLevelFlag.Name))
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}

	renderer, err := NewRenderer(c)
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}

	input := io.NopCloser(c.App.Reader)
	if name := c.Args().First(); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			return nil, cli.Exit(err.Error(), 1)
		}

		input = file
	}

	return &session{
		cfg:      cfg,
		log:      log,
		renderer: renderer,
		input:    input,
	}, nil
}

func (s *session) Close() error {
	_ = s.log.Sync()
	return s.input.Close()
}

func (s *session) client(src io.Reader) transport.Client {
	return transport.NewClient(src, 0, make([]byte, s.cfg.NET.ReadBufferSize))
}

// provider keeps form fields in memory. File uploads go to S3 if a bucket is configured,
// to the directory if any and to memory otherwise.
func (s *session) provider(ctx context.Context, dir string) (multipart.Provider, error) {
	fields := &multipart.MemoryProvider{Prealloc: 64}
	cfg := s.cfg.Multipart
	if dir != "" {
		cfg.Dir = dir
	}

	var files multipart.Provider
	switch {
	case cfg.S3.Bucket != "":
		client, err := s3stream.NewClient(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}

		if files, err = s3stream.New(ctx, client, cfg, s.log); err != nil {
			return nil, err
		}
	case cfg.Dir != "":
		files = multipart.FileProvider{Dir: cfg.Dir}
	default:
		files = &multipart.MemoryProvider{}
	}

	return multipart.FormDataProvider{Files: files, Fields: fields}, nil
}

// malformed reports a failure to process the input.
func malformed(err error) error {
	return cli.Exit(err.Error(), 2)
}

func multipartAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	client := s.client(s.input)
	if c.Bool(ChunkedFlag.Name) {
		client = s.client(transport.NewDechunker(client, false))
	}

	provider, err := s.provider(c.Context, c.String(DirFlag.Name))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	report, err := dumpMultipart(c.Context, s, client, c.String(BoundaryFlag.Name), provider)
	if err != nil {
		return malformed(err)
	}

	return s.renderer.Render(report)
}

func formAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := dumpForm(c.Context, s, s.client(s.input))
	if err != nil {
		return malformed(err)
	}

	return s.renderer.Render(report)
}

func statusAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	var line http1.StatusLine
	client := s.client(s.input)
	parser := http1.NewStatusLineParser(&line, s.cfg.StartLine.StatusLineMaxSize)
	if err = transport.Feed(c.Context, client, parser, s.log); err != nil {
		return malformed(err)
	}

	headers, err := s.headers(c.Context, client)
	if err != nil {
		return malformed(err)
	}

	return s.renderer.Render(StatusReport{
		Proto:   line.Proto().String(),
		Major:   line.Major,
		Minor:   line.Minor,
		Code:    int(line.Code),
		Reason:  line.Reason,
		Headers: headersReport(headers),
	})
}

func requestAction(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	var line http1.RequestLine
	client := s.client(s.input)
	parser := http1.NewRequestLineParser(&line, s.cfg.StartLine.RequestLineMaxSize)
	if err = transport.Feed(c.Context, client, parser, s.log); err != nil {
		return malformed(err)
	}

	headers, err := s.headers(c.Context, client)
	if err != nil {
		return malformed(err)
	}

	report := &RequestReport{
		Method:  line.MethodName,
		Target:  line.Target,
		Proto:   line.Proto().String(),
		Major:   line.Major,
		Minor:   line.Minor,
		Headers: headersReport(headers),
	}

	body, err := requestBody(client, headers)
	if err != nil {
		return malformed(err)
	}

	if body != nil {
		if err = s.dumpBody(c, report, headers.Value("Content-Type"), body); err != nil {
			return malformed(err)
		}
	}

	return s.renderer.Render(report)
}

func (s *session) dumpBody(c *cli.Context, report *RequestReport, contentType string, body io.Reader) (err error) {
	switch {
	case mime.IsMultipart(contentType):
		var (
			boundary string
			provider multipart.Provider
		)

		if boundary, err = mime.Boundary(contentType); err != nil {
			return err
		}

		if provider, err = s.provider(c.Context, c.String(DirFlag.Name)); err != nil {
			return err
		}

		report.Multipart, err = dumpMultipart(c.Context, s, s.client(body), boundary, provider)
	case len(contentType) > 0 && mime.Complies(mime.FormUrlencoded, contentType):
		report.Form, err = dumpForm(c.Context, s, s.client(body))
	default:
		report.BodySize, err = io.Copy(io.Discard, body)
	}

	return err
}

func (s *session) headers(ctx context.Context, client transport.Client) (*kv.Storage, error) {
	headers := kv.NewPrealloc(s.cfg.Headers.Prealloc)
	parser := http1.NewHeaderParser(headers, s.cfg.Headers.MaxSize)

	return headers, transport.Feed(ctx, client, parser, s.log)
}

// requestBody returns a reader of the message body framed by the headers, or nil if the
// message has none.
func requestBody(client transport.Client, headers *kv.Storage) (io.Reader, error) {
	if coding, found := headers.Get("Transfer-Encoding"); found {
		if i := strings.LastIndexByte(coding, ','); i != -1 {
			coding = coding[i+1:]
		}

		if !strcomp.EqualFold(strings.TrimSpace(coding), "chunked") {
			return nil, status.ErrUnsupportedEncoding
		}

		return transport.NewDechunker(client, headers.Has("Trailer")), nil
	}

	value, found := headers.Get("Content-Length")
	if !found {
		return nil, nil
	}

	length, err := strconv.ParseUint(value, 10, 63)
	if err != nil {
		return nil, status.ErrBadRequest
	}

	return transport.NewFixedReader(client, int64(length)), nil
}

func dumpForm(ctx context.Context, s *session, client transport.Client) (*FormReport, error) {
	parser := form.NewParser(s.cfg.Form.MaxSize, s.cfg.Form.EntriesPrealloc)
	if err := transport.Feed(ctx, client, parser, s.log); err != nil {
		return nil, err
	}

	return formReport(parser.Form()), nil
}

func dumpMultipart(
	ctx context.Context, s *session, client transport.Client, boundary string, provider multipart.Provider,
) (*MultipartReport, error) {
	reader, err := multipart.NewReader(s.cfg, boundary, provider, s.log)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	report := &MultipartReport{Boundary: boundary, Parts: []PartReport{}}
	for part, err := range reader.Feed(ctx, client) {
		if err != nil {
			return nil, err
		}

		entry, err := partReport(part)
		if err != nil {
			return nil, err
		}

		report.Parts = append(report.Parts, entry)
	}

	return report, nil
}

func partReport(part *multipart.Part) (PartReport, error) {
	report := PartReport{
		Headers:     headersReport(part.Headers),
		ContentType: part.ContentType(),
		Charset:     mime.CharsetOf(part.ContentType()),
		Size:        part.Size(),
	}

	disposition, _ := part.Disposition()
	report.Name, report.Filename = disposition.Name, disposition.Filename

	switch stream := part.Stream().(type) {
	case *multipart.FileStream:
		report.Location = stream.Name()
	case *s3stream.Stream:
		report.Location = "s3://" + path.Join(stream.Bucket(), stream.Key())
	}

	if !disposition.IsFile() {
		content, err := part.ReadAll()
		if err != nil {
			return report, err
		}

		report.Content = string(content)
	}

	return report, nil
}
