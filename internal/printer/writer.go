package printer

import (
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/nao1215/auditprint/internal/log"
	"github.com/nao1215/auditprint/internal/model"
)

// Tag is the component label used for log lines from this package.
const Tag = "Printer"

// DefaultStdoutDelay is how long a stdout delivery waits after writing
// before it resolves.
const DefaultStdoutDelay = 50 * time.Millisecond

// DefaultFileMode is the permission used when a destination file is created.
// Reports may contain URLs and page content, so only the owner can read them.
const DefaultFileMode fs.FileMode = 0600

// Destination is where an artifact is delivered: stdout or a file path.
type Destination struct {
	path string
}

// Stdout is the standard output destination.
var Stdout = Destination{}

// FileDestination returns the destination for path.
// An empty path is Stdout.
func FileDestination(path string) Destination {
	return Destination{path: path}
}

// IsStdout reports whether d is the standard output destination.
func (d Destination) IsStdout() bool {
	return d.path == ""
}

// Path returns the file path, or "" for stdout.
func (d Destination) Path() string {
	return d.path
}

// String returns "stdout" or the file path.
func (d Destination) String() string {
	if d.IsStdout() {
		return "stdout"
	}
	return d.path
}

// Printer builds artifacts and delivers them.
// A Printer has no mutable state and may be shared between goroutines.
type Printer struct {
	renderer    Renderer
	logger      log.Logger
	stdout      io.Writer
	stdoutDelay time.Duration
	fileMode    fs.FileMode
}

// Option configures a Printer.
type Option func(*Printer)

// WithLogger sets the logger that receives the stdout warning and the
// file-written message.
func WithLogger(logger log.Logger) Option {
	return func(p *Printer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStdout sets the writer used for the stdout destination.
func WithStdout(w io.Writer) Option {
	return func(p *Printer) {
		if w != nil {
			p.stdout = w
		}
	}
}

// WithStdoutDelay sets the delay between writing to stdout and resolving.
// Negative values are treated as zero.
func WithStdoutDelay(d time.Duration) Option {
	return func(p *Printer) {
		p.stdoutDelay = max(d, 0)
	}
}

// WithFileMode sets the permission bits for newly created files.
func WithFileMode(mode fs.FileMode) Option {
	return func(p *Printer) {
		p.fileMode = mode
	}
}

// New creates a Printer that renders HTML with renderer.
// renderer may be nil if HTML modes are never requested.
func New(renderer Renderer, opts ...Option) *Printer {
	p := &Printer{
		renderer:    renderer,
		logger:      log.NewTaggedLogger(nil),
		stdout:      os.Stdout,
		stdoutDelay: DefaultStdoutDelay,
		fileMode:    DefaultFileMode,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateOutput builds the artifact for result with the Printer's renderer.
func (p *Printer) CreateOutput(result model.Result, mode OutputMode) (string, error) {
	return CreateOutput(p.renderer, result, mode)
}

// ResolveDestination maps a destination path to a Destination.
// An empty path resolves to Stdout and logs a warning.
func (p *Printer) ResolveDestination(path string) Destination {
	if path == "" {
		p.logger.Warn(Tag, "No output path set; using stdout")
		return Stdout
	}
	return FileDestination(path)
}

// Write renders result in the mode named modeName and delivers it to path.
//
// Mode and render failures are returned immediately and nothing is written.
// Otherwise the write runs on its own goroutine and the returned Delivery
// resolves with result once the artifact has been fully written, or with the
// write error.
func (p *Printer) Write(result model.Result, modeName, path string) (*Delivery, error) {
	mode, err := ModeFromName(modeName)
	if err != nil {
		return nil, err
	}

	dest := p.ResolveDestination(path)

	output, err := p.CreateOutput(result, mode)
	if err != nil {
		return nil, err
	}

	d := newDelivery()
	go func() {
		if dest.IsStdout() {
			d.resolve(result, p.writeToStdout(output))
			return
		}
		d.resolve(result, p.writeFile(dest.Path(), output, mode))
	}()
	return d, nil
}

// Print is Write followed by Wait.
func (p *Printer) Print(result model.Result, modeName, path string) (model.Result, error) {
	d, err := p.Write(result, modeName, path)
	if err != nil {
		return nil, err
	}
	return d.Wait()
}

// writeToStdout writes the artifact and a newline, then waits out the delay
// so pending log lines are flushed before the caller continues.
func (p *Printer) writeToStdout(output string) error {
	if _, err := io.WriteString(p.stdout, output+"\n"); err != nil {
		return err
	}
	time.Sleep(p.stdoutDelay)
	return nil
}

func (p *Printer) writeFile(path, output string, mode OutputMode) error {
	// Parent directories are not created; a missing one surfaces as the write error.
	if err := os.WriteFile(path, []byte(output), p.fileMode); err != nil {
		return err
	}
	p.logger.Log(Tag, mode.String()+" output written to "+path)
	return nil
}

// Delivery is the pending outcome of a Write. It resolves exactly once.
type Delivery struct {
	done   chan struct{}
	result model.Result
	err    error
}

func newDelivery() *Delivery {
	return &Delivery{done: make(chan struct{})}
}

func (d *Delivery) resolve(result model.Result, err error) {
	if err != nil {
		d.err = err
	} else {
		d.result = result
	}
	close(d.done)
}

// Done returns a channel that is closed when the delivery has resolved.
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the delivery resolves. On success it returns the
// original result passed to Write, not the rendered artifact.
func (d *Delivery) Wait() (model.Result, error) {
	<-d.done
	return d.result, d.err
}

// Err blocks until the delivery resolves and returns its error, if any.
func (d *Delivery) Err() error {
	<-d.done
	return d.err
}
