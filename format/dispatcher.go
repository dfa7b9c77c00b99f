package format

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gobwas/glob"
	"github.com/numtide/isorted/config"
	"github.com/numtide/isorted/editor"
)

// PythonPatterns match the file names of python sources.
var PythonPatterns = []string{"*.py", "*.pyi", "*.pyw"}

var (
	pythonGlob   = glob.MustCompile("{" + strings.Join(PythonPatterns, ",") + "}")
	shebangRegex = regexp.MustCompile(`^#!.*\bpython[0-9.]*\b`)
)

// Reporter surfaces errors to the user, e.g. as a modal dialog.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(err error)

func (f ReporterFunc) Report(err error) {
	f(err)
}

// Dispatcher is the entry point for the host: an explicit command and a pre-save hook,
// both running the same Invoker.
type Dispatcher struct {
	resolver *config.Resolver
	invoker  *Invoker
	reporter Reporter

	log *log.Logger
}

// NewDispatcher creates a Dispatcher. A nil reporter logs errors instead.
func NewDispatcher(resolver *config.Resolver, invoker *Invoker, reporter Reporter) *Dispatcher {
	l := log.WithPrefix("dispatch")

	if reporter == nil {
		reporter = ReporterFunc(func(err error) {
			l.Error(err)
		})
	}

	return &Dispatcher{
		resolver: resolver,
		invoker:  invoker,
		reporter: reporter,
		log:      l,
	}
}

// IsEnabled reports whether the view holds python source, judged by its file name or a python shebang.
func (d *Dispatcher) IsEnabled(view editor.View) bool {
	if name := view.FileName(); name != "" && pythonGlob.Match(filepath.Base(name)) {
		return true
	}

	return shebangRegex.MatchString(view.Text())
}

// Execute sorts the imports of the view. Errors are reported and returned; a view which is not
// enabled is skipped with a nil Result.
func (d *Dispatcher) Execute(ctx context.Context, view editor.View) (*Result, error) {
	if !d.IsEnabled(view) {
		d.log.Debugf("not a python buffer, skipping: %s", view.FileName())

		return nil, nil
	}

	resolved, err := d.resolver.Resolve()
	if err != nil {
		return nil, d.report(err)
	}

	result, err := d.invoker.Run(ctx, view, resolved)
	if err != nil {
		return nil, d.report(err)
	}

	return result, nil
}

// OnBeforeSave runs Execute when isort_on_save is enabled, otherwise it does nothing.
func (d *Dispatcher) OnBeforeSave(ctx context.Context, view editor.View) (*Result, error) {
	settings, err := d.resolver.Merge()
	if err != nil {
		return nil, d.report(err)
	}

	onSave, err := config.OnSave(settings)
	if err != nil {
		return nil, d.report(err)
	} else if !onSave {
		d.log.Debugf("isort_on_save disabled, skipping: %s", view.FileName())

		return nil, nil
	}

	return d.Execute(ctx, view)
}

func (d *Dispatcher) report(err error) error {
	d.reporter.Report(err)

	return err
}
