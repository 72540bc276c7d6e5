package runtime

import (
	"context"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/risor-io/risor/object"
)

// outputs collects the files an emitter writes. Emitting the same path
// twice appends.
type outputs struct {
	files map[string]string
}

func newOutputs() *outputs {
	return &outputs{files: make(map[string]string)}
}

// makeEmitFn creates the "emit" host function.
//
// emit(path, text) → nil
//
// path must be relative and stay inside the output directory.
func makeEmitFn(out *outputs) *object.Builtin {
	return object.NewBuiltin("emit", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("emit", 2, len(args))
		}
		p, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("emit: path must be a string, got %s", args[0].Type())
		}
		text, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("emit: text must be a string, got %s", args[1].Type())
		}
		clean, err := cleanOutputPath(p.Value())
		if err != nil {
			return object.Errorf("emit: %v", err)
		}
		out.files[clean] += text.Value()
		return object.Nil
	})
}

type badPathError string

func (e badPathError) Error() string { return "invalid output path " + string(e) }

func cleanOutputPath(p string) (string, error) {
	if p == "" || path.IsAbs(p) || strings.HasPrefix(p, "\\") {
		return "", badPathError(p)
	}
	clean := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", badPathError(p)
	}
	return clean, nil
}

// logObject provides log.Info/Warn/Error/Debug methods for Risor scripts.
type logObject struct {
	logger *log.Logger
}

func (l *logObject) Debug(msg string) { l.logger.Debug(msg) }

func (l *logObject) Info(msg string) { l.logger.Info(msg) }

func (l *logObject) Warn(msg string) { l.logger.Warn(msg) }

func (l *logObject) Error(msg string) { l.logger.Error(msg) }
