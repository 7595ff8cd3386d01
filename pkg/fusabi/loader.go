package fusabi

import (
	"os"
	"path/filepath"

	"github.com/fusabi-lang/fusabi/internal/ferr"
)

// FileLoader resolves a `#load "path"` directive to source text. A host
// embedding Fusabi supplies its own (reading from disk, an in-memory
// bundle, a VFS, ...); Resolve receives the literal path as written in the
// directive and returns its canonical form (used as the cycle-detection
// key) alongside the source.
type FileLoader interface {
	Resolve(path string) (canonical string, source string, err error)
}

// OSFileLoader resolves #load paths against the local filesystem, relative
// to Root.
type OSFileLoader struct {
	Root string
}

func (l *OSFileLoader) Resolve(path string) (string, string, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(l.Root, path)
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", "", err
	}
	return abs, string(data), nil
}

// loadStack tracks in-progress `#load` resolutions for cycle detection,
// grounded on the teacher's internal/modules.Loader Processing map: a
// canonical path present in the stack when re-entered means a cycle.
type loadStack struct {
	active map[string]bool
	order  []string
}

func newLoadStack() *loadStack {
	return &loadStack{active: make(map[string]bool)}
}

// enter pushes path onto the stack, or returns a *ferr.CircularLoad if it
// is already being resolved somewhere up the call chain.
func (s *loadStack) enter(path string) error {
	if s.active[path] {
		cycle := append(append([]string(nil), s.order...), path)
		return &ferr.CircularLoad{Cycle: cycle}
	}
	s.active[path] = true
	s.order = append(s.order, path)
	return nil
}

func (s *loadStack) leave(path string) {
	delete(s.active, path)
	if n := len(s.order); n > 0 && s.order[n-1] == path {
		s.order = s.order[:n-1]
	}
}

// LoadSource resolves and loads a #load target through e's FileLoader,
// evaluating it in this Engine before returning its canonical path — the
// evaluated file's top-level lets land in this Engine's globals, same as a
// same-file load would (spec.md §9's shared-globals resolution, consistent
// with Engine.Eval).
func (e *Engine) LoadSource(path string, front FrontEnd) (string, error) {
	if e.loader == nil {
		e.loader = &OSFileLoader{Root: "."}
	}
	if e.loads == nil {
		e.loads = newLoadStack()
	}

	canonical, source, err := e.loader.Resolve(path)
	if err != nil {
		return "", err
	}
	if err := e.loads.enter(canonical); err != nil {
		return "", err
	}
	defer e.loads.leave(canonical)

	if _, err := e.Eval(source, front); err != nil {
		return "", err
	}
	return canonical, nil
}
