package plan

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/Aakash-Pandya/lib-tools/internal/libconfig"
	"github.com/Aakash-Pandya/lib-tools/internal/logging"
	"github.com/Aakash-Pandya/lib-tools/internal/tsconfig"
)

var (
	// ErrTsConfigRequired is returned when no compiler configuration can be
	// found for a transpilation or a TypeScript bundle entry.
	ErrTsConfigRequired = errors.New("tsConfig is required")

	// ErrInvalidScriptTarget is returned for an unrecognized target string.
	ErrInvalidScriptTarget = errors.New("invalid script target")

	// ErrTranspilationIndex is returned when a bundle references a
	// transpilation entry that was not planned.
	ErrTranspilationIndex = errors.New("transpilation entry index out of range")
)

// Result is the outcome of planning one project. Exactly one of Project and
// Err is set.
type Result struct {
	// Index is the project's position in the document.
	Index   int
	Name    string
	Project *Project
	Err     error
}

// Planner turns project configs into build plans. It is safe for concurrent
// use; the loader's schema and the compiler configuration cache are its only
// shared state.
type Planner struct {
	loader *libconfig.Loader
	reader *tsconfig.Reader
	logger *log.Logger
}

// New returns a Planner that loads documents with loader and reads compiler
// configurations with reader.
func New(loader *libconfig.Loader, reader *tsconfig.Reader) *Planner {
	return &Planner{
		loader: loader,
		reader: reader,
		logger: logging.New("plan"),
	}
}

// PlanFile loads the document at path and plans every selected project.
func (p *Planner) PlanFile(ctx context.Context, path string, opts BuildOptions) (*libconfig.Document, []Result, error) {
	doc, err := p.loader.Load(path)
	if err != nil {
		return nil, nil, err
	}
	results, err := p.PlanAll(ctx, doc, opts)
	return doc, results, err
}

// PlanAll plans every project selected by opts.Filter. Projects are planned
// independently: a failing project is reported in its Result and does not
// stop its siblings. Results are in document order. The returned error is
// non-nil only when ctx is cancelled before all projects were scheduled.
func (p *Planner) PlanAll(ctx context.Context, doc *libconfig.Document, opts BuildOptions) ([]Result, error) {
	if opts.LogLevel != "" {
		level, err := logging.ParseLevel(opts.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("build options: %w", err)
		}
		p.logger.SetLevel(level)
	}

	var selected []int
	for i, pc := range doc.Config.Projects {
		if opts.selects(pc.Name) {
			selected = append(selected, i)
		}
	}
	p.logger.Debug("planning projects", "selected", len(selected), "total", len(doc.Config.Projects))

	results := make([]Result, len(selected))
	limit := opts.limit()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	var scheduleErr error
	for slot, idx := range selected {
		results[slot] = Result{Index: idx, Name: doc.Config.Projects[idx].Name}
		if err := gctx.Err(); err != nil {
			results[slot].Err = err
			scheduleErr = err
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[slot].Err = err
				return nil
			}
			project, err := p.PlanProject(doc, idx, opts)
			if err != nil {
				p.logger.Error("planning failed", "project", results[slot].Name, "error", err)
				results[slot].Err = err
				return nil
			}
			results[slot].Project = project
			return nil
		})
	}
	_ = g.Wait()

	return results, scheduleErr
}

// limit is the number of projects planned at once. Values below 1 use one
// worker per CPU.
func (o BuildOptions) limit() int {
	if o.Concurrency < 1 {
		return runtime.NumCPU()
	}
	return o.Concurrency
}

// PlanProject resolves extends and environment overrides for the project at
// index in doc and derives its plan.
func (p *Planner) PlanProject(doc *libconfig.Document, index int, opts BuildOptions) (*Project, error) {
	if index < 0 || index >= len(doc.Config.Projects) {
		return nil, fmt.Errorf("project index %d out of range", index)
	}
	resolved, applied, err := libconfig.Resolve(doc.Config.Projects[index], doc.Config.Projects, opts.Environment)
	if err != nil {
		return nil, err
	}
	project, err := p.DeriveProject(doc.WorkspaceRoot, resolved, opts)
	if err != nil {
		return nil, err
	}
	project.AppliedOverrides = applied
	if project.Skip {
		return project, nil
	}
	if project.Fingerprint, err = project.computeFingerprint(); err != nil {
		return nil, err
	}
	return project, nil
}

// DeriveProject builds the plan of a project whose extends chain and
// environment overrides have already been applied. A project the filter does
// not select comes back with only Name and Skip set.
func (p *Planner) DeriveProject(workspaceRoot string, cfg libconfig.ProjectConfig, opts BuildOptions) (*Project, error) {
	if !opts.selects(cfg.Name) {
		return &Project{Name: cfg.Name, Skip: true}, nil
	}

	r, err := resolveLocations(workspaceRoot, cfg)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("resolved project", "name", cfg.Name, "package", r.PackageName, "output", r.OutputPath)

	project := &Project{Name: cfg.Name, Resolved: *r}

	if project.Clean, err = planClean(r); err != nil {
		return nil, err
	}
	project.Copy = planCopy(r)
	project.Styles = planStyles(r)

	if project.Transpilations, err = planTranspilations(r, p.reader, &project.EntryPoints); err != nil {
		return nil, err
	}
	if project.Bundles, err = planBundles(r, project.Transpilations); err != nil {
		return nil, err
	}
	return project, nil
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
