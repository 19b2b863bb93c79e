package charts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"loteriadash/pkg/contracts/domain"
)

// Result is the outcome of one view. A failed view carries Err and leaves
// the others untouched.
type Result struct {
	Name   string             `json:"name"`
	Config domain.ChartConfig `json:"config"`
	Err    error              `json:"-"`
}

// Error returns the failure message, empty on success
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// BuildAll builds every catalog chart concurrently
func BuildAll(ctx context.Context, table *domain.Table, opts Options) []Result {
	names := Names()
	results := make([]Result, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range names {
		g.Go(func() error {
			results[i] = buildIsolated(ctx, name, table, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func buildIsolated(ctx context.Context, name string, table *domain.Table, opts Options) (res Result) {
	res.Name = name
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("chart %s panicked: %v", name, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	res.Config, res.Err = Build(name, table, opts)
	return res
}

// RenderAll writes one PNG per successful result into dir and returns the
// written paths keyed by chart name. Render failures are reported per view.
func (r *Renderer) RenderAll(ctx context.Context, results []Result, dir string) (map[string]string, map[string]error) {
	paths := make(map[string]string, len(results))
	failures := make(map[string]error)

	for _, res := range results {
		if res.Err != nil {
			failures[res.Name] = res.Err
			continue
		}
		if err := ctx.Err(); err != nil {
			failures[res.Name] = err
			continue
		}

		var buf bytes.Buffer
		if err := r.RenderPNG(res.Config, &buf); err != nil {
			failures[res.Name] = err
			continue
		}
		path := filepath.Join(dir, res.Name+".png")
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			failures[res.Name] = fmt.Errorf("write %s: %w", path, err)
			continue
		}
		paths[res.Name] = path
	}
	return paths, failures
}
