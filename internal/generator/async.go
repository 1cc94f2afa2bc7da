package generator

import (
	"context"
)

// GenerateAsync runs Generate on a new goroutine. The returned channel
// receives exactly one Result and is then closed.
func (g *Generator) GenerateAsync(ctx context.Context, dir string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		file, err := g.Generate(ctx, dir)
		out <- Result{Target: dir, File: file, Err: err}
	}()
	return out
}

// RegenerateAsync runs RegenerateForFile on a new goroutine. The returned
// channel receives exactly one Result and is then closed.
func (g *Generator) RegenerateAsync(ctx context.Context, barrelPath string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		file, err := g.RegenerateForFile(ctx, barrelPath)
		out <- Result{Target: barrelPath, File: file, Err: err}
	}()
	return out
}

// BatchGenerateAsync runs BatchGenerate on a new goroutine and delivers
// every Result in input order before closing the channel.
func (g *Generator) BatchGenerateAsync(ctx context.Context, dirs []string) <-chan Result {
	out := make(chan Result, len(dirs))
	go func() {
		defer close(out)
		results, _ := g.BatchGenerate(ctx, dirs)
		for _, r := range results {
			out <- r
		}
	}()
	return out
}
