// Package batch applies a transform set to many score files in place.
package batch

import (
	"context"
	"fmt"

	"github.com/FocuswithJustin/MuseScoreTools/core/container"
	"github.com/FocuswithJustin/MuseScoreTools/core/score"
	"github.com/FocuswithJustin/MuseScoreTools/core/transform"
	"github.com/FocuswithJustin/MuseScoreTools/internal/fileutil"
	"github.com/FocuswithJustin/MuseScoreTools/internal/logging"
)

// OpConvert names convert operations in logs.
const OpConvert = "convert"

// Options controls a batch conversion.
type Options struct {
	// Backup copies each original to <path>~ before it is overwritten.
	Backup bool
	Indent string
}

// Result is the outcome for one file.
type Result struct {
	Path        string            `json:"path"`
	Backup      string            `json:"backup,omitempty"`
	Diagnostics score.Diagnostics `json:"diagnostics,omitempty"`
	Err         error             `json:"-"`
	Error       string            `json:"error,omitempty"`
}

// OK reports whether the file was converted and saved.
func (r Result) OK() bool {
	return r.Err == nil
}

// ConvertFiles loads, transforms and saves each path in turn, holding an
// advisory lock on each file while it is rewritten. A failure on one file is
// recorded in its Result and does not stop the others.
func ConvertFiles(ctx context.Context, paths []string, set transform.Set, opts Options) []Result {
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		res := convertFile(path, set, opts)
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
		for _, d := range res.Diagnostics {
			logging.Diagnostic(ctx, path, d.Operation, d.Message)
		}
		logging.FileOperation(ctx, OpConvert, path, res.Err, "diagnostics", len(res.Diagnostics))
		results = append(results, res)
	}
	return results
}

func convertFile(path string, set transform.Set, opts Options) (res Result) {
	res.Path = path

	unlock, err := fileutil.Lock(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() {
		if uerr := unlock(); uerr != nil && res.Err == nil {
			res.Err = uerr
		}
	}()

	doc, err := container.Load(path)
	if err != nil {
		res.Err = err
		return res
	}

	diags, err := transform.Apply(doc, set)
	res.Diagnostics = diags
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", path, err)
		return res
	}

	if opts.Backup {
		backup, err := fileutil.Backup(path)
		if err != nil {
			res.Err = err
			return res
		}
		res.Backup = backup
	}

	if err := container.SaveWithOptions(doc, path, container.Options{Indent: opts.Indent}); err != nil {
		res.Err = err
	}
	return res
}

// Failed counts results with an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
