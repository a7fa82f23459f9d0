// Command mst is the CLI for batch-editing, merging and splitting MuseScore
// scores (.mscx and .mscz).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	json "github.com/goccy/go-json"

	"github.com/FocuswithJustin/MuseScoreTools/core/container"
	"github.com/FocuswithJustin/MuseScoreTools/core/recombine"
	"github.com/FocuswithJustin/MuseScoreTools/core/score"
	"github.com/FocuswithJustin/MuseScoreTools/core/transform"
	"github.com/FocuswithJustin/MuseScoreTools/internal/batch"
	"github.com/FocuswithJustin/MuseScoreTools/internal/config"
	"github.com/FocuswithJustin/MuseScoreTools/internal/logging"
	"github.com/FocuswithJustin/MuseScoreTools/internal/validation"
)

const version = "0.1.0"

// cli defines the command-line interface for mst.
type cli struct {
	// Global flags
	ConfigPath string `name:"config" short:"c" help:"Config file path" type:"path"`
	LogLevel   string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat  string `name:"log-format" help:"Log format (auto, text, json)"`

	Convert ConvertCmd  `cmd:"" help:"Apply transforms to scores in place"`
	Merge   MergeCmd    `cmd:"" help:"Merge the staff content of several scores into one"`
	Split   SplitCmd    `cmd:"" help:"Split a score into parts at each VBox"`
	Inspect InspectCmd  `cmd:"" help:"Show structural statistics for scores"`
	Config  ConfigGroup `cmd:"" help:"Configuration file operations"`
	Version VersionCmd  `cmd:"" help:"Print version information"`
}

// ConfigGroup contains configuration operations.
type ConfigGroup struct {
	Init ConfigInitCmd `cmd:"" help:"Write a sample configuration file"`
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration"`
}

// App carries what every command needs once flags and config are resolved.
type App struct {
	Ctx        context.Context
	Config     *config.Config
	ConfigPath string
	Stdout     io.Writer
}

func newApp(c *cli, stdout io.Writer) (*App, error) {
	cfg, resolved, _, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}

	levelName := cfg.Logging.Level
	if c.LogLevel != "" {
		levelName = c.LogLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	formatName := cfg.Logging.Format
	if c.LogFormat != "" {
		formatName = c.LogFormat
	}
	format, err := logging.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	logging.InitLogger(level, format)

	return &App{
		Ctx:        logging.WithRunID(context.Background(), logging.NewRunID()),
		Config:     cfg,
		ConfigPath: resolved,
		Stdout:     stdout,
	}, nil
}

func (a *App) containerOptions(indent string) container.Options {
	if indent == "" {
		indent = a.Config.Output.Indent
	}
	return container.Options{Indent: indent}
}

// ConvertCmd applies the selected transforms to each file.
type ConvertCmd struct {
	Files           []string `arg:"" help:"Score files to convert"`
	CopyTitles      bool     `name:"copy-titles" help:"Promote the first text to the score title"`
	RemoveNewlines  bool     `name:"remove-newlines" help:"Remove line breaks"`
	RemoveClefs     bool     `name:"remove-clefs" help:"Remove every clef"`
	AddSectionBreak bool     `name:"add-section-break" help:"Add a section break to the last measure"`
	FixKeySig       bool     `name:"fix-key-sig" help:"Insert an open key signature when missing"`
	NoBackup        bool     `name:"no-backup" help:"Do not keep <file>~ copies"`
	Indent          string   `help:"Re-indent output with this unit"`
	JSON            bool     `name:"json" help:"Print results as JSON"`
}

func (c *ConvertCmd) transformSet(defaults config.Convert) transform.Set {
	flags := transform.Set{
		CopyTitles:      c.CopyTitles,
		RemoveNewlines:  c.RemoveNewlines,
		RemoveClefs:     c.RemoveClefs,
		AddSectionBreak: c.AddSectionBreak,
		FixKeySignature: c.FixKeySig,
	}
	if !flags.Empty() {
		return flags
	}
	return transform.Set{
		CopyTitles:      defaults.CopyTitles,
		RemoveNewlines:  defaults.RemoveNewlines,
		RemoveClefs:     defaults.RemoveClefs,
		AddSectionBreak: defaults.AddSectionBreak,
		FixKeySignature: defaults.FixKeySignature,
	}
}

func (c *ConvertCmd) Run(app *App) error {
	if err := validation.ValidatePaths(c.Files); err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}

	set := c.transformSet(app.Config.Convert)
	if set.Empty() {
		return errors.New("no transforms selected: pass a transform flag or enable one in [convert]")
	}

	opts := batch.Options{
		Backup: app.Config.Convert.Backup && !c.NoBackup,
		Indent: app.containerOptions(c.Indent).Indent,
	}
	results := batch.ConvertFiles(app.Ctx, c.Files, set, opts)

	if c.JSON {
		if err := writeJSON(app.Stdout, results); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(app.Stdout, renderTable(convertColumns, convertRows(results)))
	}

	if failed := batch.Failed(results); failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// MergeCmd merges scores into one output file.
type MergeCmd struct {
	Files  []string `arg:"" help:"Scores to merge, in order; the first is the template"`
	Out    string   `required:"" short:"o" help:"Output score path (.mscx or .mscz)" type:"path"`
	Indent string   `help:"Re-indent output with this unit"`
}

func (c *MergeCmd) Run(app *App) error {
	if err := validation.ValidatePaths(append([]string{c.Out}, c.Files...)); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if !container.IsSupported(c.Out) {
		return fmt.Errorf("output %s: must end in %s or %s", c.Out, container.ExtXML, container.ExtPackage)
	}

	if _, err := recombine.MergeFiles(recombine.FromPaths(c.Files), c.Out, app.containerOptions(c.Indent)); err != nil {
		logging.FileOperation(app.Ctx, "merge", c.Out, err)
		return err
	}
	logging.FileOperation(app.Ctx, "merge", c.Out, nil, "sources", len(c.Files))
	fmt.Fprintf(app.Stdout, "Merged %d files into %s\n", len(c.Files), c.Out)
	return nil
}

// SplitCmd splits a score into one packaged file per part.
type SplitCmd struct {
	File   string `arg:"" help:"Score to split"`
	OutDir string `name:"out-dir" short:"d" help:"Directory for the part files" default:"." type:"path"`
	Indent string `help:"Re-indent output with this unit"`
}

func (c *SplitCmd) Run(app *App) error {
	if err := validation.ValidatePaths([]string{c.File, c.OutDir}); err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	opts := recombine.WriteOptions{
		Container:        app.containerOptions(c.Indent),
		CollisionRetries: app.Config.Split.CollisionRetries,
	}
	written, diags, err := recombine.SplitFile(recombine.FromPath(c.File), c.OutDir, opts)
	for _, d := range diags {
		logging.Diagnostic(app.Ctx, c.File, d.Operation, d.Message)
	}
	for _, p := range written {
		logging.FileOperation(app.Ctx, recombine.OpSplit, p, nil)
		fmt.Fprintln(app.Stdout, p)
	}
	if err != nil {
		logging.FileOperation(app.Ctx, recombine.OpSplit, c.File, err)
		return err
	}
	if len(written) == 0 {
		fmt.Fprintf(app.Stdout, "No %s markers in %s; nothing written\n", score.MarkerTag, c.File)
	}
	return nil
}

// InspectCmd reports structural statistics without modifying anything.
type InspectCmd struct {
	Files []string `arg:"" help:"Scores to inspect"`
	JSON  bool     `name:"json" help:"Print results as JSON"`
}

type inspection struct {
	Path        string       `json:"path"`
	Form        string       `json:"form"`
	Stats       *score.Stats `json:"stats,omitempty"`
	Fingerprint string       `json:"fingerprint,omitempty"`
	Error       string       `json:"error,omitempty"`
}

func inspectFile(path string) inspection {
	res := inspection{Path: path, Form: container.FormOf(path).String()}
	if _, err := validation.ValidateScoreFile(path); err != nil {
		res.Error = err.Error()
		return res
	}
	doc, err := container.Load(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	stats, err := doc.Stats()
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Stats = &stats
	if res.Fingerprint, err = doc.Fingerprint(); err != nil {
		res.Error = err.Error()
	}
	return res
}

func (c *InspectCmd) Run(app *App) error {
	results := make([]inspection, 0, len(c.Files))
	failed := 0
	for _, path := range c.Files {
		res := inspectFile(path)
		if res.Error != "" {
			failed++
		}
		results = append(results, res)
	}

	if c.JSON {
		if err := writeJSON(app.Stdout, results); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(app.Stdout, renderTable(inspectColumns, inspectRows(results)))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be inspected", failed, len(results))
	}
	return nil
}

// ConfigInitCmd writes the sample configuration.
type ConfigInitCmd struct {
	Path  string `arg:"" optional:"" help:"Destination (default ~/.config/mst/config.toml)" type:"path"`
	Force bool   `help:"Overwrite an existing file"`
}

func (c *ConfigInitCmd) Run(app *App) error {
	path := c.Path
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.CreateSample(path); err != nil {
		return err
	}
	fmt.Fprintf(app.Stdout, "Wrote %s\n", path)
	return nil
}

// ConfigShowCmd prints the configuration in effect.
type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(app *App) error {
	data, err := app.Config.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Stdout, "# %s\n%s", app.ConfigPath, data)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(app *App) error {
	fmt.Fprintf(app.Stdout, "mst version %s\n", version)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func parserOptions(stdout, stderr io.Writer) []kong.Option {
	return []kong.Option{
		kong.Name("mst"),
		kong.Description("MuseScore tools - batch transforms, merge and split for .mscx/.mscz scores"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(stdout, stderr),
	}
}

// run parses args and executes the selected command.
func run(args []string, stdout, stderr io.Writer) error {
	var c cli
	parser, err := kong.New(&c, parserOptions(stdout, stderr)...)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	app, err := newApp(&c, stdout)
	if err != nil {
		return err
	}
	return ctx.Run(app)
}

func main() {
	var c cli
	ctx := kong.Parse(&c, parserOptions(os.Stdout, os.Stderr)...)
	app, err := newApp(&c, os.Stdout)
	ctx.FatalIfErrorf(err)
	err = ctx.Run(app)
	ctx.FatalIfErrorf(err)
}
