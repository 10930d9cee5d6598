package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/docmatter/matter/diag"
	"github.com/docmatter/matter/matter"
	"github.com/docmatter/matter/render"
	"github.com/docmatter/matter/sliceedit"
	"github.com/hesusruiz/vcutils/yaml"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// config is the optional tool configuration, read from matter.yaml in the
// working directory. The library itself never reads files; this only tunes
// the CLI.
var config *yaml.YAML

func newApp() *cli.App {
	return &cli.App{
		Name:      "matter",
		Version:   "v0.1",
		Compiled:  time.Now(),
		Usage:     "decompose documents with inline metadata blocks",
		UsageText: "matter [options] command INPUT_FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "run in debug mode",
			},
			&cli.IntFlag{
				Name:  "max-input",
				Usage: "maximum input size in `BYTES` (0 uses the default)",
			},
			&cli.IntFlag{
				Name:  "max-block",
				Usage: "maximum metadata block size in `BYTES` (0 uses the default)",
			},
			&cli.IntFlag{
				Name:  "max-depth",
				Usage: "maximum metadata nesting depth (0 uses the default)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "decompose a document and print the result as JSON",
				ArgsUsage: "INPUT_FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "color",
						Aliases: []string{"c"},
						Usage:   "highlight the JSON output for the terminal",
					},
				},
				Action: show,
			},
			{
				Name:      "strip",
				Usage:     "remove every metadata block, keeping the body bytes verbatim",
				ArgsUsage: "INPUT_FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "write the result to `FILE` instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "lf",
						Usage: "normalize CRLF line endings to LF in the output",
					},
				},
				Action: strip,
			},
			{
				Name:      "render",
				Usage:     "decompose a document and run it through its template",
				ArgsUsage: "INPUT_FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "template",
						Aliases: []string{"t"},
						Usage:   "use template `NAME` instead of the document's directive",
					},
					&cli.StringFlag{
						Name:  "templates",
						Usage: "load templates from `DIR`",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "write the result to `FILE` instead of stdout",
					},
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "watch the input file and re-render on changes",
					},
				},
				Action: renderCmd,
			},
			{
				Name:      "check",
				Usage:     "decompose a document and report the first problem, if any",
				ArgsUsage: "INPUT_FILE",
				Action:    check,
			},
		},
		// Running without a command behaves like show.
		Action: show,
	}
}

func main() {

	app := newApp()

	// The config file is optional; a missing one behaves like an empty one.
	var err error
	config, err = yaml.ParseYamlFile("matter.yaml")
	if err != nil {
		config, _ = yaml.ParseYaml("")
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

}

// setupLogger builds the zap logger for one command invocation.
func setupLogger(c *cli.Context) *zap.SugaredLogger {
	var z *zap.Logger
	var err error
	if c.Bool("debug") {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return z.Sugar()
}

// options assembles the library options from flags.
func options(c *cli.Context, fileName string, log *zap.SugaredLogger) matter.Options {
	return matter.Options{
		Filename: fileName,
		Limits: matter.Limits{
			MaxInputSize: c.Int("max-input"),
			MaxBlockSize: c.Int("max-block"),
			MaxDepth:     c.Int("max-depth"),
		},
		Logger: log,
	}
}

// readInput returns the input file name and its contents.
func readInput(c *cli.Context) (string, []byte, error) {
	if !c.Args().Present() {
		return "", nil, cli.Exit("no input file provided", 1)
	}
	name := c.Args().First()
	src, err := os.ReadFile(name)
	if err != nil {
		return "", nil, cli.Exit(err.Error(), 1)
	}
	return name, src, nil
}

// exitDiag prints a diagnostic as JSON on stderr and terminates the command.
func exitDiag(d *diag.Diagnostic) error {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return cli.Exit(d.Error(), 1)
	}
	fmt.Fprintln(os.Stderr, string(out))
	return cli.Exit("", 1)
}

func show(c *cli.Context) error {
	log := setupLogger(c)
	defer log.Sync()

	fileName, src, err := readInput(c)
	if err != nil {
		return err
	}

	doc, _, d := matter.Decompose(string(src), options(c, fileName, log))
	if d != nil {
		return exitDiag(d)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	pretty := buf.String()

	if c.Bool("color") || config.Bool("show.color") {
		// Determine the style from the config data, as in highlighted
		// code listings
		styleName := config.String("show.codeStyle", "monokai")
		if err := quick.Highlight(os.Stdout, pretty+"\n", "json", "terminal256", styleName); err == nil {
			return nil
		}
		// Fall through to plain output if highlighting failed
	}

	fmt.Println(pretty)
	return nil
}

func strip(c *cli.Context) error {
	log := setupLogger(c)
	defer log.Sync()

	fileName, src, err := readInput(c)
	if err != nil {
		return err
	}

	blocks, d := matter.Scan(string(src), options(c, fileName, log))
	if d != nil {
		return exitDiag(d)
	}

	return writeOutput(c, stripSource(src, blocks, c.Bool("lf")))
}

// stripSource removes the block spans from src. The line ending
// normalization runs on the already stripped bytes, in a second buffer, so
// a CRLF inside a deleted span can never produce an overlapping edit.
func stripSource(src []byte, blocks []*matter.Block, lf bool) []byte {
	buf := sliceedit.NewBuffer(src)
	for _, b := range blocks {
		buf.DeleteSpan(b.Span.Start, b.Span.End)
	}
	out := buf.Bytes()

	if lf {
		norm := sliceedit.NewBuffer(out)
		norm.ReplaceAllString("\r\n", "\n")
		out = norm.Bytes()
	}
	return out
}

func renderCmd(c *cli.Context) error {
	log := setupLogger(c)
	defer log.Sync()

	fileName := ""
	if c.Args().Present() {
		fileName = c.Args().First()
	} else {
		return cli.Exit("no input file provided", 1)
	}

	templatesDir := c.String("templates")
	if templatesDir == "" {
		templatesDir = config.String("render.templates", "templates")
	}
	r := render.New(templatesDir, log)

	renderOnce := func() error {
		src, err := os.ReadFile(fileName)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		doc, _, d := matter.Decompose(string(src), options(c, fileName, log))
		if d != nil {
			return exitDiag(d)
		}
		out, d := r.Render(doc, c.String("template"))
		if d != nil {
			return exitDiag(d)
		}
		return writeOutput(c, []byte(out))
	}

	if c.Bool("watch") {
		return watch(fileName, renderOnce)
	}
	return renderOnce()
}

func check(c *cli.Context) error {
	log := setupLogger(c)
	defer log.Sync()

	fileName, src, err := readInput(c)
	if err != nil {
		return err
	}

	doc, _, d := matter.Decompose(string(src), options(c, fileName, log))
	if d != nil {
		return exitDiag(d)
	}

	fmt.Printf("%s: ok, %d fields, body %d bytes\n", fileName, len(doc.Keys())-1, len(doc.Body()))
	return nil
}

func writeOutput(c *cli.Context, out []byte) error {
	name := c.String("output")
	if name == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(name, out, 0664); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// watch re-runs process whenever the input file's modification time moves
// forward, checking once per second.
func watch(fileName string, process func() error) error {

	var oldTimestamp time.Time

	for {
		info, err := os.Stat(fileName)
		if err != nil {
			return err
		}
		if oldTimestamp.Before(info.ModTime()) {
			oldTimestamp = info.ModTime()
			if err := process(); err != nil {
				// Keep watching; the next edit may fix the document
				fmt.Fprintln(os.Stderr, err)
			}
		}
		time.Sleep(1 * time.Second)
	}
}
