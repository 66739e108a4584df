package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"golang.org/x/term"

	"github.com/ezrec/chip8asm/chip8"
	"github.com/ezrec/chip8asm/config"
	"github.com/ezrec/chip8asm/listing"
	"github.com/ezrec/chip8asm/translate"
)

var f = translate.From

const BINARY_EXT = ".ch8"

type options struct {
	config  string
	output  string
	listing string
	origin  uint16
	strict  bool
	verbose bool
	dump    bool
	color   string
}

func newCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "chip8asm [flags] SOURCE",
		Short: f("Assemble CHIP-8 source into a loadable binary"),
		Long: f(`Chip8asm translates CHIP-8 mnemonic source into raw opcodes for loading
at address 0x200.

Settings are read from chip8asm.star next to the source file, if present,
or from the file named by --config. Command line flags take precedence.`),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := opts.settings(cmd, args[0])
			if err != nil {
				return err
			}
			return run(conf, args[0], opts.dump, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.config, "config", "", f("Starlark settings file"))
	flags.StringVarP(&opts.output, "output", "o", "", f("binary output file (default SOURCE with %v extension)", BINARY_EXT))
	flags.StringVarP(&opts.listing, "listing", "l", "", f("listing output file, - for stdout"))
	flags.Uint16Var(&opts.origin, "origin", config.DEFAULT_ORIGIN, f("load address of the first opcode, 0x1 to %#x", config.ORIGIN_LIMIT))
	flags.BoolVar(&opts.strict, "strict", false, f("treat label warnings as errors"))
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, f("log every assembler pass"))
	flags.BoolVar(&opts.dump, "dump", false, f("dump the assembled program to stdout"))
	flags.StringVar(&opts.color, "color", "auto", f("color diagnostics: auto, always or never"))

	return cmd
}

// settings merges the settings file with the flags set on the command line.
func (opts *options) settings(cmd *cobra.Command, source string) (conf *config.Config, err error) {
	if len(opts.config) != 0 {
		conf, err = config.Load(opts.config, false)
	} else {
		conf, err = config.Load(filepath.Join(filepath.Dir(source), config.DEFAULT_FILE), true)
	}
	if err != nil {
		return
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		conf.Output = opts.output
	}
	if flags.Changed("listing") {
		conf.Listing = opts.listing
	}
	if flags.Changed("origin") {
		conf.Origin = opts.origin
	}
	if flags.Changed("strict") {
		conf.Strict = opts.strict
	}
	if flags.Changed("verbose") {
		conf.Verbose = opts.verbose
	}
	if flags.Changed("color") {
		conf.Color = opts.color
	}

	if len(conf.Output) == 0 {
		conf.Output = strings.TrimSuffix(source, filepath.Ext(source)) + BINARY_EXT
	}

	err = conf.Check()
	return
}

// colored decides whether diagnostics written to w get ANSI colors.
func colored(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func report(w io.Writer, source string, diags chip8.Diagnostics, color bool) {
	for _, diag := range diags {
		severity := diag.Severity.String()
		if color {
			switch diag.Severity {
			case chip8.SEVERITY_ERROR:
				severity = text.Colors{text.FgRed, text.Bold}.Sprint(severity)
			default:
				severity = text.FgYellow.Sprint(severity)
			}
		}
		translate.Fprintf(w, "%v:%v: %v: %v: %v\n", source, strconv.Itoa(diag.LineNo), severity, diag.Line, diag.Message())
	}
}

// writeFile replaces name with data, never leaving a partial file behind.
func writeFile(name string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(name), filepath.Base(name)+".*.tmp")
	if err != nil {
		return
	}
	atexit.Register(func() { os.Remove(tmp.Name()) })

	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return
	}

	err = os.Rename(tmp.Name(), name)
	return
}

func run(conf *config.Config, source string, dump bool, stdout, stderr io.Writer) (err error) {
	color := colored(conf.Color, stderr)

	inf, err := os.Open(source)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &chip8.Assembler{
		Verbose: conf.Verbose,
		Strict:  conf.Strict,
		Origin:  conf.Origin,
	}

	prog, err := asm.Assemble(inf)

	var asmErr *chip8.ErrAssembly
	if errors.As(err, &asmErr) {
		report(stderr, source, asmErr.Diagnostics, color)
		count := 0
		for range asmErr.Diagnostics.Of(chip8.SEVERITY_ERROR) {
			count++
		}
		return errors.New(f("%v: %d errors, no output written", source, count))
	}
	if err != nil {
		return
	}

	report(stderr, source, prog.Diagnostics, color)

	data, err := prog.Binary()
	if err != nil {
		return
	}

	err = writeFile(conf.Output, data)
	if err != nil {
		return
	}

	if dump {
		printer := pp.New()
		printer.SetColoringEnabled(colored(conf.Color, stdout))
		_, err = printer.Fprintln(stdout, prog)
		if err != nil {
			return
		}
	}

	switch conf.Listing {
	case "":
	case "-":
		err = listing.Write(stdout, prog, source)
	default:
		var lst strings.Builder
		err = listing.Write(&lst, prog, source)
		if err == nil {
			err = writeFile(conf.Listing, []byte(lst.String()))
		}
	}

	return
}
