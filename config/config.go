// Package config loads assembler settings from a Starlark file.
//
// A settings file is plain Starlark assigning any of these globals:
//
//	origin = 0x200          # load address of the first opcode
//	output = "game.ch8"     # binary output path
//	listing = "game.lst"    # listing output path, "-" for stdout
//	strict = False          # treat label warnings as errors
//	verbose = False         # log every pass
//	color = "auto"          # "auto", "always" or "never"
//
// Other globals are ignored, so a file may compute values with helpers.
package config

import (
	"errors"
	"os"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/chip8asm/translate"
)

var f = translate.From

const (
	DEFAULT_FILE   = "chip8asm.star"
	DEFAULT_ORIGIN = 0x200
	ORIGIN_LIMIT   = 0xfff
)

var (
	ErrConfigColor = errors.New(f("color must be auto, always or never"))
)

type ErrConfigType struct {
	Name string
	Want string
	Have string
}

func (err *ErrConfigType) Error() string {
	return f("%v must be %v, not %v", err.Name, err.Want, err.Have)
}

type ErrConfigRange struct {
	Name  string
	Value int64
}

func (err *ErrConfigRange) Error() string {
	return f("%v value %#x out of range", err.Name, err.Value)
}

// Config holds the settings of one assembler run.
type Config struct {
	Origin  uint16
	Output  string
	Listing string
	Strict  bool
	Verbose bool
	Color   string
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Origin: DEFAULT_ORIGIN,
		Color:  "auto",
	}
}

// Load executes a settings file over the defaults. A missing file is not
// an error when optional is set.
func Load(filename string, optional bool) (conf *Config, err error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return
	}

	return Parse(filename, data)
}

// Parse executes Starlark source over the defaults.
func Parse(filename string, src any) (conf *Config, err error) {
	thread := &starlark.Thread{Name: filename}
	opts := syntax.FileOptions{}

	globals, err := starlark.ExecFileOptions(&opts, thread, filename, src, nil)
	if err != nil {
		return
	}

	conf = Default()
	err = conf.apply(globals)
	if err != nil {
		conf = nil
	}

	return
}

func (conf *Config) apply(globals starlark.StringDict) (err error) {
	if value, ok := globals["origin"]; ok {
		var origin int64
		origin, err = asInt("origin", value)
		if err != nil {
			return
		}
		if origin <= 0 || origin > ORIGIN_LIMIT {
			return &ErrConfigRange{Name: "origin", Value: origin}
		}
		conf.Origin = uint16(origin)
	}

	for name, field := range map[string]*string{
		"output":  &conf.Output,
		"listing": &conf.Listing,
		"color":   &conf.Color,
	} {
		value, ok := globals[name]
		if !ok {
			continue
		}
		*field, err = asString(name, value)
		if err != nil {
			return
		}
	}

	for name, field := range map[string]*bool{
		"strict":  &conf.Strict,
		"verbose": &conf.Verbose,
	} {
		value, ok := globals[name]
		if !ok {
			continue
		}
		*field, err = asBool(name, value)
		if err != nil {
			return
		}
	}

	return conf.Check()
}

// Check validates settings that may also come from the command line.
func (conf *Config) Check() error {
	if conf.Origin == 0 || conf.Origin > ORIGIN_LIMIT {
		return &ErrConfigRange{Name: "origin", Value: int64(conf.Origin)}
	}

	switch conf.Color {
	case "auto", "always", "never":
		return nil
	default:
		return ErrConfigColor
	}
}

func asInt(name string, value starlark.Value) (int64, error) {
	st_int, ok := value.(starlark.Int)
	if !ok {
		return 0, &ErrConfigType{Name: name, Want: "int", Have: value.Type()}
	}
	i64, ok := st_int.Int64()
	if !ok {
		return 0, &ErrConfigRange{Name: name}
	}
	return i64, nil
}

func asString(name string, value starlark.Value) (string, error) {
	str, ok := starlark.AsString(value)
	if !ok {
		return "", &ErrConfigType{Name: name, Want: "string", Have: value.Type()}
	}
	return str, nil
}

func asBool(name string, value starlark.Value) (bool, error) {
	b, ok := value.(starlark.Bool)
	if !ok {
		return false, &ErrConfigType{Name: name, Want: "bool", Have: value.Type()}
	}
	return bool(b), nil
}
