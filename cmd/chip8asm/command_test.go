package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/chip8asm/chip8"
)

func writeSource(t *testing.T, dir, name string, program ...string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(program, "\n")+"\n"), 0o644))
	return path
}

func execute(args ...string) (stdout, stderr *bytes.Buffer, err error) {
	stdout = &bytes.Buffer{}
	stderr = &bytes.Buffer{}
	cmd := newCommand(stdout, stderr)
	cmd.SetArgs(append([]string{}, args...))
	err = cmd.Execute()
	return
}

func TestCommand(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := writeSource(t, dir, "count.asm",
		"; look, a comment",
		"LD V0 0x00",
		".START",
		"ADD V0 0x01",
		"SNE V0 0xff",
		"JMP .START",
		".END",
		"RET",
	)

	_, stderr, err := execute(source)
	assert.NoError(err)
	assert.Empty(stderr.String())

	data, err := os.ReadFile(filepath.Join(dir, "count.ch8"))
	assert.NoError(err)
	assert.Equal([]byte{0x60, 0x00, 0x70, 0x01, 0x40, 0xff, 0x12, 0x02, 0x00, 0xee}, data)

	entries, err := os.ReadDir(dir)
	assert.NoError(err)
	assert.Equal(2, len(entries))
}

func TestCommand_Output(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := writeSource(t, dir, "game", "CLS", ".LOOP", "JMP .LOOP")
	output := filepath.Join(dir, "out.bin")
	lst := filepath.Join(dir, "out.lst")

	stdout, _, err := execute("-o", output, "--listing", lst, "--origin", "0x600", source)
	assert.NoError(err)
	assert.Empty(stdout.String())

	data, err := os.ReadFile(output)
	assert.NoError(err)
	assert.Equal([]byte{0x00, 0xe0, 0x16, 0x02}, data)

	text, err := os.ReadFile(lst)
	assert.NoError(err)
	assert.Contains(string(text), "0x602")
	assert.Contains(string(text), "LOOP")
}

func TestCommand_Failure(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := writeSource(t, dir, "bad.asm",
		".X",
		".X",
		"FOO V0",
		"JMP .NOWHERE",
	)

	_, stderr, err := execute("--color", "never", source)
	assert.Error(err)
	assert.Contains(err.Error(), "no output written")
	assert.Contains(stderr.String(), "bad.asm:2: warning: .X: label X already defined")
	assert.Contains(stderr.String(), "bad.asm:4: error: JMP .NOWHERE: label NOWHERE missing")

	_, err = os.Stat(filepath.Join(dir, "bad.ch8"))
	assert.ErrorIs(err, os.ErrNotExist)

	source = writeSource(t, dir, "bad.asm", "CLS", "FOO V0")
	_, stderr, err = execute(source)
	assert.Error(err)
	assert.Contains(stderr.String(), "bad.asm:2: error: FOO V0: instruction invalid")

	_, err = os.Stat(filepath.Join(dir, "bad.ch8"))
	assert.ErrorIs(err, os.ErrNotExist)

	entries, err := os.ReadDir(dir)
	assert.NoError(err)
	assert.Equal(1, len(entries))
}

func TestCommand_Strict(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := writeSource(t, dir, "dup.asm", ".A", ".A", "CLS")

	_, stderr, err := execute(source)
	assert.NoError(err)
	assert.Contains(stderr.String(), "warning")

	_, stderr, err = execute("--strict", "-o", filepath.Join(dir, "strict.ch8"), source)
	assert.Error(err)
	assert.Contains(stderr.String(), "dup.asm:2: error")

	_, err = os.Stat(filepath.Join(dir, "strict.ch8"))
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestCommand_Config(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := writeSource(t, dir, "main.asm", ".TOP", "JMP .TOP")
	writeSource(t, dir, "chip8asm.star",
		`origin = 0x300`,
		`output = "`+filepath.Join(dir, "rom.ch8")+`"`,
		`listing = "-"`,
	)

	stdout, _, err := execute(source)
	assert.NoError(err)
	assert.Contains(stdout.String(), "0x300")

	data, err := os.ReadFile(filepath.Join(dir, "rom.ch8"))
	assert.NoError(err)
	assert.Equal([]byte{0x13, 0x00}, data)

	// Flags win over the settings file.
	_, _, err = execute("--origin", "0x200", "--listing", "", source)
	assert.NoError(err)
	data, err = os.ReadFile(filepath.Join(dir, "rom.ch8"))
	assert.NoError(err)
	assert.Equal([]byte{0x12, 0x00}, data)

	other := writeSource(t, dir, "other.star", `strict = "yes"`)
	_, _, err = execute("--config", other, source)
	assert.Error(err)

	_, _, err = execute("--config", filepath.Join(dir, "missing.star"), source)
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestCommand_Dump(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := writeSource(t, dir, "dump.asm", "CLS")

	stdout, _, err := execute("--dump", "--color", "never", source)
	assert.NoError(err)
	assert.Contains(stdout.String(), "Program")
	assert.Contains(stdout.String(), "00E0")
}

func TestCommand_Args(t *testing.T) {
	assert := assert.New(t)

	_, _, err := execute()
	assert.Error(err)

	_, _, err = execute("a.asm", "b.asm")
	assert.Error(err)

	_, _, err = execute(filepath.Join(t.TempDir(), "missing.asm"))
	assert.ErrorIs(err, os.ErrNotExist)

	_, _, err = execute("--color", "sometimes", "x.asm")
	assert.Error(err)

	_, _, err = execute("--origin", "0x1000", "x.asm")
	assert.Error(err)

	_, _, err = execute("--origin", "0", "x.asm")
	assert.Error(err)
}

func TestReport(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	report(&buf, "game.asm", chip8.Diagnostics{
		{LineNo: 1500, Severity: chip8.SEVERITY_ERROR, Line: "FOO", Err: chip8.ErrInstructionInvalid},
	}, false)
	assert.Equal("game.asm:1500: error: FOO: instruction invalid\n", buf.String())
}

func TestCommand_LongSource(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	program := make([]string, 0, 1200)
	for range 1199 {
		program = append(program, "CLS")
	}
	program = append(program, "FOO V0")
	source := writeSource(t, dir, "big.asm", program...)

	_, stderr, err := execute("--color", "never", source)
	assert.Error(err)
	assert.Contains(stderr.String(), "big.asm:1200: error: FOO V0: instruction invalid")
}

func TestColored(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	assert.True(colored("always", &buf))
	assert.False(colored("never", &buf))
	assert.False(colored("auto", &buf))
}
