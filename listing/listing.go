// Package listing renders human readable assembly listings.
package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ezrec/chip8asm/chip8"
	"github.com/ezrec/chip8asm/translate"
)

var f = translate.From

func newWriter(title string) table.Writer {
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault

	tw := table.NewWriter()
	tw.SetStyle(style)
	tw.SetTitle(title)
	return tw
}

// Opcodes renders one row per opcode: address, opcode, line, source text
// and the resolved text when a label was substituted.
func Opcodes(prog *chip8.Program, title string) string {
	tw := newWriter(title)
	tw.AppendHeader(table.Row{f("Address"), f("Opcode"), f("Line"), f("Source"), f("Resolved")})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})

	for _, op := range prog.Opcodes {
		source := strings.TrimSpace(op.Source)
		var resolved string
		if !strings.EqualFold(normalizeSpace(source), op.Text) {
			resolved = op.Text
		}
		tw.AppendRow(table.Row{fmt.Sprintf("0x%03X", op.Address), op.Hex, op.LineNo, source, resolved})
	}

	tw.AppendFooter(table.Row{"", "", "", f("%d bytes", prog.Size()), ""})

	return tw.Render()
}

// Symbols renders the label table ordered by address.
func Symbols(prog *chip8.Program, title string) string {
	tw := newWriter(title)
	tw.AppendHeader(table.Row{f("Label"), f("Address"), f("Line")})

	for _, sym := range prog.Symbols() {
		tw.AppendRow(table.Row{sym.Name, fmt.Sprintf("0x%03X", sym.Address), sym.LineNo})
	}

	return tw.Render()
}

// Write writes the opcode listing, then the symbol table if there are labels.
func Write(w io.Writer, prog *chip8.Program, name string) (err error) {
	_, err = io.WriteString(w, Opcodes(prog, name)+"\n")
	if err != nil {
		return
	}

	if len(prog.Labels) == 0 {
		return
	}

	_, err = io.WriteString(w, "\n"+Symbols(prog, f("Symbols"))+"\n")
	return
}

func normalizeSpace(line string) string {
	line, _, _ = strings.Cut(line, chip8.COMMENT_MARKER)
	return strings.Join(strings.Fields(line), " ")
}
