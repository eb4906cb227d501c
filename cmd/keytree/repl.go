// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ergochat/readline"
	"github.com/pkg/errors"

	"github.com/absolutelightning/go-keytree"
	"github.com/absolutelightning/go-keytree/parser"
)

// REPL per se.
type REPL struct {
	app *app
	rl  *readline.Instance
	out io.Writer
}

var (
	ErrUsage      = errors.New("bad arguments")
	ErrBadAddress = errors.New("bad address")
	ErrUnknownCmd = errors.New("unknown command")
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),

	readline.PcItem("load"),
	readline.PcItem("add"),

	readline.PcItem("tree"),
	readline.PcItem("dump"),
	readline.PcItem("find",
		readline.PcItem("exact"),
		readline.PcItem("contains"),
		readline.PcItem("prefix"),
		readline.PcItem("suffix"),
		readline.PcItem("regexp"),
		readline.PcItem("wildcard"),
		readline.PcItem("fixed"),
	),
	readline.PcItem("get"),
	readline.PcItem("set"),
	readline.PcItem("header"),

	readline.PcItem("stats"),
	readline.PcItem("digest"),

	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func (repl *REPL) Open(historyFile string) (err error) {
	repl.rl, err = readline.NewEx(&readline.Config{
		Prompt:          "keytree> ",
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return
	}
	repl.rl.CaptureExitSignal()
	repl.out = os.Stdout
	return
}

func (repl *REPL) Close() error {
	if repl.rl != nil {
		_ = repl.rl.Close()
		repl.rl = nil
	}
	return nil
}

// Run reads commands until exit or end of input.
func (repl *REPL) Run(ctx context.Context) {
	for {
		line, err := repl.rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return
			}
			continue
		}
		if err != nil {
			return
		}
		quit, err := repl.Execute(ctx, line)
		if err != nil {
			fmt.Fprintf(repl.out, "error: %v\n", err)
		}
		if quit {
			return
		}
	}
}

// Execute runs a single command line. It reports whether the session should
// end.
func (repl *REPL) Execute(ctx context.Context, line string) (quit bool, err error) {
	if repl.out == nil {
		repl.out = os.Stdout
	}
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]
	tree := repl.app.tree

	switch cmd {
	case "help":
		repl.printHelp()
	case "exit", "quit":
		return true, nil
	case "load":
		if len(args) != 1 {
			return false, errors.Wrap(ErrUsage, "load <file>")
		}
		err = repl.app.load(ctx, args[0])
	case "add":
		err = repl.commandAdd(args)
	case "tree":
		err = repl.app.view.Render(repl.out)
	case "dump":
		err = tree.Dump(repl.out)
	case "find":
		err = repl.commandFind(args)
	case "get":
		err = repl.commandGet(args)
	case "set":
		err = repl.commandSet(args)
	case "header":
		err = repl.commandHeader(args)
	case "stats":
		err = repl.commandStats()
	case "digest":
		fmt.Fprintf(repl.out, "%016x (%d rows)\n", tree.Digest(), tree.Len())
	default:
		err = errors.Wrap(ErrUnknownCmd, cmd)
	}
	return false, err
}

func (repl *REPL) printHelp() {
	fmt.Fprint(repl.out, `commands:
  load <file>                          parse and ingest a file
  add <hexid> <top/mid/leaf> <value>   ingest one record
  tree                                 print the sorted view
  dump                                 print the raw tree
  find <mode> <column> <text> [cs] [norec] [wrap] [max=N]
                                       search; modes: exact contains prefix suffix regexp wildcard fixed
  get <r0/r1/r2:col>                   read a cell
  set <r0/r1/r2:col> <value>           write a cell (editable trees only)
  header <col> <title>                 rename a column
  stats                                loader counters
  digest                               tree fingerprint
  quit
`)
}

func (repl *REPL) commandAdd(args []string) error {
	if len(args) != 3 {
		return errors.Wrap(ErrUsage, "add <hexid> <top/mid/leaf> <value>")
	}
	rec, err := parser.ParseLine(strings.Join(args, ";"))
	if err != nil {
		return err
	}
	if repl.app.loader.Add(rec) {
		fmt.Fprintln(repl.out, "inserted")
	} else {
		fmt.Fprintln(repl.out, "dropped: leaf key already present")
	}
	return nil
}

func (repl *REPL) commandFind(args []string) error {
	if len(args) < 3 {
		return errors.Wrap(ErrUsage, "find <mode> <column> <text> [cs] [norec] [wrap] [max=N]")
	}
	mode, ok := keytree.ParseMatchMode(args[0])
	if !ok {
		return errors.Wrapf(ErrUsage, "unknown mode %q", args[0])
	}
	column, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Wrapf(ErrUsage, "column %q", args[1])
	}
	opts := keytree.MatchOptions{Mode: mode, Recursive: true}
	hits := keytree.AllHits
	for _, flag := range args[3:] {
		switch {
		case flag == "cs":
			opts.CaseSensitive = true
		case flag == "norec":
			opts.Recursive = false
		case flag == "wrap":
			opts.Wrap = true
		case strings.HasPrefix(flag, "max="):
			if hits, err = strconv.Atoi(strings.TrimPrefix(flag, "max=")); err != nil {
				return errors.Wrapf(ErrUsage, "max %q", flag)
			}
		default:
			return errors.Wrapf(ErrUsage, "flag %q", flag)
		}
	}

	var needle any = args[2]
	if mode == keytree.MatchExactly {
		needle = exactNeedle(args[2])
	}
	tree := repl.app.tree
	found := tree.Match(tree.Index(0, column, keytree.Address{}), keytree.RoleDisplay, needle, hits, opts)
	for _, a := range found {
		label := tree.Data(tree.Index(a.Row(), keytree.ColumnLabel, tree.Parent(a)), keytree.RoleDisplay)
		fmt.Fprintf(repl.out, "%-12s %-20s %s\n", a.String(), keytree.ValueText(label), keytree.ValueText(tree.Data(a, keytree.RoleDisplay)))
	}
	fmt.Fprintf(repl.out, "%d match(es)\n", len(found))
	return nil
}

// exactNeedle reads 0x-prefixed text as a key and plain numbers as values so
// exact matching compares natively.
func exactNeedle(s string) any {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if v, err := strconv.ParseUint(s[2:], 16, 32); err == nil {
			return uint32(v)
		}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}

func (repl *REPL) commandGet(args []string) error {
	if len(args) != 1 {
		return errors.Wrap(ErrUsage, "get <address>")
	}
	a, err := resolveAddress(repl.app.tree, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(repl.out, keytree.ValueText(repl.app.tree.Data(a, keytree.RoleDisplay)))
	return nil
}

func (repl *REPL) commandSet(args []string) error {
	if len(args) < 2 {
		return errors.Wrap(ErrUsage, "set <address> <value>")
	}
	tree := repl.app.tree
	a, err := resolveAddress(tree, args[0])
	if err != nil {
		return err
	}
	var value any = strings.Join(args[1:], " ")
	if _, isNumber := tree.Data(a, keytree.RoleEdit).(float64); isNumber {
		if f, err := strconv.ParseFloat(args[1], 64); err == nil {
			value = f
		}
	}
	if !tree.SetData(a, value, keytree.RoleEdit) {
		fmt.Fprintln(repl.out, "not editable")
	}
	return nil
}

func (repl *REPL) commandHeader(args []string) error {
	if len(args) < 2 {
		return errors.Wrap(ErrUsage, "header <column> <title>")
	}
	section, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.Wrapf(ErrUsage, "column %q", args[0])
	}
	if !repl.app.tree.SetHeaderData(section, strings.Join(args[1:], " "), keytree.RoleEdit) {
		return errors.Wrapf(ErrUsage, "no column %d", section)
	}
	return nil
}

func (repl *REPL) commandStats() error {
	families, err := repl.app.registry.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			fmt.Fprintf(repl.out, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
		}
	}
	return nil
}

// resolveAddress parses "r0/r1/r2:col" by walking Index from the root, so
// the result is only valid if every row exists.
func resolveAddress(tree *keytree.Tree, s string) (keytree.Address, error) {
	path, col, found := strings.Cut(s, ":")
	column := 0
	if found {
		c, err := strconv.Atoi(col)
		if err != nil {
			return keytree.Address{}, errors.Wrap(ErrBadAddress, s)
		}
		column = c
	}
	rows := strings.Split(path, "/")
	var a keytree.Address
	for i, r := range rows {
		row, err := strconv.Atoi(r)
		if err != nil {
			return keytree.Address{}, errors.Wrap(ErrBadAddress, s)
		}
		c := 0
		if i == len(rows)-1 {
			c = column
		}
		a = tree.Index(row, c, a)
		if !a.IsValid() {
			return keytree.Address{}, errors.Wrap(ErrBadAddress, s)
		}
	}
	return a, nil
}
