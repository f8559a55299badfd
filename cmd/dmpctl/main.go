// Command dmpctl is a thin command-line wrapper around the dmp engine: a
// diff/match/patch session you can drive from a shell instead of a Go
// program. It is not part of the core engine (spec.md scopes command-line
// wrappers as an external collaborator); it only ever calls the public
// dmp API.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/antstudent/dmp"
)

var cli struct {
	Config string `help:"YAML file of dmp.Config overrides." type:"path"`

	Diff struct {
		BeforeFile *os.File `arg:"" help:"Original text file."`
		AfterFile  *os.File `arg:"" help:"Modified text file."`
		Lines      bool     `help:"Use line-mode preprocessing speedup."`
		HTML       bool     `help:"Render a pretty HTML report instead of plain text."`
	} `cmd:"" help:"Compute and print the diff between two files."`

	Match struct {
		TextFile *os.File `arg:"" help:"Text file to search."`
		Pattern  string   `arg:"" help:"Pattern to locate."`
		Loc      int      `arg:"" help:"Expected location."`
	} `cmd:"" help:"Fuzzy-locate a pattern in a text file."`

	Patch struct {
		Make struct {
			BeforeFile *os.File `arg:"" help:"Original text file."`
			AfterFile  *os.File `arg:"" help:"Modified text file."`
		} `cmd:"" help:"Make a patch set to turn 'before' into 'after'."`

		Apply struct {
			BeforeFile *os.File `arg:"" help:"Original text file."`
			PatchFile  *os.File `arg:"" help:"Patch file in GNU-unified-diff-like format."`
		} `cmd:"" help:"Apply a patch set, tolerating drift in 'before'."`
	} `cmd:"" help:"Make or apply patch sets."`
}

func main() {
	ctx := kong.Parse(&cli, kong.Description("diff, fuzzy-match, and patch plain text."))

	config, err := loadConfig(cli.Config)
	if err != nil {
		fatal(err)
	}

	switch ctx.Command() {
	case "diff <before-file> <after-file>":
		runDiff(config)
	case "match <text-file> <pattern> <loc>":
		runMatch(config)
	case "patch make <before-file> <after-file>":
		runPatchMake(config)
	case "patch apply <before-file> <patch-file>":
		runPatchApply(config)
	default:
		fatal(fmt.Errorf("unhandled command: %s", ctx.Command()))
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "dmpctl:", err)
	os.Exit(1)
}

func readAll(f *os.File) string {
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		fatal(err)
	}
	return string(data)
}

func runDiff(config *dmp.Config) {
	before := readAll(cli.Diff.BeforeFile)
	after := readAll(cli.Diff.AfterFile)
	diffs := config.Diff(before, after, cli.Diff.Lines)
	if cli.Diff.HTML {
		fmt.Println(config.DiffPrettyHtml(diffs))
		return
	}
	fmt.Println(config.DiffPrettyText(diffs))
}

func runMatch(config *dmp.Config) {
	text := readAll(cli.Match.TextFile)
	loc, err := config.MatchChecked(text, cli.Match.Pattern, cli.Match.Loc)
	if err != nil {
		fatal(err)
	}
	fmt.Println(loc)
}

func runPatchMake(config *dmp.Config) {
	before := readAll(cli.Patch.Make.BeforeFile)
	after := readAll(cli.Patch.Make.AfterFile)
	patches := config.PatchMake(before, after)
	fmt.Print(config.PatchToText(patches))
}

func runPatchApply(config *dmp.Config) {
	before := readAll(cli.Patch.Apply.BeforeFile)
	patchText := readAll(cli.Patch.Apply.PatchFile)
	patches, err := config.PatchFromText(patchText)
	if err != nil {
		fatal(err)
	}
	result, applied := config.PatchApply(patches, before)
	fmt.Print(result)
	for i, ok := range applied {
		if !ok {
			fmt.Fprintf(os.Stderr, "dmpctl: patch %d did not apply cleanly\n", i)
		}
	}
}
