// Command leoc is a thin CLI driver over the library packages: it reads
// one Leo program (optionally with a module directory and a handful of
// already-disassembled import stubs), runs it through
// internal/frontend -> internal/pipeline, and prints either the emitted
// AVM assembly or the accumulated diagnostics. A full package manifest,
// a network-backed import fetcher, and a REPL are explicit spec.md
// non-goals; this exists only so the library is exercised end-to-end by
// something a user actually runs, following the teacher's cmd/ailang
// pattern of a stdlib flag-based dispatcher plus fatih/color output
// rather than a cobra/pflag command tree (see DESIGN.md for why cobra
// was left out).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/ProvableHQ/leo-sub007/internal/ast"
	"github.com/ProvableHQ/leo-sub007/internal/diag"
	"github.com/ProvableHQ/leo-sub007/internal/frontend"
	"github.com/ProvableHQ/leo-sub007/internal/imports"
	"github.com/ProvableHQ/leo-sub007/internal/network"
	"github.com/ProvableHQ/leo-sub007/internal/pipeline"
	"github.com/ProvableHQ/leo-sub007/internal/session"
)

var (
	red   = color.New(color.FgRed, color.Bold).SprintFunc()
	green = color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		modulesDir  = flag.String("modules", "", "directory of additional .leo module files alongside the main program")
		stubDir     = flag.String("stub", "", "directory of pre-disassembled .aleo bytecode files for imported programs, named <program>.aleo")
		configPath  = flag.String("config", "", "path to a YAML session config (defaults built in if omitted)")
		timings     = flag.Bool("timings", false, "print per-pass wall-clock timings after compilation")
		versionFlag = flag.Bool("version", false, "print version information")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Println(bold("leoc") + " (github.com/ProvableHQ/leo-sub007) — Leo-to-AVM lowering pipeline driver")
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: missing source file\n", red("error"))
		fmt.Println("usage: leoc [-modules dir] [-stub dir] [-config file.yaml] [-timings] <main.leo>")
		os.Exit(1)
	}

	mainPath := flag.Arg(0)
	mainSrc, err := os.ReadFile(mainPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", red("error"), mainPath, err)
		os.Exit(1)
	}

	cfg := session.DefaultConfig()
	if *configPath != "" {
		cfg, err = session.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
			os.Exit(1)
		}
	}

	modules, err := loadModules(*modulesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}

	stubSources, err := loadStubSources(*stubDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}

	exitCode := 0
	session.CreateSessionIfNotSetThen(func() {
		exitCode = run(mainPath, string(mainSrc), modules, stubSources, &cfg, *timings)
	})
	os.Exit(exitCode)
}

// run performs one compile-and-report cycle; it returns the process exit
// code instead of calling os.Exit directly so it always runs inside
// session.CreateSessionIfNotSetThen's callback.
func run(mainPath, mainSrc string, modules []frontend.ModuleFile, stubSources map[string]string, cfg *session.Config, timings bool) int {
	nb := ast.NewNodeBuilder()
	h := diag.NewHandler(diag.ModeStderr, os.Stderr)

	program := frontend.Parse(frontend.Sources{MainName: mainPath, MainSrc: mainSrc, Modules: modules}, nb, h)
	if h.HadErrors() {
		return 1
	}

	var fetcher imports.Fetcher
	if len(stubSources) > 0 {
		fetcher = network.NewMapFetcher(nb, stubSources)
	} else {
		fetcher = network.UnavailableFetcher{}
	}
	frontend.ResolveImports(program, fetcher, h)
	if h.HadErrors() {
		return 1
	}

	result := pipeline.Compile(program, nb, h, cfg)
	if timings && result.State != nil {
		names := make([]string, 0, len(result.State.PhaseTimings))
		for name := range result.State.PhaseTimings {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(os.Stderr, "%s %s: %dms\n", cyan("pass"), name, result.State.PhaseTimings[name])
		}
	}
	if !result.OK {
		fmt.Fprintf(os.Stderr, "%s: compilation failed\n", red("error"))
		return 1
	}

	names := make([]string, 0, len(result.Assembly))
	for name := range result.Assembly {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s %s\n", cyan("//"), name)
		fmt.Print(result.Assembly[name])
	}
	fmt.Fprintf(os.Stderr, "%s compiled %d program(s)\n", green("✓"), len(result.Assembly))
	return 0
}

// loadModules walks dir for every *.leo file, keyed by its path relative
// to dir (frontend.ModuleFile.RelPath), matching spec.md §6.1's module
// path derivation. Returns nil if dir is empty.
func loadModules(dir string) ([]frontend.ModuleFile, error) {
	if dir == "" {
		return nil, nil
	}
	var out []frontend.ModuleFile
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".leo") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out = append(out, frontend.ModuleFile{RelPath: filepath.ToSlash(rel), Src: string(src)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking module dir %s: %w", dir, err)
	}
	return out, nil
}

// loadStubSources walks dir for every *.aleo file, keyed by its base name
// (e.g. "token.aleo"), for internal/network.MapFetcher to disassemble on
// demand.
func loadStubSources(dir string) (map[string]string, error) {
	if dir == "" {
		return nil, nil
	}
	out := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".aleo") {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.Base(path)] = string(src)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking stub dir %s: %w", dir, err)
	}
	return out, nil
}

