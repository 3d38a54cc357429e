// Command vmtranslator translates one or more stack-based VM (.vm) source
// files into Hack assembly, optionally prefixed by a single bootstrap
// sequence.
package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/teris-io/cli"

	"github.com/pacokwon/n2t/internal/clilog"
	"github.com/pacokwon/n2t/internal/vm"
)

var description = strings.ReplaceAll(`
The VM Translator translates programs (composed of one or more .vm modules)
written in the stack-based VM language into Hack assembly code.
`, "\n", " ")

var vmTranslatorApp = cli.New(description).
	WithArg(cli.NewArg("input", "The .vm file or directory of .vm files to translate").WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "Output .asm path (defaults to <input-stem>.asm)").WithType(cli.TypeString)).
	WithOption(cli.NewOption("bootstrap", "Emit the SP=256 / call Sys.init bootstrap sequence (default true)").WithType(cli.TypeString)).
	WithOption(cli.NewOption("log-level", "Logger verbosity: debug, info, warn, error").WithType(cli.TypeString)).
	WithAction(handle)

func collectModules(inputPath string) ([]vm.Module, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(inputPath)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if filepath.Ext(e.Name()) == ".vm" {
				paths = append(paths, filepath.Join(inputPath, e.Name()))
			}
		}
	} else {
		paths = []string{inputPath}
	}

	var mods []vm.Module
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		mods = append(mods, vm.Module{Name: stem, Source: string(content)})
	}
	return mods, nil
}

func defaultOutputPath(inputPath string) string {
	stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	return stem + ".asm"
}

func handle(args []string, options map[string]string) int {
	log, err := clilog.New(options["log-level"])
	if err != nil {
		os.Stderr.WriteString("vmtranslator: invalid --log-level: " + err.Error() + "\n")
		return 1
	}
	defer log.Sync()

	if len(args) != 1 {
		log.Errorw("expected exactly one input file or directory", "args", args)
		return 1
	}

	bootstrap := true
	if raw, ok := options["bootstrap"]; ok && raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			log.Errorw("invalid --bootstrap value", "value", raw)
			return 1
		}
		bootstrap = b
	}

	outputPath := options["output"]
	if outputPath == "" {
		outputPath = defaultOutputPath(args[0])
	}

	mods, err := collectModules(args[0])
	if err != nil {
		log.Errorw("could not collect .vm input files", "input", args[0], "error", err)
		return 1
	}
	if len(mods) == 0 {
		log.Errorw("no .vm files found", "input", args[0])
		return 1
	}

	output, err := os.Create(outputPath)
	if err != nil {
		log.Errorw("could not open output file", "path", outputPath, "error", err)
		return 1
	}
	defer output.Close()

	if err := vm.TranslateAll(output, mods, bootstrap); err != nil {
		log.Errorw("translation failed", "error", err)
		return 1
	}

	log.Infow("translation complete", "output", outputPath, "modules", len(mods))
	return 0
}

func main() {
	os.Exit(vmTranslatorApp.Run(os.Args, os.Stdout))
}
