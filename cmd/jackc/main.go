// Command jackc compiles Jack source files into stack-based VM code,
// writing one <stem>.vm next to each input (plus an optional <stem>.xml
// parse-tree dump).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teris-io/cli"
	"go.uber.org/zap"

	"github.com/pacokwon/n2t/internal/clilog"
	"github.com/pacokwon/n2t/internal/jack"
)

var description = strings.ReplaceAll(`
The Jack Compiler translates Jack (.jack) source files into stack-based VM
(.vm) code, one output file per input.
`, "\n", " ")

var jackcApp = cli.New(description).
	WithArg(cli.NewArg("input", "The .jack file or directory of .jack files to compile").WithType(cli.TypeString)).
	WithOption(cli.NewOption("dump-ast", "Additionally write a <stem>.xml parse-tree dump").WithType(cli.TypeBool)).
	WithOption(cli.NewOption("log-level", "Logger verbosity: debug, info, warn, error").WithType(cli.TypeString)).
	WithAction(handle)

func collectJackFiles(inputPath string) ([]string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{inputPath}, nil
	}
	entries, err := os.ReadDir(inputPath)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".jack" {
			files = append(files, filepath.Join(inputPath, e.Name()))
		}
	}
	return files, nil
}

func compileFile(path string, dumpAST bool, log *zap.SugaredLogger) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %q: %w", path, err)
	}

	lex, err := jack.NewLexer(strings.NewReader(string(content)))
	if err != nil {
		return fmt.Errorf("could not tokenize %q: %w", path, err)
	}
	class, err := jack.NewParser(lex).Parse()
	if err != nil {
		return fmt.Errorf("could not parse %q: %w", path, err)
	}

	stem := strings.TrimSuffix(path, filepath.Ext(path))

	vmOut, err := os.Create(stem + ".vm")
	if err != nil {
		return fmt.Errorf("could not open output for %q: %w", path, err)
	}
	defer vmOut.Close()

	gen := jack.NewGenerator(jack.NewVMWriter(vmOut), jack.NewSymbolTable(log), log)
	if err := gen.Generate(class); err != nil {
		return fmt.Errorf("could not compile %q: %w", path, err)
	}

	if dumpAST {
		xmlOut, err := os.Create(stem + ".xml")
		if err != nil {
			return fmt.Errorf("could not open xml dump for %q: %w", path, err)
		}
		defer xmlOut.Close()
		if err := jack.WriteXML(xmlOut, class); err != nil {
			return fmt.Errorf("could not write xml dump for %q: %w", path, err)
		}
	}

	return nil
}

func handle(args []string, options map[string]string) int {
	log, err := clilog.New(options["log-level"])
	if err != nil {
		os.Stderr.WriteString("jackc: invalid --log-level: " + err.Error() + "\n")
		return 1
	}
	defer log.Sync()

	if len(args) != 1 {
		log.Errorw("expected exactly one input file or directory", "args", args)
		return 1
	}

	_, dumpAST := options["dump-ast"]

	files, err := collectJackFiles(args[0])
	if err != nil {
		log.Errorw("could not collect .jack input files", "input", args[0], "error", err)
		return 1
	}
	if len(files) == 0 {
		log.Errorw("no .jack files found", "input", args[0])
		return 1
	}

	for _, f := range files {
		log.Debugw("compiling", "file", f)
		if err := compileFile(f, dumpAST, log); err != nil {
			log.Errorw("compilation failed", "file", f, "error", err)
			return 1
		}
	}

	log.Infow("compilation complete", "files", len(files))
	return 0
}

func main() {
	os.Exit(jackcApp.Run(os.Args, os.Stdout))
}
