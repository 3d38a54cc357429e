// Command assembler translates Hack symbolic assembly into 16-bit binary
// machine code, writing newline-separated lines to standard output.
package main

import (
	"os"
	"strings"

	"github.com/teris-io/cli"

	"github.com/pacokwon/n2t/internal/asm"
	"github.com/pacokwon/n2t/internal/clilog"
)

var description = strings.ReplaceAll(`
The Assembler translates Hack symbolic assembly (.asm) into 16-bit binary
machine instructions, one line of '0'/'1' characters per instruction,
written to standard output.
`, "\n", " ")

var assemblerApp = cli.New(description).
	WithArg(cli.NewArg("input", "The assembly (.asm) file to translate").WithType(cli.TypeString)).
	WithOption(cli.NewOption("log-level", "Logger verbosity: debug, info, warn, error").WithType(cli.TypeString)).
	WithAction(handle)

func handle(args []string, options map[string]string) int {
	log, err := clilog.New(options["log-level"])
	if err != nil {
		// Logger construction itself failed; fall back to a bare stderr message.
		os.Stderr.WriteString("assembler: invalid --log-level: " + err.Error() + "\n")
		return 1
	}
	defer log.Sync()

	if len(args) != 1 {
		log.Errorw("expected exactly one input file", "args", args)
		return 1
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		log.Errorw("could not read input file", "path", args[0], "error", err)
		return 1
	}

	out, err := asm.Assemble(string(content))
	if err != nil {
		log.Errorw("assembly failed", "error", err)
		return 1
	}

	os.Stdout.WriteString(out)
	if len(out) > 0 {
		os.Stdout.WriteString("\n")
	}
	return 0
}

func main() {
	os.Exit(assemblerApp.Run(os.Args, os.Stdout))
}
