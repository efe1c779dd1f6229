package main

import (
	"strings"

	"albatch.io/core"
	"albatch.io/logger"
	"albatch.io/slurm"
)

type ImportCommand struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
	Args struct {
		Script string `positional-arg-name:"script" description:"job script to read"`
	} `positional-args:"true" required:"1"`
}

var importCommand ImportCommand

func (x *ImportCommand) Execute(args []string) error {
	if x.Help {
		return createHelpErr()
	}
	job, err := slurm.ParseJobScript("SBATCH", x.Args.Script)
	if err != nil {
		return err
	}
	manifest, unsupported, err := slurm.ParseDirectives(job.Args)
	if err != nil {
		return err
	}
	if len(unsupported) > 0 {
		logger.WarningPrintf("import: ignoring options: %s", strings.Join(unsupported, ", "))
	}
	core.PrintTable(manifest.Summary())
	return nil
}

func init() {
	parser.AddCommand("import",
		"Read a job script's directives into a manifest",
		"The import command parses the #SBATCH directives of an existing batch "+
			"script and prints the resource manifest they describe",
		&importCommand)
}
