package main

import (
	"errors"
	"fmt"
	"io/ioutil"

	"albatch.io/logger"
)

type RenderCommand struct {
	Help bool     `short:"h" long:"help" description:"Show this help message"`
	Job  JobFlags `group:"Job Options"`
	Out  string   `short:"o" long:"out" description:"write the job script to a file instead of stdout"`
}

var renderCommand RenderCommand

func (x *RenderCommand) Execute(args []string) error {
	if x.Help {
		return createHelpErr()
	}
	build, err := buildJob(x.Job)
	if err != nil {
		return errors.New("render: " + err.Error())
	}
	if len(x.Out) > 0 {
		if err := ioutil.WriteFile(x.Out, build.Script, 0644); err != nil {
			return errors.New("render: " + err.Error())
		}
		logger.InfoPrintf("render: wrote %s", x.Out)
		return nil
	}
	fmt.Print(string(build.Script))
	return nil
}

func init() {
	parser.AddCommand("render",
		"Render a training job script",
		"Render the active-learning training job script without submitting it",
		&renderCommand)
}
