package main

import (
	"errors"
	"fmt"
	"strconv"

	"albatch.io/al"
	"albatch.io/core"
	"albatch.io/logger"
	"albatch.io/train"
)

type PlanCommand struct {
	Help       bool    `short:"h" long:"help" description:"Show this help message"`
	Experiment string  `short:"e" long:"experiment" description:"experiment file (YAML)"`
	Rows       int     `short:"r" long:"rows" description:"number of rows in the training dataset"`
	NStart     float64 `long:"n-start" description:"initial random batch size (count or proportion)"`
	NQuery     float64 `long:"n-query" description:"query batch size (count or proportion)"`
	ValSetSize float64 `long:"val-set-size" description:"validation set size (count or proportion)"`
	Iterations float64 `long:"iterations" description:"requested iteration count (count or proportion)"`
}

var planCommand PlanCommand

func (x *PlanCommand) Execute(args []string) error {
	if x.Help {
		return createHelpErr()
	}
	if x.Rows <= 0 {
		return errors.New("plan: --rows is required")
	}

	exp := train.DefaultExperiment()
	if len(x.Experiment) > 0 {
		var err error
		if exp, err = train.LoadExperiment(x.Experiment); err != nil {
			return errors.New("plan: " + err.Error())
		}
	}
	trainArgs, err := exp.Args()
	if err != nil {
		return errors.New("plan: " + err.Error())
	}

	nStart := trainArgs.NStart
	nQuery := trainArgs.NQuery
	valSetSize := trainArgs.ValSetSize
	nIterations := al.ProportionOrInteger(trainArgs.NIterations)
	if valSetSize == 0 {
		valSetSize = 0.1
	}
	if x.NStart > 0 {
		nStart = al.ProportionOrInteger(x.NStart)
	}
	if x.NQuery > 0 {
		nQuery = al.ProportionOrInteger(x.NQuery)
	}
	if x.ValSetSize > 0 {
		valSetSize = al.ProportionOrInteger(x.ValSetSize)
	}
	if x.Iterations > 0 {
		nIterations = al.ProportionOrInteger(x.Iterations)
	}

	plan, err := al.NewPlan(x.Rows, nStart, nQuery, valSetSize, nIterations)
	if err != nil {
		return errors.New("plan: " + err.Error())
	}
	if plan.Clamped {
		logger.WarningPrintf(
			"plan: only %d iterations are possible, clamping the requested count",
			plan.Total)
	}

	table := [][]string{{"ITER", "LABELED"}}
	for i := 0; i <= plan.NIterations; i++ {
		table = append(table, []string{
			strconv.Itoa(i),
			strconv.Itoa(plan.LabeledAt(i)),
		})
	}
	core.PrintTable(table)
	fmt.Printf("\niterations: %d of %d possible\n", plan.NIterations, plan.Total)
	fmt.Printf("output root: %s\n", plan.OutputRoot())
	return nil
}

func init() {
	parser.AddCommand("plan",
		"Show the active-learning iteration schedule",
		"Resolve batch sizes and show how many query iterations the dataset allows",
		&planCommand)
}
