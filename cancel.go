package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"albatch.io/core"
	"albatch.io/logger"
)

type CancelCommand struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
	Args struct {
		Ref string `positional-arg-name:"submission" description:"scheduler job id or submission id prefix"`
	} `positional-args:"true" required:"1"`
}

var cancelCommand CancelCommand

func (x *CancelCommand) Execute(args []string) error {
	if x.Help {
		return createHelpErr()
	}
	ledger, err := core.ReadLedger()
	if err != nil {
		return errors.New("cancel: " + err.Error())
	}
	submission, err := core.FindSubmission(ledger, x.Args.Ref)
	if err != nil {
		return errors.New("cancel: " + err.Error())
	}

	profile, err := core.GetProfile(submission.Profile)
	if err != nil {
		profile, _ = core.GetProfile("")
	}
	client := newClient(profile)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Cancel(ctx, submission.JobID); err != nil {
		return errors.New("cancel: " + err.Error())
	}
	if err := core.UpdateSubmissionState(submission.ID, "CANCELLED"); err != nil {
		logger.WarningPrintf("cancel: cannot update ledger: %v", err)
	}
	fmt.Printf("Canceled job: %v\n", submission.JobID)
	return nil
}

func init() {
	parser.AddCommand("cancel",
		"Cancel a tracked submission",
		"Signal the scheduler to stop a job recorded in the submission ledger",
		&cancelCommand)
}
