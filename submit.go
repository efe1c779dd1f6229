package main

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"albatch.io/core"
	"albatch.io/logger"
)

type SubmitCommand struct {
	Help   bool     `short:"h" long:"help" description:"Show this help message"`
	Job    JobFlags `group:"Job Options"`
	DryRun bool     `long:"dry-run" description:"Print the job script and submission command without submitting"`
}

var submitCommand SubmitCommand

func (x *SubmitCommand) Execute(args []string) error {
	if x.Help {
		return createHelpErr()
	}
	build, err := buildJob(x.Job)
	if err != nil {
		return errors.New("submit: " + err.Error())
	}

	client := newClient(build.Profile)
	if x.DryRun {
		fmt.Printf("# %s < <script>\n", client.Sbatch)
		fmt.Print(string(build.Script))
		return nil
	}

	scriptPath, err := saveScript(build)
	if err != nil {
		return errors.New("submit: " + err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	jobID, err := client.Submit(ctx, build.Script)
	if err != nil {
		return errors.New("submit: " + err.Error())
	}

	workDir, err := os.Getwd()
	if err != nil {
		logger.WarningPrintf("submit: cannot resolve working directory: %v", err)
		workDir = os.Getenv("HOME")
	}
	submission, err := core.AppendSubmission(core.Submission{
		JobID:      jobID,
		JobName:    build.Manifest.JobName,
		Experiment: build.ExperimentName,
		Profile:    build.ProfileName,
		Script:     scriptPath,
		WorkDir:    workDir,
		State:      "PENDING",
	})
	if err != nil {
		// The job is already queued; a broken ledger should not fail it.
		logger.WarningPrintf("submit: cannot record submission: %v", err)
	} else {
		logger.InfoPrintf("submit: recorded %s for job %d", submission.ID, jobID)
	}
	fmt.Printf("Submitted batch job %d\n", jobID)
	return nil
}

// saveScript keeps a copy of what was handed to the scheduler.
func saveScript(build jobBuild) (string, error) {
	dir := filepath.Join(core.ConfigDir(), "scripts")
	if err := os.MkdirAll(dir, 0744); err != nil {
		return "", err
	}
	name := build.Manifest.JobName + "-" +
		strconv.FormatInt(time.Now().Unix(), 10) + ".sh"
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, build.Script, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func init() {
	parser.AddCommand("submit",
		"Submit a training job",
		"Render the active-learning training job script and submit it to the scheduler",
		&submitCommand)
}
