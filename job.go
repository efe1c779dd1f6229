package main

import (
	"errors"

	"albatch.io/core"
	"albatch.io/logger"
	"albatch.io/slurm"
	"albatch.io/train"
)

// JobFlags are the options shared by submit and render: which experiment and
// profile to use, plus manifest overrides spelled like their sbatch
// counterparts. Command line overrides beat the experiment file, which beats
// the profile.
type JobFlags struct {
	Experiment string `short:"e" long:"experiment" description:"experiment file (YAML)"`
	Profile    string `long:"profile" description:"submission profile (defaults to the target profile)"`
	JobName    string `short:"J" long:"job-name" description:"Specify a name for the job allocation"`
	Account    string `short:"A" long:"account" description:"Charge resources used by this job to specified account"`
	Partition  string `short:"p" long:"partition" description:"Request a specific partition for the resource allocation"`
	Time       string `short:"t" long:"time" description:"time limit hours:minutes:seconds"`
	Nodes      int    `short:"N" long:"nodes" description:"Number of nodes to be allocated to this job"`
	Ntasks     int    `short:"n" long:"ntasks" description:"Maximum number of tasks launched within the allocation"`
	Gpus       int    `short:"G" long:"gpus" description:"Total number of GPUs required for the job"`
	Mem        string `long:"mem" description:"Real memory required per node, suffix [K|M|G|T]"`
	Output     string `long:"log-output" description:"File pattern for the batch script's standard output"`
}

type jobBuild struct {
	Script         []byte
	Manifest       slurm.Manifest
	Args           train.Args
	Profile        core.Profile
	ProfileName    string
	ExperimentName string
}

func buildJob(j JobFlags) (jobBuild, error) {
	profileName := j.Profile
	if len(profileName) == 0 {
		profileName = core.ReadConfigTarget()
	}
	profile, err := core.GetProfile(profileName)
	if err != nil {
		return jobBuild{}, err
	}
	if err := profile.Validate(); err != nil {
		return jobBuild{}, err
	}

	exp := train.DefaultExperiment()
	if len(j.Experiment) > 0 {
		if exp, err = train.LoadExperiment(j.Experiment); err != nil {
			return jobBuild{}, err
		}
	}
	args, err := exp.Args()
	if err != nil {
		return jobBuild{}, err
	}

	manifest := slurm.DefaultManifest().
		Merge(slurm.Manifest{
			JobName:   exp.Name,
			Account:   profile.Account,
			Partition: profile.Partition,
			Time:      profile.TimeLimit,
		}).
		Merge(slurm.Manifest{
			JobName:   exp.Resources.JobName,
			Account:   exp.Resources.Account,
			Partition: exp.Resources.Partition,
			Time:      exp.Resources.Time,
			Nodes:     exp.Resources.Nodes,
			Ntasks:    exp.Resources.Ntasks,
			Gpus:      exp.Resources.Gpus,
			Mem:       exp.Resources.Mem,
			Output:    exp.Resources.Output,
		}).
		Merge(slurm.Manifest{
			JobName:   j.JobName,
			Account:   j.Account,
			Partition: j.Partition,
			Time:      j.Time,
			Nodes:     j.Nodes,
			Ntasks:    j.Ntasks,
			Gpus:      j.Gpus,
			Mem:       j.Mem,
			Output:    j.Output,
		})
	if err := manifest.Validate(); err != nil {
		return jobBuild{}, err
	}

	command := append(
		profile.LaunchCommand(manifest.Nodes, manifest.Gpus),
		args.Argv()...)
	script := slurm.Script{
		Manifest: manifest,
		Preamble: []string{profile.ActivationLine()},
		Command:  command,
	}
	logger.DebugObj("manifest", manifest)

	return jobBuild{
		Script:         script.Render(),
		Manifest:       manifest,
		Args:           args,
		Profile:        profile,
		ProfileName:    profileName,
		ExperimentName: exp.Name,
	}, nil
}

func newClient(p core.Profile) *slurm.Client {
	return slurm.NewClient(p.SbatchPath, p.SqueuePath, p.ScancelPath)
}

var errNoSubmissions = errors.New("no tracked submissions")
