package main

import (
	"errors"
	"fmt"

	"albatch.io/core"
)

type ProfileConfigFlags struct {
	Help bool   `short:"h" long:"help" description:"Show this help message"`
	Name string `long:"name" description:"profile name" default:"default"`
}

type ProfileCommand struct {
	Config ProfileConfigFlags `group:"Configuration Options"`
	Set    ProfileSetCommand  `command:"set"`
	List   ProfileListCommand `command:"list"`
	Use    ProfileUseCommand  `command:"use"`
}

type ProfileSetCommand struct {
	Config     ProfileConfigFlags `group:"Configuration Options" hidden:"true"`
	Account    string             `short:"A" long:"account" description:"charge account"`
	Partition  string             `short:"p" long:"partition" description:"default partition"`
	Time       string             `short:"t" long:"time" description:"default time limit"`
	EnvManager string             `long:"env-manager" description:"environment manager: conda, venv or none" default:"conda"`
	EnvName    string             `long:"env-name" description:"environment to activate"`
	Launcher   string             `long:"launcher" description:"training launcher: accelerate, torchrun or python" default:"accelerate"`
	Entrypoint string             `long:"entrypoint" description:"training program entry point" default:"main.py"`
	Sbatch     string             `long:"sbatch-path" description:"path to the sbatch binary"`
	Squeue     string             `long:"squeue-path" description:"path to the squeue binary"`
	Scancel    string             `long:"scancel-path" description:"path to the scancel binary"`
}

type ProfileListCommand struct {
	Config ProfileConfigFlags `group:"Configuration Options" hidden:"true"`
}

type ProfileUseCommand struct {
	Config ProfileConfigFlags `group:"Configuration Options" hidden:"true"`
	Args   struct {
		Name string `positional-arg-name:"name" description:"profile to make the target"`
	} `positional-args:"true" required:"1"`
}

var profileCommand ProfileCommand

func (x *ProfileCommand) Execute(args []string) error {
	if x.Config.Help {
		return createHelpErr()
	}
	return nil
}

func (x *ProfileSetCommand) Execute(args []string) error {
	if x.Config.Help {
		return createHelpErr()
	}
	profile := core.Profile{
		Account:     x.Account,
		Partition:   x.Partition,
		TimeLimit:   x.Time,
		EnvManager:  x.EnvManager,
		EnvName:     x.EnvName,
		Launcher:    x.Launcher,
		Entrypoint:  x.Entrypoint,
		SbatchPath:  x.Sbatch,
		SqueuePath:  x.Squeue,
		ScancelPath: x.Scancel,
	}
	if err := profile.Validate(); err != nil {
		return err
	}
	config, err := core.ReadConfig()
	if err != nil {
		config = make(core.Config)
	}
	config[x.Config.Name] = profile
	if err := core.WriteConfig(config); err != nil {
		return errors.New("profile: unable to write config file")
	}
	return nil
}

func (x *ProfileListCommand) Execute(args []string) error {
	if x.Config.Help {
		return createHelpErr()
	}
	config, err := core.ReadConfig()
	if err != nil {
		return err
	}
	target := core.ReadConfigTarget()
	for name := range config {
		marker := " "
		if name == target {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	return nil
}

func (x *ProfileUseCommand) Execute(args []string) error {
	if x.Config.Help {
		return createHelpErr()
	}
	config, err := core.ReadConfig()
	if err != nil {
		return err
	}
	if _, ok := config[x.Args.Name]; !ok {
		return errors.New(x.Args.Name + " configuration does not exist")
	}
	return core.WriteConfigTarget(x.Args.Name)
}

func init() {
	parser.AddCommand("profile",
		"Manage submission profiles",
		"The profile command maintains the configuration file of named submission profiles",
		&profileCommand)
}
