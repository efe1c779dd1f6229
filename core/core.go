// Package core holds the submission profile configuration and the local
// submission ledger shared by every albatch command.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

const (
	AlbatchConfigPath      = "/.config/albatch/"
	AlbatchConfigFilename  = "config.json"
	AlbatchTargetFilename  = "target"
	AlbatchConfigFilePerms = 0600
)

const AlbatchConfigEnv = "ALBATCH_CONFIG"

// Environment managers a profile may activate before launching training.
const (
	EnvManagerConda = "conda"
	EnvManagerVenv  = "venv"
	EnvManagerNone  = "none"
)

// Launchers a profile may start the trainer with.
const (
	LauncherAccelerate = "accelerate"
	LauncherTorchrun   = "torchrun"
	LauncherPython     = "python"
)

// Profile is everything a submission site hard-codes about where and how a
// training job runs: scheduler accounting, the environment-activation step,
// and the launcher for the external training program.
/*
{
	"default": {
		"account": "mylab",
		"partition": "gpu",
		"time_limit": "24:00:00",
		"env_manager": "conda",
		"env_name": "mdalth",
		"launcher": "accelerate",
		"entrypoint": "main.py"
	}
}
*/
type Profile struct {
	Account    string `json:"account,omitempty"`
	Partition  string `json:"partition,omitempty"`
	TimeLimit  string `json:"time_limit,omitempty"`
	EnvManager string `json:"env_manager"`
	EnvName    string `json:"env_name,omitempty"`
	Launcher   string `json:"launcher"`
	Entrypoint string `json:"entrypoint"`
	// Optional overrides for the scheduler binaries
	SbatchPath  string `json:"sbatch_path,omitempty"`
	SqueuePath  string `json:"squeue_path,omitempty"`
	ScancelPath string `json:"scancel_path,omitempty"`
}

type Config map[string]Profile

func DefaultProfile() Profile {
	return Profile{
		TimeLimit:  "24:00:00",
		EnvManager: EnvManagerConda,
		EnvName:    "mdalth",
		Launcher:   LauncherAccelerate,
		Entrypoint: "main.py",
	}
}

// Validate rejects profile values the script generator cannot render.
func (p Profile) Validate() error {
	switch p.EnvManager {
	case EnvManagerConda, EnvManagerVenv:
		if len(p.EnvName) == 0 {
			return errors.New("profile: env_name required for " + p.EnvManager)
		}
	case EnvManagerNone, "":
	default:
		return errors.New("profile: unknown env_manager: " + p.EnvManager)
	}
	switch p.Launcher {
	case LauncherAccelerate, LauncherTorchrun, LauncherPython, "":
	default:
		return errors.New("profile: unknown launcher: " + p.Launcher)
	}
	if len(p.Entrypoint) == 0 {
		return errors.New("profile: entrypoint required")
	}
	return nil
}

// ActivationLine is the environment-activation step placed before the
// launcher in the generated job script. Empty when no activation applies.
func (p Profile) ActivationLine() string {
	switch p.EnvManager {
	case EnvManagerConda:
		return "source activate " + p.EnvName
	case EnvManagerVenv:
		return "source " + filepath.Join(p.EnvName, "bin", "activate")
	}
	return ""
}

// LaunchCommand is the launcher argv prefix, up to and including the
// entrypoint. The scheduler starts exactly one launcher process; splitting
// work across GPUs stays the launcher's business.
func (p Profile) LaunchCommand(nodes, gpus int) []string {
	entry := strings.Fields(p.Entrypoint)
	switch p.Launcher {
	case LauncherTorchrun:
		cmd := []string{
			"torchrun",
			fmt.Sprintf("--nnodes=%d", nodes),
			fmt.Sprintf("--nproc_per_node=%d", gpus),
		}
		return append(cmd, entry...)
	case LauncherPython:
		return append([]string{"python"}, entry...)
	default:
		return append([]string{"accelerate", "launch"}, entry...)
	}
}

func fileExist(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ConfigDir is the directory holding the config file, target file, ledger,
// and rendered scripts. ALBATCH_CONFIG overrides the config file location;
// everything else follows it.
func ConfigDir() string {
	if env := os.Getenv(AlbatchConfigEnv); len(env) > 0 {
		return filepath.Dir(env)
	}
	return os.Getenv("HOME") + AlbatchConfigPath
}

func configFilePath() string {
	if env := os.Getenv(AlbatchConfigEnv); len(env) > 0 {
		return env
	}
	return filepath.Join(ConfigDir(), AlbatchConfigFilename)
}

func WriteConfig(config Config) error {
	if err := os.MkdirAll(ConfigDir(), 0744); err != nil {
		return err
	}
	file, err := json.MarshalIndent(config, "", "	")
	if err != nil {
		return err
	}
	configFile := configFilePath()
	// Ensure config file uses proper permissions
	os.Chmod(configFile, AlbatchConfigFilePerms)
	return ioutil.WriteFile(configFile, file, AlbatchConfigFilePerms)
}

func ReadConfig() (Config, error) {
	filename := configFilePath()
	if !fileExist(filename) {
		return Config{}, errors.New("cannot read albatch config")
	}
	bytes, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, err
	}
	var config Config
	json.Unmarshal(bytes, &config)
	// Check if any profiles were found in config file
	if len(config) == 0 {
		return Config{}, errors.New("invalid albatch config")
	}
	return config, nil
}

// ReadConfigTarget returns the active profile name.
func ReadConfigTarget() string {
	target, err := ioutil.ReadFile(filepath.Join(ConfigDir(), AlbatchTargetFilename))
	if err != nil {
		return "default"
	}
	name := strings.TrimSpace(string(target))
	if len(name) == 0 {
		return "default"
	}
	return name
}

func WriteConfigTarget(name string) error {
	if err := os.MkdirAll(ConfigDir(), 0744); err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(ConfigDir(), AlbatchTargetFilename),
		[]byte(name+"\n"), AlbatchConfigFilePerms)
}

// GetProfile resolves a profile by name; an empty name resolves the target
// profile. A missing config falls back to the built-in default profile so
// render and plan work before any profile is set.
func GetProfile(name string) (Profile, error) {
	config, err := ReadConfig()
	if err != nil {
		if len(name) == 0 || name == "default" {
			return DefaultProfile(), nil
		}
		return Profile{}, err
	}
	if len(name) == 0 {
		name = ReadConfigTarget()
	}
	profile, ok := config[name]
	if !ok {
		return Profile{}, errors.New("cannot find profile: " + name)
	}
	return profile, nil
}
