package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(AlbatchConfigEnv, filepath.Join(dir, AlbatchConfigFilename))
	return dir
}

func TestConfigRoundTrip(t *testing.T) {
	setConfigDir(t)

	_, err := ReadConfig()
	assert.Error(t, err)

	want := Config{
		"default": DefaultProfile(),
		"cluster": {
			Account:    "mylab",
			Partition:  "gpu",
			TimeLimit:  "12:00:00",
			EnvManager: EnvManagerVenv,
			EnvName:    "/opt/venvs/mdalth",
			Launcher:   LauncherTorchrun,
			Entrypoint: "main.py",
		},
	}
	require.NoError(t, WriteConfig(want))

	got, err := ReadConfig()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConfigTarget(t *testing.T) {
	setConfigDir(t)

	assert.Equal(t, "default", ReadConfigTarget())
	require.NoError(t, WriteConfigTarget("cluster"))
	assert.Equal(t, "cluster", ReadConfigTarget())
}

func TestGetProfile(t *testing.T) {
	setConfigDir(t)

	// no config yet: the built-in default still resolves
	p, err := GetProfile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), p)

	_, err = GetProfile("cluster")
	assert.Error(t, err)

	cluster := DefaultProfile()
	cluster.Partition = "gpu"
	require.NoError(t, WriteConfig(Config{"default": DefaultProfile(), "cluster": cluster}))
	require.NoError(t, WriteConfigTarget("cluster"))

	p, err = GetProfile("")
	require.NoError(t, err)
	assert.Equal(t, "gpu", p.Partition)

	p, err = GetProfile("default")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), p)

	_, err = GetProfile("absent")
	assert.Error(t, err)
}

func TestProfileValidate(t *testing.T) {
	require.NoError(t, DefaultProfile().Validate())

	p := DefaultProfile()
	p.EnvName = ""
	assert.Error(t, p.Validate())

	p = DefaultProfile()
	p.EnvManager = "modules"
	assert.Error(t, p.Validate())

	p = DefaultProfile()
	p.Launcher = "mpirun"
	assert.Error(t, p.Validate())

	p = DefaultProfile()
	p.Entrypoint = ""
	assert.Error(t, p.Validate())

	p = DefaultProfile()
	p.EnvManager = EnvManagerNone
	p.EnvName = ""
	assert.NoError(t, p.Validate())
}

func TestActivationLine(t *testing.T) {
	p := DefaultProfile()
	assert.Equal(t, "source activate mdalth", p.ActivationLine())

	p.EnvManager = EnvManagerVenv
	p.EnvName = "/opt/venvs/mdalth"
	assert.Equal(t, "source /opt/venvs/mdalth/bin/activate", p.ActivationLine())

	p.EnvManager = EnvManagerNone
	assert.Empty(t, p.ActivationLine())
}

func TestLaunchCommand(t *testing.T) {
	p := DefaultProfile()
	assert.Equal(t, []string{"accelerate", "launch", "main.py"}, p.LaunchCommand(1, 4))

	p.Launcher = LauncherTorchrun
	assert.Equal(t,
		[]string{"torchrun", "--nnodes=1", "--nproc_per_node=4", "main.py"},
		p.LaunchCommand(1, 4))

	p.Launcher = LauncherPython
	p.Entrypoint = "-m mdalth.run"
	assert.Equal(t, []string{"python", "-m", "mdalth.run"}, p.LaunchCommand(1, 4))
}
