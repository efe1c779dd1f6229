package slurm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `#!/bin/bash
#SBATCH --job-name=al-train
#SBATCH --nodes=1
#SBATCH --ntasks=8
#SBATCH --gpus=4
#SBATCH --mem=32G
#SBATCH --time=24:00:00
#SBATCH --chdir=/scratch/run

source activate mdalth
accelerate launch main.py --task audio
`

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.sh")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseJobScript(t *testing.T) {
	job, err := ParseJobScript("SBATCH", writeScript(t, sampleScript))
	require.NoError(t, err)
	assert.Equal(t, "/bin/bash", job.Shell)
	assert.Contains(t, job.Args, "--job-name=al-train")
	assert.Contains(t, job.Args, "--mem=32G")
	assert.Contains(t, string(job.Script), "source activate mdalth")
	assert.NotContains(t, string(job.Script), "#SBATCH")
}

func TestParseJobScriptStopsAtBody(t *testing.T) {
	script := `#!/bin/sh
#SBATCH --nodes=2
echo hello
#SBATCH --ntasks=4
`
	job, err := ParseJobScript("SBATCH", writeScript(t, script))
	require.NoError(t, err)
	assert.Equal(t, []string{"--nodes=2"}, job.Args)
}

func TestParseJobScriptDefaultShell(t *testing.T) {
	job, err := ParseJobScript("SBATCH", writeScript(t, "#SBATCH --nodes=1\n"))
	require.NoError(t, err)
	assert.Equal(t, "/bin/sh", job.Shell)
}

func TestParseDirectives(t *testing.T) {
	job, err := ParseJobScript("SBATCH", writeScript(t, sampleScript))
	require.NoError(t, err)
	m, unsupported, err := ParseDirectives(job.Args)
	require.NoError(t, err)
	assert.Equal(t, "al-train", m.JobName)
	assert.Equal(t, 1, m.Nodes)
	assert.Equal(t, 8, m.Ntasks)
	assert.Equal(t, 4, m.Gpus)
	assert.Equal(t, "32G", m.Mem)
	assert.Equal(t, "24:00:00", m.Time)
	assert.Equal(t, []string{"chdir"}, unsupported)
}

func TestParseDirectivesShortOptions(t *testing.T) {
	m, unsupported, err := ParseDirectives([]string{
		"-J", "probe", "-N", "2", "-n", "16", "-p", "gpu", "-t", "1-0",
	})
	require.NoError(t, err)
	assert.Empty(t, unsupported)
	assert.Equal(t, "probe", m.JobName)
	assert.Equal(t, 2, m.Nodes)
	assert.Equal(t, 16, m.Ntasks)
	assert.Equal(t, "gpu", m.Partition)
	assert.Equal(t, "1-0", m.Time)
}

func TestParseDirectivesUnknownOption(t *testing.T) {
	_, _, err := ParseDirectives([]string{"--no-such-option=1"})
	assert.Error(t, err)
}

func TestDecodeGpusReq(t *testing.T) {
	count, err := decodeGpusReq("4")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	count, err = decodeGpusReq("a100:2")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = decodeGpusReq("a100")
	assert.Error(t, err)
}
