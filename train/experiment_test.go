package train

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExperiment(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadExperiment(t *testing.T) {
	path := writeExperiment(t, "margin.yaml", `
name: margin-sweep
dataset: superb
model: facebook/wav2vec2-large
querier: margin
stopper: stabilizing_predictions:5:0.95
n_iterations: 8
trainer:
  learning_rate: 1e-4
  num_train_epochs: 10
  fp16: false
resources:
  partition: gpu
  gpus: 8
`)
	exp, err := LoadExperiment(path)
	require.NoError(t, err)
	assert.Equal(t, "margin-sweep", exp.Name)
	assert.Equal(t, "superb", exp.Dataset)
	assert.Equal(t, "gpu", exp.Resources.Partition)
	assert.Equal(t, 8, exp.Resources.Gpus)

	args, err := exp.Args()
	require.NoError(t, err)
	assert.Equal(t, "margin", args.Querier)
	assert.Equal(t, "stabilizing_predictions", args.Stopper)
	assert.Equal(t, 8, args.NIterations)
	assert.Equal(t, "1e-4", args.LearningRate)
	assert.Equal(t, 10, args.NumTrainEpochs)
	assert.False(t, args.FP16)
	assert.Equal(t,
		[]string{"--stopper_windows", "5", "--stopper_threshold", "0.95"},
		args.Extra)
}

func TestLoadExperimentNameFromFilename(t *testing.T) {
	path := writeExperiment(t, "uncertainty-run.yaml", "querier: uncertainty\n")
	exp, err := LoadExperiment(path)
	require.NoError(t, err)
	assert.Equal(t, "uncertainty-run", exp.Name)
}

func TestLoadExperimentUnknownKey(t *testing.T) {
	path := writeExperiment(t, "bad.yaml", "dataset: superb\nquerrier: margin\n")
	_, err := LoadExperiment(path)
	assert.Error(t, err)
}

func TestLoadExperimentMissingFile(t *testing.T) {
	_, err := LoadExperiment(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestExperimentArgsDefaults(t *testing.T) {
	def, err := Experiment{}.Args()
	require.NoError(t, err)
	assert.Equal(t, Default().Argv(), def.Argv())
}

func TestExperimentArgsBadStrategy(t *testing.T) {
	_, err := Experiment{Querier: "leverage"}.Args()
	assert.Error(t, err)
	_, err = Experiment{Stopper: "sometimes"}.Args()
	assert.Error(t, err)
	_, err = Experiment{Stopper: "max_confidence:2"}.Args()
	assert.Error(t, err)
}

func TestExperimentArgsTriStateBooleans(t *testing.T) {
	off := false
	args, err := Experiment{
		Trainer: TrainerParams{GroupByLength: &off, DataloaderPinMemory: &off},
	}.Args()
	require.NoError(t, err)
	assert.False(t, args.GroupByLength)
	assert.False(t, args.DataloaderPinMemory)
	// unset booleans keep the defaults
	assert.True(t, args.AutoFindBatchSize)
	assert.True(t, args.FP16)
}
