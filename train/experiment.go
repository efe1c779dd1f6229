package train

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"albatch.io/al"
)

// Resources are manifest overrides an experiment may carry. Zero values
// inherit the profile and built-in defaults.
type Resources struct {
	JobName   string `yaml:"job_name"`
	Account   string `yaml:"account"`
	Partition string `yaml:"partition"`
	Time      string `yaml:"time"`
	Nodes     int    `yaml:"nodes"`
	Ntasks    int    `yaml:"ntasks"`
	Gpus      int    `yaml:"gpus"`
	Mem       string `yaml:"mem"`
	Output    string `yaml:"output"`
}

// TrainerParams are the pass-through hyperparameters of the external
// trainer. Zero values inherit the built-in defaults.
type TrainerParams struct {
	LearningRate              string `yaml:"learning_rate"`
	PerDeviceTrainBatchSize   int    `yaml:"per_device_train_batch_size"`
	PerDeviceEvalBatchSize    int    `yaml:"per_device_eval_batch_size"`
	AutoFindBatchSize         *bool  `yaml:"auto_find_batch_size"`
	GradientAccumulationSteps int    `yaml:"gradient_accumulation_steps"`
	NumTrainEpochs            int    `yaml:"num_train_epochs"`
	WeightDecay               string `yaml:"weight_decay"`
	EvaluationStrategy        string `yaml:"evaluation_strategy"`
	SaveStrategy              string `yaml:"save_strategy"`
	LoadBestModelAtEnd        *bool  `yaml:"load_best_model_at_end"`
	SaveTotalLimit            int    `yaml:"save_total_limit"`
	Optim                     string `yaml:"optim"`
	WarmupRatio               string `yaml:"warmup_ratio"`
	GroupByLength             *bool  `yaml:"group_by_length"`
	DataloaderNumWorkers      int    `yaml:"dataloader_num_workers"`
	DataloaderPinMemory       *bool  `yaml:"dataloader_pin_memory"`
	LoggingStrategy           string `yaml:"logging_strategy"`
	FP16                      *bool  `yaml:"fp16"`
}

// Experiment is a YAML experiment definition: what to train, how to query
// and stop, and any resource overrides. Unset fields fall back to the
// built-in default experiment.
type Experiment struct {
	Name        string                 `yaml:"name"`
	Task        string                 `yaml:"task"`
	Learn       *bool                  `yaml:"learn"`
	Evaluate    *bool                  `yaml:"evaluate"`
	Dataset     string                 `yaml:"dataset"`
	Model       string                 `yaml:"model"`
	Querier     string                 `yaml:"querier"`
	Stopper     string                 `yaml:"stopper"`
	NIterations int                    `yaml:"n_iterations"`
	LogLevel    string                 `yaml:"log_level"`
	NStart      al.ProportionOrInteger `yaml:"n_start"`
	NQuery      al.ProportionOrInteger `yaml:"n_query"`
	ValSetSize  al.ProportionOrInteger `yaml:"val_set_size"`
	OutputDir   string                 `yaml:"output_dir"`
	Trainer     TrainerParams          `yaml:"trainer"`
	Resources   Resources              `yaml:"resources"`
}

// DefaultExperiment mirrors train.Default.
func DefaultExperiment() Experiment {
	return Experiment{Name: "minds14-wav2vec2"}
}

// LoadExperiment reads a YAML experiment file. Unknown keys are an error.
func LoadExperiment(path string) (Experiment, error) {
	file, err := os.Open(path)
	if err != nil {
		return Experiment{}, err
	}
	defer file.Close()

	var exp Experiment
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&exp); err != nil {
		return Experiment{}, errors.New("experiment: " + err.Error())
	}
	if len(exp.Name) == 0 {
		name := filepath.Base(path)
		exp.Name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return exp, nil
}

func orStr(v, def string) string {
	if len(v) > 0 {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orBool(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

// Args merges the experiment over the default argument vector and validates
// the result. The stopper spec is parsed here so parameterized stoppers
// contribute their extra flags.
func (e Experiment) Args() (Args, error) {
	a := Default()
	a.Task = orStr(e.Task, a.Task)
	a.Learn = orBool(e.Learn, a.Learn)
	a.Evaluate = orBool(e.Evaluate, a.Evaluate)
	a.Dataset = orStr(e.Dataset, a.Dataset)
	a.Model = orStr(e.Model, a.Model)
	a.NIterations = orInt(e.NIterations, a.NIterations)
	a.LogLevel = orStr(e.LogLevel, a.LogLevel)
	if e.NStart > 0 {
		a.NStart = e.NStart
	}
	if e.NQuery > 0 {
		a.NQuery = e.NQuery
	}
	if e.ValSetSize > 0 {
		a.ValSetSize = e.ValSetSize
	}
	a.OutputDir = orStr(e.OutputDir, a.OutputDir)

	querier, err := al.ParseQuerier(orStr(e.Querier, a.Querier))
	if err != nil {
		return Args{}, errors.New("experiment: " + err.Error())
	}
	a.Querier = querier.Name
	stopper, err := al.ParseStopper(orStr(e.Stopper, a.Stopper))
	if err != nil {
		return Args{}, errors.New("experiment: " + err.Error())
	}
	a.Stopper = stopper.Flag()
	a.Extra = append(a.Extra, stopper.ExtraArgs()...)

	t := e.Trainer
	a.LearningRate = orStr(t.LearningRate, a.LearningRate)
	a.PerDeviceTrainBatchSize = orInt(t.PerDeviceTrainBatchSize, a.PerDeviceTrainBatchSize)
	a.PerDeviceEvalBatchSize = orInt(t.PerDeviceEvalBatchSize, a.PerDeviceEvalBatchSize)
	a.AutoFindBatchSize = orBool(t.AutoFindBatchSize, a.AutoFindBatchSize)
	a.GradientAccumulationSteps = orInt(t.GradientAccumulationSteps, a.GradientAccumulationSteps)
	a.NumTrainEpochs = orInt(t.NumTrainEpochs, a.NumTrainEpochs)
	a.WeightDecay = orStr(t.WeightDecay, a.WeightDecay)
	a.EvaluationStrategy = orStr(t.EvaluationStrategy, a.EvaluationStrategy)
	a.SaveStrategy = orStr(t.SaveStrategy, a.SaveStrategy)
	a.LoadBestModelAtEnd = orBool(t.LoadBestModelAtEnd, a.LoadBestModelAtEnd)
	a.SaveTotalLimit = orInt(t.SaveTotalLimit, a.SaveTotalLimit)
	a.Optim = orStr(t.Optim, a.Optim)
	a.WarmupRatio = orStr(t.WarmupRatio, a.WarmupRatio)
	a.GroupByLength = orBool(t.GroupByLength, a.GroupByLength)
	a.DataloaderNumWorkers = orInt(t.DataloaderNumWorkers, a.DataloaderNumWorkers)
	a.DataloaderPinMemory = orBool(t.DataloaderPinMemory, a.DataloaderPinMemory)
	a.LoggingStrategy = orStr(t.LoggingStrategy, a.LoggingStrategy)
	a.FP16 = orBool(t.FP16, a.FP16)

	if err := a.Validate(); err != nil {
		return Args{}, err
	}
	return a, nil
}
