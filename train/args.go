// Package train models the command line of the external active-learning
// training program: a flat mapping from option name to literal value,
// rendered once into the launcher invocation. Nothing here interprets what
// the trainer does with the flags.
package train

import (
	"errors"
	"strconv"

	"albatch.io/al"
)

// Args is the full flag surface of the training entry point. String fields
// hold the literal spelling forwarded on the command line, so values like
// 3e-5 survive unchanged.
type Args struct {
	Task                      string
	Learn                     bool
	Evaluate                  bool
	Dataset                   string
	Model                     string
	Querier                   string
	Stopper                   string
	NIterations               int
	LogLevel                  string
	NStart                    al.ProportionOrInteger
	NQuery                    al.ProportionOrInteger
	ValSetSize                al.ProportionOrInteger
	OutputDir                 string
	LearningRate              string
	PerDeviceTrainBatchSize   int
	PerDeviceEvalBatchSize    int
	AutoFindBatchSize         bool
	GradientAccumulationSteps int
	NumTrainEpochs            int
	WeightDecay               string
	EvaluationStrategy        string
	SaveStrategy              string
	LoadBestModelAtEnd        bool
	SaveTotalLimit            int
	Optim                     string
	WarmupRatio               string
	GroupByLength             bool
	DataloaderNumWorkers      int
	DataloaderPinMemory       bool
	LoggingStrategy           string
	FP16                      bool
	// Extra carries already-rendered flags appended after the fixed set,
	// e.g. stopper parameters.
	Extra []string
}

// Default reproduces the submission this tool was built around: wav2vec2
// fine-tuning on MINDS-14 with a random querier and no stopping rule.
func Default() Args {
	return Args{
		Task:                      "audio",
		Learn:                     true,
		Evaluate:                  true,
		Dataset:                   "PolyAI/minds14",
		Model:                     "facebook/wav2vec2-base",
		Querier:                   al.QuerierRandom,
		Stopper:                   al.StopperNull,
		NIterations:               16,
		LogLevel:                  "warning",
		NStart:                    32,
		NQuery:                    32,
		LearningRate:              "3e-5",
		PerDeviceTrainBatchSize:   64,
		PerDeviceEvalBatchSize:    64,
		AutoFindBatchSize:         true,
		GradientAccumulationSteps: 4,
		NumTrainEpochs:            25,
		WeightDecay:               "0.01",
		EvaluationStrategy:        "epoch",
		SaveStrategy:              "epoch",
		LoadBestModelAtEnd:        true,
		SaveTotalLimit:            1,
		Optim:                     "adamw_torch",
		WarmupRatio:               "0.1",
		GroupByLength:             true,
		DataloaderNumWorkers:      16,
		DataloaderPinMemory:       true,
		LoggingStrategy:           "epoch",
		FP16:                      true,
	}
}

func validStrategy(s string) bool {
	switch s {
	case "", "no", "epoch", "steps":
		return true
	}
	return false
}

func validLogLevel(s string) bool {
	switch s {
	case "", "debug", "info", "warning", "error", "critical", "passive":
		return true
	}
	return false
}

// Validate rejects argument vectors the trainer would refuse, so typos fail
// here instead of on the cluster.
func (a Args) Validate() error {
	if len(a.Task) == 0 {
		return errors.New("train: task required")
	}
	if !a.Learn && !a.Evaluate {
		return errors.New("train: at least one of learn, evaluate required")
	}
	if len(a.Dataset) == 0 {
		return errors.New("train: dataset required")
	}
	if len(a.Model) == 0 {
		return errors.New("train: pretrained model required")
	}
	if _, err := al.ParseQuerier(a.Querier); err != nil {
		return errors.New("train: " + err.Error())
	}
	if _, err := al.ParseStopper(a.Stopper); err != nil {
		return errors.New("train: " + err.Error())
	}
	if a.NIterations < 1 {
		return errors.New("train: n_iterations must be positive")
	}
	if !validLogLevel(a.LogLevel) {
		return errors.New("train: unknown log_level: " + a.LogLevel)
	}
	for name, v := range map[string]string{
		"evaluation_strategy": a.EvaluationStrategy,
		"save_strategy":       a.SaveStrategy,
		"logging_strategy":    a.LoggingStrategy,
	} {
		if !validStrategy(v) {
			return errors.New("train: unknown " + name + ": " + v)
		}
	}
	return nil
}

// Argv renders the argument vector in the trainer's canonical flag order.
// Valued options render as "--name value", booleans as a bare "--name";
// fp16 takes an explicit value.
func (a Args) Argv() []string {
	var argv []string
	str := func(name, value string) {
		if len(value) > 0 {
			argv = append(argv, "--"+name, value)
		}
	}
	num := func(name string, value int) {
		if value > 0 {
			argv = append(argv, "--"+name, strconv.Itoa(value))
		}
	}
	flag := func(name string, set bool) {
		if set {
			argv = append(argv, "--"+name)
		}
	}
	poi := func(name string, value al.ProportionOrInteger) {
		if value > 0 {
			argv = append(argv, "--"+name, value.String())
		}
	}

	str("task", a.Task)
	flag("learn", a.Learn)
	flag("evaluate", a.Evaluate)
	str("dataset", a.Dataset)
	str("pretrained_model_name_or_path", a.Model)
	str("querier", a.Querier)
	str("stopper", a.Stopper)
	num("n_iterations", a.NIterations)
	str("log_level", a.LogLevel)
	poi("n_start", a.NStart)
	poi("n_query", a.NQuery)
	poi("val_set_size", a.ValSetSize)
	str("output_dir", a.OutputDir)
	str("learning_rate", a.LearningRate)
	num("per_device_train_batch_size", a.PerDeviceTrainBatchSize)
	num("per_device_eval_batch_size", a.PerDeviceEvalBatchSize)
	flag("auto_find_batch_size", a.AutoFindBatchSize)
	num("gradient_accumulation_steps", a.GradientAccumulationSteps)
	num("num_train_epochs", a.NumTrainEpochs)
	str("weight_decay", a.WeightDecay)
	str("evaluation_strategy", a.EvaluationStrategy)
	str("save_strategy", a.SaveStrategy)
	flag("load_best_model_at_end", a.LoadBestModelAtEnd)
	num("save_total_limit", a.SaveTotalLimit)
	str("optim", a.Optim)
	str("warmup_ratio", a.WarmupRatio)
	flag("group_by_length", a.GroupByLength)
	num("dataloader_num_workers", a.DataloaderNumWorkers)
	flag("dataloader_pin_memory", a.DataloaderPinMemory)
	str("logging_strategy", a.LoggingStrategy)
	if a.FP16 {
		argv = append(argv, "--fp16", "true")
	}
	argv = append(argv, a.Extra...)
	return argv
}
