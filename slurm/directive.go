package slurm

import (
	"bufio"
	"errors"
	"os"
	"strconv"
	"strings"

	flag "github.com/juju/gnuflag"
)

// JobScript is an existing batch script split into its shell, its #SBATCH
// directive arguments, and the remaining body.
type JobScript struct {
	Shell  string
	Args   []string
	Script []byte
}

// ParseJobScript reads a batch script and collects the arguments of every
// "#<directive>" comment line before the first non-directive line.
func ParseJobScript(directive, filename string) (JobScript, error) {
	file, err := os.Open(filename)
	if err != nil {
		return JobScript{}, err
	}
	defer file.Close()

	shell := "/bin/sh"
	var args []string
	var script []byte
	prefix := "#" + directive

	scanner := bufio.NewScanner(file)
	if scanner.Scan() {
		if line := scanner.Text(); strings.HasPrefix(line, "#!") {
			shell = line[2:]
		} else {
			script = append(script, line...)
			script = append(script, '\n')
		}
	}
	parsed := false
	for scanner.Scan() {
		line := scanner.Text()
		if !parsed && strings.HasPrefix(line, prefix) {
			args = append(args, strings.Fields(line[len(prefix):])...)
			continue
		}
		if len(strings.TrimSpace(line)) > 0 && !strings.HasPrefix(line, "#") {
			parsed = true
		}
		script = append(script, line...)
		script = append(script, '\n')
	}
	if err := scanner.Err(); err != nil {
		return JobScript{}, err
	}
	return JobScript{
		Shell:  shell,
		Args:   args,
		Script: script,
	}, nil
}

// The scheduler accepts short and long spellings for most options.
// Register both with the same golang flag.
type gnuFlag struct {
	Short string
	Long  string
	Value interface{}
}

// Map key is the same as the Long option.
type gnuFlags map[string]gnuFlag

func lookupGnuArg(name string, spec gnuFlags) (string, error) {
	for k, v := range spec {
		if name == k || name == v.Short {
			return k, nil
		}
	}
	return "", errors.New("sbatch: unable to parse arguments")
}

func setFlagString(flags *flag.FlagSet, short, long, value, usage string) *string {
	flagVar := flags.String(short, value, usage)
	flags.StringVar(flagVar, long, value, usage)
	return flagVar
}

func setFlagInt(flags *flag.FlagSet, short, long string, value int, usage string) *int {
	flagVar := flags.Int(short, value, usage)
	flags.IntVar(flagVar, long, value, usage)
	return flagVar
}

func parseSBatchArgs(args []string) (gnuFlags, *flag.FlagSet, error) {
	flags := flag.NewFlagSet("sbatch", flag.ContinueOnError)

	options := make(gnuFlags)
	registerString := func(short, long, usage string) {
		var v *string
		if len(short) > 0 {
			v = setFlagString(flags, short, long, "", usage)
		} else {
			v = flags.String(long, "", usage)
		}
		options[long] = gnuFlag{Short: short, Long: long, Value: v}
	}
	registerInt := func(short, long, usage string) {
		var v *int
		if len(short) > 0 {
			v = setFlagInt(flags, short, long, 0, usage)
		} else {
			v = flags.Int(long, 0, usage)
		}
		options[long] = gnuFlag{Short: short, Long: long, Value: v}
	}

	registerString("J", "job-name", "Specify a name for the job allocation")
	registerString("A", "account", "Charge resources used by this job to specified account")
	registerString("p", "partition", "Request a specific partition for the resource allocation")
	registerString("t", "time", "time limit hours:minutes:seconds")
	registerInt("N", "nodes", "Number of nodes to be allocated to this job")
	registerInt("n", "ntasks", "Maximum number of tasks launched within the allocation")
	registerString("G", "gpus", "Specify the total number of GPUs required for the job")
	registerString("", "mem", "Real memory required per node, suffix [K|M|G|T]")
	registerString("o", "output", "File for the batch script's standard output")
	registerString("D", "chdir", "working directory")
	registerString("", "gres", "Comma delimited list of generic consumable resources")
	registerInt("c", "cpus-per-task", "Number of processors per task")
	registerString("", "mail-type", "Notify user by email when certain event types occur")
	registerString("", "mail-user", "User to receive email notification")
	registerString("C", "constraint", "Required node features")
	registerString("e", "error", "File for the batch script's standard error")
	registerString("", "qos", "Quality of service for the job")

	if err := flags.Parse(false, args); err != nil {
		return nil, nil, err
	}
	return options, flags, nil
}

// Options the manifest can carry. Everything else parses but is reported
// back to the caller as unsupported.
func sBatchSupportedArgs() map[string]struct{} {
	return map[string]struct{}{
		"job-name":  {},
		"account":   {},
		"partition": {},
		"time":      {},
		"nodes":     {},
		"ntasks":    {},
		"gpus":      {},
		"mem":       {},
		"output":    {},
	}
}

// ParseDirectives parses sbatch-style directive arguments into a manifest.
// The second return value lists set options the manifest cannot carry.
func ParseDirectives(args []string) (Manifest, []string, error) {
	options, flags, err := parseSBatchArgs(args)
	if err != nil {
		return Manifest{}, nil, err
	}
	jobSpec := make(map[string]interface{})
	flags.Visit(func(f *flag.Flag) {
		key, err := lookupGnuArg(f.Name, options)
		if err != nil {
			return
		}
		jobSpec[key] = f.Value.(flag.Getter).Get()
	})
	var unsupported []string
	for k := range jobSpec {
		if _, ok := sBatchSupportedArgs()[k]; !ok {
			unsupported = append(unsupported, k)
			delete(jobSpec, k)
		}
	}

	var m Manifest
	if val, ok := jobSpec["job-name"]; ok {
		m.JobName = val.(string)
	}
	if val, ok := jobSpec["account"]; ok {
		m.Account = val.(string)
	}
	if val, ok := jobSpec["partition"]; ok {
		m.Partition = val.(string)
	}
	if val, ok := jobSpec["time"]; ok {
		m.Time = val.(string)
	}
	if val, ok := jobSpec["nodes"]; ok {
		m.Nodes = val.(int)
	}
	if val, ok := jobSpec["ntasks"]; ok {
		m.Ntasks = val.(int)
	}
	if val, ok := jobSpec["gpus"]; ok {
		if gpus, err := decodeGpusReq(val.(string)); err != nil {
			return Manifest{}, unsupported, err
		} else {
			m.Gpus = gpus
		}
	}
	if val, ok := jobSpec["mem"]; ok {
		m.Mem = val.(string)
	}
	if val, ok := jobSpec["output"]; ok {
		m.Output = val.(string)
	}
	return m, unsupported, nil
}

// decodeGpusReq accepts "count" or "type:count" GPU requests.
func decodeGpusReq(req string) (int, error) {
	split := strings.Split(req, ":")
	count, err := strconv.Atoi(split[len(split)-1])
	if err != nil || count < 0 {
		return 0, errors.New("invalid gpus request: " + req)
	}
	return count, nil
}
