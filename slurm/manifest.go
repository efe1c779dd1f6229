// Package slurm renders and parses SLURM batch scripts and wraps the local
// scheduler binaries.
package slurm

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Manifest is the scheduler resource request block declared at the top of a
// batch script.
type Manifest struct {
	JobName   string
	Account   string
	Partition string
	Time      string
	Nodes     int
	Ntasks    int
	Gpus      int
	Mem       string
	Output    string
}

// DefaultManifest carries the resource request the tool was built around:
// one node, eight tasks, four GPUs, 32G of memory.
func DefaultManifest() Manifest {
	return Manifest{
		JobName: "al-train",
		Time:    "24:00:00",
		Nodes:   1,
		Ntasks:  8,
		Gpus:    4,
		Mem:     "32G",
	}
}

var timeRe = regexp.MustCompile(
	`^([0-9]+|[0-9]+:[0-9]{2}|[0-9]+:[0-9]{2}:[0-9]{2}|[0-9]+-[0-9]+|[0-9]+-[0-9]+:[0-9]{2}|[0-9]+-[0-9]+:[0-9]{2}:[0-9]{2})$`)

// ValidateTime accepts the scheduler's time-limit forms: minutes,
// minutes:seconds, hours:minutes:seconds, days-hours, days-hours:minutes and
// days-hours:minutes:seconds.
func ValidateTime(req string) error {
	if !timeRe.MatchString(req) {
		return errors.New("invalid time limit: " + req)
	}
	return nil
}

// DecodeMem converts a memory request with an optional [K|M|G|T] suffix to
// whole gigabytes. Bare numbers are megabytes.
func DecodeMem(req string) (mem int, err error) {
	re := regexp.MustCompile("^[0-9]+")
	te := regexp.MustCompile("[KMGT]$")
	match := re.FindString(req)
	if len(match) == 0 || te.ReplaceAllString(req[len(match):], "") != "" {
		return 0, errors.New("invalid mem request: " + req)
	}
	base, perr := strconv.ParseInt(match, 10, 64)
	if perr != nil {
		return 0, errors.New("invalid mem request: " + req)
	}
	bytes := float64(base) * 1024 * 1024
	switch te.FindString(req) {
	case "K":
		bytes = float64(base) * 1024
	case "G":
		bytes = float64(base) * 1024 * 1024 * 1024
	case "T":
		bytes = float64(base) * 1024 * 1024 * 1024 * 1024
	}
	return int(math.Ceil(bytes / (1024 * 1024 * 1024))), nil
}

// Validate rejects manifests the scheduler would bounce.
func (m Manifest) Validate() error {
	if len(m.JobName) == 0 {
		return errors.New("manifest: job name required")
	}
	if m.Nodes < 1 {
		return errors.New("manifest: nodes must be positive")
	}
	if m.Ntasks < 1 {
		return errors.New("manifest: ntasks must be positive")
	}
	if m.Gpus < 0 {
		return errors.New("manifest: negative gpu count")
	}
	if len(m.Time) > 0 {
		if err := ValidateTime(m.Time); err != nil {
			return errors.New("manifest: " + err.Error())
		}
	}
	if len(m.Mem) > 0 {
		if _, err := DecodeMem(m.Mem); err != nil {
			return errors.New("manifest: " + err.Error())
		}
	}
	return nil
}

// Directives renders the #SBATCH block. Values pass through unchanged;
// empty optional fields are omitted.
func (m Manifest) Directives() []string {
	var lines []string
	add := func(key, value string) {
		if len(value) > 0 {
			lines = append(lines, "#SBATCH --"+key+"="+value)
		}
	}
	add("job-name", m.JobName)
	add("account", m.Account)
	add("partition", m.Partition)
	add("time", m.Time)
	add("nodes", strconv.Itoa(m.Nodes))
	add("ntasks", strconv.Itoa(m.Ntasks))
	if m.Gpus > 0 {
		add("gpus", strconv.Itoa(m.Gpus))
	}
	add("mem", m.Mem)
	add("output", m.Output)
	return lines
}

// Merge overlays non-zero fields of o.
func (m Manifest) Merge(o Manifest) Manifest {
	if len(o.JobName) > 0 {
		m.JobName = o.JobName
	}
	if len(o.Account) > 0 {
		m.Account = o.Account
	}
	if len(o.Partition) > 0 {
		m.Partition = o.Partition
	}
	if len(o.Time) > 0 {
		m.Time = o.Time
	}
	if o.Nodes > 0 {
		m.Nodes = o.Nodes
	}
	if o.Ntasks > 0 {
		m.Ntasks = o.Ntasks
	}
	if o.Gpus > 0 {
		m.Gpus = o.Gpus
	}
	if len(o.Mem) > 0 {
		m.Mem = o.Mem
	}
	if len(o.Output) > 0 {
		m.Output = o.Output
	}
	return m
}

// Script is a complete batch script: manifest, activation preamble, and one
// launcher invocation.
type Script struct {
	Manifest Manifest
	Preamble []string
	Command  []string
}

// Render produces the job script. The command is emitted with one flag per
// continuation line to keep long training argument vectors readable.
func (s Script) Render() []byte {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	for _, line := range s.Manifest.Directives() {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	for _, line := range s.Preamble {
		if len(line) > 0 {
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(renderCommand(s.Command))
	return []byte(b.String())
}

func renderCommand(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(argv[0])
	for _, arg := range argv[1:] {
		if strings.HasPrefix(arg, "--") {
			b.WriteString(" \\\n    ")
		} else {
			b.WriteString(" ")
		}
		b.WriteString(shellQuote(arg))
	}
	b.WriteString("\n")
	return b.String()
}

var shellSafe = regexp.MustCompile(`^[A-Za-z0-9@%_\-+=:,./]+$`)

func shellQuote(arg string) string {
	if shellSafe.MatchString(arg) {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

// Summary renders the manifest as key/value rows for table output.
func (m Manifest) Summary() [][]string {
	rows := [][]string{
		{"job-name", m.JobName},
		{"account", m.Account},
		{"partition", m.Partition},
		{"time", m.Time},
		{"nodes", strconv.Itoa(m.Nodes)},
		{"ntasks", strconv.Itoa(m.Ntasks)},
		{"gpus", strconv.Itoa(m.Gpus)},
		{"mem", m.Mem},
		{"output", m.Output},
	}
	out := rows[:0]
	for _, row := range rows {
		if len(row[1]) > 0 && row[1] != "0" {
			out = append(out, row)
		}
	}
	return out
}
