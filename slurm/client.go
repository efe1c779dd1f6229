package slurm

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Client shells out to the local scheduler binaries. Paths default to the
// bare command names so PATH resolution applies.
type Client struct {
	Sbatch  string
	Squeue  string
	Scancel string
}

func NewClient(sbatch, squeue, scancel string) *Client {
	c := &Client{Sbatch: sbatch, Squeue: squeue, Scancel: scancel}
	if len(c.Sbatch) == 0 {
		c.Sbatch = "sbatch"
	}
	if len(c.Squeue) == 0 {
		c.Squeue = "squeue"
	}
	if len(c.Scancel) == 0 {
		c.Scancel = "scancel"
	}
	return c
}

var submitRe = regexp.MustCompile(`Submitted batch job ([0-9]+)`)

func parseSubmitOutput(out string) (int, error) {
	match := submitRe.FindStringSubmatch(out)
	if match == nil {
		return 0, errors.New("sbatch: unexpected output: " + strings.TrimSpace(out))
	}
	id, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, errors.New("sbatch: unexpected output: " + strings.TrimSpace(out))
	}
	return id, nil
}

// Submit feeds the script to sbatch on stdin and returns the job id.
func (c *Client) Submit(ctx context.Context, script []byte) (int, error) {
	cmd := exec.CommandContext(ctx, c.Sbatch)
	cmd.Stdin = bytes.NewReader(script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, errors.New("sbatch: " + strings.TrimSpace(string(out)) + ": " + err.Error())
	}
	return parseSubmitOutput(string(out))
}

// QueueEntry is one row of squeue output for a tracked job.
type QueueEntry struct {
	JobID int
	State string
	Time  string
	Node  string
}

const squeueFormat = "%A|%T|%M|%R"

func parseQueueOutput(out string) map[int]QueueEntry {
	entries := make(map[int]QueueEntry)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(strings.TrimSpace(line), "|")
		if len(fields) != 4 {
			continue
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		entries[id] = QueueEntry{
			JobID: id,
			State: fields[1],
			Time:  fields[2],
			Node:  fields[3],
		}
	}
	return entries
}

// Queue reports live scheduler state for the given job ids. Jobs the
// scheduler no longer knows are absent from the result.
func (c *Client) Queue(ctx context.Context, ids []int) (map[int]QueueEntry, error) {
	if len(ids) == 0 {
		return map[int]QueueEntry{}, nil
	}
	var jobList []string
	for _, id := range ids {
		jobList = append(jobList, strconv.Itoa(id))
	}
	cmd := exec.CommandContext(ctx, c.Squeue,
		"--noheader",
		"--jobs="+strings.Join(jobList, ","),
		"-o", squeueFormat)
	out, err := cmd.Output()
	if err != nil {
		// squeue exits nonzero when every listed job is gone
		return map[int]QueueEntry{}, nil
	}
	return parseQueueOutput(string(out)), nil
}

// Cancel asks the scheduler to stop a job.
func (c *Client) Cancel(ctx context.Context, id int) error {
	cmd := exec.CommandContext(ctx, c.Scancel, strconv.Itoa(id))
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.New("scancel: " + strings.TrimSpace(string(out)) + ": " + err.Error())
	}
	return nil
}
