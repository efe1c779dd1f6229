package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"albatch.io/core"
	"albatch.io/logger"
)

type StatusCommand struct {
	Help  bool `short:"h" long:"help" description:"Show this help message"`
	Prune bool `long:"prune" description:"drop records of jobs the scheduler no longer knows"`
}

var statusCommand StatusCommand

func (x *StatusCommand) Execute(args []string) error {
	if x.Help {
		return createHelpErr()
	}
	ledger, err := core.ReadLedger()
	if err != nil {
		return errors.New("status: " + err.Error())
	}
	if len(ledger) == 0 {
		return errNoSubmissions
	}

	profile, err := core.GetProfile("")
	if err != nil {
		return errors.New("status: " + err.Error())
	}
	client := newClient(profile)

	var ids []int
	for _, s := range ledger {
		ids = append(ids, s.JobID)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	entries, err := client.Queue(ctx, ids)
	if err != nil {
		return errors.New("status: " + err.Error())
	}

	if x.Prune {
		var kept core.Ledger
		for _, s := range ledger {
			if _, ok := entries[s.JobID]; ok {
				kept = append(kept, s)
				continue
			}
			logger.InfoPrintf("status: pruning %s (job %d)", shortID(s.ID), s.JobID)
		}
		if len(kept) < len(ledger) {
			if err := core.WriteLedger(kept); err != nil {
				return errors.New("status: " + err.Error())
			}
			fmt.Printf("Pruned %d finished submissions\n", len(ledger)-len(kept))
		}
		ledger = kept
		if len(ledger) == 0 {
			return nil
		}
	}

	table := [][]string{
		{"ID", "JOBID", "NAME", "EXPERIMENT", "ST", "TIME", "SUBMITTED"},
	}
	for _, s := range ledger {
		state := s.State
		elapsed := ""
		if entry, ok := entries[s.JobID]; ok {
			state = entry.State
			elapsed = entry.Time
		}
		table = append(table, []string{
			shortID(s.ID),
			strconv.Itoa(s.JobID),
			s.JobName,
			s.Experiment,
			state,
			elapsed,
			s.SubmittedAt.Format(time.RFC3339),
		})
	}
	core.PrintTable(table)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	parser.AddCommand("status",
		"Show tracked submissions",
		"List recorded submissions with live scheduler state where available",
		&statusCommand)
}
