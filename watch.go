package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"albatch.io/core"
	"albatch.io/logger"
)

type WatchCommand struct {
	Help bool   `short:"h" long:"help" description:"Show this help message"`
	File string `short:"f" long:"file" description:"follow this file instead of the job's output file"`
	Args struct {
		Ref string `positional-arg-name:"submission" description:"scheduler job id or submission id prefix"`
	} `positional-args:"true"`
}

var watchCommand WatchCommand

func (x *WatchCommand) Execute(args []string) error {
	if x.Help {
		return createHelpErr()
	}
	path := x.File
	if len(path) == 0 {
		if len(x.Args.Ref) == 0 {
			return errors.New("watch: need a submission reference or --file")
		}
		ledger, err := core.ReadLedger()
		if err != nil {
			return errors.New("watch: " + err.Error())
		}
		submission, err := core.FindSubmission(ledger, x.Args.Ref)
		if err != nil {
			return errors.New("watch: " + err.Error())
		}
		path = submission.OutputFile()
	}
	logger.DebugPrintf("watch: following %s", path)
	if err := followFile(path); err != nil {
		return errors.New("watch: " + err.Error())
	}
	return nil
}

// followFile streams path to stdout as it grows, waiting for the file to
// appear when the job has not started writing yet. Runs until interrupted.
func followFile(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	// Watch the directory: the scheduler creates the file after the job
	// starts, and rename-style updates would drop a file-level watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var offset int64
	if n, err := dumpFrom(path, offset); err == nil {
		offset = n
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if n, err := dumpFrom(path, offset); err == nil {
				offset = n
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return werr
		}
	}
}

// dumpFrom copies the file's content from offset to stdout and returns the
// new offset.
func dumpFrom(path string, offset int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return offset, err
	}
	defer f.Close()
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, err
	}
	n, err := io.Copy(os.Stdout, f)
	if err != nil {
		return offset, err
	}
	return offset + n, nil
}

func init() {
	parser.AddCommand("watch",
		"Follow a job's output file",
		"Stream the scheduler output file of a tracked submission as it grows",
		&watchCommand)
}
