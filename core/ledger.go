package core

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const AlbatchLedgerFilename = "submissions.json"

// Submission is one ledger record: a job handed to the scheduler.
type Submission struct {
	ID          string    `json:"id"`
	JobID       int       `json:"job_id"`
	JobName     string    `json:"job_name"`
	Experiment  string    `json:"experiment,omitempty"`
	Profile     string    `json:"profile"`
	Script      string    `json:"script"`
	WorkDir     string    `json:"work_dir"`
	State       string    `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// OutputFile is where the scheduler writes the job's stdout/stderr.
func (s Submission) OutputFile() string {
	return filepath.Join(s.WorkDir, "slurm-"+strconv.Itoa(s.JobID)+".out")
}

type Ledger []Submission

func ledgerPath() string {
	return filepath.Join(ConfigDir(), AlbatchLedgerFilename)
}

func ReadLedger() (Ledger, error) {
	bytes, err := ioutil.ReadFile(ledgerPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Ledger{}, nil
		}
		return nil, err
	}
	var ledger Ledger
	if err := json.Unmarshal(bytes, &ledger); err != nil {
		return nil, errors.New("invalid submission ledger")
	}
	return ledger, nil
}

func WriteLedger(ledger Ledger) error {
	if err := os.MkdirAll(ConfigDir(), 0744); err != nil {
		return err
	}
	file, err := json.MarshalIndent(ledger, "", "	")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(ledgerPath(), file, AlbatchConfigFilePerms)
}

// AppendSubmission records a new submission and returns it with its
// generated id.
func AppendSubmission(s Submission) (Submission, error) {
	ledger, err := ReadLedger()
	if err != nil {
		return Submission{}, err
	}
	s.ID = uuid.NewString()
	s.SubmittedAt = time.Now()
	ledger = append(ledger, s)
	if err := WriteLedger(ledger); err != nil {
		return Submission{}, err
	}
	return s, nil
}

// FindSubmission resolves ref against the ledger: a scheduler job id or a
// ledger id prefix.
func FindSubmission(ledger Ledger, ref string) (Submission, error) {
	if jobID, err := strconv.Atoi(ref); err == nil {
		for _, s := range ledger {
			if s.JobID == jobID {
				return s, nil
			}
		}
	}
	var matches []Submission
	for _, s := range ledger {
		if strings.HasPrefix(s.ID, ref) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Submission{}, errors.New("no submission matches " + ref)
	default:
		return Submission{}, errors.New("ambiguous submission reference: " + ref)
	}
}

// RemoveSubmission drops one record from the ledger.
func RemoveSubmission(id string) error {
	ledger, err := ReadLedger()
	if err != nil {
		return err
	}
	for i := range ledger {
		if ledger[i].ID == id {
			return WriteLedger(append(ledger[:i], ledger[i+1:]...))
		}
	}
	return errors.New("no submission with id " + id)
}

// UpdateSubmissionState rewrites one record's state.
func UpdateSubmissionState(id, state string) error {
	ledger, err := ReadLedger()
	if err != nil {
		return err
	}
	for i := range ledger {
		if ledger[i].ID == id {
			ledger[i].State = state
			return WriteLedger(ledger)
		}
	}
	return errors.New("no submission with id " + id)
}
