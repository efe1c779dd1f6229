package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRoundTrip(t *testing.T) {
	setConfigDir(t)

	ledger, err := ReadLedger()
	require.NoError(t, err)
	assert.Empty(t, ledger)

	first, err := AppendSubmission(Submission{
		JobID:      101,
		JobName:    "al-train",
		Experiment: "minds14-wav2vec2",
		Profile:    "default",
		WorkDir:    "/scratch/run",
		State:      "PENDING",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.SubmittedAt.IsZero())

	second, err := AppendSubmission(Submission{JobID: 102, JobName: "al-train", State: "PENDING"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	ledger, err = ReadLedger()
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, 101, ledger[0].JobID)
	assert.Equal(t, 102, ledger[1].JobID)
}

func TestFindSubmission(t *testing.T) {
	setConfigDir(t)

	first, err := AppendSubmission(Submission{JobID: 101, State: "PENDING"})
	require.NoError(t, err)
	_, err = AppendSubmission(Submission{JobID: 102, State: "PENDING"})
	require.NoError(t, err)

	ledger, err := ReadLedger()
	require.NoError(t, err)

	byJob, err := FindSubmission(ledger, "101")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byJob.ID)

	byID, err := FindSubmission(ledger, first.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, 101, byID.JobID)

	_, err = FindSubmission(ledger, "999")
	assert.Error(t, err)

	// every ledger id matches the empty prefix
	_, err = FindSubmission(ledger, "")
	assert.Error(t, err)
}

func TestUpdateSubmissionState(t *testing.T) {
	setConfigDir(t)

	s, err := AppendSubmission(Submission{JobID: 101, State: "PENDING"})
	require.NoError(t, err)

	require.NoError(t, UpdateSubmissionState(s.ID, "CANCELLED"))
	ledger, err := ReadLedger()
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "CANCELLED", ledger[0].State)

	assert.Error(t, UpdateSubmissionState("no-such-id", "FAILED"))
}

func TestRemoveSubmission(t *testing.T) {
	setConfigDir(t)

	first, err := AppendSubmission(Submission{JobID: 101, State: "PENDING"})
	require.NoError(t, err)
	second, err := AppendSubmission(Submission{JobID: 102, State: "PENDING"})
	require.NoError(t, err)

	require.NoError(t, RemoveSubmission(first.ID))
	ledger, err := ReadLedger()
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, second.ID, ledger[0].ID)

	assert.Error(t, RemoveSubmission(first.ID))
}

func TestSubmissionOutputFile(t *testing.T) {
	s := Submission{JobID: 4242, WorkDir: "/scratch/run"}
	assert.Equal(t, filepath.Join("/scratch/run", "slurm-4242.out"), s.OutputFile())
}
