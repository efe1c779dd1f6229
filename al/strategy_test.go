package al

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuerier(t *testing.T) {
	for _, name := range Queriers() {
		q, err := ParseQuerier(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, q.Name)
	}

	q, err := ParseQuerier("")
	require.NoError(t, err)
	assert.Equal(t, QuerierRandom, q.Name)

	_, err = ParseQuerier("leverage")
	assert.Error(t, err)
}

func TestParseStopperNull(t *testing.T) {
	for _, spec := range []string{"", "null", "continuous"} {
		s, err := ParseStopper(spec)
		require.NoError(t, err, spec)
		assert.Equal(t, StopperNull, s.Flag())
		assert.Empty(t, s.ExtraArgs())
	}

	_, err := ParseStopper("null:3")
	assert.Error(t, err)
}

func TestParseStopperStabilizing(t *testing.T) {
	s, err := ParseStopper("stabilizing_predictions")
	require.NoError(t, err)
	assert.Equal(t, "stabilizing_predictions", s.Flag())
	assert.Equal(t,
		[]string{"--stopper_windows", "3", "--stopper_threshold", "0.99"},
		s.ExtraArgs())

	s, err = ParseStopper("stabilizing_predictions:5:0.95")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"--stopper_windows", "5", "--stopper_threshold", "0.95"},
		s.ExtraArgs())
}

func TestParseStopperChangingConfidence(t *testing.T) {
	s, err := ParseStopper("changing_confidence:4:N")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"--stopper_windows", "4", "--stopper_mode", "N"},
		s.ExtraArgs())

	s, err = ParseStopper("changing_confidence")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"--stopper_windows", "3", "--stopper_mode", "D"},
		s.ExtraArgs())

	_, err = ParseStopper("changing_confidence:4:X")
	assert.Error(t, err)
}

func TestParseStopperThresholdOnly(t *testing.T) {
	for _, name := range []string{"max_confidence", "min_error", "overall_uncertainty"} {
		s, err := ParseStopper(name + ":0.9")
		require.NoError(t, err, name)
		assert.Equal(t, []string{"--stopper_threshold", "0.9"}, s.ExtraArgs(), name)
	}

	_, err := ParseStopper("max_confidence:1.5")
	assert.Error(t, err)
	_, err = ParseStopper("min_error:0")
	assert.Error(t, err)
}

func TestParseStopperClassificationChange(t *testing.T) {
	s, err := ParseStopper("classification_change:7")
	require.NoError(t, err)
	assert.Equal(t, []string{"--stopper_windows", "7"}, s.ExtraArgs())

	_, err = ParseStopper("classification_change:0")
	assert.Error(t, err)
	_, err = ParseStopper("classification_change:few")
	assert.Error(t, err)
}

func TestParseStopperUnknown(t *testing.T) {
	_, err := ParseStopper("sometimes")
	assert.Error(t, err)
}

func TestStopperString(t *testing.T) {
	s, err := ParseStopper("stabilizing_predictions:5:0.95")
	require.NoError(t, err)
	assert.Equal(t, "stabilizing_predictions:5:0.95", s.String())

	s, err = ParseStopper("continuous")
	require.NoError(t, err)
	assert.Equal(t, "null", s.String())
}
