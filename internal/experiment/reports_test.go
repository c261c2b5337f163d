package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/config"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experience"
	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/testutil"
)

func TestFromStructKeepsDefaults(t *testing.T) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"grid":     "CliffGrid",
		"episodes": 7,
	})
	require.NoError(t, err)

	req := DefaultQLearningRequest(config.Get())
	require.NoError(t, FromStruct(s, &req))

	assert.Equal(t, "CliffGrid", req.Grid)
	assert.Equal(t, 7, req.Episodes)
	assert.Equal(t, config.Get().QLearning.Epsilon, req.Epsilon)
	assert.Equal(t, AgentQLearning, req.Agent)

	require.NoError(t, FromStruct(nil, &req))
	assert.Equal(t, 7, req.Episodes)
}

func TestFromStructRejectsWrongTypes(t *testing.T) {
	s, err := structpb.NewStruct(map[string]interface{}{"episodes": "many"})
	require.NoError(t, err)

	req := DefaultQLearningRequest(config.Get())
	assert.Error(t, FromStruct(s, &req))
}

func TestToStruct(t *testing.T) {
	s, err := ToStruct(GameSummary{Wins: 2, Losses: 1, AvgScore: 312.5})
	require.NoError(t, err)

	assert.Equal(t, 2.0, s.Fields["wins"].GetNumberValue())
	assert.Equal(t, 312.5, s.Fields["avgScore"].GetNumberValue())

	_, err = ToStruct([]int{1, 2})
	assert.Error(t, err, "a JSON array is not a struct")
}

func TestPersistenceSinkStoresReports(t *testing.T) {
	layer, err := experience.NewPersistenceLayer(experience.PersistenceConfig{
		Type:    experience.PersistenceTypeFile,
		BaseDir: t.TempDir(),
	}, testutil.NopLogger())
	require.NoError(t, err)
	defer layer.Close()

	sink := NewPersistenceSink(layer)
	r := NewRunner(Options{Reports: sink, Logger: testutil.NopLogger()})

	res, err := r.ValueIteration(context.Background(), viRequest())
	require.NoError(t, err)
	_, err = r.ValueIteration(context.Background(), viRequest())
	require.NoError(t, err)

	records, err := sink.Reports(context.Background(), res.ExperimentID, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, res.ExperimentID, rec.Fields[experience.ExperimentIDField].GetStringValue())
	assert.Equal(t, KindValueIteration, rec.Fields["kind"].GetStringValue())
	assert.NotEmpty(t, rec.Fields["recordedAt"].GetStringValue())

	var stored ValueIterationResult
	require.NoError(t, FromStruct(rec.Fields["result"].GetStructValue(), &stored))
	assert.Equal(t, res.Policy, stored.Policy)
	assert.InDelta(t, res.Values["(0, 0)"], stored.Values["(0, 0)"], 1e-12)
	assert.Equal(t, res.GridData.Walls, stored.GridData.Walls)
}

type failingSink struct{ calls int }

func (f *failingSink) Record(context.Context, string, string, any) error {
	f.calls++
	return errors.New("disk full")
}

func TestReportFailureDoesNotFailRun(t *testing.T) {
	sink := &failingSink{}
	r := NewRunner(Options{Reports: sink, Logger: testutil.NopLogger()})

	_, err := r.ValueIteration(context.Background(), viRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, sink.calls)

	req := viRequest()
	req.MaxMagnitude = 1e-6
	req.LivingReward = 1
	_, err = r.ValueIteration(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 1, sink.calls, "failed runs are not reported")
}
