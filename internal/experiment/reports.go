package experiment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/PacmanReinforcementLearning/internal/experience"
)

// ReportSink receives the result of every successful experiment.
type ReportSink interface {
	Record(ctx context.Context, experimentID, kind string, result any) error
}

// PersistenceSink writes reports through a persistence layer, one record per
// experiment.
type PersistenceSink struct {
	layer experience.PersistenceLayer
}

// NewPersistenceSink wraps layer.
func NewPersistenceSink(layer experience.PersistenceLayer) *PersistenceSink {
	return &PersistenceSink{layer: layer}
}

// Record implements ReportSink.
func (s *PersistenceSink) Record(ctx context.Context, experimentID, kind string, result any) error {
	body, err := ToStruct(result)
	if err != nil {
		return err
	}
	record, err := structpb.NewStruct(map[string]interface{}{
		experience.ExperimentIDField: experimentID,
		"kind":                       kind,
		"recordedAt":                 time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	record.Fields["result"] = structpb.NewStructValue(body)
	return s.layer.Write(ctx, []*structpb.Struct{record})
}

// Reports returns up to limit stored reports of an experiment.
func (s *PersistenceSink) Reports(ctx context.Context, experimentID string, limit int) ([]*structpb.Struct, error) {
	return s.layer.Read(ctx, experimentID, limit)
}

// ToStruct converts a JSON-tagged value into a protobuf Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to convert %T to struct: %w", v, err)
	}
	return out, nil
}

// FromStruct decodes a protobuf Struct into a JSON-tagged value. Fields
// missing from s keep their current values in v.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return nil
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode struct: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode into %T: %w", v, err)
	}
	return nil
}
