package main

import (
	"encoding/json"
	"fmt"
	"os"

	"hypertune/internal/strategy"
	hyperapi "hypertune/pkg/hypertune"
)

func loadRunRequestFromConfig(path string) (hyperapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return hyperapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return hyperapi.RunRequest{}, err
	}

	req := defaultRunRequest()
	if v, ok := asString(raw["learner"]); ok {
		req.Learner = v
	}
	if v, ok := asString(raw["strategy"]); ok {
		req.Strategy = v
	}
	if v, ok := asInt(raw["iterations"]); ok {
		req.Iterations = v
	}
	if v, ok := asInt(raw["folds"]); ok {
		req.Folds = v
	}
	if v, ok := asInt(raw["repeats"]); ok {
		req.Repeats = v
	}
	if v, ok := asFloat64(raw["holdout"]); ok {
		req.Holdout = v
	}
	if v, ok := asBool(raw["train_best"]); ok {
		req.TrainBest = v
	}
	if v, ok := asString(raw["accel"]); ok {
		req.Accel = v
	}
	if v, ok := asString(raw["inner_accel"]); ok {
		req.InnerAccel = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["data_points"]); ok {
		req.DataPoints = v
	}
	if v, ok := asFloat64(raw["data_noise"]); ok {
		req.DataNoise = v
	}
	if names, ok := raw["measures"].([]any); ok {
		req.Measures = req.Measures[:0]
		for _, name := range names {
			if v, ok := asString(name); ok {
				req.Measures = append(req.Measures, v)
			}
		}
	}
	if ranges, ok := raw["ranges"].([]any); ok {
		parsed, err := parseRanges(ranges)
		if err != nil {
			return hyperapi.RunRequest{}, err
		}
		req.Ranges = parsed
	}
	return req, nil
}

func parseRanges(raw []any) ([]strategy.Param, error) {
	out := make([]strategy.Param, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("range entry %d is not an object", i)
		}
		var p strategy.Param
		if v, ok := asString(m["name"]); ok {
			p.Name = v
		}
		if p.Name == "" {
			return nil, fmt.Errorf("range entry %d has no name", i)
		}
		if v, ok := asFloat64(m["min"]); ok {
			p.Min = v
		}
		if v, ok := asFloat64(m["max"]); ok {
			p.Max = v
		}
		if v, ok := asFloat64(m["step"]); ok {
			p.Step = v
		}
		if values, ok := m["values"].([]any); ok {
			for _, value := range values {
				if v, ok := asFloat64(value); ok {
					p.Values = append(p.Values, v)
				}
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
