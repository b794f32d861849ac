package metrics

import (
	"math"
	"testing"
)

func TestCollectorAggregate(t *testing.T) {
	c := NewCollector()
	labels := map[string]string{"stage": "smesh"}
	for _, v := range []float64{2, 4, 6, 8, 10} {
		c.Record("stage_duration_seconds", v, labels)
	}

	agg := c.Aggregate("stage_duration_seconds", labels)
	if agg == nil {
		t.Fatal("expected aggregation, got nil")
	}
	if agg.Count != 5 {
		t.Errorf("expected count 5, got %d", agg.Count)
	}
	if agg.Sum != 30 {
		t.Errorf("expected sum 30, got %g", agg.Sum)
	}
	if agg.Min != 2 || agg.Max != 10 {
		t.Errorf("expected min 2 max 10, got %g %g", agg.Min, agg.Max)
	}
	if agg.Mean != 6 {
		t.Errorf("expected mean 6, got %g", agg.Mean)
	}
	if agg.P50 != 6 {
		t.Errorf("expected p50 6, got %g", agg.P50)
	}
	if math.Abs(agg.P95-9.6) > 1e-9 {
		t.Errorf("expected p95 9.6, got %g", agg.P95)
	}
}

func TestCollectorAggregateMissing(t *testing.T) {
	c := NewCollector()
	if agg := c.Aggregate("nope", nil); agg != nil {
		t.Errorf("expected nil aggregation, got %+v", agg)
	}
}

func TestCollectorLabelIsolation(t *testing.T) {
	c := NewCollector()
	c.Record("oracle_evaluations", 3, map[string]string{"oracle": "binvox"})
	c.Record("oracle_evaluations", 7, map[string]string{"oracle": "foamreconstr"})

	if got := c.Values("oracle_evaluations", map[string]string{"oracle": "binvox"}); len(got) != 1 || got[0] != 3 {
		t.Errorf("unexpected binvox samples: %v", got)
	}
	if got := c.Values("oracle_evaluations", map[string]string{"oracle": "foamreconstr"}); len(got) != 1 || got[0] != 7 {
		t.Errorf("unexpected foamreconstr samples: %v", got)
	}
}

func TestCollectorValuesReturnsCopy(t *testing.T) {
	c := NewCollector()
	c.Record("m", 1, nil)

	vals := c.Values("m", nil)
	vals[0] = 99

	if got := c.Values("m", nil); got[0] != 1 {
		t.Errorf("mutation leaked into collector: %v", got)
	}
}

func TestCollectorNames(t *testing.T) {
	c := NewCollector()
	c.Record("b", 1, nil)
	c.Record("a", 1, nil)

	names := c.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("unexpected names: %v", names)
	}
}
