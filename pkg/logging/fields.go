package logging

import (
	"time"

	"github.com/google/uuid"
)

// Generic field constructors.

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Latency(d time.Duration) Field {
	return Field{Key: "latency", Value: d.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Domain field constructors used across the engine.

func RunID(id uuid.UUID) Field {
	return Field{Key: "run_id", Value: id.String()}
}

func BusID(id string) Field {
	return Field{Key: "bus_id", Value: id}
}

func BranchID(id string) Field {
	return Field{Key: "branch_id", Value: id}
}

func Iterations(n int) Field {
	return Field{Key: "iterations", Value: n}
}

func MismatchPU(m float64) Field {
	return Field{Key: "mismatch_pu", Value: m}
}

func FaultKA(amps float64) Field {
	return Field{Key: "fault_ka", Value: amps / 1000}
}

func MarginPercent(key string, m float64) Field {
	return Field{Key: key, Value: m}
}
