package logging

import (
	"time"
)

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Strings(key string, values []string) Field {
	return Field{Key: key, Value: values}
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

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

func Component(name string) Field {
	return String("component", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

// NodeKey identifies a diagram node.
func NodeKey(key string) Field {
	return String("node_key", key)
}

// LinkKey identifies a diagram link.
func LinkKey(key string) Field {
	return String("link_key", key)
}

// Label is a node's display label.
func Label(label string) Field {
	return String("label", label)
}

// Tx names the transaction that produced a log line.
func Tx(name string) Field {
	return String("tx", name)
}

// RunID correlates every line of one run preparation.
func RunID(id string) Field {
	return String("run_id", id)
}

// Project names a stored project document.
func Project(name string) Field {
	return String("project", name)
}
