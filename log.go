// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package masim

import (
	"fmt"
	"io"
	"slices"
)

// Kind classifies an event log record.
type Kind uint8

const (
	KindStart Kind = iota
	KindSuccess
	KindFailure
	KindRebalance
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	case KindRebalance:
		return "rebalance"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// A Record is one entry in the simulation event log. Agent is the executing
// agent for start, success and failure records; From and To are set only for
// rebalance records.
type Record struct {
	Time   float64
	Kind   Kind
	Module string
	Agent  string
	From   string
	To     string
}

func (r Record) String() string {
	if r.Kind == KindRebalance {
		return fmt.Sprintf("t=%.3f %s %s %s -> %s", r.Time, r.Kind, r.Module, r.From, r.To)
	}
	return fmt.Sprintf("t=%.3f %s %s on %s", r.Time, r.Kind, r.Module, r.Agent)
}

// EventLog is the ordered record of everything observable that happened
// during a run. It is appended to exclusively by the engine and by policy
// moves invoked from completion events, in event execution order.
type EventLog struct {
	records []Record
}

func (l *EventLog) append(r Record) {
	l.records = append(l.records, r)
}

// Records returns a copy of the log in append order.
func (l *EventLog) Records() []Record {
	return slices.Clone(l.records)
}

// Len returns the number of records in the log.
func (l *EventLog) Len() int {
	return len(l.records)
}

// Count returns the number of records of the given kind.
func (l *EventLog) Count(k Kind) int {
	n := 0
	for _, r := range l.records {
		if r.Kind == k {
			n++
		}
	}
	return n
}

// WriteTo renders the log as one line per record. The output is stable for a
// fixed seed and configuration, which makes it suitable for golden-file
// comparison.
func (l *EventLog) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, r := range l.records {
		n, err := fmt.Fprintln(w, r)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
