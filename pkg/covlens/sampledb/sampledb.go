// Copyright 2015 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sampledb implements a walker.Database backed by a JSON
// fixture instead of a live vendor coverage database library (no such
// binding exists in the Go ecosystem). Each fixture is a flat JSON
// array of events in database-traversal order, one entry per
// walker.Reason the real library would report through its callback.
package sampledb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/covlens/covlens/pkg/covlens/pathbuilder"
	"github.com/covlens/covlens/pkg/covlens/walker"
)

// Event is the on-disk shape of one traversal step.
type Event struct {
	Reason string  `json:"reason"`
	Record *Record `json:"record,omitempty"`
}

// Record is the on-disk shape of a pathbuilder.Record, named the way a
// vendor database would label its own fields rather than mirroring
// pathbuilder's Go identifiers verbatim.
type Record struct {
	Kind string `json:"kind"`

	InstanceScope   string `json:"instance_scope,omitempty"`
	DesignUnitScope string `json:"design_unit_scope,omitempty"`
	FileScope       string `json:"file_scope,omitempty"`

	Name       string `json:"name,omitempty"`
	SourceLine uint32 `json:"source_line,omitempty"`
	HitCount   int64  `json:"hit_count,omitempty"`

	FSMName   string `json:"fsm_name,omitempty"`
	StateName string `json:"state_name,omitempty"`
	FromState string `json:"from_state,omitempty"`
	ToState   string `json:"to_state,omitempty"`

	Covergroup string `json:"covergroup,omitempty"`
	Coverpoint string `json:"coverpoint,omitempty"`
	Bin        string `json:"bin,omitempty"`

	Scope     string `json:"scope,omitempty"`
	Assertion string `json:"assertion,omitempty"`
}

// Database is a walker.Database over a fixed, in-memory event list.
type Database struct {
	events []Event
}

// Load decodes a JSON event array from r into a Database.
func Load(r io.Reader) (*Database, error) {
	var events []Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("sampledb: %w", err)
	}
	return &Database{events: events}, nil
}

// Walk implements walker.Database.
func (d *Database) Walk(ctx context.Context, emit func(walker.Callback) error) error {
	for _, e := range d.events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		reason, err := parseReason(e.Reason)
		if err != nil {
			return err
		}
		cb := walker.Callback{Reason: reason}
		if e.Record != nil {
			rec, err := toRecord(*e.Record)
			if err != nil {
				return err
			}
			cb.Record = rec
		}
		if err := emit(cb); err != nil {
			return err
		}
	}
	return nil
}

func parseReason(s string) (walker.Reason, error) {
	switch s {
	case "init_db":
		return walker.ReasonInitDB, nil
	case "du":
		return walker.ReasonDU, nil
	case "scope":
		return walker.ReasonScope, nil
	case "end_scope":
		return walker.ReasonEndScope, nil
	case "cv_bin":
		return walker.ReasonCVBin, nil
	case "end_db":
		return walker.ReasonEndDB, nil
	default:
		return 0, fmt.Errorf("sampledb: unknown reason %q", s)
	}
}

func parseKind(s string) (pathbuilder.RecordKind, error) {
	switch s {
	case "statement":
		return pathbuilder.KindStatement, nil
	case "branch":
		return pathbuilder.KindBranch, nil
	case "block":
		return pathbuilder.KindBlock, nil
	case "all_false_branch":
		return pathbuilder.KindAllFalseBranch, nil
	case "expression":
		return pathbuilder.KindExpression, nil
	case "condition":
		return pathbuilder.KindCondition, nil
	case "fsm_state":
		return pathbuilder.KindFSMState, nil
	case "fsm_transition":
		return pathbuilder.KindFSMTransition, nil
	case "covergroup_bin":
		return pathbuilder.KindCovergroupBin, nil
	case "assertion_bin":
		return pathbuilder.KindAssertionBin, nil
	default:
		return 0, fmt.Errorf("sampledb: unknown record kind %q", s)
	}
}

func toRecord(j Record) (pathbuilder.Record, error) {
	kind, err := parseKind(j.Kind)
	if err != nil {
		return pathbuilder.Record{}, err
	}
	return pathbuilder.Record{
		Kind:            kind,
		InstanceScope:   j.InstanceScope,
		DesignUnitScope: j.DesignUnitScope,
		FileScope:       j.FileScope,
		Name:            j.Name,
		SourceLine:      j.SourceLine,
		HitCount:        j.HitCount,
		FSMName:         j.FSMName,
		StateName:       j.StateName,
		FromState:       j.FromState,
		ToState:         j.ToState,
		Covergroup:      j.Covergroup,
		Coverpoint:      j.Coverpoint,
		Bin:             j.Bin,
		Scope:           j.Scope,
		Assertion:       j.Assertion,
	}, nil
}
