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

// Package walker drives a single pass over a coverage database,
// folding each record it reports into a covlens.TopTree. It owns the
// design-unit/subscope state machine and the block re-order buffer
// that a live database traversal needs but the tree and path-builder
// packages do not.
package walker

import (
	"context"
	"sort"

	"github.com/covlens/covlens/pkg/covlens"
	"github.com/covlens/covlens/pkg/covlens/pathbuilder"
)

// Reason identifies why the database is invoking a Callback.
type Reason int

const (
	ReasonInitDB Reason = iota
	ReasonDU
	ReasonScope
	ReasonEndScope
	ReasonCVBin
	ReasonEndDB
)

// Callback is one event reported by a Database during a walk. Record
// is only populated when Reason == ReasonCVBin.
type Callback struct {
	Reason Reason
	Record pathbuilder.Record
}

// Database is anything that can stream coverage records. emit is
// called once per event, in database order; a non-nil return from
// emit must abort the walk and propagate out of Walk.
type Database interface {
	Walk(ctx context.Context, emit func(Callback) error) error
}

// Walker applies the DU/subscope state machine and block re-ordering
// to a Database's event stream, inserting hit counts into a TopTree.
// Vendor-A databases (three-key records) go through BuilderA and
// TopTree.RunTriple, updating every tree the record's keys populate.
// Vendor-B databases (single-key records) go through BuilderB and
// TopTree.RunSingle, restricted by a SelectMask the walker derives
// from underDU so a design-unit occurrence is counted once (INST_ONCE)
// instead of once per instance.
type Walker struct {
	tree       *covlens.TopTree
	refinement bool
	vendorB    bool
	builder    pathbuilder.BuilderA
	builderB   pathbuilder.BuilderB

	underDU       bool
	subscopeDepth int

	blockBuffer []pathbuilder.Record

	prevCvgKey string
	cvgRepeat  int
}

// New returns a Walker that inserts hits into tree via the vendor-A
// triple-key path (BuilderA + TopTree.RunTriple). refinement selects
// the block re-indexing behavior of §4.4: when true, buffered blocks
// are re-emitted with a sequential 1-based index instead of their
// original source line.
func New(tree *covlens.TopTree, refinement bool) *Walker {
	return &Walker{tree: tree, refinement: refinement}
}

// NewSingle returns a Walker that inserts hits into tree via the
// vendor-B single-key path (BuilderB + TopTree.RunSingle), restricting
// each lookup to a SelectMask computed from the walker's underDU state
// so that DU-scoped records dedup under the INST_ONCE convention
// instead of matching per instance.
func NewSingle(tree *covlens.TopTree, refinement bool) *Walker {
	return &Walker{tree: tree, refinement: refinement, vendorB: true}
}

// Run drives db to completion, applying every reported event to w's
// tree. It returns the first error either db.Walk or an insertion
// step produces.
func (w *Walker) Run(ctx context.Context, db Database) error {
	return db.Walk(ctx, func(cb Callback) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch cb.Reason {
		case ReasonInitDB:
			w.underDU = false
			w.subscopeDepth = 0
			return w.flushBlocks()
		case ReasonDU:
			if err := w.flushBlocks(); err != nil {
				return err
			}
			w.underDU = true
			w.subscopeDepth = 0
		case ReasonScope:
			if err := w.flushBlocks(); err != nil {
				return err
			}
			if w.underDU {
				w.subscopeDepth++
			}
		case ReasonEndScope:
			if err := w.flushBlocks(); err != nil {
				return err
			}
			if w.underDU {
				if w.subscopeDepth > 0 {
					w.subscopeDepth--
				} else {
					w.underDU = false
				}
			}
		case ReasonCVBin:
			return w.handleCVBin(cb.Record)
		case ReasonEndDB:
			return w.flushBlocks()
		}
		return nil
	})
}

func (w *Walker) handleCVBin(r pathbuilder.Record) error {
	switch r.Kind {
	case pathbuilder.KindStatement, pathbuilder.KindBranch, pathbuilder.KindBlock:
		if w.refinement {
			w.blockBuffer = append(w.blockBuffer, r)
			return nil
		}
		return w.emit(r)

	case pathbuilder.KindCovergroupBin:
		key := r.Covergroup + "/" + r.Coverpoint + "/" + r.Bin
		if key == w.prevCvgKey {
			w.cvgRepeat++
		} else {
			w.cvgRepeat = 0
		}
		w.prevCvgKey = key
		r.RepeatIndex = w.cvgRepeat
		return w.emit(r)

	default:
		return w.emit(r)
	}
}

// flushBlocks re-orders and inserts any buffered block/branch/statement
// records, per the §4.4 rule: compute a running minimum of source
// lines in arrival order, stable-sort by that minimum, then (in
// refinement mode) renumber 1-based in the sorted order; otherwise
// emit with each record's original source line untouched.
func (w *Walker) flushBlocks() error {
	if len(w.blockBuffer) == 0 {
		return nil
	}
	n := len(w.blockBuffer)
	minLine := make([]int64, n)
	minLine[0] = int64(w.blockBuffer[0].SourceLine)
	for i := 1; i < n; i++ {
		line := int64(w.blockBuffer[i].SourceLine)
		if line > minLine[i-1] {
			minLine[i] = minLine[i-1]
		} else {
			minLine[i] = line
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return minLine[order[a]] < minLine[order[b]]
	})

	for rank, idx := range order {
		rec := w.blockBuffer[idx]
		if w.refinement {
			rec.SourceLine = uint32(rank + 1)
		}
		if err := w.emit(rec); err != nil {
			return err
		}
	}
	w.blockBuffer = w.blockBuffer[:0]
	return nil
}

func (w *Walker) emit(r pathbuilder.Record) error {
	if w.vendorB {
		key, info, err := w.builderB.Key(r)
		if err != nil {
			return err
		}
		w.tree.RunSingle(key, r.HitCount, info, w.selectMask())
		return nil
	}

	keys, info, err := w.builder.Keys(r)
	if err != nil {
		return err
	}
	w.tree.RunTriple(keys, r.HitCount, info)
	return nil
}

// selectMask implements the §4.3 rule: restrict RunSingle to the
// instance tree outside a design unit, or to the design-unit tree
// while under one, so a DU occurrence subsumes all its instances
// (INST_ONCE) instead of being counted once per instance.
func (w *Walker) selectMask() covlens.SelectMask {
	if w.underDU {
		return covlens.SelectDesignUnit
	}
	return covlens.SelectInstance
}
