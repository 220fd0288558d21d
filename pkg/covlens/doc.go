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

// Package covlens implements the indexing-and-matching core of a
// coverage-check auditor: a NodeInfo leaf record, the ExclusionTree
// prefix tree over "/"-separated path tokens with typed-wildcard
// fallback, and TopTree, which routes insertions and lookups across
// the three scope-kind trees (source file, design unit, instance).
package covlens
