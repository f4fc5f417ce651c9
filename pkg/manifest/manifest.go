// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

// Package manifest implements the snapshot manifest store (C10): a
// versioned JSON record of every preset and its snapshot history, read,
// normalized, updated, and written exactly once per run.
package manifest

import (
	"encoding/json"
	"os"
	"sort"

	snaperrors "github.com/cmux/snapctl/pkg/errors"
)

// CurrentSchemaVersion is rewritten into every manifest on load and save.
const CurrentSchemaVersion = 1

// DefaultPath is where the manifest is committed within a repository
// checkout, mirroring the original fixed location under packages/shared.
const DefaultPath = "packages/shared/src/morph-snapshots.json"

// VersionEntry records one captured snapshot of a preset.
type VersionEntry struct {
	Version    int    `json:"version"`
	SnapshotID string `json:"snapshotId"`
	CapturedAt string `json:"capturedAt"`
}

// PresetEntry records a preset's display fields and its snapshot history.
type PresetEntry struct {
	PresetID    string         `json:"presetId"`
	Label       string         `json:"label"`
	CPU         string         `json:"cpu"`
	Memory      string         `json:"memory"`
	Disk        string         `json:"disk"`
	Description string         `json:"description,omitempty"`
	Versions    []VersionEntry `json:"versions"`
}

// Manifest is the top-level persisted record.
type Manifest struct {
	SchemaVersion int           `json:"schemaVersion"`
	UpdatedAt     string        `json:"updatedAt"`
	Presets       []PresetEntry `json:"presets"`
}

// Normalize coerces a manifest (possibly decoded from untrusted/stale JSON)
// into one matching every invariant: each preset's versions sorted
// ascending by version, schemaVersion forced to the current constant.
// Unlike the source this ports, Go's json.Unmarshal already drops
// unparseable fields to zero values, so normalize here only needs to
// enforce sort order and the schema version.
func Normalize(m Manifest) Manifest {
	out := Manifest{
		SchemaVersion: CurrentSchemaVersion,
		UpdatedAt:     m.UpdatedAt,
		Presets:       make([]PresetEntry, 0, len(m.Presets)),
	}
	for _, p := range m.Presets {
		versions := make([]VersionEntry, len(p.Versions))
		copy(versions, p.Versions)
		sort.Slice(versions, func(i, j int) bool { return versions[i].Version < versions[j].Version })
		p.Versions = versions
		out.Presets = append(out.Presets, p)
	}
	return out
}

// Load reads the manifest at path, returning an empty manifest at the
// current schema version if the file does not exist. warn is called (and
// only called) when the on-disk schema version differs from the current
// constant, mirroring the source's load-time console warning without this
// package depending on a console type.
func Load(path string, warn func(schemaVersion int)) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Manifest{
			SchemaVersion: CurrentSchemaVersion,
			Presets:       []PresetEntry{},
		}, nil
	}
	if err != nil {
		return Manifest{}, snaperrors.Wrap(snaperrors.ErrCodeInternal, "failed to read snapshot manifest", err)
	}

	var decoded Manifest
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Manifest{}, snaperrors.Wrap(snaperrors.ErrCodeInternal, "failed to parse snapshot manifest", err)
	}

	if decoded.SchemaVersion != CurrentSchemaVersion && warn != nil {
		warn(decoded.SchemaVersion)
	}
	return Normalize(decoded), nil
}

// Write normalizes m and writes it to path as indented JSON, preserving
// field declaration order (schemaVersion, updatedAt, presets) rather than
// sorting keys, matching json.dumps(..., sort_keys=False).
func Write(path string, m Manifest) error {
	normalized := Normalize(m)
	data, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return snaperrors.Wrap(snaperrors.ErrCodeInternal, "failed to encode snapshot manifest", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return snaperrors.Wrap(snaperrors.ErrCodeInternal, "failed to write snapshot manifest", err)
	}
	return nil
}

// PresetDisplay carries the label/cpu/memory/disk fields a preset entry
// takes on, refreshed from the plan on every update.
type PresetDisplay struct {
	PresetID string
	Label    string
	CPU      string
	Memory   string
	Disk     string
}

// UpdateWithSnapshot appends a new version entry for display.PresetID,
// creating the preset entry if absent, refreshing its display fields
// either way, and returns the updated manifest. The new version number is
// one greater than the preset's current maximum (starting at 1).
// updatedAt and capturedAt are passed in since this package never calls
// time.Now itself — all timestamps come from the caller.
func UpdateWithSnapshot(m Manifest, display PresetDisplay, snapshotID, capturedAt string) Manifest {
	updated := Normalize(m)

	idx := -1
	for i, p := range updated.Presets {
		if p.PresetID == display.PresetID {
			idx = i
			break
		}
	}

	if idx == -1 {
		updated.Presets = append(updated.Presets, PresetEntry{
			PresetID: display.PresetID,
			Label:    display.Label,
			CPU:      display.CPU,
			Memory:   display.Memory,
			Disk:     display.Disk,
			Versions: []VersionEntry{},
		})
		idx = len(updated.Presets) - 1
	} else {
		updated.Presets[idx].Label = display.Label
		updated.Presets[idx].CPU = display.CPU
		updated.Presets[idx].Memory = display.Memory
		updated.Presets[idx].Disk = display.Disk
	}

	nextVersion := 1
	for _, v := range updated.Presets[idx].Versions {
		if v.Version >= nextVersion {
			nextVersion = v.Version + 1
		}
	}

	updated.Presets[idx].Versions = append(updated.Presets[idx].Versions, VersionEntry{
		Version:    nextVersion,
		SnapshotID: snapshotID,
		CapturedAt: capturedAt,
	})
	sort.Slice(updated.Presets[idx].Versions, func(i, j int) bool {
		return updated.Presets[idx].Versions[i].Version < updated.Presets[idx].Versions[j].Version
	})

	updated.SchemaVersion = CurrentSchemaVersion
	updated.UpdatedAt = capturedAt
	return updated
}
