package mtlgen

import (
	"maps"
	"slices"
)

// enrich returns a copy of t with derived fields filled in:
//   - steps are numbered from 1 in list order
//   - nil lists become empty lists
//   - every rubric entry gets a levels map holding exactly RubricLabels
//   - blank sign-off fields get placeholders
//
// The input is not modified and enrich(enrich(t)) equals enrich(t).
func enrich(t *Task) *Task {
	out := t.clone()

	out.Meta.Tags = orEmpty(out.Meta.Tags)
	out.ToolsRequired = orEmpty(out.ToolsRequired)
	out.Prerequisites = orEmpty(out.Prerequisites)
	out.Environment.Models = orEmpty(out.Environment.Models)
	out.Environment.SWVersions = orEmpty(out.Environment.SWVersions)
	out.Environment.Connections = orEmpty(out.Environment.Connections)
	out.Steps = orEmpty(out.Steps)
	out.Confirmations = orEmpty(out.Confirmations)
	out.Teachback.Prompts = orEmpty(out.Teachback.Prompts)
	out.Teachback.Rubric = orEmpty(out.Teachback.Rubric)

	for i := range out.Steps {
		s := &out.Steps[i]
		s.Sequence = i + 1
		s.Tips = orEmpty(s.Tips)
		s.Warnings = orEmpty(s.Warnings)
	}

	for i := range out.Confirmations {
		out.Confirmations[i].Accept = orEmpty(out.Confirmations[i].Accept)
	}

	for i := range out.Teachback.Rubric {
		r := &out.Teachback.Rubric[i]
		r.Levels = orEmpty(r.Levels)
		r.LevelsMap = levelsMap(r.Levels, r.LevelsMap)
	}

	fillSignoff(&out.Signoff)
	return out
}

// levelsMap keys descriptions by label. Explicit levels win over an existing
// map; labels found in neither default to "". Unknown labels are dropped.
func levelsMap(levels []Level, existing map[string]string) map[string]string {
	byLabel := make(map[string]string, len(levels))
	for _, l := range levels {
		byLabel[l.Label] = l.Description
	}

	m := make(map[string]string, len(RubricLabels))
	for _, label := range RubricLabels {
		if desc, ok := byLabel[label]; ok {
			m[label] = desc
		} else {
			m[label] = existing[label]
		}
	}
	return m
}

func fillSignoff(s *Signoff) {
	if s.TraineeName == "" {
		s.TraineeName = SignoffNamePlaceholder
	}
	if s.TrainerName == "" {
		s.TrainerName = SignoffNamePlaceholder
	}
	if s.Date == "" {
		s.Date = SignoffDatePlaceholder
	}
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// clone returns a deep copy of t.
func (t *Task) clone() *Task {
	out := *t

	out.Meta.Tags = slices.Clone(t.Meta.Tags)
	out.ToolsRequired = slices.Clone(t.ToolsRequired)
	out.Prerequisites = slices.Clone(t.Prerequisites)
	out.Environment = Environment{
		Models:      slices.Clone(t.Environment.Models),
		SWVersions:  slices.Clone(t.Environment.SWVersions),
		Connections: slices.Clone(t.Environment.Connections),
	}

	out.Steps = slices.Clone(t.Steps)
	for i := range out.Steps {
		out.Steps[i].Tips = slices.Clone(out.Steps[i].Tips)
		out.Steps[i].Warnings = slices.Clone(out.Steps[i].Warnings)
	}

	out.Confirmations = slices.Clone(t.Confirmations)
	for i := range out.Confirmations {
		out.Confirmations[i].Accept = slices.Clone(out.Confirmations[i].Accept)
	}

	out.Teachback.Prompts = slices.Clone(t.Teachback.Prompts)
	out.Teachback.Rubric = slices.Clone(t.Teachback.Rubric)
	for i := range out.Teachback.Rubric {
		r := &out.Teachback.Rubric[i]
		r.Levels = slices.Clone(r.Levels)
		r.LevelsMap = maps.Clone(r.LevelsMap)
	}

	return &out
}
