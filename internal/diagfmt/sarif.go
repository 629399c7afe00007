package diagfmt

import (
	"encoding/json"
	"io"

	"capycop/internal/diag"
	"capycop/internal/source"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string                `json:"name"`
	Version        string                `json:"version,omitempty"`
	InformationURI string                `json:"informationUri,omitempty"`
	Rules          []sarifReportingDescr `json:"rules,omitempty"`
}

type sarifReportingDescr struct {
	ID                   string          `json:"id"`
	ShortDescription     *sarifMessage   `json:"shortDescription,omitempty"`
	DefaultConfiguration *sarifRuleLevel `json:"defaultConfiguration,omitempty"`
}

type sarifRuleLevel struct {
	Level string `json:"level"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex *int            `json:"ruleIndex,omitempty"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifact      `json:"artifactLocation"`
	Replacements     []sarifReplacement `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion   `json:"deletedRegion"`
	InsertedContent *sarifMessage `json:"insertedContent,omitempty"`
}

// sarifLevel maps severities onto SARIF levels; conventions are notes.
func sarifLevel(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0).
// Пути всегда относительные, как ожидают code scanning сервисы.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	ruleIndex := make(map[string]int, len(meta.Rules))
	descrs := make([]sarifReportingDescr, 0, len(meta.Rules))
	for i, r := range meta.Rules {
		ruleIndex[r.Name] = i
		descr := sarifReportingDescr{ID: r.Name}
		if r.Description != "" {
			descr.ShortDescription = &sarifMessage{Text: r.Description}
		}
		if r.Severity != "" {
			descr.DefaultConfiguration = &sarifRuleLevel{Level: r.Severity}
		}
		descrs = append(descrs, descr)
	}

	results := make([]sarifResult, 0, bag.Len())
	for _, d := range bag.Items() {
		id := d.Rule
		if id == "" {
			id = d.Code.ID()
		}
		res := sarifResult{
			RuleID:  id,
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysical{
					ArtifactLocation: sarifArtifact{URI: formatPath(fs.Get(d.Primary.File), fs, PathModeRelative)},
					Region:           sarifRegionOf(fs, d.Primary),
				},
			}},
		}
		if idx, ok := ruleIndex[d.Rule]; ok {
			res.RuleIndex = &idx
		}
		for _, f := range d.Fixes {
			res.Fixes = append(res.Fixes, sarifFixOf(fs, f))
		}
		results = append(results, res)
	}

	log := sarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           meta.ToolName,
				Version:        meta.ToolVersion,
				InformationURI: meta.InformationURI,
				Rules:          descrs,
			}},
			Invocations: []sarifInvocation{{
				Arguments:           meta.InvocationArgs,
				ExecutionSuccessful: !bag.HasErrors(),
			}},
			Results: results,
		}},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}

func sarifRegionOf(fs *source.FileSet, sp source.Span) sarifRegion {
	start, end := fs.Resolve(sp)
	return sarifRegion{
		StartLine:   start.Line,
		StartColumn: start.Col,
		EndLine:     end.Line,
		EndColumn:   end.Col,
		ByteOffset:  sp.Start,
		ByteLength:  sp.Len(),
	}
}

func sarifFixOf(fs *source.FileSet, f diag.Fix) sarifFix {
	out := sarifFix{Description: sarifMessage{Text: f.Title}}
	byFile := make(map[source.FileID]int)
	for _, e := range f.Edits {
		idx, ok := byFile[e.Span.File]
		if !ok {
			idx = len(out.ArtifactChanges)
			byFile[e.Span.File] = idx
			out.ArtifactChanges = append(out.ArtifactChanges, sarifArtifactChange{
				ArtifactLocation: sarifArtifact{URI: formatPath(fs.Get(e.Span.File), fs, PathModeRelative)},
			})
		}
		rep := sarifReplacement{DeletedRegion: sarifRegionOf(fs, e.Span)}
		if e.NewText != "" {
			rep.InsertedContent = &sarifMessage{Text: e.NewText}
		}
		out.ArtifactChanges[idx].Replacements = append(out.ArtifactChanges[idx].Replacements, rep)
	}
	return out
}
