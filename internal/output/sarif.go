package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/commitleak/internal/search"
)

// SARIFWriter outputs findings in SARIF v2.1.0 format.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *search.Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
	Properties          sarifProperties   `json:"properties"`
}

type sarifProperties struct {
	Commit  string `json:"commit,omitempty"`
	Author  string `json:"author,omitempty"`
	Keyword string `json:"keyword,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

func buildSARIF(report *search.Report) sarifLog {
	results := make([]sarifResult, 0, len(report.Findings))
	var rules []sarifRule
	seen := make(map[string]bool)

	for _, f := range report.Findings {
		for _, tester := range f.Testers {
			id := ruleID(tester)
			if seen[id] {
				continue
			}
			seen[id] = true
			rules = append(rules, sarifRule{
				ID:               id,
				Name:             "hardcoded-credential-" + tester,
				ShortDescription: sarifMessage{Text: fmt.Sprintf("Credential-like assignment in a %s file", tester)},
				DefaultConfig:    sarifDefaultConfig{Level: "error"},
			})
		}

		tester := "unknown"
		if len(f.Testers) > 0 {
			tester = f.Testers[0]
		}
		loc := sarifPhysicalLocation{ArtifactLocation: sarifArtifactLocation{URI: f.Path}}
		if f.Line > 0 {
			loc.Region = &sarifRegion{StartLine: f.Line}
		}
		results = append(results, sarifResult{
			RuleID:    ruleID(tester),
			Level:     "error",
			Message:   sarifMessage{Text: resultMessage(f)},
			Locations: []sarifLocation{{PhysicalLocation: loc}},
			PartialFingerprints: map[string]string{
				"commitleak/v1": f.ID,
			},
			Properties: sarifProperties{
				Commit:  f.Commit.SHA,
				Author:  f.Commit.Author.Email,
				Keyword: f.Keyword,
			},
		})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           "commitleak",
						Version:        report.Version,
						InformationURI: "https://github.com/dshills/commitleak",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

func ruleID(tester string) string {
	return "commitleak/" + tester
}

func resultMessage(f search.Finding) string {
	msg := fmt.Sprintf("Possible hardcoded credential committed in %s", shortSHA(f.Commit.SHA))
	if len(f.Candidates) > 0 {
		msg += ": " + strings.TrimSpace(f.Candidates[0])
	}
	return msg
}
