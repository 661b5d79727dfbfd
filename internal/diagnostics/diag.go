// Package diagnostics explains configurations that are valid but likely
// not what the installer wanted.
package diagnostics

import (
	"fmt"

	"github.com/coreman2200/funtimes-lightstrip/internal/config"
	"github.com/coreman2200/funtimes-lightstrip/internal/encoder"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// maxTickMs is the slowest poll that still sees both CLK edges of a
// quickly spun detent.
const maxTickMs = 5

// Check inspects cfg. It assumes cfg already passed Validate.
func Check(cfg *config.Config) []Diagnostic {
	var out []Diagnostic

	if budget := cfg.Power.BudgetmA(); budget > 0 {
		full := float64(cfg.Strip.Length) * 3 * cfg.Power.ChanmA
		if full > budget {
			out = append(out, Diagnostic{
				Severity: Info,
				Code:     "POWER_LIMITED",
				Summary:  "full white exceeds the supply budget; bright frames will be dimmed",
				Evidence: map[string]any{"full_white_ma": full, "budget_ma": budget},
			})
		}
	}
	if cfg.Strip.Brightness == 0 {
		out = append(out, Diagnostic{
			Severity:       Warn,
			Code:           "BRIGHTNESS_ZERO",
			Summary:        "strip.brightness is 0; nothing will light",
			SuggestedFixes: []string{"set strip.brightness between 1 and 255"},
		})
	}
	if cfg.TickMs > maxTickMs {
		out = append(out, Diagnostic{
			Severity:     Warn,
			Code:         "TICK_SLOW",
			Summary:      fmt.Sprintf("tick_ms %d may miss encoder detents", cfg.TickMs),
			LikelyCauses: []string{"tick raised to save CPU"},
			SuggestedFixes: []string{
				fmt.Sprintf("keep tick_ms at or below %d", maxTickMs),
			},
		})
	}
	if cfg.Link.Mode == "ws" && cfg.Link.Addr == "" {
		out = append(out, Diagnostic{
			Severity:       Warn,
			Code:           "LINK_UNREACHABLE",
			Summary:        "link.mode is ws but link.addr is empty; the controller can never link",
			SuggestedFixes: []string{"set link.addr, e.g. \":8080\""},
		})
	}
	if cfg.Link.Mode == "never" {
		out = append(out, Diagnostic{
			Severity: Info,
			Code:     "LINK_DISABLED",
			Summary:  "link.mode is never; button presses stay in manual mode",
		})
	}

	out = append(out, checkCases(cfg)...)
	return out
}

func checkCases(cfg *config.Config) []Diagnostic {
	table, err := cfg.CaseTable()
	if err != nil {
		return []Diagnostic{{Severity: Err, Code: "CASE_TABLE", Summary: err.Error()}}
	}
	var out []Diagnostic
	bound := map[int]bool{}
	for _, cc := range cfg.Cases {
		bound[cc.Case] = true
	}
	reachable := map[int]bool{}
	for _, c := range table.Cases() {
		reachable[int(c)] = true
		if c != encoder.DefaultCase && !bound[int(c)] {
			out = append(out, Diagnostic{
				Severity: Info,
				Code:     "CASE_UNBOUND",
				Summary:  fmt.Sprintf("case %d has no effect; it shows %s", c, cfg.Default.Effect),
				Evidence: map[string]any{"case": int(c)},
			})
		}
	}
	for _, cc := range cfg.Cases {
		if !reachable[cc.Case] {
			out = append(out, Diagnostic{
				Severity:     Warn,
				Code:         "CASE_UNREACHABLE",
				Summary:      fmt.Sprintf("case %d (%s) is bound but no encoder range selects it", cc.Case, cc.Effect),
				LikelyCauses: []string{"encoder.ranges edited without updating cases"},
				Evidence:     map[string]any{"case": cc.Case},
			})
		}
	}
	return out
}

// Worst returns the highest severity present, or "" for none.
func Worst(ds []Diagnostic) Severity {
	rank := map[Severity]int{Info: 1, Warn: 2, Err: 3}
	var w Severity
	for _, d := range ds {
		if rank[d.Severity] > rank[w] {
			w = d.Severity
		}
	}
	return w
}
