// Package controller - This file contains the decision hierarchy that explains a camouflage verdict.
package controller

import (
	"fmt"
	"strings"

	"github.com/nvr-ai/go-camoxai/common"
	"github.com/nvr-ai/go-camoxai/images"
	"github.com/nvr-ai/go-camoxai/models/postprocess"
)

// DefaultMaxNarrated caps the number of ranked findings spelled out in the message.
const DefaultMaxNarrated = 5

// Level is a state of the decision hierarchy.
type Level int

const (
	// Level1 checks whether an object is present at all.
	Level1 Level = iota + 1
	// Level2 localizes the weak camouflage areas.
	Level2
	// Level3 attributes the weak areas to object parts.
	Level3
	// Terminal ends the run.
	Terminal
)

func (l Level) String() string {
	switch l {
	case Level1:
		return "level1"
	case Level2:
		return "level2"
	case Level3:
		return "level3"
	case Terminal:
		return "terminal"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Verdict is the terminal outcome of a run, one per way the hierarchy can end.
type Verdict int

const (
	// VerdictNoObject means the binary map was empty and the run stopped at Level1.
	VerdictNoObject Verdict = iota
	// VerdictNoParts means attribution found no camouflaged object parts.
	VerdictNoParts
	// VerdictSingleFinding means attribution consolidated into exactly one finding.
	VerdictSingleFinding
	// VerdictRankedFindings means attribution produced several ranked findings.
	VerdictRankedFindings
)

func (v Verdict) String() string {
	switch v {
	case VerdictNoObject:
		return "no_object"
	case VerdictNoParts:
		return "no_parts"
	case VerdictSingleFinding:
		return "single_finding"
	case VerdictRankedFindings:
		return "ranked_findings"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Consolidator reduces attributed part detections to ranked findings.
type Consolidator interface {
	Consolidate(detections []postprocess.RawDetection) ([]postprocess.Finding, error)
}

// Input holds the model outputs for one image.
type Input struct {
	// Name of the image, used in the message header.
	Name string
	// Image dimensions in pixels.
	Width  int
	Height int
	// Binary segmentation map, Width x Height.
	Binary images.Grid
	// Weak camouflage region map, Width x Height. Only read when an object is present.
	WeakRegions images.Grid
	// Part detections in pixel coordinates, not yet attributed to weak areas.
	Candidates []postprocess.RawDetection
}

// Outcome is the result of one decision run.
type Outcome struct {
	Name      string
	Sentences []string
	// Last level that ran: Level1, Level2 or Level3.
	Level Level
	// Levels in the order they ran.
	Trace         []Level
	Verdict       Verdict
	ObjectPresent bool
	// Level 2 boxes. Nil when the run stopped at Level1.
	WeakAreas []images.Box
	// Candidates that overlapped a weak area, one per (box, candidate) pair.
	Attributed []postprocess.RawDetection
	// Consolidated findings ranked by confidence, including the ones past the narration cap.
	Findings []postprocess.Finding
}

// Message joins the sentences into the explanation text.
func (o *Outcome) Message() string {
	return strings.Join(o.Sentences, "\n")
}

// Ran reports whether the given level executed.
func (o *Outcome) Ran(level Level) bool {
	for _, l := range o.Trace {
		if l == level {
			return true
		}
	}
	return false
}

func (o *Outcome) say(format string, args ...any) {
	o.Sentences = append(o.Sentences, fmt.Sprintf(format, args...))
}

// Hierarchy walks an image through presence, localization and attribution.
//
// A Hierarchy holds no per-run state and can be shared by concurrent callers as long as its
// extractor and consolidator are safe for concurrent use.
type Hierarchy struct {
	Extractor    images.BoxExtractor
	Consolidator Consolidator
	// Number of ranked findings narrated; the rest are still returned in Outcome.Findings.
	MaxNarrated int
}

// NewHierarchy returns a Hierarchy narrating at most DefaultMaxNarrated findings.
func NewHierarchy(extractor images.BoxExtractor, consolidator Consolidator) *Hierarchy {
	return &Hierarchy{
		Extractor:    extractor,
		Consolidator: consolidator,
		MaxNarrated:  DefaultMaxNarrated,
	}
}

// Decide runs the hierarchy for one image.
//
// Arguments:
//   - in: The model outputs for the image.
//
// Returns:
//   - *Outcome: The explanation and every artifact produced on the way.
//   - error: An error if the input is malformed or a collaborator fails. An empty binary map,
//     zero weak areas and zero attributed parts are valid outcomes, not errors.
func (h *Hierarchy) Decide(in Input) (*Outcome, error) {
	if h.Extractor == nil || h.Consolidator == nil {
		return nil, common.InvalidConfiguration("decision hierarchy needs an extractor and a consolidator")
	}
	if in.Width <= 0 || in.Height <= 0 {
		return nil, common.InvalidInput("image %q has size %dx%d", in.Name, in.Width, in.Height)
	}
	if err := in.Binary.SameSize("binary map", in.Width, in.Height); err != nil {
		return nil, err
	}

	r := &run{h: h, in: in, out: &Outcome{Name: in.Name}}
	if in.Name != "" {
		r.out.say("Decision for %s:", in.Name)
	}

	var err error
	for state := Level1; state != Terminal; {
		r.out.Trace = append(r.out.Trace, state)
		r.out.Level = state

		switch state {
		case Level1:
			state = r.presence()
		case Level2:
			state, err = r.localize()
		case Level3:
			state, err = r.attribute()
		default:
			err = common.InvalidInput("unknown decision state %s", state)
		}
		if err != nil {
			return nil, err
		}
	}

	return r.out, nil
}

// run carries the state of a single Decide call.
type run struct {
	h   *Hierarchy
	in  Input
	out *Outcome
}

func (r *run) presence() Level {
	if !r.in.Binary.Any() {
		r.out.say("No object present.")
		r.out.Verdict = VerdictNoObject
		return Terminal
	}
	r.out.ObjectPresent = true
	r.out.say("Object present.")
	return Level2
}

func (r *run) localize() (Level, error) {
	if err := r.in.WeakRegions.SameSize("weak region map", r.in.Width, r.in.Height); err != nil {
		return Terminal, err
	}

	boxes, err := r.h.Extractor.Extract(r.in.WeakRegions)
	if err != nil {
		return Terminal, err
	}
	if boxes == nil {
		boxes = []images.Box{}
	}

	r.out.WeakAreas = boxes
	r.out.say("Identified %d weak camouflaged area(s).", len(boxes))
	return Level3, nil
}

func (r *run) attribute() (Level, error) {
	r.out.Attributed = postprocess.AttributeToBoxes(r.out.WeakAreas, r.in.Candidates)

	findings, err := r.h.Consolidator.Consolidate(r.out.Attributed)
	if err != nil {
		return Terminal, err
	}
	r.out.Findings = findings

	switch len(findings) {
	case 0:
		r.out.Verdict = VerdictNoParts
		r.out.say("No camouflaged object parts detected.")
	case 1:
		r.out.Verdict = VerdictSingleFinding
		r.out.say("Detected %s.", findings[0])
	default:
		r.out.Verdict = VerdictRankedFindings
		r.out.say("Detected %d camouflaged findings, ranked by confidence:", len(findings))
		limit := r.h.MaxNarrated
		if limit <= 0 {
			limit = DefaultMaxNarrated
		}
		for i, f := range findings {
			if i == limit {
				break
			}
			r.out.say("%d. %s", i+1, f)
		}
	}
	return Terminal, nil
}
