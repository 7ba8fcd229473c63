package gesture

import (
	"fmt"
	"math"

	"github.com/emoticon-ai/emoticon/internal/landmark"
)

// BodyPredicate reports whether a body-language pattern holds for a pose
// frame. Like face predicates, body predicates are pure.
type BodyPredicate func(*landmark.Pose) bool

// BodyRule pairs a body-language pattern name with its predicate.
type BodyRule struct {
	Name string
	When BodyPredicate
}

// BodyRuleSet is an immutable, ordered collection of body rules.
type BodyRuleSet struct {
	rules []BodyRule
}

// NewBodyRuleSet builds a body rule set, rejecting duplicate names.
func NewBodyRuleSet(rules []BodyRule) (*BodyRuleSet, error) {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if r.Name == "" || r.When == nil {
			return nil, fmt.Errorf("invalid body rule %q", r.Name)
		}
		if _, ok := seen[r.Name]; ok {
			return nil, fmt.Errorf("duplicate body rule name %q", r.Name)
		}
		seen[r.Name] = struct{}{}
	}

	copied := make([]BodyRule, len(rules))
	copy(copied, rules)
	return &BodyRuleSet{rules: copied}, nil
}

// Rules returns a copy of the registered body rules.
func (s *BodyRuleSet) Rules() []BodyRule {
	out := make([]BodyRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// BodyThresholds collects the constants used by the body rule set.
type BodyThresholds struct {
	WristCross   float64 // wrist-to-opposite-elbow proximity for crossed arms
	HipTouch     float64 // wrist-to-hip proximity for hands on hips
	ArmSpread    float64 // wrist beyond shoulder for open arms
	LeanDepth    float64 // nose z relative to hip midpoint for leaning
	StanceWide   float64 // ankle spread relative to hip spread
	StanceClosed float64
	FaceTouch    float64 // wrist-to-nose proximity for hand-to-face
}

// DefaultBodyThresholds returns the stock body-language sensitivity.
func DefaultBodyThresholds() BodyThresholds {
	return BodyThresholds{
		WristCross:   0.12,
		HipTouch:     0.10,
		ArmSpread:    0.15,
		LeanDepth:    0.15,
		StanceWide:   1.3,
		StanceClosed: 0.6,
		FaceTouch:    0.15,
	}
}

// DefaultBodyRules builds the stock body-language rule set.
func DefaultBodyRules(t BodyThresholds) *BodyRuleSet {
	pt := func(p *landmark.Pose, i int) landmark.Point3D { return p.Points[i] }

	planar := func(a, b landmark.Point3D) float64 {
		dx := a.X - b.X
		dy := a.Y - b.Y
		return math.Sqrt(dx*dx + dy*dy)
	}

	crossedArms := func(p *landmark.Pose) bool {
		lw := pt(p, landmark.PoseLeftWrist)
		rw := pt(p, landmark.PoseRightWrist)
		le := pt(p, landmark.PoseLeftElbow)
		re := pt(p, landmark.PoseRightElbow)
		return planar(lw, re) < t.WristCross && planar(rw, le) < t.WristCross
	}
	handsOnHips := func(p *landmark.Pose) bool {
		lw := pt(p, landmark.PoseLeftWrist)
		rw := pt(p, landmark.PoseRightWrist)
		lh := pt(p, landmark.PoseLeftHip)
		rh := pt(p, landmark.PoseRightHip)
		return planar(lw, lh) < t.HipTouch && planar(rw, rh) < t.HipTouch
	}
	openArms := func(p *landmark.Pose) bool {
		lw := pt(p, landmark.PoseLeftWrist)
		rw := pt(p, landmark.PoseRightWrist)
		ls := pt(p, landmark.PoseLeftShoulder)
		rs := pt(p, landmark.PoseRightShoulder)
		return lw.X < ls.X-t.ArmSpread && rw.X > rs.X+t.ArmSpread
	}
	leanForward := func(p *landmark.Pose) bool {
		nose := pt(p, landmark.PoseNose)
		hipZ := (pt(p, landmark.PoseLeftHip).Z + pt(p, landmark.PoseRightHip).Z) / 2
		return nose.Z < hipZ-t.LeanDepth
	}
	leanBack := func(p *landmark.Pose) bool {
		nose := pt(p, landmark.PoseNose)
		hipZ := (pt(p, landmark.PoseLeftHip).Z + pt(p, landmark.PoseRightHip).Z) / 2
		return nose.Z > hipZ+t.LeanDepth
	}
	handToFace := func(p *landmark.Pose) bool {
		nose := pt(p, landmark.PoseNose)
		lw := pt(p, landmark.PoseLeftWrist)
		rw := pt(p, landmark.PoseRightWrist)
		return planar(lw, nose) < t.FaceTouch || planar(rw, nose) < t.FaceTouch
	}
	wideStance := func(p *landmark.Pose) bool {
		ankles := math.Abs(pt(p, landmark.PoseLeftAnkle).X - pt(p, landmark.PoseRightAnkle).X)
		hips := math.Abs(pt(p, landmark.PoseLeftHip).X - pt(p, landmark.PoseRightHip).X)
		return hips > 0 && ankles/hips > t.StanceWide
	}
	closedStance := func(p *landmark.Pose) bool {
		ankles := math.Abs(pt(p, landmark.PoseLeftAnkle).X - pt(p, landmark.PoseRightAnkle).X)
		hips := math.Abs(pt(p, landmark.PoseLeftHip).X - pt(p, landmark.PoseRightHip).X)
		return hips > 0 && ankles/hips < t.StanceClosed
	}

	rules := []BodyRule{
		{"crossed arms", crossedArms},
		{"hands on hips", handsOnHips},
		{"open arms", openArms},
		{"leaning forward", leanForward},
		{"leaning back", leanBack},
		{"hand to face", handToFace},
		{"wide stance", wideStance},
		{"closed stance", closedStance},
		// Compounds, in the same AND-of-atoms style as the face set.
		{"defensive posture", func(p *landmark.Pose) bool {
			return crossedArms(p) && leanBack(p)
		}},
		{"confident stance", func(p *landmark.Pose) bool {
			return handsOnHips(p) && wideStance(p)
		}},
		{"engagement signal", func(p *landmark.Pose) bool {
			return leanForward(p) && openArms(p)
		}},
	}

	set, err := NewBodyRuleSet(rules)
	if err != nil {
		panic(err)
	}
	return set
}
