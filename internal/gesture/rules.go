// Package gesture classifies landmark frames into named micro-expression
// categories and decides which detections are worth announcing downstream.
package gesture

import (
	"fmt"
	"math"

	"github.com/emoticon-ai/emoticon/internal/landmark"
)

// Predicate reports whether a single gesture holds for a face frame.
// Predicates must be pure functions of the frame: no hidden state, no I/O.
type Predicate func(*landmark.Face) bool

// Rule pairs a gesture name, unique within its set, with its predicate.
type Rule struct {
	Name string
	When Predicate
}

// RuleSet is an immutable, ordered collection of rules registered at
// startup. Evaluation order determines nothing observable; the output of
// evaluation is the set of true rule names.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet builds a rule set, rejecting duplicate names.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule with empty name")
		}
		if r.When == nil {
			return nil, fmt.Errorf("rule %q has no predicate", r.Name)
		}
		if _, ok := seen[r.Name]; ok {
			return nil, fmt.Errorf("duplicate rule name %q", r.Name)
		}
		seen[r.Name] = struct{}{}
	}

	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &RuleSet{rules: copied}, nil
}

// Rules returns a copy of the registered rules in registration order.
func (s *RuleSet) Rules() []Rule {
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of registered rules.
func (s *RuleSet) Len() int {
	return len(s.rules)
}

// allOf composes already-defined predicates into a conjunction. Compound
// rules go through here rather than re-deriving geometry.
func allOf(preds ...Predicate) Predicate {
	return func(f *landmark.Face) bool {
		for _, p := range preds {
			if !p(f) {
				return false
			}
		}
		return true
	}
}

// DefaultRules builds the stock facial rule set with the given thresholds.
// The returned set must be treated as immutable for the session lifetime.
func DefaultRules(t Thresholds) *RuleSet {
	pt := func(f *landmark.Face, i int) landmark.Point3D { return f.Points[i] }
	abs := math.Abs

	// Atomic measures shared by several rules.
	browRaiseLeft := func(f *landmark.Face) bool {
		return pt(f, landmark.LeftEyeUpper).Y-pt(f, landmark.LeftBrow).Y > t.BrowRaise
	}
	browRaiseRight := func(f *landmark.Face) bool {
		return pt(f, landmark.RightEyeUpper).Y-pt(f, landmark.RightBrow).Y > t.BrowRaise
	}
	browFlash := func(f *landmark.Face) bool {
		return pt(f, landmark.LeftEyeUpper).Y-pt(f, landmark.LeftBrow).Y > t.BrowFlash
	}
	mouthOpen := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.UpperLip).Y-pt(f, landmark.LowerLip).Y) > t.MouthOpen
	}
	frown := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.MouthCornerLeft).X-pt(f, landmark.MouthCornerRight).X) < t.FrownWidth
	}
	pursedLips := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.MouthCornerLeft).X-pt(f, landmark.MouthCornerRight).X) < t.PursedWidth
	}
	wideSmile := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.MouthCornerLeft).X-pt(f, landmark.MouthCornerRight).X) > t.WideSmile
	}
	subtleSmile := func(f *landmark.Face) bool {
		w := abs(pt(f, landmark.MouthCornerLeft).X - pt(f, landmark.MouthCornerRight).X)
		return w > t.SubtleSmileMin && w < t.SubtleSmileMax
	}
	blinkLeft := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.LeftEyeUpper).Y-pt(f, landmark.LeftEyeLower).Y) < t.BlinkGap
	}
	blinkRight := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.RightEyeUpper).Y-pt(f, landmark.RightEyeLower).Y) < t.BlinkGap
	}
	squintLeft := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.LeftEyeUpper).Y-pt(f, landmark.LeftEyeLower).Y) < t.SquintGap
	}
	squintRight := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.RightEyeUpper).Y-pt(f, landmark.RightEyeLower).Y) < t.SquintGap
	}
	eyesWide := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.LeftEyeUpper).Y-pt(f, landmark.LeftEyeLower).Y) > t.EyesWide
	}
	eyeWidenLeft := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.LeftEyeUpper).Y-pt(f, landmark.LeftEyeLower).Y) > t.EyeWiden
	}
	eyeWidenRight := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.RightEyeUpper).Y-pt(f, landmark.RightEyeLower).Y) > t.EyeWiden
	}
	eyeNarrowLeft := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.LeftEyeUpper).Y-pt(f, landmark.LeftEyeLower).Y) < t.EyeNarrow
	}
	eyeNarrowRight := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.RightEyeUpper).Y-pt(f, landmark.RightEyeLower).Y) < t.EyeNarrow
	}
	browFurrow := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.LeftBrow).X-pt(f, landmark.RightBrow).X) < t.BrowFurrow
	}
	noseWrinkle := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.NoseBridgeTop).Y-pt(f, landmark.NoseBridgeLow).Y) < t.NoseWrinkle
	}
	headTiltLeft := func(f *landmark.Face) bool {
		return pt(f, landmark.EarLeft).Y-pt(f, landmark.EarRight).Y > t.HeadTilt
	}
	headTiltRight := func(f *landmark.Face) bool {
		return pt(f, landmark.EarRight).Y-pt(f, landmark.EarLeft).Y > t.HeadTilt
	}
	// Turn direction comes from the nose drifting off the ear midline;
	// ear crossover alone cannot tell left from right.
	headTurnRight := func(f *landmark.Face) bool {
		mid := (pt(f, landmark.EarLeft).X + pt(f, landmark.EarRight).X) / 2
		return pt(f, landmark.NoseBridgeTop).X < mid-t.HeadTurn
	}
	headTurnLeft := func(f *landmark.Face) bool {
		mid := (pt(f, landmark.EarLeft).X + pt(f, landmark.EarRight).X) / 2
		return pt(f, landmark.NoseBridgeTop).X > mid+t.HeadTurn
	}
	chinThrust := func(f *landmark.Face) bool {
		return pt(f, landmark.Chin).Z < -t.ChinDepth
	}
	chinTuck := func(f *landmark.Face) bool {
		return pt(f, landmark.Chin).Z > t.ChinDepth
	}
	lipCompression := func(f *landmark.Face) bool {
		return abs(pt(f, landmark.UpperLip).Y-pt(f, landmark.LowerLip).Y) < t.LipCompression
	}

	rules := []Rule{
		// Single-feature thresholds.
		{"raised left eyebrow", browRaiseLeft},
		{"raised right eyebrow", browRaiseRight},
		{"eyebrow flash", browFlash},
		{"mouth open", mouthOpen},
		{"jaw drop", func(f *landmark.Face) bool {
			return abs(pt(f, landmark.Chin).Y-pt(f, landmark.UpperLip).Y) > t.JawDrop
		}},
		{"frown", frown},
		{"pursed lips", pursedLips},
		{"subtle smile", subtleSmile},
		{"wide smile", wideSmile},
		{"smirk left", func(f *landmark.Face) bool {
			return pt(f, landmark.MouthCornerLeft).Y > pt(f, landmark.MouthCornerRight).Y+t.SmirkLift
		}},
		{"smirk right", func(f *landmark.Face) bool {
			return pt(f, landmark.MouthCornerRight).Y > pt(f, landmark.MouthCornerLeft).Y+t.SmirkLift
		}},
		{"mouth corner down left", func(f *landmark.Face) bool {
			return pt(f, landmark.MouthCornerLeft).Y > pt(f, landmark.UpperLip).Y+t.CornerDrop
		}},
		{"mouth corner down right", func(f *landmark.Face) bool {
			return pt(f, landmark.MouthCornerRight).Y > pt(f, landmark.UpperLip).Y+t.CornerDrop
		}},
		{"mouth corner up left", func(f *landmark.Face) bool {
			return pt(f, landmark.MouthCornerLeft).Y < pt(f, landmark.UpperLip).Y-t.CornerDrop
		}},
		{"mouth corner up right", func(f *landmark.Face) bool {
			return pt(f, landmark.MouthCornerRight).Y < pt(f, landmark.UpperLip).Y-t.CornerDrop
		}},
		{"lip compression", lipCompression},
		{"lip protrusion", func(f *landmark.Face) bool {
			return pt(f, landmark.UpperLip).Z < -t.LipProtrusion
		}},
		{"lip bite", func(f *landmark.Face) bool {
			return abs(pt(f, landmark.UpperLip).Y-pt(f, landmark.LowerLip).Y) < t.LipBiteGap &&
				abs(pt(f, landmark.MouthCornerLeft).X-pt(f, landmark.MouthCornerRight).X) < t.LipBiteWidth
		}},
		{"eye blink left", blinkLeft},
		{"eye blink right", blinkRight},
		{"eye squint left", squintLeft},
		{"eye squint right", squintRight},
		{"eye narrow left", eyeNarrowLeft},
		{"eye narrow right", eyeNarrowRight},
		{"eye widen left", eyeWidenLeft},
		{"eye widen right", eyeWidenRight},
		{"eyes wide open", eyesWide},
		{"glare left", func(f *landmark.Face) bool {
			center := (pt(f, landmark.LeftEyeCornerOut).X + pt(f, landmark.LeftEyeCornerIn).X) / 2
			return pt(f, landmark.LeftIris).X < center-t.GlareOffset
		}},
		{"glare right", func(f *landmark.Face) bool {
			center := (pt(f, landmark.LeftEyeCornerOut).X + pt(f, landmark.LeftEyeCornerIn).X) / 2
			return pt(f, landmark.LeftIris).X > center+t.GlareOffset
		}},
		{"glare up", func(f *landmark.Face) bool {
			center := (pt(f, landmark.LeftEyeUpper).Y + pt(f, landmark.LeftEyeLower).Y) / 2
			return pt(f, landmark.LeftIris).Y < center-t.GlareOffset
		}},
		{"glare down", func(f *landmark.Face) bool {
			center := (pt(f, landmark.LeftEyeUpper).Y + pt(f, landmark.LeftEyeLower).Y) / 2
			return pt(f, landmark.LeftIris).Y > center+t.GlareOffset
		}},
		{"pupil dilation", func(f *landmark.Face) bool {
			return abs(pt(f, landmark.LeftIris).Y-pt(f, landmark.RightIris).Y) > t.PupilDelta
		}},
		{"brow furrow", browFurrow},
		{"nose wrinkle", noseWrinkle},
		{"nostril flare", func(f *landmark.Face) bool {
			return abs(pt(f, landmark.NostrilLeft).X-pt(f, landmark.NostrilRight).X) > t.NostrilFlare
		}},
		{"nostril compress", func(f *landmark.Face) bool {
			return abs(pt(f, landmark.NostrilLeft).X-pt(f, landmark.NostrilRight).X) < t.NostrilCompress
		}},
		{"cheek puff", func(f *landmark.Face) bool {
			return abs(pt(f, landmark.CheekLeft).X-pt(f, landmark.CheekRight).X) > t.CheekPuff
		}},
		{"cheek raise left", func(f *landmark.Face) bool {
			return pt(f, landmark.CheekBoneLeft).Y < pt(f, landmark.CheekBoneLeftLo).Y-t.CheekRaise
		}},
		{"cheek raise right", func(f *landmark.Face) bool {
			return pt(f, landmark.CheekBoneRight).Y < pt(f, landmark.CheekBoneRightLo).Y-t.CheekRaise
		}},
		{"head tilt left", headTiltLeft},
		{"head tilt right", headTiltRight},
		{"head turn left", headTurnLeft},
		{"head turn right", headTurnRight},
		{"head turn down", func(f *landmark.Face) bool {
			return pt(f, landmark.Forehead).Y > pt(f, landmark.Chin).Y+t.HeadDown
		}},
		{"chin thrust forward", chinThrust},
		{"chin tuck", chinTuck},

		// Compound conjunctions of the atomic predicates above.
		{"brows raised and mouth open", allOf(browRaiseLeft, browRaiseRight, mouthOpen)},
		{"brows lowered and lips pressed", allOf(browFurrow, lipCompression)},
		{"brow raise + smile", allOf(browRaiseLeft, wideSmile)},
		{"brow furrow + frown", allOf(browFurrow, frown)},
		{"mouth open + head tilt", allOf(mouthOpen, anyOf(headTiltLeft, headTiltRight))},
		{"surprise", allOf(browRaiseLeft, browRaiseRight, mouthOpen)},
		{"anger expression", allOf(browFurrow, frown)},
		{"concentration", allOf(browFurrow, squintLeft, squintRight)},
		{"amusement", allOf(wideSmile, eyeNarrowLeft, eyeNarrowRight)},
		{"boredom", allOf(squintLeft, squintRight, lipCompression)},
		{"fear expression", allOf(eyeWidenLeft, eyeWidenRight, browRaiseLeft, browRaiseRight)},
		{"skepticism", allOf(browRaiseLeft, frown)},
		{"nervousness", allOf(squintLeft, pursedLips)},
		{"relaxed expression", allOf(notPred(mouthOpen), notPred(browFurrow), notPred(blinkLeft), notPred(blinkRight))},
	}

	set, err := NewRuleSet(rules)
	if err != nil {
		// The default table is static; a bad entry is a programming error.
		panic(err)
	}
	return set
}

// anyOf composes predicates into a disjunction.
func anyOf(preds ...Predicate) Predicate {
	return func(f *landmark.Face) bool {
		for _, p := range preds {
			if p(f) {
				return true
			}
		}
		return false
	}
}

// notPred negates a predicate.
func notPred(p Predicate) Predicate {
	return func(f *landmark.Face) bool { return !p(f) }
}
