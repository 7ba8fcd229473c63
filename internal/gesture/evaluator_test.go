package gesture

import (
	"testing"

	"github.com/emoticon-ai/emoticon/internal/landmark"
)

// neutralPose builds a standing pose with arms at the sides. No body rule
// holds for it.
func neutralPose() *landmark.Pose {
	p := landmark.NewPose()
	set := func(i int, x, y, z float64) {
		p.Points[i] = landmark.Point3D{X: x, Y: y, Z: z}
	}

	set(landmark.PoseNose, 0.50, 0.20, 0)
	set(landmark.PoseLeftShoulder, 0.40, 0.35, 0)
	set(landmark.PoseRightShoulder, 0.60, 0.35, 0)
	set(landmark.PoseLeftElbow, 0.38, 0.50, 0)
	set(landmark.PoseRightElbow, 0.62, 0.50, 0)
	set(landmark.PoseLeftWrist, 0.34, 0.75, 0)
	set(landmark.PoseRightWrist, 0.66, 0.75, 0)
	set(landmark.PoseLeftHip, 0.43, 0.65, 0)
	set(landmark.PoseRightHip, 0.57, 0.65, 0)
	set(landmark.PoseLeftKnee, 0.43, 0.80, 0)
	set(landmark.PoseRightKnee, 0.57, 0.80, 0)
	set(landmark.PoseLeftAnkle, 0.43, 0.95, 0)
	set(landmark.PoseRightAnkle, 0.57, 0.95, 0)

	p.Score = 0.9
	return p
}

func TestEvaluateBodyNeutralPose(t *testing.T) {
	e := NewEvaluator(DefaultRules(DefaultThresholds()), DefaultBodyRules(DefaultBodyThresholds()))
	if names := e.EvaluateBody(neutralPose()); len(names) != 0 {
		t.Fatalf("neutral pose should match no body rules, got %v", names)
	}
}

func TestEvaluateBodyPostures(t *testing.T) {
	e := NewEvaluator(DefaultRules(DefaultThresholds()), DefaultBodyRules(DefaultBodyThresholds()))

	crossed := neutralPose()
	crossed.Points[landmark.PoseLeftWrist] = landmark.Point3D{X: 0.60, Y: 0.52}
	crossed.Points[landmark.PoseRightWrist] = landmark.Point3D{X: 0.40, Y: 0.52}
	names := e.EvaluateBody(crossed)
	if len(names) != 1 || names[0] != "crossed arms" {
		t.Errorf("expected only %q, got %v", "crossed arms", names)
	}

	confident := neutralPose()
	confident.Points[landmark.PoseLeftWrist] = landmark.Point3D{X: 0.44, Y: 0.66}
	confident.Points[landmark.PoseRightWrist] = landmark.Point3D{X: 0.56, Y: 0.66}
	confident.Points[landmark.PoseLeftAnkle] = landmark.Point3D{X: 0.33, Y: 0.95}
	confident.Points[landmark.PoseRightAnkle] = landmark.Point3D{X: 0.67, Y: 0.95}
	names = e.EvaluateBody(confident)
	for _, want := range []string{"hands on hips", "wide stance", "confident stance"} {
		if !contains(names, want) {
			t.Errorf("expected %q in %v", want, names)
		}
	}

	engaged := neutralPose()
	engaged.Points[landmark.PoseNose] = landmark.Point3D{X: 0.50, Y: 0.20, Z: -0.2}
	engaged.Points[landmark.PoseLeftWrist] = landmark.Point3D{X: 0.20, Y: 0.62}
	engaged.Points[landmark.PoseRightWrist] = landmark.Point3D{X: 0.80, Y: 0.62}
	names = e.EvaluateBody(engaged)
	for _, want := range []string{"open arms", "leaning forward", "engagement signal"} {
		if !contains(names, want) {
			t.Errorf("expected %q in %v", want, names)
		}
	}
}

func TestEvaluateBodyWithoutRuleSet(t *testing.T) {
	e := NewEvaluator(DefaultRules(DefaultThresholds()), nil)
	if names := e.EvaluateBody(neutralPose()); names != nil {
		t.Fatalf("expected nil without a body rule set, got %v", names)
	}
}

func TestEvaluateNilFace(t *testing.T) {
	e := NewEvaluator(DefaultRules(DefaultThresholds()), nil)
	if names := e.Evaluate(nil); names != nil {
		t.Fatalf("expected nil for nil face, got %v", names)
	}
}

func TestEvaluateShortFrameSkipsFailingRules(t *testing.T) {
	e := NewEvaluator(DefaultRules(DefaultThresholds()), nil)

	// Truncated frame: rules indexing past point 100 must be skipped,
	// not crash the evaluation.
	short := &landmark.Face{Points: make([]landmark.Point3D, 100)}
	names := e.Evaluate(short)

	// Low-index zero geometry reads as fully pressed lips.
	if !contains(names, "lip compression") {
		t.Errorf("expected %q from low-index rules, got %v", "lip compression", names)
	}
	if contains(names, "head tilt left") {
		t.Error("rule over out-of-range points should not fire")
	}
	if errs := e.RuleErrors(); len(errs) == 0 {
		t.Error("expected rule evaluation failures to be recorded")
	}
}

func TestEvaluateFacesIndependently(t *testing.T) {
	e := NewEvaluator(DefaultRules(DefaultThresholds()), nil)

	faces := []*landmark.Face{withMouthOpen(neutralFace()), neutralFace()}
	perFace := make([][]string, len(faces))
	for i, f := range faces {
		perFace[i] = e.Evaluate(f)
	}

	if !contains(perFace[0], "mouth open") {
		t.Errorf("first face should read mouth open, got %v", perFace[0])
	}
	if contains(perFace[1], "mouth open") {
		t.Errorf("second face must not inherit the first face's gestures, got %v", perFace[1])
	}
}
