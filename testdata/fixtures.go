// Package testdata provides synthetic landmark fixtures shared by
// tests across packages.
package testdata

import "github.com/emoticon-ai/emoticon/internal/landmark"

// NeutralFace returns a face with plausible resting geometry: eyes
// open, mouth closed, brows level. Modifier functions below perturb it
// past specific rule thresholds.
func NeutralFace() *landmark.Face {
	f := landmark.NewFace()
	set := func(i int, x, y float64) {
		f.Points[i] = landmark.Point3D{X: x, Y: y}
	}

	set(landmark.NoseBridgeTop, 0.485, 0.40)
	set(landmark.Forehead, 0.485, 0.25)
	set(landmark.UpperLipTop, 0.47, 0.637)
	set(landmark.UpperLip, 0.47, 0.643)
	set(landmark.LowerLip, 0.47, 0.663)
	set(landmark.LowerLipBottom, 0.47, 0.668)
	set(landmark.ChinCrease, 0.47, 0.678)
	set(landmark.LeftEyeCornerOut, 0.39, 0.46)
	set(landmark.CheekLeft, 0.40, 0.55)
	set(landmark.MouthCornerLeft, 0.45, 0.65)
	set(landmark.LeftBrow, 0.42, 0.415)
	set(landmark.NostrilLeft, 0.465, 0.55)
	set(landmark.CheekBoneLeft, 0.38, 0.50)
	set(landmark.CheekBoneLeftLo, 0.38, 0.505)
	set(landmark.LeftEyeCornerIn, 0.45, 0.46)
	set(landmark.LeftEyeLower, 0.42, 0.468)
	set(landmark.ForeheadCenter, 0.485, 0.28)
	set(landmark.Chin, 0.485, 0.72)
	set(landmark.LeftEyeUpper, 0.42, 0.45)
	set(landmark.TempleLeft, 0.33, 0.35)
	set(landmark.NoseBridgeLow, 0.485, 0.43)
	set(landmark.JawLeft, 0.36, 0.62)
	set(landmark.ChinTip, 0.47, 0.70)
	set(landmark.ChinBase, 0.47, 0.69)
	set(landmark.EarLeft, 0.30, 0.45)
	set(landmark.RightEyeCornerOut, 0.58, 0.46)
	set(landmark.CheekRight, 0.57, 0.55)
	set(landmark.MouthCornerRight, 0.487, 0.65)
	set(landmark.RightBrow, 0.55, 0.415)
	set(landmark.NostrilRight, 0.505, 0.55)
	set(landmark.CheekBoneRight, 0.59, 0.50)
	set(landmark.CheekBoneRightLo, 0.59, 0.505)
	set(landmark.RightEyeCornerIn, 0.52, 0.46)
	set(landmark.RightEyeLower, 0.55, 0.468)
	set(landmark.RightEyeUpper, 0.55, 0.45)
	set(landmark.TempleRight, 0.64, 0.35)
	set(landmark.JawRight, 0.60, 0.62)
	set(landmark.EarRight, 0.65, 0.45)
	set(landmark.LeftIris, 0.42, 0.455)
	set(landmark.RightIris, 0.55, 0.455)
	set(landmark.LeftIrisTop, 0.42, 0.447)

	f.Score = 0.95
	return f
}

// MouthOpen widens the lip gap past the mouth-open threshold.
func MouthOpen(f *landmark.Face) *landmark.Face {
	f.Points[landmark.UpperLip].Y = 0.63
	f.Points[landmark.LowerLip].Y = 0.70
	return f
}

// RaisedBrows lifts both brows past the raise threshold.
func RaisedBrows(f *landmark.Face) *landmark.Face {
	f.Points[landmark.LeftBrow].Y = 0.38
	f.Points[landmark.RightBrow].Y = 0.38
	return f
}

// WideSmile stretches the mouth corners past the smile threshold.
func WideSmile(f *landmark.Face) *landmark.Face {
	f.Points[landmark.MouthCornerLeft].X = 0.40
	f.Points[landmark.MouthCornerRight].X = 0.49
	return f
}

// Blink closes both eyes under the blink threshold.
func Blink(f *landmark.Face) *landmark.Face {
	f.Points[landmark.LeftEyeLower].Y = 0.451
	f.Points[landmark.RightEyeLower].Y = 0.451
	return f
}

// Frown narrows the mouth under the frown threshold.
func Frown(f *landmark.Face) *landmark.Face {
	f.Points[landmark.MouthCornerLeft].X = 0.47
	f.Points[landmark.MouthCornerRight].X = 0.50
	return f
}

// BrowFurrow pulls the brows together under the furrow threshold.
func BrowFurrow(f *landmark.Face) *landmark.Face {
	f.Points[landmark.LeftBrow].X = 0.47
	f.Points[landmark.RightBrow].X = 0.49
	return f
}

// Shift translates every landmark by the given offsets.
func Shift(f *landmark.Face, dx, dy float64) *landmark.Face {
	for i, p := range f.Points {
		f.Points[i] = landmark.Point3D{X: p.X + dx, Y: p.Y + dy, Z: p.Z}
	}
	return f
}

// NeutralPose returns a standing pose with arms at the sides.
func NeutralPose() *landmark.Pose {
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

// CrossedArms folds the wrists onto the opposite elbows.
func CrossedArms(p *landmark.Pose) *landmark.Pose {
	p.Points[landmark.PoseLeftWrist] = landmark.Point3D{X: 0.60, Y: 0.52}
	p.Points[landmark.PoseRightWrist] = landmark.Point3D{X: 0.40, Y: 0.52}
	return p
}
