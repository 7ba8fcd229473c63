// Package landmark defines the facial and body landmark types produced by
// the landmark source and consumed by gesture evaluation.
package landmark

import "math"

// Face mesh landmark indices following the MediaPipe convention
// (468 mesh points plus 10 iris points with refinement enabled).
// Only the indices read by the gesture rule set are named.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	NoseBridgeTop     = 6
	Forehead          = 10
	UpperLipTop       = 12
	UpperLip          = 13
	LowerLip          = 14
	LowerLipBottom    = 15
	ChinCrease        = 17
	LeftEyeCornerOut  = 33
	CheekLeft         = 50
	MouthCornerLeft   = 61
	LeftBrow          = 65
	NostrilLeft       = 94
	CheekBoneLeft     = 116
	CheekBoneLeftLo   = 117
	LeftEyeCornerIn   = 133
	LeftEyeLower      = 145
	ForeheadCenter    = 151
	Chin              = 152
	LeftEyeUpper      = 159
	TempleLeft        = 162
	NoseBridgeLow     = 168
	JawLeft           = 172
	ChinTip           = 175
	ChinBase          = 199
	EarLeft           = 234
	RightEyeCornerOut = 263
	CheekRight        = 280
	MouthCornerRight  = 291
	RightBrow         = 295
	NostrilRight      = 331
	CheekBoneRight    = 345
	CheekBoneRightLo  = 346
	RightEyeCornerIn  = 362
	RightEyeLower     = 374
	RightEyeUpper     = 386
	TempleRight       = 389
	JawRight          = 397
	EarRight          = 454
	LeftIris          = 468
	RightIris         = 473
	LeftIrisTop       = 474

	// NumFacePoints is the full face mesh size with iris refinement.
	NumFacePoints = 478
)

// Pose landmark indices following the MediaPipe pose convention (33 points).
const (
	PoseNose          = 0
	PoseLeftShoulder  = 11
	PoseRightShoulder = 12
	PoseLeftElbow     = 13
	PoseRightElbow    = 14
	PoseLeftWrist     = 15
	PoseRightWrist    = 16
	PoseLeftHip       = 23
	PoseRightHip      = 24
	PoseLeftKnee      = 25
	PoseRightKnee     = 26
	PoseLeftAnkle     = 27
	PoseRightAnkle    = 28

	// NumPosePoints is the full pose landmark count.
	NumPosePoints = 33
)

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are normalized image coordinates in [0,1]; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Face holds the landmark points for one detected face.
// Point identity is positional index; length and index semantics are
// constant for a session.
type Face struct {
	Points []Point3D `json:"points"`
	Score  float64   `json:"score"`
}

// Pose holds the body landmark points for one detected subject.
type Pose struct {
	Points []Point3D `json:"points"`
	Score  float64   `json:"score"`
}

// Distance calculates the Euclidean distance between two 3D points.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// NewFace returns a Face with the full mesh allocated at the origin.
func NewFace() *Face {
	return &Face{Points: make([]Point3D, NumFacePoints)}
}

// NewPose returns a Pose with all points allocated at the origin.
func NewPose() *Pose {
	return &Pose{Points: make([]Point3D, NumPosePoints)}
}
