package gesture

// Thresholds collects the numeric constants used by the rule set.
// All values are in the same normalized unit as the landmark
// coordinates; no re-scaling by face size is performed. Tuning
// sensitivity means changing a field here, never a predicate.
type Thresholds struct {
	// Brow geometry (vertical eyelid-to-brow gap).
	BrowRaise float64
	BrowFlash float64

	// Mouth geometry.
	MouthOpen      float64 // upper-to-lower lip gap
	JawDrop        float64 // chin-to-upper-lip distance
	FrownWidth     float64 // corner-to-corner width below which mouth reads as a frown
	PursedWidth    float64
	SubtleSmileMin float64
	SubtleSmileMax float64
	WideSmile      float64
	SmirkLift      float64 // vertical asymmetry between mouth corners
	CornerDrop     float64 // mouth corner below lip midline
	LipCompression float64
	LipProtrusion  float64 // forward z of the upper lip
	LipBiteGap     float64
	LipBiteWidth   float64

	// Eye aperture (upper-to-lower eyelid gap).
	BlinkGap    float64
	SquintGap   float64
	EyeNarrow   float64
	EyeWiden    float64
	EyesWide    float64
	GlareOffset float64 // iris drift toward an eye corner

	// Brow-to-brow horizontal gap.
	BrowFurrow float64

	// Nose geometry.
	NoseWrinkle     float64
	NostrilFlare    float64
	NostrilCompress float64

	// Head orientation proxies.
	HeadTilt  float64 // ear height asymmetry
	HeadTurn  float64 // nose x offset from the ear midline
	HeadDown  float64 // forehead dropping past the chin line
	ChinDepth float64 // chin z for thrust/tuck

	// Cheek geometry.
	CheekPuff  float64
	CheekRaise float64

	// Iris geometry (requires refined landmarks).
	PupilDelta float64
}

// DefaultThresholds returns the stock sensitivity used by the default
// rule set. The values match the normalized MediaPipe coordinate space.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BrowRaise: 0.06,
		BrowFlash: 0.08,

		MouthOpen:      0.05,
		JawDrop:        0.15,
		FrownWidth:     0.035,
		PursedWidth:    0.025,
		SubtleSmileMin: 0.04,
		SubtleSmileMax: 0.06,
		WideSmile:      0.08,
		SmirkLift:      0.015,
		CornerDrop:     0.01,
		LipCompression: 0.003,
		LipProtrusion:  0.02,
		LipBiteGap:     0.008,
		LipBiteWidth:   0.01,

		BlinkGap:    0.005,
		SquintGap:   0.007,
		EyeNarrow:   0.01,
		EyeWiden:    0.025,
		EyesWide:    0.035,
		GlareOffset: 0.02,

		BrowFurrow: 0.03,

		NoseWrinkle:     0.02,
		NostrilFlare:    0.05,
		NostrilCompress: 0.03,

		HeadTilt:  0.03,
		HeadTurn:  0.05,
		HeadDown:  0.08,
		ChinDepth: 0.1,

		CheekPuff:  0.25,
		CheekRaise: 0.01,

		PupilDelta: 0.02,
	}
}
