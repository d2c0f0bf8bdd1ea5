package physics

// Contact and resolution tolerances. Units are table units and simulation
// time units; a standard ball has radius 25 and mass 1.
const (
	ContactVelocity   = 0.099  // normal speed at or below which a touch is a resting contact
	PhysTouch         = 0.05   // separation at or below which a touch is a resting contact
	LowNormalVelocity = 0.0001 // normal speed below which a ball is treated as receding
	Precision         = 0.01   // slip speed below which friction is static

	DisplacementGain  = 0.9875 // fraction of penetration pushed back out on a rigid hit
	DisplacementLimit = 5.0
	EmbedShot         = 0.05 // kick given to a ball embedded in a surface with no approach speed
	Embedded          = 0.0

	// Line segment hits are accepted when the tangential projection lies in
	// [-LineEndpointTolerance, length+LineEndpointTolerance]. Wall corners are
	// covered by their own LineZ colliders, so this stays at zero.
	LineEndpointTolerance = 0.0

	HitEventDedupDistance = 0.5
	hitEventDedupSq       = HitEventDedupDistance * HitEventDedupDistance

	ElasticityFalloffSpeed = 18.53

	DefaultMaxIterations = 20
	DefaultBallRadius    = 25.0
	DefaultBallMass      = 1.0

	// Default gravity is the standard table gravity tilted by a 6.5 degree
	// playfield slope, pointing down the table (+y) and into it (-z).
	GravityConst  = 1.81751
	DefaultSlopeY = 0.20573  // sin(6.5deg) * GravityConst
	DefaultSlopeZ = -1.80583 // -cos(6.5deg) * GravityConst

	quadtreeLeafSize = 4
	quadtreeMaxDepth = 12

	// Scatter shaping factor, puts the peak of the (1-s^2)*s distribution at 1.
	scatterShape = 2.59808

	// Capsule posts extend the circle with a sphere cap.
	capsuleRadiusScale = 13.0 / 5.0
	capsuleCenterDrop  = 12.0 / 5.0
)
