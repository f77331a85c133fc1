package game

// Physical defaults for a spawned ball and the kernel's fixed tuning values.
const (
	DefaultBallRadius     = 16.0
	DefaultElasticity     = 0.8
	DefaultFriction       = 0.99
	DefaultWallElasticity = 0.7
	DefaultWeight         = 1.0

	// RestThreshold is the speed below which a velocity component snaps to zero.
	RestThreshold = 0.01

	// DragScale is applied to the cue ball radius while it is being dragged.
	DragScale = 1.2

	// CushionSubSteps is the number of sub-positions tested per tick against each cushion.
	CushionSubSteps = 10

	RackRows    = 5
	RackPadding = 1.0
	NumBalls    = 16 // 0=cue, 1-7=solids, 8=black, 9-15=stripes
)

// Palette holds the seven ball colours. Solids index it by number-1, stripes by number-9.
var Palette = [7]string{"#DDB700", "blue", "red", "purple", "#F68122", "green", "brown"}

const (
	CueColor     = "white"
	BlackColor   = "black"
	CushionColor = "green"
)
