package tween

// Ease maps normalized progress in [0,1] to eased progress
type Ease func(t float64) float64

// Linear - constant speed
func Linear(t float64) float64 {
	return t
}

// QuadOut - fast start, smooth stop
func QuadOut(t float64) float64 {
	return t * (2 - t)
}
