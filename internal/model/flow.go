package model

// FlowState - named state of the game flow ring and the name of its successor
type FlowState struct {
	Name      string
	NextState string
}
