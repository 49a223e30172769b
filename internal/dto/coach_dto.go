package dto

// CoachChunk is one frame of the coach text stream.
type CoachChunk struct {
	Char string `json:"char"`
}
