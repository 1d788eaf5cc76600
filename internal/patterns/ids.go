package patterns

import gonanoid "github.com/matoous/go-nanoid/v2"

// IDLength is the length of generated pattern ids.
const IDLength = 12

// CreatePatternID returns a random URL-safe pattern id.
func CreatePatternID() string {
	return gonanoid.Must(IDLength)
}

// NextCloneID returns the id for a copy of the pattern id. It does not derive
// anything from id; copies get a fresh random id like any new pattern.
func NextCloneID(id string) string {
	return CreatePatternID()
}
