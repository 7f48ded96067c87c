package routing

// Direction names the port of a router that leads to a neighbor.
type Direction int

// Directions of a 3D mesh router. Front is +y and Back is -y. Up and Down
// are the vertical buses.
const (
	Left Direction = iota
	Right
	Front
	Back
	Up
	Down
	Local
	NumDirections
)

// PlanarDirections are the directions within one layer.
var PlanarDirections = []Direction{Left, Right, Front, Back}

func (d Direction) String() string {
	switch d {
	case Left:
		return "Left"
	case Right:
		return "Right"
	case Front:
		return "Front"
	case Back:
		return "Back"
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Local:
		return "Local"
	default:
		return "Unknown"
	}
}

// Opposite returns the direction that points back.
func (d Direction) Opposite() Direction {
	switch d {
	case Left:
		return Right
	case Right:
		return Left
	case Front:
		return Back
	case Back:
		return Front
	case Up:
		return Down
	case Down:
		return Up
	default:
		return d
	}
}

// IsVertical returns true for the vertical bus directions.
func (d Direction) IsVertical() bool {
	return d == Up || d == Down
}
