package pipeline

// State is the last stage a page completed
type State int

// States in pipeline order
const (
	Pending State = iota
	Downloaded
	Extracted
	Translated
	Composed
)

var stateNames = [...]string{"pending", "downloaded", "extracted", "translated", "composed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
