package progress

// ItemType is the kind of navigation item a completion record refers to.
type ItemType string

const (
	TypeInstructions ItemType = "instructions"
	TypeStep         ItemType = "step"
	TypeFinished     ItemType = "finished"
)

// Record is one completed (exercise, step, type) item, keyed by app name.
// StepNumber is 0 for instructions and finished items.
type Record struct {
	AppName        string   `json:"appName"`
	ExerciseNumber int      `json:"exerciseNumber"`
	StepNumber     int      `json:"stepNumber,omitempty"`
	Type           ItemType `json:"type"`
}

type itemKey struct {
	exercise int
	step     int
	typ      ItemType
}

func keyOf(exercise, step int, typ ItemType) itemKey {
	if typ != TypeStep {
		step = 0
	}
	return itemKey{exercise: exercise, step: step, typ: typ}
}

// State is a read-only snapshot of one learner's completion records.
// A nil *State means no progress is known (anonymous learner).
type State struct {
	byKey map[itemKey]struct{}
	byApp map[string]Record
}

func NewState(records []Record) *State {
	s := &State{
		byKey: make(map[itemKey]struct{}, len(records)),
		byApp: make(map[string]Record, len(records)),
	}
	for _, r := range records {
		s.byKey[keyOf(r.ExerciseNumber, r.StepNumber, r.Type)] = struct{}{}
		if r.AppName != "" {
			s.byApp[r.AppName] = r
		}
	}
	return s
}

func (s *State) IsComplete(exercise, step int, typ ItemType) bool {
	if s == nil {
		return false
	}
	_, ok := s.byKey[keyOf(exercise, step, typ)]
	return ok
}

func (s *State) IsAppComplete(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.byApp[name]
	return ok
}

func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byKey)
}
