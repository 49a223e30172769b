package dto

// NavigationRequest carries the route params plus the menu state of one navigation instance.
type NavigationRequest struct {
	Layout         string `query:"layout" validate:"omitempty,oneof=rail drawer"`
	Menu           string `query:"menu" validate:"omitempty,oneof=open closed"`
	ExerciseNumber string `query:"exerciseNumber"`
	StepNumber     string `query:"stepNumber"`
	Type           string `query:"type"`
}

type LayoutResponse struct {
	WorkshopTitle string           `json:"workshopTitle"`
	Exercises     []LayoutExercise `json:"exercises"`
	Playground    PlaygroundInfo   `json:"playground"`
}

type LayoutExercise struct {
	ExerciseNumber int         `json:"exerciseNumber"`
	Title          string      `json:"title"`
	Steps          []LayoutApp `json:"steps"`
	Problems       []LayoutApp `json:"problems"`
	Solutions      []LayoutApp `json:"solutions"`
}

type LayoutApp struct {
	StepNumber int    `json:"stepNumber"`
	Title      string `json:"title"`
	Name       string `json:"name"`
}

type PlaygroundInfo struct {
	AppName        string `json:"appName,omitempty"`
	ExerciseNumber int    `json:"exerciseNumber,omitempty"`
}
