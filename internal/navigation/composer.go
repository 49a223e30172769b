package navigation

import (
	"fmt"
	"strings"

	"workshop-app-be/internal/catalog"
	"workshop-app-be/internal/model"
	"workshop-app-be/internal/presence"
	"workshop-app-be/internal/progress"
)

// Capabilities are the deployment and session facts that gate parts of the
// navigation. They are resolved once per request.
type Capabilities struct {
	IsDeployed  bool
	CurrentUser *model.CurrentUser
	HasNextStep bool
	GithubRepo  string
}

type ItemKind string

const (
	KindExercise    ItemKind = "exercise"
	KindIntro       ItemKind = "intro"
	KindStep        ItemKind = "step"
	KindElaboration ItemKind = "elaboration"
	KindFeedback    ItemKind = "feedback"
)

type Item struct {
	ID             string            `json:"id"`
	Kind           ItemKind          `json:"kind"`
	Label          string            `json:"label"`
	Path           string            `json:"path"`
	ExerciseNumber int               `json:"exerciseNumber,omitempty"`
	StepNumber     int               `json:"stepNumber,omitempty"`
	Active         bool              `json:"active"`
	Progress       progress.ClassTag `json:"progress,omitempty"`
	Playground     bool              `json:"playground,omitempty"`
	Children       []Item            `json:"children,omitempty"`
}

type ActionKind string

const (
	ActionAccount  ActionKind = "account"
	ActionCoach    ActionKind = "coach"
	ActionContinue ActionKind = "continue"
	ActionTheme    ActionKind = "theme"
)

type Action struct {
	Kind ActionKind `json:"kind"`
	// Label is shown next to the icon in an opened menu
	Label string `json:"label,omitempty"`
	// Tooltip is shown over the bare icon in a closed menu
	Tooltip   string `json:"tooltip,omitempty"`
	Path      string `json:"path,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Alt       string `json:"alt,omitempty"`
}

// Breadcrumb names the current exercise and app in a collapsed rail.
type Breadcrumb struct {
	ExerciseTitle string `json:"exerciseTitle,omitempty"`
	ExercisePath  string `json:"exercisePath,omitempty"`
	AppTitle      string `json:"appTitle,omitempty"`
	AppPath       string `json:"appPath,omitempty"`
}

func (b Breadcrumb) String() string {
	parts := make([]string, 0, 2)
	for _, p := range []string{b.ExerciseTitle, b.AppTitle} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " — ")
}

// Banner invites anonymous users to log in or run the app locally.
type Banner struct {
	Deployed      bool   `json:"deployed"`
	Message       string `json:"message"`
	LoginURL      string `json:"loginUrl"`
	RunLocallyURL string `json:"runLocallyUrl,omitempty"`
	JoinURL       string `json:"joinUrl"`
}

// PresenceSource is anything that can produce a capped presence snapshot.
type PresenceSource interface {
	Snapshot(limit int) presence.View
}

type Input struct {
	Menu              *Menu
	WorkshopTitle     string
	Exercises         []catalog.Exercise
	PlaygroundAppName string
	Selection         progress.Selection
	Oracle            *progress.Oracle
	NextRoute         *progress.Route
	Presence          PresenceSource
	Labels            presence.Labels
	Capabilities      Capabilities
}

type View struct {
	Layout        Layout             `json:"layout"`
	Menu          MenuState          `json:"menu"`
	Width         int                `json:"width"`
	WorkshopTitle string             `json:"workshopTitle"`
	Tree          []Item             `json:"tree,omitempty"`
	Reveal        []RevealStep       `json:"reveal,omitempty"`
	Feedback      *Item              `json:"feedback,omitempty"`
	Breadcrumb    *Breadcrumb        `json:"breadcrumb,omitempty"`
	Presence      *presence.FacePile `json:"presence,omitempty"`
	PresenceTall  bool               `json:"presenceTall"`
	PresenceRow   int                `json:"presenceRowHeight"`
	Actions       []Action           `json:"actions"`
	Banner        *Banner            `json:"banner,omitempty"`
}

func exercisePath(n int) string { return fmt.Sprintf("/%02d", n) }

// BuildTree lays out the exercise list. The selected exercise is expanded
// into its intro, steps and elaboration. Both layouts share it.
func BuildTree(exercises []catalog.Exercise, sel progress.Selection, oracle *progress.Oracle, playgroundAppName string) []Item {
	if oracle == nil {
		oracle = progress.NewOracle(exercises, nil)
	}
	playgroundExercise, hasPlayground := oracle.PlaygroundExercise(playgroundAppName)

	tree := make([]Item, 0, len(exercises))
	for _, ex := range exercises {
		active := sel.ExerciseNumber == ex.Number
		title := ex.Title
		if title == "" {
			title = catalog.UnknownTitle
		}
		item := Item{
			ID:             fmt.Sprintf("exercise-%02d", ex.Number),
			Kind:           KindExercise,
			Label:          title,
			Path:           exercisePath(ex.Number),
			ExerciseNumber: ex.Number,
			Active:         active,
			Progress:       oracle.ClassForExercise(ex.Number),
			Playground:     !active && hasPlayground && playgroundExercise == ex.Number,
		}
		if active {
			item.Children = exerciseChildren(ex, sel, oracle, playgroundAppName)
		}
		tree = append(tree, item)
	}
	return tree
}

func exerciseChildren(ex catalog.Exercise, sel progress.Selection, oracle *progress.Oracle, playgroundAppName string) []Item {
	children := make([]Item, 0, len(ex.Steps)+2)
	children = append(children, Item{
		ID:             fmt.Sprintf("intro-%02d", ex.Number),
		Kind:           KindIntro,
		Label:          "Intro",
		Path:           exercisePath(ex.Number),
		ExerciseNumber: ex.Number,
		Active:         sel.StepNumber == 0 && !sel.Finished,
		Progress:       oracle.ClassForStep(ex.Number, 0, progress.TypeInstructions),
	})
	for _, step := range ex.Steps {
		children = append(children, Item{
			ID:             fmt.Sprintf("step-%02d-%02d", ex.Number, step.Number),
			Kind:           KindStep,
			Label:          fmt.Sprintf("%02d. %s", step.Number, step.Title()),
			Path:           fmt.Sprintf("/%02d/%02d", ex.Number, step.Number),
			ExerciseNumber: ex.Number,
			StepNumber:     step.Number,
			Active:         sel.StepNumber == step.Number,
			Progress:       oracle.ClassForStep(ex.Number, step.Number, progress.TypeStep),
			Playground:     step.HasApp(playgroundAppName),
		})
	}
	children = append(children, Item{
		ID:             fmt.Sprintf("elaboration-%02d", ex.Number),
		Kind:           KindElaboration,
		Label:          "📝 Elaboration",
		Path:           fmt.Sprintf("/%02d/finished", ex.Number),
		ExerciseNumber: ex.Number,
		Active:         sel.Finished,
		Progress:       oracle.ClassForStep(ex.Number, 0, progress.TypeFinished),
	})
	return children
}

// BuildBreadcrumb resolves "exercise — app" for the selection. Only
// problem and solution routes name an app.
func BuildBreadcrumb(exercises []catalog.Exercise, sel progress.Selection) *Breadcrumb {
	ex, ok := catalog.FindExercise(exercises, sel.ExerciseNumber)
	if !ok {
		return nil
	}
	b := &Breadcrumb{ExerciseTitle: ex.Title, ExercisePath: exercisePath(ex.Number)}
	if app := ex.App(catalog.AppType(sel.Type), sel.StepNumber); app != nil && app.Title != "" {
		b.AppTitle = app.Title
		b.AppPath = fmt.Sprintf("/%02d/%02d", ex.Number, sel.StepNumber)
	}
	if b.String() == "" {
		return nil
	}
	return b
}

// BuildActions returns the footer actions in display order.
func BuildActions(caps Capabilities, nextRoute *progress.Route, opened bool) []Action {
	tooltip := func(s string) string {
		if opened {
			return ""
		}
		return s
	}
	label := func(s string) string {
		if opened {
			return s
		}
		return ""
	}

	var actions []Action
	user := caps.CurrentUser
	if !caps.IsDeployed && user != nil {
		actions = append(actions,
			Action{
				Kind:      ActionAccount,
				Label:     label("Your Account"),
				Tooltip:   tooltip("Your account"),
				Path:      "/account",
				AvatarURL: user.AvatarURL,
				Alt:       user.DisplayName(),
			},
			Action{
				Kind:    ActionCoach,
				Label:   label("Ask Coach Kody"),
				Tooltip: tooltip("Ask Coach Kody"),
				Path:    "/coach-kody",
			},
		)
		if caps.HasNextStep && nextRoute != nil {
			actions = append(actions, Action{
				Kind:    ActionContinue,
				Label:   label("Continue to next lesson"),
				Tooltip: tooltip("Continue to next lesson"),
				Path:    nextRoute.Path,
			})
		}
	}
	return append(actions, Action{Kind: ActionTheme})
}

// BuildBanner is nil for logged in users.
func BuildBanner(caps Capabilities) *Banner {
	if caps.CurrentUser != nil {
		return nil
	}
	if caps.IsDeployed {
		return &Banner{
			Deployed:      true,
			Message:       "This is the deployed version. Run locally for full experience.",
			LoginURL:      "https://www.epicweb.dev/login",
			RunLocallyURL: caps.GithubRepo,
			JoinURL:       "https://www.epicweb.dev",
		}
	}
	return &Banner{
		Message:  "Login or join for free for the full experience.",
		LoginURL: "/login",
		JoinURL:  "https://www.epicweb.dev/login",
	}
}

// Compose builds the whole navigation for one layout. Everything but the
// layout metrics comes from the shared builders above.
func Compose(in Input) View {
	menu := in.Menu
	if menu == nil {
		menu = NewMenu(LayoutRail, false)
	}
	opened := menu.IsOpen()
	metrics := menu.Layout().Metrics()

	view := View{
		Layout:        menu.Layout(),
		Menu:          menu.State(),
		Width:         menu.Width(),
		WorkshopTitle: in.WorkshopTitle,
		PresenceRow:   metrics.PresenceRowHeight,
		Actions:       BuildActions(in.Capabilities, in.NextRoute, opened),
		Banner:        BuildBanner(in.Capabilities),
	}

	if opened {
		view.Tree = BuildTree(in.Exercises, in.Selection, in.Oracle, in.PlaygroundAppName)
		view.Reveal = RevealOrder(view.Tree, DefaultStagger)
		view.Feedback = &Item{ID: "feedback", Kind: KindFeedback, Label: "📝 Workshop Feedback", Path: "/finished"}
	} else if menu.Layout() == LayoutRail {
		view.Breadcrumb = BuildBreadcrumb(in.Exercises, in.Selection)
	}

	if in.Presence != nil {
		var currentUserID string
		if u := in.Capabilities.CurrentUser; u != nil {
			currentUserID = u.ID
		}
		snapshot := in.Presence.Snapshot(menu.PresenceLimit())
		view.Presence = in.Labels.BuildFacePile(snapshot, opened, currentUserID)
		view.PresenceTall = opened && snapshot.Total > 4
		if view.PresenceTall {
			view.PresenceRow = metrics.PresenceRowTall
		}
	}
	return view
}
