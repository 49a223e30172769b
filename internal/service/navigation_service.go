package service

import (
	"context"

	"workshop-app-be/internal/catalog"
	"workshop-app-be/internal/dto"
	"workshop-app-be/internal/mapper"
	"workshop-app-be/internal/model"
	"workshop-app-be/internal/navigation"
	"workshop-app-be/internal/pkg/logger"
	"workshop-app-be/internal/presence"
	"workshop-app-be/internal/progress"
	"workshop-app-be/internal/repository/contract"
)

type INavigationService interface {
	GetLayout(ctx context.Context) (*dto.LayoutResponse, error)
	GetNavigation(ctx context.Context, request *dto.NavigationRequest, user *model.CurrentUser) (*navigation.View, error)
	GetPresence(ctx context.Context, request *dto.PresenceQuery, user *model.CurrentUser) (*presence.FacePile, error)
	Viewer(ctx context.Context, request *dto.PresenceQuery) (*model.Location, error)
}

// Deployment holds the capability flags that do not depend on the request.
type Deployment struct {
	IsDeployed bool
	GithubRepo string
}

type navigationService struct {
	catalog         catalog.Provider
	progressRepo    contract.ProgressRepository
	progressMapper  *mapper.ProgressMapper
	presenceService IPresenceService
	deployment      Deployment
	logger          logger.ILogger
}

func NewNavigationService(
	catalogProvider catalog.Provider,
	progressRepo contract.ProgressRepository,
	presenceService IPresenceService,
	deployment Deployment,
	log logger.ILogger,
) INavigationService {
	return &navigationService{
		catalog:         catalogProvider,
		progressRepo:    progressRepo,
		progressMapper:  mapper.NewProgressMapper(),
		presenceService: presenceService,
		deployment:      deployment,
		logger:          log,
	}
}

func (c *navigationService) GetLayout(ctx context.Context) (*dto.LayoutResponse, error) {
	exercises, err := c.catalog.GetExercises(ctx)
	if err != nil {
		return nil, err
	}
	title, err := c.catalog.GetWorkshopTitle(ctx)
	if err != nil {
		return nil, err
	}
	playgroundAppName, err := c.catalog.GetPlaygroundAppName(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.LayoutResponse{
		WorkshopTitle: title,
		Exercises:     make([]dto.LayoutExercise, 0, len(exercises)),
	}
	for _, ex := range exercises {
		item := dto.LayoutExercise{
			ExerciseNumber: ex.Number,
			Title:          ex.Title,
			Steps:          make([]dto.LayoutApp, 0, len(ex.Steps)),
			Problems:       []dto.LayoutApp{},
			Solutions:      []dto.LayoutApp{},
		}
		if item.Title == "" {
			item.Title = catalog.UnknownTitle
		}
		for _, step := range ex.Steps {
			item.Steps = append(item.Steps, dto.LayoutApp{StepNumber: step.Number, Title: step.Title(), Name: step.Name()})
			if step.Problem != nil {
				item.Problems = append(item.Problems, layoutApp(step.Number, step.Problem))
			}
			if step.Solution != nil {
				item.Solutions = append(item.Solutions, layoutApp(step.Number, step.Solution))
			}
		}
		res.Exercises = append(res.Exercises, item)
	}

	oracle := progress.NewOracle(exercises, nil)
	if n, ok := oracle.PlaygroundExercise(playgroundAppName); ok {
		res.Playground = dto.PlaygroundInfo{AppName: playgroundAppName, ExerciseNumber: n}
	} else {
		res.Playground = dto.PlaygroundInfo{AppName: playgroundAppName}
	}
	return res, nil
}

func layoutApp(stepNumber int, app *catalog.App) dto.LayoutApp {
	title := app.Title
	if title == "" {
		title = catalog.UnknownTitle
	}
	name := app.Name
	if name == "" {
		name = catalog.UnknownTitle
	}
	return dto.LayoutApp{StepNumber: stepNumber, Title: title, Name: name}
}

// loadProgress returns nil for anonymous users. A failing store degrades to
// "progress unknown" instead of failing the page.
func (c *navigationService) loadProgress(ctx context.Context, user *model.CurrentUser) *progress.State {
	if user == nil || user.ID == "" || c.progressRepo == nil {
		return nil
	}
	completions, err := c.progressRepo.FindByUser(ctx, user.ID)
	if err != nil {
		c.logger.Warn("NavigationService", "Failed to load progress", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		return nil
	}
	return progress.NewState(c.progressMapper.ToRecords(completions))
}

func (c *navigationService) GetNavigation(ctx context.Context, request *dto.NavigationRequest, user *model.CurrentUser) (*navigation.View, error) {
	exercises, err := c.catalog.GetExercises(ctx)
	if err != nil {
		return nil, err
	}
	title, err := c.catalog.GetWorkshopTitle(ctx)
	if err != nil {
		return nil, err
	}
	playgroundAppName, err := c.catalog.GetPlaygroundAppName(ctx)
	if err != nil {
		return nil, err
	}

	sel := progress.ParseSelection(request.ExerciseNumber, request.StepNumber, request.Type)
	oracle := progress.NewOracle(exercises, c.loadProgress(ctx, user))
	nextRoute := oracle.NextIncompleteRoute(sel)

	viewer := ViewerLocation(title, sel.ExerciseNumber, sel.StepNumber, sel.Type)
	view := navigation.Compose(navigation.Input{
		Menu:              navigation.NewMenu(navigation.ParseLayout(request.Layout), request.Menu == "open"),
		WorkshopTitle:     title,
		Exercises:         exercises,
		PlaygroundAppName: playgroundAppName,
		Selection:         sel,
		Oracle:            oracle,
		NextRoute:         nextRoute,
		Presence:          snapshotFunc(func(limit int) presence.View { return c.presenceService.Snapshot(viewer, limit) }),
		Labels:            c.presenceService.Labels(),
		Capabilities: navigation.Capabilities{
			IsDeployed:  c.deployment.IsDeployed,
			CurrentUser: user,
			HasNextStep: nextRoute != nil,
			GithubRepo:  c.deployment.GithubRepo,
		},
	})
	return &view, nil
}

// Viewer resolves where the requesting learner is from route params.
func (c *navigationService) Viewer(ctx context.Context, request *dto.PresenceQuery) (*model.Location, error) {
	title, err := c.catalog.GetWorkshopTitle(ctx)
	if err != nil {
		return nil, err
	}
	sel := progress.ParseSelection(request.ExerciseNumber, request.StepNumber, request.Type)
	return ViewerLocation(title, sel.ExerciseNumber, sel.StepNumber, sel.Type), nil
}

// GetPresence is the face pile alone, for clients that poll it.
func (c *navigationService) GetPresence(ctx context.Context, request *dto.PresenceQuery, user *model.CurrentUser) (*presence.FacePile, error) {
	viewer, err := c.Viewer(ctx, request)
	if err != nil {
		return nil, err
	}

	limit := 0
	if request.Expanded {
		limit = navigation.ExpandedPresenceLimit
	}
	view := c.presenceService.Snapshot(viewer, limit)
	return c.presenceService.Labels().BuildFacePile(view, request.Expanded, CurrentUserID(user)), nil
}

// CurrentUserID is empty for anonymous requests.
func CurrentUserID(user *model.CurrentUser) string {
	if user == nil {
		return ""
	}
	return user.ID
}

type snapshotFunc func(limit int) presence.View

func (f snapshotFunc) Snapshot(limit int) presence.View { return f(limit) }
