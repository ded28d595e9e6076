package curlfield

import (
	"bytes"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

// funcModule installs whatever its function does.
type funcModule func(app *App, cmd *Commands)

func (f funcModule) Install(app *App, cmd *Commands) { f(app, cmd) }

func TestApp_changeState(t *testing.T) {
	app := &App{
		stateful:     true,
		initialState: 1,
		state:        1,
		finalState:   2,
	}

	app.changeState(2)
	if app.nextState != State(2) {
		t.Errorf("The nextState should be set correctly.")
	}
	if !app.stateTransitioning {
		t.Errorf("The stateTransitioning flag should be true.")
	}

	app.executeChangeState(2)
	if app.state != State(2) {
		t.Errorf("The app state should change correctly.")
	}
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	require.Panics(t, func() {
		app.addResources(MockResource2{name: "by value"})
	})
}

func TestResource(t *testing.T) {
	app := newApp()
	app.addResources(NewMockResource1("one"))

	r, ok := Resource[MockResource1](app)
	require.True(t, ok)
	assert.Equal(t, "one", r.name)

	_, ok = Resource[MockResource2](app)
	assert.False(t, ok)
}

func TestApp_Tick_InjectsResources(t *testing.T) {
	var seen *MockResource1
	var sawCommands bool
	app := NewAppBuilder().
		UseModule(funcModule(func(app *App, cmd *Commands) {
			cmd.AddResources(NewMockResource1("injected"))
			app.UseSystem(System(func(r *MockResource1, c *Commands, l Logger) {
				seen = r
				sawCommands = c != nil
				l.Infof("logger falls back to a no-op")
			}))
		})).
		Build()

	require.True(t, app.Tick())
	require.NotNil(t, seen)
	assert.Equal(t, "injected", seen.name)
	assert.True(t, sawCommands)
	assert.Equal(t, uint64(1), app.Frame())
}

func TestApp_Tick_UnresolvedDependencyPanics(t *testing.T) {
	app := NewAppBuilder().
		UseModule(funcModule(func(app *App, cmd *Commands) {
			app.UseSystem(System(func(r *MockResource2) {}))
		})).
		Build()

	assert.Panics(t, func() { app.Tick() })
}

func TestApp_StageOrder(t *testing.T) {
	var order []string
	record := func(name string) func() {
		return func() { order = append(order, name) }
	}
	app := NewAppBuilder().
		UseModule(funcModule(func(app *App, cmd *Commands) {
			app.UseSystem(System(record("render")).InStage(Render))
			app.UseSystem(System(record("prelude")).InStage(Prelude))
			app.UseSystem(System(record("update")))
			app.UseStage(Stage{Name: "Physics"}, AfterStage(Update))
			app.UseSystem(System(record("physics")).InStage(Stage{Name: "Physics"}))
		})).
		Build()

	app.Tick()
	assert.Equal(t, []string{"prelude", "update", "physics", "render"}, order)
}

func TestApp_UseStage_Duplicate(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.PanicsWithValue(t, "Stage Update already exists", func() {
		app.UseStage(Update, AfterStage(Prelude))
	})
	assert.PanicsWithValue(t, "Stage Missing not found", func() {
		app.UseStage(Stage{Name: "Extra"}, BeforeStage(Stage{Name: "Missing"}))
	})
}

func TestApp_StatefulSystemInStatelessApp(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.Panics(t, func() {
		app.UseSystem(System(func() {}).InState(OnExecute(StateRunning)))
	})
}

func TestApp_StateTransitions(t *testing.T) {
	var events []string
	on := func(name string) func() {
		return func() { events = append(events, name) }
	}
	app := NewAppBuilder().
		UseStates(StateRunning, StateExiting).
		UseModule(funcModule(func(app *App, cmd *Commands) {
			app.UseSystem(System(on("enter running")).InState(OnEnter(StateRunning)))
			app.UseSystem(System(on("running")).InState(OnExecute(StateRunning)))
			app.UseSystem(System(on("exit running")).InState(OnExit(StateRunning)))
			app.UseSystem(System(on("enter paused")).InState(OnEnter(StatePaused)))
			app.UseSystem(System(on("paused")).InState(OnExecute(StatePaused)))
			app.UseSystem(System(on("exit exiting")).InState(OnExit(StateExiting)))
		})).
		Build()

	require.True(t, app.Tick())
	app.Commands().ChangeState(StatePaused)
	assert.Equal(t, StatePaused, app.Commands().State(), "pending state is visible to systems")
	assert.Equal(t, StateRunning, app.State())
	require.True(t, app.Tick())
	assert.Equal(t, StatePaused, app.State())
	require.True(t, app.Tick())

	app.Commands().ChangeState(StateExiting)
	assert.False(t, app.Tick())
	assert.True(t, app.Finished())
	assert.False(t, app.Tick(), "a finished app stays finished")

	assert.Equal(t, []string{
		"enter running", "running",
		"running", "exit running", "enter paused",
		"paused",
		"paused", "exit exiting",
	}, events)
}

func TestApp_ChangeStateToSameStateIsNoop(t *testing.T) {
	entered := 0
	app := NewAppBuilder().
		UseStates(StateRunning, StateExiting).
		UseModule(funcModule(func(app *App, cmd *Commands) {
			app.UseSystem(System(func() { entered++ }).InState(OnEnter(StateRunning)))
		})).
		Build()

	app.Tick()
	app.Commands().ChangeState(StateRunning)
	app.Tick()
	assert.Equal(t, 1, entered)
}

func TestApp_Logger(t *testing.T) {
	assert.NotNil(t, (*App)(nil).Logger())
	assert.NotNil(t, NewAppBuilder().Build().Logger())

	var out bytes.Buffer
	app := NewAppBuilder().
		UseModule(LoggingModule{Prefix: "test", Out: &out, Err: &out}).
		Build()
	app.Logger().Infof("hello %d", 42)
	assert.Contains(t, out.String(), "hello 42")
	assert.Contains(t, out.String(), "test")
}
