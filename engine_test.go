package cloudsim

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedEntity is a minimal Entity for exercising the engine in tests: its
// Start/Run/Shutdown behavior is supplied as closures.
type scriptedEntity struct {
	BaseEntity
	onStart    func(e *scriptedEntity, eng *Engine)
	onRun      func(e *scriptedEntity, eng *Engine)
	onShutdown func(e *scriptedEntity, eng *Engine)
	runCount   int
}

func newScriptedEntity(name string) *scriptedEntity {
	return &scriptedEntity{BaseEntity: NewBaseEntity(name)}
}

func (e *scriptedEntity) Start(eng *Engine) {
	if e.onStart != nil {
		e.onStart(e, eng)
	}
}

func (e *scriptedEntity) Run(eng *Engine) {
	e.runCount++
	if e.onRun != nil {
		e.onRun(e, eng)
	}
}

func (e *scriptedEntity) Shutdown(eng *Engine) {
	if e.onShutdown != nil {
		e.onShutdown(e, eng)
	}
}

func TestEngine_EmptyRun_EndsImmediatelyAndRejectsSecondStart(t *testing.T) {
	eng := NewEngine(EngineConfig{})
	err := eng.Start()
	require.NoError(t, err)
	assert.Equal(t, float64(0), eng.Clock())

	err = eng.Start()
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestEngine_SingleSend_DeliversAtScheduledTimeAndTicksClock(t *testing.T) {
	eng := NewEngine(EngineConfig{})

	var ticks []float64
	eng.AddClockTickListener(func(clock float64) { ticks = append(ticks, clock) })

	var delivered *Event
	b := newScriptedEntity("b")
	b.onStart = func(e *scriptedEntity, eng *Engine) {
		eng.Wait(e, nil)
	}
	b.onRun = func(e *scriptedEntity, eng *Engine) {
		if e.EventBuffer() != nil && delivered == nil {
			delivered = e.EventBuffer()
			eng.Wait(e, func(*Event) bool { return false })
		}
	}
	bID, err := eng.Register(b)
	require.NoError(t, err)

	a := newScriptedEntity("a")
	a.onStart = func(e *scriptedEntity, eng *Engine) {
		require.NoError(t, eng.Schedule(e.ID(), bID, 5, 42, "payload"))
		eng.Wait(e, nil)
	}
	_, err = eng.Register(a)
	require.NoError(t, err)

	require.NoError(t, eng.Start())

	require.NotNil(t, delivered)
	assert.Equal(t, 42, delivered.Tag)
	assert.Equal(t, float64(5), eng.Clock())
	assert.Equal(t, []float64{0, 5}, ticks)
}

func TestEngine_SameTimeBatch_PreservesInsertionOrderAndTicksOnce(t *testing.T) {
	eng := NewEngine(EngineConfig{})

	tickCount := map[float64]int{}
	eng.AddClockTickListener(func(clock float64) { tickCount[clock]++ })

	var order []int
	b := newScriptedEntity("b")
	b.onStart = func(e *scriptedEntity, eng *Engine) { eng.Wait(e, nil) }
	b.onRun = func(e *scriptedEntity, eng *Engine) {
		for e.EventBuffer() != nil {
			order = append(order, e.EventBuffer().Tag)
			e.setEventBuffer(eng.Select(e.ID(), nil))
		}
		eng.Wait(e, nil)
	}
	bID, err := eng.Register(b)
	require.NoError(t, err)

	a := newScriptedEntity("a")
	a.onStart = func(e *scriptedEntity, eng *Engine) {
		require.NoError(t, eng.Schedule(e.ID(), bID, 3, 1, nil))
		require.NoError(t, eng.Schedule(e.ID(), bID, 3, 2, nil))
		require.NoError(t, eng.Schedule(e.ID(), bID, 7, 3, nil))
		eng.Wait(e, nil)
	}
	_, err = eng.Register(a)
	require.NoError(t, err)

	require.NoError(t, eng.Start())

	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, 1, tickCount[3])
	assert.Equal(t, 1, tickCount[7])
}

func TestEngine_PauseResume_BlocksUntilExternalResume(t *testing.T) {
	eng := NewEngine(EngineConfig{})

	keepAlive := newScriptedEntity("keepalive")
	keepAlive.onStart = func(e *scriptedEntity, eng *Engine) {
		require.NoError(t, eng.Schedule(e.ID(), e.ID(), 20, 1, nil))
		eng.Wait(e, nil)
	}
	keepAlive.onRun = func(e *scriptedEntity, eng *Engine) {
		if e.EventBuffer() != nil {
			eng.Wait(e, func(*Event) bool { return false })
		}
	}
	_, err := eng.Register(keepAlive)
	require.NoError(t, err)

	assert.True(t, eng.Pause(10))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		require.NoError(t, eng.Start())
	}()

	require.Eventually(t, eng.IsPaused, time.Second, time.Millisecond)
	assert.Equal(t, float64(10), eng.Clock())

	assert.True(t, eng.Resume())
	wg.Wait()

	assert.Equal(t, float64(20), eng.Clock())
}

func TestEngine_CancelFutureEvent_PreventsDelivery(t *testing.T) {
	eng := NewEngine(EngineConfig{})

	delivered := false
	b := newScriptedEntity("b")
	b.onStart = func(e *scriptedEntity, eng *Engine) { eng.Wait(e, nil) }
	b.onRun = func(e *scriptedEntity, eng *Engine) {
		if e.EventBuffer() != nil {
			delivered = true
		}
	}
	bID, err := eng.Register(b)
	require.NoError(t, err)

	a := newScriptedEntity("a")
	a.onStart = func(e *scriptedEntity, eng *Engine) {
		require.NoError(t, eng.Schedule(e.ID(), bID, 10, 1, nil))
		cancelled := eng.Cancel(e.ID(), nil)
		require.NotNil(t, cancelled)
		eng.Wait(e, nil)
	}
	_, err = eng.Register(a)
	require.NoError(t, err)

	require.NoError(t, eng.Start())

	assert.False(t, delivered)
	assert.Equal(t, float64(0), eng.Clock())
}

func TestEngine_UrgentWakeTag_BypassesPredicate(t *testing.T) {
	eng := NewEngine(EngineConfig{})

	var delivered *Event
	b := newScriptedEntity("b")
	neverMatch := func(*Event) bool { return false }
	b.onStart = func(e *scriptedEntity, eng *Engine) { eng.Wait(e, neverMatch) }
	b.onRun = func(e *scriptedEntity, eng *Engine) {
		if e.EventBuffer() != nil && delivered == nil {
			delivered = e.EventBuffer()
			eng.Wait(e, neverMatch)
		}
	}
	bID, err := eng.Register(b)
	require.NoError(t, err)

	a := newScriptedEntity("a")
	a.onStart = func(e *scriptedEntity, eng *Engine) {
		require.NoError(t, eng.Schedule(e.ID(), bID, 1, TagUrgentWake, nil))
		eng.Wait(e, nil)
	}
	_, err = eng.Register(a)
	require.NoError(t, err)

	require.NoError(t, eng.Start())
	require.NotNil(t, delivered)
	assert.Equal(t, TagUrgentWake, delivered.Tag)
}

func TestEngine_Schedule_RejectsNegativeDelay(t *testing.T) {
	eng := NewEngine(EngineConfig{})
	b := newScriptedEntity("b")
	bID, err := eng.Register(b)
	require.NoError(t, err)

	err = eng.Schedule(bID, bID, -1, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestEngine_TerminateAt_StopsBeforeLaterEvents(t *testing.T) {
	eng := NewEngine(EngineConfig{})
	assert.False(t, eng.TerminateAt(0))
	assert.True(t, eng.TerminateAt(50))

	a := newScriptedEntity("a")
	a.onStart = func(e *scriptedEntity, eng *Engine) {
		require.NoError(t, eng.Schedule(e.ID(), e.ID(), 10, 1, nil))
		eng.Wait(e, nil)
	}
	a.onRun = func(e *scriptedEntity, eng *Engine) {
		if e.EventBuffer() != nil {
			e.setEventBuffer(nil)
			require.NoError(t, eng.Schedule(e.ID(), e.ID(), 10, 1, nil))
			eng.Wait(e, nil)
		}
	}
	_, err := eng.Register(a)
	require.NoError(t, err)

	require.NoError(t, eng.Start())
	assert.GreaterOrEqual(t, eng.Clock(), float64(50))
}

func TestEngine_GetEntity_ByIDAndName(t *testing.T) {
	eng := NewEngine(EngineConfig{})
	e := newScriptedEntity("alpha")
	id, err := eng.Register(e)
	require.NoError(t, err)

	got, ok := eng.GetEntity(id)
	assert.True(t, ok)
	assert.Same(t, e, got)

	got, ok = eng.GetEntityByName("alpha")
	assert.True(t, ok)
	assert.Same(t, e, got)

	_, ok = eng.GetEntity(99)
	assert.False(t, ok)
}

func TestEngine_Shutdown_DrainsAllEntitiesExactlyOnceWhenNotAborted(t *testing.T) {
	eng := NewEngine(EngineConfig{})
	shutdownCalls := 0
	e := newScriptedEntity("solo")
	e.onStart = func(e *scriptedEntity, eng *Engine) { eng.Wait(e, nil) }
	e.onShutdown = func(*scriptedEntity, *Engine) { shutdownCalls++ }
	_, err := eng.Register(e)
	require.NoError(t, err)

	require.NoError(t, eng.Start())
	assert.Equal(t, 1, e.runCount)
	assert.Equal(t, 1, shutdownCalls)
	assert.Equal(t, EntityFinished, e.State())
}
