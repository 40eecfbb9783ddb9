package arena

import (
	"time"
)

type Time struct {
	Time  time.Time
	Dt    time.Duration
	Frame uint64

	// fixed is the simulated frame length; zero follows the wall clock.
	fixed time.Duration
}

// DeltaSeconds is Dt as float32 seconds.
func (t *Time) DeltaSeconds() float32 {
	return float32(t.Dt.Seconds())
}

// TimeModule installs the Time resource. A non-zero FixedDelta makes every frame
// exactly that long, which keeps headless runs deterministic.
type TimeModule struct {
	FixedDelta time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time:  time.Now(),
		Dt:    0,
		fixed: mod.FixedDelta,
	})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func timeSystem(timeResource *Time) {
	if timeResource.fixed > 0 {
		timeResource.Dt = timeResource.fixed
		timeResource.Time = timeResource.Time.Add(timeResource.fixed)
		timeResource.Frame++
		return
	}

	now := time.Now()
	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
	timeResource.Frame++
}
