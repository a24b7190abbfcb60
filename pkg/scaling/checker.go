package scaling

import (
	"time"

	"autoscaler/object"
	"autoscaler/pkg/applications"
)

type decision int

const (
	decideNone decision = iota
	decideUp
	decideDown
)

/*
Checker evaluates applications against their threshold configuration.
ChooseScalingAction is pure apart from reading the clock; it never
mutates the app. Callers must hold the app's mutex.
*/
type Checker struct {
	// StaticScalingSize is the instance count added or subtracted per action.
	StaticScalingSize int
	// ScalerInterval is the scaler loop period, the unit of the learning window.
	ScalerInterval time.Duration
}

func NewChecker(staticScalingSize int, scalerInterval time.Duration) *Checker {
	if staticScalingSize <= 0 {
		staticScalingSize = 1
	}
	return &Checker{StaticScalingSize: staticScalingSize, ScalerInterval: scalerInterval}
}

func decide(value, upper, lower int64) decision {
	if value > upper {
		return decideUp
	}
	if value < lower {
		return decideDown
	}
	return decideNone
}

func (c *Checker) decideCpu(app *applications.ScalableApp) (decision, bool) {
	value, ok := app.ValueOfCpu()
	if !ok {
		return decideNone, false
	}
	return decide(int64(value), app.Cpu().UpperLimit(), app.Cpu().LowerLimit()), true
}

func (c *Checker) decideRam(app *applications.ScalableApp) (decision, bool) {
	value, ok := app.ValueOfRam()
	if !ok {
		return decideNone, false
	}
	return decide(value, app.Ram().UpperLimit(), app.Ram().LowerLimit()), true
}

func (c *Checker) decideRequests(app *applications.ScalableApp) (decision, bool) {
	value, ok := app.ValueOfRequests()
	if !ok {
		return decideNone, false
	}
	return decide(int64(value), app.Request().UpperLimit(), app.Request().LowerLimit()), true
}

func (c *Checker) decideLatency(app *applications.ScalableApp) (decision, bool) {
	value, ok := app.ValueOfLatency()
	if !ok {
		return decideNone, false
	}
	return decide(int64(value), app.Latency().UpperLimit(), app.Latency().LowerLimit()), true
}

type dimDecision struct {
	d      decision
	reason string
}

// evaluate runs every component check in priority order, dropping the
// components without a usable sample.
func (c *Checker) evaluate(app *applications.ScalableApp) []dimDecision {
	decisions := make([]dimDecision, 0, 4)
	if d, ok := c.decideCpu(app); ok {
		decisions = append(decisions, dimDecision{d, ReasonCpu})
	}
	if d, ok := c.decideRam(app); ok {
		decisions = append(decisions, dimDecision{d, ReasonRam})
	}
	if d, ok := c.decideRequests(app); ok {
		decisions = append(decisions, dimDecision{d, ReasonHttp})
	}
	if d, ok := c.decideLatency(app); ok {
		decisions = append(decisions, dimDecision{d, ReasonLatency})
	}
	return decisions
}

func (c *Checker) actionFor(app *applications.ScalableApp, d decision, reason string) *ScalingAction {
	old := app.CurrentInstanceCount()
	action := &ScalingAction{
		App:          app,
		OldInstances: old,
		NewInstances: old,
		Reason:       reason,
		NeedsScaling: false,
	}
	switch d {
	case decideUp:
		action.NewInstances = old + c.StaticScalingSize
		action.NeedsScaling = true
		action.Description = reason + " above upper limit"
	case decideDown:
		action.NewInstances = old - c.StaticScalingSize
		action.NeedsScaling = true
		action.Description = reason + " below lower limit"
	default:
		action.Reason = ReasonNone
	}
	return action
}

// ChooseScalingActionForCpu evaluates the cpu dimension on its own.
func (c *Checker) ChooseScalingActionForCpu(app *applications.ScalableApp) *ScalingAction {
	d, _ := c.decideCpu(app)
	return c.actionFor(app, d, ReasonCpu)
}

// ChooseScalingActionForRam evaluates the ram dimension on its own.
func (c *Checker) ChooseScalingActionForRam(app *applications.ScalableApp) *ScalingAction {
	d, _ := c.decideRam(app)
	return c.actionFor(app, d, ReasonRam)
}

// ChooseScalingActionForRequests evaluates the request dimension on its own.
func (c *Checker) ChooseScalingActionForRequests(app *applications.ScalableApp) *ScalingAction {
	d, _ := c.decideRequests(app)
	return c.actionFor(app, d, ReasonHttp)
}

// ChooseScalingActionForLatency evaluates the latency dimension on its own.
func (c *Checker) ChooseScalingActionForLatency(app *applications.ScalableApp) *ScalingAction {
	d, _ := c.decideLatency(app)
	return c.actionFor(app, d, ReasonLatency)
}

/*
ChooseScalingAction composes the per-component checks into one action:

 1. NONE while the cooldown since the last confirmed scale has not elapsed.
 2. NONE while the learning window (learningTimeMultiplier scaler periods
    since learningStartTime) has not elapsed.
 3. Upscale if any component is above its upper limit, reason being the
    first such component in the order cpu, ram, http, latency.
 4. Downscale only if every component with a usable sample is below its
    lower limit, reason being the first of them in the same order.
 5. With quotient scaling enabled and the quotient below minQuotient, the
    only permitted action is a downscale to minInstances.
 6. The target count is clamped to [minInstances, maxInstances]; a clamp
    to the old count degrades the action to NONE.
*/
func (c *Checker) ChooseScalingAction(app *applications.ScalableApp) *ScalingAction {
	now := object.NowMillis()
	old := app.CurrentInstanceCount()

	none := func(description string) *ScalingAction {
		return &ScalingAction{
			App:          app,
			OldInstances: old,
			NewInstances: old,
			Reason:       ReasonNone,
			NeedsScaling: false,
			Description:  description,
		}
	}

	if now-app.LastScalingTime() < app.CooldownTime() {
		return none("cooldown not elapsed")
	}
	learningWindow := int64(app.LearningTimeMultiplier()) * c.ScalerInterval.Milliseconds()
	if now-app.LearningStartTime() < learningWindow {
		return none("still in learning phase")
	}

	// Components without a usable sample are skipped: they can neither
	// trigger an upscale nor veto a downscale.
	decisions := c.evaluate(app)

	var action *ScalingAction
	for _, entry := range decisions {
		if entry.d == decideUp {
			action = c.actionFor(app, decideUp, entry.reason)
			break
		}
	}
	if action == nil && len(decisions) > 0 {
		allDown := true
		for _, entry := range decisions {
			if entry.d != decideDown {
				allDown = false
				break
			}
		}
		if allDown {
			action = c.actionFor(app, decideDown, decisions[0].reason)
		}
	}

	quotientGate := app.Request().QuotientScalingEnabled() && app.Request().Quotient() < app.MinQuotient()
	if quotientGate {
		if action == nil || !action.IsDownscale() {
			return none("quotient below minimum, scaling suppressed")
		}
		action.NewInstances = app.MinInstances()
		action.Reason = ReasonQuotient
		action.Description = "quotient below minimum, scaling down to minimum instances"
	}

	if action == nil {
		return none("all components within limits")
	}

	if action.NewInstances > app.MaxInstances() {
		action.NewInstances = app.MaxInstances()
	}
	if action.NewInstances < app.MinInstances() {
		action.NewInstances = app.MinInstances()
	}
	if action.NewInstances == action.OldInstances {
		return none("target instance count equals current count")
	}
	return action
}
