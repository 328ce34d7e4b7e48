// Package anim implements clip playback with linear cross-fades.
//
// Fades are explicit time-remaining counters advanced by Mixer.Update, so a
// transition never blocks and never depends on wall-clock scheduling.
package anim

// DefaultFadeDuration is the cross-fade length used by Mixer.Play (seconds).
const DefaultFadeDuration = 0.2

// Clip 动画片段定义，随模型资源一起加载
type Clip struct {
	Name     string  `yaml:"name"`
	Duration float64 `yaml:"duration"`
	Loop     bool    `yaml:"loop"`
}

// Action 单个动画片段的播放状态
type Action struct {
	clip Clip

	// Time is the playback position in seconds.
	Time float64
	// Weight is the current blend weight (0..1).
	Weight float64
	// Running reports whether Update advances this action. A non-looping
	// action stops on its last frame and keeps its weight.
	Running bool

	fadeFrom      float64
	fadeTo        float64
	fadeDuration  float64
	fadeRemaining float64
}

func newAction(clip Clip) *Action {
	return &Action{clip: clip}
}

// Clip returns the clip this action plays.
func (a *Action) Clip() Clip {
	return a.clip
}

// Name returns the clip name.
func (a *Action) Name() string {
	return a.clip.Name
}

// Reset rewinds the action to its start and cancels any fade in progress.
func (a *Action) Reset() *Action {
	a.Time = 0
	a.fadeRemaining = 0
	a.fadeDuration = 0
	return a
}

// FadeIn schedules the weight to ramp from 0 to 1 over d seconds.
func (a *Action) FadeIn(d float64) *Action {
	a.Weight = 0
	a.schedule(0, 1, d)
	return a
}

// FadeOut schedules the weight to ramp from its current value to 0 over d
// seconds. The action stops once the fade completes.
func (a *Action) FadeOut(d float64) *Action {
	a.schedule(a.Weight, 0, d)
	return a
}

// Play marks the action as running.
func (a *Action) Play() *Action {
	a.Running = true
	return a
}

// Stop halts playback immediately and zeroes the weight.
func (a *Action) Stop() {
	a.Running = false
	a.Weight = 0
	a.fadeRemaining = 0
}

// Fading reports whether a fade is still in progress.
func (a *Action) Fading() bool {
	return a.fadeRemaining > 0
}

// FadingOut reports whether the action is currently fading towards zero.
func (a *Action) FadingOut() bool {
	return a.Fading() && a.fadeTo == 0
}

// Phase returns the normalized playback position in [0, 1]. It is 1 only
// for a non-looping action that reached its end.
func (a *Action) Phase() float64 {
	if a.clip.Duration <= 0 {
		return 0
	}
	return a.Time / a.clip.Duration
}

func (a *Action) schedule(from, to, d float64) {
	if d <= 0 {
		a.fadeRemaining = 0
		a.setWeight(to)
		return
	}
	a.fadeFrom = from
	a.fadeTo = to
	a.fadeDuration = d
	a.fadeRemaining = d
}

func (a *Action) setWeight(w float64) {
	a.Weight = w
	if w == 0 {
		a.Running = false
	}
}

func (a *Action) update(dt float64) {
	if !a.Running {
		return
	}

	finished := false
	a.Time += dt
	if d := a.clip.Duration; d > 0 && a.Time >= d {
		if a.clip.Loop {
			for a.Time >= d {
				a.Time -= d
			}
		} else {
			a.Time = d
			finished = true
		}
	}

	if a.fadeRemaining > 0 {
		a.fadeRemaining -= dt
		if a.fadeRemaining <= 0 {
			a.fadeRemaining = 0
			a.setWeight(a.fadeTo)
		} else {
			t := a.fadeRemaining / a.fadeDuration
			a.Weight = a.fadeTo + (a.fadeFrom-a.fadeTo)*t
		}
	}

	// 非循环动画停在最后一帧，保持当前权重
	if finished {
		a.Running = false
		a.fadeRemaining = 0
	}
}

// Mixer 动画混合器
// 持有一个模型的全部 Action，并记录当前播放的那一个
type Mixer struct {
	actions map[string]*Action
	order   []string
	current *Action
}

// NewMixer builds one action per clip. Clip names are unique keys: a later
// clip with an existing name replaces the action but keeps the original
// insertion position.
func NewMixer(clips []Clip) *Mixer {
	m := &Mixer{
		actions: make(map[string]*Action, len(clips)),
		order:   make([]string, 0, len(clips)),
	}
	for _, clip := range clips {
		if _, exists := m.actions[clip.Name]; !exists {
			m.order = append(m.order, clip.Name)
		}
		m.actions[clip.Name] = newAction(clip)
	}
	return m
}

// Action looks up an action by clip name.
func (m *Mixer) Action(name string) (*Action, bool) {
	a, ok := m.actions[name]
	return a, ok
}

// Names returns the clip names in insertion order.
func (m *Mixer) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of actions.
func (m *Mixer) Len() int {
	return len(m.order)
}

// Current returns the current action, or nil when nothing is playing.
func (m *Mixer) Current() *Action {
	return m.current
}

// Play switches the current action to name. The previous current action
// fades out over DefaultFadeDuration. An unknown name leaves no current
// action. Playing the current name again restarts it.
func (m *Mixer) Play(name string) *Action {
	if m.current != nil {
		m.current.FadeOut(DefaultFadeDuration)
	}
	m.current = m.actions[name]
	if m.current != nil {
		m.current.Reset().FadeIn(DefaultFadeDuration).Play()
	}
	return m.current
}

// Update advances playback time and fade counters of every action.
func (m *Mixer) Update(dt float64) {
	for _, name := range m.order {
		m.actions[name].update(dt)
	}
}
