package session

import (
	"time"

	"prize_wheel/internal/model"
)

// presenter turns game effects into session events
type presenter struct {
	s *Session
}

func (p presenter) PlaySound(name string) {
	if name == model.SoundWheelClick {
		p.s.publish(model.Event{Type: model.EventTick})
		return
	}
	p.s.publish(model.Event{Type: model.EventEffect, Effect: model.EffectPlaySound, Sound: name})
}

func (p presenter) StopSound(name string) {
	p.s.publish(model.Event{Type: model.EventEffect, Effect: model.EffectStopSound, Sound: name})
}

func (p presenter) InsertCoin(d time.Duration) {
	p.s.publish(model.Event{Type: model.EventEffect, Effect: model.EffectInsertCoin, Sound: model.SoundCoinDrop, Duration: d})
}

func (p presenter) HideLogo() {
	p.s.publish(model.Event{Type: model.EventEffect, Effect: model.EffectHideLogo})
}

func (p presenter) ShowLogo() {
	p.s.publish(model.Event{Type: model.EventEffect, Effect: model.EffectShowLogo})
}
