package splash

// AlphaScales are the opacity steps of the fade, in percent, lowest first.
// The last entry is the opacity of a freshly shown surface.
var AlphaScales = [...]int{0, 30, 47, 62, 75, 85, 93, 100}

// fadeStep advances the fade by one tick. Index 0 is never rendered: the tick
// that would reach it closes the surface instead.
func (s *Screen) fadeStep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fire(eventTick)
	if s.alphaIndex <= 0 {
		violation("tick at alpha index 0", s.state)
	}

	s.alphaIndex--
	if s.alphaIndex > 0 {
		if err := s.surface.SetTransparency(AlphaScales[s.alphaIndex]); err != nil {
			s.logger.Printf("splash: SetTransparency failed: %v", err)
		}
		return
	}

	s.surface.KillTimer(FadeTimerID)
	s.timerArmed = false
	s.closeLocked()
}
