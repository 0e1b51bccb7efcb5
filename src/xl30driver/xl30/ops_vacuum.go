package xl30

const opVacuumControl byte = 113

const (
	vacuumActionPump     byte = 0
	vacuumActionVent     byte = 1
	vacuumActionStopVent byte = 2
)

// Pump starts pumping the chamber down to vacuum.
func (s *Session) Pump() error {
	return s.call("pump", func() error {
		_, err := s.transact("pump", opVacuumControl, []byte{vacuumActionPump, 0, 0, 0})
		return err
	})
}

// Vent vents the chamber to atmosphere.
func (s *Session) Vent() error {
	return s.call("vent", func() error {
		_, err := s.transact("vent", opVacuumControl, []byte{vacuumActionVent, 0, 0, 0})
		return err
	})
}

// StopVent halts an in-progress vent.
func (s *Session) StopVent() error {
	return s.call("stop_vent", func() error {
		_, err := s.transact("stop_vent", opVacuumControl, []byte{vacuumActionStopVent, 0, 0, 0})
		return err
	})
}
