package entities

import "time"

// PlacementCount is the number of finalized placements a session records
const PlacementCount = 6

// Session is one tournament session. At most one session is active at a time.
type Session struct {
	ID                    string
	Number                int
	Active                bool
	Placements            [PlacementCount]*string // 1st..6th, all nil until finalized
	VictoryPointsAssigned bool
	WalletPointsAssigned  bool
	FinalizedAt           *time.Time
	CreatedAt             time.Time
}

// IsFinalized reports whether every placement has been written
func (s *Session) IsFinalized() bool {
	for _, p := range s.Placements {
		if p == nil {
			return false
		}
	}
	return true
}

// HasAnyPlacement reports whether any placement has been written
func (s *Session) HasAnyPlacement() bool {
	for _, p := range s.Placements {
		if p != nil {
			return true
		}
	}
	return false
}

// PlacementIDs returns the finalized player IDs in placement order
func (s *Session) PlacementIDs() []string {
	ids := make([]string, 0, PlacementCount)
	for _, p := range s.Placements {
		if p != nil {
			ids = append(ids, *p)
		}
	}
	return ids
}
