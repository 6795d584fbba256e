package model

import "time"

// Attempt records one graded submission.
type Attempt struct {
	ID            string
	PlayerID      string
	SimulationID  int
	Category      Category
	Difficulty    Difficulty
	Successful    bool
	TotalSelected string
	SubmittedAt   time.Time
}

// Completion records the first successful attempt of a simulation by a player.
type Completion struct {
	PlayerID     string
	SimulationID int
	Category     Category
	Difficulty   Difficulty
	XP           int
	CompletedAt  time.Time
}

// ProgressStats aggregates a player's attempts and completions.
type ProgressStats struct {
	Attempts      int
	Successes     int
	SuccessRate   float64
	Completions   int
	TotalXP       int
	XPByCategory  map[Category]int
	ByDifficulty  map[Difficulty]int
	LastAttemptAt time.Time
}
