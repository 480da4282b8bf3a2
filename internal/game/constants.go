package game

import "time"

const (
	// WaitDuration is how long the WAITING phase lasts
	WaitDuration = 10 * time.Second

	// ActiveDuration is how long a round of play lasts
	ActiveDuration = 60 * time.Second

	// EndedDuration is how long the scoreboard is shown before the next round
	EndedDuration = 10 * time.Second

	// PresenceTTL is how long a player stays visible without a position push
	PresenceTTL = 5 * time.Second

	// LeaderboardSize is how many entries the leaderboard returns
	LeaderboardSize = 10

	// GridWidth and GridHeight bound valid harvest coordinates
	GridWidth  = 120
	GridHeight = 120
)

// Store key layout, one set of keys per game instance
func timerKey(instance string) string { return "timer:" + instance }
func harvestedKey(instance string) string { return "harvested-corn:" + instance }
func activeKey(instance string) string { return "active-players:" + instance }
func leaderboardKey(instance string) string { return "leaderboard:" + instance }
func playerKey(instance, user string) string { return "player:" + instance + ":" + user }
