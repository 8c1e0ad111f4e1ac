package services

import (
	"math"
	"os"
	"strconv"
)

// EloConfig holds the rating policy knobs (tunable via env)
type EloConfig struct {
	DefaultRating int

	// K-factor taper: new players move fast, established players settle.
	KNew     float64
	KMid     float64
	KStable  float64
	NewGames int64 // below this many games → KNew
	MidGames int64 // below this many games → KMid
}

var DefaultEloConfig = EloConfig{
	DefaultRating: 1000,
	KNew:          40,
	KMid:          32,
	KStable:       24,
	NewGames:      10,
	MidGames:      30,
}

// LoadEloConfig returns the default policy with any env overrides applied
// (DEFAULT_RATING, ELO_K_NEW, ELO_K_MID, ELO_K_STABLE, ELO_K_NEW_GAMES, ELO_K_MID_GAMES).
func LoadEloConfig() EloConfig {
	cfg := DefaultEloConfig
	if v, err := strconv.Atoi(os.Getenv("DEFAULT_RATING")); err == nil && v > 0 {
		cfg.DefaultRating = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("ELO_K_NEW"), 64); err == nil && v > 0 {
		cfg.KNew = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("ELO_K_MID"), 64); err == nil && v > 0 {
		cfg.KMid = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("ELO_K_STABLE"), 64); err == nil && v > 0 {
		cfg.KStable = v
	}
	if v, err := strconv.ParseInt(os.Getenv("ELO_K_NEW_GAMES"), 10, 64); err == nil && v > 0 {
		cfg.NewGames = v
	}
	if v, err := strconv.ParseInt(os.Getenv("ELO_K_MID_GAMES"), 10, 64); err == nil && v > 0 {
		cfg.MidGames = v
	}
	return cfg
}

// KPolicy picks the K-factor from how many rated games a player has played.
type KPolicy func(gamesPlayed int64) float64

func (cfg EloConfig) KPolicy() KPolicy {
	return func(gamesPlayed int64) float64 {
		switch {
		case gamesPlayed < cfg.NewGames:
			return cfg.KNew
		case gamesPlayed < cfg.MidGames:
			return cfg.KMid
		default:
			return cfg.KStable
		}
	}
}

// expectedScore is the standard Elo expectation of ratingA against ratingB.
func expectedScore(ratingA, ratingB int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(ratingB-ratingA)/400.0))
}

// ratingDelta = round(K * (S - E))
func ratingDelta(k, actual, expected float64) int {
	return int(math.Round(k * (actual - expected)))
}
