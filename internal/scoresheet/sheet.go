// Package scoresheet keeps the running scores of a multi-round game.
//
// A sheet holds one score per player per round. A player wins a round only
// with the single highest score, and only if that score is positive.
// Sheets persist to a key/value Store under the faraway_* keys.
package scoresheet

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNoPlayers is returned when a sheet is created without players.
	ErrNoPlayers = errors.New("at least one player is required")

	// ErrOutOfRange is returned for an unknown player or round.
	ErrOutOfRange = errors.New("player or round out of range")
)

// Sheet is the score table of one game.
type Sheet struct {
	ID      string   `json:"id"`
	Players []string `json:"players"`
	// Scores[p][r] is the score of player p in round r.
	Scores [][]int `json:"scores"`
	Rounds int     `json:"rounds"`
}

// New creates a sheet with one empty round.
func New(players []string) (*Sheet, error) {
	if len(players) == 0 {
		return nil, ErrNoPlayers
	}
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = strings.TrimSpace(p)
		if names[i] == "" {
			return nil, fmt.Errorf("player %d has no name", i+1)
		}
	}
	s := &Sheet{ID: uuid.NewString(), Players: names, Rounds: 1}
	s.Scores = make([][]int, len(names))
	for i := range s.Scores {
		s.Scores[i] = make([]int, s.Rounds)
	}
	return s, nil
}

// AddRound appends a round with every score at 0 and returns its index.
func (s *Sheet) AddRound() int {
	s.Rounds++
	for i := range s.Scores {
		s.Scores[i] = append(s.Scores[i], 0)
	}
	return s.Rounds - 1
}

// PlayerIndex returns the index of the named player, or -1.
func (s *Sheet) PlayerIndex(name string) int {
	for i, p := range s.Players {
		if strings.EqualFold(p, strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// SetScore records a score. Rounds are 0-based.
func (s *Sheet) SetScore(player, round, score int) error {
	if !s.valid(player, round) {
		return fmt.Errorf("%w: player %d, round %d", ErrOutOfRange, player, round)
	}
	s.Scores[player][round] = score
	return nil
}

func (s *Sheet) valid(player, round int) bool {
	return player >= 0 && player < len(s.Players) && round >= 0 && round < s.Rounds
}

// roundWinner returns the player with the unique positive maximum of round.
func (s *Sheet) roundWinner(round int) (int, bool) {
	best, winner, count := 0, -1, 0
	for p := range s.Players {
		score := s.Scores[p][round]
		switch {
		case score > best:
			best, winner, count = score, p, 1
		case score == best && score > 0:
			count++
		}
	}
	return winner, count == 1
}

// IsRoundWinner reports whether player won round outright.
func (s *Sheet) IsRoundWinner(player, round int) bool {
	if !s.valid(player, round) {
		return false
	}
	w, ok := s.roundWinner(round)
	return ok && w == player
}

// Wins counts the rounds player won outright.
func (s *Sheet) Wins(player int) int {
	wins := 0
	for r := 0; r < s.Rounds; r++ {
		if s.IsRoundWinner(player, r) {
			wins++
		}
	}
	return wins
}

// Total sums the scores of player.
func (s *Sheet) Total(player int) int {
	if player < 0 || player >= len(s.Scores) {
		return 0
	}
	total := 0
	for _, v := range s.Scores[player] {
		total += v
	}
	return total
}

// Average is the mean score of player per round, rounded to one decimal.
func (s *Sheet) Average(player int) float64 {
	if s.Rounds == 0 {
		return 0
	}
	avg := float64(s.Total(player)) / float64(s.Rounds)
	return math.Round(avg*10) / 10
}

// PlayerSummary is one row of Summary.
type PlayerSummary struct {
	Name    string  `json:"name"`
	Total   int     `json:"total"`
	Average float64 `json:"average"`
	Wins    int     `json:"wins"`
	Scores  []int   `json:"scores"`
}

// Summary returns one row per player in sheet order.
func (s *Sheet) Summary() []PlayerSummary {
	out := make([]PlayerSummary, len(s.Players))
	for i, p := range s.Players {
		out[i] = PlayerSummary{
			Name:    p,
			Total:   s.Total(i),
			Average: s.Average(i),
			Wins:    s.Wins(i),
			Scores:  append([]int(nil), s.Scores[i]...),
		}
	}
	return out
}

// validate checks that Scores matches Players and Rounds.
func (s *Sheet) validate() error {
	if len(s.Players) == 0 {
		return ErrNoPlayers
	}
	if len(s.Scores) != len(s.Players) {
		return fmt.Errorf("scores for %d players, sheet has %d", len(s.Scores), len(s.Players))
	}
	for i, row := range s.Scores {
		if len(row) != s.Rounds {
			return fmt.Errorf("player %s has %d scores, sheet has %d rounds", s.Players[i], len(row), s.Rounds)
		}
	}
	return nil
}
