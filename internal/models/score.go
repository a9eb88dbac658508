package models

import "math"

// Answers maps an item id to the user's answer
type Answers map[int]string

// Clone returns an independent copy
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Score is the outcome of a quiz
type Score struct {
	Correct int `json:"correct_count"`
	Total   int `json:"total"`
}

// Percentage returns the rounded share of correct answers.
// ok is false when there is nothing to score.
func (s Score) Percentage() (pct int, ok bool) {
	if s.Total <= 0 {
		return 0, false
	}
	return int(math.Round(float64(s.Correct) / float64(s.Total) * 100)), true
}
