// internal/quiz/score.go
package quiz

// AnswerSet maps question ids to raw answers supplied by the quiz UI.
// Values may be archetype labels (forced-choice questions), numbers (rating
// questions) or free text; the set is untrusted and may be sparse.
type AnswerSet map[string]interface{}

// Tally counts one vote per answered forced-choice question.
type Tally map[Archetype]int

// scoringQuestions are the forced-choice question ids. Rating (q5) and
// open-text (q7, q8) answers never contribute to the tally.
var scoringQuestions = []string{"q1", "q2", "q3", "q4", "q6"}

// ScoringQuestionCount returns the number of forced-choice questions.
func ScoringQuestionCount() int {
	return len(scoringQuestions)
}

// Score converts an answer set into the winning archetype. It is total over
// any input: unknown ids, missing answers and non-label values are skipped,
// and an empty tally yields DefaultArchetype. Ties resolve to the archetype
// declared earliest in the canonical order.
func Score(answers AnswerSet) Archetype {
	winner, _ := ScoreWithTally(answers)
	return winner
}

// ScoreWithTally is Score plus the per-archetype vote counts, for callers
// that surface the breakdown.
func ScoreWithTally(answers AnswerSet) (Archetype, Tally) {
	tally := make(Tally, len(archetypeOrder))
	for _, a := range archetypeOrder {
		tally[a] = 0
	}

	for _, qid := range scoringQuestions {
		val, ok := answers[qid]
		if !ok {
			continue
		}
		label, ok := val.(string)
		if !ok {
			continue
		}
		a := Archetype(label)
		if _, known := tally[a]; known {
			tally[a]++
		}
	}

	winner := DefaultArchetype
	max := 0
	for _, a := range archetypeOrder {
		if tally[a] > max {
			max = tally[a]
			winner = a
		}
	}
	return winner, tally
}
