// Package prompt builds the instruction text sent to the generation
// backend. All builders are pure string functions; topic and grounding
// text are embedded verbatim, without validation or escaping.
package prompt

import (
	"fmt"
	"strings"
)

// BuildQuestion produces the instruction for generating one oral-exam
// scenario question on the given topic. If grounding text is supplied it
// is embedded verbatim and marked as authoritative: the model is told to
// base the question on it rather than on its own background knowledge.
func BuildQuestion(topic, grounding string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an examiner for a school-principal selection oral exam. "+
		"Write exactly one situational interview question on the topic of %s.\n\n", topic)

	if grounding != "" {
		b.WriteString("Use the following reference material as the authoritative source. " +
			"Where it conflicts with your own knowledge, the reference material wins:\n" +
			"--- REFERENCE ---\n")
		b.WriteString(grounding)
		b.WriteString("\n--- END REFERENCE ---\n\n")
	}

	b.WriteString("Constraints:\n" +
		"- The question must describe a concrete school scenario and end with what the candidate would do.\n" +
		"- At most 120 words.\n" +
		"- Output the question only. No preamble, no headings, no commentary.\n")

	return b.String()
}

// BuildEvaluation produces the instruction for scoring a candidate's
// answer against the question it was given. The rubric ends with an
// explicit "NN/25" overall score line that the history recorder extracts.
func BuildEvaluation(question, answer string) string {
	var b strings.Builder

	b.WriteString("You are scoring a school-principal oral exam answer.\n\n")
	fmt.Fprintf(&b, "Question:\n%s\n\n", question)
	fmt.Fprintf(&b, "Candidate answer:\n%s\n\n", answer)
	b.WriteString("Evaluate the answer on policy understanding, feasibility, structure " +
		"and leadership perspective. Give two or three short paragraphs of feedback, " +
		"then finish with a single line of the form \"Overall score: NN/25\" where NN " +
		"is a whole number between 0 and 25. Do not add anything after that line.\n")

	return b.String()
}

// BuildOutline produces the instruction for a short answer-outline hint
// for the given question.
func BuildOutline(question string) string {
	var b strings.Builder

	b.WriteString("Suggest a concise answer outline for the following school-principal " +
		"oral exam question. Give three to five numbered points, one line each, " +
		"no introduction and no closing remarks.\n\n")
	fmt.Fprintf(&b, "Question:\n%s\n", question)

	return b.String()
}
