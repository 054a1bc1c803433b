package generator

import (
	"fmt"
	"strings"

	"github.com/ramgerassy/ace-ai-sub001/internal/model"
	"github.com/ramgerassy/ace-ai-sub001/internal/scoring"
)

func subjectPrompt(subject string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Is %q a recognised academic or professional subject suitable for a quiz?\n\n", subject))
	sb.WriteString("- If yes, set valid to true and return its canonical spelling as subject.\n")
	sb.WriteString("- If no, set valid to false and return exactly 5 closely related valid subjects as suggestions.\n")
	sb.WriteString("- Use the submit_subject_verdict tool.\n")
	return sb.String()
}

func subSubjectPrompt(subject, subSubject string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Is %q a meaningful topic within the subject %q?\n\n", subSubject, subject))
	sb.WriteString("- If yes, set valid to true and return the canonical spellings of subject and subSubject.\n")
	sb.WriteString("- If no, set valid to false and return up to 5 related topics of the subject as suggestions.\n")
	sb.WriteString("- Use the submit_sub_subject_verdict tool.\n")
	return sb.String()
}

func quizPrompt(req model.GenerateQuizRequest) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generate %d multiple choice questions about: %s\n\n", model.QuestionsPerQuiz, req.Subject))

	if len(req.SubSubjects) > 0 {
		sb.WriteString(fmt.Sprintf("Focus on these topics: %s\n\n", strings.Join(req.SubSubjects, ", ")))
	}
	sb.WriteString(fmt.Sprintf("Difficulty level: %s\n\n", req.Level))

	sb.WriteString("Requirements:\n")
	sb.WriteString(fmt.Sprintf("- Number the questions 1 to %d in questionNum\n", model.QuestionsPerQuiz))
	sb.WriteString(fmt.Sprintf("- Each question must have exactly %d possible answers\n", model.OptionsPerQuestion))
	sb.WriteString("- correctAnswer lists the 0-based index of every correct option; some questions may have several\n")
	sb.WriteString("- Question text must be between 10 and 500 characters\n")
	sb.WriteString("- Incorrect options should be plausible but clearly wrong\n")
	sb.WriteString("- Use the submit_questions tool to return your questions\n")
	return sb.String()
}

func explainPrompt(reqs []scoring.ExplanationRequest) string {
	var sb strings.Builder
	sb.WriteString("Explain the correct answer of each question below to the learner who took the quiz.\n")
	sb.WriteString("Mention why their selection was right or wrong. Keep each explanation under 1000 characters.\n\n")

	for _, r := range reqs {
		sb.WriteString(fmt.Sprintf("Question %d: %s\n", r.QuestionNum, r.Question))
		for i, option := range r.PossibleAnswers {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i, option))
		}
		sb.WriteString(fmt.Sprintf("Correct: %s\n", formatIndices(r.CorrectAnswer)))
		sb.WriteString(fmt.Sprintf("Learner selected: %s\n\n", formatIndices(r.UserAnswer)))
	}
	sb.WriteString("Use the submit_explanations tool.\n")
	return sb.String()
}

func reflectPrompt(f scoring.ReflectionFacts) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("A learner scored %d%% (%d of %d correct) on a quiz.\n",
		f.Score, f.CorrectAnswers, f.TotalQuestions))
	if len(f.IncorrectQuestionNums) > 0 {
		sb.WriteString(fmt.Sprintf("They missed questions %s.\n", formatIndices(f.IncorrectQuestionNums)))
	}
	sb.WriteString("Write an encouraging reflection between 100 and 1000 characters with concrete next steps.\n")
	sb.WriteString("Use the submit_reflection tool.\n")
	return sb.String()
}

func formatIndices(xs []int) string {
	if len(xs) == 0 {
		return "none"
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
