package config

// EventKeyStruct names the routing keys published on the quiz exchange.
type EventKeyStruct struct {
	QuizGenerated string
	QuizReviewed  string
}

var EventKey = &EventKeyStruct{
	QuizGenerated: "quiz.generated",
	QuizReviewed:  "quiz.reviewed",
}
