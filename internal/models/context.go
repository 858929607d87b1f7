package models

// UserContext is the personalization snapshot assembled per request. It is
// transient and read-only: never persisted, recomputed on every turn. Fields
// left empty by a failed sub-fetch simply drop out of the prompt.
type UserContext struct {
	Name               string
	ProjectDescription string
	Tier               string
	CompletedLessons   int
	TotalLessons       int
	ModuleTitle        string
	LessonTitle        string
	LessonTranscript   string
	ExerciseSummary    string
}

// RetrievedDocument is one reference excerpt selected by relevance search for
// the current turn. Ephemeral; used only to build the system prompt.
type RetrievedDocument struct {
	ID          string
	Content     string
	Topic       string
	Subtopic    string
	Description string
	Similarity  float32
}
