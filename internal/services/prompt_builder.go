package services

import (
	"fmt"
	"strings"

	"github.com/pablocarmonaesparza/education-sub001/internal/models"
)

// maxDocumentChars caps how much of each reference excerpt reaches the
// prompt; longer excerpts are cut with an ellipsis marker.
const maxDocumentChars = 1500

const promptRoleDeclaration = "You are a patient, practical programming tutor for an online course platform. " +
	"You help students understand concepts from their current lessons and apply them to their own projects."

const promptRules = `Rules:
- Ground your answers in the reference material and lesson transcript when they are relevant.
- If the provided material does not cover the question, say so before answering from general knowledge.
- Be concise. Prefer short worked examples over long explanations.
- Keep an encouraging tone; never condescend.
- Answer in the language the student writes in.`

// BuildSystemPrompt is a pure function from the assembled context and the
// retrieved documents to the single system-instruction string for this turn.
// Identical inputs always produce byte-identical output: section order is
// fixed and only non-empty context fields contribute lines.
func BuildSystemPrompt(userCtx models.UserContext, docs []models.RetrievedDocument) string {
	var b strings.Builder

	b.WriteString(promptRoleDeclaration)
	b.WriteString("\n")

	facts := contextFacts(userCtx)
	if len(facts) > 0 {
		b.WriteString("\nWhat you know about the student:\n")
		for _, fact := range facts {
			b.WriteString("- ")
			b.WriteString(fact)
			b.WriteString("\n")
		}
	}

	if userCtx.LessonTranscript != "" {
		b.WriteString("\nTranscript of the student's current lesson:\n")
		b.WriteString(userCtx.LessonTranscript)
		b.WriteString("\n")
	}

	if len(docs) > 0 {
		b.WriteString("\nReference material relevant to the student's question:\n")
		for i, doc := range docs {
			heading := doc.Topic
			if doc.Subtopic != "" {
				heading = heading + " / " + doc.Subtopic
			}
			fmt.Fprintf(&b, "\n[%d] %s\n", i+1, heading)
			if doc.Description != "" {
				b.WriteString(doc.Description)
				b.WriteString("\n")
			}
			b.WriteString(truncate(doc.Content, maxDocumentChars))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(promptRules)
	return b.String()
}

// contextFacts renders the known-context lines, skipping empty fields.
func contextFacts(userCtx models.UserContext) []string {
	var facts []string
	if userCtx.Name != "" {
		facts = append(facts, "Name: "+userCtx.Name)
	}
	if userCtx.Tier != "" {
		facts = append(facts, "Subscription tier: "+userCtx.Tier)
	}
	if userCtx.ProjectDescription != "" {
		facts = append(facts, "Personal project: "+userCtx.ProjectDescription)
	}
	if userCtx.TotalLessons > 0 {
		facts = append(facts, fmt.Sprintf("Course progress: %d of %d lessons completed", userCtx.CompletedLessons, userCtx.TotalLessons))
	}
	if userCtx.ModuleTitle != "" {
		facts = append(facts, "Current module: "+userCtx.ModuleTitle)
	}
	if userCtx.LessonTitle != "" {
		facts = append(facts, "Current lesson: "+userCtx.LessonTitle)
	}
	if userCtx.ExerciseSummary != "" {
		facts = append(facts, "Exercises: "+userCtx.ExerciseSummary)
	}
	return facts
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// Cut on a rune boundary so the marker never splits a character.
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
