package services

import (
	"fmt"
	"strings"
)

func buildStructuringPrompt(text, contentType, language string) string {
	var b strings.Builder

	b.WriteString("You are an expert educational content analyzer. Analyze the following ")
	b.WriteString(contentType)
	b.WriteString(" content and organize it into well-formatted, structured educational material")
	if language != "" && !strings.EqualFold(language, "english") {
		fmt.Fprintf(&b, " written in %s", language)
	}
	b.WriteString(".\n\n")

	b.WriteString("Content:\n")
	b.WriteString(text)
	b.WriteString("\n\n")

	b.WriteString(`Respond with ONLY a valid JSON object in this exact format:
{
  "title": "Main title of the content",
  "executive_summary": "2-3 sentence overview of the entire content",
  "introduction": "Brief introduction paragraph",
  "main_sections": [
    {
      "section_title": "Title of this section",
      "content": "Detailed content of this section in clear paragraphs",
      "key_points": ["key point 1", "key point 2"]
    }
  ],
  "key_takeaways": ["takeaway 1", "takeaway 2", "takeaway 3"],
  "conclusion": "Concluding paragraph",
  "concepts_glossary": {"term": "definition"},
  "metadata": {
    "content_type": "` + contentType + `",
    "language": "` + language + `",
    "estimated_read_time": "X minutes"
  }
}

Rules:
- Preserve all important information from the original content
- Break content into logical sections with descriptive titles
- Do not invent facts that are not in the source material
- Do not include any text outside the JSON object`)

	return b.String()
}

func buildSummaryPrompt(text, language string) string {
	var b strings.Builder

	b.WriteString("Summarize the following educational content")
	if language != "" && !strings.EqualFold(language, "english") {
		fmt.Fprintf(&b, " in %s", language)
	}
	b.WriteString(".\n\nContent:\n")
	b.WriteString(text)
	b.WriteString("\n\n")

	b.WriteString(`Respond with ONLY a valid JSON object in this exact format:
{
  "main_topic": "The central topic in one sentence",
  "key_points": ["point 1", "point 2", "point 3"],
  "concepts": {"concept name": "brief explanation"},
  "conclusion": "Short concluding statement"
}

Do not include any text outside the JSON object.`)

	return b.String()
}

func buildNotesPrompt(text, language string) string {
	var b strings.Builder

	b.WriteString("Create detailed, well-organized study notes from the following content")
	if language != "" && !strings.EqualFold(language, "english") {
		fmt.Fprintf(&b, " in %s", language)
	}
	b.WriteString(".\n\nContent:\n")
	b.WriteString(text)
	b.WriteString("\n\n")

	b.WriteString(`Respond with ONLY a valid JSON object in this exact format:
{
  "title": "Notes title",
  "sections": [
    {
      "heading": "Section heading",
      "content": "Explanation in clear study-note form",
      "key_concepts": ["concept 1", "concept 2"],
      "subsections": [
        {"heading": "Subsection heading", "content": "Subsection content"}
      ]
    }
  ],
  "summary": "Brief overall summary",
  "key_takeaways": ["takeaway 1", "takeaway 2"],
  "study_tips": ["tip 1", "tip 2"],
  "further_reading": ["suggested topic 1"]
}

Rules:
- Cover all major topics from the source material
- Use clear, concise language suitable for revision
- Do not include any text outside the JSON object`)

	return b.String()
}

func buildGraphPrompt(text, language string) string {
	var b strings.Builder

	b.WriteString("Create a hierarchical concept structure for graph visualization of the following content")
	if language != "" && !strings.EqualFold(language, "english") {
		fmt.Fprintf(&b, ", with titles and descriptions in %s", language)
	}
	b.WriteString(".\n\nContent:\n")
	b.WriteString(text)
	b.WriteString("\n\n")

	b.WriteString(`Respond with ONLY a valid JSON object in this exact format:
{
  "main_topic": {
    "title": "Main Topic",
    "description": "Brief description"
  },
  "hierarchy_levels": [
    {
      "level": 1,
      "title": "Key Concepts",
      "nodes": [
        {
          "id": "concept_1",
          "title": "First concept",
          "description": "Description",
          "type": "concept",
          "importance": "high"
        }
      ]
    }
  ],
  "relationships": [
    {
      "source": "concept_1",
      "target": "concept_2",
      "relationship_type": "related",
      "strength": "medium"
    }
  ]
}

Rules:
- Node ids must be unique and referenced by the relationships
- importance is one of: high, medium, low
- Derive every node from the source material
- Do not include any text outside the JSON object`)

	return b.String()
}

func buildQuizPrompt(text, language string, numQuestions int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a multiple-choice quiz with exactly %d questions from the following content", numQuestions)
	if language != "" && !strings.EqualFold(language, "english") {
		fmt.Fprintf(&b, ", written in %s", language)
	}
	b.WriteString(".\n\nContent:\n")
	b.WriteString(text)
	b.WriteString("\n\n")

	b.WriteString(`Respond with ONLY a valid JSON object in this exact format:
{
  "quiz_title": "Quiz title",
  "total_questions": ` + fmt.Sprintf("%d", numQuestions) + `,
  "questions": [
    {
      "id": 1,
      "question": "Question text?",
      "options": {"A": "option text", "B": "option text", "C": "option text", "D": "option text"},
      "correct_answer": "A",
      "explanation": "Why this answer is correct"
    }
  ]
}

Rules:
- Every question must have exactly 4 options labeled A, B, C, D
- correct_answer must be one of the option keys
- Questions must be answerable from the source material alone
- Do not include any text outside the JSON object`)

	return b.String()
}
