package models

// Derived artifacts are generated on demand from a stored record and cached.
// Their shapes follow what the structuring prompts ask the model for.

type Summary struct {
	MainTopic  string            `json:"main_topic"`
	KeyPoints  []string          `json:"key_points"`
	Concepts   map[string]string `json:"concepts"`
	Conclusion string            `json:"conclusion"`
}

type NotesSubsection struct {
	Heading string `json:"heading"`
	Content string `json:"content"`
}

type NotesSection struct {
	Heading     string            `json:"heading"`
	Content     string            `json:"content"`
	KeyConcepts []string          `json:"key_concepts"`
	Subsections []NotesSubsection `json:"subsections"`
}

type Notes struct {
	Title          string         `json:"title"`
	Sections       []NotesSection `json:"sections"`
	Summary        string         `json:"summary"`
	KeyTakeaways   []string       `json:"key_takeaways"`
	StudyTips      []string       `json:"study_tips"`
	FurtherReading []string       `json:"further_reading"`
}

type QuizQuestion struct {
	ID            int               `json:"id"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

type Quiz struct {
	QuizTitle      string         `json:"quiz_title"`
	TotalQuestions int            `json:"total_questions"`
	Questions      []QuizQuestion `json:"questions"`
}

type GraphTopic struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type GraphNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Importance  string `json:"importance"`
}

type GraphLevel struct {
	Level int         `json:"level"`
	Title string      `json:"title"`
	Nodes []GraphNode `json:"nodes"`
}

type GraphRelationship struct {
	Source           string `json:"source"`
	Target           string `json:"target"`
	RelationshipType string `json:"relationship_type"`
	Strength         string `json:"strength"`
}

// ConceptGraph is the hierarchical concept structure used for graph
// visualization of a stored record.
type ConceptGraph struct {
	MainTopic       GraphTopic          `json:"main_topic"`
	HierarchyLevels []GraphLevel        `json:"hierarchy_levels"`
	Relationships   []GraphRelationship `json:"relationships"`
}

type ArtifactRequest struct {
	Language     string `json:"language"`
	NumQuestions int    `json:"num_questions"`
}
