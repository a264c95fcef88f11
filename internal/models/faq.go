package models

// Category is one FAQ section. Question order is display order and is also
// the tie-break order used by the matcher.
type Category struct {
	ID        string     `bson:"_id"       json:"id"        yaml:"id"`
	Title     string     `bson:"title"     json:"title"     yaml:"title"`
	Order     int        `bson:"order"     json:"-"         yaml:"-"`
	Questions []Question `bson:"questions" json:"questions" yaml:"questions"`
}

// Question is a single FAQ entry. IDs are unique across the whole corpus.
type Question struct {
	ID          string   `bson:"id"           json:"id"                    yaml:"id"`
	Question    string   `bson:"question"     json:"question"              yaml:"question"`
	Answer      string   `bson:"answer"       json:"answer"                yaml:"answer"`
	Keywords    []string `bson:"keywords"     json:"keywords"              yaml:"keywords,omitempty"`
	Related     []string `bson:"related"      json:"related"               yaml:"related,omitempty"`
	LastUpdated string   `bson:"last_updated" json:"lastUpdated"           yaml:"lastUpdated,omitempty"`
	Popularity  int      `bson:"popularity"   json:"popularity"            yaml:"popularity,omitempty"`
	IsFrequent  bool     `bson:"is_frequent"  json:"isFrequent"            yaml:"isFrequent,omitempty"`
}

// Contact lists the support channels advertised in the corpus metadata.
type Contact struct {
	Phone    string `bson:"phone"    json:"phone"    yaml:"phone"`
	Facebook string `bson:"facebook" json:"facebook" yaml:"facebook"`
	Zalo     string `bson:"zalo"     json:"zalo"     yaml:"zalo"`
}

// Metadata describes the corpus as a whole.
type Metadata struct {
	LastUpdated   string   `bson:"last_updated"   json:"lastUpdated"       yaml:"lastUpdated"`
	Version       string   `bson:"version"        json:"version"           yaml:"version"`
	SchemaVersion int      `bson:"schema_version" json:"schemaVersion"     yaml:"schemaVersion"`
	MaxQuestions  int      `bson:"max_questions"  json:"maxQuestions"      yaml:"maxQuestions"`
	Contact       *Contact `bson:"contact"        json:"contact,omitempty" yaml:"contact,omitempty"`
}

// Corpus is the full FAQ content set.
type Corpus struct {
	Categories []Category `json:"categories" yaml:"categories"`
	Metadata   Metadata   `json:"metadata"   yaml:"metadata"`
}

// QuestionCount returns the number of questions across all categories.
func (c Corpus) QuestionCount() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Questions)
	}
	return n
}

// Clone returns a deep copy so callers can hand the corpus to another
// goroutine (persistence, index build) without sharing slices.
func (c Corpus) Clone() Corpus {
	out := Corpus{Metadata: c.Metadata}
	if c.Metadata.Contact != nil {
		contact := *c.Metadata.Contact
		out.Metadata.Contact = &contact
	}
	out.Categories = make([]Category, len(c.Categories))
	for i, cat := range c.Categories {
		cp := cat
		cp.Questions = make([]Question, len(cat.Questions))
		for j, q := range cat.Questions {
			cp.Questions[j] = q.Clone()
		}
		out.Categories[i] = cp
	}
	return out
}

// Clone returns a copy of q with its own keyword and related slices.
func (q Question) Clone() Question {
	cp := q
	if q.Keywords != nil {
		cp.Keywords = append(make([]string, 0, len(q.Keywords)), q.Keywords...)
	}
	if q.Related != nil {
		cp.Related = append(make([]string, 0, len(q.Related)), q.Related...)
	}
	return cp
}

// CategorySummary is the list view of a category.
type CategorySummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"questionCount"`
}

// QuestionSummary is the list view of a question inside a category.
type QuestionSummary struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	LastUpdated string `json:"lastUpdated"`
}

// CategoryRef identifies the category that owns a question.
type CategoryRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// QuestionDetail is a question merged with its owning category.
type QuestionDetail struct {
	Question
	Category CategoryRef `json:"category"`
}

// Suggestion is a frequently asked question offered to the user.
type Suggestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}
