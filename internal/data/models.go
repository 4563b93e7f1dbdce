package data

// Topic represents a single authored article in the database.
type Topic struct {
	ID        int64  `db:"id"`
	Title     string `db:"title"`
	SubjectID int64  `db:"subject_id"`
	Slug      string `db:"slug"`
	Summary   string `db:"summary"`
	Source    string `db:"src"`
	Author    string `db:"author"`
	Hit       int64  `db:"hit"`
	Dateline  int64  `db:"dateline"`
	IsDel     bool   `db:"is_del"`
}

// TopicContent holds a topic's raw markdown and its rendered HTML, 1:1 with Topic.
type TopicContent struct {
	TopicID  int64  `db:"topic_id"`
	Markdown string `db:"md"`
	HTML     string `db:"html"`
}

// Tag represents a free-form label. Names are unique; tags are created on
// demand when a topic references them.
type Tag struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	IsDel bool   `db:"is_del"`
}

// TopicTag is the many-to-many junction between topics and tags. Its soft-delete
// flag mirrors the topic's so a restored topic gets its tag set back.
type TopicTag struct {
	TopicID int64 `db:"topic_id"`
	TagID   int64 `db:"tag_id"`
	IsDel   bool  `db:"is_del"`
}

// Subject is the grouping/category a topic belongs to.
type Subject struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Slug    string `db:"slug"`
	Summary string `db:"summary"`
	IsDel   bool   `db:"is_del"`
}

// Admin is a backend account.
type Admin struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Password string `db:"password"` // bcrypt hash
	IsSys    bool   `db:"is_sys"`
	IsDel    bool   `db:"is_del"`
}

// TopicDetail is the read-side view of a topic joined with its subject,
// content and tag names.
type TopicDetail struct {
	ID          int64
	Title       string
	Slug        string
	Summary     string
	Author      string
	Hit         int64
	Dateline    int64
	HTML        string
	SubjectID   int64
	SubjectName string
	SubjectSlug string
	TagNames    []string
}

// CreateTopic is the authoring input for a new topic. Tags is a single
// comma-separated text field; embedded commas cannot be represented.
type CreateTopic struct {
	Title     string
	SubjectID int64
	Slug      string
	Summary   string
	Source    string
	Author    string
	Markdown  string
	HTML      string
	Tags      string
}

// UpdateTopic is the authoring input for editing an existing topic.
type UpdateTopic struct {
	ID        int64
	Title     string
	SubjectID int64
	Slug      string
	Summary   string
	Source    string
	Author    string
	Markdown  string
	HTML      string
	Tags      string
}
