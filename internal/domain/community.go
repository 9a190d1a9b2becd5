package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrEmptyContent = errors.New("content is required")

type Author struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
}

// InitialsOf builds up to two uppercase initials from a display name.
func InitialsOf(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		out = append(out, []rune(part)[0])
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}

// AuthorFromIdentity credits content to the signed-in user.
func AuthorFromIdentity(id Identity) Author {
	initials := []rune(id.Username)
	if len(initials) > 2 {
		initials = initials[:2]
	}
	return Author{ID: id.UserID, Name: id.Username, Initials: strings.ToUpper(string(initials))}
}

type Question struct {
	ID         string    `json:"_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CategoryID string    `json:"category_id,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	Authors    []Author  `json:"authors"`
	Upvotes    int       `json:"upvotes"`
	Answers    int       `json:"answers"`
	Timestamp  time.Time `json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type QuestionCreate struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	CategoryID string  `json:"category_id,omitempty"`
	SessionID  string  `json:"session_id,omitempty"`
	Author     *Author `json:"author,omitempty"`
}

func (q QuestionCreate) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(q.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

type Answer struct {
	ID         string    `json:"_id"`
	QuestionID string    `json:"question_id"`
	Content    string    `json:"content"`
	Author     Author    `json:"author"`
	Upvotes    int       `json:"upvotes"`
	Timestamp  time.Time `json:"timestamp"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AnswerCreate struct {
	Content string `json:"content"`
	Author  Author `json:"author"`
}

type QuestionSort string

const (
	SortByTimestamp QuestionSort = "timestamp"
	SortByUpvotes   QuestionSort = "upvotes"
)

// QuestionFilter holds list parameters; "all" or empty category means none.
type QuestionFilter struct {
	CategoryID string       `url:"category_id,omitempty"`
	SortBy     QuestionSort `url:"sort_by,omitempty"`
	Skip       int          `url:"skip,omitempty"`
	Limit      int          `url:"limit,omitempty"`
}

const DefaultQuestionLimit = 10

// Normalize applies list defaults.
func (f QuestionFilter) Normalize() QuestionFilter {
	if f.CategoryID == "all" {
		f.CategoryID = ""
	}
	if f.SortBy != SortByUpvotes {
		f.SortBy = SortByTimestamp
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 {
		f.Limit = DefaultQuestionLimit
	}
	return f
}
