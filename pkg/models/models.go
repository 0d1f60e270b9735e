// Package models defines data structures shared across the application.
package models

// CandidateIssue represents an open item returned by the pull request search.
type CandidateIssue struct {
	// Reference is the API URL of the issue (e.g., https://api.github.com/repos/org/repo/issues/11)
	Reference string

	// Body is the issue body text, empty when the author left it blank
	Body string

	// PullRequestReference is the API URL of the linked pull request.
	// Empty means the item is a plain issue.
	PullRequestReference string
}

// IsPullRequest reports whether the issue is backed by a pull request.
func (c CandidateIssue) IsPullRequest() bool {
	return c.PullRequestReference != ""
}

// PullRequestDetail represents the pull request behind a candidate issue.
type PullRequestDetail struct {
	// Reference is the pull request API URL used for updates
	Reference string

	// IsPrivate is the visibility of the repository the pull request targets
	IsPrivate bool

	// RepositoryOwner is the login of the repository owner (e.g., "acme")
	RepositoryOwner string

	// HeadBranchName is the source branch of the pull request (e.g., "feature/123-fix")
	HeadBranchName string
}

// Ticket represents a project tracker item referenced from a branch name.
type Ticket struct {
	// ID is the numeric ticket identifier (e.g., 123)
	ID int

	// Description is the raw rich text or HTML description of the ticket
	Description string
}
