package core

const (
	AppName       = "hubgram"
	UserAgent     = "hubgram/0.1"
	RepositoryURL = "https://github.com/sandevgo/hubgram"
	Version       = "0.1.0"
)

// EventType is a GitHub webhook event name as sent in X-GitHub-Event.
type EventType string

const (
	EventPing                     EventType = "ping"
	EventIssues                   EventType = "issues"
	EventIssueComment             EventType = "issue_comment"
	EventPullRequest              EventType = "pull_request"
	EventPullRequestReview        EventType = "pull_request_review"
	EventPullRequestReviewComment EventType = "pull_request_review_comment"
	EventInstallationRepositories EventType = "installation_repositories"
)

// Event is an inbound GitHub webhook delivery. Payload is the decoded JSON
// body.
type Event struct {
	Type       EventType
	DeliveryID string
	Payload    map[string]any
}

// AuthCallback is the OAuth redirect that completes a login started from
// the settings menu. State is the raw token, UserID and MessageID are
// decoded from it.
type AuthCallback struct {
	Code      string
	State     string
	UserID    int64
	MessageID int
}

// Repository identifies a GitHub repository. Subscriptions are keyed by ID.
type Repository struct {
	ID       int64
	FullName string
}

// Chat is a Telegram chat and the repositories it is subscribed to.
type Chat struct {
	ID    int64
	Repos map[int64]string // repo id -> full name
}

func (c Chat) Subscribed(repoID int64) bool {
	_, ok := c.Repos[repoID]
	return ok
}

// Session keys
const (
	SessionAccessToken = "access_token"
)
