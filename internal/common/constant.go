package common

// AuthorizationHeaderName carries the bearer token on protected requests.
const AuthorizationHeaderName = "Authorization"

// SessionCookieName is the cookie holding the server-side session id.
const SessionCookieName = "blog_session"

// Broadcast channel and event emitted after a blog post is created.
const (
	BlogsChannel = "blogs-channel"
	NewBlogEvent = "new-blog"
)
