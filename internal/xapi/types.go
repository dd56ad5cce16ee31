package xapi

import "encoding/json"

type User struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Username        string       `json:"username"`
	Description     string       `json:"description,omitempty"`
	PublicMetrics   *UserMetrics `json:"public_metrics,omitempty"`
	ProfileImageURL string       `json:"profile_image_url,omitempty"`
	Verified        *bool        `json:"verified,omitempty"`
	CreatedAt       string       `json:"created_at,omitempty"`
}

type UserMetrics struct {
	FollowersCount uint64 `json:"followers_count"`
	FollowingCount uint64 `json:"following_count"`
	TweetCount     uint64 `json:"tweet_count"`
	ListedCount    uint64 `json:"listed_count"`
}

type Tweet struct {
	ID                 string              `json:"id"`
	Text               string              `json:"text"`
	AuthorID           string              `json:"author_id,omitempty"`
	CreatedAt          string              `json:"created_at,omitempty"`
	PublicMetrics      *TweetMetrics       `json:"public_metrics,omitempty"`
	ContextAnnotations []ContextAnnotation `json:"context_annotations,omitempty"`
	ReferencedTweets   []ReferencedTweet   `json:"referenced_tweets,omitempty"`
}

type TweetMetrics struct {
	RetweetCount uint64 `json:"retweet_count"`
	LikeCount    uint64 `json:"like_count"`
	ReplyCount   uint64 `json:"reply_count"`
	QuoteCount   uint64 `json:"quote_count"`
}

type ContextAnnotation struct {
	Domain AnnotationEntity `json:"domain"`
	Entity AnnotationEntity `json:"entity"`
}

type AnnotationEntity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type ReferencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// envelope is the v2 response wrapper. A 200 may carry errors instead of,
// or next to, data.
type envelope[T any] struct {
	Data     *T              `json:"data"`
	Includes *Includes       `json:"includes,omitempty"`
	Errors   []Problem       `json:"errors,omitempty"`
	Meta     json.RawMessage `json:"meta,omitempty"`
}

type Includes struct {
	Users  []User  `json:"users,omitempty"`
	Tweets []Tweet `json:"tweets,omitempty"`
}

type Problem struct {
	Title        string `json:"title"`
	Detail       string `json:"detail,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
	Parameter    string `json:"parameter,omitempty"`
	Value        string `json:"value,omitempty"`
	Type         string `json:"type,omitempty"`
}

type PostTweetRequest struct {
	Text  string         `json:"text"`
	Reply *ReplySettings `json:"reply,omitempty"`
}

type ReplySettings struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type SearchParams struct {
	Query       string
	MaxResults  int
	TweetFields []string
	UserFields  []string
	Expansions  []string
}

type SearchResult struct {
	Tweets []Tweet
	Users  []User
}

type TweetLookup struct {
	Tweet  Tweet
	Author *User
}
