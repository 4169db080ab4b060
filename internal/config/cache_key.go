package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LearnerLoginKey returns the cache key for a learner's login session (single device).
func (r *CacheKeyStruct) LearnerLoginKey(learnerID int) string {
	return fmt.Sprintf("login:%d", learnerID)
}

// SessionStartKey returns the cache key for an exam session's start timestamp.
func (r *CacheKeyStruct) SessionStartKey(sessionID string) string {
	return fmt.Sprintf("session:%s:start", sessionID)
}

// SessionOrderKey returns the cache key for an exam session's question order.
func (r *CacheKeyStruct) SessionOrderKey(sessionID string) string {
	return fmt.Sprintf("session:%s:order", sessionID)
}

// SessionAnswersKey returns the cache key for a session's captured answers hash.
func (r *CacheKeyStruct) SessionAnswersKey(sessionID string) string {
	return fmt.Sprintf("session:%s:answers", sessionID)
}

// SessionFlagsKey returns the cache key for a session's review-flag hash.
func (r *CacheKeyStruct) SessionFlagsKey(sessionID string) string {
	return fmt.Sprintf("session:%s:flags", sessionID)
}

var CacheKey = NewCacheKeyStruct()
