package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserLoginKey returns the cache key for a user's login session (JTI).
func (r *CacheKeyStruct) UserLoginKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// AttemptSessionKey returns the cache key for a user's in-progress test attempt.
func (r *CacheKeyStruct) AttemptSessionKey(userID int, testID string) string {
	return fmt.Sprintf("user:%d:test:%s:session", userID, testID)
}

// AttemptAnswersKey returns the cache key for a user's autosave answer buffer.
func (r *CacheKeyStruct) AttemptAnswersKey(userID int, testID string) string {
	return fmt.Sprintf("user:%d:test:%s:answers", userID, testID)
}

// TestPayloadKey returns the cache key for a test's student-facing payload.
func (r *CacheKeyStruct) TestPayloadKey(testID string) string {
	return fmt.Sprintf("test:%s:payload", testID)
}

// TestAnswerKey returns the cache key for a test's answer key hash.
func (r *CacheKeyStruct) TestAnswerKey(testID string) string {
	return fmt.Sprintf("test:%s:key", testID)
}

var CacheKey = NewCacheKeyStruct()
