package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ResumeTextKey returns the cache key for a resume's extracted plain text
func (r *CacheKeyStruct) ResumeTextKey(resumeID string) string {
	return fmt.Sprintf("resume:%s:text", resumeID)
}

// QuestionPaperKey returns the cache key for a resume's candidate-facing
// question paper (correct answers stripped)
func (r *CacheKeyStruct) QuestionPaperKey(resumeID string) string {
	return fmt.Sprintf("resume:%s:paper", resumeID)
}

// TestResultKey returns the cache key for a resume's scored result
func (r *CacheKeyStruct) TestResultKey(resumeID string) string {
	return fmt.Sprintf("resume:%s:result", resumeID)
}

var CacheKey = NewCacheKeyStruct()
