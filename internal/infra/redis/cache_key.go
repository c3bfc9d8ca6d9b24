package redis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// QuestionHash returns a stable fixed-width digest of the normalized question
// text. Normalization lowercases and collapses runs of whitespace so that
// trivially reformatted questions share a cache entry. The digest must be
// reproducible across process restarts, so no process-seeded hash is used.
func QuestionHash(question string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:16])
}

func questionCacheKey(userID, question string) string {
	return "qcache:" + userID + ":" + QuestionHash(question)
}

func jobKey(jobID string) string { return "job:" + jobID }

func resultKey(jobID string) string { return "result:" + jobID }
