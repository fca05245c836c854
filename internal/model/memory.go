// Package model defines the core memory data types.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// Memory represents a stored memory record.
type Memory struct {
	ID          int64          `json:"id"`
	ContentHash string         `json:"content_hash"`
	Content     string         `json:"content"`
	Tags        []string       `json:"tags,omitempty"`
	MemoryType  string         `json:"memory_type"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	AccessCount int            `json:"access_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty"`
}

// Edge represents a weighted, typed relation between two memories.
// At most one edge exists per ordered (source, target) pair; the first
// write wins and later inserts for the same pair are ignored.
type Edge struct {
	SourceHash       string         `json:"source_hash"`
	TargetHash       string         `json:"target_hash"`
	Similarity       float64        `json:"similarity"`
	ConnectionTypes  string         `json:"connection_types"`
	RelationshipType string         `json:"relationship_type"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Common memory types. The column is an open tag, not an enum; callers
// may store other values freely.
const (
	TypeNote        = "note"
	TypeObservation = "observation"
	TypeStateDelta  = "state_delta"
)

// HashContent returns the hex SHA-256 digest of content, the natural key
// for deduplication across live and soft-deleted records alike.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// NormalizeTags trims, drops empties, collapses duplicates and sorts.
// Case is preserved; duplicate detection is exact-match.
func NormalizeTags(tags []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Slugify converts an entity name into a tag label: lowercased with
// spaces replaced by hyphens.
func Slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// JoinTags renders a tag set in its persisted comma-delimited form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// SplitTags parses the persisted comma-delimited form back into a slice.
func SplitTags(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
