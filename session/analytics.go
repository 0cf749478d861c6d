package session

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/faqmatch/core"
)

// DefaultLowConfidence is the score below which an interaction counts as
// low-confidence in analytics.
const DefaultLowConfidence = 0.5

// topQueryLimit caps the most-frequent-queries list.
const topQueryLimit = 10

// QueryCount is one entry of the most-frequent-queries list.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Analytics aggregates a sequence of interaction records. Purely derived:
// computing it never mutates the log.
type Analytics struct {
	TotalInteractions  int            `json:"total_interactions"`
	AverageScore       float64        `json:"average_confidence"`
	Methods            map[string]int `json:"methods_used"`
	Categories         map[string]int `json:"categories"`
	LowConfidenceCount int            `json:"low_confidence_count"`
	LowConfidenceRate  float64        `json:"low_confidence_percentage"`
	TopQueries         []QueryCount   `json:"top_queries"`
	SessionCount       int            `json:"session_count"`
}

// Analyze computes aggregates over the given records. Records with score
// below lowThreshold count as low-confidence; pass DefaultLowConfidence
// unless the caller has a configured threshold.
func Analyze(records []core.InteractionRecord, lowThreshold float64) *Analytics {
	a := &Analytics{
		TotalInteractions: len(records),
		Methods:           make(map[string]int),
		Categories:        make(map[string]int),
	}

	if len(records) == 0 {
		return a
	}

	var scoreSum float64
	sessions := make(map[string]bool)
	queryCounts := make(map[string]int)

	for _, rec := range records {
		scoreSum += rec.Score
		a.Methods[string(rec.Method)]++
		a.Categories[rec.Category]++
		sessions[rec.SessionId] = true
		queryCounts[strings.ToLower(rec.Query)]++
		if rec.Score < lowThreshold {
			a.LowConfidenceCount++
		}
	}

	a.AverageScore = scoreSum / float64(len(records))
	a.LowConfidenceRate = float64(a.LowConfidenceCount) / float64(len(records)) * 100
	a.SessionCount = len(sessions)

	a.TopQueries = make([]QueryCount, 0, len(queryCounts))
	for query, count := range queryCounts {
		a.TopQueries = append(a.TopQueries, QueryCount{Query: query, Count: count})
	}
	sort.Slice(a.TopQueries, func(i, j int) bool {
		if a.TopQueries[i].Count != a.TopQueries[j].Count {
			return a.TopQueries[i].Count > a.TopQueries[j].Count
		}
		return a.TopQueries[i].Query < a.TopQueries[j].Query
	})
	if len(a.TopQueries) > topQueryLimit {
		a.TopQueries = a.TopQueries[:topQueryLimit]
	}

	return a
}

// Analytics computes aggregates over this log's records.
func (l *Log) Analytics(lowThreshold float64) *Analytics {
	return Analyze(l.Records(), lowThreshold)
}

// Unanswered returns the records whose score fell below threshold. These
// are the queries worth reviewing when curating the corpus.
func Unanswered(records []core.InteractionRecord, threshold float64) []core.InteractionRecord {
	var out []core.InteractionRecord
	for _, rec := range records {
		if rec.Score < threshold {
			out = append(out, rec)
		}
	}
	return out
}

// ExportAnalytics writes the aggregates to a JSON file.
func (l *Log) ExportAnalytics(path string, lowThreshold float64) error {
	data, err := json.MarshalIndent(l.Analytics(lowThreshold), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ExportUnanswered writes the low-confidence interactions to a JSON file.
func (l *Log) ExportUnanswered(path string, threshold float64) error {
	unanswered := Unanswered(l.Records(), threshold)

	out := make([]jsonlRecord, len(unanswered))
	for i, rec := range unanswered {
		out[i] = jsonlRecord{
			Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
			SessionId: rec.SessionId,
			Query:     rec.Query,
			Answer:    rec.Answer,
			Score:     rec.Score,
			Method:    string(rec.Method),
			Category:  rec.Category,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
